package components

// Body holds physical properties of an entity.
// Mass sets the size of the blip burst an active ping returns.
type Body struct {
	Radius float64 `inspect:"label,fmt:%.0f"`
	Mass   float64 `inspect:"bar,max:50"`
	Speed  float64 `inspect:"label,fmt:%.0f"` // cruise speed, 0 for drifting entities
}

// Emitter makes an entity audible to passive sonar.
type Emitter struct {
	SoundRange float64 `inspect:"label,fmt:%.0f"`
	Enabled    bool
}

// SonarFlags controls how active pings treat an entity.
type SonarFlags struct {
	HideInSonar bool
	InsideHull  bool
}
