package components

// Position represents an entity's world position.
type Position struct {
	X, Y float64 `inspect:"label,fmt:%.0f"`
}

// Velocity represents an entity's velocity in world units per second.
type Velocity struct {
	X, Y float64 `inspect:"label,fmt:%.1f"`
}

// Rotation represents an entity's heading and wander turn rate.
type Rotation struct {
	Heading float64 `inspect:"angle"` // radians
	AngVel  float64 `inspect:"skip"`  // radians per second
}
