package sonar

// PoweredDevice is the power capability a sonar is composed with.
type PoweredDevice interface {
	// Voltage is the supply relative to demand, 1 = fully powered.
	Voltage() float64
}

// PowerSupply is a simple adjustable PoweredDevice.
type PowerSupply struct {
	Level float64
}

// Voltage implements PoweredDevice.
func (p *PowerSupply) Voltage() float64 {
	return p.Level
}

// alwaysPowered is used when no power capability is wired.
type alwaysPowered struct{}

func (alwaysPowered) Voltage() float64 { return 1 }
