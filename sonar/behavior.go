package sonar

import "math"

// Behavior is the sonar state machine: the current mode and the sweep shells
// for active pinging and passive listening.
type Behavior struct {
	mode Mode

	active       SweepState
	pingFraction float64 // elapsed fraction of the current active ping, [0,1)
	pings        int

	passive     SweepState
	passiveTime float64
}

// Mode returns the current mode.
func (b *Behavior) Mode() Mode {
	return b.mode
}

// SetMode switches mode. Entering Active starts a fresh ping.
func (b *Behavior) SetMode(m Mode) {
	if m == b.mode {
		return
	}
	switch m {
	case ModeActive:
		b.active.Reset()
		b.pingFraction = 0
		b.pings++
	case ModePassive:
		b.passive.Reset()
	}
	b.mode = m
}

// AdvanceActive moves the active ping forward by dt and returns the revealed shell.
// When the ping period completes the shell restarts at zero instead of jumping.
func (b *Behavior) AdvanceActive(dt, pingDuration, displayRadius, zoom float64) SweepState {
	if pingDuration <= 0 || zoom <= 0 {
		return SweepState{}
	}
	frac := b.pingFraction + dt/pingDuration
	if frac >= 1 {
		frac -= math.Floor(frac)
		b.active.Reset()
		b.pings++
	}
	b.pingFraction = frac
	b.active.Advance(displayRadius * frac / zoom)
	return b.active
}

// AdvancePassive moves the passive pseudo radius, sin(t*frequency), by dt.
// The shell grows during the rising quarter, stays put while the sine falls and
// resets once the sine drops to zero or below.
func (b *Behavior) AdvancePassive(dt, frequency, displayRadius, zoom float64) SweepState {
	b.passiveTime += dt
	phase := math.Sin(b.passiveTime * frequency)
	if phase <= 0 || zoom <= 0 {
		b.passive.Reset()
		return b.passive
	}
	b.passive.Advance(displayRadius * phase / zoom)
	return b.passive
}

// PingFraction returns the elapsed fraction of the current active ping.
func (b *Behavior) PingFraction() float64 {
	return b.pingFraction
}

// Pings returns how many active pings have started.
func (b *Behavior) Pings() int {
	return b.pings
}
