package game

import (
	"github.com/pthm-cable/sonar/config"
	"github.com/pthm-cable/sonar/sonar"
)

// passiveDraw is the share of full consumption a listening sonar draws.
const passiveDraw = 0.2

// Battery is the submarine's sonar supply. Pinging drains it faster than the
// generator refills it; once voltage falls below the sonar's minimum the
// breaker trips and stays open until the charge recovers to resetLevel.
type Battery struct {
	charge      float64
	capacity    float64
	consumption float64
	recharge    float64
	minVoltage  float64
	resetLevel  float64
	tripped     bool
}

// NewBattery creates a fully charged battery. A zero capacity never drains.
func NewBattery(cfg config.PowerConfig) *Battery {
	return &Battery{
		charge:      cfg.Capacity,
		capacity:    cfg.Capacity,
		consumption: cfg.Consumption,
		recharge:    cfg.Recharge,
		minVoltage:  cfg.MinVoltage,
		resetLevel:  cfg.ResetLevel,
	}
}

// Voltage implements sonar.PoweredDevice.
func (b *Battery) Voltage() float64 {
	if b.capacity <= 0 {
		return 1
	}
	if b.tripped {
		return 0
	}
	return b.charge / b.capacity
}

// Level returns the charge fraction regardless of the breaker.
func (b *Battery) Level() float64 {
	if b.capacity <= 0 {
		return 1
	}
	return b.charge / b.capacity
}

// Tripped reports whether the breaker is open.
func (b *Battery) Tripped() bool {
	return b.tripped
}

// Drain advances the battery by dt seconds of running in mode.
func (b *Battery) Drain(mode sonar.Mode, dt float64) {
	if b.capacity <= 0 {
		return
	}
	draw := 0.0
	if !b.tripped {
		switch mode {
		case sonar.ModeActive:
			draw = b.consumption
		case sonar.ModePassive:
			draw = b.consumption * passiveDraw
		}
	}
	b.charge += (b.recharge - draw) * dt
	b.charge = min(max(b.charge, 0), b.capacity)

	switch {
	case !b.tripped && b.Level() < b.minVoltage:
		b.tripped = true
	case b.tripped && b.Level() >= b.resetLevel:
		b.tripped = false
	}
}
