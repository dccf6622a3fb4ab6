// Package netsync relays sonar configuration between peers over websockets.
//
// A State is packed into as few bits as possible:
//
//	active(1) [zoom(8) directional(1) [direction(8)]]
//
// Zoom is quantized over [MinZoom, MaxZoom] and direction over [0, 2π).
package netsync

import (
	"fmt"
	"math"

	"github.com/pthm-cable/sonar/sonar"
)

const (
	zoomBits      = 8
	directionBits = 8
)

// State is the synced part of a sonar configuration.
type State struct {
	Active      bool
	Zoom        float64
	Directional bool
	Direction   float64 // radians
}

// Codec packs and unpacks States for one zoom range.
type Codec struct {
	MinZoom float64
	MaxZoom float64
}

// NewCodec returns a codec for the configured zoom range.
func NewCodec(minZoom, maxZoom float64) (Codec, error) {
	if !(maxZoom > minZoom) || math.IsInf(maxZoom, 0) || math.IsNaN(minZoom) {
		return Codec{}, fmt.Errorf("netsync: invalid zoom range [%v, %v]", minZoom, maxZoom)
	}
	return Codec{MinZoom: minZoom, MaxZoom: maxZoom}, nil
}

// Encode packs s. Inactive states carry only the active bit.
func (c Codec) Encode(s State) []byte {
	var w bitWriter
	w.writeBool(s.Active)
	if !s.Active {
		return w.bytes()
	}
	w.writeBits(quantize(s.Zoom, c.MinZoom, c.MaxZoom, zoomBits), zoomBits)
	w.writeBool(s.Directional)
	if s.Directional {
		w.writeBits(quantizeAngle(s.Direction, directionBits), directionBits)
	}
	return w.bytes()
}

// Decode unpacks a message produced by Encode.
func (c Codec) Decode(data []byte) (State, error) {
	r := bitReader{buf: data}
	var s State
	var err error
	if s.Active, err = r.readBool(); err != nil {
		return State{}, err
	}
	if !s.Active {
		return s, nil
	}
	q, err := r.readBits(zoomBits)
	if err != nil {
		return State{}, err
	}
	s.Zoom = dequantize(q, c.MinZoom, c.MaxZoom, zoomBits)
	if s.Directional, err = r.readBool(); err != nil {
		return State{}, err
	}
	if s.Directional {
		q, err := r.readBits(directionBits)
		if err != nil {
			return State{}, err
		}
		s.Direction = dequantizeAngle(q, directionBits)
	}
	return s, nil
}

// StateFromConfiguration extracts the synced fields of a sonar configuration.
func StateFromConfiguration(cfg sonar.Configuration) State {
	return State{
		Active:      cfg.Mode == sonar.ModeActive,
		Zoom:        cfg.Zoom,
		Directional: cfg.Directional,
		Direction:   sonar.DirectionToAngle(cfg.Direction),
	}
}

// Update converts a received State into a controller update. Inactive states
// switch to passive listening and leave the other fields untouched.
func (s State) Update() sonar.Update {
	if !s.Active {
		mode := sonar.ModePassive
		return sonar.Update{Mode: &mode}
	}
	mode := sonar.ModeActive
	zoom := s.Zoom
	directional := s.Directional
	u := sonar.Update{Mode: &mode, Zoom: &zoom, Directional: &directional}
	if s.Directional {
		dir := sonar.AngleToDirection(s.Direction)
		u.Direction = &dir
	}
	return u
}

// Equal reports whether two states encode to the same message.
func (c Codec) Equal(a, b State) bool {
	ea, eb := c.Encode(a), c.Encode(b)
	if len(ea) != len(eb) {
		return false
	}
	for i := range ea {
		if ea[i] != eb[i] {
			return false
		}
	}
	return true
}

func quantize(v, lo, hi float64, bits int) uint32 {
	steps := float64(uint32(1)<<uint(bits) - 1)
	if math.IsNaN(v) {
		v = lo
	}
	f := (math.Max(lo, math.Min(hi, v)) - lo) / (hi - lo)
	return uint32(math.Round(f * steps))
}

func dequantize(q uint32, lo, hi float64, bits int) float64 {
	steps := float64(uint32(1)<<uint(bits) - 1)
	return lo + float64(q)/steps*(hi-lo)
}

// quantizeAngle maps [0, 2π) onto 2^bits steps; 2π wraps to 0.
func quantizeAngle(a float64, bits int) uint32 {
	n := uint32(1) << uint(bits)
	if math.IsNaN(a) || math.IsInf(a, 0) {
		return 0
	}
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return uint32(math.Round(a/(2*math.Pi)*float64(n))) % n
}

func dequantizeAngle(q uint32, bits int) float64 {
	return float64(q) / float64(uint32(1)<<uint(bits)) * 2 * math.Pi
}
