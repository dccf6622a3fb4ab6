package sonar

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Transducer is a remote sensor connected to the sonar.
type Transducer struct {
	ID          int
	Position    r2.Vec
	LinkQuality float64 // [0,1]
	Removed     bool
}

// TransducerBinding is the set of transducers wired to one sonar.
type TransducerBinding struct {
	transducers []Transducer
}

// Connect adds or replaces a transducer by ID.
func (b *TransducerBinding) Connect(t Transducer) {
	for i := range b.transducers {
		if b.transducers[i].ID == t.ID {
			b.transducers[i] = t
			return
		}
	}
	b.transducers = append(b.transducers, t)
}

// Disconnect removes a transducer by ID.
func (b *TransducerBinding) Disconnect(id int) {
	for i := range b.transducers {
		if b.transducers[i].ID == id {
			b.transducers = append(b.transducers[:i], b.transducers[i+1:]...)
			return
		}
	}
}

// Move updates the position of a connected transducer.
func (b *TransducerBinding) Move(id int, pos r2.Vec) {
	for i := range b.transducers {
		if b.transducers[i].ID == id {
			b.transducers[i].Position = pos
			return
		}
	}
}

// Len returns the number of connected transducers, removed ones included.
func (b *TransducerBinding) Len() int {
	if b == nil {
		return 0
	}
	return len(b.transducers)
}

// Aggregate returns the mean position of the live transducers and the weakest link
// quality among them. ok is false when no live transducer remains, in which case
// the caller falls back to the device position.
func (b *TransducerBinding) Aggregate() (pos r2.Vec, strength float64, ok bool) {
	if b == nil {
		return r2.Vec{}, 0, false
	}
	strength = math.Inf(1)
	count := 0
	for _, t := range b.transducers {
		if t.Removed || !isFinite(t.Position) {
			continue
		}
		pos = r2.Add(pos, t.Position)
		strength = math.Min(strength, clamp(t.LinkQuality, 0, 1))
		count++
	}
	if count == 0 {
		return r2.Vec{}, 0, false
	}
	return r2.Scale(1/float64(count), pos), strength, true
}
