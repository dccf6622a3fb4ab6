package sonar

import (
	"gonum.org/v1/gonum/spatial/r2"
)

// SoundSource is an emitter heard by passive sonar.
type SoundSource struct {
	ID         uint32
	Position   r2.Vec
	SoundRange float64
	Enabled    bool
}

// Contact is a discrete body (creature limb, item) that reflects active pings.
type Contact struct {
	ID          uint32
	Position    r2.Vec
	Velocity    r2.Vec
	Mass        float64
	InsideHull  bool // contacts inside a submarine are shielded by its hull
	HideInSonar bool
}

// TargetSource provides the dynamic entities around a point.
type TargetSource interface {
	SoundSources(point r2.Vec, radius float64) []SoundSource
	Contacts(point r2.Vec, radius float64) []Contact
}

// TargetList is a plain slice-backed TargetSource owned by one sonar session.
type TargetList struct {
	Sources  []SoundSource
	Bodies   []Contact
	scratchS []SoundSource
	scratchC []Contact
}

// AddSource registers a sound source and returns its index.
func (l *TargetList) AddSource(s SoundSource) int {
	l.Sources = append(l.Sources, s)
	return len(l.Sources) - 1
}

// AddContact registers a contact and returns its index.
func (l *TargetList) AddContact(c Contact) int {
	l.Bodies = append(l.Bodies, c)
	return len(l.Bodies) - 1
}

// SetSourceEnabled toggles a registered sound source by ID.
func (l *TargetList) SetSourceEnabled(id uint32, enabled bool) bool {
	for i := range l.Sources {
		if l.Sources[i].ID == id {
			l.Sources[i].Enabled = enabled
			return true
		}
	}
	return false
}

// SoundSources returns sources within radius of point.
func (l *TargetList) SoundSources(point r2.Vec, radius float64) []SoundSource {
	l.scratchS = l.scratchS[:0]
	rSq := radius * radius
	for _, s := range l.Sources {
		if r2.Norm2(r2.Sub(s.Position, point)) <= rSq {
			l.scratchS = append(l.scratchS, s)
		}
	}
	return l.scratchS
}

// Contacts returns contacts within radius of point.
func (l *TargetList) Contacts(point r2.Vec, radius float64) []Contact {
	l.scratchC = l.scratchC[:0]
	rSq := radius * radius
	for _, c := range l.Bodies {
		if r2.Norm2(r2.Sub(c.Position, point)) <= rSq {
			l.scratchC = append(l.scratchC, c)
		}
	}
	return l.scratchC
}
