package level

import (
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func newTestEntities() *Entities {
	return NewEntities(10000, 10000, nil, rand.New(rand.NewSource(2)))
}

func TestEntitiesSoundSources(t *testing.T) {
	e := newTestEntities()
	near := e.SpawnCreature(r2.Vec{X: 1000, Y: 1000}, 10, 0, 500)
	e.SpawnCreature(r2.Vec{X: 6000, Y: 6000}, 10, 0, 500)
	e.SpawnItem(r2.Vec{X: 1100, Y: 1000}, 3, false)

	got := e.SoundSources(r2.Vec{X: 900, Y: 1000}, 1000)
	if len(got) != 1 {
		t.Fatalf("SoundSources = %d, want 1 (items are silent)", len(got))
	}
	if got[0].ID != near || got[0].SoundRange != 500 || !got[0].Enabled {
		t.Errorf("source = %+v", got[0])
	}
	if got[0].Position != (r2.Vec{X: 1000, Y: 1000}) {
		t.Errorf("position = %v", got[0].Position)
	}

	if !e.SetEmitterEnabled(near, false) {
		t.Fatal("SetEmitterEnabled failed")
	}
	if e.SoundSources(r2.Vec{X: 900, Y: 1000}, 1000)[0].Enabled {
		t.Error("source should be disabled")
	}
}

func TestEntitiesSetEmitterOnSilentEntity(t *testing.T) {
	e := newTestEntities()
	item := e.SpawnItem(r2.Vec{X: 100, Y: 100}, 3, false)
	if e.SetEmitterEnabled(item, true) {
		t.Error("items have no emitter")
	}
	if e.SetEmitterEnabled(999, true) {
		t.Error("unknown id should fail")
	}
}

func TestEntitiesContacts(t *testing.T) {
	e := newTestEntities()
	creature := e.SpawnCreature(r2.Vec{X: 2000, Y: 2000}, 25, 0, 500)
	e.SpawnItem(r2.Vec{X: 2100, Y: 2000}, 4, true)
	beacon := e.SpawnBeacon(r2.Vec{X: 2000, Y: 2100}, 800)

	contacts := e.Contacts(r2.Vec{X: 2000, Y: 2000}, 300)
	if len(contacts) != 3 {
		t.Fatalf("Contacts = %d, want 3", len(contacts))
	}
	byID := map[uint32]bool{}
	for _, c := range contacts {
		byID[c.ID] = true
		switch {
		case c.ID == creature && c.Mass != 25:
			t.Errorf("creature mass = %v", c.Mass)
		case c.ID == beacon && !c.HideInSonar:
			t.Error("beacons should be hidden from active pings")
		case c.ID != creature && c.ID != beacon && !c.InsideHull:
			t.Error("item should be flagged inside hull")
		}
	}
	if !byID[creature] || !byID[beacon] {
		t.Errorf("missing contacts: %v", byID)
	}

	if !e.SetHidden(creature, true) {
		t.Fatal("SetHidden failed")
	}
	for _, c := range e.Contacts(r2.Vec{X: 2000, Y: 2000}, 300) {
		if c.ID == creature && !c.HideInSonar {
			t.Error("creature should now be hidden")
		}
	}
}

func TestEntitiesUpdateMovesCreatures(t *testing.T) {
	e := newTestEntities()
	id := e.SpawnCreature(r2.Vec{X: 5000, Y: 5000}, 10, 200, 500)
	for i := 0; i < 60; i++ {
		e.Update(1.0 / 60)
	}
	p, ok := e.Position(id)
	if !ok {
		t.Fatal("creature lost")
	}
	if d := r2.Norm(r2.Sub(p, r2.Vec{X: 5000, Y: 5000})); d < 50 || d > 201 {
		t.Errorf("creature moved %v in one second at speed 200", d)
	}

	// The lookup grid follows the creature
	if len(e.Contacts(p, 10)) != 1 {
		t.Error("creature not found at its new position")
	}
}

func TestPopulate(t *testing.T) {
	lvl := New(testLevelConfig(t).Level, 21)
	e := NewEntities(12000, 8000, lvl.Terrain(), rand.New(rand.NewSource(4)))
	e.Populate(lvl, 5, 3, 2000, 100)
	if e.Len() != 8 {
		t.Errorf("Len = %d, want 8", e.Len())
	}
}

func TestEntitiesNearestAndInspect(t *testing.T) {
	e := newTestEntities()
	creature := e.SpawnCreature(r2.Vec{X: 1000, Y: 1000}, 25, 80, 700) // radius 50
	item := e.SpawnItem(r2.Vec{X: 1300, Y: 1000}, 4, true)             // radius 30

	tests := []struct {
		name string
		p    r2.Vec
		want uint32
		ok   bool
	}{
		{"on creature", r2.Vec{X: 1010, Y: 1000}, creature, true},
		{"near creature edge", r2.Vec{X: 1060, Y: 1000}, creature, true},
		{"on item", r2.Vec{X: 1290, Y: 1000}, item, true},
		{"open water", r2.Vec{X: 1150, Y: 1200}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := e.Nearest(tt.p, 20)
			if ok != tt.ok || (ok && got != tt.want) {
				t.Errorf("Nearest(%v) = %d %v, want %d %v", tt.p, got, ok, tt.want, tt.ok)
			}
		})
	}

	v, ok := e.Inspect(creature)
	if !ok {
		t.Fatal("Inspect creature failed")
	}
	if v.Emitter == nil || v.Emitter.SoundRange != 700 {
		t.Errorf("creature emitter = %+v", v.Emitter)
	}
	if v.Body.Mass != 25 || v.Position.X != 1000 {
		t.Errorf("creature view = %+v", v)
	}

	v, ok = e.Inspect(item)
	if !ok || v.Emitter != nil || !v.Flags.InsideHull {
		t.Errorf("item view = %+v ok=%v", v, ok)
	}
	if _, ok := e.Inspect(999); ok {
		t.Error("unknown id should not inspect")
	}
}
