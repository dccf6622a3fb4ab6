package level

import (
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/sonar/components"
	"github.com/pthm-cable/sonar/sonar"
	"github.com/pthm-cable/sonar/systems"
)

// spatialCellSize is the bucket size of the entity lookup grid.
const spatialCellSize = 1000

// maxBodyRadius bounds every spawned body, used to widen pick queries.
const maxBodyRadius = 100

// Entities is the ECS world of creatures, items and beacons. It implements
// sonar.TargetSource so the sonar sees whatever lives in the world.
type Entities struct {
	world *ecs.World

	emitterMapper *ecs.Map7[components.Identity, components.Position, components.Velocity, components.Rotation, components.Body, components.SonarFlags, components.Emitter]
	silentMapper  *ecs.Map6[components.Identity, components.Position, components.Velocity, components.Rotation, components.Body, components.SonarFlags]

	posMap     *ecs.Map1[components.Position]
	velMap     *ecs.Map1[components.Velocity]
	rotMap     *ecs.Map1[components.Rotation]
	identMap   *ecs.Map1[components.Identity]
	bodyMap    *ecs.Map1[components.Body]
	flagsMap   *ecs.Map1[components.SonarFlags]
	emitterMap *ecs.Map1[components.Emitter]

	allFilter *ecs.Filter2[components.Identity, components.Position]

	grid     *systems.SpatialGrid
	movement *systems.MovementSystem
	rng      *rand.Rand

	byID   map[uint32]ecs.Entity
	nextID uint32

	neighbors []systems.Neighbor
	sources   []sonar.SoundSource
	contacts  []sonar.Contact
}

// NewEntities creates an empty world over terrain. terrain may be nil.
func NewEntities(width, height float64, terrain *systems.TerrainSystem, rng *rand.Rand) *Entities {
	world := ecs.NewWorld()
	return &Entities{
		world: world,
		emitterMapper: ecs.NewMap7[
			components.Identity, components.Position, components.Velocity,
			components.Rotation, components.Body, components.SonarFlags, components.Emitter,
		](world),
		silentMapper: ecs.NewMap6[
			components.Identity, components.Position, components.Velocity,
			components.Rotation, components.Body, components.SonarFlags,
		](world),
		posMap:     ecs.NewMap1[components.Position](world),
		velMap:     ecs.NewMap1[components.Velocity](world),
		rotMap:     ecs.NewMap1[components.Rotation](world),
		identMap:   ecs.NewMap1[components.Identity](world),
		bodyMap:    ecs.NewMap1[components.Body](world),
		flagsMap:   ecs.NewMap1[components.SonarFlags](world),
		emitterMap: ecs.NewMap1[components.Emitter](world),
		allFilter:  ecs.NewFilter2[components.Identity, components.Position](world),
		grid:       systems.NewSpatialGrid(width, height, spatialCellSize),
		movement:   systems.NewMovementSystem(world, terrain, rng),
		rng:        rng,
		byID:       make(map[uint32]ecs.Entity),
		nextID:     1,
	}
}

// SpawnCreature adds a wandering, audible creature and returns its id.
func (e *Entities) SpawnCreature(p r2.Vec, mass, speed, soundRange float64) uint32 {
	id := e.allocID()
	ident := components.Identity{ID: id, Kind: components.KindCreature}
	pos := components.Position{X: p.X, Y: p.Y}
	vel := components.Velocity{}
	rot := components.Rotation{Heading: e.rng.Float64() * 2 * math.Pi}
	body := components.Body{Radius: math.Sqrt(mass) * 10, Mass: mass, Speed: speed}
	flags := components.SonarFlags{}
	emitter := components.Emitter{SoundRange: soundRange, Enabled: true}

	entity := e.emitterMapper.NewEntity(&ident, &pos, &vel, &rot, &body, &flags, &emitter)
	e.register(id, entity, p)
	return id
}

// SpawnBeacon adds a stationary sound emitter that does not reflect pings.
func (e *Entities) SpawnBeacon(p r2.Vec, soundRange float64) uint32 {
	id := e.allocID()
	ident := components.Identity{ID: id, Kind: components.KindBeacon}
	pos := components.Position{X: p.X, Y: p.Y}
	vel := components.Velocity{}
	rot := components.Rotation{}
	body := components.Body{Radius: 20, Mass: 1}
	flags := components.SonarFlags{HideInSonar: true}
	emitter := components.Emitter{SoundRange: soundRange, Enabled: true}

	entity := e.emitterMapper.NewEntity(&ident, &pos, &vel, &rot, &body, &flags, &emitter)
	e.register(id, entity, p)
	return id
}

// SpawnItem adds a silent drifting item and returns its id.
func (e *Entities) SpawnItem(p r2.Vec, mass float64, insideHull bool) uint32 {
	id := e.allocID()
	ident := components.Identity{ID: id, Kind: components.KindItem}
	pos := components.Position{X: p.X, Y: p.Y}
	vel := components.Velocity{}
	rot := components.Rotation{}
	body := components.Body{Radius: 30, Mass: mass}
	flags := components.SonarFlags{InsideHull: insideHull}

	entity := e.silentMapper.NewEntity(&ident, &pos, &vel, &rot, &body, &flags)
	e.register(id, entity, p)
	return id
}

func (e *Entities) allocID() uint32 {
	id := e.nextID
	e.nextID++
	return id
}

func (e *Entities) register(id uint32, entity ecs.Entity, p r2.Vec) {
	e.byID[id] = entity
	e.grid.Insert(entity, p)
}

// SetEmitterEnabled switches an entity's sound on or off.
// It returns false for unknown ids and silent entities.
func (e *Entities) SetEmitterEnabled(id uint32, enabled bool) bool {
	entity, ok := e.byID[id]
	if !ok || !e.world.Alive(entity) {
		return false
	}
	if !e.emitterMap.HasAll(entity) {
		return false
	}
	e.emitterMap.Get(entity).Enabled = enabled
	return true
}

// SetHidden hides an entity from active pings.
func (e *Entities) SetHidden(id uint32, hidden bool) bool {
	entity, ok := e.byID[id]
	if !ok || !e.world.Alive(entity) {
		return false
	}
	e.flagsMap.Get(entity).HideInSonar = hidden
	return true
}

// Position returns the position of an entity by id.
func (e *Entities) Position(id uint32) (r2.Vec, bool) {
	entity, ok := e.byID[id]
	if !ok || !e.world.Alive(entity) {
		return r2.Vec{}, false
	}
	pos := e.posMap.Get(entity)
	return r2.Vec{X: pos.X, Y: pos.Y}, true
}

// View is a copy of one entity's components for display.
type View struct {
	Identity components.Identity
	Position components.Position
	Velocity components.Velocity
	Rotation components.Rotation
	Body     components.Body
	Flags    components.SonarFlags
	Emitter  *components.Emitter // nil for silent entities
}

// Inspect returns a copy of an entity's components by id.
func (e *Entities) Inspect(id uint32) (View, bool) {
	entity, ok := e.byID[id]
	if !ok || !e.world.Alive(entity) {
		return View{}, false
	}
	v := View{
		Identity: *e.identMap.Get(entity),
		Position: *e.posMap.Get(entity),
		Velocity: *e.velMap.Get(entity),
		Rotation: *e.rotMap.Get(entity),
		Body:     *e.bodyMap.Get(entity),
		Flags:    *e.flagsMap.Get(entity),
	}
	if e.emitterMap.HasAll(entity) {
		em := *e.emitterMap.Get(entity)
		v.Emitter = &em
	}
	return v, true
}

// Nearest returns the id of the entity closest to p whose body lies within
// tolerance of p.
func (e *Entities) Nearest(p r2.Vec, tolerance float64) (uint32, bool) {
	e.neighbors = e.grid.QueryRadiusInto(e.neighbors[:0], p, tolerance+maxBodyRadius, e.posMap)
	best, bestDist := uint32(0), math.Inf(1)
	found := false
	for _, n := range e.neighbors {
		d := r2.Norm(n.Delta) - e.bodyMap.Get(n.E).Radius
		if d <= tolerance && d < bestDist {
			best, bestDist, found = e.identMap.Get(n.E).ID, d, true
		}
	}
	return best, found
}

// Len returns the number of entities.
func (e *Entities) Len() int {
	return len(e.byID)
}

// Update moves everything by dt seconds and refreshes the lookup grid.
func (e *Entities) Update(dt float64) {
	e.movement.Update(dt)

	e.grid.Clear()
	query := e.allFilter.Query()
	for query.Next() {
		_, pos := query.Get()
		e.grid.Insert(query.Entity(), r2.Vec{X: pos.X, Y: pos.Y})
	}
}

// SoundSources implements sonar.TargetSource.
// The returned slice is reused by the next call.
func (e *Entities) SoundSources(point r2.Vec, radius float64) []sonar.SoundSource {
	e.sources = e.sources[:0]
	e.neighbors = e.grid.QueryRadiusInto(e.neighbors[:0], point, radius, e.posMap)
	for _, n := range e.neighbors {
		if !e.emitterMap.HasAll(n.E) {
			continue
		}
		emitter := e.emitterMap.Get(n.E)
		e.sources = append(e.sources, sonar.SoundSource{
			ID:         e.identMap.Get(n.E).ID,
			Position:   r2.Add(point, n.Delta),
			SoundRange: emitter.SoundRange,
			Enabled:    emitter.Enabled,
		})
	}
	return e.sources
}

// Contacts implements sonar.TargetSource.
// The returned slice is reused by the next call.
func (e *Entities) Contacts(point r2.Vec, radius float64) []sonar.Contact {
	e.contacts = e.contacts[:0]
	e.neighbors = e.grid.QueryRadiusInto(e.neighbors[:0], point, radius, e.posMap)
	for _, n := range e.neighbors {
		vel := e.velMap.Get(n.E)
		flags := e.flagsMap.Get(n.E)
		e.contacts = append(e.contacts, sonar.Contact{
			ID:          e.identMap.Get(n.E).ID,
			Position:    r2.Add(point, n.Delta),
			Velocity:    r2.Vec{X: vel.X, Y: vel.Y},
			Mass:        e.bodyMap.Get(n.E).Mass,
			InsideHull:  flags.InsideHull,
			HideInSonar: flags.HideInSonar,
		})
	}
	return e.contacts
}

// Populate spawns the configured creatures and items at open positions in lvl.
func (e *Entities) Populate(lvl *Level, creatures, items int, soundRange, speed float64) {
	for i := 0; i < creatures; i++ {
		p, ok := lvl.RandomOpenPoint(e.rng, 200)
		if !ok {
			continue
		}
		mass := 5 + e.rng.Float64()*45
		e.SpawnCreature(p, mass, speed*(0.5+e.rng.Float64()), soundRange)
	}
	for i := 0; i < items; i++ {
		p, ok := lvl.RandomOpenPoint(e.rng, 50)
		if !ok {
			continue
		}
		e.SpawnItem(p, 1+e.rng.Float64()*9, false)
	}
}
