package sonar

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"
)

// SweepState is the annulus revealed by a ping. Radii are in display units and
// never decrease within one ping cycle.
type SweepState struct {
	Previous float64
	Current  float64
}

// Reset starts a new cycle at radius zero.
func (s *SweepState) Reset() {
	s.Previous = 0
	s.Current = 0
}

// Advance moves the shell outward to radius. A smaller radius leaves an empty shell.
func (s *SweepState) Advance(radius float64) {
	s.Previous = s.Current
	if radius > s.Current {
		s.Current = radius
	}
}

// Contains reports whether a display-space distance lies in (Previous, Current].
func (s SweepState) Contains(d float64) bool {
	return d > s.Previous && d <= s.Current
}

// Ping describes one sweep step.
type Ping struct {
	Source           r2.Vec // origin of the pulse; shell distances are measured from here
	TransducerCenter r2.Vec // scope center; stacking and fading are relative to it
	Shell            SweepState
	Scale            float64 // world to display scale, zoom excluded
	Range            float64 // world units
	Passive          bool
	Strength         float64
}

// SweepStats counts what happened during a sweep.
type SweepStats struct {
	Segments    int // primitives considered
	Culled      int // back-facing primitives
	Degenerate  int // zero-length primitives
	Samples     int // line samples inside the shell
	Accepted    int // samples that produced blips
	Occluded    int // samples swallowed by disruption
	Deduped     int // older blips replaced by stronger ones
	Rejected    int // blips dropped by the visibility filter
	ContactHits int // contacts crossing into the shell
	SourceHits  int // sound sources heard
	Blips       int // blips inserted
}

// Add accumulates other into s.
func (s *SweepStats) Add(o SweepStats) {
	s.Segments += o.Segments
	s.Culled += o.Culled
	s.Degenerate += o.Degenerate
	s.Samples += o.Samples
	s.Accepted += o.Accepted
	s.Occluded += o.Occluded
	s.Deduped += o.Deduped
	s.Rejected += o.Rejected
	s.ContactHits += o.ContactHits
	s.SourceHits += o.SourceHits
	s.Blips += o.Blips
}

// PingSweeper turns geometry and entities inside the swept shell into blips.
type PingSweeper struct {
	geometry GeometrySource
	targets  TargetSource
	registry *BlipRegistry
	filter   VisibilityFilter
	params   *Params
	rng      *rand.Rand

	cfg        Configuration
	disruption []DisruptionSample
	segs       []Segment
}

// NewPingSweeper wires a sweeper to its collaborators. geometry and targets may be nil.
func NewPingSweeper(geometry GeometrySource, targets TargetSource, registry *BlipRegistry, params *Params, rng *rand.Rand) *PingSweeper {
	return &PingSweeper{
		geometry: geometry,
		targets:  targets,
		registry: registry,
		filter:   VisibilityFilter{DisplayRadius: params.DisplayRadius},
		params:   params,
		rng:      rng,
		segs:     make([]Segment, 0, 64),
	}
}

// Prepare sets the configuration and disruption samples for this tick's sweeps.
func (s *PingSweeper) Prepare(cfg Configuration, disruption []DisruptionSample) {
	s.cfg = cfg
	s.disruption = disruption
}

// Sweep runs one ping step against all geometry and contacts.
func (s *PingSweeper) Sweep(p Ping) SweepStats {
	var stats SweepStats
	if p.Shell.Current <= p.Shell.Previous {
		return stats
	}

	if s.geometry != nil {
		s.sweepHulls(p, &stats)
		s.sweepCells(p, &stats)
		for _, seg := range s.geometry.RuinWalls(p.Source, p.Range) {
			s.SweepLine(seg, p, s.params.RuinLineStep, s.params.RuinZStep, &stats)
		}
		for _, seg := range s.geometry.SeaFloor(p.Source, p.Range) {
			s.SweepLine(seg, p, s.params.FloorLineStep, s.params.FloorZStep, &stats)
		}
	}
	s.sweepContacts(p, &stats)

	return stats
}

func (s *PingSweeper) sweepHulls(p Ping, stats *SweepStats) {
	for _, sub := range s.geometry.Submarines() {
		if sub.Own && !s.cfg.DetectSubmarineWalls {
			continue
		}
		loop := s.geometry.HullVertexLoop(sub)
		for _, seg := range HullSegments(loop) {
			s.SweepLine(seg, p, s.params.HullLineStep, s.params.HullZStep, stats)
		}
	}
}

func (s *PingSweeper) sweepCells(p Ping, stats *SweepStats) {
	for _, cell := range s.geometry.Cells(p.Source, s.params.CellRadius) {
		for _, edge := range cell.Edges {
			if !edge.Solid {
				continue
			}
			// Edges facing diagonally get denser stacks
			zStep := s.params.TerrainZStep * (math.Abs(edge.Normal.X) + math.Abs(edge.Normal.Y))
			if zStep <= 0 {
				zStep = s.params.TerrainZStep
			}
			s.SweepLine(edge.Segment, p, s.params.TerrainLineStep, zStep, stats)
		}
	}
}

// SweepLine samples one segment at lineStep intervals and emits blips for samples
// inside the shell.
func (s *PingSweeper) SweepLine(seg Segment, p Ping, lineStep, zStep float64, stats *SweepStats) {
	stats.Segments++

	length := seg.Length()
	if length < epsilon || lineStep <= 0 {
		stats.Degenerate++
		return
	}
	if !seg.FacesPoint(p.Source) {
		stats.Culled++
		return
	}

	zoom := s.zoom()
	lineStep /= zoom
	zStep /= zoom
	lineDir := r2.Scale(1/length, r2.Sub(seg.B, seg.A))

	// World-space bound on the shell for the cheap axis test
	worldRadius := p.Shell.Current / p.Scale

	for x := 0.0; x < length; x += lineStep * s.jitter() {
		point := r2.Add(seg.A, r2.Scale(x, lineDir))

		if math.Abs(point.X-p.Source.X) > worldRadius || math.Abs(point.Y-p.Source.Y) > worldRadius {
			continue
		}

		pointDist := r2.Norm(r2.Sub(point, p.Source)) * p.Scale
		if !p.Shell.Contains(pointDist) {
			continue
		}

		centerDelta := r2.Sub(point, p.TransducerCenter)
		centerDist := r2.Norm(centerDelta) * p.Scale
		if centerDist*zoom > s.params.DisplayRadius {
			continue
		}
		stats.Samples++

		if s.occluded(point, p) {
			stats.Occluded++
			continue
		}

		stats.Accepted++
		s.stack(point, unitOrZero(centerDelta), centerDist, zStep, p, stats)
	}
}

// occluded reports whether point lies behind a disruption direction. Samples are
// taken around the transducer center, so directions are measured from there.
func (s *PingSweeper) occluded(point r2.Vec, p Ping) bool {
	if len(s.disruption) == 0 {
		return false
	}
	return IsOccluded(unitOrZero(r2.Sub(point, p.TransducerCenter)), s.disruption)
}

// stack emits the scan-line column of blips behind an accepted sample.
func (s *PingSweeper) stack(point, outward r2.Vec, centerDist, zStep float64, p Ping, stats *SweepStats) {
	zoom := s.zoom()
	displayRadius := s.params.DisplayRadius
	alpha := p.Strength * randRange(s.rng, 1.5, 2.0)
	dedup := s.params.DedupDistance / zoom

	for z := 0.0; z < displayRadius-centerDist*zoom; z += zStep {
		pos := r2.Add(point, randVector(s.rng, s.params.Scatter/zoom))
		pos = r2.Add(pos, r2.Scale(z/(p.Scale*zoom), outward))

		fade := alpha * (1 - centerDist/displayRadius)
		blip := NewBlip(pos, fade, 1+(displayRadius-centerDist*zoom)/displayRadius, BlipDefault)

		if p.Passive || s.filter.Accepts(pos, p.TransducerCenter, p.Scale, s.cfg) {
			stats.Deduped += s.registry.RemoveWhere(func(b *Blip) bool {
				return b.FadeTimer < fade &&
					math.Abs(pos.X-b.Position.X) < dedup &&
					math.Abs(pos.Y-b.Position.Y) < dedup
			})
			if s.registry.Add(blip) {
				stats.Blips++
			}
		} else {
			stats.Rejected++
		}

		zStep += s.params.ZStepGrowth / zoom
		if z == 0 {
			alpha = math.Min(alpha-0.5, 1.5)
		} else {
			alpha -= 0.1
		}
		if alpha <= 0 || zStep <= 0 {
			break
		}
	}
}

// sweepContacts emits a burst for each contact that entered the shell.
func (s *PingSweeper) sweepContacts(p Ping, stats *SweepStats) {
	if s.targets == nil {
		return
	}
	displayRadiusSq := s.params.DisplayRadius * s.params.DisplayRadius
	prevSq := p.Shell.Previous * p.Shell.Previous
	curSq := p.Shell.Current * p.Shell.Current
	scaleSq := p.Scale * p.Scale

	for _, c := range s.targets.Contacts(p.Source, p.Range) {
		if c.HideInSonar || c.InsideHull {
			continue
		}
		distSq := r2.Norm2(r2.Sub(c.Position, p.Source)) * scaleSq
		if distSq > displayRadiusSq {
			continue
		}
		if distSq <= prevSq || distSq > curSq {
			continue
		}
		if s.occluded(c.Position, p) {
			stats.Occluded++
			continue
		}
		stats.ContactHits++

		mass := math.Max(c.Mass, 0)
		count := int(clamp(mass, 1, float64(max(s.params.ContactMaxBlips, 1))))
		for i := 0; i < count; i++ {
			pos := r2.Add(c.Position, randVector(s.rng, mass/10))
			blip := NewBlip(pos, lerp(0.1, 1.5, math.Min(mass/100, 1)), randRange(s.rng, 0.5, 1.0), BlipContact)
			blip.Velocity = c.Velocity
			s.emit(blip, p, stats)
		}
	}
}

// SweepPassive listens for enabled sound sources whose distance from the listener
// falls inside the passive shell. Each heard source leaves a marker and re-pings the
// geometry around itself with reduced strength.
func (s *PingSweeper) SweepPassive(listener r2.Vec, shell SweepState, scale, rangeWorld, strength float64) SweepStats {
	var stats SweepStats
	if s.targets == nil || shell.Current <= shell.Previous {
		return stats
	}

	for _, src := range s.targets.SoundSources(listener, rangeWorld) {
		if !src.Enabled || src.SoundRange <= 0 {
			continue
		}
		dist := r2.Norm(r2.Sub(src.Position, listener))
		if dist > src.SoundRange {
			continue
		}
		if !shell.Contains(dist * scale) {
			continue
		}
		stats.SourceHits++

		local := Ping{
			Source:           src.Position,
			TransducerCenter: listener,
			Shell:            SweepState{Previous: 0, Current: math.Min(src.SoundRange, rangeWorld*0.5) * scale},
			Scale:            scale,
			Range:            math.Min(src.SoundRange, rangeWorld*0.5),
			Passive:          true,
			Strength:         strength,
		}
		s.emit(NewBlip(src.Position, 1.0, 1.0, BlipPassive), local, &stats)
		stats.Add(s.Sweep(local))
	}
	return stats
}

// emit inserts a blip, dropping it for active pings if the filter would reject it.
func (s *PingSweeper) emit(b Blip, p Ping, stats *SweepStats) bool {
	if !p.Passive && !s.filter.Accepts(b.Position, p.TransducerCenter, p.Scale, s.cfg) {
		stats.Rejected++
		return false
	}
	if !s.registry.Add(b) {
		return false
	}
	stats.Blips++
	return true
}

func (s *PingSweeper) zoom() float64 {
	if s.cfg.Zoom <= 0 {
		return 1
	}
	return s.cfg.Zoom
}

func (s *PingSweeper) jitter() float64 {
	j := s.params.StepJitter
	if j <= 0 {
		return 1
	}
	return randRange(s.rng, 1-j, 1+j)
}
