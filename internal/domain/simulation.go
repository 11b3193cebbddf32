package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"
)

// Simulation constants.
const (
	SafeLevel         = 50.0
	PerUnitEffect     = 5.0
	DefaultInitialAQI = 180.0
	CO2PerUnitKg      = 200
	TreesPerUnit      = 50

	// JitterRadius is the maximum auto-deploy offset from the anchor, in degrees.
	JitterRadius = 0.05
)

// DefaultAnchor is the auto-deploy centre (New Delhi).
var DefaultAnchor = Position{Lat: 28.6139, Lng: 77.2090}

// Position is a WGS-84 latitude/longitude pair.
type Position struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// UnitsRequired returns how many units bring initial down to SafeLevel.
func UnitsRequired(initial float64) int {
	return UnitsRequiredFor(initial, SafeLevel, PerUnitEffect)
}

// UnitsRequiredFor is UnitsRequired with an explicit target and per-unit
// effect. It returns 0 when initial is already at or below safe, and for
// non-finite inputs or a non-positive effect.
func UnitsRequiredFor(initial, safe, effect float64) int {
	if math.IsInf(initial, 0) || math.IsNaN(initial) || effect <= 0 {
		return 0
	}
	if initial <= safe {
		return 0
	}
	return int(math.Ceil((initial - safe) / effect))
}

// ProjectedAQI returns the AQI after count units, floored at zero.
func ProjectedAQI(initial float64, count int) float64 {
	return ProjectedAQIFor(initial, count, PerUnitEffect)
}

// ProjectedAQIFor is ProjectedAQI with an explicit per-unit effect.
func ProjectedAQIFor(initial float64, count int, effect float64) float64 {
	if math.IsNaN(initial) {
		return 0
	}
	count = max(count, 0)
	return math.Max(0, initial-float64(count)*effect)
}

// CO2RemovedKg converts a unit count to the displayed CO₂ offset.
func CO2RemovedKg(count int) int { return max(count, 0) * CO2PerUnitKg }

// TreeEquivalent converts a unit count to the displayed tree equivalent.
func TreeEquivalent(count int) int { return max(count, 0) * TreesPerUnit }

// ParseInitialAQI reads the simulator's aqi query parameter. Missing,
// non-numeric, negative, and non-finite values fall back to DefaultInitialAQI.
// Zero is a valid reading.
func ParseInitialAQI(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultInitialAQI
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return DefaultInitialAQI
	}
	return v
}

// Float64Source supplies uniform values in [0, 1). *rand.Rand satisfies it.
type Float64Source interface {
	Float64() float64
}

type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }

// Simulation is an immutable snapshot of a mitigation session. Every mutation
// returns a new value; derived figures are computed from the unit list on
// demand.
type Simulation struct {
	initialAQI float64
	units      []Position
}

// NewSimulation starts an empty simulation at the given AQI.
func NewSimulation(initialAQI float64) Simulation {
	return Simulation{initialAQI: initialAQI}
}

func (s Simulation) InitialAQI() float64 { return s.initialAQI }

func (s Simulation) UnitCount() int { return len(s.units) }

// Units returns a copy of the placed units in placement order.
func (s Simulation) Units() []Position {
	out := make([]Position, len(s.units))
	copy(out, s.units)
	return out
}

// PlaceUnit appends one unit. Positions are neither deduplicated nor bounds-checked.
func (s Simulation) PlaceUnit(p Position) Simulation {
	return s.appendUnits([]Position{p})
}

// AutoDeployRemaining places every unit still required, jittered within
// JitterRadius of anchor, as a single transition. It returns the new state and
// the added batch; when nothing is required the state is returned unchanged
// with a nil batch.
func (s Simulation) AutoDeployRemaining(anchor Position, src Float64Source) (Simulation, []Position) {
	remaining := s.Remaining()
	if remaining <= 0 {
		return s, nil
	}
	if src == nil {
		src = globalRand{}
	}
	batch := make([]Position, remaining)
	for i := range batch {
		batch[i] = Position{
			Lat: anchor.Lat + (src.Float64()-0.5)*2*JitterRadius,
			Lng: anchor.Lng + (src.Float64()-0.5)*2*JitterRadius,
		}
	}
	return s.appendUnits(batch), batch
}

func (s Simulation) appendUnits(batch []Position) Simulation {
	units := make([]Position, 0, len(s.units)+len(batch))
	units = append(units, s.units...)
	units = append(units, batch...)
	return Simulation{initialAQI: s.initialAQI, units: units}
}

// Required is the total number of units needed from the initial AQI.
func (s Simulation) Required() int { return UnitsRequired(s.initialAQI) }

// Remaining is how many more units are needed; never negative.
func (s Simulation) Remaining() int { return max(0, s.Required()-len(s.units)) }

// CurrentAQI is the projected AQI after all placed units.
func (s Simulation) CurrentAQI() float64 { return ProjectedAQI(s.initialAQI, len(s.units)) }

// Impact is the total AQI reduction claimed by placed units.
func (s Simulation) Impact() float64 { return float64(len(s.units)) * PerUnitEffect }

// TargetAchieved reports whether enough units are placed. Landing exactly on
// SafeLevel counts.
func (s Simulation) TargetAchieved() bool { return len(s.units) >= s.Required() }

func (s Simulation) CO2RemovedKg() int { return CO2RemovedKg(len(s.units)) }

func (s Simulation) TreeEquivalent() int { return TreeEquivalent(len(s.units)) }

// Progress is the projected AQI as a percentage of the initial AQI.
func (s Simulation) Progress() float64 {
	if s.initialAQI <= 0 {
		return 0
	}
	return s.CurrentAQI() / s.initialAQI * 100
}

// SimulationEventKind names a simulation state transition.
type SimulationEventKind string

const (
	SimulationReset         SimulationEventKind = "reset"
	SimulationUnitPlaced    SimulationEventKind = "unit_placed"
	SimulationUnitsDeployed SimulationEventKind = "units_deployed"
)

// SimulationEvent describes one state transition. An auto-deploy produces a
// single event carrying the whole batch.
type SimulationEvent struct {
	ID             string              `json:"id"`
	SessionID      string              `json:"session_id"`
	Kind           SimulationEventKind `json:"kind"`
	InitialAQI     float64             `json:"initial_aqi"`
	Added          []Position          `json:"added,omitempty"`
	UnitCount      int                 `json:"unit_count"`
	ProjectedAQI   float64             `json:"projected_aqi"`
	TargetAchieved bool                `json:"target_achieved"`
	OccurredAt     time.Time           `json:"occurred_at"`
}

// NewSimulationEvent snapshots sim after a transition of the given kind.
func NewSimulationEvent(sessionID string, kind SimulationEventKind, sim Simulation, added []Position) SimulationEvent {
	now := clock.Now().UTC()
	return SimulationEvent{
		ID:             generateEventID(sessionID, kind, sim.UnitCount(), now),
		SessionID:      sessionID,
		Kind:           kind,
		InitialAQI:     sim.InitialAQI(),
		Added:          added,
		UnitCount:      sim.UnitCount(),
		ProjectedAQI:   sim.CurrentAQI(),
		TargetAchieved: sim.TargetAchieved(),
		OccurredAt:     now,
	}
}

// generateEventID derives a stable ID so redelivered events can be deduplicated.
func generateEventID(sessionID string, kind SimulationEventKind, count int, at time.Time) string {
	input := fmt.Sprintf("%s|%s|%d|%d", sessionID, kind, count, at.UnixNano())
	hash := sha256.Sum256([]byte(input))
	return fmt.Sprintf("%s-%s", kind, hex.EncodeToString(hash[:8]))
}
