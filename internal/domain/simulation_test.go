package domain

import (
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedSource returns the same value on every draw.
type fixedSource float64

func (f fixedSource) Float64() float64 { return float64(f) }

func TestUnitsRequired(t *testing.T) {
	assert.Equal(t, 26, UnitsRequired(180))
	assert.Equal(t, 1, UnitsRequired(51))
	assert.Equal(t, 1, UnitsRequired(55))
	assert.Equal(t, 2, UnitsRequired(55.5))
	assert.Equal(t, 0, UnitsRequired(50))
	assert.Equal(t, 0, UnitsRequired(40))
	assert.Equal(t, 0, UnitsRequired(0))
	assert.Equal(t, 0, UnitsRequired(math.NaN()))
	assert.Equal(t, 0, UnitsRequired(math.Inf(1)))
}

func TestUnitsRequired_Properties(t *testing.T) {
	for aqi := 0.0; aqi <= 600; aqi += 0.25 {
		n := UnitsRequired(aqi)
		assert.GreaterOrEqual(t, n, 0)
		assert.Equal(t, aqi <= SafeLevel, n == 0, "aqi=%v", aqi)
		if n > 0 {
			assert.LessOrEqual(t, ProjectedAQI(aqi, n), SafeLevel, "aqi=%v", aqi)
			assert.Greater(t, ProjectedAQI(aqi, n-1), SafeLevel, "aqi=%v", aqi)
		}
	}
}

func TestUnitsRequiredFor_CustomParameters(t *testing.T) {
	assert.Equal(t, 10, UnitsRequiredFor(200, 100, 10))
	assert.Equal(t, 0, UnitsRequiredFor(200, 100, 0))
	assert.Equal(t, 0, UnitsRequiredFor(80, 100, 10))
}

func TestProjectedAQI(t *testing.T) {
	assert.InDelta(t, 180, ProjectedAQI(180, 0), 1e-9)
	assert.InDelta(t, 50, ProjectedAQI(180, 26), 1e-9)
	assert.InDelta(t, 0, ProjectedAQI(180, 1000), 1e-9)
	assert.InDelta(t, 180, ProjectedAQI(180, -3), 1e-9)
	assert.InDelta(t, 0, ProjectedAQI(math.NaN(), 2), 1e-9)

	prev := ProjectedAQI(180, 0)
	for n := 1; n < 100; n++ {
		cur := ProjectedAQI(180, n)
		assert.GreaterOrEqual(t, cur, 0.0)
		assert.LessOrEqual(t, cur, prev)
		prev = cur
	}
}

func TestCeilingTightnessAt180(t *testing.T) {
	n := UnitsRequired(180)
	assert.LessOrEqual(t, ProjectedAQI(180, n), 50.0)
	assert.Greater(t, ProjectedAQI(180, n-1), 50.0)
}

func TestConversionFactors(t *testing.T) {
	assert.Equal(t, 5200, CO2RemovedKg(26))
	assert.Equal(t, 1300, TreeEquivalent(26))
	assert.Equal(t, 0, CO2RemovedKg(-1))
}

func TestParseInitialAQI(t *testing.T) {
	cases := []struct {
		raw  string
		want float64
	}{
		{"", 180},
		{"   ", 180},
		{"abc", 180},
		{"NaN", 180},
		{"Inf", 180},
		{"-10", 180},
		{"0", 0},
		{"240", 240},
		{" 95 ", 95},
		{"152.5", 152.5},
	}
	for _, tc := range cases {
		assert.InDelta(t, tc.want, ParseInitialAQI(tc.raw), 1e-9, "raw=%q", tc.raw)
	}
}

func TestSimulation_ReachesTargetExactlyAtSafeLevel(t *testing.T) {
	sim := NewSimulation(180)
	require.Equal(t, 26, sim.Required())
	assert.False(t, sim.TargetAchieved())

	for i := 0; i < 26; i++ {
		sim = sim.PlaceUnit(Position{Lat: 28.6, Lng: 77.2})
	}

	assert.Equal(t, 26, sim.UnitCount())
	assert.InDelta(t, 50, sim.CurrentAQI(), 1e-9)
	assert.True(t, sim.TargetAchieved())
	assert.Equal(t, 0, sim.Remaining())
	assert.InDelta(t, 130, sim.Impact(), 1e-9)
	assert.Equal(t, 5200, sim.CO2RemovedKg())
	assert.Equal(t, 1300, sim.TreeEquivalent())
}

func TestSimulation_AlreadySafe(t *testing.T) {
	sim := NewSimulation(40)

	assert.Equal(t, 0, sim.Required())
	assert.True(t, sim.TargetAchieved())

	next, added := sim.AutoDeployRemaining(DefaultAnchor, fixedSource(0.5))
	assert.Nil(t, added)
	assert.Equal(t, 0, next.UnitCount())
	assert.Equal(t, sim, next)
}

func TestSimulation_PlaceUnitDoesNotMutateOriginal(t *testing.T) {
	base := NewSimulation(100)
	one := base.PlaceUnit(Position{Lat: 1, Lng: 2})
	two := one.PlaceUnit(Position{Lat: 1, Lng: 2})

	assert.Equal(t, 0, base.UnitCount())
	assert.Equal(t, 1, one.UnitCount())
	assert.Equal(t, 2, two.UnitCount(), "duplicates are kept")

	units := two.Units()
	units[0].Lat = 99
	assert.InDelta(t, 1, two.Units()[0].Lat, 1e-9, "Units returns a copy")
}

func TestSimulation_AutoDeployRemaining(t *testing.T) {
	sim := NewSimulation(180).
		PlaceUnit(Position{Lat: 28.7, Lng: 77.1}).
		PlaceUnit(Position{Lat: 28.5, Lng: 77.3})

	r := rand.New(rand.NewPCG(7, 11))
	next, added := sim.AutoDeployRemaining(DefaultAnchor, r)

	require.Len(t, added, 24)
	assert.Equal(t, 26, next.UnitCount())
	assert.True(t, next.TargetAchieved())
	assert.InDelta(t, 50, next.CurrentAQI(), 1e-9)
	assert.Equal(t, 2, sim.UnitCount(), "original state untouched")

	for _, p := range added {
		assert.InDelta(t, DefaultAnchor.Lat, p.Lat, JitterRadius)
		assert.InDelta(t, DefaultAnchor.Lng, p.Lng, JitterRadius)
	}
	assert.Equal(t, added, next.Units()[2:], "batch appended in order after existing units")

	again, more := next.AutoDeployRemaining(DefaultAnchor, r)
	assert.Nil(t, more)
	assert.Equal(t, next, again)
}

func TestSimulation_AutoDeployJitterExtremes(t *testing.T) {
	sim := NewSimulation(55)

	_, low := sim.AutoDeployRemaining(DefaultAnchor, fixedSource(0))
	require.Len(t, low, 1)
	assert.InDelta(t, DefaultAnchor.Lat-JitterRadius, low[0].Lat, 1e-9)
	assert.InDelta(t, DefaultAnchor.Lng-JitterRadius, low[0].Lng, 1e-9)

	_, mid := sim.AutoDeployRemaining(DefaultAnchor, fixedSource(0.5))
	assert.Equal(t, DefaultAnchor, mid[0])
}

func TestSimulation_AutoDeployDefaultSource(t *testing.T) {
	next, added := NewSimulation(60).AutoDeployRemaining(DefaultAnchor, nil)
	assert.Len(t, added, 2)
	assert.True(t, next.TargetAchieved())
}

func TestSimulation_Progress(t *testing.T) {
	sim := NewSimulation(200)
	assert.InDelta(t, 100, sim.Progress(), 1e-9)

	for i := 0; i < 20; i++ {
		sim = sim.PlaceUnit(Position{})
	}
	assert.InDelta(t, 50, sim.Progress(), 1e-9)
	assert.InDelta(t, 0, NewSimulation(0).Progress(), 1e-9)
}

func TestNewSimulationEvent(t *testing.T) {
	fixed := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(fixed))
	t.Cleanup(func() { SetClock(nil) })

	sim, added := NewSimulation(180).AutoDeployRemaining(DefaultAnchor, fixedSource(0.5))
	evt := NewSimulationEvent("sess-1", SimulationUnitsDeployed, sim, added)

	assert.Equal(t, "sess-1", evt.SessionID)
	assert.Equal(t, SimulationUnitsDeployed, evt.Kind)
	assert.Len(t, evt.Added, 26)
	assert.Equal(t, 26, evt.UnitCount)
	assert.InDelta(t, 50, evt.ProjectedAQI, 1e-9)
	assert.True(t, evt.TargetAchieved)
	assert.Equal(t, fixed, evt.OccurredAt)
	assert.Contains(t, evt.ID, "units_deployed-")

	again := NewSimulationEvent("sess-1", SimulationUnitsDeployed, sim, added)
	assert.Equal(t, evt.ID, again.ID, "same transition at the same instant yields the same ID")
}
