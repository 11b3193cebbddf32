package domain

import "math"

// Tier is an AQI severity tier. Higher values are more severe.
type Tier int

const (
	TierGood Tier = iota
	TierModerate
	TierSensitive
	TierUnhealthy
	TierVeryUnhealthy
	TierHazardous
)

func (t Tier) String() string {
	if t < TierGood || t > TierHazardous {
		return "unknown"
	}
	return tierTable[t].label
}

// Category is the display classification for an AQI value.
type Category struct {
	Tier  Tier   `json:"tier"`
	Label string `json:"label"`
	Color string `json:"color"`
}

var tierTable = []struct {
	max   float64
	label string
	color string
}{
	TierGood:          {50, "Good", "#00FF94"},
	TierModerate:      {100, "Moderate", "#FACC15"},
	TierSensitive:     {150, "Unhealthy (Sensitive Groups)", "#FB923C"},
	TierUnhealthy:     {200, "Unhealthy", "#EF4444"},
	TierVeryUnhealthy: {300, "Very Unhealthy", "#A855F7"},
	TierHazardous:     {math.Inf(1), "Hazardous", "#B91C1C"},
}

// Classify maps an AQI value to its severity tier.
func Classify(aqi float64) Category {
	aqi = sanitizeAQI(aqi)
	for i, row := range tierTable {
		if aqi <= row.max {
			return Category{Tier: Tier(i), Label: row.label, Color: row.color}
		}
	}
	last := tierTable[TierHazardous]
	return Category{Tier: TierHazardous, Label: last.label, Color: last.color}
}

// Band is one of the five coarse gradient bands.
type Band int

const (
	BandGreen Band = iota
	BandYellow
	BandOrange
	BandRed
	BandDarkRed
)

// Gradient is a two-stop colour ramp for the headline AQI numeral.
type Gradient struct {
	Band Band   `json:"band"`
	From string `json:"from"`
	To   string `json:"to"`
}

var bandTable = []struct {
	max      float64
	from, to string
}{
	BandGreen:   {50, "#4ADE80", "#16A34A"},
	BandYellow:  {100, "#FDE047", "#EAB308"},
	BandOrange:  {200, "#FB923C", "#EA580C"},
	BandRed:     {300, "#F87171", "#DC2626"},
	BandDarkRed: {math.Inf(1), "#B91C1C", "#7F1D1D"},
}

// GradientFor selects the gradient band for an AQI value. The bands are
// coarser than the severity tiers: 101–200 is a single band.
func GradientFor(aqi float64) Gradient {
	aqi = sanitizeAQI(aqi)
	for i, row := range bandTable {
		if aqi <= row.max {
			return Gradient{Band: Band(i), From: row.from, To: row.to}
		}
	}
	last := bandTable[BandDarkRed]
	return Gradient{Band: BandDarkRed, From: last.from, To: last.to}
}

// SeverityScaleMax is the AQI at which the severity bar is full.
const SeverityScaleMax = 500

// SeverityWidth returns the severity bar fill as a percentage in [0, 100].
func SeverityWidth(aqi float64) float64 {
	return math.Min(sanitizeAQI(aqi)/SeverityScaleMax*100, 100)
}

// Simulator palette.
const (
	ColorDanger  = "#FF4C4C"
	ColorCaution = "#FACC15"
	ColorSafe    = "#00FF94"
)

// SimulationColor is the three-step colour used by the simulator panel.
func SimulationColor(aqi float64) string {
	switch {
	case aqi > 150:
		return ColorDanger
	case aqi > 100:
		return ColorCaution
	default:
		return ColorSafe
	}
}

// SmogTint is the overlay colour tinting the simulator map.
func SmogTint(aqi float64) string {
	if aqi > 100 {
		return ColorDanger
	}
	return ColorSafe
}

// SmogOpacity returns the map overlay opacity: 0 for clear air up to 0.5.
func SmogOpacity(aqi float64) float64 {
	return math.Min(0.5, sanitizeAQI(aqi)/400)
}

// HazeOpacity returns the blur overlay opacity, zero at or below the safe level.
func HazeOpacity(aqi float64) float64 {
	return math.Max(0, (sanitizeAQI(aqi)-SafeLevel)/400)
}

// AdvisoryThreshold is the AQI above which outdoor activity is discouraged.
const AdvisoryThreshold = 150

// Advisory is the health guidance shown beside a live reading.
type Advisory struct {
	Hazardous bool   `json:"hazardous"`
	Message   string `json:"message"`
	Accent    string `json:"accent"`
}

const (
	hazardousAdvice  = "Pollution levels are hazardous. Avoid outdoor activities. Wear a mask if stepping out is necessary."
	acceptableAdvice = "Air quality is acceptable. It is safe for outdoor activities for most people."
)

// AdviseFor returns the advisory for an AQI reading. +Inf is hazardous;
// NaN and negative readings are acceptable.
func AdviseFor(aqi float64) Advisory {
	if sanitizeAQI(aqi) > AdvisoryThreshold {
		return Advisory{Hazardous: true, Message: hazardousAdvice, Accent: ColorDanger}
	}
	return Advisory{Message: acceptableAdvice, Accent: ColorSafe}
}

// sanitizeAQI clamps negative and NaN readings to zero.
func sanitizeAQI(aqi float64) float64 {
	if math.IsNaN(aqi) || aqi < 0 {
		return 0
	}
	return aqi
}
