// Package domain models the air-quality readings, predictions, and mitigation
// simulations shown by the Veridian dashboard.
//
// # Data Source
//
// Readings and predictions come from the Veridian prediction API (a separate
// Python service). It exposes four read endpoints: /current (live WAQI
// snapshot for a city), /forecast (daily series), /predict-anchor (historical
// anchor prediction for a calendar date), and /cities. Every statistic in a
// prediction (mean, confidence interval, z-score) is computed server-side and
// treated here as an opaque number.
//
// # AQI Scales
//
// Two scales are used and must not be merged:
//
//	Severity tiers (inclusive upper bounds), see [Classify]:
//	  ≤50 Good | ≤100 Moderate | ≤150 Unhealthy (Sensitive Groups)
//	  ≤200 Unhealthy | ≤300 Very Unhealthy | >300 Hazardous
//
//	Gradient bands for the large AQI numeral, see [GradientFor]:
//	  ≤50 | ≤100 | ≤200 | ≤300 | >300
//
// Negative and NaN values are clamped to 0 before classification. +Inf is
// Hazardous.
//
// # Year Deviation
//
// Each row of a prediction's yearly breakdown carries a z-score: how far that
// year's reading on the target day sat from the year's own mean, in standard
// deviations. [ClassifyDeviation] buckets it into five half-open ranges that
// tile the real line:
//
//	z < -1 | -1 ≤ z < -0.3 | -0.3 ≤ z < 0.3 | 0.3 ≤ z < 1 | z ≥ 1
//
// # Mitigation Simulation
//
// A mitigation unit is a simulated device with a fixed linear effect: each one
// lowers AQI by [PerUnitEffect]. The target is [SafeLevel]. Projected AQI is
// always derived from the unit list, never stored:
//
//	projected = max(0, initial - units × 5)
//	required  = ceil((initial - 50) / 5) when initial > 50, else 0
//
// CO₂ offset (200 kg/unit) and tree equivalents (50 trees/unit) are fixed
// presentation factors, not measurements.
package domain
