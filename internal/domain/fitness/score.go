package fitness

import "math"

// Healthy BMI band, exclusive on both ends.
const (
	bmiHealthyLow  = 18.5
	bmiHealthyHigh = 23.0
)

// BMI scores
const (
	BMIScoreHealthy   = 4
	BMIScoreUnhealthy = 2
)

// Score maps a raw value to a 1–5 score.
// Gender and ageBand are accepted for future norm tables but do not branch
// the thresholds yet.
// PRE: rawValue >= 0 and finite for non-BMI items
// POST: returns 1..5 for non-BMI items; 2 or 4 for BMI
func Score(item Subject, gender string, ageBand int, rawValue float64) int {
	if item == SubjectBMI {
		if rawValue > bmiHealthyLow && rawValue < bmiHealthyHigh {
			return BMIScoreHealthy
		}
		return BMIScoreUnhealthy
	}
	f := math.Floor(rawValue / 5)
	if f >= FullMark {
		return FullMark
	}
	if f < 1 || math.IsNaN(f) {
		return 1
	}
	return int(f)
}

// ComputeBMI returns weight / height(m)^2 rounded to one decimal place,
// half away from zero.
// PRE: heightCm > 0
func ComputeBMI(heightCm, weightKg float64) float64 {
	m := heightCm / 100
	return math.Round(weightKg/(m*m)*10) / 10
}
