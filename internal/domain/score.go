package domain

import "math"

// Score titles by tier, lower bound inclusive.
const (
	TitleLow      = "Low FOMO"
	TitleModerate = "Moderate FOMO"
	TitleHigh     = "High FOMO"
	TitleExtreme  = "Extreme FOMO"
)

// Score is a computed FOMO score with its categorical title.
type Score struct {
	Value float64
	Title string
}

// ComputeScore folds activity counts into a single score:
// groups*1 + messages*0.1, rounded to one decimal place, unbounded above.
// Negative inputs are clamped to zero; ComputeScore never fails.
func ComputeScore(groups, messages int) Score {
	if groups < 0 {
		groups = 0
	}
	if messages < 0 {
		messages = 0
	}
	value := math.Round((float64(groups)+0.1*float64(messages))*10) / 10
	return Score{Value: value, Title: titleFor(value)}
}

func titleFor(value float64) string {
	switch {
	case value < 3:
		return TitleLow
	case value < 6:
		return TitleModerate
	case value < 8:
		return TitleHigh
	default:
		return TitleExtreme
	}
}
