package domain

import (
	"math"
	"testing"
)

func TestComputeScore_Formula(t *testing.T) {
	for groups := 0; groups <= 20; groups++ {
		for messages := 0; messages <= 50; messages += 7 {
			got := ComputeScore(groups, messages)
			want := math.Round((float64(groups)+0.1*float64(messages))*10) / 10
			if got.Value != want {
				t.Errorf("ComputeScore(%d, %d) = %f, want %f", groups, messages, got.Value, want)
			}
			if got.Value < 0 {
				t.Errorf("ComputeScore(%d, %d) negative: %f", groups, messages, got.Value)
			}
		}
	}
}

func TestComputeScore_TitleBoundaries(t *testing.T) {
	tests := []struct {
		groups   int
		messages int
		value    float64
		title    string
	}{
		{0, 0, 0.0, TitleLow},
		{2, 9, 2.9, TitleLow},
		{3, 0, 3.0, TitleModerate},
		{5, 9, 5.9, TitleModerate},
		{6, 0, 6.0, TitleHigh},
		{4, 30, 7.0, TitleHigh},
		{7, 9, 7.9, TitleHigh},
		{8, 0, 8.0, TitleExtreme},
		{100, 100, 110.0, TitleExtreme},
	}

	for _, tc := range tests {
		got := ComputeScore(tc.groups, tc.messages)
		if got.Value != tc.value {
			t.Errorf("ComputeScore(%d, %d).Value = %f, want %f", tc.groups, tc.messages, got.Value, tc.value)
		}
		if got.Title != tc.title {
			t.Errorf("ComputeScore(%d, %d).Title = %q, want %q", tc.groups, tc.messages, got.Title, tc.title)
		}
	}
}

func TestComputeScore_NegativeInputsClamped(t *testing.T) {
	got := ComputeScore(-5, -100)
	if got.Value != 0 {
		t.Errorf("expected 0 for negative inputs, got %f", got.Value)
	}
	if got.Title != TitleLow {
		t.Errorf("expected %q, got %q", TitleLow, got.Title)
	}

	got = ComputeScore(-1, 30)
	if got.Value != 3.0 {
		t.Errorf("expected messages to still count, got %f", got.Value)
	}
}

func TestComputeScore_RoundsToOneDecimal(t *testing.T) {
	// 0.1*3 = 0.30000000000000004 in float64 without rounding
	got := ComputeScore(0, 3)
	if got.Value != 0.3 {
		t.Errorf("expected 0.3, got %v", got.Value)
	}
}
