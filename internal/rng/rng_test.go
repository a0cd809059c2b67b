package rng

import "testing"

func TestPercentBoundaries(t *testing.T) {
	s := NewSeeded(1)
	if s.Percent(0) {
		t.Error("Percent(0) should never fire")
	}
	if !s.Percent(100) {
		t.Error("Percent(100) should always fire")
	}
}

func TestPercentIsRoughlyCalibrated(t *testing.T) {
	s := NewSeeded(42)
	hits := 0
	const trials = 20000
	for i := 0; i < trials; i++ {
		if s.Percent(70) {
			hits++
		}
	}
	rate := float64(hits) / trials
	if rate < 0.65 || rate > 0.75 {
		t.Errorf("Percent(70) fired at rate %.3f over %d trials, want ~0.70", rate, trials)
	}
}

func TestIndependentSourcesDoNotShareState(t *testing.T) {
	a := NewSeeded(7)
	b := NewSeeded(7)
	if a.Uint32() != b.Uint32() {
		t.Error("two sources with the same seed should produce the same first value")
	}
}
