package random

import "testing"

func TestSeededSourcesAgree(t *testing.T) {
	a, b := NewSource(99), NewSource(99)
	for i := 0; i < 50; i++ {
		if x, y := a.IntRange(1, 3), b.IntRange(1, 3); x != y {
			t.Fatalf("draw %d: %d != %d", i, x, y)
		}
	}
}

func TestSourceBounds(t *testing.T) {
	s := NewSource(0)
	for i := 0; i < 500; i++ {
		if v := s.IntRange(1, 3); v < 1 || v > 3 {
			t.Fatalf("IntRange() = %d", v)
		}
		if f := s.Float64Range(8, 48); f < 8 || f > 48 {
			t.Fatalf("Float64Range() = %v", f)
		}
	}
}
