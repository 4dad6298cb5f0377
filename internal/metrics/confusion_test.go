package metrics

import (
	"math"
	"testing"
)

func TestConfusionAccuracy(t *testing.T) {
	c := NewConfusion(3)
	c.Observe(0, 0)
	c.Observe(1, 1)
	c.Observe(1, 0)
	if c.Total() != 3 {
		t.Fatalf("expected 3 observations, got %d", c.Total())
	}
	if math.Abs(c.Accuracy()-2.0/3.0) > 1e-9 {
		t.Fatalf("unexpected accuracy %f", c.Accuracy())
	}
	perClass := c.PerClass()
	if perClass[0] != 1 || perClass[1] != 0.5 || perClass[2] != 0 {
		t.Fatalf("unexpected per-class recall %v", perClass)
	}
}

func TestConfusionIgnoresOutOfRange(t *testing.T) {
	c := NewConfusion(2)
	c.Observe(-1, 0)
	c.Observe(0, 5)
	if c.Total() != 0 {
		t.Fatalf("out of range observations were counted")
	}
	if c.Accuracy() != 0 {
		t.Fatalf("empty matrix should have zero accuracy")
	}
}
