package model

import "testing"

func TestBatchFlatten(t *testing.T) {
	a := make([]float32, InputSize)
	b := make([]float32, InputSize)
	a[0], a[InputSize-1] = 1, 2
	b[0], b[InputSize-1] = 3, 4
	batch := Batch{Inputs: [][]float32{a, b}, Labels: []int{0, 1}}

	flat := batch.Flatten()
	if len(flat) != 2*InputSize {
		t.Fatalf("unexpected flat length %d", len(flat))
	}
	if flat[0] != 1 || flat[InputSize-1] != 2 {
		t.Fatalf("first row misplaced: %f %f", flat[0], flat[InputSize-1])
	}
	if flat[InputSize] != 3 || flat[2*InputSize-1] != 4 {
		t.Fatalf("second row misplaced: %f %f", flat[InputSize], flat[2*InputSize-1])
	}
}
