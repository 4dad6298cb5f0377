package dataset

import (
	"context"
	"testing"
	"time"
)

func testSplit(n int) Split {
	split := Split{
		Images: make([][]float32, n),
		Labels: make([]int, n),
	}
	for i := 0; i < n; i++ {
		split.Images[i] = []float32{float32(i)}
		split.Labels[i] = i % NumClasses
	}
	return split
}

func TestStreamEpochCoversEveryExampleOnce(t *testing.T) {
	split := testSplit(100)
	samples, err := StreamEpoch(context.Background(), StreamOptions{Split: split, Seed: 7})
	if err != nil {
		t.Fatalf("StreamEpoch: %v", err)
	}
	seen := make(map[float32]int)
	for sample := range samples {
		seen[sample.Pixels[0]]++
	}
	if len(seen) != 100 {
		t.Fatalf("expected 100 distinct examples, got %d", len(seen))
	}
	for v, n := range seen {
		if n != 1 {
			t.Fatalf("example %f seen %d times", v, n)
		}
	}
}

func TestStreamEpochDeterministicPerSeed(t *testing.T) {
	split := testSplit(32)
	collect := func(seed int64) []float32 {
		samples, err := StreamEpoch(context.Background(), StreamOptions{Split: split, Seed: seed})
		if err != nil {
			t.Fatalf("StreamEpoch: %v", err)
		}
		var order []float32
		for sample := range samples {
			order = append(order, sample.Pixels[0])
		}
		return order
	}
	a, b := collect(3), collect(3)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("order differs at %d: %f vs %f", i, a[i], b[i])
		}
	}
	shuffled := false
	for i, v := range collect(3) {
		if v != float32(i) {
			shuffled = true
			break
		}
	}
	if !shuffled {
		t.Fatalf("expected shuffled order")
	}
}

func TestStreamEpochStopsOnCancel(t *testing.T) {
	split := testSplit(1000)
	ctx, cancel := context.WithCancel(context.Background())
	samples, err := StreamEpoch(ctx, StreamOptions{Split: split, Seed: 1, Prefetch: 1})
	if err != nil {
		t.Fatalf("StreamEpoch: %v", err)
	}
	<-samples
	cancel()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, open := <-samples:
			if !open {
				return
			}
		case <-deadline:
			t.Fatalf("stream did not stop after cancel")
		}
	}
}

func TestStreamEpochRejectsEmptySplit(t *testing.T) {
	if _, err := StreamEpoch(context.Background(), StreamOptions{}); err == nil {
		t.Fatalf("expected error for empty split")
	}
}
