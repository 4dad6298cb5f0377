package trainer

import (
	"context"
	"testing"

	"digit-forge/internal/dataset"
)

func feedSamples(n int) chan dataset.Sample {
	ch := make(chan dataset.Sample, n)
	for i := 0; i < n; i++ {
		ch <- dataset.Sample{Pixels: []float32{float32(i)}, Label: i % 10}
	}
	close(ch)
	return ch
}

func TestNextBatchAssemblesFullAndShortBatches(t *testing.T) {
	samples := feedSamples(5)
	ctx := context.Background()

	sizes := []int{2, 2, 1}
	for _, want := range sizes {
		batch, ok, err := nextBatch(ctx, samples, 2)
		if err != nil {
			t.Fatalf("nextBatch: %v", err)
		}
		if !ok {
			t.Fatalf("stream ended early")
		}
		if batch.Len() != want {
			t.Fatalf("expected batch of %d, got %d", want, batch.Len())
		}
		if len(batch.Labels) != batch.Len() {
			t.Fatalf("labels out of step with inputs")
		}
	}

	if _, ok, err := nextBatch(ctx, samples, 2); ok || err != nil {
		t.Fatalf("expected exhausted stream, ok=%v err=%v", ok, err)
	}
}

func TestNextBatchHonorsCancel(t *testing.T) {
	samples := make(chan dataset.Sample)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, _, err := nextBatch(ctx, samples, 4); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestRunRejectsBadConfig(t *testing.T) {
	ctx := context.Background()
	cases := []RunConfig{
		{BatchSize: 8},
		{Epochs: 1},
		{Epochs: 1, BatchSize: 8},
	}
	for i, cfg := range cases {
		if err := Run(ctx, cfg); err == nil {
			t.Fatalf("case %d: expected config error", i)
		}
	}
}
