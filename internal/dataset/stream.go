package dataset

import (
	"context"
	"errors"
	"math/rand"
)

// Sample is one example as fed to the model: a flattened normalized image
// and its digit label.
type Sample struct {
	Pixels []float32
	Label  int
}

// StreamOptions configures one epoch of shuffled samples.
type StreamOptions struct {
	Split    Split
	Seed     int64
	Prefetch int
}

const defaultPrefetch = 4

// StreamEpoch launches a goroutine that yields every example of the split
// exactly once, in an order shuffled by Seed, then closes the channel.
// The stream stops early if ctx is canceled.
func StreamEpoch(parent context.Context, opts StreamOptions) (<-chan Sample, error) {
	if opts.Split.Len() == 0 {
		return nil, errors.New("stream: empty split")
	}
	if len(opts.Split.Images) != len(opts.Split.Labels) {
		return nil, errors.New("stream: image/label count mismatch")
	}
	if opts.Prefetch <= 0 {
		opts.Prefetch = defaultPrefetch
	}

	perm := rand.New(rand.NewSource(opts.Seed)).Perm(opts.Split.Len())
	out := make(chan Sample, opts.Prefetch)

	go func() {
		defer close(out)
		for _, idx := range perm {
			sample := Sample{Pixels: opts.Split.Images[idx], Label: opts.Split.Labels[idx]}
			select {
			case <-parent.Done():
				return
			case out <- sample:
			}
		}
	}()

	return out, nil
}
