package predict

import (
	"fmt"
	"strings"

	"github.com/chewxy/math32"

	"digit-forge/internal/dataset"
)

// Softmax converts one row of logits into probabilities that sum to 1.
// The max-logit shift keeps the exponentials from overflowing.
func Softmax(logits []float32) []float32 {
	maxLogit := logits[0]
	for _, v := range logits {
		if v > maxLogit {
			maxLogit = v
		}
	}
	sum := float32(0)
	out := make([]float32, len(logits))
	for i, v := range logits {
		e := math32.Exp(v - maxLogit)
		out[i] = e
		sum += e
	}
	inv := 1 / sum
	for i := range out {
		out[i] *= inv
	}
	return out
}

// Argmax returns the index of the largest probability.
func Argmax(probs []float32) int {
	best := 0
	for i, v := range probs {
		if v > probs[best] {
			best = i
		}
	}
	return best
}

// shades from background to full ink.
var shades = []byte(" .:-=+*#%@")

// Render returns a terminal view of the digit beside a per-class
// probability bar chart. Pixels are expected in [-1,1] as produced by the
// dataset normalization.
func Render(pixels []float32, probs []float32) string {
	const barWidth = 24

	var b strings.Builder
	for row := 0; row < dataset.ImageSize; row++ {
		for col := 0; col < dataset.ImageSize; col++ {
			v := (pixels[row*dataset.ImageSize+col] + 1) / 2
			if v < 0 {
				v = 0
			}
			if v > 1 {
				v = 1
			}
			idx := int(v * float32(len(shades)-1))
			b.WriteByte(shades[idx])
		}
		if row < len(probs) {
			bar := int(probs[row]*barWidth + 0.5)
			fmt.Fprintf(&b, "  %d %-*s %5.1f%%", row, barWidth, strings.Repeat("|", bar), probs[row]*100)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
