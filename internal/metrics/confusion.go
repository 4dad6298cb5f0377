package metrics

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Confusion is a label-by-prediction count matrix for one evaluation pass.
type Confusion struct {
	classes int
	counts  *mat.Dense
}

// NewConfusion returns an empty matrix for the given number of classes.
func NewConfusion(classes int) *Confusion {
	return &Confusion{
		classes: classes,
		counts:  mat.NewDense(classes, classes, nil),
	}
}

// Observe records one prediction. Out-of-range values are ignored.
func (c *Confusion) Observe(label, predicted int) {
	if label < 0 || label >= c.classes || predicted < 0 || predicted >= c.classes {
		return
	}
	c.counts.Set(label, predicted, c.counts.At(label, predicted)+1)
}

// Total returns the number of observations.
func (c *Confusion) Total() int {
	return int(mat.Sum(c.counts))
}

// Accuracy returns the fraction of observations on the diagonal.
func (c *Confusion) Accuracy() float64 {
	total := mat.Sum(c.counts)
	if total == 0 {
		return 0
	}
	return mat.Trace(c.counts) / total
}

// PerClass returns the recall of each class, or 0 for unseen classes.
func (c *Confusion) PerClass() []float64 {
	out := make([]float64, c.classes)
	row := make([]float64, c.classes)
	for i := 0; i < c.classes; i++ {
		mat.Row(row, i, c.counts)
		total := floats.Sum(row)
		if total > 0 {
			out[i] = c.counts.At(i, i) / total
		}
	}
	return out
}

// String renders per-class recall on one line, for the epoch log.
func (c *Confusion) String() string {
	var b strings.Builder
	for i, acc := range c.PerClass() {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%d=%.3f", i, acc)
	}
	return b.String()
}
