package model

import (
	"github.com/gomlx/gomlx/backends"
	. "github.com/gomlx/gomlx/graph"
	"github.com/gomlx/gomlx/ml/context"
	"github.com/gomlx/gomlx/ml/layers"
	"github.com/gomlx/gomlx/ml/layers/activations"
	"github.com/gomlx/gomlx/types/tensors"

	"digit-forge/internal/dataset"
)

// Network dimensions. The input is a flattened digit image and the output
// one logit per digit class.
const (
	InputSize  = dataset.ImageSize * dataset.ImageSize
	Hidden1    = 128
	Hidden2    = 64
	NumClasses = dataset.NumClasses
)

// GraphFn builds the classifier graph: two ReLU hidden layers over the
// flattened image, then a linear layer producing the logits.
// inputs: one tensor with shape [batch_size, InputSize].
// It returns the logits, not the probabilities, which is what the sparse
// cross-entropy loss expects.
func GraphFn(ctx *context.Context, spec any, inputs []*Node) []*Node {
	ctx = ctx.In("model")
	batchSize := inputs[0].Shape().Dimensions[0]
	x := Reshape(inputs[0], batchSize, InputSize)
	x = layers.DenseWithBias(ctx.In("hidden0"), x, Hidden1)
	x = activations.Relu(x)
	x = layers.DenseWithBias(ctx.In("hidden1"), x, Hidden2)
	x = activations.Relu(x)
	logits := layers.DenseWithBias(ctx.In("output"), x, NumClasses)
	logits.AssertDims(batchSize, NumClasses)
	return []*Node{logits}
}

// Predictor runs the forward pass only, reusing the variables already
// created by training or loaded from a checkpoint.
type Predictor struct {
	exec *context.Exec
}

// NewPredictor compiles the forward pass against ctx's variables.
func NewPredictor(backend backends.Backend, ctx *context.Context) *Predictor {
	exec := context.NewExec(backend, ctx.Reuse(), func(ctx *context.Context, images *Node) *Node {
		return GraphFn(ctx, nil, []*Node{images})[0]
	})
	return &Predictor{exec: exec}
}

// Logits returns one row of raw class scores per example in the batch.
func (p *Predictor) Logits(batch Batch) [][]float32 {
	input := tensors.FromFlatDataAndDimensions(batch.Flatten(), batch.Len(), InputSize)
	out := p.exec.Call(input)[0]
	return out.Value().([][]float32)
}
