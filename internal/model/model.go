package model

// Batch represents a minibatch of flattened images and labels.
type Batch struct {
	Inputs [][]float32
	Labels []int
}

// Len returns the number of examples in the batch.
func (b Batch) Len() int { return len(b.Inputs) }

// Flatten concatenates the batch inputs into one backing slice, the layout
// the tensor constructor expects for shape [len, InputSize].
func (b Batch) Flatten() []float32 {
	flat := make([]float32, 0, len(b.Inputs)*InputSize)
	for _, input := range b.Inputs {
		flat = append(flat, input...)
	}
	return flat
}
