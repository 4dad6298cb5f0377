package trainer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gomlx/gomlx/backends"
	_ "github.com/gomlx/gomlx/backends/simplego"
	mlcontext "github.com/gomlx/gomlx/ml/context"
	"github.com/gomlx/gomlx/ml/context/checkpoints"
	"github.com/gomlx/gomlx/ml/train"
	"github.com/gomlx/gomlx/ml/train/losses"
	"github.com/gomlx/gomlx/ml/train/optimizers"
	"github.com/gomlx/gomlx/types/tensors"

	"digit-forge/internal/dataset"
	"digit-forge/internal/metrics"
	"digit-forge/internal/model"
	"digit-forge/internal/predict"
)

// RunConfig captures the knobs required by the training loop.
type RunConfig struct {
	Train         dataset.Split
	Test          dataset.Split
	Epochs        int
	BatchSize     int
	LearningRate  float64
	Seed          int64
	LogEvery      int
	Prefetch      int
	CheckpointDir string
}

// Run executes the training workload: one fused forward/backward/update
// step per batch, a test-set evaluation and checkpoint at each epoch
// boundary. Gradient buffers are zeroed and repopulated inside the
// framework's step.
func Run(ctx context.Context, cfg RunConfig) error {
	if cfg.Epochs <= 0 {
		return errors.New("trainer: epochs must be > 0")
	}
	if cfg.BatchSize <= 0 {
		return errors.New("trainer: batch size must be > 0")
	}
	if cfg.Train.Len() == 0 {
		return errors.New("trainer: empty train split")
	}
	if cfg.LearningRate <= 0 {
		cfg.LearningRate = 0.003
	}
	if cfg.LogEvery <= 0 {
		cfg.LogEvery = 100
	}

	backend := backends.MustNew()
	modelCtx := mlcontext.New()
	modelCtx.SetParam(optimizers.ParamLearningRate, cfg.LearningRate)

	var checkpoint *checkpoints.Handler
	if cfg.CheckpointDir != "" {
		var err error
		checkpoint, err = checkpoints.Build(modelCtx).Dir(cfg.CheckpointDir).Keep(3).Done()
		if err != nil {
			return fmt.Errorf("trainer: attach checkpoint dir: %w", err)
		}
	}

	loopTrainer := train.NewTrainer(backend, modelCtx, model.GraphFn,
		losses.SparseCategoricalCrossEntropyLogits,
		optimizers.StochasticGradientDescent(),
		nil, nil)
	predictor := model.NewPredictor(backend, modelCtx)

	for epoch := 1; epoch <= cfg.Epochs; epoch++ {
		samples, err := dataset.StreamEpoch(ctx, dataset.StreamOptions{
			Split:    cfg.Train,
			Seed:     cfg.Seed + int64(epoch),
			Prefetch: cfg.Prefetch,
		})
		if err != nil {
			return err
		}

		var window metrics.Window
		epochLoss := 0.0
		steps := 0

		for {
			startData := time.Now()
			batch, ok, err := nextBatch(ctx, samples, cfg.BatchSize)
			if err != nil {
				return err
			}
			if !ok {
				break
			}
			dataTime := time.Since(startData)

			startCompute := time.Now()
			loss := trainStep(loopTrainer, batch)
			computeTime := time.Since(startCompute)

			window.Record(batch.Len(), dataTime, computeTime, loss)
			epochLoss += loss
			steps++

			if steps%cfg.LogEvery == 0 {
				snap := window.Snapshot()
				log.Printf("epoch=%d step=%d images_per_sec=%.1f data_ms=%.2f compute_ms=%.2f loss=%.4f",
					epoch,
					steps,
					snap.ImagesPerSec,
					snap.AvgDataMS,
					snap.AvgComputeMS,
					snap.LastLoss,
				)
			}
		}

		if steps == 0 {
			return errors.New("trainer: epoch produced no batches")
		}

		confusion := evaluate(predictor, cfg.Test, cfg.BatchSize)
		log.Printf("epoch=%d avg_loss=%.4f test_accuracy=%.4f", epoch, epochLoss/float64(steps), confusion.Accuracy())
		log.Printf("epoch=%d per_class %s", epoch, confusion)

		if checkpoint != nil {
			if err := checkpoint.Save(); err != nil {
				return fmt.Errorf("trainer: save checkpoint: %w", err)
			}
		}
	}

	return nil
}

// trainStep feeds one minibatch through the framework's fused step and
// returns the batch loss.
func trainStep(t *train.Trainer, batch model.Batch) float64 {
	inputs := []*tensors.Tensor{
		tensors.FromFlatDataAndDimensions(batch.Flatten(), batch.Len(), model.InputSize),
	}
	labels := []*tensors.Tensor{labelTensor(batch.Labels)}
	stepMetrics := t.TrainStep(nil, inputs, labels)
	return float64(tensors.ToScalar[float32](stepMetrics[0]))
}

func labelTensor(labels []int) *tensors.Tensor {
	flat := make([]int32, len(labels))
	for i, label := range labels {
		flat[i] = int32(label)
	}
	return tensors.FromFlatDataAndDimensions(flat, len(labels), 1)
}

// nextBatch assembles up to batchSize samples from the epoch stream.
// ok is false once the stream is exhausted.
func nextBatch(ctx context.Context, samples <-chan dataset.Sample, batchSize int) (batch model.Batch, ok bool, err error) {
	inputs := make([][]float32, 0, batchSize)
	labels := make([]int, 0, batchSize)
	for len(inputs) < batchSize {
		select {
		case <-ctx.Done():
			return model.Batch{}, false, ctx.Err()
		case sample, open := <-samples:
			if !open {
				if len(inputs) == 0 {
					return model.Batch{}, false, nil
				}
				return model.Batch{Inputs: inputs, Labels: labels}, true, nil
			}
			inputs = append(inputs, sample.Pixels)
			labels = append(labels, sample.Label)
		}
	}
	return model.Batch{Inputs: inputs, Labels: labels}, true, nil
}

// evaluate runs the forward pass over the whole test split in order.
func evaluate(predictor *model.Predictor, test dataset.Split, batchSize int) *metrics.Confusion {
	confusion := metrics.NewConfusion(model.NumClasses)
	for start := 0; start < test.Len(); start += batchSize {
		end := start + batchSize
		if end > test.Len() {
			end = test.Len()
		}
		batch := model.Batch{Inputs: test.Images[start:end], Labels: test.Labels[start:end]}
		for i, logits := range predictor.Logits(batch) {
			confusion.Observe(batch.Labels[i], predict.Argmax(logits))
		}
	}
	return confusion
}
