package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/gomlx/gomlx/backends"
	_ "github.com/gomlx/gomlx/backends/simplego"
	mlcontext "github.com/gomlx/gomlx/ml/context"
	"github.com/gomlx/gomlx/ml/context/checkpoints"

	"digit-forge/internal/config"
	"digit-forge/internal/dataset"
	"digit-forge/internal/model"
	"digit-forge/internal/predict"
)

func main() {
	cfgPath := flag.String("config", "configs/mnist.yaml", "Path to YAML config")
	dataDir := flag.String("data-dir", "", "Override dataset directory")
	checkpointDir := flag.String("checkpoint-dir", "", "Override checkpoint directory")
	index := flag.Int("index", 0, "Index of the first test example to classify")
	count := flag.Int("count", 1, "Number of test examples to classify")

	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg.ApplyOverrides(config.Overrides{DataDir: *dataDir, CheckpointDir: *checkpointDir})
	if cfg.CheckpointDir == "" {
		log.Fatalf("checkpoint_dir must be set to classify")
	}

	_, testSplit, err := dataset.Load(cfg.DataDir)
	if err != nil {
		log.Fatalf("load dataset under %s: %v", cfg.DataDir, err)
	}
	if *index < 0 || *index >= testSplit.Len() {
		log.Fatalf("index %d out of range, test split has %d examples", *index, testSplit.Len())
	}
	end := *index + *count
	if end > testSplit.Len() {
		end = testSplit.Len()
	}

	backend := backends.MustNew()
	modelCtx := mlcontext.New()
	if _, err := checkpoints.Build(modelCtx).Dir(cfg.CheckpointDir).Done(); err != nil {
		log.Fatalf("load checkpoint from %s: %v", cfg.CheckpointDir, err)
	}
	predictor := model.NewPredictor(backend, modelCtx)

	batch := model.Batch{
		Inputs: testSplit.Images[*index:end],
		Labels: testSplit.Labels[*index:end],
	}
	correct := 0
	for i, logits := range predictor.Logits(batch) {
		probs := predict.Softmax(logits)
		class := predict.Argmax(probs)
		label := batch.Labels[i]
		if class == label {
			correct++
		}
		fmt.Printf("example=%d label=%d predicted=%d confidence=%.1f%%\n",
			*index+i, label, class, probs[class]*100)
		fmt.Print(predict.Render(batch.Inputs[i], probs))
	}
	fmt.Printf("correct=%d/%d\n", correct, batch.Len())
}
