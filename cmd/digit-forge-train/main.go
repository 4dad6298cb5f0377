package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"digit-forge/internal/config"
	"digit-forge/internal/dataset"
	"digit-forge/internal/trainer"
)

func main() {
	cfgPath := flag.String("config", "configs/mnist.yaml", "Path to YAML config")
	dataDir := flag.String("data-dir", "", "Override dataset directory")
	checkpointDir := flag.String("checkpoint-dir", "", "Override checkpoint directory")
	epochs := flag.Int("epochs", 0, "Number of training epochs")
	batchSize := flag.Int("batch-size", 0, "Batch size")
	learningRate := flag.Float64("lr", 0, "SGD learning rate")
	seed := flag.Int64("seed", 0, "PRNG seed")
	logEvery := flag.Int("log-every", 0, "Log every N steps")
	prefetch := flag.Int("prefetch", 0, "Sample prefetch depth")

	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	cfg.ApplyOverrides(config.Overrides{
		DataDir:       *dataDir,
		CheckpointDir: *checkpointDir,
		Epochs:        *epochs,
		BatchSize:     *batchSize,
		LearningRate:  *learningRate,
		Seed:          *seed,
		LogEvery:      *logEvery,
		Prefetch:      *prefetch,
	})

	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	trainSplit, testSplit, err := dataset.Load(cfg.DataDir)
	if err != nil {
		log.Fatalf("load dataset under %s: %v", cfg.DataDir, err)
	}
	log.Printf("dataset dir=%s train=%d test=%d", cfg.DataDir, trainSplit.Len(), testSplit.Len())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runCfg := trainer.RunConfig{
		Train:         trainSplit,
		Test:          testSplit,
		Epochs:        cfg.Epochs,
		BatchSize:     cfg.BatchSize,
		LearningRate:  cfg.LearningRate,
		Seed:          cfg.Seed,
		LogEvery:      cfg.LogEvery,
		Prefetch:      cfg.Prefetch,
		CheckpointDir: cfg.CheckpointDir,
	}

	if err := trainer.Run(ctx, runCfg); err != nil {
		log.Fatalf("training failed: %v", err)
	}
}
