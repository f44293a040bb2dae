package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/reportscore/internal/app"
	"github.com/kailas-cloud/reportscore/internal/config"
	"github.com/kailas-cloud/reportscore/internal/usecase/training"
)

type trainFlags struct {
	corpus       string
	format       string
	testFraction float64
	seed         int64
	trees        int
	maxDepth     int
	maxFeatures  int
	parallelism  int
	dryRun       bool
}

func newTrainCmd(g *globalFlags) *cobra.Command {
	tf := &trainFlags{}
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Fit a model on the corpus and save the artifact",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTrain(cmd, g, tf)
		},
	}

	f := cmd.Flags()
	f.StringVar(&tf.corpus, "corpus", "", "Corpus file (default from config)")
	f.StringVar(&tf.format, "format", "", "Corpus format: csv or jsonl (default by extension)")
	f.Float64Var(&tf.testFraction, "test-fraction", 0, "Held-out fraction in (0, 1)")
	f.Int64Var(&tf.seed, "seed", 0, "Seed for the split and the forest")
	f.IntVar(&tf.trees, "trees", 0, "Number of trees")
	f.IntVar(&tf.maxDepth, "max-depth", 0, "Maximum tree depth, 0 for unlimited")
	f.IntVar(&tf.maxFeatures, "max-features", 0, "Features tried per split, 0 for sqrt(vocabulary)")
	f.IntVar(&tf.parallelism, "parallelism", 0, "Trees built concurrently, 0 for GOMAXPROCS")
	f.BoolVar(&tf.dryRun, "dry-run", false, "Train and evaluate without saving the artifact")
	return cmd
}

// apply overrides config values with the flags the user actually set.
func (tf *trainFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("corpus") {
		cfg.Corpus.Path = tf.corpus
	}
	if f.Changed("format") {
		cfg.Corpus.Format = tf.format
	}
	if f.Changed("test-fraction") {
		cfg.Training.TestFraction = tf.testFraction
	}
	if f.Changed("seed") {
		cfg.Training.Seed = tf.seed
	}
	if f.Changed("trees") {
		cfg.Training.TreeCount = tf.trees
	}
	if f.Changed("max-depth") {
		cfg.Training.MaxDepth = tf.maxDepth
	}
	if f.Changed("max-features") {
		cfg.Training.MaxFeatures = tf.maxFeatures
	}
	if f.Changed("parallelism") {
		cfg.Training.Parallelism = tf.parallelism
	}
}

func runTrain(cmd *cobra.Command, g *globalFlags, tf *trainFlags) error {
	ctx, cancel := g.context(cmd)
	defer cancel()

	e, err := g.setup(ctx)
	if err != nil {
		return err
	}
	defer e.close()
	tf.apply(cmd, &e.cfg)

	loader, err := app.NewCorpusLoader(e.cfg.Corpus)
	if err != nil {
		return err
	}
	ds, err := loader.Load(ctx)
	if err != nil {
		return err
	}
	e.logger.Info("Corpus loaded", zap.String("path", e.cfg.Corpus.Path), zap.Int("rows", len(ds)))

	res, err := training.New(e.logger).Retrain(ctx, ds, app.TrainingConfig(e.cfg.Training))
	if err != nil {
		return fmt.Errorf("retrain: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Model:      %s\n", res.ModelID)
	fmt.Fprintf(out, "Rows:       %d train, %d test\n", res.TrainRows, res.TestRows)
	fmt.Fprintf(out, "Vocabulary: %d terms\n", res.Vocabulary.Len())
	printEvaluation(out, res.Evaluation)

	if tf.dryRun {
		fmt.Fprintln(out, "Dry run: artifact not saved")
		return nil
	}
	if err := app.SaveWithRetry(ctx, e.artifacts, res.Bundle(), nil, e.logger); err != nil {
		return fmt.Errorf("save artifact: %w", err)
	}
	fmt.Fprintf(out, "Saved:      %s\n", describeStore(e.cfg.Artifact))
	return nil
}

func describeStore(cfg config.ArtifactConfig) string {
	if cfg.Driver == config.ArtifactDriverRedis {
		return "redis key " + cfg.Key
	}
	return cfg.Path
}
