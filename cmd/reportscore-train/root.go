package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/reportscore/internal/app"
	"github.com/kailas-cloud/reportscore/internal/config"
	"github.com/kailas-cloud/reportscore/internal/db"
	logpkg "github.com/kailas-cloud/reportscore/internal/logger"
	"github.com/kailas-cloud/reportscore/internal/version"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	env        string
	configPath string
	timeout    time.Duration
	artifact   string
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:   "reportscore-train",
		Short: "Train and inspect the report authenticity classifier",
		Long: "reportscore-train fits the TF-IDF vocabulary and random forest on a labeled\n" +
			"corpus, evaluates it on a held-out split and writes the model artifact\n" +
			"the API server loads.",
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		Version: version.String(),
	}

	f := root.PersistentFlags()
	f.StringVar(&g.env, "env", config.GetEnv(), "Environment name; selects config/<env>.yaml")
	f.StringVar(&g.configPath, "config", "", "Explicit config file (overrides --env lookup)")
	f.DurationVar(&g.timeout, "timeout", 30*time.Minute, "Deadline for the whole command")
	f.StringVar(&g.artifact, "artifact", "", "Artifact file path (forces the file driver)")

	root.AddCommand(newTrainCmd(g))
	root.AddCommand(newEvaluateCmd(g))
	root.AddCommand(newInspectCmd(g))
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// env holds what a subcommand needs after config has been resolved.
type env struct {
	cfg       config.Config
	logger    *zap.Logger
	store     db.Store
	artifacts app.ArtifactStore
}

func (e *env) close() {
	if e.store != nil {
		e.store.Close()
	}
	_ = e.logger.Sync()
}

// setup loads config, builds the logger and opens the artifact store.
func (g *globalFlags) setup(ctx context.Context) (*env, error) {
	var (
		cfg config.Config
		err error
	)
	if g.configPath != "" {
		cfg, err = config.LoadFile(g.configPath)
	} else {
		cfg, err = config.Load(g.env)
	}
	if err != nil {
		return nil, err
	}
	if g.artifact != "" {
		cfg.Artifact.Driver = config.ArtifactDriverFile
		cfg.Artifact.Path = g.artifact
	}
	// The job never counts verdicts.
	cfg.Usage.Enabled = false

	logger, err := logpkg.NewLogger(g.env, cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	logger = logpkg.Named(logger, "train")

	store, err := app.OpenDatabase(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	artifacts, err := app.NewArtifactStore(cfg.Artifact, store)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, err
	}
	return &env{cfg: cfg, logger: logger, store: store, artifacts: artifacts}, nil
}

func (g *globalFlags) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), g.timeout)
}
