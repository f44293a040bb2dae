package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/reportscore/internal/app"
	"github.com/kailas-cloud/reportscore/internal/engine/evaluate"
	"github.com/kailas-cloud/reportscore/internal/engine/tfidf"
)

type evaluateFlags struct {
	corpus string
	format string
	json   bool
}

func newEvaluateCmd(g *globalFlags) *cobra.Command {
	ef := &evaluateFlags{}
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Score a labeled corpus with the saved model",
		Long: "evaluate loads the current artifact and reports accuracy, precision,\n" +
			"recall and F1 over every row of the given corpus.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEvaluate(cmd, g, ef)
		},
	}
	f := cmd.Flags()
	f.StringVar(&ef.corpus, "corpus", "", "Corpus file (default from config)")
	f.StringVar(&ef.format, "format", "", "Corpus format: csv or jsonl (default by extension)")
	f.BoolVar(&ef.json, "json", false, "Print the report as JSON")
	return cmd
}

func runEvaluate(cmd *cobra.Command, g *globalFlags, ef *evaluateFlags) error {
	ctx, cancel := g.context(cmd)
	defer cancel()

	e, err := g.setup(ctx)
	if err != nil {
		return err
	}
	defer e.close()
	if cmd.Flags().Changed("corpus") {
		e.cfg.Corpus.Path = ef.corpus
	}
	if cmd.Flags().Changed("format") {
		e.cfg.Corpus.Format = ef.format
	}

	b, err := e.artifacts.Load(ctx)
	if err != nil {
		return err
	}
	loader, err := app.NewCorpusLoader(e.cfg.Corpus)
	if err != nil {
		return err
	}
	ds, err := loader.Load(ctx)
	if err != nil {
		return err
	}
	if err := ds.Validate(); err != nil {
		return err
	}

	rep, err := evaluate.Evaluate(b.Model, tfidf.TransformAll(ds.Texts(), b.Vocabulary), ds.Labels())
	if err != nil {
		return err
	}
	e.logger.Info("Evaluated model",
		zap.String("model_id", b.Meta.ModelID), zap.Int("rows", len(ds)), zap.Float64("accuracy", rep.Accuracy))

	out := cmd.OutOrStdout()
	if ef.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}
	fmt.Fprintf(out, "Model:      %s\n", b.Meta.ModelID)
	printEvaluation(out, rep)
	return nil
}

func printEvaluation(out io.Writer, r evaluate.Report) {
	fmt.Fprintf(out, "Samples:    %d\n", r.Samples)
	fmt.Fprintf(out, "Accuracy:   %.4f\n", r.Accuracy)
	fmt.Fprintf(out, "Precision:  %.4f\n", r.Precision)
	fmt.Fprintf(out, "Recall:     %.4f\n", r.Recall)
	fmt.Fprintf(out, "F1:         %.4f\n", r.F1)
	fmt.Fprintf(out, "Confusion:  TP=%d FP=%d TN=%d FN=%d\n",
		r.TruePositives, r.FalsePositives, r.TrueNegatives, r.FalseNegatives)
}
