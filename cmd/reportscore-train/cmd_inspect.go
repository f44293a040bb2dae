package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"
)

type inspectFlags struct {
	terms int
}

func newInspectCmd(g *globalFlags) *cobra.Command {
	inf := &inspectFlags{}
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print metadata of the saved artifact",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInspect(cmd, g, inf)
		},
	}
	cmd.Flags().IntVar(&inf.terms, "terms", 0, "Also list the N most distinctive terms (highest IDF)")
	return cmd
}

func runInspect(cmd *cobra.Command, g *globalFlags, inf *inspectFlags) error {
	ctx, cancel := g.context(cmd)
	defer cancel()

	e, err := g.setup(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	b, err := e.artifacts.Load(ctx)
	if err != nil {
		return err
	}

	trees := b.Model.Trees()
	minDepth, maxDepth, nodes := 0, 0, 0
	for i, t := range trees {
		d := t.Depth()
		if i == 0 || d < minDepth {
			minDepth = d
		}
		if d > maxDepth {
			maxDepth = d
		}
		nodes += t.Len()
	}

	p := b.Model.Params()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Model:      %s\n", b.Meta.ModelID)
	fmt.Fprintf(out, "Created:    %s\n", b.Meta.CreatedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(out, "Tokenizer:  v%d\n", b.Meta.TokenizerVersion)
	fmt.Fprintf(out, "Rows:       %d train, %d test\n", b.Meta.TrainRows, b.Meta.TestRows)
	fmt.Fprintf(out, "Vocabulary: %d terms from %d documents\n", b.Vocabulary.Len(), b.Vocabulary.Documents())
	fmt.Fprintf(out, "Trees:      %d (depth %d..%d, %d nodes)\n", len(trees), minDepth, maxDepth, nodes)
	fmt.Fprintf(out, "Params:     seed=%d max_depth=%d min_samples_split=%d max_features=%d\n",
		p.Seed, p.MaxDepth, p.MinSamplesSplit, p.MaxFeatures)
	printEvaluation(out, b.Meta.Evaluation)

	if inf.terms > 0 {
		terms := b.Vocabulary.Terms()
		sort.SliceStable(terms, func(i, j int) bool { return terms[i].IDF > terms[j].IDF })
		if len(terms) > inf.terms {
			terms = terms[:inf.terms]
		}
		fmt.Fprintln(out, "Terms:")
		for _, t := range terms {
			fmt.Fprintf(out, "  %-24s idf=%.4f\n", t.Text, t.IDF)
		}
	}
	return nil
}
