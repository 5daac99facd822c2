// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Passage Contributors

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/passage-dev/passage/internal/store"
)

func newQueryCmd() *cobra.Command {
	var (
		topK       int
		diverse    bool
		multiplier int
	)

	cmd := &cobra.Command{
		Use:   "query <project-id> <text>",
		Short: "Retrieve the most relevant chunks for a query",
		Long: `Embeds the query text and returns the project's most similar chunks.
With --diverse, results are re-ranked to penalize near-duplicate content.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID := args[0]
			text := strings.Join(args[1:], " ")

			a, err := wireApp(viper.GetViper())
			if err != nil {
				return err
			}
			defer a.Close()

			pipeline, err := a.requirePipeline()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			var matches []*store.Match
			if diverse {
				matches, err = pipeline.QueryDiverse(ctx, projectID, text, topK, multiplier)
			} else {
				matches, err = pipeline.Query(ctx, projectID, text, topK)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(matches) == 0 {
				_, _ = fmt.Fprintln(out, "No matches.")
				return nil
			}

			for i, m := range matches {
				_, _ = fmt.Fprintf(out, "%d. %s (chunk %d, similarity %.4f)\n",
					i+1, m.DocumentName, m.Chunk.Ordinal, m.Similarity)
				_, _ = fmt.Fprintf(out, "   %s\n", summarize(m.Chunk.Content, 200))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&topK, "top-k", "k", 5, "number of results to return")
	cmd.Flags().BoolVarP(&diverse, "diverse", "d", false, "re-rank results for diversity")
	cmd.Flags().IntVar(&multiplier, "candidate-multiplier", 0, "candidate pool size as a multiple of top-k (0 uses the configured default)")

	return cmd
}

// summarize flattens whitespace and truncates to at most max runes.
func summarize(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}
