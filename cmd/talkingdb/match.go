package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/talkingdb"
)

func newMatchCmd(a *app) *cobra.Command {
	var (
		graphs       []string
		query        string
		metadataPath string
		workers      int
	)

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Query graphs for elements matching a text",
		Long: `Query one or more graphs for elements matching a text.

Elements are printed as a JSON array, in the order of the --graph flags.
With --workers N the graphs are split into N contiguous groups queried
in parallel, each on its own connection; output order is unchanged.
Any failure aborts the whole command.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if len(graphs) == 0 {
				return errors.New("at least one --graph is required")
			}

			var metadata talkingdb.Metadata
			if metadataPath != "" {
				md, err := readJSONObject(metadataPath, cmd.InOrStdin())
				if err != nil {
					return err
				}
				metadata = md
			}

			if workers <= 0 {
				workers = a.cfg.Match.Workers
			}

			handles := make([]talkingdb.GraphHandle, len(graphs))
			for i, g := range graphs {
				handles[i] = talkingdb.GraphHandle(g)
			}

			elements, err := fanOut(cmd.Context(), a.client, handles, query, metadata, workers)
			if err != nil {
				return fmt.Errorf("match: %w", err)
			}

			enc := json.NewEncoder(a.out)
			enc.SetIndent("", "  ")
			return enc.Encode(elements)
		},
	}

	cmd.Flags().StringArrayVar(&graphs, "graph", nil, "graph id to query (repeatable, order preserved)")
	cmd.Flags().StringVar(&query, "query", "", "text to match (required)")
	cmd.Flags().StringVar(&metadataPath, "metadata", "", "JSON file with metadata sent with every query")
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel workers, overrides match.workers")
	_ = cmd.MarkFlagRequired("query")

	return cmd
}
