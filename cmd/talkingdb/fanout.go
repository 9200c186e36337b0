package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/talkingdb"
	logpkg "github.com/kailas-cloud/talkingdb/internal/logger"
)

// fanOut runs MatchNode over disjoint contiguous groups of graphs, one
// worker per group, and concatenates the results in the original order.
// The first failure cancels the other groups and is returned.
func fanOut(
	ctx context.Context,
	client *talkingdb.Client,
	graphs []talkingdb.GraphHandle,
	query string,
	metadata talkingdb.Metadata,
	workers int,
) ([]talkingdb.Element, error) {
	groups := split(graphs, workers)
	results := make([][]talkingdb.Element, len(groups))

	logpkg.FromContext(ctx).Debug("matching graphs",
		zap.Int("graphs", len(graphs)),
		zap.Int("workers", len(groups)),
	)

	g, gctx := errgroup.WithContext(ctx)
	for i, group := range groups {
		g.Go(func() error {
			w := client.Worker(fmt.Sprintf("match-%d", i))
			elements, err := w.MatchNode(gctx, group, query, metadata)
			if err != nil {
				return err
			}
			results[i] = elements
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := []talkingdb.Element{}
	for _, r := range results {
		out = append(out, r...)
	}
	return out, nil
}

// split cuts items into at most n contiguous groups of near-equal size.
func split[T any](items []T, n int) [][]T {
	if len(items) == 0 {
		return nil
	}
	n = max(1, min(n, len(items)))

	groups := make([][]T, 0, n)
	size, rest := len(items)/n, len(items)%n
	start := 0
	for i := range n {
		end := start + size
		if i < rest {
			end++
		}
		groups = append(groups, items[start:end])
		start = end
	}
	return groups
}
