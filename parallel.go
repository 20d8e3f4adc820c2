package main

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// SearchParallel permutes spawner like Search but walks each first-level action on its
// own goroutine, at most workers at a time (workers <= 0 means unbounded). Results are
// merged in branch order, so the list equals the one Search returns.
func SearchParallel(ctx context.Context, spawner Spawner, seed uint64, predicate Predicate, workers int, opts ...Option) (*Results, error) {
	p, err := NewPermuter(spawner, predicate, opts...)
	if err != nil {
		return nil, err
	}
	return p.PermuteParallel(ctx, seed, workers)
}

// PermuteParallel is the fan-out form of Permute.
func (p *Permuter) PermuteParallel(ctx context.Context, seed uint64, workers int) (*Results, error) {
	start := time.Now()
	p.results = newResults(p.spawner, seed)
	p.nodes = 0

	root, err := p.start(seed)
	if err != nil {
		return nil, err
	}
	p.nodes++
	branches := p.options(root, 0)
	p.logger.Debug("[permute] fan out", "seed", fmt.Sprintf("%016X", seed), "branches", len(branches), "workers", workers)

	parts := make([]*Permuter, len(branches))
	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, adv := range branches {
		if gctx.Err() != nil {
			break
		}
		w := p.clone()
		parts[i] = w
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			w.results.push(adv)
			child, err := w.apply(root, adv)
			if err == nil {
				err = w.walk(child)
			}
			w.results.pop()
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, w := range parts {
		p.results.merge(w.results)
		p.nodes += w.nodes
	}
	p.logger.Debug("[permute] done", "nodes", p.nodes, "results", p.results.Len(), "elapsed", time.Since(start))
	return p.results, nil
}
