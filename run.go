package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// PermuteOutput is the JSON form of a finished search.
type PermuteOutput struct {
	Date    string       `json:"date"`
	Seed    string       `json:"seed"`
	Workers int          `json:"workers"`
	Results []ResultView `json:"results"`
	TimeMs  int64        `json:"timeMs"`
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// searchOptions resolves the depth, criteria and collaborators of one run. File values
// win over the run config.
func searchOptions(sf *SpawnerFile, cfg Config, logger *slog.Logger) (Spawner, Criteria, []Option, error) {
	spawner, err := sf.Spawner()
	if err != nil {
		return spawner, Criteria{}, nil, err
	}
	env, err := cfg.Env()
	if err != nil {
		return spawner, Criteria{}, nil, err
	}
	depth := cfg.MaxDepth
	if sf.MaxDepth > 0 {
		depth = sf.MaxDepth
	}
	criteria := cfg.Criteria
	if sf.Criteria != nil {
		criteria = *sf.Criteria
	}
	return spawner, criteria, []Option{WithEnv(env), WithMaxDepth(depth), WithLogger(logger)}, nil
}

// runPermute searches the spawner a file describes.
func runPermute(ctx context.Context, sf *SpawnerFile, cfg Config, logger *slog.Logger) (*Results, time.Duration, error) {
	spawner, criteria, opts, err := searchOptions(sf, cfg, logger)
	if err != nil {
		return nil, 0, err
	}
	start := time.Now()
	var res *Results
	if cfg.Workers > 1 {
		res, err = SearchParallel(ctx, spawner, uint64(sf.Seed), criteria.Predicate(), cfg.Workers, opts...)
	} else {
		res, err = Search(spawner, uint64(sf.Seed), criteria.Predicate(), opts...)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("permute %016X: %w", uint64(sf.Seed), err)
	}
	return res, time.Since(start), nil
}

// runReplay follows path on the spawner a file describes and returns every entity
// generated along the way.
func runReplay(sf *SpawnerFile, path []Advance, cfg Config, logger *slog.Logger) (*Results, error) {
	spawner, _, opts, err := searchOptions(sf, cfg, logger)
	if err != nil {
		return nil, err
	}
	return Replay(spawner, uint64(sf.Seed), path, nil, opts...)
}
