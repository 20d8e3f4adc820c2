//go:build !lambda

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"time"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "outbreak-permuter",
		Short: "Search outbreak spawners for action paths that reach a wanted spawn",
		Long: `outbreak-permuter simulates a spawner from its group seed and walks every
sequence of knockouts, wave clears and ghost fills, printing the paths that
generate an entity matching the criteria (shiny by default).`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("config", "", "YAML run configuration")
	rootCmd.PersistentFlags().String("tables", "", "Community table JSON (default: embedded sample tables)")
	rootCmd.PersistentFlags().Bool("verbose", false, "Print search progress to stderr")
	rootCmd.PersistentFlags().Bool("json", false, "Output results as JSON")

	rootCmd.AddCommand(
		newPermuteCmd(),
		newReplayCmd(),
		newTablesCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig resolves --config and then applies any flag set on the command line.
func loadConfig(cmd *cobra.Command) (Config, error) {
	cfg := DefaultConfig()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		var err error
		if cfg, err = LoadConfig(path); err != nil {
			return cfg, err
		}
	}
	flags := cmd.Flags()
	if flags.Changed("tables") {
		cfg.Tables, _ = flags.GetString("tables")
	}
	if flags.Changed("verbose") {
		cfg.Verbose, _ = flags.GetBool("verbose")
	}
	if flags.Lookup("depth") != nil && flags.Changed("depth") {
		cfg.MaxDepth, _ = flags.GetInt("depth")
	}
	if flags.Lookup("workers") != nil && flags.Changed("workers") {
		cfg.Workers, _ = flags.GetInt("workers")
	}
	if flags.Lookup("all") != nil && flags.Changed("all") {
		if all, _ := flags.GetBool("all"); all {
			cfg.Criteria = Criteria{}
		}
	}
	return cfg, cfg.Validate()
}

// loadSpawner reads the spawner file and applies --seed.
func loadSpawner(cmd *cobra.Command, path string) (*SpawnerFile, error) {
	sf, err := LoadSpawnerFile(path)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("seed") {
		raw, _ := cmd.Flags().GetString("seed")
		seed, err := ParseHash(raw)
		if err != nil {
			return nil, fmt.Errorf("--seed %q: %w", raw, err)
		}
		sf.Seed = Hex64(seed)
	}
	return sf, nil
}

func newPermuteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "permute <spawner.yaml>",
		Short: "Search every action path of a spawner",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			sf, err := loadSpawner(cmd, args[0])
			if err != nil {
				return err
			}
			logger := newLogger(os.Stderr, cfg.Verbose)
			logger.Debug("[permute] config", "maxDepth", cfg.MaxDepth, "workers", cfg.Workers, "tables", cfg.Tables)

			res, elapsed, err := runPermute(cmd.Context(), sf, cfg, logger)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(PermuteOutput{
					Date:    time.Now().UTC().Format(time.RFC3339),
					Seed:    fmt.Sprintf("%016X", uint64(sf.Seed)),
					Workers: cfg.Workers,
					Results: res.Views(),
					TimeMs:  elapsed.Milliseconds(),
				})
			}
			if dump, _ := cmd.Flags().GetBool("dump"); dump {
				res.Dump(out)
			} else {
				res.Print(out)
			}
			fmt.Fprintf(os.Stderr, "Done in %.1fs\n", elapsed.Seconds())
			return nil
		},
	}
	cmd.Flags().String("seed", "", "Override the group seed of the spawner file")
	cmd.Flags().Int("depth", DefaultMaxDepth, "Maximum wave chains, regenerations and looping knockouts per path")
	cmd.Flags().Int("workers", 1, fmt.Sprintf("Goroutines for first-level branches (1 = serial, this machine has %d CPUs)", runtime.NumCPU()))
	cmd.Flags().Bool("all", false, "Record every generated entity instead of the configured criteria")
	cmd.Flags().Bool("dump", false, "Print full entity details grouped by path length")
	return cmd
}

func newReplayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay <spawner.yaml> [path]",
		Short: "Follow one action path and print every entity it generates",
		Long: `Replays a path such as "A1|A1|A2|CR|A2" from the spawner seed. When the
path argument is omitted the file's path field is used.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			sf, err := loadSpawner(cmd, args[0])
			if err != nil {
				return err
			}
			path := []Advance(sf.Path)
			if len(args) == 2 {
				if path, err = ParseAdvances(args[1]); err != nil {
					return err
				}
			}

			res, err := runReplay(sf, path, cfg, newLogger(os.Stderr, cfg.Verbose))
			out := cmd.OutOrStdout()
			if res != nil {
				if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
					enc := json.NewEncoder(out)
					enc.SetIndent("", "  ")
					if encErr := enc.Encode(res.Views()); encErr != nil {
						return encErr
					}
				} else {
					res.Dump(out)
				}
			}
			return err
		},
	}
	cmd.Flags().String("seed", "", "Override the group seed of the spawner file")
	return cmd
}

func newTablesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List the loaded encounter tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			env, err := cfg.Env()
			if err != nil {
				return err
			}
			ts, ok := env.Tables.(*TableSet)
			if !ok {
				return fmt.Errorf("table provider %T cannot be listed", env.Tables)
			}
			out := cmd.OutOrStdout()
			for _, t := range ts.Tables() {
				fmt.Fprintf(out, "0x%016X  %d slot(s)\n", t.Hash, len(t.Slots))
				for _, s := range t.Slots {
					alpha := ""
					if s.IsAlpha {
						alpha = "α-"
					}
					fmt.Fprintf(out, "    %6.1f  %s%-16s Lv.%d-%d  %d IVs\n", s.Rate, alpha, s.Name, s.LevelMin, s.LevelMax, s.FlawlessIVs)
				}
			}
			fmt.Fprintf(os.Stderr, "Loaded %d tables\n", ts.Len())
			return nil
		},
	}
}
