// Command petsim runs the digital-pet simulation core: a tick-driven
// world of autonomous pets with fluid boundaries and active-inference
// minds.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/gnarlynerd-lab/pets/core/config"
	"github.com/gnarlynerd-lab/pets/core/persistence"
	"github.com/gnarlynerd-lab/pets/core/sim"
)

const version = "0.1.0"

var errInvariant = errors.New("fatal invariant violation")

func main() {
	root := &cobra.Command{
		Use:           "petsim",
		Short:         "Tick-driven digital pet simulation",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(runCmd(), exportCmd(), importCmd(), versionCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "petsim:", err)
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	var (
		configPath string
		seed       int64
		pets       int
		ticks      int
		interval   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a simulation",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if configPath != "" {
				loaded, err := config.Load(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			if cmd.Flags().Changed("seed") {
				cfg.Seed = seed
			}
			if cmd.Flags().Changed("pets") {
				cfg.Pets = pets
			}
			if cmd.Flags().Changed("ticks") {
				cfg.Ticks = ticks
			}
			return runSimulation(cfg, interval)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	cmd.Flags().Int64Var(&seed, "seed", 42, "PRNG seed")
	cmd.Flags().IntVar(&pets, "pets", 5, "number of pets")
	cmd.Flags().IntVar(&ticks, "ticks", 0, "tick budget (0 = run until interrupted)")
	cmd.Flags().DurationVar(&interval, "interval", 0, "wall-clock delay between ticks (0 = as fast as possible)")
	return cmd
}

func runSimulation(cfg config.Config, interval time.Duration) error {
	logger := newLogger(cfg.LogLevel)

	store, err := persistence.OpenSQLite(cfg.SnapshotPath)
	if err != nil {
		return err
	}
	defer store.Close()

	model := sim.NewModel(sim.Options{Seed: cfg.Seed, Logger: logger})
	metrics := sim.NewMetricsCollector(cfg.MetricsWindow)
	model.AddCollector(metrics)

	for i := 0; i < cfg.Pets; i++ {
		model.CreatePet(fmt.Sprintf("pet-%d", i+1))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		for i := 0; cfg.Ticks == 0 || i < cfg.Ticks; i++ {
			select {
			case <-ctx.Done():
				return nil
			default:
			}

			result := model.Step(ctx)
			if len(result.Quarantined) > 0 {
				return fmt.Errorf("%w: tick %d quarantined %v", errInvariant, result.Tick, result.Quarantined)
			}
			if result.Aborted {
				return nil
			}

			if cfg.SnapshotEvery > 0 && result.Tick%uint64(cfg.SnapshotEvery) == 0 {
				saveSnapshots(model, store, logger)
			}
			if interval > 0 {
				select {
				case <-ctx.Done():
					return nil
				case <-time.After(interval):
				}
			}
		}
		return nil
	})

	runErr := group.Wait()
	saveSnapshots(model, store, logger)

	if sample, ok := metrics.Latest(); ok {
		logger.Info("simulation finished",
			"ticks", model.Tick(),
			"avg_health", sample.AvgHealth,
			"avg_mood", sample.AvgMood,
			"avg_attention", sample.AvgAttention)
	}

	if runErr != nil && errors.Is(runErr, errInvariant) {
		return runErr
	}
	return runErr
}

func saveSnapshots(model *sim.Model, store persistence.SnapshotStore, logger *slog.Logger) {
	for _, id := range model.AgentIDs() {
		a, ok := model.GetAgent(id)
		if !ok {
			continue
		}
		blob, err := a.ExportState().MarshalBlob()
		if err != nil {
			logger.Warn("snapshot export failed", "id", id, "error", err)
			continue
		}
		if err := store.Save(id, blob); err != nil {
			logger.Warn("snapshot save failed", "id", id, "error", err)
		}
	}
}

func exportCmd() *cobra.Command {
	var snapshotPath string

	cmd := &cobra.Command{
		Use:   "export <pet-id>",
		Short: "Print a stored pet snapshot blob",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := persistence.OpenSQLite(snapshotPath)
			if err != nil {
				return err
			}
			defer store.Close()

			blob, err := store.Load(args[0])
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(append(blob, '\n'))
			return err
		},
	}
	cmd.Flags().StringVar(&snapshotPath, "snapshot-path", "pets.db", "snapshot database")
	return cmd
}

func importCmd() *cobra.Command {
	var snapshotPath string

	cmd := &cobra.Command{
		Use:   "import <pet-id> <blob-file>",
		Short: "Store a pet snapshot blob",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			blob, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}
			store, err := persistence.OpenSQLite(snapshotPath)
			if err != nil {
				return err
			}
			defer store.Close()
			return store.Save(args[0], blob)
		},
	}
	cmd.Flags().StringVar(&snapshotPath, "snapshot-path", "pets.db", "snapshot database")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the petsim version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("petsim", version)
		},
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
