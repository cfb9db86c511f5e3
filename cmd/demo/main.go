// Command demo maintains the demo namespace from the command line: it seeds
// the resident catalog with records, resets it, or reports its state.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/WailSalutem-Health-Care/care-record-service/internal/bootstrap"
	"github.com/WailSalutem-Health-Care/care-record-service/internal/config"
	"github.com/WailSalutem-Health-Care/care-record-service/internal/logger"
	"github.com/WailSalutem-Health-Care/care-record-service/internal/record"
	"github.com/WailSalutem-Health-Care/care-record-service/internal/resident"
	"github.com/WailSalutem-Health-Care/care-record-service/internal/seed"
	"github.com/WailSalutem-Health-Care/care-record-service/internal/users"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	timeout    time.Duration
	outputJSON bool
}

func rootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Maintain the demo data set",
		Long: `Seed, reset or inspect the demo_ collections.

The process must run with APP_MODE=demo and the same store settings as the
API. Every command refuses to touch production collections.

Examples:
  demo status
  demo seed            # fails when demo data already exists
  demo seed --if-empty # succeeds without writing when data exists
  demo reset
`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 5*time.Minute, "Overall timeout")
	cmd.PersistentFlags().BoolVar(&opts.outputJSON, "json", false, "Print the result as JSON")

	cmd.AddCommand(seedCmd(opts), resetCmd(opts), statusCmd(opts))
	return cmd
}

func seedCmd(opts *options) *cobra.Command {
	var ifEmpty bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Write the resident catalog and recent daily records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSeeder(opts, func(ctx context.Context, s *seed.Seeder) (any, error) {
				res, err := s.Seed(ctx)
				if ifEmpty && errors.Is(err, seed.ErrAlreadySeeded) {
					return s.Status(ctx)
				}
				return res, err
			})
		},
	}
	cmd.Flags().BoolVar(&ifEmpty, "if-empty", false, "Do nothing when demo data already exists")
	return cmd
}

func resetCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Delete all demo data and seed it again",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSeeder(opts, func(ctx context.Context, s *seed.Seeder) (any, error) {
				return s.Reset(ctx)
			})
		},
	}
}

func statusCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report whether demo data exists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSeeder(opts, func(ctx context.Context, s *seed.Seeder) (any, error) {
				return s.Status(ctx)
			})
		},
	}
}

// withSeeder opens the configured store, runs fn and prints what it returns.
func withSeeder(opts *options, fn func(context.Context, *seed.Seeder) (any, error)) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if !cfg.Mode.IsDemo() {
		return seed.ErrNotDemoMode
	}

	zapLogger, err := logger.New(cfg.Log.Level, cfg.Log.Format, "care-record-demo")
	if err != nil {
		return err
	}
	defer zapLogger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
	defer cancel()
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := bootstrap.OpenStore(ctx, cfg, zapLogger)
	if err != nil {
		return err
	}
	defer store.Close()

	publisher := bootstrap.Publisher(cfg.RabbitMQ, zapLogger)
	defer publisher.Close()

	seeder := seed.NewSeeder(
		resident.NewRepository(store, cfg.Mode),
		record.NewRepository(store, cfg.Mode),
		users.NewRepository(store, cfg.Mode),
		publisher,
		cfg.Mode,
		cfg.Location,
		zapLogger,
	)

	out, err := fn(ctx, seeder)
	if err != nil {
		return err
	}
	zapLogger.Info("demo command finished", zap.Any("result", out))
	return printResult(out, opts.outputJSON)
}

func printResult(out any, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	switch v := out.(type) {
	case *seed.Result:
		fmt.Printf("Seeded %d residents and %d records for %v\n", v.Residents, v.Records, v.Dates)
	case *seed.Status:
		fmt.Printf("Mode: %s, seeded: %t, residents: %d\n", v.Mode, v.Seeded, v.Residents)
	}
	return nil
}
