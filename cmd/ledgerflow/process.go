package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ledgerflow/config"
	"ledgerflow/csvio"
	"ledgerflow/db"
	"ledgerflow/export"
	"ledgerflow/ledger"
	"ledgerflow/logging"
)

var processCmd = &cobra.Command{
	Use:   "process <transactions.csv>",
	Short: "Apply a transaction stream and print the final account snapshot",
	Args:  cobra.ExactArgs(1),
	RunE:  runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer log.Sync()

	engine := ledger.New(log)

	// An unreadable input file is the one fatal decode path; individual
	// malformed rows only reject themselves.
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open %s: %w", args[0], err)
	}
	defer f.Close()

	dec := csvio.NewDecoder(f, engine.ReportMalformed)
	for dec.Next() {
		if err := engine.Submit(dec.Record()); err != nil {
			return err
		}
	}
	if err := dec.Err(); err != nil {
		return fmt.Errorf("decode %s: %w", args[0], err)
	}

	if err := engine.Drain(ctx); err != nil {
		return err
	}

	views := engine.Snapshot()
	stats := engine.Stats()
	log.Info("run complete",
		zap.Uint64("applied", stats.Applied),
		zap.Uint64("rejected", stats.Rejected),
		zap.Int("accounts", len(views)),
	)

	if cfg.ExportDSN != "" {
		if err := exportSnapshot(ctx, log, cfg.ExportDSN, views); err != nil {
			return err
		}
	}

	return csvio.WriteSnapshot(cmd.OutOrStdout(), views)
}

func exportSnapshot(ctx context.Context, log *zap.Logger, dsn string, views []ledger.AccountView) error {
	pool, err := db.Connect(ctx, dsn)
	if err != nil {
		return err
	}
	defer pool.Close()

	repo := export.NewRepository(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		return err
	}
	batch, err := repo.WriteBatch(ctx, views)
	if err != nil {
		return err
	}
	log.Info("snapshot exported", zap.String("batch_id", batch.String()))
	return nil
}
