package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/promptshelf/promptshelf-backend/config"
	"github.com/promptshelf/promptshelf-backend/internal/backup"
	"github.com/promptshelf/promptshelf-backend/internal/bootstrap"
	"github.com/promptshelf/promptshelf-backend/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "worker",
	Short: "Background jobs for the prompt store",
}

func init() {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Snapshot every session's prompt list into the backup store",
		Long:  "Copies every prompt list from the primary store into the backup store, on the BACKUP_SCHEDULE cron spec or once with --once.",
		RunE:  runBackup,
	}
	cmd.Flags().Bool("once", false, "Run a single snapshot and exit")

	rootCmd.AddCommand(cmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runBackup(cmd *cobra.Command, _ []string) error {
	once, _ := cmd.Flags().GetBool("once")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.ValidateBackup(); err != nil {
		return err
	}
	logging.Setup(cfg.App.LogLevel, cfg.App.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	source, err := bootstrap.OpenStore(ctx, cfg, bootstrap.StoreOptions{
		Backend:   cfg.Store.Backend,
		Namespace: cfg.Store.Namespace,
	})
	if err != nil {
		return fmt.Errorf("open source store: %w", err)
	}
	defer source.Close()

	target, err := bootstrap.OpenStore(ctx, cfg, bootstrap.StoreOptions{
		Backend:   cfg.Backup.Backend,
		Namespace: cfg.Backup.Namespace,
	})
	if err != nil {
		return fmt.Errorf("open backup store: %w", err)
	}
	defer target.Close()

	job := backup.NewJob(source, target)

	if once {
		res, err := job.Run(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "copied %d, failed %d\n", res.Copied, res.Failed)
		if res.Failed > 0 {
			return fmt.Errorf("%d keys failed to copy", res.Failed)
		}
		return nil
	}

	scheduler, err := backup.NewScheduler(cfg.Backup.Schedule, job)
	if err != nil {
		return err
	}
	scheduler.Start()

	<-ctx.Done()
	log.Info().Msg("worker shutting down")
	scheduler.Stop()
	return nil
}
