package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/straye-as/estimator/internal/jobs"
	"go.uber.org/zap"
)

var schedulerRunNow bool

var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run the scheduled report archive until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cfg.Jobs.ArchiveEnabled {
			return fmt.Errorf("report archive job is disabled (set jobs.archiveEnabled)")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		svc, err := openServices()
		if err != nil {
			return err
		}
		defer svc.Close()

		reports, err := svc.reports()
		if err != nil {
			return err
		}

		scheduler := jobs.NewScheduler(log)
		err = jobs.RegisterArchiveJob(
			scheduler,
			reports,
			cfg.Jobs.ArchiveProjectStatuses(),
			log,
			cfg.Jobs.ArchiveCron,
			cfg.Jobs.ArchiveTimeoutDuration(),
			schedulerRunNow,
		)
		if err != nil {
			return fmt.Errorf("register archive job: %w", err)
		}

		scheduler.Start()
		<-ctx.Done()

		log.Info("shutting down scheduler")
		select {
		case <-scheduler.Stop().Done():
		case <-time.After(30 * time.Second):
			log.Warn("scheduled jobs still running at shutdown",
				zap.Strings("jobs", scheduler.JobNames()))
		}
		return nil
	},
}

func init() {
	schedulerCmd.Flags().BoolVar(&schedulerRunNow, "run-now", false, "archive once immediately on startup")

	rootCmd.AddCommand(schedulerCmd)
}
