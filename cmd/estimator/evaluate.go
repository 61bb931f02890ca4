package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/straye-as/estimator/internal/report"
	"github.com/straye-as/estimator/internal/service"
)

var evaluateReport bool

var evaluateCmd = &cobra.Command{
	Use:   "evaluate <project.json>",
	Short: "Summarize a project document without storing it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read %s: %w", args[0], err)
		}

		project, err := service.DecodeProject(data, cfg.Estimation)
		if err != nil {
			return err
		}

		summary := service.NewEstimateService(nil, log).Evaluate(project)
		if evaluateReport {
			return writeJSON(cmd.OutOrStdout(), report.Build(project, summary))
		}
		return writeJSON(cmd.OutOrStdout(), summary)
	},
}

func init() {
	evaluateCmd.Flags().BoolVar(&evaluateReport, "report", false, "print the rounded report instead of the full summary")
	rootCmd.AddCommand(evaluateCmd)
}
