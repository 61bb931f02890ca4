package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/straye-as/estimator/internal/report"
)

var (
	summaryWave   string
	summaryReport bool
)

var summaryCmd = &cobra.Command{
	Use:   "summary <project-id>",
	Short: "Summarize a stored project version or one of its waves",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		svc, err := openServices()
		if err != nil {
			return err
		}
		defer svc.Close()

		if summaryWave != "" {
			waveID, err := uuid.Parse(summaryWave)
			if err != nil {
				return fmt.Errorf("invalid wave id %q: %w", summaryWave, err)
			}
			ws, err := svc.estimates.SummarizeWave(cmd.Context(), id, waveID)
			if err != nil {
				return fmt.Errorf("summary: %w", err)
			}
			return writeJSON(cmd.OutOrStdout(), ws)
		}

		project, summary, err := svc.estimates.SummarizeProject(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("summary: %w", err)
		}
		if summaryReport {
			return writeJSON(cmd.OutOrStdout(), report.Build(project, summary))
		}
		return writeJSON(cmd.OutOrStdout(), summary)
	},
}

var compareCmd = &cobra.Command{
	Use:   "compare <from-id> <to-id>",
	Short: "Compare two versions of the same project",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := parseID(args[0])
		if err != nil {
			return err
		}
		to, err := parseID(args[1])
		if err != nil {
			return err
		}

		svc, err := openServices()
		if err != nil {
			return err
		}
		defer svc.Close()

		result, err := svc.estimates.CompareVersions(cmd.Context(), from, to)
		if err != nil {
			return fmt.Errorf("compare: %w", err)
		}
		return writeJSON(cmd.OutOrStdout(), result.Comparison)
	},
}

var valueByStatusCmd = &cobra.Command{
	Use:   "value-by-status",
	Short: "Total final price of the latest versions per approval status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, err := openServices()
		if err != nil {
			return err
		}
		defer svc.Close()

		values, err := svc.estimates.ValueByStatus(cmd.Context())
		if err != nil {
			return fmt.Errorf("value by status: %w", err)
		}
		return writeJSON(cmd.OutOrStdout(), values)
	},
}

var archiveCmd = &cobra.Command{
	Use:   "archive <project-id>",
	Short: "Write the estimate report of a version to storage",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		svc, err := openServices()
		if err != nil {
			return err
		}
		defer svc.Close()

		reports, err := svc.reports()
		if err != nil {
			return err
		}
		key, err := reports.Archive(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("archive: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), key)
		return nil
	},
}

func init() {
	summaryCmd.Flags().StringVar(&summaryWave, "wave", "", "summarize only this wave id")
	summaryCmd.Flags().BoolVar(&summaryReport, "report", false, "print the rounded report instead of the full summary")

	rootCmd.AddCommand(summaryCmd, compareCmd, valueByStatusCmd, archiveCmd)
}
