package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/straye-as/estimator/internal/domain"
	"go.uber.org/zap"
)

var importCmd = &cobra.Command{
	Use:   "import <project.json>",
	Short: "Store a project document as version 1 of a new project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read %s: %w", args[0], err)
		}

		svc, err := openServices()
		if err != nil {
			return err
		}
		defer svc.Close()

		project, err := svc.projects.ImportJSON(cmd.Context(), data)
		if err != nil {
			return fmt.Errorf("import: %w", err)
		}
		return writeJSON(cmd.OutOrStdout(), versionInfo(project))
	},
}

var newVersionNotes string

var newVersionCmd = &cobra.Command{
	Use:   "new-version <project-id>",
	Short: "Freeze the latest version and continue on a draft copy",
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

		project, err := svc.projects.NewVersion(cmd.Context(), id, newVersionNotes)
		if err != nil {
			return fmt.Errorf("new version: %w", err)
		}
		return writeJSON(cmd.OutOrStdout(), versionInfo(project))
	},
}

var cloneName string

var cloneCmd = &cobra.Command{
	Use:   "clone <project-id>",
	Short: "Copy a version into a new project",
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

		project, err := svc.projects.Clone(cmd.Context(), id, cloneName)
		if err != nil {
			return fmt.Errorf("clone: %w", err)
		}
		return writeJSON(cmd.OutOrStdout(), versionInfo(project))
	},
}

var statusCmd = &cobra.Command{
	Use:   "status <project-id> <draft|in_review|approved|rejected>",
	Short: "Move the latest version through the approval workflow",
	Args:  cobra.ExactArgs(2),
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

		project, err := svc.projects.TransitionStatus(cmd.Context(), id, domain.ProjectStatus(args[1]))
		if err != nil {
			return fmt.Errorf("status: %w", err)
		}
		log.Info("status updated",
			zap.String("project_number", project.ProjectNumber),
			zap.String("status", string(project.Status)))
		return writeJSON(cmd.OutOrStdout(), versionInfo(project))
	},
}

var versionsCmd = &cobra.Command{
	Use:   "versions <project-number>",
	Short: "List every version of a project, newest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openServices()
		if err != nil {
			return err
		}
		defer svc.Close()

		versions, err := svc.projects.ListVersions(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("versions: %w", err)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "VERSION\tID\tSTATUS\tLATEST\tCREATED\tNOTES")
		for _, v := range versions {
			fmt.Fprintf(w, "%d\t%s\t%s\t%t\t%s\t%s\n",
				v.Version, v.ID, v.Status, v.IsLatestVersion,
				v.CreatedAt.Format("2006-01-02 15:04"), v.VersionNotes)
		}
		return w.Flush()
	},
}

type projectVersion struct {
	ID              string               `json:"id"`
	ProjectNumber   string               `json:"project_number"`
	Name            string               `json:"name"`
	Version         int                  `json:"version"`
	Status          domain.ProjectStatus `json:"status"`
	IsLatestVersion bool                 `json:"is_latest_version"`
	ReadOnly        bool                 `json:"read_only"`
}

func versionInfo(p *domain.Project) projectVersion {
	return projectVersion{
		ID:              p.ID.String(),
		ProjectNumber:   p.ProjectNumber,
		Name:            p.Name,
		Version:         p.Version,
		Status:          p.Status,
		IsLatestVersion: p.IsLatestVersion,
		ReadOnly:        p.IsReadOnly(),
	}
}

func init() {
	newVersionCmd.Flags().StringVar(&newVersionNotes, "notes", "", "what changed in the new version")
	cloneCmd.Flags().StringVar(&cloneName, "name", "", "name of the new project (defaults to the source name)")

	rootCmd.AddCommand(importCmd, newVersionCmd, cloneCmd, statusCmd, versionsCmd)
}
