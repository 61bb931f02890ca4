package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/straye-as/estimator/internal/config"
	"github.com/straye-as/estimator/internal/database"
	"github.com/straye-as/estimator/internal/logger"
	"github.com/straye-as/estimator/internal/repository"
	"github.com/straye-as/estimator/internal/service"
	"github.com/straye-as/estimator/internal/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	cfg *config.Config
	log *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "estimator",
	Short: "Wave-based cost and pricing estimates",
	Long:  "Prices staffed waves of a project version (salary, overhead, logistics, margin and negotiation buffer), manages versions and approvals, and archives estimate reports.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		base, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		l, err := logger.NewLogger(&base.Logging, &base.App)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		log = l

		c, err := config.LoadWithSecrets(cmd.Context(), log)
		if err != nil {
			return fmt.Errorf("load secrets: %w", err)
		}
		cfg = c
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// services is the wiring shared by every command that touches the database
type services struct {
	db        *gorm.DB
	repo      *repository.ProjectRepository
	projects  *service.ProjectService
	estimates *service.EstimateService
}

func openServices() (*services, error) {
	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return nil, err
	}
	if cfg.Database.AutoMigrate {
		if err := database.AutoMigrate(db); err != nil {
			return nil, fmt.Errorf("auto migrate: %w", err)
		}
		log.Info("database schema migrated")
	}

	repo := repository.NewProjectRepository(db)
	return &services{
		db:        db,
		repo:      repo,
		projects:  service.NewProjectService(repo, cfg.Estimation, log),
		estimates: service.NewEstimateService(repo, log),
	}, nil
}

func (s *services) reports() (*service.ReportService, error) {
	store, err := storage.NewStorage(&cfg.Storage, log)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	return service.NewReportService(s.repo, s.estimates, store, log), nil
}

func (s *services) Close() {
	if sqlDB, err := s.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func parseID(arg string) (uuid.UUID, error) {
	id, err := uuid.Parse(arg)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid project id %q: %w", arg, err)
	}
	return id, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
