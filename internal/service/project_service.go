package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/straye-as/estimator/internal/config"
	"github.com/straye-as/estimator/internal/domain"
	"github.com/straye-as/estimator/internal/logger"
	"github.com/straye-as/estimator/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProjectService manages project versions and the approval workflow
type ProjectService struct {
	projectRepo *repository.ProjectRepository
	estimation  config.EstimationConfig
	logger      *zap.Logger
}

// NewProjectService creates a new ProjectService
func NewProjectService(
	projectRepo *repository.ProjectRepository,
	estimation config.EstimationConfig,
	logger *zap.Logger,
) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		estimation:  estimation,
		logger:      logger,
	}
}

// DecodeProject parses a project document and applies the configured estimation
// defaults: the default profit margin when the document has none, the default
// logistics rates for every logistics field a wave leaves out, and phase labels
// for waves that only carry a duration.
func DecodeProject(data []byte, cfg config.EstimationConfig) (*domain.Project, error) {
	var project domain.Project
	if err := json.Unmarshal(data, &project); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	var raw struct {
		ProfitMarginPercentage *float64 `json:"profit_margin_percentage"`
		Waves                  []struct {
			LogisticsConfig json.RawMessage `json:"logistics_config"`
		} `json:"waves"`
	}
	if err := json.NewDecoder(bytes.NewReader(data)).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if raw.ProfitMarginPercentage == nil {
		project.ProfitMarginPercentage = cfg.DefaultProfitMargin
	}

	logistics := cfg.Logistics.LogisticsConfig()
	configured := logistics != (domain.LogisticsConfig{})
	for i := range project.Waves {
		w := &project.Waves[i]
		if configured {
			l := logistics
			if w.LogisticsConfig != nil && i < len(raw.Waves) {
				merged, err := logistics.Overlay(raw.Waves[i].LogisticsConfig)
				if err != nil {
					return nil, fmt.Errorf("%w: wave %d logistics: %w", ErrInvalidInput, i, err)
				}
				l = merged
			}
			w.LogisticsConfig = &l
		}
		seedPhaseNames(w, cfg.DefaultPhaseNames)
	}
	return &project, nil
}

// seedPhaseNames labels the phases of a wave that only has a duration.
// The phase count does not change.
func seedPhaseNames(w *domain.Wave, defaults []string) {
	if len(w.PhaseNames) > 0 {
		return
	}
	count := w.PhaseCount()
	if count == 0 {
		return
	}
	names := make([]string, count)
	for i := range names {
		if i < len(defaults) {
			names[i] = defaults[i]
		} else {
			names[i] = fmt.Sprintf("Phase %d", i+1)
		}
	}
	w.PhaseNames = names
}

// ImportJSON decodes a project document and stores it as a new project
func (s *ProjectService) ImportJSON(ctx context.Context, data []byte) (*domain.Project, error) {
	project, err := DecodeProject(data, s.estimation)
	if err != nil {
		return nil, err
	}
	return s.Import(ctx, project)
}

// Import stores the project as version 1 of a new project number. Ids carried by
// the input are discarded.
func (s *ProjectService) Import(ctx context.Context, project *domain.Project) (*domain.Project, error) {
	if err := validateProject(project); err != nil {
		return nil, err
	}

	number := project.ProjectNumber
	if number == "" {
		generated, err := s.projectRepo.NextProjectNumber(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to generate project number: %w", err)
		}
		number = generated
	} else {
		existing, err := s.projectRepo.ListVersions(ctx, number)
		if err != nil {
			return nil, fmt.Errorf("failed to check project number: %w", err)
		}
		if len(existing) > 0 {
			return nil, fmt.Errorf("%w: project number %s already exists", ErrInvalidInput, number)
		}
		if err := s.projectRepo.ReserveProjectNumber(ctx, number); err != nil {
			return nil, fmt.Errorf("failed to reserve project number: %w", err)
		}
	}

	imported := project.Clone(number, "")
	if err := s.projectRepo.Create(ctx, imported); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	logger.WithProject(s.logger, imported.ID.String(), imported.ProjectNumber, imported.Version).
		Info("project imported",
			zap.String("name", imported.Name),
			zap.Int("waves", len(imported.Waves)))
	return imported, nil
}

// Get loads a single project version with its waves
func (s *ProjectService) Get(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return project, nil
}

// Update replaces the editable content of the latest draft-able version.
// Number, version, status and lineage are kept from the stored record.
func (s *ProjectService) Update(ctx context.Context, project *domain.Project) (*domain.Project, error) {
	existing, err := s.Get(ctx, project.ID)
	if err != nil {
		return nil, err
	}
	if existing.IsReadOnly() {
		return nil, ErrReadOnlyVersion
	}
	if err := validateProject(project); err != nil {
		return nil, err
	}

	project.CreatedAt = existing.CreatedAt
	project.ProjectNumber = existing.ProjectNumber
	project.Version = existing.Version
	project.Status = existing.Status
	project.IsLatestVersion = existing.IsLatestVersion
	project.ParentVersionID = existing.ParentVersionID

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	logger.WithProject(s.logger, project.ID.String(), project.ProjectNumber, project.Version).
		Info("project updated")
	return s.Get(ctx, project.ID)
}

// NewVersion snapshots the latest version and continues work on a draft copy
func (s *ProjectService) NewVersion(ctx context.Context, id uuid.UUID, notes string) (*domain.Project, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !current.IsLatestVersion {
		return nil, ErrReadOnlyVersion
	}

	next := current.NextVersion(notes)
	if err := s.projectRepo.CreateVersion(ctx, current, next); err != nil {
		if errors.Is(err, repository.ErrStaleVersion) {
			return nil, ErrReadOnlyVersion
		}
		return nil, fmt.Errorf("failed to create version: %w", err)
	}

	logger.WithProject(s.logger, next.ID.String(), next.ProjectNumber, next.Version).
		Info("project version created",
			zap.String("parent_version_id", current.ID.String()))
	return next, nil
}

// Clone copies any version into a new project with its own number
func (s *ProjectService) Clone(ctx context.Context, id uuid.UUID, name string) (*domain.Project, error) {
	source, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	number, err := s.projectRepo.NextProjectNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate project number: %w", err)
	}

	clone := source.Clone(number, name)
	if err := s.projectRepo.Create(ctx, clone); err != nil {
		return nil, fmt.Errorf("failed to create clone: %w", err)
	}

	logger.WithProject(s.logger, clone.ID.String(), clone.ProjectNumber, clone.Version).
		Info("project cloned",
			zap.String("source_project_number", source.ProjectNumber),
			zap.Int("source_version", source.Version))
	return clone, nil
}

// ListVersions returns every version of a project number, newest first
func (s *ProjectService) ListVersions(ctx context.Context, projectNumber string) ([]domain.Project, error) {
	versions, err := s.projectRepo.ListVersions(ctx, projectNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to list versions: %w", err)
	}
	if len(versions) == 0 {
		return nil, ErrNotFound
	}
	return versions, nil
}

// TransitionStatus moves the latest version through the approval workflow
func (s *ProjectService) TransitionStatus(ctx context.Context, id uuid.UUID, status domain.ProjectStatus) (*domain.Project, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}

	project, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !project.IsLatestVersion {
		return nil, ErrReadOnlyVersion
	}
	if !project.Status.CanTransitionTo(status) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidStatusTransition, project.Status, status)
	}

	if err := s.projectRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("failed to update status: %w", err)
	}

	logger.WithProject(s.logger, project.ID.String(), project.ProjectNumber, project.Version).
		Info("project status changed",
			zap.String("from", string(project.Status)),
			zap.String("to", string(status)))
	project.Status = status
	return project, nil
}
