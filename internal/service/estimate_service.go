package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/straye-as/estimator/internal/domain"
	"github.com/straye-as/estimator/internal/estimate"
	"github.com/straye-as/estimator/internal/logger"
	"github.com/straye-as/estimator/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// StatusValue is the total final price of the latest versions in one approval status
type StatusValue struct {
	Status       domain.ProjectStatus `json:"status"`
	ProjectCount int                  `json:"project_count"`
	FinalPrice   float64              `json:"final_price"`
}

// VersionComparison pairs two summaries of the same project with their deltas
type VersionComparison struct {
	From       estimate.ProjectSummary `json:"from"`
	To         estimate.ProjectSummary `json:"to"`
	Comparison estimate.Comparison     `json:"comparison"`
}

// EstimateService runs the estimation engine over stored projects
type EstimateService struct {
	projectRepo *repository.ProjectRepository
	logger      *zap.Logger
}

// NewEstimateService creates a new EstimateService
func NewEstimateService(projectRepo *repository.ProjectRepository, logger *zap.Logger) *EstimateService {
	return &EstimateService{
		projectRepo: projectRepo,
		logger:      logger,
	}
}

// Evaluate summarizes a project that has not necessarily been stored
func (s *EstimateService) Evaluate(project *domain.Project) estimate.ProjectSummary {
	summary := estimate.SummarizeProject(project)
	s.logWarnings(project, summary.Warnings)
	return summary
}

// SummarizeProject loads a version and summarizes all of its waves
func (s *EstimateService) SummarizeProject(ctx context.Context, id uuid.UUID) (*domain.Project, estimate.ProjectSummary, error) {
	project, err := s.load(ctx, id)
	if err != nil {
		return nil, estimate.ProjectSummary{}, err
	}
	return project, s.Evaluate(project), nil
}

// SummarizeWave summarizes one wave of a version with the project's margin
func (s *EstimateService) SummarizeWave(ctx context.Context, projectID, waveID uuid.UUID) (estimate.WaveSummary, error) {
	project, err := s.load(ctx, projectID)
	if err != nil {
		return estimate.WaveSummary{}, err
	}

	for i := range project.Waves {
		if project.Waves[i].ID == waveID {
			summary := estimate.SummarizeWave(&project.Waves[i], project.ProfitMarginPercentage)
			s.logWarnings(project, summary.Warnings)
			return summary, nil
		}
	}
	return estimate.WaveSummary{}, ErrNotFound
}

// CompareVersions summarizes two versions of the same project and reports the
// change from a to b
func (s *EstimateService) CompareVersions(ctx context.Context, a, b uuid.UUID) (*VersionComparison, error) {
	from, err := s.load(ctx, a)
	if err != nil {
		return nil, err
	}
	to, err := s.load(ctx, b)
	if err != nil {
		return nil, err
	}
	if from.ProjectNumber != to.ProjectNumber {
		return nil, fmt.Errorf("%w: %s and %s", ErrVersionMismatch, from.ProjectNumber, to.ProjectNumber)
	}

	fromSummary := s.Evaluate(from)
	toSummary := s.Evaluate(to)
	return &VersionComparison{
		From:       fromSummary,
		To:         toSummary,
		Comparison: estimate.CompareVersions(fromSummary, toSummary),
	}, nil
}

// ValueByStatus groups the final price of every latest version by approval status.
// Every status is present, in workflow order.
func (s *EstimateService) ValueByStatus(ctx context.Context) ([]StatusValue, error) {
	projects, err := s.projectRepo.ListLatest(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	byStatus := make(map[domain.ProjectStatus]*StatusValue, len(domain.AllProjectStatuses))
	values := make([]StatusValue, len(domain.AllProjectStatuses))
	for i, status := range domain.AllProjectStatuses {
		values[i].Status = status
		byStatus[status] = &values[i]
	}

	for i := range projects {
		v, ok := byStatus[projects[i].Status]
		if !ok {
			s.logger.Warn("skipping project with unknown status",
				zap.String("project_number", projects[i].ProjectNumber),
				zap.String("status", string(projects[i].Status)))
			continue
		}
		summary := estimate.SummarizeProject(&projects[i])
		v.ProjectCount++
		v.FinalPrice = math.Min(v.FinalPrice+summary.FinalPrice, math.MaxFloat64)
	}
	return values, nil
}

func (s *EstimateService) load(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return project, nil
}

func (s *EstimateService) logWarnings(project *domain.Project, warnings []estimate.Warning) {
	if len(warnings) == 0 {
		return
	}
	log := logger.WithProject(s.logger, project.ID.String(), project.ProjectNumber, project.Version)
	for _, w := range warnings {
		log.Warn("estimate warning",
			zap.String("code", string(w.Code)),
			zap.String("message", w.Message))
	}
}
