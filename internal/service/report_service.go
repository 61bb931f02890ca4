package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/estimator/internal/domain"
	"github.com/straye-as/estimator/internal/logger"
	"github.com/straye-as/estimator/internal/report"
	"github.com/straye-as/estimator/internal/repository"
	"github.com/straye-as/estimator/internal/storage"
	"go.uber.org/zap"
)

// ReportService archives estimate reports of project versions
type ReportService struct {
	projectRepo *repository.ProjectRepository
	estimates   *EstimateService
	storage     storage.Storage
	logger      *zap.Logger
}

// NewReportService creates a new ReportService
func NewReportService(
	projectRepo *repository.ProjectRepository,
	estimates *EstimateService,
	store storage.Storage,
	logger *zap.Logger,
) *ReportService {
	return &ReportService{
		projectRepo: projectRepo,
		estimates:   estimates,
		storage:     store,
		logger:      logger,
	}
}

// ReportKey is the storage key of a version's archived report
func ReportKey(projectNumber string, version int) string {
	return fmt.Sprintf("projects/%s/v%d.json", projectNumber, version)
}

// Archive summarizes a version and writes its report to storage. Archiving the
// same version again replaces the stored report.
func (s *ReportService) Archive(ctx context.Context, id uuid.UUID) (string, error) {
	project, summary, err := s.estimates.SummarizeProject(ctx, id)
	if err != nil {
		return "", err
	}

	doc := report.Build(project, summary)
	doc.GeneratedAt = time.Now().UTC()

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}

	key := ReportKey(project.ProjectNumber, project.Version)
	size, err := s.storage.Put(ctx, key, "application/json", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to store report: %w", err)
	}

	logger.WithProject(s.logger, project.ID.String(), project.ProjectNumber, project.Version).
		Info("report archived",
			zap.String("key", key),
			zap.Int64("size", size))
	return key, nil
}

// ArchiveLatest archives the latest version of every project whose status is
// one of statuses. A failing project is logged and counted, and the rest are
// still archived.
func (s *ReportService) ArchiveLatest(ctx context.Context, statuses []domain.ProjectStatus) (archived int, failed int, err error) {
	projects, err := s.projectRepo.ListLatest(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to list projects: %w", err)
	}

	wanted := make(map[domain.ProjectStatus]bool, len(statuses))
	for _, status := range statuses {
		wanted[status] = true
	}

	for _, p := range projects {
		if !wanted[p.Status] {
			continue
		}
		if err := ctx.Err(); err != nil {
			return archived, failed, err
		}
		if _, err := s.Archive(ctx, p.ID); err != nil {
			s.logger.Error("failed to archive report",
				zap.Error(err),
				zap.String("project_number", p.ProjectNumber),
				zap.Int("version", p.Version))
			failed++
			continue
		}
		archived++
	}
	return archived, failed, nil
}

// Load reads back an archived report
func (s *ReportService) Load(ctx context.Context, projectNumber string, version int) (*report.Document, error) {
	rc, err := s.storage.Get(ctx, ReportKey(projectNumber, version))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read report: %w", err)
	}
	defer rc.Close()

	var doc report.Document
	if err := json.NewDecoder(rc).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}
	return &doc, nil
}
