package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/straye-as/estimator/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrStaleVersion is returned when a new version is cut from a snapshot that
// is no longer the latest version of its project
var ErrStaleVersion = errors.New("project version is no longer the latest")

// ProjectRepository persists project versions together with their waves and allocations
type ProjectRepository struct {
	db        *gorm.DB
	sequences *NumberSequenceRepository
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{
		db:        db,
		sequences: NewNumberSequenceRepository(db),
	}
}

// Create inserts the project and its full wave tree
func (r *ProjectRepository) Create(ctx context.Context, project *domain.Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

// GetByID loads a project version with waves and allocations in position order
func (r *ProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	var project domain.Project
	err := withWaves(r.db.WithContext(ctx)).
		Where("id = ?", id).
		First(&project).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// ListVersions returns every version of a project number, newest first
func (r *ProjectRepository) ListVersions(ctx context.Context, projectNumber string) ([]domain.Project, error) {
	var projects []domain.Project
	err := r.db.WithContext(ctx).
		Where("project_number = ?", projectNumber).
		Order("version DESC").
		Find(&projects).Error
	return projects, err
}

// ListLatest returns the latest version of every project with its waves loaded
func (r *ProjectRepository) ListLatest(ctx context.Context) ([]domain.Project, error) {
	var projects []domain.Project
	err := withWaves(r.db.WithContext(ctx)).
		Where("is_latest_version = ?", true).
		Order("project_number ASC").
		Find(&projects).Error
	return projects, err
}

// CreateVersion marks prev as superseded and inserts next in one transaction
func (r *ProjectRepository) CreateVersion(ctx context.Context, prev, next *domain.Project) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&domain.Project{}).
			Where("id = ? AND is_latest_version = ?", prev.ID, true).
			Update("is_latest_version", false)
		if result.Error != nil {
			return fmt.Errorf("failed to supersede version %d: %w", prev.Version, result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrStaleVersion
		}

		if err := tx.Create(next).Error; err != nil {
			return fmt.Errorf("failed to create version %d: %w", next.Version, err)
		}
		prev.IsLatestVersion = false
		return nil
	})
}

// Update saves the project's own columns and replaces its waves
func (r *ProjectRepository) Update(ctx context.Context, project *domain.Project) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(project).Error; err != nil {
			return fmt.Errorf("failed to save project: %w", err)
		}
		return replaceWaves(tx, project.ID, project.Waves)
	})
}

// UpdateStatus sets the approval status of a single version
func (r *ProjectRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ProjectStatus) error {
	result := r.db.WithContext(ctx).Model(&domain.Project{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

var projectNumberPattern = regexp.MustCompile(`^PRJ-(\d{1,9})$`)

// NextProjectNumber issues the next project number, e.g. PRJ-0042
func (r *ProjectRepository) NextProjectNumber(ctx context.Context) (string, error) {
	seq, err := r.sequences.GetNextNumber(ctx, ProjectNumberSequence)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("PRJ-%04d", seq), nil
}

// ReserveProjectNumber moves the number sequence past a number supplied from
// outside, so generated numbers never collide with it. Numbers that do not
// follow the PRJ-NNNN pattern are left alone.
func (r *ProjectRepository) ReserveProjectNumber(ctx context.Context, number string) error {
	m := projectNumberPattern.FindStringSubmatch(strings.TrimSpace(number))
	if m == nil {
		return nil
	}
	seq, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	return r.sequences.SetSequence(ctx, ProjectNumberSequence, seq)
}

func withWaves(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Waves", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Waves.Allocations", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		})
}

func replaceWaves(tx *gorm.DB, projectID uuid.UUID, waves []domain.Wave) error {
	waveIDs := tx.Model(&domain.Wave{}).Select("id").Where("project_id = ?", projectID)
	if err := tx.Where("wave_id IN (?)", waveIDs).Delete(&domain.ResourceAllocation{}).Error; err != nil {
		return fmt.Errorf("failed to delete allocations: %w", err)
	}
	if err := tx.Where("project_id = ?", projectID).Delete(&domain.Wave{}).Error; err != nil {
		return fmt.Errorf("failed to delete waves: %w", err)
	}
	if len(waves) == 0 {
		return nil
	}

	for i := range waves {
		waves[i].ProjectID = projectID
		waves[i].Position = i
		for j := range waves[i].Allocations {
			waves[i].Allocations[j].Position = j
		}
	}
	if err := tx.Create(&waves).Error; err != nil {
		return fmt.Errorf("failed to create waves: %w", err)
	}
	return nil
}
