package testutil

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/straye-as/estimator/internal/database"
	"github.com/straye-as/estimator/internal/domain"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB opens a private in-memory SQLite database with the estimator schema
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "Failed to open in-memory test database")
	require.NoError(t, database.AutoMigrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// shared-cache memory databases vanish when the last connection closes
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

// NewTestProject builds an unsaved project with two waves and three allocations
func NewTestProject(name string) *domain.Project {
	cfg := domain.DefaultLogisticsConfig
	return &domain.Project{
		Name:                   name,
		CustomerName:           "Test Customer",
		ProjectLocations:       []string{"AE"},
		ProfitMarginPercentage: 35,
		Status:                 domain.ProjectStatusDraft,
		Version:                1,
		IsLatestVersion:        true,
		Waves: []domain.Wave{
			{
				Name:                 "Wave 1",
				Position:             0,
				DurationMonths:       3,
				PhaseNames:           []string{"Month 1", "Month 2", "Month 3"},
				LogisticsConfig:      &cfg,
				NegoBufferPercentage: 5,
				Allocations: []domain.ResourceAllocation{
					{
						Position:           0,
						SkillName:          "Developer",
						ProficiencyLevel:   "Senior",
						AvgMonthlySalary:   8000,
						OverheadPercentage: 30,
						TravelRequired:     true,
						PhaseAllocations:   domain.PhaseAllocations{0: 1, 1: 1, 2: 1},
					},
					{
						Position:           1,
						SkillName:          "Architect",
						ProficiencyLevel:   "Lead",
						AvgMonthlySalary:   12000,
						OverheadPercentage: 25,
						IsOnsite:           true,
						PhaseAllocations:   domain.PhaseAllocations{0: 0.5, 1: 0.5},
					},
				},
			},
			{
				Name:           "Wave 2",
				Position:       1,
				DurationMonths: 2,
				PhaseNames:     []string{"Month 1", "Month 2"},
				Allocations: []domain.ResourceAllocation{
					{
						Position:           0,
						SkillName:          "Tester",
						ProficiencyLevel:   "Mid",
						AvgMonthlySalary:   4000,
						OverheadPercentage: 20,
						PhaseAllocations:   domain.PhaseAllocations{0: 2, 1: 2},
					},
				},
			},
		},
	}
}
