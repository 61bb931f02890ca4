package domain

import (
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// BeforeCreate assigns an id when the caller did not set one
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// ProjectStatus represents the approval state of a project version
type ProjectStatus string

const (
	ProjectStatusDraft    ProjectStatus = "draft"
	ProjectStatusInReview ProjectStatus = "in_review"
	ProjectStatusApproved ProjectStatus = "approved"
	ProjectStatusRejected ProjectStatus = "rejected"
)

// AllProjectStatuses lists statuses in workflow order
var AllProjectStatuses = []ProjectStatus{
	ProjectStatusDraft,
	ProjectStatusInReview,
	ProjectStatusApproved,
	ProjectStatusRejected,
}

// IsValid checks if the status is one of the known workflow states
func (s ProjectStatus) IsValid() bool {
	switch s {
	case ProjectStatusDraft, ProjectStatusInReview, ProjectStatusApproved, ProjectStatusRejected:
		return true
	}
	return false
}

// CanTransitionTo reports whether the approval workflow allows moving from s to next.
// draft -> in_review -> approved | rejected, and a rejected estimate goes back to draft.
func (s ProjectStatus) CanTransitionTo(next ProjectStatus) bool {
	switch s {
	case ProjectStatusDraft:
		return next == ProjectStatusInReview
	case ProjectStatusInReview:
		return next == ProjectStatusApproved || next == ProjectStatusRejected
	case ProjectStatusRejected:
		return next == ProjectStatusDraft
	}
	return false
}

// LogisticsConfig is the per-wave travel cost rate table
type LogisticsConfig struct {
	PerDiemDaily          float64 `json:"per_diem_daily"`
	PerDiemDays           float64 `json:"per_diem_days"`
	AccommodationDaily    float64 `json:"accommodation_daily"`
	AccommodationDays     float64 `json:"accommodation_days"`
	LocalConveyanceDaily  float64 `json:"local_conveyance_daily"`
	LocalConveyanceDays   float64 `json:"local_conveyance_days"`
	FlightCostPerTrip     float64 `json:"flight_cost_per_trip"`
	VisaMedicalPerTrip    float64 `json:"visa_medical_per_trip"`
	NumTrips              float64 `json:"num_trips"`
	ContingencyPercentage float64 `json:"contingency_percentage"`
}

// DefaultLogisticsConfig is used for any wave that has no explicit logistics config
var DefaultLogisticsConfig = LogisticsConfig{
	PerDiemDaily:          50,
	PerDiemDays:           30,
	AccommodationDaily:    80,
	AccommodationDays:     30,
	LocalConveyanceDaily:  15,
	LocalConveyanceDays:   21,
	FlightCostPerTrip:     450,
	VisaMedicalPerTrip:    400,
	NumTrips:              6,
	ContingencyPercentage: 5,
}

// ResourceAllocation is one staffed role within a wave
type ResourceAllocation struct {
	BaseModel
	WaveID                uuid.UUID        `gorm:"type:uuid;not null;index;column:wave_id" json:"wave_id"`
	Position              int              `gorm:"not null;default:0" json:"position"`
	SkillID               string           `gorm:"type:varchar(100);column:skill_id" json:"skill_id"`
	SkillName             string           `gorm:"type:varchar(200);column:skill_name" json:"skill_name" validate:"max=200"`
	ProficiencyLevel      string           `gorm:"type:varchar(50);column:proficiency_level" json:"proficiency_level"`
	BaseLocationID        string           `gorm:"type:varchar(100);column:base_location_id" json:"base_location_id"`
	BaseLocationName      string           `gorm:"type:varchar(200);column:base_location_name" json:"base_location_name"`
	AvgMonthlySalary      float64          `gorm:"type:decimal(15,2);not null;default:0;column:avg_monthly_salary" json:"avg_monthly_salary"`
	OriginalMonthlySalary float64          `gorm:"type:decimal(15,2);not null;default:0;column:original_monthly_salary" json:"original_monthly_salary"`
	OverheadPercentage    float64          `gorm:"type:decimal(7,2);not null;default:0;column:overhead_percentage" json:"overhead_percentage"`
	IsOnsite              bool             `gorm:"not null;default:false;column:is_onsite" json:"is_onsite"`
	TravelRequired        bool             `gorm:"not null;default:false;column:travel_required" json:"travel_required"`
	PhaseAllocations      PhaseAllocations `gorm:"type:jsonb;serializer:json;column:phase_allocations" json:"phase_allocations"`
}

// Wave is a time-boxed staffing and logistics unit within a project
type Wave struct {
	BaseModel
	ProjectID            uuid.UUID            `gorm:"type:uuid;not null;index;column:project_id" json:"project_id"`
	Position             int                  `gorm:"not null;default:0" json:"position"`
	Name                 string               `gorm:"type:varchar(200);not null" json:"name" validate:"max=200"`
	DurationMonths       float64              `gorm:"type:decimal(7,2);not null;default:0;column:duration_months" json:"duration_months"`
	PhaseNames           []string             `gorm:"type:jsonb;serializer:json;column:phase_names" json:"phase_names"`
	LogisticsConfig      *LogisticsConfig     `gorm:"type:jsonb;serializer:json;column:logistics_config" json:"logistics_config"`
	NegoBufferPercentage float64              `gorm:"type:decimal(7,2);not null;default:0;column:nego_buffer_percentage" json:"nego_buffer_percentage"`
	Allocations          []ResourceAllocation `gorm:"foreignKey:WaveID;constraint:OnDelete:CASCADE" json:"grid_allocations" validate:"dive"`
}

// PhaseCount returns the number of phases allocations may index into.
// Zero means the wave carries no phase information and every key counts.
func (w *Wave) PhaseCount() int {
	if len(w.PhaseNames) > 0 {
		return len(w.PhaseNames)
	}
	if w.DurationMonths > 0 && !math.IsInf(w.DurationMonths, 0) {
		return int(math.Ceil(w.DurationMonths))
	}
	return 0
}

// EffectiveLogisticsConfig returns the wave's config or the defaults when none is set
func (w *Wave) EffectiveLogisticsConfig() LogisticsConfig {
	if w.LogisticsConfig == nil {
		return DefaultLogisticsConfig
	}
	return *w.LogisticsConfig
}

// Project is a single version of an estimate
type Project struct {
	BaseModel
	ProjectNumber          string        `gorm:"type:varchar(50);not null;index;column:project_number" json:"project_number"`
	Name                   string        `gorm:"type:varchar(200);not null;index" json:"name" validate:"required,max=200"`
	Description            string        `gorm:"type:text" json:"description"`
	CustomerID             string        `gorm:"type:varchar(100);column:customer_id" json:"customer_id"`
	CustomerName           string        `gorm:"type:varchar(200);column:customer_name" json:"customer_name"`
	ProjectLocations       []string      `gorm:"type:jsonb;serializer:json;column:project_locations" json:"project_locations"`
	ProjectLocationNames   []string      `gorm:"type:jsonb;serializer:json;column:project_location_names" json:"project_location_names"`
	TechnologyIDs          []string      `gorm:"type:jsonb;serializer:json;column:technology_ids" json:"technology_ids"`
	ProjectTypeIDs         []string      `gorm:"type:jsonb;serializer:json;column:project_type_ids" json:"project_type_ids"`
	ProfitMarginPercentage float64       `gorm:"type:decimal(7,2);not null;default:0;column:profit_margin_percentage" json:"profit_margin_percentage" validate:"gte=0"`
	Status                 ProjectStatus `gorm:"type:varchar(50);not null;default:'draft';index" json:"status" validate:"omitempty,oneof=draft in_review approved rejected"`
	Version                int           `gorm:"not null;default:1" json:"version" validate:"gte=0"`
	IsLatestVersion        bool          `gorm:"not null;default:true;index;column:is_latest_version" json:"is_latest_version"`
	ParentVersionID        *uuid.UUID    `gorm:"type:uuid;column:parent_version_id" json:"parent_version_id,omitempty"`
	VersionNotes           string        `gorm:"type:text;column:version_notes" json:"version_notes"`
	Waves                  []Wave        `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"waves" validate:"dive"`
}

// IsReadOnly reports whether this snapshot is frozen. Only the latest,
// non-approved version of a project may be edited.
func (p *Project) IsReadOnly() bool {
	return !p.IsLatestVersion || p.Status == ProjectStatusApproved
}

// NextVersion returns a deep copy of the project as the following version.
// The copy has no ids so it is inserted as new rows; the caller is responsible
// for marking p as no longer latest.
func (p *Project) NextVersion(notes string) *Project {
	next := p.copyWithoutIDs()
	next.Version = p.Version + 1
	next.IsLatestVersion = true
	next.Status = ProjectStatusDraft
	parentID := p.ID
	next.ParentVersionID = &parentID
	next.VersionNotes = notes
	return next
}

// Clone returns an independent version-1 copy of the project under a new number
func (p *Project) Clone(projectNumber, name string) *Project {
	clone := p.copyWithoutIDs()
	clone.ProjectNumber = projectNumber
	if name != "" {
		clone.Name = name
	}
	clone.Version = 1
	clone.IsLatestVersion = true
	clone.Status = ProjectStatusDraft
	clone.ParentVersionID = nil
	clone.VersionNotes = ""
	return clone
}

func (p *Project) copyWithoutIDs() *Project {
	cp := *p
	cp.BaseModel = BaseModel{}
	cp.ProjectLocations = copyStrings(p.ProjectLocations)
	cp.ProjectLocationNames = copyStrings(p.ProjectLocationNames)
	cp.TechnologyIDs = copyStrings(p.TechnologyIDs)
	cp.ProjectTypeIDs = copyStrings(p.ProjectTypeIDs)

	cp.Waves = make([]Wave, len(p.Waves))
	for i, w := range p.Waves {
		wc := w
		wc.BaseModel = BaseModel{}
		wc.ProjectID = uuid.Nil
		wc.PhaseNames = copyStrings(w.PhaseNames)
		if w.LogisticsConfig != nil {
			cfg := *w.LogisticsConfig
			wc.LogisticsConfig = &cfg
		}
		wc.Allocations = make([]ResourceAllocation, len(w.Allocations))
		for j, a := range w.Allocations {
			ac := a
			ac.BaseModel = BaseModel{}
			ac.WaveID = uuid.Nil
			ac.PhaseAllocations = a.PhaseAllocations.Clone()
			wc.Allocations[j] = ac
		}
		cp.Waves[i] = wc
	}
	return &cp
}

func copyStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// NumberSequence tracks the last issued number for a named sequence
type NumberSequence struct {
	Name         string    `gorm:"type:varchar(50);primaryKey" json:"name"`
	LastSequence int       `gorm:"not null;default:0;column:last_sequence" json:"last_sequence"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (NumberSequence) TableName() string {
	return "number_sequences"
}
