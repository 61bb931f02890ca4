package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidPhaseAllocations is returned when a phase allocation map is not a
// mapping of phase indexes to numbers
var ErrInvalidPhaseAllocations = errors.New("phase allocations must map phase indexes to numbers")

// legacyIDNamespace scopes uuids derived from non-uuid ids found in older records
var legacyIDNamespace = uuid.MustParse("6f1c0d1e-7a43-4c1b-9d0e-2f6b8f3c5a10")

// PhaseAllocations maps a phase index to the man-months allocated in that phase.
// Absent phases count as zero.
type PhaseAllocations map[int]float64

// Clone returns an independent copy
func (p PhaseAllocations) Clone() PhaseAllocations {
	if p == nil {
		return nil
	}
	out := make(PhaseAllocations, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// UnmarshalJSON accepts an object keyed by phase index ("0", "1", ...).
// Null values are treated as absent phases.
func (p *PhaseAllocations) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*p = nil
		return nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPhaseAllocations, err)
	}

	out := make(PhaseAllocations, len(raw))
	for key, value := range raw {
		index, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil {
			return fmt.Errorf("%w: key %q is not a phase index", ErrInvalidPhaseAllocations, key)
		}
		if bytes.Equal(bytes.TrimSpace(value), []byte("null")) {
			continue
		}
		var mm float64
		if err := json.Unmarshal(value, &mm); err != nil {
			return fmt.Errorf("%w: phase %d value %s is not a number", ErrInvalidPhaseAllocations, index, string(value))
		}
		out[index] = mm
	}

	*p = out
	return nil
}

// UnmarshalJSON fills any field missing from the payload with its default rate.
// Explicit zeros are kept.
func (c *LogisticsConfig) UnmarshalJSON(data []byte) error {
	cfg, err := DefaultLogisticsConfig.Overlay(data)
	if err != nil {
		return err
	}
	*c = cfg
	return nil
}

// Overlay returns c with every field present in the JSON object data replaced
func (c LogisticsConfig) Overlay(data []byte) (LogisticsConfig, error) {
	type alias LogisticsConfig
	cfg := alias(c)
	if err := json.Unmarshal(data, &cfg); err != nil {
		return c, err
	}
	return LogisticsConfig(cfg), nil
}

// UnmarshalJSON tolerates opaque non-uuid ids from older records
func (a *ResourceAllocation) UnmarshalJSON(data []byte) error {
	type alias ResourceAllocation
	aux := struct {
		*alias
		ID     string `json:"id"`
		WaveID string `json:"wave_id"`
	}{alias: (*alias)(a)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	a.ID = parseRecordID(aux.ID)
	a.WaveID = parseRecordID(aux.WaveID)
	return nil
}

// UnmarshalJSON tolerates opaque non-uuid ids from older records
func (w *Wave) UnmarshalJSON(data []byte) error {
	type alias Wave
	aux := struct {
		*alias
		ID        string `json:"id"`
		ProjectID string `json:"project_id"`
	}{alias: (*alias)(w)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	w.ID = parseRecordID(aux.ID)
	w.ProjectID = parseRecordID(aux.ProjectID)
	return nil
}

// UnmarshalJSON accepts both the multi-location fields and the legacy
// single project_location / project_location_name pair
func (p *Project) UnmarshalJSON(data []byte) error {
	type alias Project
	aux := struct {
		*alias
		ID                  string `json:"id"`
		ParentVersionID     string `json:"parent_version_id"`
		ProjectLocation     string `json:"project_location"`
		ProjectLocationName string `json:"project_location_name"`
	}{alias: (*alias)(p)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	p.ID = parseRecordID(aux.ID)
	if aux.ParentVersionID != "" {
		parent := parseRecordID(aux.ParentVersionID)
		p.ParentVersionID = &parent
	}
	if len(p.ProjectLocations) == 0 && aux.ProjectLocation != "" {
		p.ProjectLocations = []string{aux.ProjectLocation}
	}
	if len(p.ProjectLocationNames) == 0 && aux.ProjectLocationName != "" {
		p.ProjectLocationNames = []string{aux.ProjectLocationName}
	}
	return nil
}

func parseRecordID(id string) uuid.UUID {
	id = strings.TrimSpace(id)
	if id == "" {
		return uuid.Nil
	}
	if parsed, err := uuid.Parse(id); err == nil {
		return parsed
	}
	return uuid.NewSHA1(legacyIDNamespace, []byte(id))
}
