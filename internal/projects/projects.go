// SPDX-License-Identifier: MIT
package projects

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/thatcatcamp/smartsvg/internal/coordinator"
	"github.com/thatcatcamp/smartsvg/internal/models"
	"github.com/thatcatcamp/smartsvg/internal/project"
	"gorm.io/gorm"
)

// CreateProject stores a new project with the given settings
func CreateProject(db *gorm.DB, name string, p project.Project) (*models.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &project.ValidationError{Field: "name", Message: "is required"}
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid project settings: %w", err)
	}

	config, err := project.Encode(p)
	if err != nil {
		return nil, err
	}

	record := &models.Project{
		ID:     uuid.NewString(),
		Name:   name,
		Kind:   string(p.Kind()),
		Config: string(config),
		Phase:  coordinator.PhaseEmpty.String(),
	}
	if err := db.Create(record).Error; err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	return record, nil
}

// GetProject retrieves a project and its variants by ID
func GetProject(db *gorm.DB, id string) (*models.Project, error) {
	var record models.Project
	result := db.Preload("Variants").First(&record, "id = ?", id)
	if result.Error != nil {
		return nil, fmt.Errorf("project not found: %w", result.Error)
	}
	return &record, nil
}

// ListProjects returns all projects, newest first
func ListProjects(db *gorm.DB) ([]models.Project, error) {
	var records []models.Project
	result := db.Order("created_at desc").Find(&records)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list projects: %w", result.Error)
	}
	return records, nil
}

// DeleteProject removes a project and its variants
func DeleteProject(db *gorm.DB, id string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&models.Project{}, "id = ?", id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete project: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("project not found: %w", gorm.ErrRecordNotFound)
		}
		if err := tx.Where("project_id = ?", id).Delete(&models.Variant{}).Error; err != nil {
			return fmt.Errorf("failed to delete variants: %w", err)
		}
		return nil
	})
}

// SaveSnapshot persists the settings and device states of a coordinator
func SaveSnapshot(db *gorm.DB, id string, snap coordinator.Snapshot) error {
	config, err := project.Encode(snap.Project)
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Project{}).Where("id = ?", id).Updates(map[string]any{
			"config": string(config),
			"kind":   string(snap.Project.Kind()),
			"phase":  snap.Phase.String(),
		})
		if result.Error != nil {
			return fmt.Errorf("failed to update project: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("project not found: %w", gorm.ErrRecordNotFound)
		}

		devices := make([]string, 0, len(snap.Devices))
		for device, state := range snap.Devices {
			data, err := json.Marshal(state)
			if err != nil {
				return fmt.Errorf("failed to encode %s state: %w", device, err)
			}
			var variant models.Variant
			err = tx.Where("project_id = ? AND device = ?", id, string(device)).
				Assign(models.Variant{State: string(data)}).
				FirstOrCreate(&variant, models.Variant{ProjectID: id, Device: string(device)}).Error
			if err != nil {
				return fmt.Errorf("failed to save %s state: %w", device, err)
			}
			devices = append(devices, string(device))
		}

		stale := tx.Where("project_id = ?", id)
		if len(devices) > 0 {
			stale = stale.Where("device NOT IN ?", devices)
		}
		if err := stale.Delete(&models.Variant{}).Error; err != nil {
			return fmt.Errorf("failed to prune variants: %w", err)
		}
		return nil
	})
}

// LoadSnapshot rebuilds the coordinator state stored for a project
func LoadSnapshot(db *gorm.DB, id string) (coordinator.Snapshot, error) {
	record, err := GetProject(db, id)
	if err != nil {
		return coordinator.Snapshot{}, err
	}
	return Snapshot(record)
}

// Snapshot decodes a stored project into coordinator state
func Snapshot(record *models.Project) (coordinator.Snapshot, error) {
	p, err := project.Decode([]byte(record.Config))
	if err != nil {
		return coordinator.Snapshot{}, fmt.Errorf("project %s: %w", record.ID, err)
	}

	snap := coordinator.Snapshot{
		Project: p,
		Phase:   coordinator.ParsePhase(record.Phase),
		Devices: make(map[project.Device]coordinator.DeviceState, len(record.Variants)),
	}
	for _, v := range record.Variants {
		var state coordinator.DeviceState
		if err := json.Unmarshal([]byte(v.State), &state); err != nil {
			return coordinator.Snapshot{}, fmt.Errorf("project %s %s state: %w", record.ID, v.Device, err)
		}
		snap.Devices[project.Device(v.Device)] = state
	}
	return snap, nil
}

// RecordArtifact stores the location of a composed smart SVG
func RecordArtifact(db *gorm.DB, projectID, key, storageType string, size int64) (*models.Artifact, error) {
	artifact := &models.Artifact{
		ProjectID:   projectID,
		StorageKey:  key,
		StorageType: storageType,
		Size:        size,
	}
	if err := db.Create(artifact).Error; err != nil {
		return nil, fmt.Errorf("failed to record artifact: %w", err)
	}
	return artifact, nil
}

// LatestArtifact returns the most recent artifact of a project
func LatestArtifact(db *gorm.DB, projectID string) (*models.Artifact, error) {
	var artifact models.Artifact
	result := db.Where("project_id = ?", projectID).Order("created_at desc, id desc").First(&artifact)
	if result.Error != nil {
		return nil, fmt.Errorf("artifact not found: %w", result.Error)
	}
	return &artifact, nil
}

// ArtifactsOlderThan lists artifacts created before cutoff
func ArtifactsOlderThan(db *gorm.DB, cutoff time.Time) ([]models.Artifact, error) {
	var artifacts []models.Artifact
	result := db.Where("created_at < ?", cutoff).Find(&artifacts)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", result.Error)
	}
	return artifacts, nil
}

// DeleteArtifact removes an artifact record
func DeleteArtifact(db *gorm.DB, id uint) error {
	if err := db.Delete(&models.Artifact{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete artifact: %w", err)
	}
	return nil
}
