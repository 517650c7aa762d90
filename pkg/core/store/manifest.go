package store

import (
	"fmt"

	"fpna_dashboard/pkg/models"

	"gopkg.in/yaml.v2"
)

// Run statuses recorded in the manifest.
const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// StageRecord is one executed stage in a run.
type StageRecord struct {
	Name     string `yaml:"name"`
	Duration string `yaml:"duration"`
	Error    string `yaml:"error,omitempty"`
}

// Manifest describes a single pipeline run.
type Manifest struct {
	RunID             string            `yaml:"run_id"`
	StartedAt         string            `yaml:"started_at"`
	FinishedAt        string            `yaml:"finished_at"`
	Status            string            `yaml:"status"`
	FailedStage       string            `yaml:"failed_stage,omitempty"`
	Stages            []StageRecord     `yaml:"stages"`
	ForecastTiers     map[string]string `yaml:"forecast_tiers,omitempty"`
	NarrativeProvider string            `yaml:"narrative_provider,omitempty"`
	Files             []string          `yaml:"files,omitempty"`
}

// WriteManifest persists m as run_manifest.yaml.
func (s *TableStore) WriteManifest(m Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	return s.WriteFiles(File{Name: models.ManifestFile, Data: data})
}

// ReadManifest loads run_manifest.yaml.
func (s *TableStore) ReadManifest() (*Manifest, error) {
	data, err := s.ReadFile(models.ManifestFile)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}
	return &m, nil
}
