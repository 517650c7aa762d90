package pipeline

import (
	"context"

	"github.com/sirupsen/logrus"

	"fpna_dashboard/pkg/core/deck"
	"fpna_dashboard/pkg/core/ingest"
	"fpna_dashboard/pkg/core/narrative"
	"fpna_dashboard/pkg/core/projection"
	"fpna_dashboard/pkg/core/store"
	"fpna_dashboard/pkg/core/variance"
	"fpna_dashboard/pkg/core/visual"
	"fpna_dashboard/pkg/models"
)

// Stage names, as recorded in the manifest.
const (
	StageGenerate = "generate"
	StageVariance = "variance"
	StageForecast = "forecast"
	StageSummary  = "summary"
	StageVisuals  = "visuals"
	StageDeck     = "deck"
)

// files records the outputs a stage published.
type files []string

func (f files) Report(m *store.Manifest) {
	m.Files = append(m.Files, f...)
}

// GenerateStage writes a synthetic financials.csv.
type GenerateStage struct {
	Store   *store.TableStore
	Options ingest.GenerateOptions
	files
}

func (s *GenerateStage) Name() string { return StageGenerate }

func (s *GenerateStage) Run(ctx context.Context) error {
	records, err := ingest.Generate(s.Options)
	if err != nil {
		return err
	}
	if err := ingest.WriteGenerated(s.Store, records); err != nil {
		return err
	}
	s.files = files{models.FinancialsFile}
	return nil
}

// VarianceStage derives the variance tables from financials.csv.
type VarianceStage struct {
	Store *store.TableStore
	files
}

func (s *VarianceStage) Name() string { return StageVariance }

func (s *VarianceStage) Run(ctx context.Context) error {
	records, err := ingest.LoadFinancials(s.Store)
	if err != nil {
		return err
	}
	report, err := variance.Analyze(records)
	if err != nil {
		return err
	}
	tables := report.Tables()
	if err := s.Store.WriteTables(tables...); err != nil {
		return err
	}
	s.files = make(files, len(tables))
	for i, t := range tables {
		s.files[i] = t.Name
	}
	return nil
}

// ForecastStage projects revenue per department from financials.csv.
type ForecastStage struct {
	Store  *store.TableStore
	Engine *projection.Engine
	tiers  map[string]string
	files
}

func (s *ForecastStage) Name() string { return StageForecast }

func (s *ForecastStage) Run(ctx context.Context) error {
	records, err := ingest.LoadRevenue(s.Store)
	if err != nil {
		return err
	}
	result, err := s.Engine.ForecastAll(ctx, records)
	if err != nil {
		return err
	}
	if err := s.Store.WriteTables(result.Table()); err != nil {
		return err
	}
	s.tiers = result.Tiers
	s.files = files{models.ForecastFile}
	return nil
}

// Tiers returns the tier chosen per department by the last Run.
func (s *ForecastStage) Tiers() map[string]string { return s.tiers }

func (s *ForecastStage) Report(m *store.Manifest) {
	m.ForecastTiers = s.tiers
	s.files.Report(m)
}

// SummaryStage writes exec_summary.md.
type SummaryStage struct {
	Store     *store.TableStore
	Generator *narrative.Generator
	provider  string
	files
}

func (s *SummaryStage) Name() string { return StageSummary }

func (s *SummaryStage) Run(ctx context.Context) error {
	in, err := narrative.LoadInputs(s.Store)
	if err != nil {
		return err
	}
	summary := s.Generator.Generate(ctx, in)
	if err := s.Store.WriteFiles(store.File{Name: models.ExecSummaryFile, Data: []byte(summary.Markdown)}); err != nil {
		return err
	}
	s.provider = summary.Provider
	s.files = files{models.ExecSummaryFile}
	return nil
}

// Provider returns the provider label of the last written summary.
func (s *SummaryStage) Provider() string { return s.provider }

func (s *SummaryStage) Report(m *store.Manifest) {
	m.NarrativeProvider = s.provider
	s.files.Report(m)
}

// VisualsStage renders the chart PNGs.
type VisualsStage struct {
	Store *store.TableStore
	Size  visual.Size
	Log   logrus.FieldLogger
	files
}

func (s *VisualsStage) Name() string { return StageVisuals }

func (s *VisualsStage) Run(ctx context.Context) error {
	names, err := visual.Render(s.Store, s.Size, s.Log)
	if err != nil {
		return err
	}
	s.files = names
	return nil
}

// DeckStage writes fpna_onepager.html.
type DeckStage struct {
	Builder *deck.Builder
	files
}

func (s *DeckStage) Name() string { return StageDeck }

func (s *DeckStage) Run(ctx context.Context) error {
	if _, err := s.Builder.Write(); err != nil {
		return err
	}
	s.files = files{models.DeckFile}
	return nil
}
