// Package pipeline runs the dashboard stages in order and records each run in
// a manifest next to the data it produced.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"fpna_dashboard/pkg/core/store"
)

// Stage is one step of the pipeline. Stages communicate only through the
// tables they persist.
type Stage interface {
	Name() string
	Run(ctx context.Context) error
}

// ManifestReporter is implemented by stages that add details to the run
// manifest after a successful Run.
type ManifestReporter interface {
	Report(m *store.Manifest)
}

// Orchestrator runs stages sequentially; the first failing stage aborts the
// run.
type Orchestrator struct {
	store *store.TableStore
	log   logrus.FieldLogger
	now   func() time.Time
	newID func() string
}

// NewOrchestrator creates an orchestrator writing its manifest to s.
func NewOrchestrator(s *store.TableStore, log logrus.FieldLogger) *Orchestrator {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Orchestrator{store: s, log: log, now: time.Now, newID: uuid.NewString}
}

// SetClock overrides the time source (for testing).
func (o *Orchestrator) SetClock(now func() time.Time) {
	o.now = now
}

// Run executes stages in order and writes run_manifest.yaml whether the run
// succeeds or fails. A stage error is returned wrapped with the stage name.
func (o *Orchestrator) Run(ctx context.Context, stages ...Stage) (*store.Manifest, error) {
	m := &store.Manifest{
		RunID:     o.newID(),
		StartedAt: o.now().UTC().Format(time.RFC3339),
		Stages:    make([]store.StageRecord, 0, len(stages)),
	}
	runLog := o.log.WithField("run_id", m.RunID)
	runLog.WithField("stages", len(stages)).Info("pipeline started")
	start := o.now()

	for _, st := range stages {
		stageLog := runLog.WithField("stage", st.Name())
		stageStart := o.now()

		err := ctx.Err()
		if err == nil {
			stageLog.Info("stage started")
			err = st.Run(ctx)
		}
		rec := store.StageRecord{Name: st.Name(), Duration: o.now().Sub(stageStart).Round(time.Millisecond).String()}

		if err != nil {
			rec.Error = err.Error()
			m.Stages = append(m.Stages, rec)
			m.Status = store.StatusFailed
			m.FailedStage = st.Name()
			m.FinishedAt = o.now().UTC().Format(time.RFC3339)
			stageLog.WithError(err).Error("stage failed")
			if werr := o.store.WriteManifest(*m); werr != nil {
				runLog.WithError(werr).Warn("failed to write run manifest")
			}
			return m, fmt.Errorf("stage %s: %w", st.Name(), err)
		}

		m.Stages = append(m.Stages, rec)
		if r, ok := st.(ManifestReporter); ok {
			r.Report(m)
		}
		stageLog.WithField("duration", rec.Duration).Info("stage completed")
	}

	m.Status = store.StatusSucceeded
	m.FinishedAt = o.now().UTC().Format(time.RFC3339)
	if err := o.store.WriteManifest(*m); err != nil {
		return m, fmt.Errorf("failed to write run manifest: %w", err)
	}
	runLog.WithField("elapsed", o.now().Sub(start).Round(time.Millisecond).String()).Info("pipeline completed")
	return m, nil
}
