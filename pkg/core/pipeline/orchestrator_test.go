package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"fpna_dashboard/pkg/core/store"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type MockStage struct {
	NameValue string
	RunFunc   func(ctx context.Context) error
	Files     []string
	Calls     int
}

func (m *MockStage) Name() string { return m.NameValue }

func (m *MockStage) Run(ctx context.Context) error {
	m.Calls++
	if m.RunFunc != nil {
		return m.RunFunc(ctx)
	}
	return nil
}

func (m *MockStage) Report(man *store.Manifest) {
	man.Files = append(man.Files, m.Files...)
}

func newTestOrchestrator(t *testing.T) (*Orchestrator, *store.TableStore, *test.Hook) {
	t.Helper()
	s := store.NewTableStore(t.TempDir())
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)

	o := NewOrchestrator(s, log)
	clock := time.Date(2025, 1, 31, 12, 0, 0, 0, time.UTC)
	o.SetClock(func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	})
	o.newID = func() string { return "run-1" }
	return o, s, hook
}

// --- Tests ---

func TestOrchestrator_Run(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name        string
		stages      func() []*MockStage
		wantErr     error
		wantStatus  string
		wantFailed  string
		wantRecords int
		wantCalls   []int
		wantFiles   []string
	}{
		{
			name: "all stages succeed",
			stages: func() []*MockStage {
				return []*MockStage{
					{NameValue: "a", Files: []string{"a.csv"}},
					{NameValue: "b", Files: []string{"b.csv", "b.png"}},
				}
			},
			wantStatus:  store.StatusSucceeded,
			wantRecords: 2,
			wantCalls:   []int{1, 1},
			wantFiles:   []string{"a.csv", "b.csv", "b.png"},
		},
		{
			name: "first failure aborts the run",
			stages: func() []*MockStage {
				return []*MockStage{
					{NameValue: "a", Files: []string{"a.csv"}},
					{NameValue: "b", RunFunc: func(ctx context.Context) error { return boom }, Files: []string{"never"}},
					{NameValue: "c"},
				}
			},
			wantErr:     boom,
			wantStatus:  store.StatusFailed,
			wantFailed:  "b",
			wantRecords: 2,
			wantCalls:   []int{1, 1, 0},
			wantFiles:   []string{"a.csv"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, s, _ := newTestOrchestrator(t)
			mocks := tt.stages()
			stages := make([]Stage, len(mocks))
			for i, m := range mocks {
				stages[i] = m
			}

			m, err := o.Run(context.Background(), stages...)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Contains(t, err.Error(), "stage "+tt.wantFailed+":")
			} else {
				require.NoError(t, err)
			}

			require.NotNil(t, m)
			for i, want := range tt.wantCalls {
				assert.Equal(t, want, mocks[i].Calls, "calls to stage %s", mocks[i].NameValue)
			}

			persisted, err := s.ReadManifest()
			require.NoError(t, err)
			assert.Equal(t, "run-1", persisted.RunID)
			assert.Equal(t, tt.wantStatus, persisted.Status)
			assert.Equal(t, tt.wantFailed, persisted.FailedStage)
			assert.Len(t, persisted.Stages, tt.wantRecords)
			assert.Equal(t, tt.wantFiles, persisted.Files)
			assert.Equal(t, "1s", persisted.Stages[0].Duration)
			if tt.wantFailed != "" {
				assert.Equal(t, "boom", persisted.Stages[len(persisted.Stages)-1].Error)
			}
		})
	}
}

func TestOrchestrator_CanceledContext(t *testing.T) {
	o, s, hook := newTestOrchestrator(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stage := &MockStage{NameValue: "a"}
	_, err := o.Run(ctx, stage)
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, stage.Calls)

	m, err := s.ReadManifest()
	require.NoError(t, err)
	assert.Equal(t, store.StatusFailed, m.Status)
	assert.Equal(t, "a", m.FailedStage)

	var sawFailure bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.ErrorLevel && e.Data["stage"] == "a" {
			sawFailure = true
		}
	}
	assert.True(t, sawFailure)
}

func TestNewOrchestrator_GeneratesRunID(t *testing.T) {
	o := NewOrchestrator(store.NewTableStore(t.TempDir()), nil)
	m, err := o.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, m.RunID, 36)
	assert.Equal(t, store.StatusSucceeded, m.Status)
	assert.Empty(t, m.Stages)
}
