package jobs_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/straye-as/estimator/internal/domain"
	"github.com/straye-as/estimator/internal/jobs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeArchiver struct {
	mu       sync.Mutex
	calls    int
	statuses []domain.ProjectStatus
	archived int
	failed   int
	err      error
}

func (f *fakeArchiver) ArchiveLatest(ctx context.Context, statuses []domain.ProjectStatus) (int, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.statuses = statuses
	return f.archived, f.failed, f.err
}

func (f *fakeArchiver) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestScheduler_AddJob(t *testing.T) {
	s := jobs.NewScheduler(zap.NewNop())

	tests := []struct {
		name    string
		expr    string
		wantErr bool
	}{
		{"five fields", "0 2 * * *", false},
		{"with seconds", "0 0 2 * * *", false},
		{"descriptor", "@daily", false},
		{"interval", "@every 1h", false},
		{"invalid", "every day", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.AddJob(tt.name, tt.expr, func() {})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}

	assert.Equal(t, []string{"descriptor", "five fields", "interval", "with seconds"}, s.JobNames())

	t.Run("duplicate name", func(t *testing.T) {
		err := s.AddJob("descriptor", "@hourly", func() {})
		assert.ErrorContains(t, err, "already exists")
	})
}

func TestScheduler_RemoveJob(t *testing.T) {
	s := jobs.NewScheduler(zap.NewNop())
	require.NoError(t, s.AddJob("nightly", "@daily", func() {}))

	require.NoError(t, s.RemoveJob("nightly"))
	assert.Empty(t, s.JobNames())
	assert.ErrorContains(t, s.RemoveJob("nightly"), "not found")
}

func TestScheduler_RunsJobs(t *testing.T) {
	s := jobs.NewScheduler(zap.NewNop())
	ran := make(chan struct{}, 1)
	require.NoError(t, s.AddJob("tick", "@every 1s", func() {
		select {
		case ran <- struct{}{}:
		default:
		}
	}))

	s.Start()
	defer func() { <-s.Stop().Done() }()

	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatal("job did not run")
	}
}

func TestArchiveJob_Run(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	archiver := &fakeArchiver{archived: 3, failed: 1}
	statuses := []domain.ProjectStatus{domain.ProjectStatusApproved}

	jobs.NewArchiveJob(archiver, statuses, zap.New(core), time.Minute).Run()

	assert.Equal(t, 1, archiver.callCount())
	assert.Equal(t, statuses, archiver.statuses)

	done := logs.FilterMessage("report archive job completed").All()
	require.Len(t, done, 1)
	assert.Equal(t, int64(3), done[0].ContextMap()["archived"])
	assert.Equal(t, int64(1), done[0].ContextMap()["failed"])
}

func TestArchiveJob_RunLogsFailure(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	archiver := &fakeArchiver{err: errors.New("database unavailable")}

	jobs.NewArchiveJob(archiver, nil, zap.New(core), time.Minute).Run()

	assert.Equal(t, 1, logs.FilterMessage("report archive job failed").Len())
	assert.Equal(t, 0, logs.FilterMessage("report archive job completed").Len())
}

func TestRegisterArchiveJob(t *testing.T) {
	s := jobs.NewScheduler(zap.NewNop())
	archiver := &fakeArchiver{}

	err := jobs.RegisterArchiveJob(s, archiver, nil, zap.NewNop(), "@daily", time.Minute, true)
	require.NoError(t, err)
	assert.Equal(t, []string{jobs.ArchiveJobName}, s.JobNames())

	assert.Eventually(t, func() bool { return archiver.callCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	err = jobs.RegisterArchiveJob(s, archiver, nil, zap.NewNop(), "@daily", time.Minute, false)
	assert.Error(t, err)
}
