package jobs

import (
	"context"
	"time"

	"github.com/straye-as/estimator/internal/domain"
	"go.uber.org/zap"
)

// ArchiveJobName is the name of the report archive job
const ArchiveJobName = "report_archive"

// ReportArchiver archives the reports of the latest versions in the given statuses
type ReportArchiver interface {
	ArchiveLatest(ctx context.Context, statuses []domain.ProjectStatus) (archived int, failed int, err error)
}

// ArchiveJob refreshes the archived reports of the latest project versions
type ArchiveJob struct {
	archiver ReportArchiver
	statuses []domain.ProjectStatus
	logger   *zap.Logger
	timeout  time.Duration
}

// NewArchiveJob creates a new archive job.
// The timeout bounds a single run.
func NewArchiveJob(archiver ReportArchiver, statuses []domain.ProjectStatus, logger *zap.Logger, timeout time.Duration) *ArchiveJob {
	return &ArchiveJob{
		archiver: archiver,
		statuses: statuses,
		logger:   logger,
		timeout:  timeout,
	}
}

// Run archives every matching version once. Called by the scheduler.
func (j *ArchiveJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	statuses := make([]string, len(j.statuses))
	for i, s := range j.statuses {
		statuses[i] = string(s)
	}
	j.logger.Info("starting report archive job", zap.Strings("statuses", statuses))

	archived, failed, err := j.archiver.ArchiveLatest(ctx, j.statuses)
	if err != nil {
		j.logger.Error("report archive job failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return
	}

	j.logger.Info("report archive job completed",
		zap.Int("archived", archived),
		zap.Int("failed", failed),
		zap.Duration("duration", time.Since(start)))
}

// RegisterArchiveJob registers the archive job with the scheduler. When runNow is
// set the job also runs once immediately in the background.
func RegisterArchiveJob(scheduler *Scheduler, archiver ReportArchiver, statuses []domain.ProjectStatus, logger *zap.Logger, cronExpr string, timeout time.Duration, runNow bool) error {
	job := NewArchiveJob(archiver, statuses, logger, timeout)

	if err := scheduler.AddJob(ArchiveJobName, cronExpr, job.Run); err != nil {
		return err
	}
	if runNow {
		go job.Run()
	}
	return nil
}
