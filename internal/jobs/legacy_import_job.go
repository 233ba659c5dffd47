package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// LegacyImportJobName is the name of the legacy ERP import job
const LegacyImportJobName = "legacy_import"

// LegacyImporter pulls historical ATOs from the legacy ERP into the
// platform. Implemented by service.LegacyImportService.
type LegacyImporter interface {
	ImportAll(ctx context.Context) (imported int, failed int, err error)
}

// LegacyImportJob periodically re-runs the legacy ERP import so contracts
// migrated after go-live pick up their history without manual intervention.
// The importer itself is idempotent, so overlapping data is harmless.
type LegacyImportJob struct {
	importer LegacyImporter
	logger   *zap.Logger
	timeout  time.Duration
}

// NewLegacyImportJob creates a new legacy import job.
func NewLegacyImportJob(importer LegacyImporter, logger *zap.Logger, timeout time.Duration) *LegacyImportJob {
	return &LegacyImportJob{
		importer: importer,
		logger:   logger,
		timeout:  timeout,
	}
}

// Run executes one import pass. Called by the scheduler per the cron expression.
func (j *LegacyImportJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()

	imported, failed, err := j.importer.ImportAll(ctx)
	if err != nil {
		j.logger.Error("legacy ERP import failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return
	}

	j.logger.Info("legacy ERP import completed",
		zap.Int("imported", imported),
		zap.Int("failed", failed),
		zap.Duration("duration", time.Since(start)))
}

// RegisterLegacyImportJob registers the legacy ERP import with the scheduler.
// If runOnStartup is true an import pass also runs immediately in a
// background goroutine so it doesn't block API startup.
func RegisterLegacyImportJob(scheduler *Scheduler, importer LegacyImporter, logger *zap.Logger, cronExpr string, timeout time.Duration, runOnStartup bool) error {
	job := NewLegacyImportJob(importer, logger, timeout)

	if runOnStartup {
		go job.Run()
	}

	return scheduler.AddJob(LegacyImportJobName, cronExpr, job.Run)
}
