package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// SweepJobName is the name of the daily maintenance sweep job
const SweepJobName = "daily_sweep"

// DefaultResponseOverdueAge is how long a sent amendment may wait for a
// client response before the creator is nudged.
const DefaultResponseOverdueAge = 15 * 24 * time.Hour

// QuotationExpirer marks sent quotations past their expiration date as
// expired. Implemented by service.QuotationService.
type QuotationExpirer interface {
	ExpireOverdue(ctx context.Context) (int64, error)
}

// OverdueNotifier notifies creators of amendments awaiting a client response
// longer than the given age. Implemented by service.AmendmentLifecycleService.
type OverdueNotifier interface {
	NotifyOverdueResponses(ctx context.Context, olderThan time.Duration) (int, error)
}

// AuditCleaner prunes audit log entries past the retention window.
// Implemented by service.AuditLogService.
type AuditCleaner interface {
	CleanupOldLogs(ctx context.Context, retentionDays int) (int64, error)
}

// DefaultAuditRetentionDays keeps two years of audit history.
const DefaultAuditRetentionDays = 730

// SweepJob runs the daily housekeeping: quotation expiry, overdue
// client-response reminders and audit log retention. No sweep blocks
// the others.
type SweepJob struct {
	quotations QuotationExpirer
	amendments OverdueNotifier
	audit      AuditCleaner
	overdueAge time.Duration
	logger     *zap.Logger
	timeout    time.Duration
}

// NewSweepJob creates the daily sweep job. The timeout bounds a single run.
// The audit cleaner is optional.
func NewSweepJob(quotations QuotationExpirer, amendments OverdueNotifier, audit AuditCleaner, overdueAge time.Duration, logger *zap.Logger, timeout time.Duration) *SweepJob {
	if overdueAge <= 0 {
		overdueAge = DefaultResponseOverdueAge
	}
	return &SweepJob{
		quotations: quotations,
		amendments: amendments,
		audit:      audit,
		overdueAge: overdueAge,
		logger:     logger,
		timeout:    timeout,
	}
}

// Run executes the sweep. Called by the scheduler per the cron expression.
func (j *SweepJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()

	expired, err := j.quotations.ExpireOverdue(ctx)
	if err != nil {
		j.logger.Error("quotation expiry sweep failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		// Continue with the overdue-response sweep
	}

	var notified int
	if j.amendments != nil {
		notified, err = j.amendments.NotifyOverdueResponses(ctx, j.overdueAge)
		if err != nil {
			j.logger.Error("overdue response sweep failed",
				zap.Error(err),
				zap.Duration("duration", time.Since(start)))
		}
	}

	var pruned int64
	if j.audit != nil {
		pruned, err = j.audit.CleanupOldLogs(ctx, DefaultAuditRetentionDays)
		if err != nil {
			j.logger.Error("audit retention sweep failed",
				zap.Error(err),
				zap.Duration("duration", time.Since(start)))
		}
	}

	j.logger.Info("daily sweep completed",
		zap.Int64("quotations_expired", expired),
		zap.Int("overdue_notified", notified),
		zap.Int64("audit_entries_pruned", pruned),
		zap.Duration("duration", time.Since(start)))
}

// RegisterSweepJob registers the daily sweep with the scheduler.
// If runOnStartup is true the sweep also runs once immediately in a
// background goroutine, so restarts never leave expired quotations behind.
func RegisterSweepJob(scheduler *Scheduler, quotations QuotationExpirer, amendments OverdueNotifier, audit AuditCleaner, overdueAge time.Duration, logger *zap.Logger, cronExpr string, timeout time.Duration, runOnStartup bool) error {
	job := NewSweepJob(quotations, amendments, audit, overdueAge, logger, timeout)

	if runOnStartup {
		go job.Run()
	}

	return scheduler.AddJob(SweepJobName, cronExpr, job.Run)
}
