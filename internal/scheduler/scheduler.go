package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	bulkdomain "github.com/smallbiznis/agrimarket/internal/bulkpurchase/domain"
	"github.com/smallbiznis/agrimarket/internal/clock"
	obsmetrics "github.com/smallbiznis/agrimarket/internal/observability/metrics"
	"github.com/smallbiznis/agrimarket/internal/ratelimit"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	JobReconcileBulkPurchases = "reconcile_bulk_purchases"

	checkBulkPurchaseQty = "bulk_purchase_quantity"
)

var ErrInvalidConfig = errors.New("scheduler: invalid configuration")

// Leases serializes a job across replicas.
type Leases interface {
	Acquire(ctx context.Context, job string, ttl time.Duration) (func(context.Context) error, bool, error)
}

type Params struct {
	fx.In

	Log           *zap.Logger
	GenID         *snowflake.Node
	Clock         clock.Clock
	BulkPurchases bulkdomain.Service
	Leases        *ratelimit.JobLeases `optional:"true"`
	Config        Config               `optional:"true"`
}

type Scheduler struct {
	log           *zap.Logger
	cfg           Config
	genID         *snowflake.Node
	clock         clock.Clock
	bulkPurchases bulkdomain.Service
	leases        Leases
}

func New(p Params) (*Scheduler, error) {
	if p.Log == nil || p.GenID == nil || p.Clock == nil || p.BulkPurchases == nil {
		return nil, ErrInvalidConfig
	}
	s := &Scheduler{
		log:           p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:           p.Config.withDefaults(),
		genID:         p.GenID,
		clock:         p.Clock,
		bulkPurchases: p.BulkPurchases,
	}
	if p.Leases != nil {
		s.leases = p.Leases
	}
	return s, nil
}

func (s *Scheduler) runJob(
	parent context.Context,
	name string,
	batchSize int,
	timeout time.Duration,
	fn func(ctx context.Context) error,
) error {
	start := s.clock.Now()
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	schedMetrics := obsmetrics.Scheduler()

	if s.leases != nil {
		release, acquired, err := s.leases.Acquire(ctx, name, s.cfg.LockTTL)
		if err != nil {
			schedMetrics.IncJobError(name, err)
			return fmt.Errorf("%s: acquire lock: %w", name, err)
		}
		if !acquired {
			schedMetrics.IncJobSkipped(name, obsmetrics.SchedulerSkipReasonLockHeld)
			s.log.Debug("job skipped, lock held elsewhere", zap.String("job", name))
			return nil
		}
		defer func() {
			if err := release(context.Background()); err != nil {
				s.log.Warn("release job lock", zap.String("job", name), zap.Error(err))
			}
		}()
	}

	ctx, run := s.startJobRun(ctx, name, batchSize)
	s.logJobStart(ctx, run)
	log := s.logger(ctx).With(
		zap.String("job", name),
		zap.String("run_id", run.runID),
	)
	schedMetrics.IncJobRun(name)

	err := fn(ctx)
	schedMetrics.ObserveJobDuration(name, s.clock.Now().Sub(start))
	if err != nil && run.errorCount == 0 {
		run.IncError()
	}
	s.logJobFinish(ctx, run)
	if err == nil {
		return nil
	}

	isTimeout := errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
	if isTimeout {
		schedMetrics.IncJobTimeout(name)
	}
	schedMetrics.IncJobError(name, err)
	if isTimeout {
		log.Warn("job timed out",
			zap.Duration("timeout", timeout),
			zap.Error(err),
		)
		return nil
	}

	return fmt.Errorf("%s: %w", name, err)
}

func (s *Scheduler) RunOnce(parent context.Context) error {
	var err error

	jobs := []struct {
		Name    string
		Enabled bool
		Run     func(context.Context) error
	}{
		{JobReconcileBulkPurchases, s.isJobEnabled(JobReconcileBulkPurchases), func(ctx context.Context) error {
			return s.runJob(ctx, JobReconcileBulkPurchases, s.cfg.BatchSize, s.cfg.JobTimeout, s.ReconcileBulkPurchasesJob)
		}},
	}

	for _, job := range jobs {
		if job.Enabled {
			err = errors.Join(err, job.Run(parent))
		}
	}
	return err
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()
	nextRun := s.clock.Now().Add(s.cfg.RunInterval)
	schedMetrics := obsmetrics.Scheduler()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if runLag := s.clock.Now().Sub(nextRun); runLag > 0 {
			schedMetrics.ObserveRunLoopLag(runLag)
		}
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}
		nextRun = nextRun.Add(s.cfg.RunInterval)
	}
}

func (s *Scheduler) isJobEnabled(jobName string) bool {
	if len(s.cfg.EnabledJobs) == 0 {
		return true
	}
	for _, enabled := range s.cfg.EnabledJobs {
		if strings.EqualFold(enabled, jobName) {
			return true
		}
	}
	return false
}

// ReconcileBulkPurchasesJob re-sums distribution quantities of recent bulk
// purchases and counts every purchase that no longer matches its total.
func (s *Scheduler) ReconcileBulkPurchasesJob(ctx context.Context) error {
	run := jobRunFromContext(ctx)
	since := s.clock.Now().Add(-s.cfg.Lookback)

	result, err := s.bulkPurchases.Reconcile(ctx, since, s.cfg.BatchSize)
	if err != nil {
		s.logSchedulerError(ctx, run, "reconcile bulk purchases failed", JobReconcileBulkPurchases, err)
		return err
	}

	run.AddProcessed(result.Checked)
	schedMetrics := obsmetrics.Scheduler()
	schedMetrics.AddBatchProcessed(JobReconcileBulkPurchases, "bulk_purchase", result.Checked)
	schedMetrics.AddViolations(checkBulkPurchaseQty, len(result.Violations))

	for _, violation := range result.Violations {
		s.logger(ctx).Error("consistency.violation",
			zap.String("check", checkBulkPurchaseQty),
			zap.String("bulk_purchase_id", violation.BulkPurchaseID.String()),
			zap.String("total_quantity_tons", violation.TotalQuantityTons),
			zap.String("distributed_quantity_tons", violation.Distributed),
		)
	}
	return nil
}
