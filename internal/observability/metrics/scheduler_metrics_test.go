package metrics

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/smallbiznis/agrimarket/internal/authorization"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestClassifySchedulerJobReason(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"deadline", context.DeadlineExceeded, SchedulerJobReasonDeadlineExceeded},
		{"forbidden", authorization.ErrForbidden, SchedulerJobReasonForbidden},
		{"db_lock_timeout", &pgconn.PgError{Code: "55P03"}, SchedulerJobReasonDBLockTimeout},
		{"serialization_failure", fmt.Errorf("tx: %w", &pgconn.PgError{Code: "40001"}), SchedulerJobReasonSerializationFailure},
		{"unique_violation", gorm.ErrDuplicatedKey, SchedulerJobReasonUniqueViolation},
		{"other_pg", &pgconn.PgError{Code: "42P01"}, SchedulerJobReasonDB},
		{"unknown", errors.New("boom"), SchedulerJobReasonUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifySchedulerJobReason(tc.err))
		})
	}
}

func TestSchedulerCounters(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := newSchedulerMetrics(registry, Config{ServiceName: "agrimarket", Environment: "test"})

	m.AddBatchProcessed("reconcile_bulk_purchases", "bulk_purchases", 3)
	m.AddViolations("bulk_purchase_quantity", 2)
	m.AddViolations("bulk_purchase_quantity", 0)
	m.IncJobError("reconcile_bulk_purchases", context.DeadlineExceeded)

	assert.Equal(t, float64(3), testutil.ToFloat64(m.batchProcessed.WithLabelValues("reconcile_bulk_purchases", "bulk_purchases")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.violations.WithLabelValues("bulk_purchase_quantity")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.jobErrors.WithLabelValues("reconcile_bulk_purchases", SchedulerJobReasonDeadlineExceeded)))
}
