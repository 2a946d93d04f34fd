package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// AverageScale is the number of decimal places kept for the average.
const AverageScale = 2

type Summary struct {
	TotalPaid             decimal.Decimal `json:"total_paid"`
	TotalPending          decimal.Decimal `json:"total_pending"`
	TransactionCount      int             `json:"transaction_count"`
	AveragePerTransaction decimal.Decimal `json:"average_per_transaction"`
}

// Summarize totals paid and pending amounts. Every record counts towards the
// transaction count, failed ones included, while the average only spreads
// paid plus pending over that count.
func Summarize(records []PaymentDistribution) Summary {
	summary := Summary{
		TotalPaid:             decimal.Zero,
		TotalPending:          decimal.Zero,
		AveragePerTransaction: decimal.Zero,
	}
	for _, record := range records {
		switch record.PaymentStatus {
		case PaymentPaid:
			summary.TotalPaid = summary.TotalPaid.Add(record.PaymentAmount)
		case PaymentPending:
			summary.TotalPending = summary.TotalPending.Add(record.PaymentAmount)
		}
		summary.TransactionCount++
	}
	if summary.TransactionCount == 0 {
		return summary
	}

	total := summary.TotalPaid.Add(summary.TotalPending)
	summary.AveragePerTransaction = total.DivRound(decimal.NewFromInt(int64(summary.TransactionCount)), AverageScale)
	return summary
}

// SortNewestFirst orders records by creation time descending with the id as
// tie breaker. The input slice is not modified.
func SortNewestFirst(records []JoinedDistribution) []JoinedDistribution {
	out := make([]JoinedDistribution, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
	return out
}

// Distributions strips the join data.
func Distributions(records []JoinedDistribution) []PaymentDistribution {
	out := make([]PaymentDistribution, 0, len(records))
	for _, record := range records {
		out = append(out, record.PaymentDistribution)
	}
	return out
}
