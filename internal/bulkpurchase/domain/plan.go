package domain

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	paymentdomain "github.com/smallbiznis/agrimarket/internal/payment/domain"
)

const (
	// PriceScale is the number of decimal places kept for prices per ton.
	PriceScale = 4
	// QuantityTolerance is the largest accepted gap, in tons, between a
	// purchase total and the sum of its distributions.
	QuantityTolerance = "0.0001"
)

var quantityTolerance = decimal.RequireFromString(QuantityTolerance)

// PlanLine is one listing taken into a purchase.
type PlanLine struct {
	ListingID    snowflake.ID
	FarmerID     snowflake.ID
	QuantityTons decimal.Decimal
	PricePerTon  decimal.Decimal
}

// Amount is the line total at the stored payment scale, so the purchase total
// equals the sum of its distribution amounts.
func (l PlanLine) Amount() decimal.Decimal {
	return paymentdomain.LineAmount(l.QuantityTons, l.PricePerTon)
}

type Plan struct {
	Lines              []PlanLine
	TotalQuantityTons  decimal.Decimal
	TotalAmount        decimal.Decimal
	AveragePricePerTon decimal.Decimal
}

// BuildPlan prices every line, replacing each listing price with the
// negotiated one when given, and derives the purchase totals.
func BuildPlan(lines []PlanLine, negotiated *decimal.Decimal) (Plan, error) {
	if len(lines) == 0 {
		return Plan{}, ErrNoListings
	}
	if negotiated != nil && (!negotiated.IsPositive() || !negotiated.Equal(negotiated.Round(PriceScale))) {
		return Plan{}, ErrInvalidNegotiatedPrice
	}

	plan := Plan{
		Lines:             make([]PlanLine, 0, len(lines)),
		TotalQuantityTons: decimal.Zero,
		TotalAmount:       decimal.Zero,
	}
	for _, line := range lines {
		if !line.QuantityTons.IsPositive() {
			return Plan{}, fmt.Errorf("listing %s: %w", line.ListingID, ErrInvalidQuantity)
		}
		if negotiated != nil {
			line.PricePerTon = *negotiated
		}
		if !line.PricePerTon.IsPositive() {
			return Plan{}, fmt.Errorf("listing %s: %w", line.ListingID, ErrInvalidPrice)
		}
		plan.Lines = append(plan.Lines, line)
		plan.TotalQuantityTons = plan.TotalQuantityTons.Add(line.QuantityTons)
		plan.TotalAmount = plan.TotalAmount.Add(line.Amount())
	}
	plan.AveragePricePerTon = plan.TotalAmount.DivRound(plan.TotalQuantityTons, PriceScale)
	return plan, nil
}

// VerifyQuantity checks that the distributed quantities add up to total.
func VerifyQuantity(total decimal.Decimal, quantities []decimal.Decimal) error {
	sum := decimal.Zero
	for _, q := range quantities {
		sum = sum.Add(q)
	}
	if sum.Sub(total).Abs().GreaterThan(quantityTolerance) {
		return fmt.Errorf("%w: total %s, distributed %s", ErrQuantityMismatch, total.String(), sum.String())
	}
	return nil
}
