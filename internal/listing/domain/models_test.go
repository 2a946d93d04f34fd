package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestListingStateMachine(t *testing.T) {
	assert.True(t, CanTransition(ListingAvailable, ListingSold))
	assert.True(t, CanTransition(ListingAvailable, ListingWithdrawn))
	assert.False(t, CanTransition(ListingAvailable, ListingAvailable))
	assert.False(t, CanTransition(ListingSold, ListingWithdrawn))
	assert.False(t, CanTransition(ListingSold, ListingAvailable))
	assert.False(t, CanTransition(ListingWithdrawn, ListingSold))
}

func TestParseCropType(t *testing.T) {
	crop, ok := ParseCropType(" Paddy_Straw ")
	assert.True(t, ok)
	assert.Equal(t, CropPaddyStraw, crop)

	_, ok = ParseCropType("rice")
	assert.False(t, ok)
}

func TestListingValidate(t *testing.T) {
	valid := CropResidueListing{
		ID:           1,
		FarmerID:     2,
		QuantityTons: decimal.RequireFromString("2.5"),
		PricePerTon:  decimal.RequireFromString("1200"),
		Status:       ListingAvailable,
	}
	assert.NoError(t, valid.Validate())

	zeroQty := valid
	zeroQty.QuantityTons = decimal.Zero
	assert.ErrorIs(t, zeroQty.Validate(), ErrInvalidQuantity)

	negativePrice := valid
	negativePrice.PricePerTon = decimal.NewFromInt(-1)
	assert.ErrorIs(t, negativePrice.Validate(), ErrInvalidPrice)

	unknown := valid
	unknown.Status = "reserved"
	assert.ErrorIs(t, unknown.Validate(), ErrInvalidStatus)
}
