package service

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	bulkdomain "github.com/smallbiznis/agrimarket/internal/bulkpurchase/domain"
	listingdomain "github.com/smallbiznis/agrimarket/internal/listing/domain"
	"github.com/smallbiznis/agrimarket/internal/payment/domain"
	"gorm.io/gorm"
)

const (
	reasonListingMissing     = "listing_missing"
	reasonListingFetchFailed = "listing_fetch_failed"
	reasonPurchaseMissing    = "purchase_missing"
	reasonPurchaseFetchError = "purchase_fetch_failed"
)

var (
	errListingMissing  = errors.New("listing not found")
	errPurchaseMissing = errors.New("bulk purchase not found")
)

type lookup[T any] struct {
	value *T
	err   error
}

// joiner resolves the listing and purchase of each distribution one at a
// time and remembers the outcome, failures included, for the rest of the
// request.
type joiner struct {
	db           *gorm.DB
	listingRepo  listingdomain.Repository
	purchaseRepo bulkdomain.Repository
	listings     map[snowflake.ID]lookup[listingdomain.CropResidueListing]
	purchases    map[snowflake.ID]lookup[bulkdomain.BulkPurchase]
}

func newJoiner(db *gorm.DB, listingRepo listingdomain.Repository, purchaseRepo bulkdomain.Repository) *joiner {
	return &joiner{
		db:           db,
		listingRepo:  listingRepo,
		purchaseRepo: purchaseRepo,
		listings:     map[snowflake.ID]lookup[listingdomain.CropResidueListing]{},
		purchases:    map[snowflake.ID]lookup[bulkdomain.BulkPurchase]{},
	}
}

// join returns the exclusion reason alongside any error.
func (j *joiner) join(ctx context.Context, row domain.PaymentDistribution) (domain.JoinedDistribution, string, error) {
	listing, ok := j.listings[row.ListingID]
	if !ok {
		listing.value, listing.err = j.listingRepo.FindByID(ctx, j.db, row.ListingID)
		j.listings[row.ListingID] = listing
	}
	if listing.err != nil {
		return domain.JoinedDistribution{}, reasonListingFetchFailed, listing.err
	}
	if listing.value == nil {
		return domain.JoinedDistribution{}, reasonListingMissing, errListingMissing
	}

	purchase, ok := j.purchases[row.BulkPurchaseID]
	if !ok {
		purchase.value, purchase.err = j.purchaseRepo.FindByID(ctx, j.db, row.BulkPurchaseID)
		j.purchases[row.BulkPurchaseID] = purchase
	}
	if purchase.err != nil {
		return domain.JoinedDistribution{}, reasonPurchaseFetchError, purchase.err
	}
	if purchase.value == nil {
		return domain.JoinedDistribution{}, reasonPurchaseMissing, errPurchaseMissing
	}

	return domain.JoinedDistribution{
		PaymentDistribution: row,
		Listing: domain.ListingSummary{
			ID:       listing.value.ID,
			CropType: string(listing.value.CropType),
			Status:   string(listing.value.Status),
		},
		Purchase: domain.PurchaseSummary{
			ID:        purchase.value.ID,
			Reference: purchase.value.Reference,
			CreatedAt: purchase.value.CreatedAt,
		},
	}, "", nil
}
