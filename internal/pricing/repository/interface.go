package repository

import "context"

// PriceRecord is the stored current price of a product.
type PriceRecord struct {
	ProductID    int64
	Value        string
	CurrencyCode string
}

// UpdateOutcome describes how the store handled an update-in-place.
type UpdateOutcome struct {
	// Matched is false when no record exists for the product.
	Matched bool
	// Acknowledged is false when the store did not confirm the write.
	Acknowledged bool
}

// Repository defines price record storage operations. Records are created
// out-of-band; this interface never inserts or deletes.
type Repository interface {
	// FindByProductID returns nil and no error when the product has no price.
	FindByProductID(ctx context.Context, productID int64) (*PriceRecord, error)
	// UpdatePrice sets value and currency on an existing record only.
	UpdatePrice(ctx context.Context, productID int64, value, currencyCode string) (UpdateOutcome, error)
}
