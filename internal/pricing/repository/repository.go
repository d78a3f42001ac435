// Package repository stores product price records in MongoDB.
package repository

import (
	"context"
	"strconv"

	"pricing_gateway/platform/apperr"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	fieldProductID    = "product_id"
	fieldValue        = "value"
	fieldCurrencyCode = "currency_code"
)

// CollectionProvider hands out a handle on a live price collection.
type CollectionProvider interface {
	Collection(ctx context.Context) (*mongo.Collection, error)
}

// Repo is the MongoDB implementation of Repository.
type Repo struct {
	store CollectionProvider
}

// New creates a repository backed by store.
func New(store CollectionProvider) *Repo {
	return &Repo{store: store}
}

type priceDocument struct {
	Value        bson.RawValue `bson:"value"`
	CurrencyCode string        `bson:"currency_code"`
}

// FindByProductID looks up the single price record keyed by productID.
func (r *Repo) FindByProductID(ctx context.Context, productID int64) (*PriceRecord, error) {
	coll, err := r.store.Collection(ctx)
	if err != nil {
		return nil, apperr.Store("acquire price collection", err).WithOp("pricing.FindByProductID")
	}

	var doc priceDocument
	err = coll.FindOne(ctx, bson.M{fieldProductID: productID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Store("find price record", errors.Wrapf(err, "product %d", productID)).WithOp("pricing.FindByProductID")
	}

	value, err := amountString(doc.Value)
	if err != nil {
		return nil, apperr.Store("decode price value", errors.Wrapf(err, "product %d", productID)).WithOp("pricing.FindByProductID")
	}

	return &PriceRecord{
		ProductID:    productID,
		Value:        value,
		CurrencyCode: doc.CurrencyCode,
	}, nil
}

// UpdatePrice applies $set to the existing record; upsert is disabled so an
// unknown product is reported as unmatched rather than created.
func (r *Repo) UpdatePrice(ctx context.Context, productID int64, value, currencyCode string) (UpdateOutcome, error) {
	coll, err := r.store.Collection(ctx)
	if err != nil {
		return UpdateOutcome{}, apperr.Store("acquire price collection", err).WithOp("pricing.UpdatePrice")
	}

	update := bson.M{"$set": bson.M{
		fieldValue:        value,
		fieldCurrencyCode: currencyCode,
	}}
	opts := options.FindOneAndUpdate().
		SetUpsert(false).
		SetReturnDocument(options.After)

	err = coll.FindOneAndUpdate(ctx, bson.M{fieldProductID: productID}, update, opts).Err()
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return UpdateOutcome{Matched: false, Acknowledged: true}, nil
	case errors.Is(err, mongo.ErrUnacknowledgedWrite):
		return UpdateOutcome{Matched: true, Acknowledged: false}, nil
	case err != nil:
		return UpdateOutcome{}, apperr.Store("update price record", errors.Wrapf(err, "product %d", productID)).WithOp("pricing.UpdatePrice")
	}

	return UpdateOutcome{Matched: true, Acknowledged: true}, nil
}

// amountString renders a stored value as a decimal string. Values written by
// this service are strings already; numeric values come from records
// created out-of-band.
func amountString(v bson.RawValue) (string, error) {
	if s, ok := v.StringValueOK(); ok {
		return s, nil
	}
	if f, ok := v.DoubleOK(); ok {
		return decimal.NewFromFloat(f).String(), nil
	}
	if i, ok := v.Int32OK(); ok {
		return strconv.FormatInt(int64(i), 10), nil
	}
	if i, ok := v.Int64OK(); ok {
		return strconv.FormatInt(i, 10), nil
	}
	if d, ok := v.Decimal128OK(); ok {
		parsed, err := decimal.NewFromString(d.String())
		if err != nil {
			return "", err
		}
		return parsed.String(), nil
	}
	if len(v.Value) == 0 || v.IsZero() {
		return "", nil
	}
	return "", errors.Errorf("unsupported price value type %s", v.Type)
}

var _ Repository = (*Repo)(nil)
