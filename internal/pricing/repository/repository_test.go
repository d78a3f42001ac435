package repository

import (
	"context"
	"errors"
	"testing"

	"pricing_gateway/platform/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

type staticCollection struct {
	coll *mongo.Collection
	err  error
}

func (s staticCollection) Collection(ctx context.Context) (*mongo.Collection, error) {
	return s.coll, s.err
}

func ns(mt *mtest.T) string {
	return mt.Coll.Database().Name() + "." + mt.Coll.Name()
}

func TestFindByProductID(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("string value", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch, bson.D{
			{Key: "product_id", Value: int64(123)},
			{Key: "value", Value: "22.99"},
			{Key: "currency_code", Value: "USD"},
		}))

		rec, err := New(staticCollection{coll: mt.Coll}).FindByProductID(context.Background(), 123)
		require.NoError(mt, err)
		require.NotNil(mt, rec)
		assert.Equal(mt, PriceRecord{ProductID: 123, Value: "22.99", CurrencyCode: "USD"}, *rec)
	})

	mt.Run("numeric value", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch, bson.D{
			{Key: "product_id", Value: int32(123)},
			{Key: "value", Value: 22.99},
			{Key: "currency_code", Value: "EUR"},
		}))

		rec, err := New(staticCollection{coll: mt.Coll}).FindByProductID(context.Background(), 123)
		require.NoError(mt, err)
		require.NotNil(mt, rec)
		assert.Equal(mt, "22.99", rec.Value)
		assert.Equal(mt, "EUR", rec.CurrencyCode)
	})

	mt.Run("no record", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch))

		rec, err := New(staticCollection{coll: mt.Coll}).FindByProductID(context.Background(), 123)
		require.NoError(mt, err)
		assert.Nil(mt, rec)
	})

	mt.Run("command error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code: 2, Name: "BadValue", Message: "boom",
		}))

		_, err := New(staticCollection{coll: mt.Coll}).FindByProductID(context.Background(), 123)
		require.Error(mt, err)
		assert.Equal(mt, apperr.KindStore, apperr.GetKind(err))
	})
}

func TestFindByProductIDConnectionFailure(t *testing.T) {
	sentinel := errors.New("server selection timeout")
	_, err := New(staticCollection{err: sentinel}).FindByProductID(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, apperr.KindStore, apperr.GetKind(err))
	assert.ErrorIs(t, err, sentinel)
}

func TestUpdatePrice(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("existing record", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
			{Key: "product_id", Value: int64(123)},
			{Key: "value", Value: "10.50"},
			{Key: "currency_code", Value: "GBP"},
		}}))

		out, err := New(staticCollection{coll: mt.Coll}).UpdatePrice(context.Background(), 123, "10.50", "GBP")
		require.NoError(mt, err)
		assert.Equal(mt, UpdateOutcome{Matched: true, Acknowledged: true}, out)

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		assert.Equal(mt, "findAndModify", started.CommandName)
		upsert, err := started.Command.LookupErr("upsert")
		if err == nil {
			assert.False(mt, upsert.Boolean(), "update must never upsert")
		}
	})

	mt.Run("unknown product", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		out, err := New(staticCollection{coll: mt.Coll}).UpdatePrice(context.Background(), 404, "1.00", "USD")
		require.NoError(mt, err)
		assert.False(mt, out.Matched)
	})

	mt.Run("write error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code: 11600, Name: "InterruptedAtShutdown", Message: "shutting down",
		}))

		_, err := New(staticCollection{coll: mt.Coll}).UpdatePrice(context.Background(), 123, "1.00", "USD")
		require.Error(mt, err)
		assert.Equal(mt, apperr.KindStore, apperr.GetKind(err))
	})
}

func TestAmountString(t *testing.T) {
	d128, err := primitive.ParseDecimal128("1234.50")
	require.NoError(t, err)

	cases := []struct {
		name string
		in   interface{}
		want string
	}{
		{"string", "1,234.5", "1,234.5"},
		{"double", 22.99, "22.99"},
		{"int32", int32(7), "7"},
		{"int64", int64(1500), "1500"},
		{"decimal128", d128, "1234.5"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			raw := rawValue(t, tc.in)
			got, err := amountString(raw)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	got, err := amountString(bson.RawValue{})
	require.NoError(t, err)
	assert.Equal(t, "", got)

	_, err = amountString(rawValue(t, true))
	assert.Error(t, err)
}

func rawValue(t *testing.T, v interface{}) bson.RawValue {
	t.Helper()
	doc, err := bson.Marshal(bson.D{{Key: "v", Value: v}})
	require.NoError(t, err)
	return bson.Raw(doc).Lookup("v")
}
