package service

import (
	"context"
	"crypto/subtle"
	"fmt"

	catalogtransport "pricing_gateway/internal/catalog/transport"
	"pricing_gateway/internal/events"
	"pricing_gateway/internal/pricing/repository"
	"pricing_gateway/internal/pricing/validation"
	"pricing_gateway/internal/products/transport"
	"pricing_gateway/platform/apperr"
	"pricing_gateway/platform/config"
	"pricing_gateway/platform/logger"
	"pricing_gateway/platform/metrics"
)

// JSONContentType is the only content type accepted on price updates.
// Parameters such as "; charset=utf-8" are rejected.
const JSONContentType = "application/json"

// Update outcomes reported to the metrics recorder.
const (
	OutcomeUpdated        = "updated"
	OutcomeMediaType      = "unsupported_media_type"
	OutcomeUnauthorized   = "unauthorized"
	OutcomeInvalid        = "invalid"
	OutcomeNotFound       = "not_found"
	OutcomeUnacknowledged = "unacknowledged"
	OutcomeError          = "error"
)

// CatalogReader fetches product metadata from the upstream catalog.
type CatalogReader interface {
	FetchProduct(ctx context.Context, id int64) (catalogtransport.ProductDetail, error)
}

// Service aggregates catalog and price data and applies price updates.
type Service struct {
	catalog   CatalogReader
	prices    repository.Repository
	validator *validation.Validator
	eventBus  events.Publisher
	apiKey    string
	metrics   metrics.Recorder
	log       *logger.Logger
}

// New creates a products service. An empty API key in auth enables open
// writes.
func New(
	catalog CatalogReader,
	prices repository.Repository,
	val *validation.Validator,
	eventBus events.Publisher,
	auth config.PricingAuthConfig,
	rec metrics.Recorder,
	log *logger.Logger,
) *Service {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &Service{
		catalog:   catalog,
		prices:    prices,
		validator: val,
		eventBus:  eventBus,
		apiKey:    auth.GetPricingAPIKey(),
		metrics:   rec,
		log:       log,
	}
}

// GetProduct fetches the product title, then the price record, and merges
// them. There is no partial result: any failure discards both.
func (s *Service) GetProduct(ctx context.Context, id int64) (transport.ProductResponse, error) {
	detail, err := s.catalog.FetchProduct(ctx, id)
	if err != nil {
		return transport.ProductResponse{}, err
	}

	record, err := s.prices.FindByProductID(ctx, id)
	if err != nil {
		return transport.ProductResponse{}, err
	}

	resp := transport.ProductResponse{ID: id, Name: detail.Name}
	if record != nil {
		resp.CurrentPrice = &transport.Price{
			Value:        record.Value,
			CurrencyCode: record.CurrencyCode,
		}
	}
	return resp, nil
}

// UpdatePrice runs the update checks in order: content type, shared secret,
// payload, then the in-place store update. The first failing check decides
// the error kind.
func (s *Service) UpdatePrice(ctx context.Context, req transport.UpdatePriceRequest) error {
	log := s.log.WithContext(ctx)

	if req.ContentType != JSONContentType {
		s.metrics.PriceUpdate(OutcomeMediaType)
		return apperr.UnsupportedMediaType("content type must be application/json")
	}

	if !s.authorized(req.APIKey) {
		s.metrics.PriceUpdate(OutcomeUnauthorized)
		reason := "invalid api key"
		if req.APIKey == "" {
			reason = "missing api key"
		}
		log.AuthRejected(req.ClientIP, fmt.Sprintf("/products/%d", req.ProductID), reason)
		return apperr.Unauthorized(reason)
	}

	result := s.validator.Validate(req.Body)
	if !result.Valid {
		s.metrics.PriceUpdate(OutcomeInvalid)
		log.Debug("price payload rejected", "productId", req.ProductID, "reason", result.Reason.String())
		return apperr.Validation("invalid price payload").WithDetails(result.Reason.String())
	}

	outcome, err := s.prices.UpdatePrice(ctx, req.ProductID, result.Price.Value, result.Price.CurrencyCode)
	if err != nil {
		s.metrics.PriceUpdate(OutcomeError)
		return err
	}
	if !outcome.Matched {
		s.metrics.PriceUpdate(OutcomeNotFound)
		return apperr.NotFound("no price record for product")
	}
	if !outcome.Acknowledged {
		s.metrics.PriceUpdate(OutcomeUnacknowledged)
		return apperr.Store("price update not acknowledged", nil).WithOp("products.UpdatePrice")
	}

	s.metrics.PriceUpdate(OutcomeUpdated)
	if s.eventBus != nil {
		requestID, _ := ctx.Value(logger.RequestIDKey).(string)
		s.eventBus.Publish(ctx, events.PriceUpdated{
			Envelope:     events.NewEnvelope(),
			ProductID:    req.ProductID,
			Value:        result.Price.Value,
			CurrencyCode: result.Price.CurrencyCode,
			RequestID:    requestID,
		})
	}
	return nil
}

func (s *Service) authorized(presented string) bool {
	if s.apiKey == "" {
		return true
	}
	if presented == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(presented), []byte(s.apiKey)) == 1
}
