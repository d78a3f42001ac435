// Package validation enforces the format and allow-list rules for incoming
// price payloads.
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"pricing_gateway/platform/validator"

	playground "github.com/go-playground/validator/v10"
)

// AllowedCurrencies lists the currency codes accepted on write.
var AllowedCurrencies = []string{"USD", "EUR", "GBP"}

// pricePattern accepts digits with optional comma thousands groups and up to
// two decimal places, e.g. "22.99" or "1,234.5".
var pricePattern = regexp.MustCompile(`^\d+(,\d{3})*(\.\d{1,2})?$`)

const (
	tagPriceAmount = "price_amount"

	keyCurrentPrice = "current_price"
	keyValue        = "value"
	keyCurrencyCode = "currency_code"
)

// Reason identifies which rule rejected a payload.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonMalformed
	ReasonMissingPrice
	ReasonMissingValue
	ReasonBadValue
	ReasonMissingCurrency
	ReasonBadCurrency
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonMalformed:
		return "malformed_payload"
	case ReasonMissingPrice:
		return "missing_current_price"
	case ReasonMissingValue:
		return "missing_value"
	case ReasonBadValue:
		return "invalid_value"
	case ReasonMissingCurrency:
		return "missing_currency_code"
	case ReasonBadCurrency:
		return "unsupported_currency_code"
	default:
		return fmt.Sprintf("reason(%d)", int(r))
	}
}

// Price is a validated price ready to persist.
type Price struct {
	Value        string
	CurrencyCode string
}

// Result is the outcome of validating a payload. Reason is set whenever
// Valid is false; Price is set only when Valid is true.
type Result struct {
	Valid  bool
	Reason Reason
	Price  Price
}

func invalid(r Reason) Result { return Result{Reason: r} }

// Validator checks price update payloads.
type Validator struct {
	val *validator.Validator
}

// New registers the price rules on val and returns a payload validator.
func New(val *validator.Validator) (*Validator, error) {
	if err := val.RegisterValidation(tagPriceAmount, validPriceAmount); err != nil {
		return nil, fmt.Errorf("register %s validation: %w", tagPriceAmount, err)
	}
	return &Validator{val: val}, nil
}

type updateRequest struct {
	CurrentPrice *priceInput `json:"current_price" validate:"required"`
}

type priceInput struct {
	Value        *amountText `json:"value" validate:"required,price_amount"`
	CurrencyCode *string     `json:"currency_code" validate:"required,oneof=USD EUR GBP"`
}

// amountText keeps the literal text of a JSON string or number so numeric
// payloads such as 22.21 are checked against the same pattern as "22.21".
type amountText string

func (a *amountText) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = amountText(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return errors.New("price value must be a string or number")
	}
	*a = amountText(n.String())
	return nil
}

func validPriceAmount(fl playground.FieldLevel) bool {
	return pricePattern.MatchString(fl.Field().String())
}

// Validate checks payload, the raw request body. Any violation produces a
// single invalid result tagged with the first failing rule.
func (v *Validator) Validate(payload []byte) Result {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return invalid(ReasonMalformed)
	}

	req, err := decodeRequest(trimmed)
	if err != nil {
		return invalid(ReasonMalformed)
	}

	if err := v.val.Struct(req); err != nil {
		return invalid(reasonFor(err))
	}

	return Result{
		Valid:  true,
		Reason: ReasonNone,
		Price: Price{
			Value:        string(*req.CurrentPrice.Value),
			CurrencyCode: *req.CurrentPrice.CurrencyCode,
		},
	}
}

// decodeRequest reads fields by their exact key. encoding/json folds case
// when matching struct fields, so {"CURRENT_PRICE": ...} would otherwise be
// taken for current_price.
func decodeRequest(data []byte) (updateRequest, error) {
	var req updateRequest

	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return req, err
	}
	rawPrice, ok := top[keyCurrentPrice]
	if !ok || isNull(rawPrice) {
		return req, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(rawPrice, &fields); err != nil {
		return req, err
	}

	price := &priceInput{}
	if raw, ok := fields[keyValue]; ok {
		if err := json.Unmarshal(raw, &price.Value); err != nil {
			return req, err
		}
	}
	if raw, ok := fields[keyCurrencyCode]; ok {
		if err := json.Unmarshal(raw, &price.CurrencyCode); err != nil {
			return req, err
		}
	}
	req.CurrentPrice = price
	return req, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func reasonFor(err error) Reason {
	fe, ok := validator.FirstFieldError(err)
	if !ok {
		return ReasonMalformed
	}
	switch fe.Field {
	case keyCurrentPrice:
		return ReasonMissingPrice
	case keyCurrentPrice + "." + keyValue:
		if fe.Tag == "required" {
			return ReasonMissingValue
		}
		return ReasonBadValue
	case keyCurrentPrice + "." + keyCurrencyCode:
		if fe.Tag == "required" {
			return ReasonMissingCurrency
		}
		return ReasonBadCurrency
	default:
		return ReasonMalformed
	}
}
