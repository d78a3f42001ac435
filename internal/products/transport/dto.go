package transport

// Price is the wire form of a current price.
type Price struct {
	Value        string `json:"value"`
	CurrencyCode string `json:"currency_code"`
}

// ProductResponse merges catalog metadata with the stored price.
// CurrentPrice is omitted when the product has no price record.
type ProductResponse struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	CurrentPrice *Price `json:"current_price,omitempty"`
}

// UpdatePriceRequest carries the parts of a PUT that the update checks
// inspect, in the order they are inspected.
type UpdatePriceRequest struct {
	ProductID   int64
	ContentType string
	APIKey      string
	Body        []byte
	ClientIP    string
}
