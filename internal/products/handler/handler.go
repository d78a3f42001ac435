package handler

import (
	"io"
	"net/http"
	"strconv"

	"pricing_gateway/internal/products/service"
	"pricing_gateway/internal/products/transport"
	"pricing_gateway/platform/httpkit"
	"pricing_gateway/platform/logger"

	"github.com/gin-gonic/gin"
)

const (
	// HeaderAPIKey carries the shared secret guarding price updates.
	HeaderAPIKey = "x-api-key"

	maxBodyBytes = 100 << 10
)

// Handler handles HTTP requests for products.
type Handler struct {
	svc *service.Service
	log *logger.Logger
}

// New creates a new products handler.
func New(svc *service.Service, log *logger.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// RegisterRoutes registers product routes. writeGuards run in front of the
// update handler only.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, writeGuards ...gin.HandlerFunc) {
	rg.GET("/:id", h.GetProduct)
	rg.PUT("/:id", append(writeGuards, h.UpdatePrice)...)
}

func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := parseProductID(c.Param("id"))
	if !ok {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}

	result, err := h.svc.GetProduct(c.Request.Context(), id)
	if httpkit.HandleError(c, h.log, err) {
		return
	}

	httpkit.OK(c, result)
}

func (h *Handler) UpdatePrice(c *gin.Context) {
	id, ok := parseProductID(c.Param("id"))
	if !ok {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}

	// An unreadable or oversized body is left nil and fails validation.
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		body = nil
	}

	err = h.svc.UpdatePrice(c.Request.Context(), transport.UpdatePriceRequest{
		ProductID:   id,
		ContentType: c.GetHeader("Content-Type"),
		APIKey:      c.GetHeader(HeaderAPIKey),
		Body:        body,
		ClientIP:    c.ClientIP(),
	})
	if httpkit.HandleError(c, h.log, err) {
		return
	}

	httpkit.NoContent(c)
}

// parseProductID admits only ASCII digit strings that fit in an int64.
// Anything else is treated as an unknown route.
func parseProductID(raw string) (int64, bool) {
	if raw == "" {
		return 0, false
	}
	for i := 0; i < len(raw); i++ {
		if raw[i] < '0' || raw[i] > '9' {
			return 0, false
		}
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
