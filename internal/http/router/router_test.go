package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	apphttp "pricing_gateway/internal/http"
	"pricing_gateway/platform/httpkit"
	"pricing_gateway/platform/logger"
	"pricing_gateway/platform/metrics"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	origins []string
	limit   float64
	burst   int
}

func (c testConfig) GetHTTPAddr() string        { return ":0" }
func (c testConfig) GetCORSOrigins() []string   { return c.origins }
func (c testConfig) GetWriteRateLimit() float64 { return c.limit }
func (c testConfig) GetWriteRateBurst() int     { return c.burst }

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

// echoModule mounts one read and one guarded write route.
type echoModule struct{}

func (echoModule) Name() string { return "echo" }

func (echoModule) RegisterRoutes(ctx *apphttp.RouterContext) {
	g := ctx.Root.Group("/echo")
	g.GET("", func(c *gin.Context) { c.Status(http.StatusOK) })
	g.PUT("", append(ctx.WriteGuards, func(c *gin.Context) { c.Status(http.StatusNoContent) })...)
}

func newEngine(cfg testConfig, health apphttp.HealthChecker) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return New(&apphttp.App{
		Config:  cfg,
		Logger:  logger.Nop(),
		Health:  health,
		Metrics: metrics.New(),
		Modules: []apphttp.Module{echoModule{}},
	})
}

func serve(engine *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestHealthIsEmpty200(t *testing.T) {
	rec := serve(newEngine(testConfig{}, pinger{err: errors.New("down")}), httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(httpkit.HeaderRequestID))
}

func TestReadyReflectsStorePing(t *testing.T) {
	rec := serve(newEngine(testConfig{}, pinger{}), httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(newEngine(testConfig{}, pinger{err: errors.New("server selection timeout")}), httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	engine := newEngine(testConfig{}, pinger{})
	serve(engine, httptest.NewRequest(http.MethodGet, "/echo", nil))

	rec := serve(engine, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `pricing_gateway_http_requests_total{method="GET",route="/echo",status="200"} 1`)
}

func TestUnknownRouteIsEmpty404(t *testing.T) {
	engine := newEngine(testConfig{}, pinger{})
	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodDelete} {
		rec := serve(engine, httptest.NewRequest(method, "/does/not/exist", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code, method)
		assert.Empty(t, rec.Body.String(), method)
	}
}

func TestCORSOnlyWhenConfigured(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/echo", nil)
	req.Header.Set("Origin", "https://shop.example")

	rec := serve(newEngine(testConfig{}, pinger{}), req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/echo", nil)
	req.Header.Set("Origin", "https://shop.example")
	rec = serve(newEngine(testConfig{origins: []string{"https://shop.example"}}, pinger{}), req)
	assert.Equal(t, "https://shop.example", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestWriteRateLimitGuardsWritesOnly(t *testing.T) {
	engine := newEngine(testConfig{limit: 0.0001, burst: 1}, pinger{})

	assert.Equal(t, http.StatusNoContent, serve(engine, httptest.NewRequest(http.MethodPut, "/echo", nil)).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(engine, httptest.NewRequest(http.MethodPut, "/echo", nil)).Code)
	assert.Equal(t, http.StatusOK, serve(engine, httptest.NewRequest(http.MethodGet, "/echo", nil)).Code)
}

func TestTrailingSlashIsPlain404(t *testing.T) {
	engine := newEngine(testConfig{}, pinger{})
	for _, method := range []string{http.MethodGet, http.MethodPut} {
		rec := serve(engine, httptest.NewRequest(method, "/echo/", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code, method)
		assert.Empty(t, rec.Body.String(), method)
	}
}
