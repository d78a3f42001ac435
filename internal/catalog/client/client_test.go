package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pricing_gateway/platform/apperr"
	"pricing_gateway/platform/config"
	"pricing_gateway/platform/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validProduct = `{"product":{"item":{"product_description":{"title":"My Product Title","bullet_description":["x"]},"tcin":"123"}}}`

func newClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(&config.Config{ProductsBaseURL: srv.URL + "/v1/", CatalogTimeout: time.Second}, logger.Nop())
}

func TestFetchProductExtractsTitle(t *testing.T) {
	var gotPath, gotExcludes, gotAccept string
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotExcludes = r.URL.Query().Get("excludes")
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(validProduct))
	})

	detail, err := c.FetchProduct(context.Background(), 123)
	require.NoError(t, err)
	assert.Equal(t, int64(123), detail.ID)
	assert.Equal(t, "My Product Title", detail.Name)
	assert.Equal(t, "/v1/pdp/tcin/123", gotPath)
	assert.Equal(t, excludes, gotExcludes)
	assert.Equal(t, "application/json", gotAccept)
}

func TestFetchProductNotFound(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"no product"}`, http.StatusNotFound)
	})

	_, err := c.FetchProduct(context.Background(), 999)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.GetKind(err))
}

func TestFetchProductUpstreamFailures(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"server error": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		},
		"bad request": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		},
		"malformed body": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"product":`))
		},
		"missing title": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"product":{"item":{"product_description":{}}}}`))
		},
		"missing item": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"product":{}}`))
		},
	}

	for name, h := range cases {
		t.Run(name, func(t *testing.T) {
			c := newClient(t, h)
			_, err := c.FetchProduct(context.Background(), 1)
			require.Error(t, err)
			assert.Equal(t, apperr.KindUpstream, apperr.GetKind(err))
		})
	}
}

func TestFetchProductNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close()

	c := New(&config.Config{ProductsBaseURL: base, CatalogTimeout: time.Second}, logger.Nop())
	_, err := c.FetchProduct(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, apperr.KindUpstream, apperr.GetKind(err))
}

func TestFetchProductTimesOut(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	c := New(&config.Config{ProductsBaseURL: srv.URL, CatalogTimeout: 50 * time.Millisecond}, logger.Nop())
	start := time.Now()
	_, err := c.FetchProduct(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, apperr.KindUpstream, apperr.GetKind(err))
	assert.Less(t, time.Since(start), 2*time.Second)
}
