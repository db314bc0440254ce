package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	m := New()

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/livros/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"a", "b", "c"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/livros/"+id, nil))
	}

	assert.Equal(t, float64(3), testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/livros/{id}", "404")))
}

func TestObserveBackendAndLookup(t *testing.T) {
	m := New()

	m.ObserveBackend("GET", 200, 10*time.Millisecond)
	m.ObserveBackend("GET", 0, time.Second)
	m.ObserveLookup("cache")
	m.ObserveLookup("cache")

	assert.Equal(t, float64(1), testutil.ToFloat64(m.BackendRequestsTotal.WithLabelValues("GET", "200")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.BackendRequestsTotal.WithLabelValues("GET", "erro")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.LookupRequestsTotal.WithLabelValues("cache")))
}

func TestHandler_ExposesCollectors(t *testing.T) {
	m := New()
	m.ObserveLookup("ok")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `livraria_lookup_requests_total{result="ok"} 1`)
}
