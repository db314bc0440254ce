// Package metrics expõe contadores Prometheus da interface: requisições HTTP
// recebidas, chamadas ao backend e consultas de metadados.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics agrupa os coletores registrados num Registry.
type Metrics struct {
	registry *prometheus.Registry

	// HTTPRequestsTotal conta as requisições por método, rota e status.
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration mede o tempo de resposta por método e rota.
	HTTPRequestDuration *prometheus.HistogramVec

	// BackendRequestsTotal conta as chamadas ao backend REST por método e status
	// ("erro" quando não houve resposta).
	BackendRequestsTotal *prometheus.CounterVec

	// BackendRequestDuration mede a latência das chamadas ao backend.
	BackendRequestDuration prometheus.Histogram

	// LookupRequestsTotal conta as consultas de metadados por resultado
	// (cache, ok, vazio, erro, limitado).
	LookupRequestsTotal *prometheus.CounterVec
}

// New cria e registra os coletores num Registry próprio.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "livraria_http_requests_total",
				Help: "Total de requisições HTTP recebidas pela interface",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "livraria_http_request_duration_seconds",
				Help:    "Duração das requisições HTTP da interface (segundos)",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		),
		BackendRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "livraria_backend_requests_total",
				Help: "Total de chamadas ao backend REST",
			},
			[]string{"method", "status"},
		),
		BackendRequestDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "livraria_backend_request_duration_seconds",
				Help:    "Duração das chamadas ao backend REST (segundos)",
				Buckets: prometheus.DefBuckets,
			},
		),
		LookupRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "livraria_lookup_requests_total",
				Help: "Total de consultas ao serviço de metadados",
			},
			[]string{"result"},
		),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.BackendRequestsTotal,
		m.BackendRequestDuration,
		m.LookupRequestsTotal,
	)
	return m
}

// Handler serve o endpoint /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware registra contagem e duração de cada requisição. A rota usada
// como rótulo é o padrão do chi, não o caminho, para não explodir a cardinalidade.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "desconhecida"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// ObserveBackend registra uma chamada ao backend. status 0 indica falha de rede.
func (m *Metrics) ObserveBackend(method string, status int, d time.Duration) {
	label := "erro"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.BackendRequestsTotal.WithLabelValues(method, label).Inc()
	m.BackendRequestDuration.Observe(d.Seconds())
}

// ObserveLookup registra o resultado de uma consulta de metadados.
func (m *Metrics) ObserveLookup(result string) {
	m.LookupRequestsTotal.WithLabelValues(result).Inc()
}
