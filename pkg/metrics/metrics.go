package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/jhoicas/bodega-api/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics métricas de la API sobre un registry propio (no el global).
type Metrics struct {
	registry *prometheus.Registry

	InvoiceOps        *prometheus.CounterVec
	InvoiceOpDuration *prometheus.HistogramVec
	StockUnits        *prometheus.CounterVec
	HTTPRequests      *prometheus.CounterVec
	HTTPDuration      *prometheus.HistogramVec
}

// New registra las métricas bajo el namespace dado (p. ej. "bodega").
func New(namespace string) *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: registry,
		InvoiceOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invoice_operations_total",
			Help:      "Operaciones sobre facturas por tipo y resultado.",
		}, []string{"op", "type", "result"}),
		InvoiceOpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "invoice_operation_duration_seconds",
			Help:      "Duración de las operaciones sobre facturas.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		StockUnits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_units_total",
			Help:      "Unidades sumadas o restadas a remainingQuantity.",
		}, []string{"direction"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Peticiones HTTP por ruta y código.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duración de las peticiones HTTP.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	registry.MustRegister(m.InvoiceOps, m.InvoiceOpDuration, m.StockUnits, m.HTTPRequests, m.HTTPDuration)
	return m
}

// Registry para pruebas.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler expone el registry en formato Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveInvoiceOp cuenta la operación con el resultado clasificado por tipo de error.
func (m *Metrics) ObserveInvoiceOp(op, invoiceType string, err error, elapsed time.Duration) {
	m.InvoiceOps.WithLabelValues(op, invoiceType, Result(err)).Inc()
	m.InvoiceOpDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}

// ObserveStockDeltas acumula unidades por sentido.
func (m *Metrics) ObserveStockDeltas(deltas map[string]int64) {
	for _, d := range deltas {
		switch {
		case d > 0:
			m.StockUnits.WithLabelValues("increase").Add(float64(d))
		case d < 0:
			m.StockUnits.WithLabelValues("decrease").Add(float64(-d))
		}
	}
}

// ObserveHTTP registra una petición ya respondida.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Result etiqueta de resultado para un error de operación.
func Result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrDuplicate):
		return "conflict"
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrForbidden):
		return "denied"
	case errors.Is(err, domain.ErrPersistence):
		return "persistence"
	}
	return "error"
}
