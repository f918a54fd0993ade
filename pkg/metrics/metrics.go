package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all sales service metrics
type Metrics struct {
	serviceName string
	registry    *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Database metrics
	DBOperations        *prometheus.CounterVec
	DBOperationDuration *prometheus.HistogramVec

	// Event log metrics
	EventsAppended      *prometheus.CounterVec
	EventAppendDuration *prometheus.HistogramVec

	// Business metrics
	SalesCreated       *prometheus.CounterVec
	SalesCancelled     *prometheus.CounterVec
	SaleItemsCancelled *prometheus.CounterVec
	SaleTotalAmount    *prometheus.HistogramVec
	ItemDiscount       *prometheus.HistogramVec

	// Circuit breaker metrics
	CircuitBreakerState *prometheus.GaugeVec
	CircuitBreakerTrips *prometheus.CounterVec
}

// Config holds metrics configuration
type Config struct {
	ServiceName string
	Namespace   string
}

// DefaultConfig returns default metrics configuration
func DefaultConfig(serviceName string) *Config {
	return &Config{
		ServiceName: serviceName,
		Namespace:   "sales",
	}
}

// New creates a new Metrics instance
func New(config *Config) *Metrics {
	registry := prometheus.NewRegistry()

	// Register standard Go metrics
	registry.MustRegister(prometheus.NewGoCollector())
	registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	m := &Metrics{
		serviceName: config.ServiceName,
		registry:    registry,
	}

	m.HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"service", "method", "path", "status"},
	)

	m.HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"service", "method", "path"},
	)

	m.HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Name:        "http_requests_in_flight",
			Help:        "Number of HTTP requests currently being processed",
			ConstLabels: prometheus.Labels{"service": config.ServiceName},
		},
	)

	m.DBOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "db_operations_total",
			Help:      "Total number of relational database operations",
		},
		[]string{"service", "table", "operation", "status"},
	)

	m.DBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Name:      "db_operation_duration_seconds",
			Help:      "Relational database operation duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"service", "table", "operation"},
	)

	m.EventsAppended = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "event_logs_appended_total",
			Help:      "Total number of domain events appended to the event log",
		},
		[]string{"service", "event_type", "status"},
	)

	m.EventAppendDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Name:      "event_log_append_duration_seconds",
			Help:      "Event log append duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"service", "event_type"},
	)

	m.SalesCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "sales_created_total",
			Help:      "Total number of sales created",
		},
		[]string{"service", "branch"},
	)

	m.SalesCancelled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "sales_cancelled_total",
			Help:      "Total number of sales cancelled",
		},
		[]string{"service", "branch"},
	)

	m.SaleItemsCancelled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "sale_items_cancelled_total",
			Help:      "Total number of individual sale items cancelled",
		},
		[]string{"service"},
	)

	m.SaleTotalAmount = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Name:      "sale_total_amount",
			Help:      "Distribution of sale total amounts",
			Buckets:   []float64{10, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		},
		[]string{"service", "branch"},
	)

	m.ItemDiscount = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Name:      "sale_item_discount",
			Help:      "Distribution of discounts applied to line items",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500},
		},
		[]string{"service"},
	)

	m.CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: config.Namespace,
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"service", "name"},
	)

	m.CircuitBreakerTrips = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "circuit_breaker_trips_total",
			Help:      "Total number of circuit breaker trips",
		},
		[]string{"service", "name"},
	)

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.DBOperations,
		m.DBOperationDuration,
		m.EventsAppended,
		m.EventAppendDuration,
		m.SalesCreated,
		m.SalesCancelled,
		m.SaleItemsCancelled,
		m.SaleTotalAmount,
		m.ItemDiscount,
		m.CircuitBreakerState,
		m.CircuitBreakerTrips,
	)

	return m
}

// Handler returns an HTTP handler for the metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Registry returns the prometheus registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	statusStr := strconv.Itoa(status)
	m.HTTPRequestsTotal.WithLabelValues(m.serviceName, method, path, statusStr).Inc()
	m.HTTPRequestDuration.WithLabelValues(m.serviceName, method, path).Observe(duration.Seconds())
}

// IncrementHTTPRequestsInFlight increments the in-flight gauge
func (m *Metrics) IncrementHTTPRequestsInFlight() {
	m.HTTPRequestsInFlight.Inc()
}

// DecrementHTTPRequestsInFlight decrements the in-flight gauge
func (m *Metrics) DecrementHTTPRequestsInFlight() {
	m.HTTPRequestsInFlight.Dec()
}

// RecordDBOperation records a relational database operation
func (m *Metrics) RecordDBOperation(table, operation string, success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "error"
	}
	m.DBOperations.WithLabelValues(m.serviceName, table, operation, status).Inc()
	m.DBOperationDuration.WithLabelValues(m.serviceName, table, operation).Observe(duration.Seconds())
}

// RecordEventAppended records a domain event append
func (m *Metrics) RecordEventAppended(eventType string, success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "error"
	}
	m.EventsAppended.WithLabelValues(m.serviceName, eventType, status).Inc()
	m.EventAppendDuration.WithLabelValues(m.serviceName, eventType).Observe(duration.Seconds())
}

// RecordSaleCreated records a sale creation with its total amount
func (m *Metrics) RecordSaleCreated(branch string, totalAmount float64) {
	m.SalesCreated.WithLabelValues(m.serviceName, branch).Inc()
	m.SaleTotalAmount.WithLabelValues(m.serviceName, branch).Observe(totalAmount)
}

// RecordSaleCancelled records a sale cancellation
func (m *Metrics) RecordSaleCancelled(branch string) {
	m.SalesCancelled.WithLabelValues(m.serviceName, branch).Inc()
}

// RecordSaleItemCancelled records a line item cancellation
func (m *Metrics) RecordSaleItemCancelled() {
	m.SaleItemsCancelled.WithLabelValues(m.serviceName).Inc()
}

// RecordItemDiscount records the discount applied to a line item
func (m *Metrics) RecordItemDiscount(discount float64) {
	if discount > 0 {
		m.ItemDiscount.WithLabelValues(m.serviceName).Observe(discount)
	}
}

// SetCircuitBreakerState sets the circuit breaker state gauge
func (m *Metrics) SetCircuitBreakerState(name string, state int) {
	m.CircuitBreakerState.WithLabelValues(m.serviceName, name).Set(float64(state))
}

// RecordCircuitBreakerTrip records a circuit breaker trip
func (m *Metrics) RecordCircuitBreakerTrip(name string) {
	m.CircuitBreakerTrips.WithLabelValues(m.serviceName, name).Inc()
}
