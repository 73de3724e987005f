package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "tasksync"

// Metrics Prometheus метрики сервера синхронизации
type Metrics struct {
	httpRequests  *prometheus.CounterVec
	syncItems     *prometheus.CounterVec
	batchSize     prometheus.Histogram
	rateLimited   prometheus.Counter
	replayedItems prometheus.Counter
}

// New создает метрики и регистрирует их в reg.
// Для продакшена передается prometheus.DefaultRegisterer, в тестах — prometheus.NewRegistry().
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by path and status code.",
			},
			[]string{"path", "code"},
		),
		syncItems: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sync_items_total",
				Help:      "Processed sync items by outcome status.",
			},
			[]string{"status"},
		),
		batchSize: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "sync_batch_size",
				Help:      "Number of items per sync request.",
				Buckets:   []float64{1, 5, 10, 25, 50, 100},
			},
		),
		rateLimited: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_limited_requests_total",
				Help:      "Requests rejected by the rate limiter.",
			},
		),
		replayedItems: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sync_replayed_items_total",
				Help:      "Sync items answered from recorded outcomes.",
			},
		),
	}

	reg.MustRegister(m.httpRequests, m.syncItems, m.batchSize, m.rateLimited, m.replayedItems)
	return m
}

// ObserveHTTP increments the request counter for path and status code.
func (m *Metrics) ObserveHTTP(path string, code int) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(path, strconv.Itoa(code)).Inc()
}

// ObserveBatch records the size of an incoming sync batch.
func (m *Metrics) ObserveBatch(size int) {
	if m == nil {
		return
	}
	m.batchSize.Observe(float64(size))
}

// IncItem increments the processed item counter for status.
func (m *Metrics) IncItem(status string) {
	if m == nil {
		return
	}
	m.syncItems.WithLabelValues(status).Inc()
}

// IncReplayed counts an item answered from a recorded outcome.
func (m *Metrics) IncReplayed() {
	if m == nil {
		return
	}
	m.replayedItems.Inc()
}

// IncRateLimited counts a request rejected by the rate limiter.
func (m *Metrics) IncRateLimited() {
	if m == nil {
		return
	}
	m.rateLimited.Inc()
}
