// Package metrics publishes Prometheus metrics for store, OCR and HTTP calls.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yourusername/pantry-bot/internal/domain/entity"
	"github.com/yourusername/pantry-bot/internal/domain/repository"
)

const namespace = "pantry"

// Recorder owns a private registry so tests can build as many as they like.
type Recorder struct {
	registry   *prometheus.Registry
	gatewayOps *prometheus.HistogramVec
	ocrCalls   *prometheus.CounterVec
	httpReqs   *prometheus.CounterVec
	items      *prometheus.GaugeVec
}

// NewRecorder registers all collectors plus the Go runtime collectors.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		gatewayOps: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_operation_seconds",
			Help:      "Latency of inventory store reads and writes.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op", "result"}),
		ocrCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ocr_requests_total",
			Help:      "Receipt OCR requests by result.",
		}, []string{"result"}),
		httpReqs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		items: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "items",
			Help:      "Items per stock status as of the last read.",
		}, []string{"status"}),
	}
	r.registry.MustRegister(
		r.gatewayOps, r.ocrCalls, r.httpReqs, r.items,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Registry exposes the registry for tests and extra collectors.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Handler serves /metrics.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// ObserveHTTP counts one handled request.
func (r *Recorder) ObserveHTTP(route string, code int) {
	if route == "" {
		route = "unmatched"
	}
	r.httpReqs.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

// SetStatusCounts replaces the per-status item gauge.
func (r *Recorder) SetStatusCounts(counts map[entity.Status]int) {
	for _, s := range []entity.Status{entity.StatusOK, entity.StatusLow, entity.StatusOut} {
		r.items.WithLabelValues(string(s)).Set(float64(counts[s]))
	}
}

func resultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	switch entity.ErrorKind(err) {
	case entity.ErrAuth:
		return "auth"
	case entity.ErrNotFound:
		return "not_found"
	case entity.ErrConnect:
		return "connect"
	case entity.ErrRead:
		return "read"
	case entity.ErrWrite:
		return "write"
	case entity.ErrOCR:
		return "ocr"
	default:
		return "error"
	}
}

type instrumentedGateway struct {
	next repository.InventoryGateway
	rec  *Recorder
}

// InstrumentGateway wraps a store gateway with latency/result metrics.
func (r *Recorder) InstrumentGateway(next repository.InventoryGateway) repository.InventoryGateway {
	return &instrumentedGateway{next: next, rec: r}
}

func (g *instrumentedGateway) ReadAll(ctx context.Context) (entity.Table, error) {
	start := time.Now()
	table, err := g.next.ReadAll(ctx)
	g.rec.gatewayOps.WithLabelValues("read", resultLabel(err)).Observe(time.Since(start).Seconds())
	return table, err
}

func (g *instrumentedGateway) WriteAll(ctx context.Context, table entity.Table) error {
	start := time.Now()
	err := g.next.WriteAll(ctx, table)
	g.rec.gatewayOps.WithLabelValues("write", resultLabel(err)).Observe(time.Since(start).Seconds())
	return err
}

type instrumentedOCR struct {
	next repository.OCRRepository
	rec  *Recorder
}

// InstrumentOCR counts OCR calls by result. A nil OCR stays nil.
func (r *Recorder) InstrumentOCR(next repository.OCRRepository) repository.OCRRepository {
	if next == nil {
		return nil
	}
	return &instrumentedOCR{next: next, rec: r}
}

func (o *instrumentedOCR) ReadText(ctx context.Context, image []byte, mimeType string) (string, error) {
	text, err := o.next.ReadText(ctx, image, mimeType)
	label := resultLabel(err)
	if err != nil && label == "error" {
		label = "ocr"
	}
	if err == nil && text == "" {
		label = "empty"
	}
	o.rec.ocrCalls.WithLabelValues(label).Inc()
	return text, err
}
