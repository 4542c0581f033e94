// Package metrics exposes Prometheus metrics for the wizard service.
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

	"github.com/albapepper/scoracle-fans/internal/wizard"
)

// Registry holds every metric the service records.
type Registry struct {
	reg *prometheus.Registry

	// Wizard
	Transitions *prometheus.CounterVec
	Verdicts    *prometheus.CounterVec

	// OCR
	OCRDuration *prometheus.HistogramVec

	// HTTP
	RequestDuration *prometheus.HistogramVec
	SessionsCreated prometheus.Counter
	SessionsSwept   prometheus.Counter
}

// New creates a registry with Go runtime and process collectors attached.
func New() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),

		Transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fan_wizard_transitions_total",
				Help: "Wizard operations that changed or attempted to change the step",
			},
			[]string{"op", "from", "to"},
		),

		Verdicts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fan_document_verdicts_total",
				Help: "Document validation verdicts by outcome",
			},
			[]string{"valid"},
		),

		OCRDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fan_ocr_duration_seconds",
				Help:    "Time spent extracting text from documents",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"engine", "outcome"},
		),

		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fan_http_request_duration_seconds",
				Help:    "HTTP request latency by route and status",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),

		SessionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fan_sessions_created_total",
			Help: "Wizard sessions created",
		}),

		SessionsSwept: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fan_sessions_swept_total",
			Help: "Expired sessions removed by the sweeper",
		}),
	}

	r.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.Transitions,
		r.Verdicts,
		r.OCRDuration,
		r.RequestDuration,
		r.SessionsCreated,
		r.SessionsSwept,
	)
	return r
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// ObserveTransition implements wizard.Observer.
func (r *Registry) ObserveTransition(op string, from, to int) {
	r.Transitions.WithLabelValues(op, wizard.StepName(from), wizard.StepName(to)).Inc()
}

// ObserveVerdict implements wizard.Observer.
func (r *Registry) ObserveVerdict(valid bool) {
	r.Verdicts.WithLabelValues(strconv.FormatBool(valid)).Inc()
}

// ObserveOCR implements ocr.Observer.
func (r *Registry) ObserveOCR(engine, outcome string, elapsed time.Duration) {
	r.OCRDuration.WithLabelValues(engine, outcome).Observe(elapsed.Seconds())
}

// ObserveSweep records sessions removed by one sweep.
func (r *Registry) ObserveSweep(n int64) {
	if n > 0 {
		r.SessionsSwept.Add(float64(n))
	}
}

// Middleware records request latency labelled by the matched chi route
// pattern, so path parameters do not explode cardinality.
func (r *Registry) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
		next.ServeHTTP(ww, req)

		route := "unmatched"
		if rc := chi.RouteContext(req.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		r.RequestDuration.WithLabelValues(req.Method, route, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
	})
}
