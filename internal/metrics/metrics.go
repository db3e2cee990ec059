// Package metrics exports kiosk counters and latencies to prometheus.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"kiosk-go/internal/kiosk"
)

// Recorder implements kiosk.Recorder on a private prometheus registry.
type Recorder struct {
	registry *prometheus.Registry

	framesCaptured      *prometheus.CounterVec
	logins              *prometheus.CounterVec
	denials             prometheus.Counter
	enrollments         *prometheus.CounterVec
	recognitionDuration prometheus.Histogram
}

// NewRecorder registers the kiosk metrics on a fresh registry.
func NewRecorder(stationID string) *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	factory := promauto.With(prometheus.WrapRegistererWith(prometheus.Labels{"station": stationID}, reg))
	return &Recorder{
		registry: reg,
		framesCaptured: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kiosk_frames_captured_total",
			Help: "Frames buffered by capture sessions",
		}, []string{"mode"}),
		logins: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kiosk_logins_total",
			Help: "Attendance events recorded",
		}, []string{"direction"}),
		denials: factory.NewCounter(prometheus.CounterOpts{
			Name: "kiosk_access_denied_total",
			Help: "Login attempts that matched no enrolled user",
		}),
		enrollments: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kiosk_enrollments_total",
			Help: "Enrollment attempts by result",
		}, []string{"result"}),
		recognitionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "kiosk_recognition_duration_seconds",
			Help:    "Time from end of login capture to the recognition decision",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (r *Recorder) FrameCaptured(mode kiosk.Mode) {
	r.framesCaptured.WithLabelValues(mode.String()).Inc()
}

func (r *Recorder) LoginRecorded(dir kiosk.Direction) {
	r.logins.WithLabelValues(dir.String()).Inc()
}

func (r *Recorder) AccessDenied() {
	r.denials.Inc()
}

func (r *Recorder) EnrollmentFinished(result string) {
	r.enrollments.WithLabelValues(result).Inc()
}

func (r *Recorder) RecognitionObserved(d time.Duration) {
	r.recognitionDuration.Observe(d.Seconds())
}

// Handler serves the registry in the prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (r *Recorder) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}

	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving metrics: %w", err)
	}
	return nil
}

// Compile-time check that Recorder implements kiosk.Recorder interface
var _ kiosk.Recorder = (*Recorder)(nil)
