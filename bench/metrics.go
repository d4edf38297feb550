package bench

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

const (
	backendLabel = "backend"
	opLabel      = "op"
	clockLabel   = "clock"
)

var (
	phaseDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tsdata_bench_phase_duration_seconds",
			Help:    "Duration of one benchmark phase by clock",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 18),
		}, []string{backendLabel, opLabel, clockLabel})

	rowsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tsdata_bench_rows_total",
			Help: "Rows written or read by benchmark phases",
		}, []string{backendLabel, opLabel})
)

var registerMetricsLock = sync.Once{}

// RegisterMetrics registers the phase collectors with the default registry.
func RegisterMetrics() {
	registerMetricsLock.Do(func() {
		prometheus.MustRegister(phaseDuration, rowsTotal)
	})
}

func observePhase(backend string, op Op, rows int, wall, cpu time.Duration) {
	phaseDuration.WithLabelValues(backend, string(op), string(ClockWall)).Observe(wall.Seconds())
	phaseDuration.WithLabelValues(backend, string(op), string(ClockCPU)).Observe(cpu.Seconds())
	rowsTotal.WithLabelValues(backend, string(op)).Add(float64(rows))
}

// ServeMetrics starts an HTTP server exposing /metrics on addr in background.
func ServeMetrics(addr string) (*http.Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	RegisterMetrics()
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{Handler: mux, ReadTimeout: 5 * time.Second, WriteTimeout: 5 * time.Second}
	go func() {
		log.WithField("address", listener.Addr().String()).Infoln("Start prometheus http handler")
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Errorln("Error from HTTP server that process prometheus metrics")
		}
	}()
	return server, nil
}
