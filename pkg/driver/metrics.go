package driver

import (
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the driver's Prometheus descriptors.
type Metrics struct {
	startTime time.Time

	playersConnected prometheus.Gauge
	commandsTotal    prometheus.Counter
	parseErrorsTotal prometheus.Counter
	ticksTotal       prometheus.Counter
	deferredsFired   prometheus.Counter
	deferredsPending prometheus.Gauge
	uptimeSeconds    prometheus.Gauge
	memoryHeapBytes  prometheus.Gauge
	goroutines       prometheus.Gauge
}

// NewMetrics creates and registers the driver metrics.
func NewMetrics(startTime time.Time) *Metrics {
	m := &Metrics{
		startTime: startTime,
		playersConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "storyloom_players_connected",
			Help: "Number of currently connected players.",
		}),
		commandsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storyloom_commands_processed_total",
			Help: "Total commands processed since driver start.",
		}),
		parseErrorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storyloom_parse_errors_total",
			Help: "Total utterances rejected by the parser.",
		}),
		ticksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storyloom_server_ticks_total",
			Help: "Total server ticks since driver start.",
		}),
		deferredsFired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storyloom_deferreds_fired_total",
			Help: "Total deferred actions fired.",
		}),
		deferredsPending: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "storyloom_deferreds_pending",
			Help: "Deferred actions currently queued.",
		}),
		uptimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "storyloom_uptime_seconds",
			Help: "Driver uptime in seconds.",
		}),
		memoryHeapBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "storyloom_memory_heap_bytes",
			Help: "Go heap memory allocated in bytes.",
		}),
		goroutines: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "storyloom_goroutines",
			Help: "Number of active goroutines.",
		}),
	}
	prometheus.MustRegister(
		m.playersConnected,
		m.commandsTotal,
		m.parseErrorsTotal,
		m.ticksTotal,
		m.deferredsFired,
		m.deferredsPending,
		m.uptimeSeconds,
		m.memoryHeapBytes,
		m.goroutines,
	)
	return m
}

// Update refreshes the gauges from driver state.
func (m *Metrics) Update(connected, pendingDeferreds int) {
	m.playersConnected.Set(float64(connected))
	m.deferredsPending.Set(float64(pendingDeferreds))
	m.uptimeSeconds.Set(time.Since(m.startTime).Seconds())

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	m.memoryHeapBytes.Set(float64(mem.HeapAlloc))
	m.goroutines.Set(float64(runtime.NumGoroutine()))
}

// Handler serves the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.Handler()
}
