// Package metrics provides Prometheus metrics for depth rendering runs.
//
// Metrics live on a private registry and are fed from pipeline events.
// WriteTextfile dumps them in the node_exporter textfile format.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/smazurov/depthvideo/internal/events"
)

// Registry holds every depthvideo metric.
var Registry = prometheus.NewRegistry()

var (
	factory = promauto.With(Registry)

	filesTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "depthvideo",
		Subsystem: "pipeline",
		Name:      "files_total",
		Help:      "Input files processed, by result",
	}, []string{"result"})

	framesTotal = factory.NewCounter(prometheus.CounterOpts{
		Namespace: "depthvideo",
		Subsystem: "pipeline",
		Name:      "frames_rendered_total",
		Help:      "Frames rendered and written",
	})

	inferSeconds = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: "depthvideo",
		Subsystem: "model",
		Name:      "inference_seconds",
		Help:      "Depth model latency per frame",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
	})

	frameSeconds = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: "depthvideo",
		Subsystem: "pipeline",
		Name:      "frame_seconds",
		Help:      "Wall time per frame from preprocessing to write",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
	})

	fileFPS = factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "depthvideo",
		Subsystem: "pipeline",
		Name:      "processing_fps",
		Help:      "Frames per second achieved for a completed input",
	}, []string{"input"})

	remuxTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "depthvideo",
		Subsystem: "remux",
		Name:      "total",
		Help:      "Audio remux attempts, by result",
	}, []string{"result"})
)

// Result label values.
const (
	ResultCompleted = "completed"
	ResultFailed    = "failed"
	ResultSuccess   = "success"
	ResultSkipped   = "skipped"
)

// Totals is a snapshot of the run counters.
type Totals struct {
	FilesCompleted int
	FilesFailed    int
	Frames         int
	RemuxSuccess   int
	RemuxFailed    int
	RemuxSkipped   int
}

var (
	totals   Totals
	totalsMu sync.RWMutex
)

// Subscribe feeds the metrics from bus events. Returns an unsubscribe function.
func Subscribe(bus *events.Bus) func() {
	unsubs := []func(){
		bus.Subscribe(func(e events.FrameRenderedEvent) {
			framesTotal.Inc()
			inferSeconds.Observe(e.Infer.Seconds())
			frameSeconds.Observe(e.Duration.Seconds())
			updateTotals(func(t *Totals) { t.Frames++ })
		}),
		bus.Subscribe(func(e events.FileCompletedEvent) {
			if e.Failed() {
				filesTotal.WithLabelValues(ResultFailed).Inc()
				updateTotals(func(t *Totals) { t.FilesFailed++ })
				return
			}
			filesTotal.WithLabelValues(ResultCompleted).Inc()
			if secs := e.Duration.Seconds(); secs > 0 {
				fileFPS.WithLabelValues(e.Input).Set(float64(e.Frames) / secs)
			}
			updateTotals(func(t *Totals) { t.FilesCompleted++ })
		}),
		bus.Subscribe(func(e events.RemuxCompletedEvent) {
			switch {
			case e.Skipped:
				remuxTotal.WithLabelValues(ResultSkipped).Inc()
				updateTotals(func(t *Totals) { t.RemuxSkipped++ })
			case e.Succeeded():
				remuxTotal.WithLabelValues(ResultSuccess).Inc()
				updateTotals(func(t *Totals) { t.RemuxSuccess++ })
			default:
				remuxTotal.WithLabelValues(ResultFailed).Inc()
				updateTotals(func(t *Totals) { t.RemuxFailed++ })
			}
		}),
	}

	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

// GetTotals returns the current counters.
func GetTotals() Totals {
	totalsMu.RLock()
	defer totalsMu.RUnlock()
	return totals
}

func updateTotals(update func(*Totals)) {
	totalsMu.Lock()
	defer totalsMu.Unlock()
	update(&totals)
}

// WriteTextfile writes the registry to path in the Prometheus text format.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, Registry)
}
