package world

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics инкапсулирует Prometheus-метрики генерации и запросов к области.
// Нулевой указатель допустим: все методы в этом случае ничего не делают.
type Metrics struct {
	chunksGenerated     prometheus.Counter
	heightMapsGenerated prometheus.Counter
	noiseSamples        prometheus.Counter
	tileLookups         *prometheus.CounterVec
	generationSeconds   prometheus.Histogram
}

// NewMetrics создаёт метрики и регистрирует их в reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		chunksGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "voxelarea",
			Name:      "chunks_generated_total",
			Help:      "Общее число сгенерированных чанков.",
		}),
		heightMapsGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "voxelarea",
			Name:      "heightmaps_generated_total",
			Help:      "Число построенных карт высот (по одной на колонку).",
		}),
		noiseSamples: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "voxelarea",
			Name:      "noise_samples_total",
			Help:      "Число вычислений функции шума.",
		}),
		tileLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "voxelarea",
			Name:      "tile_lookups_total",
			Help:      "Запросы тайлов по результату (hit / out_of_bounds).",
		}, []string{"result"}),
		generationSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "voxelarea",
			Name:      "generation_seconds",
			Help:      "Длительность генерации области.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.chunksGenerated,
			m.heightMapsGenerated,
			m.noiseSamples,
			m.tileLookups,
			m.generationSeconds,
		)
	}
	return m
}

func (m *Metrics) chunkGenerated() {
	if m == nil {
		return
	}
	m.chunksGenerated.Inc()
}

func (m *Metrics) heightMapGenerated(samples int) {
	if m == nil {
		return
	}
	m.heightMapsGenerated.Inc()
	m.noiseSamples.Add(float64(samples))
}

func (m *Metrics) tileLookup(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.tileLookups.WithLabelValues("hit").Inc()
	} else {
		m.tileLookups.WithLabelValues("out_of_bounds").Inc()
	}
}

func (m *Metrics) generationDone(elapsed time.Duration) {
	if m == nil {
		return
	}
	m.generationSeconds.Observe(elapsed.Seconds())
}
