package lattice

import "github.com/prometheus/client_golang/prometheus"

// MetricsRecorder mirrors WorldStats into a Prometheus registry. It is
// strictly additive: nothing in the core ever reads it back, and a
// world with no registry installed pays nothing beyond a nil check.
// Grounded on Voskan-arena-cache's metricsSink/promMetrics/noopMetrics
// split, simplified to gauges since world stats are already
// point-in-time counts rather than cumulative events.
type MetricsRecorder struct {
	liveEntities     prometheus.Gauge
	archetypeCount   prometheus.Gauge
	chunkCount       prometheus.Gauge
	pendingCommands  prometheus.Gauge
	deferDepth       prometheus.Gauge
	structuralMoves  prometheus.Gauge
}

// NewMetricsRecorder builds and registers the gauge set against reg.
func NewMetricsRecorder(reg *prometheus.Registry) *MetricsRecorder {
	m := &MetricsRecorder{
		liveEntities: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "lattice", Name: "live_entities", Help: "Number of currently live entities.",
		}),
		archetypeCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "lattice", Name: "archetype_count", Help: "Number of distinct archetypes.",
		}),
		chunkCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "lattice", Name: "chunk_count", Help: "Total chunks allocated across all archetypes.",
		}),
		pendingCommands: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "lattice", Name: "pending_commands", Help: "Deferred commands awaiting flush.",
		}),
		deferDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "lattice", Name: "defer_depth", Help: "Current nested defer-region depth.",
		}),
		structuralMoves: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "lattice", Name: "structural_moves_total", Help: "Cumulative rows moved by structural mutation.",
		}),
	}
	reg.MustRegister(m.liveEntities, m.archetypeCount, m.chunkCount, m.pendingCommands, m.deferDepth, m.structuralMoves)
	return m
}

func (m *MetricsRecorder) observe(s WorldStats) {
	if m == nil {
		return
	}
	m.liveEntities.Set(float64(s.LiveEntities))
	m.archetypeCount.Set(float64(s.ArchetypeCount))
	m.chunkCount.Set(float64(s.ChunkCount))
	m.pendingCommands.Set(float64(s.PendingCommands))
	m.deferDepth.Set(float64(s.DeferDepth))
	m.structuralMoves.Set(float64(s.StructuralMoves))
}

// WithMetrics installs a MetricsRecorder registered against reg; each
// call to Stats also pushes the freshly computed snapshot into it.
func WithMetrics(reg *prometheus.Registry) Option {
	return func(c *Config) { c.metricsRegistry = reg }
}
