package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the pipeline counters. Each instance registers on its own
// Registerer so tests can use a fresh registry.
type Metrics struct {
	RowsRead         *prometheus.CounterVec
	RowsMalformed    *prometheus.CounterVec
	RecordsDropped   *prometheus.CounterVec
	RecordsEmitted   *prometheus.CounterVec
	Categories       *prometheus.CounterVec
	DualDescriptions prometheus.Counter
	SinkErrors       *prometheus.CounterVec
}

// New creates and registers the pipeline counters
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RowsRead: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pbp_rows_read_total",
				Help: "Count of raw rows read from sources",
			},
			[]string{"schema"},
		),
		RowsMalformed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pbp_rows_malformed_total",
				Help: "Count of rows skipped for missing or unparseable fields",
			},
			[]string{"schema"},
		),
		RecordsDropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pbp_records_dropped_total",
				Help: "Count of records dropped because their text canonicalized to nothing",
			},
			[]string{"schema"},
		),
		RecordsEmitted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pbp_records_emitted_total",
				Help: "Count of commentary records produced",
			},
			[]string{"schema"},
		),
		Categories: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pbp_commentary_category_total",
				Help: "Count of commentary records by synthesized category",
			},
			[]string{"category"},
		),
		DualDescriptions: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "pbp_dual_description_total",
				Help: "Count of historical rows with both home and away descriptions",
			},
		),
		SinkErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pbp_sink_errors_total",
				Help: "Count of failed writes per sink",
			},
			[]string{"sink"},
		),
	}

	reg.MustRegister(
		m.RowsRead,
		m.RowsMalformed,
		m.RecordsDropped,
		m.RecordsEmitted,
		m.Categories,
		m.DualDescriptions,
		m.SinkErrors,
	)

	return m
}
