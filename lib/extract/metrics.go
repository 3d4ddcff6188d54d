package extract

import (
	"io"

	"github.com/VictoriaMetrics/metrics"
)

// Metrics holds the counters of extraction runs.
type Metrics struct {
	set *metrics.Set

	Runs            *metrics.Counter
	RunsFailed      *metrics.Counter
	MapsSelected    *metrics.Counter
	MapsRegistered  *metrics.Counter
	MapsSkipped     *metrics.Counter
	MapCalcFailures *metrics.Counter
	RunDuration     *metrics.Histogram
	MapCalcDuration *metrics.Histogram
}

// NewMetrics creates a metrics set with all extraction counters registered.
func NewMetrics() *Metrics {
	set := metrics.NewSet()
	return &Metrics{
		set:             set,
		Runs:            set.NewCounter("tgis_extract_runs_total"),
		RunsFailed:      set.NewCounter("tgis_extract_runs_failed_total"),
		MapsSelected:    set.NewCounter("tgis_extract_maps_selected_total"),
		MapsRegistered:  set.NewCounter("tgis_extract_maps_registered_total"),
		MapsSkipped:     set.NewCounter("tgis_extract_maps_skipped_total"),
		MapCalcFailures: set.NewCounter("tgis_extract_mapcalc_failures_total"),
		RunDuration:     set.NewHistogram("tgis_extract_run_duration_seconds"),
		MapCalcDuration: set.NewHistogram("tgis_extract_mapcalc_duration_seconds"),
	}
}

// WritePrometheus writes all metrics in Prometheus text exposition format.
func (m *Metrics) WritePrometheus(w io.Writer) {
	m.set.WritePrometheus(w)
}
