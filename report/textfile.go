package report

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/inexplicable/redis_checker/model"
)

const namespace = "redis_checker"

// Textfile gathers gauges of one run for the node exporter textfile collector
type Textfile struct {
	registry *prometheus.Registry

	findings *prometheus.GaugeVec
	worst    prometheus.Gauge
	keys     *prometheus.GaugeVec
	prefixes *prometheus.GaugeVec
	clients  *prometheus.GaugeVec
	lastRun  prometheus.Gauge
}

// NewTextfile registers the gauges on a private registry, `target` is attached to every series
func NewTextfile(target string) *Textfile {
	registry := prometheus.NewRegistry()
	factory := promauto.With(prometheus.WrapRegistererWith(prometheus.Labels{"target": target}, registry))
	return &Textfile{
		registry: registry,
		findings: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "findings",
			Help:      "Number of findings per section and severity.",
		}, []string{"section", "severity"}),
		worst: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "worst_severity",
			Help:      "Highest severity found, 0=INFO 1=CHECK 2=WARNING 3=DANGER.",
		}),
		keys: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "scanned_keys",
			Help:      "Keys seen by the last scan, by outcome.",
		}, []string{"outcome"}),
		prefixes: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "prefix_keys",
			Help:      "Keys per prefix in the last scan.",
		}, []string{"prefix"}),
		clients: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "client_connections",
			Help:      "Connections per client ip.",
		}, []string{"ip"}),
		lastRun: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the gauges were last written.",
		}),
	}
}

// ObserveReport sets the finding gauges
func (textfile *Textfile) ObserveReport(report *model.Report) {
	for _, section := range report.Sections {
		counts := map[model.Severity]int{}
		for _, finding := range section.Findings {
			counts[finding.Severity]++
		}
		for severity, count := range counts {
			textfile.findings.WithLabelValues(section.Title, severity.String()).Set(float64(count))
		}
	}
	textfile.worst.Set(float64(report.Worst()))
}

// ObserveScan sets the key and prefix gauges
func (textfile *Textfile) ObserveScan(result *model.ScanResult) {
	textfile.keys.WithLabelValues("probed").Set(float64(result.Total - result.Failed))
	textfile.keys.WithLabelValues("failed").Set(float64(result.Failed))
	if result.Streamed {
		return
	}
	for _, prefix := range result.Prefixes.Top(result.TopN) {
		textfile.prefixes.WithLabelValues(prefix.Prefix).Set(float64(prefix.Count))
	}
}

// ObserveClients sets the per ip connection gauges
func (textfile *Textfile) ObserveClients(summary []model.ClientCount) {
	for _, client := range summary {
		textfile.clients.WithLabelValues(client.IP).Set(float64(client.Count))
	}
}

// Gatherer exposes the private registry
func (textfile *Textfile) Gatherer() prometheus.Gatherer {
	return textfile.registry
}

// Write stamps the run time and atomically replaces `path`
func (textfile *Textfile) Write(path string) error {
	textfile.lastRun.SetToCurrentTime()
	if err := prometheus.WriteToTextfile(path, textfile.registry); err != nil {
		return fmt.Errorf("write textfile %s: %w", path, err)
	}
	return nil
}
