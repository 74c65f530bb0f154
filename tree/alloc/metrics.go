package alloc

import (
	"sort"

	"github.com/prometheus/client_golang/prometheus"
)

// Reporter exposes allocator statistics by name.
type Reporter interface {
	Report() map[string]float64
}

// Collector exposes a Reporter as Prometheus gauges.
// Every gauge carries an "allocator" label with the allocator name.
type Collector struct {
	namespace string
	name      string
	r         Reporter
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector builds a collector over r, labelled with a's name.
// Gauges are named <namespace>_alloc_<stat>.
func NewCollector(namespace string, r Reporter, a Allocator) *Collector {
	return &Collector{namespace: namespace, name: a.Name(), r: r}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	prometheus.DescribeByCollect(c, ch)
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	report := c.r.Report()
	keys := make([]string, 0, len(report))
	for k := range report {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		desc := prometheus.NewDesc(
			prometheus.BuildFQName(c.namespace, "alloc", k),
			"Allocator statistic "+k+".",
			nil,
			prometheus.Labels{"allocator": c.name},
		)
		ch <- prometheus.MustNewConstMetric(desc, prometheus.GaugeValue, report[k])
	}
}
