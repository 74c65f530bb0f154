package main

import (
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/joshuapare/ownkit/tree/alloc"
)

const metricsNamespace = "ownctl"

// stat is one gathered allocator gauge.
type stat struct {
	Name      string  `json:"name"`
	Allocator string  `json:"allocator"`
	Value     float64 `json:"value"`
}

// gatherStats registers a collector per backend and gathers their gauges
// through a Prometheus registry.
func gatherStats(counting *alloc.Counting, b *backend) ([]stat, error) {
	reg := prometheus.NewPedanticRegistry()
	collectors := []prometheus.Collector{alloc.NewCollector(metricsNamespace, counting, counting)}
	if b.report != nil {
		collectors = append(collectors, alloc.NewCollector(metricsNamespace, b.report, b.Allocator))
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register collector: %w", err)
		}
	}

	families, err := reg.Gather()
	if err != nil {
		return nil, fmt.Errorf("gather allocator stats: %w", err)
	}
	var stats []stat
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			s := stat{Name: mf.GetName(), Value: m.GetGauge().GetValue()}
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "allocator" {
					s.Allocator = lp.GetValue()
				}
			}
			stats = append(stats, s)
		}
	}
	return stats, nil
}

func printStats(st styles, stats []stat) {
	printInfo("\n%s\n", st.title.Render("allocator stats"))
	width := 0
	for _, s := range stats {
		width = max(width, len(s.Name)+len(s.Allocator)+4)
	}
	for _, s := range stats {
		label := fmt.Sprintf("%s{%s}", s.Name, s.Allocator)
		printInfo("%s\n", st.row(label, width+1, strconv.FormatFloat(s.Value, 'f', -1, 64)))
	}
}
