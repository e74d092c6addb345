package arena

import "github.com/prometheus/client_golang/prometheus"

// Collector exposes a snapshot of the arena state in the prometheus format.
// Register one per arena you want to observe:
//
//	reg.MustRegister(arena.NewCollector(a, "myapp"))
//
// Collect reads the arena without synchronization, so it is only safe while
// the arena itself is used from a single goroutine or behind a caller-owned
// lock.
type Collector struct {
	arena *Arena

	capacityBytes  *prometheus.Desc
	usedBytes      *prometheus.Desc
	availableBytes *prometheus.Desc
	allocations    *prometheus.Desc
	resets         *prometheus.Desc
}

// NewCollector creates a prometheus collector for the target arena.
// The namespace prefixes every metric name and may be empty.
func NewCollector(target *Arena, namespace string) *Collector {
	return &Collector{
		arena: target,
		capacityBytes: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "arena", "capacity_bytes"),
			"Immutable size of the arena backing block in bytes.",
			nil, nil,
		),
		usedBytes: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "arena", "used_bytes"),
			"Bytes consumed from the arena since the last reset, padding included.",
			nil, nil,
		),
		availableBytes: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "arena", "available_bytes"),
			"Bytes still allocatable from the arena.",
			nil, nil,
		),
		allocations: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "arena", "allocations_total"),
			"Successful allocations over the arena lifetime.",
			nil, nil,
		),
		resets: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "arena", "resets_total"),
			"Resets over the arena lifetime, checked and unchecked.",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.capacityBytes
	ch <- c.usedBytes
	ch <- c.availableBytes
	ch <- c.allocations
	ch <- c.resets
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	m := c.arena.Metrics()
	ch <- prometheus.MustNewConstMetric(c.capacityBytes, prometheus.GaugeValue, float64(m.Capacity))
	ch <- prometheus.MustNewConstMetric(c.usedBytes, prometheus.GaugeValue, float64(m.UsedBytes))
	ch <- prometheus.MustNewConstMetric(c.availableBytes, prometheus.GaugeValue, float64(m.AvailableBytes))
	ch <- prometheus.MustNewConstMetric(c.allocations, prometheus.CounterValue, float64(m.CountOfAllocations))
	ch <- prometheus.MustNewConstMetric(c.resets, prometheus.CounterValue, float64(m.CountOfResets))
}
