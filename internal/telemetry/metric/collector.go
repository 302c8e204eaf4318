package metric

import "github.com/prometheus/client_golang/prometheus"

// Collector samples gauges from the running server at scrape time.
type Collector struct {
	keys    func() int
	clients func() int

	keysDesc    *prometheus.Desc
	clientsDesc *prometheus.Desc
}

// NewCollector creates a collector reading the key count and the number of
// connected clients through the given funcs.
func NewCollector(keys, clients func() int) *Collector {
	return &Collector{
		keys:    keys,
		clients: clients,
		keysDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "keys"),
			"Keys currently stored.", nil, nil),
		clientsDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "connected_clients"),
			"Client connections currently open.", nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.keysDesc
	ch <- c.clientsDesc
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.keysDesc, prometheus.GaugeValue, float64(c.keys()))
	ch <- prometheus.MustNewConstMetric(c.clientsDesc, prometheus.GaugeValue, float64(c.clients()))
}
