// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package metrics adapts the teacher's Metrics{Registry}/Register idiom
// into two concrete prometheus collectors for this domain: allocator depth
// growth and hub connection fan-out.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the registerer every collector in this package registers
// itself against.
type Metrics struct {
	Registry prometheus.Registerer
}

// NewMetrics wraps reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{Registry: reg}
}

// Register registers an arbitrary prometheus collector.
func (m *Metrics) Register(c prometheus.Collector) error {
	return m.Registry.Register(c)
}

// AllocatorCollector tracks how deep minted identifiers grow, the
// observable signature of the direction-bit strategy working as intended
// (spec §9: "expected identifier length poly-logarithmic").
type AllocatorCollector struct {
	minted prometheus.Counter
	depth  prometheus.Histogram
}

// NewAllocatorCollector registers and returns an AllocatorCollector.
func NewAllocatorCollector(reg prometheus.Registerer) (*AllocatorCollector, error) {
	minted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "lseq_ids_minted_total",
		Help: "Total identifiers minted by this allocator.",
	})
	depth := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "lseq_id_depth",
		Help:    "Depth (number of levels) of minted identifiers.",
		Buckets: prometheus.LinearBuckets(1, 1, 12),
	})
	if err := reg.Register(minted); err != nil {
		return nil, err
	}
	if err := reg.Register(depth); err != nil {
		return nil, err
	}
	return &AllocatorCollector{minted: minted, depth: depth}, nil
}

// Observe implements alloc.Observer.
func (c *AllocatorCollector) Observe(depth int) {
	c.minted.Inc()
	c.depth.Observe(float64(depth))
}

// HubCollector tracks the broadcast hub's fan-out.
type HubCollector struct {
	connected prometheus.Gauge
	relayed   prometheus.Counter
}

// NewHubCollector registers and returns a HubCollector.
func NewHubCollector(reg prometheus.Registerer) (*HubCollector, error) {
	connected := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "lseq_hub_connected_replicas",
		Help: "Number of replicas currently connected to the hub.",
	})
	relayed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "lseq_hub_frames_relayed_total",
		Help: "Total frames relayed by the hub.",
	})
	if err := reg.Register(connected); err != nil {
		return nil, err
	}
	if err := reg.Register(relayed); err != nil {
		return nil, err
	}
	return &HubCollector{connected: connected, relayed: relayed}, nil
}

// SetConnected records the current number of connected replicas.
func (c *HubCollector) SetConnected(n int) {
	c.connected.Set(float64(n))
}

// IncRelayed counts one relayed frame.
func (c *HubCollector) IncRelayed() {
	c.relayed.Inc()
}
