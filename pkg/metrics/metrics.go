// Metrics collection for the motion controller
//
// Provides counters and gauges rendered in Prometheus text format. The
// planner and executor record queue and scheduling activity here; scraping
// or shipping the output is up to the embedding application.
//
// Copyright (C) 2026 Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package metrics

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
)

// MetricType represents the type of metric
type MetricType int

const (
	TypeCounter MetricType = iota
	TypeGauge
)

func (t MetricType) String() string {
	switch t {
	case TypeCounter:
		return "counter"
	case TypeGauge:
		return "gauge"
	default:
		return "unknown"
	}
}

// Counter is a monotonically increasing value
type Counter struct {
	bits atomic.Uint64
}

// Inc increments the counter by 1
func (c *Counter) Inc() {
	c.Add(1)
}

// Add increments the counter by delta (delta must be >= 0)
func (c *Counter) Add(delta float64) {
	if delta < 0 {
		return
	}
	for {
		old := c.bits.Load()
		next := math.Float64bits(math.Float64frombits(old) + delta)
		if c.bits.CompareAndSwap(old, next) {
			return
		}
	}
}

// Value returns the counter's current value
func (c *Counter) Value() float64 {
	return math.Float64frombits(c.bits.Load())
}

// Gauge is a value that can go up and down
type Gauge struct {
	bits atomic.Uint64
}

// Set sets the gauge to a value
func (g *Gauge) Set(v float64) {
	g.bits.Store(math.Float64bits(v))
}

// Inc increments the gauge by 1
func (g *Gauge) Inc() {
	g.add(1)
}

// Dec decrements the gauge by 1
func (g *Gauge) Dec() {
	g.add(-1)
}

func (g *Gauge) add(delta float64) {
	for {
		old := g.bits.Load()
		next := math.Float64bits(math.Float64frombits(old) + delta)
		if g.bits.CompareAndSwap(old, next) {
			return
		}
	}
}

// Value returns the gauge's current value
func (g *Gauge) Value() float64 {
	return math.Float64frombits(g.bits.Load())
}

// metric pairs a registered name with its collector
type metric struct {
	name string
	help string
	typ  MetricType
	c    *Counter
	g    *Gauge
}

// Registry holds named metrics and renders them in Prometheus text format
type Registry struct {
	mu      sync.RWMutex
	metrics map[string]*metric
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{metrics: make(map[string]*metric)}
}

// Counter registers (or returns the existing) counter with the given name
func (r *Registry) Counter(name, help string) *Counter {
	r.mu.Lock()
	defer r.mu.Unlock()

	if m, ok := r.metrics[name]; ok && m.c != nil {
		return m.c
	}
	c := &Counter{}
	r.metrics[name] = &metric{name: name, help: help, typ: TypeCounter, c: c}
	return c
}

// Gauge registers (or returns the existing) gauge with the given name
func (r *Registry) Gauge(name, help string) *Gauge {
	r.mu.Lock()
	defer r.mu.Unlock()

	if m, ok := r.metrics[name]; ok && m.g != nil {
		return m.g
	}
	g := &Gauge{}
	r.metrics[name] = &metric{name: name, help: help, typ: TypeGauge, g: g}
	return g
}

// Render returns all metrics in Prometheus text exposition format
func (r *Registry) Render() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.metrics))
	for name := range r.metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	for _, name := range names {
		m := r.metrics[name]
		if m.help != "" {
			fmt.Fprintf(&sb, "# HELP %s %s\n", m.name, m.help)
		}
		fmt.Fprintf(&sb, "# TYPE %s %s\n", m.name, m.typ)

		var v float64
		if m.c != nil {
			v = m.c.Value()
		} else if m.g != nil {
			v = m.g.Value()
		}
		fmt.Fprintf(&sb, "%s %s\n", m.name, formatValue(v))
	}
	return sb.String()
}

// formatValue formats a float the way Prometheus expects
func formatValue(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%g", v)
}
