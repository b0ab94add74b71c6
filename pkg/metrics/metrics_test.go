package metrics

import (
	"strings"
	"sync"
	"testing"
)

func TestCounter(t *testing.T) {
	var c Counter
	c.Inc()
	c.Add(2.5)
	if got := c.Value(); got != 3.5 {
		t.Errorf("value = %v, want 3.5", got)
	}

	// Counters are monotonic; negative deltas are ignored.
	c.Add(-1)
	if got := c.Value(); got != 3.5 {
		t.Errorf("value after negative add = %v, want 3.5", got)
	}
}

func TestGauge(t *testing.T) {
	var g Gauge
	g.Set(10)
	g.Inc()
	g.Dec()
	g.Dec()
	if got := g.Value(); got != 9 {
		t.Errorf("value = %v, want 9", got)
	}
}

func TestCounterConcurrent(t *testing.T) {
	var c Counter
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				c.Inc()
			}
		}()
	}
	wg.Wait()
	if got := c.Value(); got != 8000 {
		t.Errorf("value = %v, want 8000", got)
	}
}

func TestRegistryDeduplicates(t *testing.T) {
	r := NewRegistry()
	a := r.Counter("x_total", "")
	b := r.Counter("x_total", "other help")
	if a != b {
		t.Error("same name returned distinct counters")
	}
}

func TestRender(t *testing.T) {
	r := NewRegistry()
	r.Counter("planner_commits_total", "Blocks committed").Add(3)
	r.Gauge("planner_buffers_available", "Empty blocks").Set(28)

	out := r.Render()
	for _, want := range []string{
		"# HELP planner_commits_total Blocks committed",
		"# TYPE planner_commits_total counter",
		"planner_commits_total 3",
		"# TYPE planner_buffers_available gauge",
		"planner_buffers_available 28",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("render missing %q:\n%s", want, out)
		}
	}
}

func TestRenderFractional(t *testing.T) {
	r := NewRegistry()
	r.Gauge("g", "").Set(0.25)
	if !strings.Contains(r.Render(), "g 0.25") {
		t.Errorf("fractional value mangled:\n%s", r.Render())
	}
}

func TestPlannerMetricsRegistered(t *testing.T) {
	r := NewRegistry()
	pm := NewPlannerMetrics(r)

	pm.Commits.Inc()
	pm.BuffersAvailable.Set(31)

	out := r.Render()
	if !strings.Contains(out, "planner_commits_total 1") {
		t.Errorf("commit counter not rendered:\n%s", out)
	}
	if !strings.Contains(out, "planner_buffers_available 31") {
		t.Errorf("gauge not rendered:\n%s", out)
	}
}
