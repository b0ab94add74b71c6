// Pre-registered metrics for the planner queue and executor
//
// Copyright (C) 2026 Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package metrics

// PlannerMetrics bundles the metrics the planner core records.
type PlannerMetrics struct {
	// Queue activity
	Commits *Counter
	Frees   *Counter
	Ungets  *Counter
	Flushes *Counter

	// Fatal alarms raised (pool exhaustion, internal errors)
	Alarms *Counter

	// Current queue occupancy
	BuffersAvailable *Gauge

	// Consumer activity
	ExecCalls *Counter
	Segments  *Counter
	Dwells    *Counter
	CycleEnds *Counter
}

// NewPlannerMetrics registers the planner metric set on a registry.
func NewPlannerMetrics(r *Registry) *PlannerMetrics {
	return &PlannerMetrics{
		Commits: r.Counter("planner_commits_total",
			"Blocks committed to the planner queue"),
		Frees: r.Counter("planner_frees_total",
			"Run buffers freed back to the pool"),
		Ungets: r.Counter("planner_ungets_total",
			"Write buffers rolled back before commit"),
		Flushes: r.Counter("planner_flushes_total",
			"Planner queue flushes"),
		Alarms: r.Counter("planner_alarms_total",
			"Fatal alarms raised by the planner"),
		BuffersAvailable: r.Gauge("planner_buffers_available",
			"Empty blocks in the buffer pool"),
		ExecCalls: r.Counter("executor_exec_calls_total",
			"Execution attempts by the consumer context"),
		Segments: r.Counter("executor_segments_total",
			"Motion segments handed to the stepper layer"),
		Dwells: r.Counter("executor_dwells_total",
			"Dwells handed to the stepper layer"),
		CycleEnds: r.Counter("executor_cycle_ends_total",
			"Cycle-end notifications on queue drain"),
	}
}
