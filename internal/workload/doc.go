// Package workload derives TA workload metrics from stored assignments:
// per-TA snapshots with utilization, deadline tracking, and threshold-based
// alerts. All metrics are computed on read; the package stores nothing.
package workload
