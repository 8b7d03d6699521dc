package workload_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"talentpipe/internal/logging"
	"talentpipe/internal/services"
	"talentpipe/internal/store"
	"talentpipe/internal/testsupport"
	"talentpipe/internal/workload"
)

var testThresholds = workload.Thresholds{
	Overloaded:          90,
	Underutilized:       40,
	DeadlineWarningDays: 7,
}

func activeAssignments(n int) []*store.Assignment {
	assignments := make([]*store.Assignment, n)
	for i := range assignments {
		assignments[i] = &store.Assignment{ID: "a", Status: store.StatusActive}
	}
	return assignments
}

func TestDeriveUtilization(t *testing.T) {
	now := time.Now()
	cases := []struct {
		name        string
		max         int
		active      int
		utilization float64
	}{
		{name: "empty", max: 5, active: 0, utilization: 0},
		{name: "half", max: 10, active: 5, utilization: 50},
		{name: "full", max: 4, active: 4, utilization: 100},
		{name: "beyond capacity", max: 4, active: 5, utilization: 125},
		{name: "no capacity configured", max: 0, active: 3, utilization: 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			profile := &store.TAProfile{ID: "ta", MaxWorkload: tc.max}
			snapshot := workload.Derive(profile, activeAssignments(tc.active), now, testThresholds)
			if snapshot.UtilizationPercentage != tc.utilization {
				t.Fatalf("utilization = %v, want %v", snapshot.UtilizationPercentage, tc.utilization)
			}
			if snapshot.ActiveAssignments != tc.active {
				t.Fatalf("active = %d, want %d", snapshot.ActiveAssignments, tc.active)
			}
		})
	}
}

func TestThresholdComparisonsAreExclusive(t *testing.T) {
	now := time.Now()
	cases := []struct {
		name          string
		max           int
		active        int
		overloaded    bool
		underutilized bool
	}{
		// 9/10 = 90% sits exactly on the threshold and is not overloaded.
		{name: "exactly ninety percent", max: 10, active: 9, overloaded: false, underutilized: false},
		{name: "just above ninety percent", max: 10, active: 10, overloaded: true, underutilized: false},
		// 2/5 = 40% sits exactly on the threshold and is not underutilized.
		{name: "exactly forty percent", max: 5, active: 2, overloaded: false, underutilized: false},
		{name: "below forty percent", max: 5, active: 1, overloaded: false, underutilized: true},
		// No capacity means zero utilization, which reads as underutilized.
		{name: "zero capacity", max: 0, active: 0, overloaded: false, underutilized: true},
		{name: "over one hundred percent", max: 2, active: 3, overloaded: true, underutilized: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			profile := &store.TAProfile{ID: "ta", MaxWorkload: tc.max}
			snapshot := workload.Derive(profile, activeAssignments(tc.active), now, testThresholds)
			if snapshot.IsOverloaded() != tc.overloaded {
				t.Fatalf("overloaded = %v, want %v (utilization %v)", snapshot.IsOverloaded(), tc.overloaded, snapshot.UtilizationPercentage)
			}
			if snapshot.IsUnderutilized() != tc.underutilized {
				t.Fatalf("underutilized = %v, want %v (utilization %v)", snapshot.IsUnderutilized(), tc.underutilized, snapshot.UtilizationPercentage)
			}
		})
	}
}

func TestDeriveDeadlineBuckets(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	overdue := now.AddDate(0, 0, -2)
	soon := now.AddDate(0, 0, 3)
	distant := now.AddDate(0, 0, 30)

	profile := &store.TAProfile{ID: "ta", MaxWorkload: 10}
	assignments := []*store.Assignment{
		{ID: "a-overdue", RequirementID: "r1", Status: store.StatusActive, Deadline: &overdue},
		{ID: "a-soon", RequirementID: "r2", Status: store.StatusActive, Deadline: &soon},
		{ID: "a-distant", RequirementID: "r3", Status: store.StatusActive, Deadline: &distant},
		{ID: "a-none", RequirementID: "r4", Status: store.StatusActive},
		{ID: "a-held", RequirementID: "r5", Status: store.StatusOnHold, Deadline: &overdue},
	}

	snapshot := workload.Derive(profile, assignments, now, testThresholds)
	if len(snapshot.OverdueTasks) != 1 || snapshot.OverdueTasks[0].AssignmentID != "a-overdue" {
		t.Fatalf("overdue = %+v", snapshot.OverdueTasks)
	}
	if len(snapshot.UpcomingDeadlines) != 1 || snapshot.UpcomingDeadlines[0].AssignmentID != "a-soon" {
		t.Fatalf("upcoming = %+v", snapshot.UpcomingDeadlines)
	}
	if snapshot.ActiveAssignments != 4 {
		t.Fatalf("active = %d, want 4 (on-hold excluded)", snapshot.ActiveAssignments)
	}

	var kinds []workload.AlertKind
	for _, alert := range snapshot.Alerts {
		kinds = append(kinds, alert.Kind)
	}
	found := false
	for _, kind := range kinds {
		if kind == workload.AlertOverdue {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected overdue alert, got %v", kinds)
	}
}

func TestAggregatorSnapshotDerivesFromStore(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	aggregator := workload.NewAggregator(st, cfg, logging.NewNop(), nil)
	ctx := context.Background()

	ta := testsupport.NewTA(t, st, "pia", 4)
	testsupport.NewAssignment(t, st, ta.ID, "req-1")
	testsupport.NewAssignment(t, st, ta.ID, "req-2")
	held := testsupport.NewAssignment(t, st, ta.ID, "req-3")
	if _, err := st.UpdateAssignmentStatus(ctx, held.ID, store.StatusOnHold); err != nil {
		t.Fatalf("UpdateAssignmentStatus: %v", err)
	}

	snapshot, err := aggregator.Snapshot(ctx, ta.ID)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snapshot.ActiveAssignments != 2 {
		t.Fatalf("active = %d, want 2", snapshot.ActiveAssignments)
	}
	if snapshot.TotalCapacity != 4 {
		t.Fatalf("capacity = %d, want 4", snapshot.TotalCapacity)
	}
	if snapshot.UtilizationPercentage != 50 {
		t.Fatalf("utilization = %v, want 50", snapshot.UtilizationPercentage)
	}
}

func TestAggregatorSnapshotUnknownTA(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	aggregator := workload.NewAggregator(st, cfg, logging.NewNop(), nil)

	_, err := aggregator.Snapshot(context.Background(), "ghost")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAggregatorOverloadedFiltersRoster(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	aggregator := workload.NewAggregator(st, cfg, logging.NewNop(), nil)
	ctx := context.Background()

	busy := testsupport.NewTA(t, st, "quinn", 1)
	testsupport.NewAssignment(t, st, busy.ID, "req-a")
	testsupport.NewAssignment(t, st, busy.ID, "req-b")
	idle := testsupport.NewTA(t, st, "rosa", 5)
	_ = idle

	overloaded, err := aggregator.Overloaded(ctx)
	if err != nil {
		t.Fatalf("Overloaded: %v", err)
	}
	if len(overloaded) != 1 || overloaded[0].TAID != busy.ID {
		t.Fatalf("overloaded = %+v", overloaded)
	}
	if overloaded[0].UtilizationPercentage != 200 {
		t.Fatalf("utilization = %v, want 200", overloaded[0].UtilizationPercentage)
	}
}
