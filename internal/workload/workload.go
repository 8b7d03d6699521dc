package workload

import (
	"time"

	"talentpipe/internal/store"
)

// Snapshot is a point-in-time view of one TA's workload, derived entirely
// from their profile and assignment set. Nothing in a snapshot is stored.
type Snapshot struct {
	TAID                  string
	TAName                string
	ActiveAssignments     int
	TotalCapacity         int
	UtilizationPercentage float64
	UpcomingDeadlines     []Deadline
	OverdueTasks          []Deadline
	Alerts                []Alert
}

// Deadline is an assignment deadline paired with its assignment reference.
type Deadline struct {
	AssignmentID  string
	RequirementID string
	Due           time.Time
}

// AlertKind classifies workload alerts.
type AlertKind string

const (
	AlertOverloaded    AlertKind = "overloaded"
	AlertUnderutilized AlertKind = "underutilized"
	AlertOverdue       AlertKind = "overdue"
)

// Alert flags a workload condition that deserves attention.
type Alert struct {
	Kind    AlertKind
	Message string
}

// Thresholds configures alert classification. Both comparisons are exclusive:
// a TA at exactly the overloaded threshold is not overloaded, and one at
// exactly the underutilized threshold is not underutilized.
type Thresholds struct {
	Overloaded          float64
	Underutilized       float64
	DeadlineWarningDays int
}

// Derive computes a snapshot from a profile and its assignments as of now.
// Utilization is active count over capacity as a percentage and is not capped
// at 100; a TA with no capacity configured has zero utilization.
func Derive(profile *store.TAProfile, assignments []*store.Assignment, now time.Time, thresholds Thresholds) Snapshot {
	snapshot := Snapshot{
		TAID:          profile.ID,
		TAName:        profile.Name,
		TotalCapacity: profile.MaxWorkload,
	}

	warningWindow := now.AddDate(0, 0, thresholds.DeadlineWarningDays)
	for _, assignment := range assignments {
		if !assignment.IsActive() {
			continue
		}
		snapshot.ActiveAssignments++
		if assignment.Deadline == nil {
			continue
		}
		deadline := Deadline{
			AssignmentID:  assignment.ID,
			RequirementID: assignment.RequirementID,
			Due:           *assignment.Deadline,
		}
		switch {
		case assignment.Deadline.Before(now):
			snapshot.OverdueTasks = append(snapshot.OverdueTasks, deadline)
		case !assignment.Deadline.After(warningWindow):
			snapshot.UpcomingDeadlines = append(snapshot.UpcomingDeadlines, deadline)
		}
	}

	if profile.MaxWorkload > 0 {
		snapshot.UtilizationPercentage = float64(snapshot.ActiveAssignments) / float64(profile.MaxWorkload) * 100
	}
	snapshot.Alerts = classify(snapshot, thresholds)
	return snapshot
}

func classify(snapshot Snapshot, thresholds Thresholds) []Alert {
	var alerts []Alert
	switch {
	case snapshot.UtilizationPercentage > thresholds.Overloaded:
		alerts = append(alerts, Alert{
			Kind:    AlertOverloaded,
			Message: "utilization above overloaded threshold",
		})
	case snapshot.UtilizationPercentage < thresholds.Underutilized:
		alerts = append(alerts, Alert{
			Kind:    AlertUnderutilized,
			Message: "utilization below underutilized threshold",
		})
	}
	if len(snapshot.OverdueTasks) > 0 {
		alerts = append(alerts, Alert{
			Kind:    AlertOverdue,
			Message: "assignments past their deadline",
		})
	}
	return alerts
}

// IsOverloaded reports whether the snapshot carries an overloaded alert.
func (s Snapshot) IsOverloaded() bool {
	return s.hasAlert(AlertOverloaded)
}

// IsUnderutilized reports whether the snapshot carries an underutilized alert.
func (s Snapshot) IsUnderutilized() bool {
	return s.hasAlert(AlertUnderutilized)
}

func (s Snapshot) hasAlert(kind AlertKind) bool {
	for _, alert := range s.Alerts {
		if alert.Kind == kind {
			return true
		}
	}
	return false
}
