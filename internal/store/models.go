package store

import (
	"strings"
	"time"

	"talentpipe/internal/catalog"
)

// AssignmentStatus represents the lifecycle of an assignment.
type AssignmentStatus string

const (
	StatusActive    AssignmentStatus = "active"
	StatusCompleted AssignmentStatus = "completed"
	StatusOnHold    AssignmentStatus = "on_hold"
)

var allAssignmentStatuses = []AssignmentStatus{
	StatusActive,
	StatusCompleted,
	StatusOnHold,
}

var assignmentStatusSet = func() map[AssignmentStatus]struct{} {
	set := make(map[AssignmentStatus]struct{}, len(allAssignmentStatuses))
	for _, status := range allAssignmentStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// allowedTransitions is the assignment status transition table. Completed and
// on-hold assignments must pass through active again; on_hold never moves
// straight to completed.
var allowedTransitions = map[AssignmentStatus][]AssignmentStatus{
	StatusActive:    {StatusCompleted, StatusOnHold},
	StatusOnHold:    {StatusActive},
	StatusCompleted: {StatusActive},
}

// CanTransition reports whether an assignment may move from one status to another.
func CanTransition(from, to AssignmentStatus) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// AllAssignmentStatuses returns the ordered list of known statuses.
func AllAssignmentStatuses() []AssignmentStatus {
	cp := make([]AssignmentStatus, len(allAssignmentStatuses))
	copy(cp, allAssignmentStatuses)
	return cp
}

// ParseAssignmentStatus converts a string into a known AssignmentStatus.
func ParseAssignmentStatus(value string) (AssignmentStatus, bool) {
	normalized := AssignmentStatus(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := assignmentStatusSet[normalized]
	return normalized, ok
}

// Priority orders assignments for TA attention.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// ParsePriority converts a string into a known Priority.
func ParsePriority(value string) (Priority, bool) {
	switch Priority(strings.ToLower(strings.TrimSpace(value))) {
	case PriorityHigh:
		return PriorityHigh, true
	case PriorityMedium:
		return PriorityMedium, true
	case PriorityLow:
		return PriorityLow, true
	default:
		return "", false
	}
}

// AssignmentType distinguishes the owning TA from supporting TAs on a requirement.
type AssignmentType string

const (
	AssignmentPrimary   AssignmentType = "primary"
	AssignmentSecondary AssignmentType = "secondary"
)

// ParseAssignmentType converts a string into a known AssignmentType.
func ParseAssignmentType(value string) (AssignmentType, bool) {
	switch AssignmentType(strings.ToLower(strings.TrimSpace(value))) {
	case AssignmentPrimary:
		return AssignmentPrimary, true
	case AssignmentSecondary:
		return AssignmentSecondary, true
	default:
		return "", false
	}
}

// CollaborationType describes how two TAs split responsibility on a shared assignment.
type CollaborationType string

const (
	CollaborationPrimarySecondary CollaborationType = "primary_secondary"
	CollaborationEqualPartners    CollaborationType = "equal_partners"
	CollaborationMentorMentee     CollaborationType = "mentor_mentee"
)

// ParseCollaborationType converts a string into a known CollaborationType.
func ParseCollaborationType(value string) (CollaborationType, bool) {
	switch CollaborationType(strings.ToLower(strings.TrimSpace(value))) {
	case CollaborationPrimarySecondary:
		return CollaborationPrimarySecondary, true
	case CollaborationEqualPartners:
		return CollaborationEqualPartners, true
	case CollaborationMentorMentee:
		return CollaborationMentorMentee, true
	default:
		return "", false
	}
}

// TAStatus represents whether a TA is available for new assignments.
type TAStatus string

const (
	TAActive   TAStatus = "active"
	TAInactive TAStatus = "inactive"
)

// Stage is one step in a hiring pipeline. Order is dense and unique within a
// pipeline (1..N, no gaps). Config is an opaque stage-specific payload; the
// engine never inspects its shape.
type Stage struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	Category catalog.Category `json:"category"`
	Order    int              `json:"order"`
	Config   map[string]any   `json:"config,omitempty"`
}

// Clone returns a deep copy of the stage, including its config payload.
func (s Stage) Clone() Stage {
	cp := s
	if s.Config != nil {
		cp.Config = make(map[string]any, len(s.Config))
		for k, v := range s.Config {
			cp.Config[k] = v
		}
	}
	return cp
}

// CloneStages deep-copies a stage list.
func CloneStages(stages []Stage) []Stage {
	if stages == nil {
		return nil
	}
	cp := make([]Stage, len(stages))
	for i, stage := range stages {
		cp[i] = stage.Clone()
	}
	return cp
}

// Pipeline is the ordered list of hiring stages configured for one role.
// Version is a monotonic counter bumped on every successful save; stale saves
// are rejected.
type Pipeline struct {
	ID        string
	RoleID    string
	Version   int64
	Stages    []Stage
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Clone returns a deep copy of the pipeline.
func (p *Pipeline) Clone() *Pipeline {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Stages = CloneStages(p.Stages)
	return &cp
}

// Template is a named, reusable snapshot of a stage list. Once created it is
// decoupled from the pipeline it was copied from.
type Template struct {
	ID              string
	Name            string
	CreatedFromRole string
	Stages          []Stage
	CreatedAt       time.Time
}

// TAProfile describes a talent-acquisition staff member. CurrentWorkload is
// derived from active assignments on read, never stored.
type TAProfile struct {
	ID              string
	Name            string
	Email           string
	Status          TAStatus
	EfficiencyScore float64
	CurrentWorkload int
	MaxWorkload     int
	Skills          []string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Assignment associates one TA with one requirement at a client.
type Assignment struct {
	ID            string
	TAID          string
	RequirementID string
	ClientID      string
	Status        AssignmentStatus
	Priority      Priority
	Type          AssignmentType
	AssignedAt    time.Time
	Deadline      *time.Time
	UpdatedAt     time.Time
}

// IsActive reports whether the assignment counts toward workload.
func (a *Assignment) IsActive() bool {
	return a != nil && a.Status == StatusActive
}

// Collaboration is a secondary relationship between two TAs sharing one
// assignment. The two TA references must differ.
type Collaboration struct {
	ID               string
	PrimaryTAID      string
	SecondaryTAID    string
	AssignmentID     string
	Type             CollaborationType
	Responsibilities map[string]string
	CreatedAt        time.Time
}

// HealthSummary describes aggregated assignment counts per lifecycle state.
type HealthSummary struct {
	Total     int
	Active    int
	OnHold    int
	Completed int
	Overdue   int
}

// DatabaseHealth captures diagnostic information about the database.
type DatabaseHealth struct {
	DBPath           string
	DatabaseExists   bool
	DatabaseReadable bool
	TablesPresent    []string
	MissingTables    []string
	TotalAssignments int
	TotalPipelines   int
	Error            string
}
