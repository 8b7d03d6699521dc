package assignment

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"talentpipe/internal/config"
	"talentpipe/internal/events"
	"talentpipe/internal/logging"
	"talentpipe/internal/services"
	"talentpipe/internal/store"
)

// Notifier receives assignment lifecycle notifications. Implementations must
// not fail the triggering operation; delivery problems are theirs to log.
type Notifier interface {
	AssignmentCreated(ctx context.Context, assignment *store.Assignment, ta *store.TAProfile)
	AssignmentCompleted(ctx context.Context, assignment *store.Assignment)
	CapacityWarning(ctx context.Context, ta *store.TAProfile, activeCount int)
}

// Engine coordinates assignment creation, status transitions, and TA
// collaborations on top of the store, applying the configured capacity
// policy.
type Engine struct {
	store          *store.Store
	bus            *events.Bus
	notifier       Notifier
	logger         *slog.Logger
	capacityPolicy string
	now            func() time.Time
}

// NewEngine builds an engine bound to the store and configuration. The bus
// and notifier may be nil.
func NewEngine(st *store.Store, cfg *config.Config, logger *slog.Logger, bus *events.Bus, notifier Notifier) *Engine {
	return &Engine{
		store:          st,
		bus:            bus,
		notifier:       notifier,
		logger:         logging.NewComponentLogger(logger, "assignment"),
		capacityPolicy: cfg.Assignments.CapacityPolicy,
		now:            time.Now,
	}
}

// AssignRequest describes a new assignment of one TA to one requirement.
// Priority defaults to medium and Type to primary when empty.
type AssignRequest struct {
	TAID          string
	RequirementID string
	ClientID      string
	Priority      store.Priority
	Type          store.AssignmentType
	Deadline      *time.Time
}

func (r *AssignRequest) normalize() error {
	r.TAID = strings.TrimSpace(r.TAID)
	r.RequirementID = strings.TrimSpace(r.RequirementID)
	r.ClientID = strings.TrimSpace(r.ClientID)
	if r.TAID == "" {
		return services.Wrap(services.ErrValidation, "assignment", "assign", "ta id is required", nil)
	}
	if r.RequirementID == "" {
		return services.Wrap(services.ErrValidation, "assignment", "assign", "requirement id is required", nil)
	}
	if r.Priority == "" {
		r.Priority = store.PriorityMedium
	} else if _, ok := store.ParsePriority(string(r.Priority)); !ok {
		return services.Wrap(services.ErrValidation, "assignment", "assign", "unknown priority "+string(r.Priority), nil)
	}
	if r.Type == "" {
		r.Type = store.AssignmentPrimary
	} else if _, ok := store.ParseAssignmentType(string(r.Type)); !ok {
		return services.Wrap(services.ErrValidation, "assignment", "assign", "unknown assignment type "+string(r.Type), nil)
	}
	return nil
}

// Assign creates an active assignment for the TA. The same TA may hold a
// primary and a secondary assignment on one requirement, but never two of the
// same type. Capacity is enforced per the configured policy: strict rejects
// assignments at or beyond the TA's max workload, advisory admits them with a
// warning.
func (e *Engine) Assign(ctx context.Context, req AssignRequest) (*store.Assignment, error) {
	if err := req.normalize(); err != nil {
		return nil, err
	}

	ta, err := e.store.GetTA(ctx, req.TAID)
	if err != nil {
		return nil, err
	}
	if ta == nil {
		return nil, services.Wrap(services.ErrNotFound, "assignment", "assign", "ta "+req.TAID+" does not exist", nil)
	}
	if ta.Status == store.TAInactive {
		return nil, services.Wrap(services.ErrValidation, "assignment", "assign", "ta "+ta.Name+" is inactive", nil)
	}

	existing, err := e.store.FindActiveAssignment(ctx, req.TAID, req.RequirementID, req.Type)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, services.Wrap(services.ErrConflict, "assignment", "assign",
			fmt.Sprintf("ta already holds an active %s assignment for requirement %s", req.Type, req.RequirementID), nil)
	}

	atCapacity := ta.MaxWorkload > 0 && ta.CurrentWorkload >= ta.MaxWorkload
	if atCapacity {
		if e.capacityPolicy == config.CapacityPolicyStrict {
			return nil, services.Wrap(services.ErrValidation, "assignment", "assign",
				fmt.Sprintf("ta %s is at capacity (%d/%d)", ta.Name, ta.CurrentWorkload, ta.MaxWorkload), nil)
		}
		e.logger.Warn("assigning beyond capacity",
			logging.String(logging.FieldTAID, ta.ID),
			logging.Int("active", ta.CurrentWorkload),
			logging.Int("max", ta.MaxWorkload))
	}

	created, err := e.store.InsertAssignment(ctx, &store.Assignment{
		TAID:          req.TAID,
		RequirementID: req.RequirementID,
		ClientID:      req.ClientID,
		Status:        store.StatusActive,
		Priority:      req.Priority,
		Type:          req.Type,
		AssignedAt:    e.now().UTC(),
		Deadline:      req.Deadline,
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("assignment created",
		logging.String(logging.FieldAssignmentID, created.ID),
		logging.String(logging.FieldTAID, created.TAID),
		logging.String("requirement", created.RequirementID),
		logging.String("type", string(created.Type)))
	e.publish(events.Event{
		Type:         events.TypeAssignmentCreated,
		TAID:         created.TAID,
		AssignmentID: created.ID,
		Detail:       created.RequirementID,
	})
	if e.notifier != nil {
		e.notifier.AssignmentCreated(ctx, created, ta)
		if atCapacity {
			e.notifier.CapacityWarning(ctx, ta, ta.CurrentWorkload+1)
		}
	}
	return created, nil
}

// UpdateStatus moves an assignment through its lifecycle. Transitions outside
// the table (active to completed or on hold, and either back to active) are
// rejected; in particular an on-hold assignment must be reactivated before it
// can complete.
func (e *Engine) UpdateStatus(ctx context.Context, assignmentID string, status store.AssignmentStatus) (*store.Assignment, error) {
	if _, ok := store.ParseAssignmentStatus(string(status)); !ok {
		return nil, services.Wrap(services.ErrValidation, "assignment", "update status", "unknown status "+string(status), nil)
	}

	current, err := e.store.GetAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, services.Wrap(services.ErrNotFound, "assignment", "update status",
			"assignment "+assignmentID+" does not exist", nil)
	}
	if current.Status == status {
		return current, nil
	}
	if !store.CanTransition(current.Status, status) {
		return nil, services.Wrap(services.ErrValidation, "assignment", "update status",
			fmt.Sprintf("cannot transition from %s to %s", current.Status, status), nil)
	}

	updated, err := e.store.UpdateAssignmentStatus(ctx, assignmentID, status)
	if err != nil {
		return nil, err
	}

	e.logger.Info("assignment status changed",
		logging.String(logging.FieldAssignmentID, updated.ID),
		logging.String(logging.FieldTAID, updated.TAID),
		logging.String("from", string(current.Status)),
		logging.String("to", string(status)))
	e.publish(events.Event{
		Type:         events.TypeAssignmentStatusChanged,
		TAID:         updated.TAID,
		AssignmentID: updated.ID,
		Detail:       string(status),
	})
	if e.notifier != nil && status == store.StatusCompleted {
		e.notifier.AssignmentCompleted(ctx, updated)
	}
	return updated, nil
}

// CollaborationRequest pairs a secondary TA with the primary TA on an
// existing assignment. Type defaults to primary_secondary.
type CollaborationRequest struct {
	PrimaryTAID      string
	SecondaryTAID    string
	AssignmentID     string
	Type             store.CollaborationType
	Responsibilities map[string]string
}

// FormCollaboration records a collaboration between two distinct TAs on an
// assignment. A TA cannot collaborate with themselves.
func (e *Engine) FormCollaboration(ctx context.Context, req CollaborationRequest) (*store.Collaboration, error) {
	req.PrimaryTAID = strings.TrimSpace(req.PrimaryTAID)
	req.SecondaryTAID = strings.TrimSpace(req.SecondaryTAID)
	req.AssignmentID = strings.TrimSpace(req.AssignmentID)
	if req.PrimaryTAID == "" || req.SecondaryTAID == "" {
		return nil, services.Wrap(services.ErrValidation, "assignment", "form collaboration",
			"both ta ids are required", nil)
	}
	if req.PrimaryTAID == req.SecondaryTAID {
		return nil, services.Wrap(services.ErrInvalidCollaboration, "assignment", "form collaboration",
			"a ta cannot collaborate with themselves", nil)
	}
	if req.Type == "" {
		req.Type = store.CollaborationPrimarySecondary
	} else if _, ok := store.ParseCollaborationType(string(req.Type)); !ok {
		return nil, services.Wrap(services.ErrValidation, "assignment", "form collaboration",
			"unknown collaboration type "+string(req.Type), nil)
	}

	target, err := e.store.GetAssignment(ctx, req.AssignmentID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, services.Wrap(services.ErrNotFound, "assignment", "form collaboration",
			"assignment "+req.AssignmentID+" does not exist", nil)
	}
	for _, taID := range []string{req.PrimaryTAID, req.SecondaryTAID} {
		ta, err := e.store.GetTA(ctx, taID)
		if err != nil {
			return nil, err
		}
		if ta == nil {
			return nil, services.Wrap(services.ErrNotFound, "assignment", "form collaboration",
				"ta "+taID+" does not exist", nil)
		}
	}

	created, err := e.store.InsertCollaboration(ctx, &store.Collaboration{
		PrimaryTAID:      req.PrimaryTAID,
		SecondaryTAID:    req.SecondaryTAID,
		AssignmentID:     req.AssignmentID,
		Type:             req.Type,
		Responsibilities: req.Responsibilities,
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("collaboration formed",
		logging.String(logging.FieldAssignmentID, created.AssignmentID),
		logging.String("primary_ta", created.PrimaryTAID),
		logging.String("secondary_ta", created.SecondaryTAID),
		logging.String("type", string(created.Type)))
	e.publish(events.Event{
		Type:         events.TypeCollaborationFormed,
		TAID:         created.PrimaryTAID,
		AssignmentID: created.AssignmentID,
		Detail:       string(created.Type),
	})
	return created, nil
}

func (e *Engine) publish(event events.Event) {
	if e.bus != nil {
		e.bus.Publish(event)
	}
}
