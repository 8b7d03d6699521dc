package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"talentpipe/internal/services"
)

const assignmentColumns = "id, ta_id, requirement_id, client_id, status, priority, assignment_type, assigned_at, deadline, updated_at"

// InsertAssignment persists a new assignment. The store assigns the
// identifier and timestamps; the caller is responsible for lifecycle rules.
func (s *Store) InsertAssignment(ctx context.Context, assignment *Assignment) (*Assignment, error) {
	if assignment == nil {
		return nil, services.Wrap(services.ErrValidation, "store", "insert assignment", "assignment is nil", nil)
	}

	id := uuid.NewString()
	now := time.Now().UTC()
	assignedAt := assignment.AssignedAt
	if assignedAt.IsZero() {
		assignedAt = now
	}

	if _, err := s.execWithRetry(
		ctx,
		`INSERT INTO assignments (id, ta_id, requirement_id, client_id, status, priority, assignment_type, assigned_at, deadline, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		assignment.TAID,
		assignment.RequirementID,
		assignment.ClientID,
		assignment.Status,
		assignment.Priority,
		assignment.Type,
		assignedAt.Format(time.RFC3339Nano),
		nullableTime(assignment.Deadline),
		now.Format(time.RFC3339Nano),
	); err != nil {
		return nil, persistErr("insert assignment", "", err)
	}
	return s.GetAssignment(ctx, id)
}

// GetAssignment fetches an assignment by identifier, (nil, nil) when absent.
func (s *Store) GetAssignment(ctx context.Context, id string) (*Assignment, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+assignmentColumns+` FROM assignments WHERE id = ?`, id)
	assignment, err := scanAssignment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, persistErr("get assignment", id, err)
	}
	return assignment, nil
}

// UpdateAssignmentStatus persists a status change. The caller must have
// validated the transition.
func (s *Store) UpdateAssignmentStatus(ctx context.Context, id string, status AssignmentStatus) (*Assignment, error) {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE assignments SET status = ?, updated_at = ? WHERE id = ?`,
		status,
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
	)
	if err != nil {
		return nil, persistErr("update assignment status", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, persistErr("update assignment status", "rows affected", err)
	}
	if affected == 0 {
		return nil, services.Wrap(services.ErrNotFound, "store", "update assignment status",
			"assignment "+id+" does not exist", nil)
	}
	return s.GetAssignment(ctx, id)
}

// AssignmentsByTA returns a TA's assignments, optionally filtered by status.
func (s *Store) AssignmentsByTA(ctx context.Context, taID string, statuses ...AssignmentStatus) ([]*Assignment, error) {
	baseQuery := `SELECT ` + assignmentColumns + ` FROM assignments WHERE ta_id = ?`
	orderClause := ` ORDER BY assigned_at`
	args := []any{taID}

	query := baseQuery + orderClause
	if len(statuses) > 0 {
		placeholders := makePlaceholders(len(statuses))
		query = baseQuery + ` AND status IN (` + placeholders + `)` + orderClause
		for _, status := range statuses {
			args = append(args, status)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, persistErr("assignments by ta", taID, err)
	}
	defer rows.Close()

	return collectAssignments(rows)
}

// ListAssignments returns assignments filtered by status set (or all when no
// status is provided), ordered by assignment time.
func (s *Store) ListAssignments(ctx context.Context, statuses ...AssignmentStatus) ([]*Assignment, error) {
	baseQuery := `SELECT ` + assignmentColumns + ` FROM assignments`
	orderClause := ` ORDER BY assigned_at`

	var (
		rows *sql.Rows
		err  error
	)
	if len(statuses) == 0 {
		rows, err = s.db.QueryContext(ctx, baseQuery+orderClause)
	} else {
		placeholders := makePlaceholders(len(statuses))
		args := make([]any, len(statuses))
		for i, status := range statuses {
			args[i] = status
		}
		rows, err = s.db.QueryContext(ctx, baseQuery+` WHERE status IN (`+placeholders+`)`+orderClause, args...)
	}
	if err != nil {
		return nil, persistErr("list assignments", "", err)
	}
	defer rows.Close()

	return collectAssignments(rows)
}

// FindActiveAssignment returns an active assignment of the given TA to the
// given requirement with the given type, or (nil, nil) when none exists.
// Used for duplicate detection before creating a new assignment.
func (s *Store) FindActiveAssignment(ctx context.Context, taID, requirementID string, assignmentType AssignmentType) (*Assignment, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+assignmentColumns+` FROM assignments
         WHERE ta_id = ? AND requirement_id = ? AND assignment_type = ? AND status = ?
         ORDER BY assigned_at LIMIT 1`,
		taID,
		requirementID,
		assignmentType,
		StatusActive,
	)
	assignment, err := scanAssignment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, persistErr("find active assignment", taID, err)
	}
	return assignment, nil
}

func collectAssignments(rows *sql.Rows) ([]*Assignment, error) {
	var assignments []*Assignment
	for rows.Next() {
		assignment, err := scanAssignment(rows)
		if err != nil {
			return nil, persistErr("scan assignment", "", err)
		}
		assignments = append(assignments, assignment)
	}
	return assignments, rows.Err()
}

func scanAssignment(scanner interface{ Scan(dest ...any) error }) (*Assignment, error) {
	var (
		id            string
		taID          string
		requirementID string
		clientID      string
		status        string
		priority      string
		assignType    string
		assignedRaw   string
		deadlineRaw   sql.NullString
		updatedRaw    string
	)
	if err := scanner.Scan(&id, &taID, &requirementID, &clientID, &status, &priority, &assignType, &assignedRaw, &deadlineRaw, &updatedRaw); err != nil {
		return nil, err
	}

	assignment := &Assignment{
		ID:            id,
		TAID:          taID,
		RequirementID: requirementID,
		ClientID:      clientID,
		Status:        AssignmentStatus(status),
		Priority:      Priority(priority),
		Type:          AssignmentType(assignType),
	}
	if assigned, err := parseTimeString(assignedRaw); err == nil {
		assignment.AssignedAt = assigned
	}
	if deadlineRaw.Valid {
		if deadline, err := parseTimeString(deadlineRaw.String); err == nil {
			assignment.Deadline = &deadline
		}
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		assignment.UpdatedAt = updated
	}
	return assignment, nil
}
