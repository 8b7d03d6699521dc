package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"talentpipe/internal/services"
)

const collaborationColumns = "id, primary_ta_id, secondary_ta_id, assignment_id, collaboration_type, responsibilities_json, created_at"

// InsertCollaboration persists a collaboration between two TAs on an
// assignment. Identity rules (distinct TAs, existing assignment) belong to the
// assignment engine.
func (s *Store) InsertCollaboration(ctx context.Context, collaboration *Collaboration) (*Collaboration, error) {
	if collaboration == nil {
		return nil, services.Wrap(services.ErrValidation, "store", "insert collaboration", "collaboration is nil", nil)
	}

	var responsibilitiesJSON any
	if len(collaboration.Responsibilities) > 0 {
		data, err := json.Marshal(collaboration.Responsibilities)
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, "store", "insert collaboration", "marshal responsibilities", err)
		}
		responsibilitiesJSON = string(data)
	}

	id := uuid.NewString()
	if _, err := s.execWithRetry(
		ctx,
		`INSERT INTO collaborations (id, primary_ta_id, secondary_ta_id, assignment_id, collaboration_type, responsibilities_json, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id,
		collaboration.PrimaryTAID,
		collaboration.SecondaryTAID,
		collaboration.AssignmentID,
		collaboration.Type,
		responsibilitiesJSON,
		time.Now().UTC().Format(time.RFC3339Nano),
	); err != nil {
		return nil, persistErr("insert collaboration", "", err)
	}
	return s.GetCollaboration(ctx, id)
}

// GetCollaboration fetches a collaboration by identifier, (nil, nil) when absent.
func (s *Store) GetCollaboration(ctx context.Context, id string) (*Collaboration, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+collaborationColumns+` FROM collaborations WHERE id = ?`, id)
	collaboration, err := scanCollaboration(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, persistErr("get collaboration", id, err)
	}
	return collaboration, nil
}

// CollaborationsByAssignment returns the collaborations attached to an assignment.
func (s *Store) CollaborationsByAssignment(ctx context.Context, assignmentID string) ([]*Collaboration, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+collaborationColumns+` FROM collaborations WHERE assignment_id = ? ORDER BY created_at`,
		assignmentID,
	)
	if err != nil {
		return nil, persistErr("collaborations by assignment", assignmentID, err)
	}
	defer rows.Close()

	var collaborations []*Collaboration
	for rows.Next() {
		collaboration, err := scanCollaboration(rows)
		if err != nil {
			return nil, persistErr("collaborations by assignment", "scan", err)
		}
		collaborations = append(collaborations, collaboration)
	}
	return collaborations, rows.Err()
}

func scanCollaboration(scanner interface{ Scan(dest ...any) error }) (*Collaboration, error) {
	var (
		id                   string
		primaryTAID          string
		secondaryTAID        string
		assignmentID         string
		collaborationType    string
		responsibilitiesJSON sql.NullString
		createdRaw           string
	)
	if err := scanner.Scan(&id, &primaryTAID, &secondaryTAID, &assignmentID, &collaborationType, &responsibilitiesJSON, &createdRaw); err != nil {
		return nil, err
	}

	collaboration := &Collaboration{
		ID:            id,
		PrimaryTAID:   primaryTAID,
		SecondaryTAID: secondaryTAID,
		AssignmentID:  assignmentID,
		Type:          CollaborationType(collaborationType),
	}
	if responsibilitiesJSON.Valid && responsibilitiesJSON.String != "" {
		if err := json.Unmarshal([]byte(responsibilitiesJSON.String), &collaboration.Responsibilities); err != nil {
			return nil, err
		}
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		collaboration.CreatedAt = created
	}
	return collaboration, nil
}
