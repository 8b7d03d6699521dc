package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"talentpipe/internal/services"
)

const pipelineColumns = "id, role_id, version, stages_json, created_at, updated_at"

// GetPipelineByRole fetches the persisted pipeline for a role. Absence of a
// pipeline is a valid state and returns (nil, nil).
func (s *Store) GetPipelineByRole(ctx context.Context, roleID string) (*Pipeline, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+pipelineColumns+` FROM pipelines WHERE role_id = ?`, roleID)
	pipeline, err := scanPipeline(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, persistErr("get pipeline", "role "+roleID, err)
	}
	return pipeline, nil
}

// GetPipelineByID fetches a pipeline by identifier, (nil, nil) when absent.
func (s *Store) GetPipelineByID(ctx context.Context, id string) (*Pipeline, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+pipelineColumns+` FROM pipelines WHERE id = ?`, id)
	pipeline, err := scanPipeline(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, persistErr("get pipeline", "id "+id, err)
	}
	return pipeline, nil
}

// SavePipeline upserts a pipeline. A pipeline without an ID is inserted at
// version 1; one with an ID is updated only when the caller's base version
// matches the stored version, otherwise a conflict error is returned and the
// stored row is left untouched. The refreshed pipeline is returned on success.
func (s *Store) SavePipeline(ctx context.Context, pipeline *Pipeline) (*Pipeline, error) {
	if pipeline == nil {
		return nil, services.Wrap(services.ErrValidation, "store", "save pipeline", "pipeline is nil", nil)
	}
	stagesJSON, err := json.Marshal(pipeline.Stages)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "store", "save pipeline", "marshal stages", err)
	}

	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)

	if pipeline.ID == "" {
		id := uuid.NewString()
		if _, err := s.execWithRetry(
			ctx,
			`INSERT INTO pipelines (id, role_id, version, stages_json, created_at, updated_at)
             VALUES (?, ?, 1, ?, ?, ?)`,
			id,
			pipeline.RoleID,
			string(stagesJSON),
			timestamp,
			timestamp,
		); err != nil {
			if isUniqueViolation(err) {
				return nil, services.Wrap(services.ErrConflict, "store", "save pipeline",
					"a pipeline already exists for role "+pipeline.RoleID, err)
			}
			return nil, persistErr("save pipeline", "insert", err)
		}
		return s.GetPipelineByID(ctx, id)
	}

	res, err := s.execWithRetry(
		ctx,
		`UPDATE pipelines SET stages_json = ?, version = version + 1, updated_at = ?
         WHERE id = ? AND version = ?`,
		string(stagesJSON),
		timestamp,
		pipeline.ID,
		pipeline.Version,
	)
	if err != nil {
		return nil, persistErr("save pipeline", "update", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, persistErr("save pipeline", "rows affected", err)
	}
	if affected == 0 {
		existing, getErr := s.GetPipelineByID(ctx, pipeline.ID)
		if getErr != nil {
			return nil, getErr
		}
		if existing == nil {
			return nil, services.Wrap(services.ErrNotFound, "store", "save pipeline",
				"pipeline "+pipeline.ID+" no longer exists", nil)
		}
		return nil, services.Wrap(services.ErrConflict, "store", "save pipeline",
			"pipeline was modified by another editor", nil)
	}
	return s.GetPipelineByID(ctx, pipeline.ID)
}

// RemovePipeline deletes the pipeline for a role, reporting whether one existed.
func (s *Store) RemovePipeline(ctx context.Context, roleID string) (bool, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM pipelines WHERE role_id = ?`, roleID)
	if err != nil {
		return false, persistErr("remove pipeline", "role "+roleID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, persistErr("remove pipeline", "rows affected", err)
	}
	return affected > 0, nil
}

// ListPipelines returns all pipelines ordered by role.
func (s *Store) ListPipelines(ctx context.Context) ([]*Pipeline, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+pipelineColumns+` FROM pipelines ORDER BY role_id`)
	if err != nil {
		return nil, persistErr("list pipelines", "", err)
	}
	defer rows.Close()

	var pipelines []*Pipeline
	for rows.Next() {
		pipeline, err := scanPipeline(rows)
		if err != nil {
			return nil, persistErr("list pipelines", "scan", err)
		}
		pipelines = append(pipelines, pipeline)
	}
	return pipelines, rows.Err()
}

func scanPipeline(scanner interface{ Scan(dest ...any) error }) (*Pipeline, error) {
	var (
		id         string
		roleID     string
		version    int64
		stagesJSON string
		createdRaw string
		updatedRaw string
	)
	if err := scanner.Scan(&id, &roleID, &version, &stagesJSON, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}

	pipeline := &Pipeline{
		ID:      id,
		RoleID:  roleID,
		Version: version,
	}
	if err := json.Unmarshal([]byte(stagesJSON), &pipeline.Stages); err != nil {
		return nil, err
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		pipeline.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		pipeline.UpdatedAt = updated
	}
	return pipeline, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
