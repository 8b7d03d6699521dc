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

const templateColumns = "id, name, created_from_role, stages_json, created_at"

// SaveTemplate snapshots a stage list under a reusable name. The stages are
// deep-copied before marshaling so later pipeline edits cannot reach the
// template. A duplicate name is a conflict.
func (s *Store) SaveTemplate(ctx context.Context, name, createdFromRole string, stages []Stage) (*Template, error) {
	if name == "" {
		return nil, services.Wrap(services.ErrValidation, "store", "save template", "name is required", nil)
	}
	stagesJSON, err := json.Marshal(CloneStages(stages))
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "store", "save template", "marshal stages", err)
	}

	id := uuid.NewString()
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := s.execWithRetry(
		ctx,
		`INSERT INTO pipeline_templates (id, name, created_from_role, stages_json, created_at)
         VALUES (?, ?, ?, ?, ?)`,
		id,
		name,
		createdFromRole,
		string(stagesJSON),
		timestamp,
	); err != nil {
		if isUniqueViolation(err) {
			return nil, services.Wrap(services.ErrConflict, "store", "save template",
				"a template named "+name+" already exists", err)
		}
		return nil, persistErr("save template", "insert", err)
	}
	return s.GetTemplateByName(ctx, name)
}

// GetTemplateByName fetches a template, (nil, nil) when absent.
func (s *Store) GetTemplateByName(ctx context.Context, name string) (*Template, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+templateColumns+` FROM pipeline_templates WHERE name = ?`, name)
	template, err := scanTemplate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, persistErr("get template", name, err)
	}
	return template, nil
}

// ListTemplates returns all templates ordered by creation time.
func (s *Store) ListTemplates(ctx context.Context) ([]*Template, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+templateColumns+` FROM pipeline_templates ORDER BY created_at`)
	if err != nil {
		return nil, persistErr("list templates", "", err)
	}
	defer rows.Close()

	var templates []*Template
	for rows.Next() {
		template, err := scanTemplate(rows)
		if err != nil {
			return nil, persistErr("list templates", "scan", err)
		}
		templates = append(templates, template)
	}
	return templates, rows.Err()
}

// RemoveTemplate deletes a template by name, reporting whether one existed.
func (s *Store) RemoveTemplate(ctx context.Context, name string) (bool, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM pipeline_templates WHERE name = ?`, name)
	if err != nil {
		return false, persistErr("remove template", name, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, persistErr("remove template", "rows affected", err)
	}
	return affected > 0, nil
}

func scanTemplate(scanner interface{ Scan(dest ...any) error }) (*Template, error) {
	var (
		id         string
		name       string
		fromRole   string
		stagesJSON string
		createdRaw string
	)
	if err := scanner.Scan(&id, &name, &fromRole, &stagesJSON, &createdRaw); err != nil {
		return nil, err
	}

	template := &Template{
		ID:              id,
		Name:            name,
		CreatedFromRole: fromRole,
	}
	if err := json.Unmarshal([]byte(stagesJSON), &template.Stages); err != nil {
		return nil, err
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		template.CreatedAt = created
	}
	return template, nil
}
