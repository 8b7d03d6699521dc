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

const taColumns = "id, name, email, status, efficiency_score, max_workload, skills_json, created_at, updated_at"

// CreateTA inserts a new TA profile. Email must be unique; max_workload must
// be positive so utilization stays well-defined.
func (s *Store) CreateTA(ctx context.Context, profile *TAProfile) (*TAProfile, error) {
	if profile == nil {
		return nil, services.Wrap(services.ErrValidation, "store", "create ta", "profile is nil", nil)
	}
	if strings.TrimSpace(profile.Name) == "" {
		return nil, services.Wrap(services.ErrValidation, "store", "create ta", "name is required", nil)
	}
	if strings.TrimSpace(profile.Email) == "" {
		return nil, services.Wrap(services.ErrValidation, "store", "create ta", "email is required", nil)
	}
	if profile.MaxWorkload <= 0 {
		return nil, services.Wrap(services.ErrValidation, "store", "create ta", "max_workload must be positive", nil)
	}

	status := profile.Status
	if status == "" {
		status = TAActive
	}
	var skillsJSON any
	if len(profile.Skills) > 0 {
		data, err := json.Marshal(profile.Skills)
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, "store", "create ta", "marshal skills", err)
		}
		skillsJSON = string(data)
	}

	id := uuid.NewString()
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := s.execWithRetry(
		ctx,
		`INSERT INTO ta_profiles (id, name, email, status, efficiency_score, max_workload, skills_json, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		profile.Name,
		profile.Email,
		status,
		profile.EfficiencyScore,
		profile.MaxWorkload,
		skillsJSON,
		timestamp,
		timestamp,
	); err != nil {
		if isUniqueViolation(err) {
			return nil, services.Wrap(services.ErrConflict, "store", "create ta",
				"a profile with email "+profile.Email+" already exists", err)
		}
		return nil, persistErr("create ta", "insert", err)
	}
	return s.GetTA(ctx, id)
}

// GetTA fetches a TA profile by identifier, (nil, nil) when absent. The
// returned profile includes the derived current workload.
func (s *Store) GetTA(ctx context.Context, id string) (*TAProfile, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+taColumns+` FROM ta_profiles WHERE id = ?`, id)
	profile, err := scanTA(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, persistErr("get ta", id, err)
	}
	count, err := s.ActiveAssignmentCount(ctx, id)
	if err != nil {
		return nil, err
	}
	profile.CurrentWorkload = count
	return profile, nil
}

// ListTAs returns all TA profiles ordered by name, each with its derived
// current workload.
func (s *Store) ListTAs(ctx context.Context) ([]*TAProfile, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+taColumns+` FROM ta_profiles ORDER BY name`)
	if err != nil {
		return nil, persistErr("list tas", "", err)
	}
	defer rows.Close()

	var profiles []*TAProfile
	for rows.Next() {
		profile, err := scanTA(rows)
		if err != nil {
			return nil, persistErr("list tas", "scan", err)
		}
		profiles = append(profiles, profile)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("list tas", "iterate", err)
	}

	for _, profile := range profiles {
		count, err := s.ActiveAssignmentCount(ctx, profile.ID)
		if err != nil {
			return nil, err
		}
		profile.CurrentWorkload = count
	}
	return profiles, nil
}

// UpdateTA persists changes to workload-relevant profile fields.
func (s *Store) UpdateTA(ctx context.Context, profile *TAProfile) error {
	if profile == nil || profile.ID == "" {
		return services.Wrap(services.ErrValidation, "store", "update ta", "profile id is required", nil)
	}
	if profile.MaxWorkload <= 0 {
		return services.Wrap(services.ErrValidation, "store", "update ta", "max_workload must be positive", nil)
	}

	var skillsJSON any
	if len(profile.Skills) > 0 {
		data, err := json.Marshal(profile.Skills)
		if err != nil {
			return services.Wrap(services.ErrValidation, "store", "update ta", "marshal skills", err)
		}
		skillsJSON = string(data)
	}

	res, err := s.execWithRetry(
		ctx,
		`UPDATE ta_profiles
         SET name = ?, email = ?, status = ?, efficiency_score = ?, max_workload = ?, skills_json = ?, updated_at = ?
         WHERE id = ?`,
		profile.Name,
		profile.Email,
		profile.Status,
		profile.EfficiencyScore,
		profile.MaxWorkload,
		skillsJSON,
		time.Now().UTC().Format(time.RFC3339Nano),
		profile.ID,
	)
	if err != nil {
		return persistErr("update ta", profile.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return persistErr("update ta", "rows affected", err)
	}
	if affected == 0 {
		return services.Wrap(services.ErrNotFound, "store", "update ta", "profile "+profile.ID+" does not exist", nil)
	}
	return nil
}

// ActiveAssignmentCount returns the number of active assignments for a TA.
func (s *Store) ActiveAssignmentCount(ctx context.Context, taID string) (int, error) {
	var count int
	row := s.db.QueryRowContext(
		ctx,
		`SELECT COUNT(1) FROM assignments WHERE ta_id = ? AND status = ?`,
		taID,
		StatusActive,
	)
	if err := row.Scan(&count); err != nil {
		return 0, persistErr("active assignment count", taID, err)
	}
	return count, nil
}

func scanTA(scanner interface{ Scan(dest ...any) error }) (*TAProfile, error) {
	var (
		id         string
		name       string
		email      string
		status     string
		efficiency float64
		maxLoad    int
		skillsJSON sql.NullString
		createdRaw string
		updatedRaw string
	)
	if err := scanner.Scan(&id, &name, &email, &status, &efficiency, &maxLoad, &skillsJSON, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}

	profile := &TAProfile{
		ID:              id,
		Name:            name,
		Email:           email,
		Status:          TAStatus(status),
		EfficiencyScore: efficiency,
		MaxWorkload:     maxLoad,
	}
	if skillsJSON.Valid && skillsJSON.String != "" {
		if err := json.Unmarshal([]byte(skillsJSON.String), &profile.Skills); err != nil {
			return nil, err
		}
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		profile.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		profile.UpdatedAt = updated
	}
	return profile, nil
}
