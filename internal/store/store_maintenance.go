package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"time"
)

var expectedTables = []string{
	"pipelines",
	"pipeline_templates",
	"ta_profiles",
	"assignments",
	"collaborations",
}

// Stats returns a count of assignments grouped by status.
func (s *Store) Stats(ctx context.Context) (map[AssignmentStatus]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM assignments GROUP BY status`)
	if err != nil {
		return nil, persistErr("stats", "", err)
	}
	defer rows.Close()

	stats := make(map[AssignmentStatus]int)
	for rows.Next() {
		var status AssignmentStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, persistErr("stats", "scan", err)
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

// Health aggregates assignment state for diagnostic output.
func (s *Store) Health(ctx context.Context) (HealthSummary, error) {
	stats, err := s.Stats(ctx)
	if err != nil {
		return HealthSummary{}, err
	}
	health := HealthSummary{}
	for status, count := range stats {
		health.Total += count
		switch status {
		case StatusActive:
			health.Active += count
		case StatusOnHold:
			health.OnHold += count
		case StatusCompleted:
			health.Completed += count
		}
	}

	var overdue int
	row := s.db.QueryRowContext(
		ctx,
		`SELECT COUNT(1) FROM assignments WHERE status = ? AND deadline IS NOT NULL AND deadline < ?`,
		StatusActive,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err := row.Scan(&overdue); err != nil {
		return HealthSummary{}, persistErr("health", "overdue count", err)
	}
	health.Overdue = overdue
	return health, nil
}

// CheckHealth returns diagnostic information about the database.
func (s *Store) CheckHealth(ctx context.Context) (DatabaseHealth, error) {
	health := DatabaseHealth{DBPath: s.path}

	if s.path == "" {
		return health, errors.New("database path is unknown")
	}

	info, err := os.Stat(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			health.DatabaseExists = false
			return health, nil
		}
		return health, persistErr("check health", "stat database", err)
	}
	if info.IsDir() {
		return health, errors.New("database path is a directory")
	}
	health.DatabaseExists = true

	if s.db == nil {
		return health, errors.New("database connection unavailable")
	}

	connCtx, cancel := context.WithTimeout(ensureContext(ctx), 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(connCtx); err != nil {
		health.Error = err.Error()
		return health, persistErr("check health", "ping database", err)
	}
	health.DatabaseReadable = true

	for _, table := range expectedTables {
		var name string
		row := s.db.QueryRowContext(connCtx, "SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table)
		if err := row.Scan(&name); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				health.MissingTables = append(health.MissingTables, table)
				continue
			}
			health.Error = err.Error()
			return health, persistErr("check health", "query table info", err)
		}
		health.TablesPresent = append(health.TablesPresent, name)
	}

	if len(health.MissingTables) == 0 {
		row := s.db.QueryRowContext(connCtx, "SELECT COUNT(1) FROM assignments")
		if err := row.Scan(&health.TotalAssignments); err != nil {
			health.Error = err.Error()
			return health, persistErr("check health", "count assignments", err)
		}
		row = s.db.QueryRowContext(connCtx, "SELECT COUNT(1) FROM pipelines")
		if err := row.Scan(&health.TotalPipelines); err != nil {
			health.Error = err.Error()
			return health, persistErr("check health", "count pipelines", err)
		}
	}

	return health, nil
}
