package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"talentpipe/internal/catalog"
	"talentpipe/internal/config"
	"talentpipe/internal/events"
	"talentpipe/internal/logging"
	"talentpipe/internal/services"
	"talentpipe/internal/store"
)

// Session is one editor's exclusive handle on a role's pipeline. All stage
// mutations are synchronous in-memory edits on a working copy; Save and
// Reload cross the storage boundary. A file lock enforces that only one
// session edits a given role's pipeline at a time.
type Session struct {
	store  *store.Store
	bus    *events.Bus
	logger *slog.Logger
	roleID string
	lock   *flock.Flock

	mu       sync.Mutex
	pipeline *store.Pipeline
}

// NewSession acquires the edit lock for the role and returns a session.
// A role whose pipeline is already being edited yields a conflict error.
func NewSession(st *store.Store, cfg *config.Config, logger *slog.Logger, bus *events.Bus, roleID string) (*Session, error) {
	roleID = strings.TrimSpace(roleID)
	if roleID == "" {
		return nil, services.Wrap(services.ErrValidation, "pipeline", "open session", "role id is required", nil)
	}

	if err := os.MkdirAll(cfg.LockDir(), 0o755); err != nil {
		return nil, services.Wrap(services.ErrPersistence, "pipeline", "open session", "create lock directory", err)
	}
	lock := flock.New(filepath.Join(cfg.LockDir(), "role-"+sanitizeRoleID(roleID)+".lock"))
	acquired, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "pipeline", "open session", "acquire edit lock", err)
	}
	if !acquired {
		return nil, services.Wrap(services.ErrConflict, "pipeline", "open session",
			fmt.Sprintf("pipeline for role %s is being edited by another session", roleID), nil)
	}

	return &Session{
		store:  st,
		bus:    bus,
		logger: logging.NewComponentLogger(logger, "pipeline"),
		roleID: roleID,
		lock:   lock,
	}, nil
}

// Close releases the edit lock. Unsaved edits are discarded.
func (s *Session) Close() error {
	if s == nil || s.lock == nil {
		return nil
	}
	return s.lock.Unlock()
}

// RoleID returns the role this session edits.
func (s *Session) RoleID() string {
	return s.roleID
}

// Load fetches the persisted pipeline for the session's role, seeding the
// default two-stage pipeline when none exists. Absence of data is a valid
// state, not an error.
func (s *Session) Load(ctx context.Context) (*store.Pipeline, error) {
	persisted, err := s.store.GetPipelineByRole(ctx, s.roleID)
	if err != nil {
		return nil, err
	}
	if persisted == nil {
		persisted = &store.Pipeline{
			RoleID: s.roleID,
			Stages: DefaultStages(),
		}
		s.logger.Debug("seeded default pipeline", logging.String(logging.FieldRoleID, s.roleID))
	}

	s.mu.Lock()
	s.pipeline = persisted
	s.mu.Unlock()
	return persisted.Clone(), nil
}

// Pipeline returns a copy of the working pipeline.
func (s *Session) Pipeline() (*store.Pipeline, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pipeline == nil {
		return nil, errNotLoaded("pipeline")
	}
	return s.pipeline.Clone(), nil
}

// Stages returns a copy of the working stage list.
func (s *Session) Stages() ([]store.Stage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pipeline == nil {
		return nil, errNotLoaded("stages")
	}
	return store.CloneStages(s.pipeline.Stages), nil
}

// AddStage appends a new stage derived from the archetype with a freshly
// minted identifier and the next order value.
func (s *Session) AddStage(archetype catalog.Archetype) (store.Stage, error) {
	if strings.TrimSpace(archetype.Name) == "" {
		return store.Stage{}, services.Wrap(services.ErrValidation, "pipeline", "add stage", "archetype name is required", nil)
	}
	if _, ok := catalog.ParseCategory(string(archetype.Category)); !ok {
		return store.Stage{}, services.Wrap(services.ErrValidation, "pipeline", "add stage",
			"unknown category "+string(archetype.Category), nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pipeline == nil {
		return store.Stage{}, errNotLoaded("add stage")
	}

	stage := store.Stage{
		ID:       uuid.NewString(),
		Name:     archetype.Name,
		Category: archetype.Category,
		Order:    len(s.pipeline.Stages) + 1,
	}
	s.pipeline.Stages = append(s.pipeline.Stages, stage)
	s.logger.Debug("stage added",
		logging.String(logging.FieldRoleID, s.roleID),
		logging.String(logging.FieldStageID, stage.ID),
		logging.Int("order", stage.Order))
	return stage.Clone(), nil
}

// RemoveStage deletes the stage and renumbers the remainder 1..N in one step;
// callers never observe a gap.
func (s *Session) RemoveStage(stageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pipeline == nil {
		return errNotLoaded("remove stage")
	}

	index := s.indexOfLocked(stageID)
	if index < 0 {
		return stageNotFound("remove stage", stageID)
	}
	s.pipeline.Stages = append(s.pipeline.Stages[:index], s.pipeline.Stages[index+1:]...)
	renumber(s.pipeline.Stages)
	return nil
}

// Reorder moves the stage at fromIndex to toIndex (zero-based) and renumbers
// all order fields. The move is pure: no stage content changes, only
// positions.
func (s *Session) Reorder(fromIndex, toIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pipeline == nil {
		return errNotLoaded("reorder")
	}

	count := len(s.pipeline.Stages)
	if fromIndex < 0 || fromIndex >= count {
		return services.Wrap(services.ErrValidation, "pipeline", "reorder",
			fmt.Sprintf("from index %d out of range 0..%d", fromIndex, count-1), nil)
	}
	if toIndex < 0 || toIndex >= count {
		return services.Wrap(services.ErrValidation, "pipeline", "reorder",
			fmt.Sprintf("to index %d out of range 0..%d", toIndex, count-1), nil)
	}
	if fromIndex == toIndex {
		return nil
	}

	stages := s.pipeline.Stages
	moved := stages[fromIndex]
	stages = append(stages[:fromIndex], stages[fromIndex+1:]...)
	stages = append(stages, store.Stage{})
	copy(stages[toIndex+1:], stages[toIndex:])
	stages[toIndex] = moved
	s.pipeline.Stages = stages
	renumber(s.pipeline.Stages)
	return nil
}

// UpdateStageConfig replaces the config payload of exactly one stage; every
// other stage is untouched.
func (s *Session) UpdateStageConfig(stageID string, config map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pipeline == nil {
		return errNotLoaded("update stage config")
	}

	index := s.indexOfLocked(stageID)
	if index < 0 {
		return stageNotFound("update stage config", stageID)
	}
	var cp map[string]any
	if config != nil {
		cp = make(map[string]any, len(config))
		for k, v := range config {
			cp[k] = v
		}
	}
	s.pipeline.Stages[index].Config = cp
	return nil
}

// ApplyTemplate replaces the working stage list with a copy of the template's
// stages. Stage identifiers are freshly minted so the pipeline never shares
// stages with the template.
func (s *Session) ApplyTemplate(template *store.Template) error {
	if template == nil {
		return services.Wrap(services.ErrValidation, "pipeline", "apply template", "template is nil", nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pipeline == nil {
		return errNotLoaded("apply template")
	}

	stages := store.CloneStages(template.Stages)
	for i := range stages {
		stages[i].ID = uuid.NewString()
	}
	renumber(stages)
	s.pipeline.Stages = stages
	return nil
}

// Save upserts the working pipeline. The first save creates the record and
// the session retains the assigned identifier for later saves; a save whose
// base version is stale fails with a conflict and leaves both the stored and
// the in-memory pipeline unchanged so the user can reload and retry.
func (s *Session) Save(ctx context.Context) (*store.Pipeline, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pipeline == nil {
		return nil, errNotLoaded("save")
	}

	saved, err := s.store.SavePipeline(ctx, s.pipeline)
	if err != nil {
		return nil, err
	}
	s.pipeline = saved.Clone()
	s.logger.Info("pipeline saved",
		logging.String(logging.FieldRoleID, s.roleID),
		logging.Int("stages", len(saved.Stages)),
		logging.Int("version", int(saved.Version)))
	if s.bus != nil {
		s.bus.Publish(events.Event{Type: events.TypePipelineSaved, RoleID: s.roleID})
	}
	return saved.Clone(), nil
}

// SaveAsTemplate snapshots the working stage list under a reusable name.
// The operation is independent of Save: its failure never unwinds a pipeline
// save, and its success does not persist pipeline edits.
func (s *Session) SaveAsTemplate(ctx context.Context, name string) (*store.Template, error) {
	s.mu.Lock()
	if s.pipeline == nil {
		s.mu.Unlock()
		return nil, errNotLoaded("save template")
	}
	stages := store.CloneStages(s.pipeline.Stages)
	s.mu.Unlock()

	template, err := s.store.SaveTemplate(ctx, strings.TrimSpace(name), s.roleID, stages)
	if err != nil {
		return nil, err
	}
	s.logger.Info("template saved",
		logging.String(logging.FieldRoleID, s.roleID),
		logging.String("template", template.Name))
	if s.bus != nil {
		s.bus.Publish(events.Event{Type: events.TypeTemplateSaved, RoleID: s.roleID, Detail: template.Name})
	}
	return template, nil
}

// Reload discards all in-memory edits since the last successful Load or Save,
// re-fetching from storage (or re-seeding the default pipeline).
func (s *Session) Reload(ctx context.Context) (*store.Pipeline, error) {
	return s.Load(ctx)
}

func (s *Session) indexOfLocked(stageID string) int {
	for i, stage := range s.pipeline.Stages {
		if stage.ID == stageID {
			return i
		}
	}
	return -1
}

// renumber rewrites order values to the contiguous range 1..N, preserving
// relative sequence.
func renumber(stages []store.Stage) {
	for i := range stages {
		stages[i].Order = i + 1
	}
}

func errNotLoaded(operation string) error {
	return services.Wrap(services.ErrValidation, "pipeline", operation, "pipeline not loaded", nil)
}

func stageNotFound(operation, stageID string) error {
	return services.Wrap(services.ErrNotFound, "pipeline", operation, "stage "+stageID+" does not exist", nil)
}

func sanitizeRoleID(roleID string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, roleID)
}

// DefaultStages returns the seeded stage list used when a role has no
// persisted pipeline: Phone Screening then Internal Interview.
func DefaultStages() []store.Stage {
	return []store.Stage{
		{ID: uuid.NewString(), Name: "Phone Screening", Category: catalog.CategoryInternal, Order: 1},
		{ID: uuid.NewString(), Name: "Internal Interview", Category: catalog.CategoryInternal, Order: 2},
	}
}
