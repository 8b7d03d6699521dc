package pipeline

import (
	"sync"

	"talentpipe/internal/services"
	"talentpipe/internal/store"
)

// Configurator is a two-state editing surface over a session: idle, or
// editing exactly one stage's config. It exists so interactive callers get a
// guarded open/apply/close flow instead of poking stage configs directly.
type Configurator struct {
	session *Session

	mu      sync.Mutex
	editing *store.Stage
}

// NewConfigurator wraps a session in an idle configurator.
func NewConfigurator(session *Session) *Configurator {
	return &Configurator{session: session}
}

// Open begins editing the given stage and returns a snapshot of it. Opening
// while another stage is being edited is rejected; callers must Close first.
func (c *Configurator) Open(stageID string) (store.Stage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.editing != nil {
		return store.Stage{}, services.Wrap(services.ErrValidation, "configurator", "open",
			"already editing stage "+c.editing.ID, nil)
	}

	stages, err := c.session.Stages()
	if err != nil {
		return store.Stage{}, err
	}
	for _, stage := range stages {
		if stage.ID == stageID {
			snapshot := stage.Clone()
			c.editing = &snapshot
			return snapshot.Clone(), nil
		}
	}
	return store.Stage{}, stageNotFound("open config", stageID)
}

// Editing reports the stage currently open for editing, if any.
func (c *Configurator) Editing() (store.Stage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.editing == nil {
		return store.Stage{}, false
	}
	return c.editing.Clone(), true
}

// Apply writes the config to the stage being edited and returns the
// configurator to idle. Applying to a stage other than the open one, or while
// idle, is rejected; a failed write leaves the configurator editing so the
// caller can retry or Close.
func (c *Configurator) Apply(stageID string, config map[string]any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.editing == nil {
		return services.Wrap(services.ErrValidation, "configurator", "apply", "no stage open for editing", nil)
	}
	if c.editing.ID != stageID {
		return services.Wrap(services.ErrValidation, "configurator", "apply",
			"stage "+stageID+" is not the stage being edited", nil)
	}

	if err := c.session.UpdateStageConfig(stageID, config); err != nil {
		return err
	}
	c.editing = nil
	return nil
}

// Close abandons any in-progress edit and returns to idle. It is safe to call
// in any state.
func (c *Configurator) Close() {
	c.mu.Lock()
	c.editing = nil
	c.mu.Unlock()
}
