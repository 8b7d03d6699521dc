package pipeline_test

import (
	"context"
	"errors"
	"testing"

	"talentpipe/internal/catalog"
	"talentpipe/internal/logging"
	"talentpipe/internal/pipeline"
	"talentpipe/internal/services"
	"talentpipe/internal/store"
	"talentpipe/internal/testsupport"
)

func newSession(t *testing.T, roleID string) (*pipeline.Session, *store.Store) {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	session, err := pipeline.NewSession(st, cfg, logging.NewNop(), nil, roleID)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	t.Cleanup(func() {
		session.Close()
	})
	return session, st
}

func mustLoad(t *testing.T, session *pipeline.Session) *store.Pipeline {
	t.Helper()

	loaded, err := session.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return loaded
}

func assertDenseOrder(t *testing.T, stages []store.Stage) {
	t.Helper()

	for i, stage := range stages {
		if stage.Order != i+1 {
			t.Fatalf("stage %d (%s) has order %d, want %d", i, stage.Name, stage.Order, i+1)
		}
	}
}

func TestLoadSeedsDefaultPipeline(t *testing.T) {
	session, _ := newSession(t, "role-default")

	loaded := mustLoad(t, session)
	if loaded.ID != "" {
		t.Fatalf("unsaved default pipeline should have no id, got %q", loaded.ID)
	}
	if len(loaded.Stages) != 2 {
		t.Fatalf("expected 2 default stages, got %d", len(loaded.Stages))
	}
	if loaded.Stages[0].Name != "Phone Screening" || loaded.Stages[1].Name != "Internal Interview" {
		t.Fatalf("unexpected default stages: %q, %q", loaded.Stages[0].Name, loaded.Stages[1].Name)
	}
	assertDenseOrder(t, loaded.Stages)
}

func TestAddStageAppendsWithNextOrder(t *testing.T) {
	session, _ := newSession(t, "role-add")
	mustLoad(t, session)

	archetype, ok := catalog.Lookup("client-interview")
	if !ok {
		t.Fatal("client-interview archetype missing from catalog")
	}
	added, err := session.AddStage(archetype)
	if err != nil {
		t.Fatalf("AddStage: %v", err)
	}
	if added.Order != 3 {
		t.Fatalf("new stage order = %d, want 3", added.Order)
	}
	if added.ID == "" {
		t.Fatal("new stage should be assigned an id")
	}

	stages, err := session.Stages()
	if err != nil {
		t.Fatalf("Stages: %v", err)
	}
	if len(stages) != 3 {
		t.Fatalf("expected 3 stages, got %d", len(stages))
	}
	assertDenseOrder(t, stages)
}

func TestRemoveStageRenumbersWithoutGaps(t *testing.T) {
	session, _ := newSession(t, "role-remove")
	mustLoad(t, session)
	for _, id := range []string{"technical-assessment", "client-interview", "reference-check"} {
		archetype, _ := catalog.Lookup(id)
		if _, err := session.AddStage(archetype); err != nil {
			t.Fatalf("AddStage(%s): %v", id, err)
		}
	}

	stages, _ := session.Stages()
	removed := stages[2]
	if err := session.RemoveStage(removed.ID); err != nil {
		t.Fatalf("RemoveStage: %v", err)
	}

	stages, _ = session.Stages()
	if len(stages) != 4 {
		t.Fatalf("expected 4 stages after removal, got %d", len(stages))
	}
	assertDenseOrder(t, stages)
	for _, stage := range stages {
		if stage.ID == removed.ID {
			t.Fatalf("removed stage %s still present", removed.ID)
		}
	}
}

func TestRemoveMissingStageIsNotFound(t *testing.T) {
	session, _ := newSession(t, "role-remove-missing")
	mustLoad(t, session)

	err := session.RemoveStage("no-such-stage")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReorderMovesStageAndRenumbers(t *testing.T) {
	session, _ := newSession(t, "role-reorder")
	mustLoad(t, session)
	for _, id := range []string{"technical-assessment", "client-interview"} {
		archetype, _ := catalog.Lookup(id)
		if _, err := session.AddStage(archetype); err != nil {
			t.Fatalf("AddStage(%s): %v", id, err)
		}
	}

	before, _ := session.Stages()
	if err := session.Reorder(3, 0); err != nil {
		t.Fatalf("Reorder: %v", err)
	}

	after, _ := session.Stages()
	if after[0].ID != before[3].ID {
		t.Fatalf("moved stage not at target position: got %s, want %s", after[0].ID, before[3].ID)
	}
	assertDenseOrder(t, after)

	// Moving it back restores the original sequence.
	if err := session.Reorder(0, 3); err != nil {
		t.Fatalf("Reorder back: %v", err)
	}
	restored, _ := session.Stages()
	for i := range before {
		if restored[i].ID != before[i].ID {
			t.Fatalf("position %d: got %s, want %s", i, restored[i].ID, before[i].ID)
		}
	}
}

func TestReorderRejectsOutOfRangeIndexes(t *testing.T) {
	session, _ := newSession(t, "role-reorder-range")
	mustLoad(t, session)

	for _, indexes := range [][2]int{{-1, 0}, {0, 5}, {5, 0}} {
		err := session.Reorder(indexes[0], indexes[1])
		if !errors.Is(err, services.ErrValidation) {
			t.Fatalf("Reorder(%d, %d): expected ErrValidation, got %v", indexes[0], indexes[1], err)
		}
	}
}

func TestUpdateStageConfigTouchesOnlyTargetStage(t *testing.T) {
	session, _ := newSession(t, "role-config")
	mustLoad(t, session)

	stages, _ := session.Stages()
	target := stages[0]
	if err := session.UpdateStageConfig(target.ID, map[string]any{"duration_minutes": 45}); err != nil {
		t.Fatalf("UpdateStageConfig: %v", err)
	}

	updated, _ := session.Stages()
	if updated[0].Config["duration_minutes"] != 45 {
		t.Fatalf("config not applied: %v", updated[0].Config)
	}
	if updated[1].Config != nil {
		t.Fatalf("sibling stage config mutated: %v", updated[1].Config)
	}
	if updated[0].Name != target.Name || updated[0].Order != target.Order {
		t.Fatal("config update changed unrelated stage fields")
	}
}

func TestSaveAssignsIDAndSubsequentSavesBumpVersion(t *testing.T) {
	session, _ := newSession(t, "role-save")
	ctx := context.Background()
	mustLoad(t, session)

	saved, err := session.Save(ctx)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if saved.ID == "" {
		t.Fatal("first save should assign a pipeline id")
	}
	if saved.Version != 1 {
		t.Fatalf("first save version = %d, want 1", saved.Version)
	}

	archetype, _ := catalog.Lookup("reference-check")
	if _, err := session.AddStage(archetype); err != nil {
		t.Fatalf("AddStage: %v", err)
	}
	again, err := session.Save(ctx)
	if err != nil {
		t.Fatalf("second Save: %v", err)
	}
	if again.ID != saved.ID {
		t.Fatalf("second save changed pipeline id: %s -> %s", saved.ID, again.ID)
	}
	if again.Version != 2 {
		t.Fatalf("second save version = %d, want 2", again.Version)
	}
}

func TestReloadDiscardsUnsavedEdits(t *testing.T) {
	session, _ := newSession(t, "role-reload")
	ctx := context.Background()
	mustLoad(t, session)
	if _, err := session.Save(ctx); err != nil {
		t.Fatalf("Save: %v", err)
	}

	archetype, _ := catalog.Lookup("background-check")
	if _, err := session.AddStage(archetype); err != nil {
		t.Fatalf("AddStage: %v", err)
	}

	reloaded, err := session.Reload(ctx)
	if err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if len(reloaded.Stages) != 2 {
		t.Fatalf("reload kept unsaved edit: %d stages", len(reloaded.Stages))
	}
}

func TestSaveAsTemplateIsIndependentOfPipelineSave(t *testing.T) {
	session, st := newSession(t, "role-template")
	ctx := context.Background()
	mustLoad(t, session)

	template, err := session.SaveAsTemplate(ctx, "standard-screen")
	if err != nil {
		t.Fatalf("SaveAsTemplate: %v", err)
	}
	if template.Name != "standard-screen" {
		t.Fatalf("template name = %q", template.Name)
	}

	// The template was persisted even though the pipeline itself never was.
	persisted, err := st.GetPipelineByRole(ctx, "role-template")
	if err != nil {
		t.Fatalf("GetPipelineByRole: %v", err)
	}
	if persisted != nil {
		t.Fatal("saving a template must not save the pipeline")
	}

	// A duplicate template name conflicts without disturbing the session.
	if _, err := session.SaveAsTemplate(ctx, "standard-screen"); !errors.Is(err, services.ErrConflict) {
		t.Fatalf("duplicate template: expected ErrConflict, got %v", err)
	}
	if _, err := session.Stages(); err != nil {
		t.Fatalf("session unusable after template conflict: %v", err)
	}
}

func TestApplyTemplateReplacesStagesWithFreshIDs(t *testing.T) {
	session, st := newSession(t, "role-apply")
	ctx := context.Background()
	mustLoad(t, session)

	if _, err := session.SaveAsTemplate(ctx, "base"); err != nil {
		t.Fatalf("SaveAsTemplate: %v", err)
	}
	template, err := st.GetTemplateByName(ctx, "base")
	if err != nil {
		t.Fatalf("GetTemplateByName: %v", err)
	}

	if err := session.ApplyTemplate(template); err != nil {
		t.Fatalf("ApplyTemplate: %v", err)
	}
	stages, _ := session.Stages()
	if len(stages) != len(template.Stages) {
		t.Fatalf("stage count = %d, want %d", len(stages), len(template.Stages))
	}
	assertDenseOrder(t, stages)
	for i, stage := range stages {
		if stage.ID == template.Stages[i].ID {
			t.Fatalf("stage %d shares id with template", i)
		}
	}
}

func TestSecondSessionForSameRoleConflicts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	first, err := pipeline.NewSession(st, cfg, logging.NewNop(), nil, "role-locked")
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	defer first.Close()

	_, err = pipeline.NewSession(st, cfg, logging.NewNop(), nil, "role-locked")
	if !errors.Is(err, services.ErrConflict) {
		t.Fatalf("expected ErrConflict for second session, got %v", err)
	}

	// A different role is unaffected.
	other, err := pipeline.NewSession(st, cfg, logging.NewNop(), nil, "role-other")
	if err != nil {
		t.Fatalf("NewSession for other role: %v", err)
	}
	other.Close()

	// Releasing the lock lets a new session in.
	if err := first.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	reopened, err := pipeline.NewSession(st, cfg, logging.NewNop(), nil, "role-locked")
	if err != nil {
		t.Fatalf("NewSession after release: %v", err)
	}
	reopened.Close()
}

func TestMutationsBeforeLoadAreRejected(t *testing.T) {
	session, _ := newSession(t, "role-unloaded")

	archetype, _ := catalog.Lookup("phone-screening")
	if _, err := session.AddStage(archetype); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("AddStage before Load: expected ErrValidation, got %v", err)
	}
	if _, err := session.Save(context.Background()); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("Save before Load: expected ErrValidation, got %v", err)
	}
}
