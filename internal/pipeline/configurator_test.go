package pipeline_test

import (
	"errors"
	"testing"

	"talentpipe/internal/pipeline"
	"talentpipe/internal/services"
)

func TestConfiguratorOpenApplyCycle(t *testing.T) {
	session, _ := newSession(t, "role-cfg-cycle")
	mustLoad(t, session)
	stages, _ := session.Stages()
	target := stages[1]

	configurator := pipeline.NewConfigurator(session)
	opened, err := configurator.Open(target.ID)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if opened.ID != target.ID {
		t.Fatalf("opened stage %s, want %s", opened.ID, target.ID)
	}
	if _, editing := configurator.Editing(); !editing {
		t.Fatal("configurator should be editing after Open")
	}

	if err := configurator.Apply(target.ID, map[string]any{"panel_size": 3}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if _, editing := configurator.Editing(); editing {
		t.Fatal("configurator should be idle after Apply")
	}

	updated, _ := session.Stages()
	if updated[1].Config["panel_size"] != 3 {
		t.Fatalf("config not applied: %v", updated[1].Config)
	}
}

func TestConfiguratorRejectsApplyWhileIdle(t *testing.T) {
	session, _ := newSession(t, "role-cfg-idle")
	mustLoad(t, session)
	stages, _ := session.Stages()

	configurator := pipeline.NewConfigurator(session)
	err := configurator.Apply(stages[0].ID, map[string]any{"notes": "x"})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestConfiguratorRejectsSecondOpenAndMismatchedApply(t *testing.T) {
	session, _ := newSession(t, "role-cfg-guard")
	mustLoad(t, session)
	stages, _ := session.Stages()

	configurator := pipeline.NewConfigurator(session)
	if _, err := configurator.Open(stages[0].ID); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := configurator.Open(stages[1].ID); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("second Open: expected ErrValidation, got %v", err)
	}
	if err := configurator.Apply(stages[1].ID, nil); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("mismatched Apply: expected ErrValidation, got %v", err)
	}

	configurator.Close()
	if _, editing := configurator.Editing(); editing {
		t.Fatal("configurator should be idle after Close")
	}
	if _, err := configurator.Open(stages[1].ID); err != nil {
		t.Fatalf("Open after Close: %v", err)
	}
}

func TestConfiguratorOpenUnknownStage(t *testing.T) {
	session, _ := newSession(t, "role-cfg-missing")
	mustLoad(t, session)

	configurator := pipeline.NewConfigurator(session)
	if _, err := configurator.Open("nope"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, editing := configurator.Editing(); editing {
		t.Fatal("failed Open must leave configurator idle")
	}
}
