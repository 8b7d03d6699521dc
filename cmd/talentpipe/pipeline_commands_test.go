package main

import (
	"testing"
)

func TestPipelineShowSeedsDefaults(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"pipeline", "show", "--role", "backend-eng"}, env.configPath)
	if err != nil {
		t.Fatalf("pipeline show: %v", err)
	}
	requireContains(t, out, "no saved pipeline")
	requireContains(t, out, "Phone Screening")
	requireContains(t, out, "Internal Interview")
}

func TestPipelineAddStagePersists(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"pipeline", "add-stage", "client-interview", "--role", "backend-eng"}, env.configPath)
	if err != nil {
		t.Fatalf("pipeline add-stage: %v", err)
	}
	requireContains(t, out, "Added stage \"Client Interview\" at position 3")
	requireContains(t, out, "version 1")

	out, _, err = runCLI(t, []string{"pipeline", "show", "--role", "backend-eng"}, env.configPath)
	if err != nil {
		t.Fatalf("pipeline show: %v", err)
	}
	requireContains(t, out, "Client Interview")
	requireContains(t, out, "version 1")
}

func TestPipelineAddStageUnknownArchetype(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"pipeline", "add-stage", "vibes-check", "--role", "backend-eng"}, env.configPath)
	if err == nil {
		t.Fatal("expected error for unknown archetype")
	}
	requireContains(t, err.Error(), "unknown stage archetype")
}

func TestTemplateSaveAndApply(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, []string{"pipeline", "add-stage", "reference-check", "--role", "backend-eng"}, env.configPath); err != nil {
		t.Fatalf("pipeline add-stage: %v", err)
	}
	out, _, err := runCLI(t, []string{"template", "save", "standard", "--role", "backend-eng"}, env.configPath)
	if err != nil {
		t.Fatalf("template save: %v", err)
	}
	requireContains(t, out, "Saved template \"standard\" with 3 stages")

	out, _, err = runCLI(t, []string{"template", "apply", "standard", "--role", "frontend-eng"}, env.configPath)
	if err != nil {
		t.Fatalf("template apply: %v", err)
	}
	requireContains(t, out, "Applied template \"standard\" to role frontend-eng (3 stages")

	out, _, err = runCLI(t, []string{"pipeline", "show", "--role", "frontend-eng"}, env.configPath)
	if err != nil {
		t.Fatalf("pipeline show: %v", err)
	}
	requireContains(t, out, "Reference Check")
}

func TestPipelineArchetypesListsCatalog(t *testing.T) {
	out, _, err := runCLI(t, []string{"pipeline", "archetypes"}, "")
	if err != nil {
		t.Fatalf("pipeline archetypes: %v", err)
	}
	requireContains(t, out, "phone-screening")
	requireContains(t, out, "client-interview")
}
