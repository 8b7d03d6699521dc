package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"talentpipe/internal/services"
	"talentpipe/internal/store"
	"talentpipe/internal/testsupport"
)

func TestOpenAppliesMigrations(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	health, err := st.CheckHealth(context.Background())
	if err != nil {
		t.Fatalf("CheckHealth failed: %v", err)
	}
	if !health.DatabaseExists || !health.DatabaseReadable {
		t.Fatalf("unexpected health: %#v", health)
	}
	if len(health.MissingTables) != 0 {
		t.Fatalf("expected all tables present, missing %v", health.MissingTables)
	}
}

func TestSavePipelineInsertAssignsIDAndVersion(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	saved, err := st.SavePipeline(ctx, &store.Pipeline{
		RoleID: "role-42",
		Stages: []store.Stage{
			{ID: "s1", Name: "Phone Screening", Category: "internal", Order: 1},
			{ID: "s2", Name: "Internal Interview", Category: "internal", Order: 2},
		},
	})
	if err != nil {
		t.Fatalf("SavePipeline failed: %v", err)
	}
	if saved.ID == "" {
		t.Fatal("expected assigned pipeline ID")
	}
	if saved.Version != 1 {
		t.Fatalf("expected version 1, got %d", saved.Version)
	}

	fetched, err := st.GetPipelineByRole(ctx, "role-42")
	if err != nil {
		t.Fatalf("GetPipelineByRole failed: %v", err)
	}
	if fetched == nil || len(fetched.Stages) != 2 {
		t.Fatalf("unexpected fetched pipeline: %#v", fetched)
	}
	if fetched.Stages[0].Name != "Phone Screening" || fetched.Stages[1].Order != 2 {
		t.Fatalf("unexpected stages: %#v", fetched.Stages)
	}
}

func TestSavePipelineRoundTripPreservesStages(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	stages := []store.Stage{
		{ID: "a", Name: "Phone Screening", Category: "internal", Order: 1, Config: map[string]any{"duration_minutes": float64(30)}},
		{ID: "b", Name: "Client Interview", Category: "client", Order: 2},
	}
	saved, err := st.SavePipeline(ctx, &store.Pipeline{RoleID: "role-7", Stages: stages})
	if err != nil {
		t.Fatalf("SavePipeline failed: %v", err)
	}

	loaded, err := st.GetPipelineByID(ctx, saved.ID)
	if err != nil {
		t.Fatalf("GetPipelineByID failed: %v", err)
	}
	if len(loaded.Stages) != 2 {
		t.Fatalf("expected 2 stages, got %d", len(loaded.Stages))
	}
	if loaded.Stages[0].Config["duration_minutes"] != float64(30) {
		t.Fatalf("config not round-tripped: %#v", loaded.Stages[0].Config)
	}
}

func TestSavePipelineRejectsStaleVersion(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	first, err := st.SavePipeline(ctx, &store.Pipeline{
		RoleID: "role-9",
		Stages: []store.Stage{{ID: "x", Name: "Phone Screening", Category: "internal", Order: 1}},
	})
	if err != nil {
		t.Fatalf("initial save failed: %v", err)
	}

	// First editor saves again, bumping the stored version.
	second := first.Clone()
	second.Stages = append(second.Stages, store.Stage{ID: "y", Name: "Client Interview", Category: "client", Order: 2})
	if _, err := st.SavePipeline(ctx, second); err != nil {
		t.Fatalf("second save failed: %v", err)
	}

	// A save based on the original version must be rejected.
	stale := first.Clone()
	stale.Stages[0].Name = "Overwritten"
	_, err = st.SavePipeline(ctx, stale)
	if !errors.Is(err, services.ErrConflict) {
		t.Fatalf("expected conflict error, got %v", err)
	}

	current, err := st.GetPipelineByRole(ctx, "role-9")
	if err != nil {
		t.Fatalf("GetPipelineByRole failed: %v", err)
	}
	if len(current.Stages) != 2 || current.Stages[0].Name != "Phone Screening" {
		t.Fatalf("stale save must not modify stored pipeline: %#v", current.Stages)
	}
}

func TestSavePipelineDuplicateRoleConflicts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	if _, err := st.SavePipeline(ctx, &store.Pipeline{RoleID: "role-dup"}); err != nil {
		t.Fatalf("first save failed: %v", err)
	}
	_, err := st.SavePipeline(ctx, &store.Pipeline{RoleID: "role-dup"})
	if !errors.Is(err, services.ErrConflict) {
		t.Fatalf("expected conflict for duplicate role insert, got %v", err)
	}
}

func TestGetPipelineByRoleAbsentIsNotError(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	pipeline, err := st.GetPipelineByRole(context.Background(), "role-none")
	if err != nil {
		t.Fatalf("GetPipelineByRole failed: %v", err)
	}
	if pipeline != nil {
		t.Fatalf("expected nil pipeline, got %#v", pipeline)
	}
}

func TestSaveTemplateIsDecoupledFromPipeline(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	stages := []store.Stage{{ID: "s1", Name: "Phone Screening", Category: "internal", Order: 1}}
	template, err := st.SaveTemplate(ctx, "standard-screen", "role-3", stages)
	if err != nil {
		t.Fatalf("SaveTemplate failed: %v", err)
	}

	// Mutating the original slice must not affect the stored template.
	stages[0].Name = "Mutated"
	fetched, err := st.GetTemplateByName(ctx, "standard-screen")
	if err != nil {
		t.Fatalf("GetTemplateByName failed: %v", err)
	}
	if fetched.Stages[0].Name != "Phone Screening" {
		t.Fatalf("template stages were not copied: %#v", fetched.Stages)
	}
	if template.CreatedFromRole != "role-3" {
		t.Fatalf("unexpected source role: %q", template.CreatedFromRole)
	}
}

func TestSaveTemplateDuplicateNameConflicts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	if _, err := st.SaveTemplate(ctx, "dup", "role-1", nil); err != nil {
		t.Fatalf("first SaveTemplate failed: %v", err)
	}
	_, err := st.SaveTemplate(ctx, "dup", "role-2", nil)
	if !errors.Is(err, services.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestCreateTAValidation(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	cases := []struct {
		name    string
		profile store.TAProfile
	}{
		{"missing name", store.TAProfile{Email: "a@example.test", MaxWorkload: 5}},
		{"missing email", store.TAProfile{Name: "A", MaxWorkload: 5}},
		{"zero capacity", store.TAProfile{Name: "A", Email: "a@example.test"}},
	}
	for _, tc := range cases {
		profile := tc.profile
		if _, err := st.CreateTA(ctx, &profile); !errors.Is(err, services.ErrValidation) {
			t.Fatalf("%s: expected validation error, got %v", tc.name, err)
		}
	}
}

func TestTAWorkloadIsDerivedFromActiveAssignments(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	ta := testsupport.NewTA(t, st, "jordan", 10)
	testsupport.NewAssignment(t, st, ta.ID, "req-1")
	second := testsupport.NewAssignment(t, st, ta.ID, "req-2")

	if _, err := st.UpdateAssignmentStatus(ctx, second.ID, store.StatusOnHold); err != nil {
		t.Fatalf("UpdateAssignmentStatus failed: %v", err)
	}

	fetched, err := st.GetTA(ctx, ta.ID)
	if err != nil {
		t.Fatalf("GetTA failed: %v", err)
	}
	if fetched.CurrentWorkload != 1 {
		t.Fatalf("expected workload 1 (on-hold excluded), got %d", fetched.CurrentWorkload)
	}
}

func TestUpdateAssignmentStatusMissingIDIsNotFound(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	_, err := st.UpdateAssignmentStatus(context.Background(), "missing", store.StatusCompleted)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestFindActiveAssignmentMatchesType(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	ta := testsupport.NewTA(t, st, "casey", 5)
	testsupport.NewAssignment(t, st, ta.ID, "req-7")

	found, err := st.FindActiveAssignment(ctx, ta.ID, "req-7", store.AssignmentPrimary)
	if err != nil {
		t.Fatalf("FindActiveAssignment failed: %v", err)
	}
	if found == nil {
		t.Fatal("expected to find primary assignment")
	}

	missing, err := st.FindActiveAssignment(ctx, ta.ID, "req-7", store.AssignmentSecondary)
	if err != nil {
		t.Fatalf("FindActiveAssignment failed: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected no secondary assignment, got %#v", missing)
	}
}

func TestHealthCountsOverdue(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	ta := testsupport.NewTA(t, st, "riley", 5)

	past := time.Now().UTC().Add(-48 * time.Hour)
	if _, err := st.InsertAssignment(ctx, &store.Assignment{
		TAID:          ta.ID,
		RequirementID: "req-late",
		ClientID:      "client-2",
		Status:        store.StatusActive,
		Priority:      store.PriorityHigh,
		Type:          store.AssignmentPrimary,
		Deadline:      &past,
	}); err != nil {
		t.Fatalf("InsertAssignment failed: %v", err)
	}
	testsupport.NewAssignment(t, st, ta.ID, "req-ontime")

	health, err := st.Health(ctx)
	if err != nil {
		t.Fatalf("Health failed: %v", err)
	}
	if health.Total != 2 || health.Active != 2 {
		t.Fatalf("unexpected health: %#v", health)
	}
	if health.Overdue != 1 {
		t.Fatalf("expected 1 overdue, got %d", health.Overdue)
	}
}

func TestCanTransitionTable(t *testing.T) {
	cases := []struct {
		from    store.AssignmentStatus
		to      store.AssignmentStatus
		allowed bool
	}{
		{store.StatusActive, store.StatusCompleted, true},
		{store.StatusActive, store.StatusOnHold, true},
		{store.StatusOnHold, store.StatusActive, true},
		{store.StatusCompleted, store.StatusActive, true},
		{store.StatusOnHold, store.StatusCompleted, false},
		{store.StatusCompleted, store.StatusOnHold, false},
		{store.StatusActive, store.StatusActive, false},
	}
	for _, tc := range cases {
		if got := store.CanTransition(tc.from, tc.to); got != tc.allowed {
			t.Fatalf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.allowed)
		}
	}
}
