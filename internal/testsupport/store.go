package testsupport

import (
	"context"
	"testing"
	"time"

	"talentpipe/internal/config"
	"talentpipe/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// NewTA creates a TA profile for tests using the provided store.
func NewTA(t testing.TB, st *store.Store, name string, maxWorkload int) *store.TAProfile {
	t.Helper()

	profile, err := st.CreateTA(context.Background(), &store.TAProfile{
		Name:        name,
		Email:       name + "@example.test",
		MaxWorkload: maxWorkload,
	})
	if err != nil {
		t.Fatalf("store.CreateTA: %v", err)
	}
	return profile
}

// NewAssignment inserts an active assignment for tests.
func NewAssignment(t testing.TB, st *store.Store, taID, requirementID string) *store.Assignment {
	t.Helper()

	assignment, err := st.InsertAssignment(context.Background(), &store.Assignment{
		TAID:          taID,
		RequirementID: requirementID,
		ClientID:      "client-1",
		Status:        store.StatusActive,
		Priority:      store.PriorityMedium,
		Type:          store.AssignmentPrimary,
		AssignedAt:    time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("store.InsertAssignment: %v", err)
	}
	return assignment
}
