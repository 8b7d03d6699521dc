package main

import (
	"regexp"
	"testing"
)

var idPattern = regexp.MustCompile(`id ([0-9a-f-]{36})`)
var assignmentPattern = regexp.MustCompile(`assignment ([0-9a-f-]{36})`)

func TestAssignLifecycleViaCLI(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"ta", "add", "Ava Chen", "--email", "ava@example.test", "--max-workload", "3"}, env.configPath)
	if err != nil {
		t.Fatalf("ta add: %v", err)
	}
	match := idPattern.FindStringSubmatch(out)
	if match == nil {
		t.Fatalf("no TA id in output %q", out)
	}
	taID := match[1]

	out, _, err = runCLI(t, []string{"assign", "create", "--ta", taID, "--requirement", "req-9", "--priority", "high"}, env.configPath)
	if err != nil {
		t.Fatalf("assign create: %v", err)
	}
	requireContains(t, out, "Created primary assignment")
	requireContains(t, out, "high priority")
	match = assignmentPattern.FindStringSubmatch(out)
	if match == nil {
		t.Fatalf("no assignment id in output %q", out)
	}
	assignmentID := match[1]

	out, _, err = runCLI(t, []string{"workload", "--ta", taID}, env.configPath)
	if err != nil {
		t.Fatalf("workload: %v", err)
	}
	requireContains(t, out, "Ava Chen")
	requireContains(t, out, "33%")

	out, _, err = runCLI(t, []string{"assign", "status", assignmentID, "completed"}, env.configPath)
	if err != nil {
		t.Fatalf("assign status: %v", err)
	}
	requireContains(t, out, "is now completed")

	// Completing again from completed is not a legal transition target apart
	// from reactivation; on_hold must be rejected.
	_, _, err = runCLI(t, []string{"assign", "status", assignmentID, "on_hold"}, env.configPath)
	if err == nil {
		t.Fatal("expected transition error")
	}
}

func TestStatusCommandReportsHealth(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"status"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "Database")
	requireContains(t, out, "Assignments")
	requireContains(t, out, "Total")
}
