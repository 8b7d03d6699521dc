package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"talentpipe/internal/config"
	"talentpipe/internal/store"
	"talentpipe/internal/workload"
)

const userAgent = "TalentPipe-Go/0.1.0"

// Service defines the push notification surface exposed to the assignment
// engine and workload aggregator.
type Service interface {
	NotifyAssignmentCreated(ctx context.Context, taName, requirementID string) error
	NotifyAssignmentCompleted(ctx context.Context, requirementID string) error
	NotifyPipelineSaved(ctx context.Context, roleID string, stageCount int) error
	NotifyOverload(ctx context.Context, taName string, utilization float64) error
	NotifyDeadlineApproaching(ctx context.Context, requirementID string, due time.Time) error
	NotifyError(ctx context.Context, err error, context string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &http.Client{Timeout: timeout}
	return &ntfyService{
		endpoint:    topic,
		client:      client,
		assignments: cfg.Notifications.Assignments,
		pipelines:   cfg.Notifications.Pipelines,
		overload:    cfg.Notifications.Overload,
		errors:      cfg.Notifications.Errors,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint    string
	client      *http.Client
	assignments bool
	pipelines   bool
	overload    bool
	errors      bool
}

func (n *ntfyService) NotifyAssignmentCreated(ctx context.Context, taName, requirementID string) error {
	if !n.assignments {
		return nil
	}
	taName = strings.TrimSpace(taName)
	requirementID = strings.TrimSpace(requirementID)
	data := payload{
		title:   "TalentPipe - Assignment Created",
		message: fmt.Sprintf("%s assigned to requirement %s", taName, requirementID),
		tags:    []string{"talentpipe", "assignment", "created"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyAssignmentCompleted(ctx context.Context, requirementID string) error {
	if !n.assignments {
		return nil
	}
	requirementID = strings.TrimSpace(requirementID)
	data := payload{
		title:   "TalentPipe - Assignment Complete",
		message: fmt.Sprintf("Requirement %s completed", requirementID),
		tags:    []string{"talentpipe", "assignment", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyPipelineSaved(ctx context.Context, roleID string, stageCount int) error {
	if !n.pipelines {
		return nil
	}
	roleID = strings.TrimSpace(roleID)
	data := payload{
		title:   "TalentPipe - Pipeline Saved",
		message: fmt.Sprintf("Pipeline for role %s saved with %d stages", roleID, stageCount),
		tags:    []string{"talentpipe", "pipeline", "saved"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyOverload(ctx context.Context, taName string, utilization float64) error {
	if !n.overload {
		return nil
	}
	taName = strings.TrimSpace(taName)
	data := payload{
		title:    "TalentPipe - TA Overloaded",
		message:  fmt.Sprintf("%s is at %.0f%% utilization", taName, utilization),
		tags:     []string{"talentpipe", "workload", "overloaded"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyDeadlineApproaching(ctx context.Context, requirementID string, due time.Time) error {
	if !n.assignments {
		return nil
	}
	requirementID = strings.TrimSpace(requirementID)
	data := payload{
		title:   "TalentPipe - Deadline Approaching",
		message: fmt.Sprintf("Requirement %s is due %s", requirementID, due.Format("2006-01-02")),
		tags:    []string{"talentpipe", "deadline", "warning"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	if !n.errors {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "TalentPipe - Error",
		message:  builder.String(),
		tags:     []string{"talentpipe", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "TalentPipe - Test",
		message:  "Notification system test",
		tags:     []string{"talentpipe", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyAssignmentCreated(context.Context, string, string) error      { return nil }
func (noopService) NotifyAssignmentCompleted(context.Context, string) error            { return nil }
func (noopService) NotifyPipelineSaved(context.Context, string, int) error             { return nil }
func (noopService) NotifyOverload(context.Context, string, float64) error              { return nil }
func (noopService) NotifyDeadlineApproaching(context.Context, string, time.Time) error { return nil }
func (noopService) NotifyError(context.Context, error, string) error                   { return nil }
func (noopService) TestNotification(context.Context) error                             { return nil }

// EngineNotifier adapts a Service to the assignment engine's notifier
// contract. Delivery failures never fail the operation that triggered them.
type EngineNotifier struct {
	Service Service
}

func (e EngineNotifier) AssignmentCreated(ctx context.Context, assignment *store.Assignment, ta *store.TAProfile) {
	_ = e.Service.NotifyAssignmentCreated(ctx, ta.Name, assignment.RequirementID)
}

func (e EngineNotifier) AssignmentCompleted(ctx context.Context, assignment *store.Assignment) {
	_ = e.Service.NotifyAssignmentCompleted(ctx, assignment.RequirementID)
}

func (e EngineNotifier) CapacityWarning(ctx context.Context, ta *store.TAProfile, activeCount int) {
	if ta.MaxWorkload <= 0 {
		return
	}
	utilization := float64(activeCount) / float64(ta.MaxWorkload) * 100
	_ = e.Service.NotifyOverload(ctx, ta.Name, utilization)
}

// NotifySnapshots forwards workload alerts from a set of snapshots to the
// notification service.
func NotifySnapshots(ctx context.Context, service Service, snapshots []workload.Snapshot) {
	for _, snapshot := range snapshots {
		if snapshot.IsOverloaded() {
			_ = service.NotifyOverload(ctx, snapshot.TAName, snapshot.UtilizationPercentage)
		}
		for _, deadline := range snapshot.UpcomingDeadlines {
			_ = service.NotifyDeadlineApproaching(ctx, deadline.RequirementID, deadline.Due)
		}
	}
}
