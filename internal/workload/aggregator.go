package workload

import (
	"context"
	"log/slog"
	"time"

	"talentpipe/internal/config"
	"talentpipe/internal/events"
	"talentpipe/internal/logging"
	"talentpipe/internal/services"
	"talentpipe/internal/store"
)

// Aggregator produces workload snapshots across the TA roster. Snapshots are
// always recomputed from stored assignments; the aggregator keeps no state of
// its own.
type Aggregator struct {
	store      *store.Store
	bus        *events.Bus
	logger     *slog.Logger
	thresholds Thresholds
	now        func() time.Time
}

// NewAggregator builds an aggregator using the alert thresholds from
// configuration. The bus may be nil.
func NewAggregator(st *store.Store, cfg *config.Config, logger *slog.Logger, bus *events.Bus) *Aggregator {
	return &Aggregator{
		store:  st,
		bus:    bus,
		logger: logging.NewComponentLogger(logger, "workload"),
		thresholds: Thresholds{
			Overloaded:          cfg.Alerts.OverloadedThreshold,
			Underutilized:       cfg.Alerts.UnderutilizedThreshold,
			DeadlineWarningDays: cfg.Alerts.DeadlineWarningDays,
		},
		now: time.Now,
	}
}

// Snapshot derives the current workload view for one TA.
func (a *Aggregator) Snapshot(ctx context.Context, taID string) (Snapshot, error) {
	profile, err := a.store.GetTA(ctx, taID)
	if err != nil {
		return Snapshot{}, err
	}
	if profile == nil {
		return Snapshot{}, services.Wrap(services.ErrNotFound, "workload", "snapshot",
			"ta "+taID+" does not exist", nil)
	}

	assignments, err := a.store.AssignmentsByTA(ctx, taID, store.StatusActive)
	if err != nil {
		return Snapshot{}, err
	}

	snapshot := Derive(profile, assignments, a.now(), a.thresholds)
	a.publishAlerts(snapshot)
	return snapshot, nil
}

// SnapshotAll derives workload views for every TA, ordered as the roster is.
func (a *Aggregator) SnapshotAll(ctx context.Context) ([]Snapshot, error) {
	profiles, err := a.store.ListTAs(ctx)
	if err != nil {
		return nil, err
	}

	now := a.now()
	snapshots := make([]Snapshot, 0, len(profiles))
	for _, profile := range profiles {
		assignments, err := a.store.AssignmentsByTA(ctx, profile.ID, store.StatusActive)
		if err != nil {
			return nil, err
		}
		snapshot := Derive(profile, assignments, now, a.thresholds)
		a.publishAlerts(snapshot)
		snapshots = append(snapshots, snapshot)
	}
	return snapshots, nil
}

// Overloaded returns the snapshots of TAs currently over the overloaded
// threshold.
func (a *Aggregator) Overloaded(ctx context.Context) ([]Snapshot, error) {
	all, err := a.SnapshotAll(ctx)
	if err != nil {
		return nil, err
	}
	var overloaded []Snapshot
	for _, snapshot := range all {
		if snapshot.IsOverloaded() {
			overloaded = append(overloaded, snapshot)
		}
	}
	return overloaded, nil
}

func (a *Aggregator) publishAlerts(snapshot Snapshot) {
	for _, alert := range snapshot.Alerts {
		if alert.Kind == AlertOverloaded {
			a.logger.Warn("ta overloaded",
				logging.String(logging.FieldTAID, snapshot.TAID),
				logging.Float64("utilization", snapshot.UtilizationPercentage))
		}
		if a.bus != nil {
			a.bus.Publish(events.Event{
				Type:   events.TypeWorkloadAlert,
				TAID:   snapshot.TAID,
				Detail: string(alert.Kind),
			})
		}
	}
}
