package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"talentpipe/internal/config"
	"talentpipe/internal/notifications"
	"talentpipe/internal/store"
	"talentpipe/internal/workload"
)

func newWorkloadCommand(ctx *commandContext) *cobra.Command {
	var taID string
	var asJSON bool
	var notify bool

	cmd := &cobra.Command{
		Use:   "workload",
		Short: "Show TA workload snapshots and alerts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				aggregator := workload.NewAggregator(st, cfg, ctx.logger(), nil)

				var snapshots []workload.Snapshot
				if strings.TrimSpace(taID) != "" {
					snapshot, err := aggregator.Snapshot(cmd.Context(), taID)
					if err != nil {
						return err
					}
					snapshots = []workload.Snapshot{snapshot}
				} else {
					all, err := aggregator.SnapshotAll(cmd.Context())
					if err != nil {
						return err
					}
					snapshots = all
				}

				if notify {
					notifications.NotifySnapshots(cmd.Context(), ctx.notifier(), snapshots)
				}
				if asJSON {
					return writeJSON(cmd, snapshots)
				}
				if len(snapshots) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No TAs registered")
					return nil
				}

				rows := make([][]string, 0, len(snapshots))
				for _, snapshot := range snapshots {
					rows = append(rows, []string{
						snapshot.TAName,
						strconv.Itoa(snapshot.ActiveAssignments),
						strconv.Itoa(snapshot.TotalCapacity),
						formatUtilization(snapshot.UtilizationPercentage),
						strconv.Itoa(len(snapshot.UpcomingDeadlines)),
						strconv.Itoa(len(snapshot.OverdueTasks)),
						alertSummary(snapshot.Alerts),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"TA", "Active", "Capacity", "Utilization", "Due Soon", "Overdue", "Alerts"},
					rows,
					[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&taID, "ta", "t", "", "Limit to one TA")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")
	cmd.Flags().BoolVar(&notify, "notify", false, "Push alerts to the configured ntfy topic")
	return cmd
}

func alertSummary(alerts []workload.Alert) string {
	if len(alerts) == 0 {
		return "-"
	}
	kinds := make([]string, 0, len(alerts))
	for _, alert := range alerts {
		kinds = append(kinds, string(alert.Kind))
	}
	return strings.Join(kinds, ", ")
}
