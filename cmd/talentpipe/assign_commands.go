package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"talentpipe/internal/assignment"
	"talentpipe/internal/config"
	"talentpipe/internal/notifications"
	"talentpipe/internal/store"
)

func newAssignCommand(ctx *commandContext) *cobra.Command {
	assignCmd := &cobra.Command{
		Use:   "assign",
		Short: "Create and manage TA assignments",
	}

	assignCmd.AddCommand(newAssignCreateCommand(ctx))
	assignCmd.AddCommand(newAssignStatusCommand(ctx))
	assignCmd.AddCommand(newAssignListCommand(ctx))

	return assignCmd
}

func (c *commandContext) withEngine(fn func(cfg *config.Config, st *store.Store, engine *assignment.Engine) error) error {
	return c.withStore(func(cfg *config.Config, st *store.Store) error {
		notifier := notifications.EngineNotifier{Service: c.notifier()}
		engine := assignment.NewEngine(st, cfg, c.logger(), nil, notifier)
		return fn(cfg, st, engine)
	})
}

func newAssignCreateCommand(ctx *commandContext) *cobra.Command {
	var taID string
	var requirementID string
	var clientID string
	var priority string
	var assignmentType string
	var deadline string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Assign a TA to a requirement",
		RunE: func(cmd *cobra.Command, args []string) error {
			var due *time.Time
			if deadline != "" {
				parsed, err := time.Parse("2006-01-02", deadline)
				if err != nil {
					return fmt.Errorf("invalid deadline %q (want YYYY-MM-DD)", deadline)
				}
				due = &parsed
			}

			return ctx.withEngine(func(cfg *config.Config, st *store.Store, engine *assignment.Engine) error {
				created, err := engine.Assign(cmd.Context(), assignment.AssignRequest{
					TAID:          taID,
					RequirementID: requirementID,
					ClientID:      clientID,
					Priority:      store.Priority(priority),
					Type:          store.AssignmentType(assignmentType),
					Deadline:      due,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created %s assignment %s (%s priority)\n",
					created.Type, created.ID, created.Priority)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&taID, "ta", "t", "", "TA identifier")
	cmd.Flags().StringVarP(&requirementID, "requirement", "q", "", "Requirement identifier")
	cmd.Flags().StringVar(&clientID, "client", "", "Client identifier")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "Assignment priority (high, medium, low)")
	cmd.Flags().StringVar(&assignmentType, "type", "", "Assignment type (primary, secondary)")
	cmd.Flags().StringVar(&deadline, "deadline", "", "Deadline (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("ta")
	_ = cmd.MarkFlagRequired("requirement")
	return cmd
}

func newAssignStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status <assignment-id> <status>",
		Short: "Move an assignment to a new lifecycle status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, ok := store.ParseAssignmentStatus(args[1])
			if !ok {
				return fmt.Errorf("unknown status %q (want active, completed, or on_hold)", args[1])
			}
			return ctx.withEngine(func(cfg *config.Config, st *store.Store, engine *assignment.Engine) error {
				updated, err := engine.UpdateStatus(cmd.Context(), args[0], status)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Assignment %s is now %s\n", updated.ID, updated.Status)
				return nil
			})
		},
	}
}

func newAssignListCommand(ctx *commandContext) *cobra.Command {
	var statusFilters []string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List assignments",
		RunE: func(cmd *cobra.Command, args []string) error {
			var statuses []store.AssignmentStatus
			for _, filter := range statusFilters {
				status, ok := store.ParseAssignmentStatus(filter)
				if !ok {
					return fmt.Errorf("unknown status %q", filter)
				}
				statuses = append(statuses, status)
			}

			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				assignments, err := st.ListAssignments(cmd.Context(), statuses...)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, assignments)
				}
				if len(assignments) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No assignments")
					return nil
				}
				rows := make([][]string, 0, len(assignments))
				for _, assignment := range assignments {
					deadline := "-"
					if assignment.Deadline != nil {
						deadline = assignment.Deadline.Format("2006-01-02")
					}
					rows = append(rows, []string{
						assignment.ID,
						assignment.TAID,
						assignment.RequirementID,
						string(assignment.Status),
						string(assignment.Priority),
						string(assignment.Type),
						deadline,
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "TA", "Requirement", "Status", "Priority", "Type", "Deadline"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVarP(&statusFilters, "status", "s", nil, "Filter by status (repeatable)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")
	return cmd
}
