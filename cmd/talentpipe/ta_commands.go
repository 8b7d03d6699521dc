package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"talentpipe/internal/config"
	"talentpipe/internal/store"
)

func newTACommand(ctx *commandContext) *cobra.Command {
	taCmd := &cobra.Command{
		Use:   "ta",
		Short: "Manage talent acquisition profiles",
	}

	taCmd.AddCommand(newTAAddCommand(ctx))
	taCmd.AddCommand(newTAListCommand(ctx))
	taCmd.AddCommand(newTAShowCommand(ctx))

	return taCmd
}

func newTAAddCommand(ctx *commandContext) *cobra.Command {
	var email string
	var maxWorkload int
	var skills []string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Register a new TA",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				profile, err := st.CreateTA(cmd.Context(), &store.TAProfile{
					Name:        args[0],
					Email:       email,
					MaxWorkload: maxWorkload,
					Skills:      skills,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created TA %s (id %s, capacity %d)\n",
					profile.Name, profile.ID, profile.MaxWorkload)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "TA email address")
	cmd.Flags().IntVarP(&maxWorkload, "max-workload", "m", 5, "Maximum concurrent active assignments")
	cmd.Flags().StringSliceVar(&skills, "skill", nil, "Skill tag (repeatable)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newTAListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List TA profiles with their current workload",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				profiles, err := st.ListTAs(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, profiles)
				}
				if len(profiles) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No TAs registered")
					return nil
				}
				rows := make([][]string, 0, len(profiles))
				for _, profile := range profiles {
					rows = append(rows, []string{
						profile.Name,
						profile.Email,
						string(profile.Status),
						fmt.Sprintf("%d/%d", profile.CurrentWorkload, profile.MaxWorkload),
						strings.Join(profile.Skills, ", "),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Name", "Email", "Status", "Workload", "Skills"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")
	return cmd
}

func newTAShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <ta-id>",
		Short: "Show one TA profile and their assignments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				profile, err := st.GetTA(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if profile == nil {
					return fmt.Errorf("ta %s does not exist", args[0])
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s <%s>\n", profile.Name, profile.Email)
				fmt.Fprintf(out, "Status: %s  Workload: %d/%d\n", profile.Status, profile.CurrentWorkload, profile.MaxWorkload)
				if len(profile.Skills) > 0 {
					fmt.Fprintf(out, "Skills: %s\n", strings.Join(profile.Skills, ", "))
				}

				assignments, err := st.AssignmentsByTA(cmd.Context(), profile.ID)
				if err != nil {
					return err
				}
				if len(assignments) == 0 {
					fmt.Fprintln(out, "No assignments")
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
						assignment.RequirementID,
						string(assignment.Status),
						string(assignment.Priority),
						string(assignment.Type),
						deadline,
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"ID", "Requirement", "Status", "Priority", "Type", "Deadline"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}
}

func formatUtilization(value float64) string {
	return strconv.FormatFloat(value, 'f', 0, 64) + "%"
}
