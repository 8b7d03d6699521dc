package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"talentpipe/internal/assignment"
	"talentpipe/internal/config"
	"talentpipe/internal/store"
)

func newCollabCommand(ctx *commandContext) *cobra.Command {
	collabCmd := &cobra.Command{
		Use:   "collab",
		Short: "Record and inspect TA collaborations",
	}

	collabCmd.AddCommand(newCollabCreateCommand(ctx))
	collabCmd.AddCommand(newCollabListCommand(ctx))

	return collabCmd
}

func newCollabCreateCommand(ctx *commandContext) *cobra.Command {
	var primaryTA string
	var secondaryTA string
	var assignmentID string
	var collabType string
	var responsibilities []string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Form a collaboration between two TAs on an assignment",
		RunE: func(cmd *cobra.Command, args []string) error {
			split, err := parseResponsibilityPairs(responsibilities)
			if err != nil {
				return err
			}

			return ctx.withEngine(func(cfg *config.Config, st *store.Store, engine *assignment.Engine) error {
				created, err := engine.FormCollaboration(cmd.Context(), assignment.CollaborationRequest{
					PrimaryTAID:      primaryTA,
					SecondaryTAID:    secondaryTA,
					AssignmentID:     assignmentID,
					Type:             store.CollaborationType(collabType),
					Responsibilities: split,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Formed %s collaboration %s on assignment %s\n",
					created.Type, created.ID, created.AssignmentID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&primaryTA, "primary", "", "Primary TA identifier")
	cmd.Flags().StringVar(&secondaryTA, "secondary", "", "Secondary TA identifier")
	cmd.Flags().StringVarP(&assignmentID, "assignment", "a", "", "Assignment identifier")
	cmd.Flags().StringVar(&collabType, "type", "", "Collaboration type (primary_secondary, equal_partners, mentor_mentee)")
	cmd.Flags().StringSliceVar(&responsibilities, "responsibility", nil, "Responsibility split as area=owner (repeatable)")
	_ = cmd.MarkFlagRequired("primary")
	_ = cmd.MarkFlagRequired("secondary")
	_ = cmd.MarkFlagRequired("assignment")
	return cmd
}

func newCollabListCommand(ctx *commandContext) *cobra.Command {
	var assignmentID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List collaborations on an assignment",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				collaborations, err := st.CollaborationsByAssignment(cmd.Context(), assignmentID)
				if err != nil {
					return err
				}
				if len(collaborations) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No collaborations")
					return nil
				}
				rows := make([][]string, 0, len(collaborations))
				for _, collaboration := range collaborations {
					rows = append(rows, []string{
						collaboration.ID,
						collaboration.PrimaryTAID,
						collaboration.SecondaryTAID,
						string(collaboration.Type),
						collaboration.CreatedAt.Format("2006-01-02 15:04"),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Primary TA", "Secondary TA", "Type", "Created"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&assignmentID, "assignment", "a", "", "Assignment identifier")
	_ = cmd.MarkFlagRequired("assignment")
	return cmd
}

func parseResponsibilityPairs(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	split := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		area, owner, found := strings.Cut(pair, "=")
		if !found || area == "" {
			return nil, fmt.Errorf("invalid responsibility %q (want area=owner)", pair)
		}
		split[area] = owner
	}
	return split, nil
}
