package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"talentpipe/internal/catalog"
	"talentpipe/internal/config"
	"talentpipe/internal/pipeline"
	"talentpipe/internal/store"
)

func newPipelineCommand(ctx *commandContext) *cobra.Command {
	pipelineCmd := &cobra.Command{
		Use:   "pipeline",
		Short: "Inspect and edit per-role hiring pipelines",
	}

	pipelineCmd.AddCommand(newPipelineShowCommand(ctx))
	pipelineCmd.AddCommand(newPipelineListCommand(ctx))
	pipelineCmd.AddCommand(newPipelineAddStageCommand(ctx))
	pipelineCmd.AddCommand(newPipelineRemoveStageCommand(ctx))
	pipelineCmd.AddCommand(newPipelineMoveStageCommand(ctx))
	pipelineCmd.AddCommand(newPipelineSetConfigCommand(ctx))
	pipelineCmd.AddCommand(newPipelineRemoveCommand(ctx))
	pipelineCmd.AddCommand(newPipelineArchetypesCommand())

	return pipelineCmd
}

// withSession runs fn inside an exclusive, loaded edit session for the role,
// saving afterwards when fn succeeds.
func (c *commandContext) withSession(cmd *cobra.Command, roleID string, fn func(session *pipeline.Session) error) error {
	return c.withStore(func(cfg *config.Config, st *store.Store) error {
		session, err := pipeline.NewSession(st, cfg, c.logger(), nil, roleID)
		if err != nil {
			return err
		}
		defer session.Close()

		if _, err := session.Load(cmd.Context()); err != nil {
			return err
		}
		if err := fn(session); err != nil {
			return err
		}
		saved, err := session.Save(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved pipeline for role %s (version %d, %d stages)\n",
			saved.RoleID, saved.Version, len(saved.Stages))
		return nil
	})
}

func newPipelineShowCommand(ctx *commandContext) *cobra.Command {
	var roleID string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the pipeline configured for a role",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				persisted, err := st.GetPipelineByRole(cmd.Context(), roleID)
				if err != nil {
					return err
				}
				stages := pipeline.DefaultStages()
				saved := false
				if persisted != nil {
					stages = persisted.Stages
					saved = true
				}

				if asJSON {
					return writeJSON(cmd, map[string]any{
						"role_id": roleID,
						"saved":   saved,
						"stages":  stages,
					})
				}

				out := cmd.OutOrStdout()
				if !saved {
					fmt.Fprintf(out, "Role %s has no saved pipeline; showing defaults\n", roleID)
				} else {
					fmt.Fprintf(out, "Pipeline for role %s (version %d)\n", roleID, persisted.Version)
				}
				rows := make([][]string, 0, len(stages))
				for _, stage := range stages {
					rows = append(rows, []string{
						strconv.Itoa(stage.Order),
						stage.Name,
						string(stage.Category),
						stage.ID,
						yesNo(len(stage.Config) > 0),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Order", "Stage", "Category", "ID", "Configured"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&roleID, "role", "r", "", "Role identifier")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")
	_ = cmd.MarkFlagRequired("role")
	return cmd
}

func newPipelineListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all saved pipelines",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				pipelines, err := st.ListPipelines(cmd.Context())
				if err != nil {
					return err
				}
				if len(pipelines) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No pipelines saved")
					return nil
				}
				rows := make([][]string, 0, len(pipelines))
				for _, p := range pipelines {
					rows = append(rows, []string{
						p.RoleID,
						strconv.FormatInt(p.Version, 10),
						strconv.Itoa(len(p.Stages)),
						p.UpdatedAt.Format("2006-01-02 15:04"),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Role", "Version", "Stages", "Updated"},
					rows,
					[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft},
				))
				return nil
			})
		},
	}
}

func newPipelineAddStageCommand(ctx *commandContext) *cobra.Command {
	var roleID string
	var customName string
	var category string

	cmd := &cobra.Command{
		Use:   "add-stage [archetype-id]",
		Short: "Append a stage to a role's pipeline",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var archetype catalog.Archetype
			switch {
			case len(args) == 1:
				found, ok := catalog.Lookup(args[0])
				if !ok {
					return fmt.Errorf("unknown stage archetype %q (see `talentpipe pipeline archetypes`)", args[0])
				}
				archetype = found
			case strings.TrimSpace(customName) != "":
				parsed, ok := catalog.ParseCategory(category)
				if !ok {
					return fmt.Errorf("unknown category %q", category)
				}
				archetype = catalog.Custom(customName, parsed)
			default:
				return fmt.Errorf("provide an archetype id or --name with --category")
			}

			return ctx.withSession(cmd, roleID, func(session *pipeline.Session) error {
				added, err := session.AddStage(archetype)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added stage %q at position %d (id %s)\n", added.Name, added.Order, added.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&roleID, "role", "r", "", "Role identifier")
	cmd.Flags().StringVar(&customName, "name", "", "Custom stage name (instead of an archetype)")
	cmd.Flags().StringVar(&category, "category", string(catalog.CategoryInternal), "Category for a custom stage")
	_ = cmd.MarkFlagRequired("role")
	return cmd
}

func newPipelineRemoveStageCommand(ctx *commandContext) *cobra.Command {
	var roleID string

	cmd := &cobra.Command{
		Use:   "remove-stage <stage-id>",
		Short: "Remove a stage from a role's pipeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, roleID, func(session *pipeline.Session) error {
				if err := session.RemoveStage(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed stage %s\n", args[0])
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&roleID, "role", "r", "", "Role identifier")
	_ = cmd.MarkFlagRequired("role")
	return cmd
}

func newPipelineMoveStageCommand(ctx *commandContext) *cobra.Command {
	var roleID string

	cmd := &cobra.Command{
		Use:   "move-stage <from> <to>",
		Short: "Move a stage to a new position (1-based)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid position %q", args[0])
			}
			to, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid position %q", args[1])
			}

			return ctx.withSession(cmd, roleID, func(session *pipeline.Session) error {
				if err := session.Reorder(from-1, to-1); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Moved stage from position %d to %d\n", from, to)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&roleID, "role", "r", "", "Role identifier")
	_ = cmd.MarkFlagRequired("role")
	return cmd
}

func newPipelineSetConfigCommand(ctx *commandContext) *cobra.Command {
	var roleID string

	cmd := &cobra.Command{
		Use:   "set-config <stage-id> [key=value...]",
		Short: "Replace a stage's configuration",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stageConfig, err := parseConfigPairs(args[1:])
			if err != nil {
				return err
			}

			return ctx.withSession(cmd, roleID, func(session *pipeline.Session) error {
				configurator := pipeline.NewConfigurator(session)
				if _, err := configurator.Open(args[0]); err != nil {
					return err
				}
				if err := configurator.Apply(args[0], stageConfig); err != nil {
					configurator.Close()
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated config for stage %s (%d keys)\n", args[0], len(stageConfig))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&roleID, "role", "r", "", "Role identifier")
	_ = cmd.MarkFlagRequired("role")
	return cmd
}

func newPipelineRemoveCommand(ctx *commandContext) *cobra.Command {
	var roleID string

	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Delete a role's saved pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				removed, err := st.RemovePipeline(cmd.Context(), roleID)
				if err != nil {
					return err
				}
				if !removed {
					fmt.Fprintf(cmd.OutOrStdout(), "No saved pipeline for role %s\n", roleID)
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed pipeline for role %s\n", roleID)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&roleID, "role", "r", "", "Role identifier")
	_ = cmd.MarkFlagRequired("role")
	return cmd
}

func newPipelineArchetypesCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "archetypes",
		Short:       "List available stage archetypes",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := make([][]string, 0)
			for _, archetype := range catalog.Archetypes() {
				rows = append(rows, []string{archetype.ID, archetype.Name, string(archetype.Category)})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Name", "Category"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
}

// parseConfigPairs converts key=value arguments into a config payload,
// coercing obvious bools and numbers.
func parseConfigPairs(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	parsed := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !found || key == "" {
			return nil, fmt.Errorf("invalid config pair %q (want key=value)", pair)
		}
		parsed[key] = coerceValue(strings.TrimSpace(value))
	}
	return parsed, nil
}

func coerceValue(value string) any {
	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}
	if i, err := strconv.Atoi(value); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f
	}
	return value
}
