package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"talentpipe/internal/config"
	"talentpipe/internal/pipeline"
	"talentpipe/internal/store"
)

func newTemplateCommand(ctx *commandContext) *cobra.Command {
	templateCmd := &cobra.Command{
		Use:   "template",
		Short: "Manage reusable pipeline templates",
	}

	templateCmd.AddCommand(newTemplateSaveCommand(ctx))
	templateCmd.AddCommand(newTemplateListCommand(ctx))
	templateCmd.AddCommand(newTemplateApplyCommand(ctx))
	templateCmd.AddCommand(newTemplateRemoveCommand(ctx))

	return templateCmd
}

func newTemplateSaveCommand(ctx *commandContext) *cobra.Command {
	var roleID string

	cmd := &cobra.Command{
		Use:   "save <name>",
		Short: "Snapshot a role's pipeline as a named template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				session, err := pipeline.NewSession(st, cfg, ctx.logger(), nil, roleID)
				if err != nil {
					return err
				}
				defer session.Close()

				if _, err := session.Load(cmd.Context()); err != nil {
					return err
				}
				template, err := session.SaveAsTemplate(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved template %q with %d stages\n", template.Name, len(template.Stages))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&roleID, "role", "r", "", "Role whose pipeline to snapshot")
	_ = cmd.MarkFlagRequired("role")
	return cmd
}

func newTemplateListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				templates, err := st.ListTemplates(cmd.Context())
				if err != nil {
					return err
				}
				if len(templates) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No templates saved")
					return nil
				}
				rows := make([][]string, 0, len(templates))
				for _, template := range templates {
					rows = append(rows, []string{
						template.Name,
						strconv.Itoa(len(template.Stages)),
						template.CreatedFromRole,
						template.CreatedAt.Format("2006-01-02 15:04"),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Name", "Stages", "From Role", "Created"},
					rows,
					[]columnAlignment{alignLeft, alignRight, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}
}

func newTemplateApplyCommand(ctx *commandContext) *cobra.Command {
	var roleID string

	cmd := &cobra.Command{
		Use:   "apply <name>",
		Short: "Replace a role's pipeline with a template's stages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				template, err := st.GetTemplateByName(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if template == nil {
					return fmt.Errorf("template %q does not exist", args[0])
				}

				session, err := pipeline.NewSession(st, cfg, ctx.logger(), nil, roleID)
				if err != nil {
					return err
				}
				defer session.Close()

				if _, err := session.Load(cmd.Context()); err != nil {
					return err
				}
				if err := session.ApplyTemplate(template); err != nil {
					return err
				}
				saved, err := session.Save(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Applied template %q to role %s (%d stages, version %d)\n",
					template.Name, roleID, len(saved.Stages), saved.Version)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&roleID, "role", "r", "", "Role to apply the template to")
	_ = cmd.MarkFlagRequired("role")
	return cmd
}

func newTemplateRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>",
		Short: "Delete a saved template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				removed, err := st.RemoveTemplate(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if !removed {
					fmt.Fprintf(cmd.OutOrStdout(), "No template named %q\n", args[0])
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed template %q\n", args[0])
				return nil
			})
		},
	}
}
