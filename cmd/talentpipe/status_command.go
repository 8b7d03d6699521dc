package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"talentpipe/internal/config"
	"talentpipe/internal/store"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show database health and assignment summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				dbHealth, err := st.CheckHealth(cmd.Context())
				if err != nil {
					return err
				}
				summary, err := st.Health(cmd.Context())
				if err != nil {
					return err
				}

				if asJSON {
					return writeJSON(cmd, map[string]any{
						"database":    dbHealth,
						"assignments": summary,
					})
				}

				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				lines := renderSectionHeader("Database", colorize)
				lines = append(lines, renderStatusLine("Path", statusInfo, dbHealth.DBPath, colorize))
				lines = append(lines, renderStatusLine("Readable", boolKind(dbHealth.DatabaseReadable), "", colorize))
				if len(dbHealth.MissingTables) > 0 {
					lines = append(lines, renderStatusLine("Tables", statusError,
						"missing: "+strings.Join(dbHealth.MissingTables, ", "), colorize))
				} else {
					lines = append(lines, renderStatusLine("Tables", statusOK,
						fmt.Sprintf("%d present", len(dbHealth.TablesPresent)), colorize))
				}
				if dbHealth.Error != "" {
					lines = append(lines, renderStatusLine("Error", statusError, dbHealth.Error, colorize))
				}

				lines = append(lines, "")
				lines = append(lines, renderSectionHeader("Assignments", colorize)...)
				lines = append(lines, renderStatusLine("Total", statusInfo, fmt.Sprintf("%d", summary.Total), colorize))
				lines = append(lines, renderStatusLine("Active", statusInfo, fmt.Sprintf("%d", summary.Active), colorize))
				lines = append(lines, renderStatusLine("On hold", statusInfo, fmt.Sprintf("%d", summary.OnHold), colorize))
				lines = append(lines, renderStatusLine("Completed", statusInfo, fmt.Sprintf("%d", summary.Completed), colorize))
				overdueKind := statusOK
				if summary.Overdue > 0 {
					overdueKind = statusWarn
				}
				lines = append(lines, renderStatusLine("Overdue", overdueKind, fmt.Sprintf("%d", summary.Overdue), colorize))

				fmt.Fprintln(out, strings.Join(lines, "\n"))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of text")
	return cmd
}

func boolKind(ok bool) statusKind {
	if ok {
		return statusOK
	}
	return statusError
}
