package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/riskcore/internal/cli/config"
	"github.com/rustyeddy/riskcore/journal"
	"github.com/rustyeddy/riskcore/risk"
)

func newEventsCmd(rc *config.RootConfig) *cobra.Command {
	var (
		since   time.Duration
		typeStr string
	)

	cmd := &cobra.Command{
		Use:   "events",
		Short: "List recent risk events from the journal",
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := journal.NewSQLite(rc.DBPath)
			if err != nil {
				return fmt.Errorf("open journal: %w", err)
			}
			defer j.Close()

			end := time.Now()
			start := end.Add(-since)

			var events []risk.Event
			if typeStr != "" {
				events, err = j.ListEventsByType(risk.EventType(typeStr), start, end)
			} else {
				events, err = j.ListEventsBetween(start, end)
			}
			if err != nil {
				return fmt.Errorf("list events: %w", err)
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"Time", "Type", "Level", "Severity", "Message", "Current", "Limit", "Action", "Positions"})
			for _, e := range events {
				t.AppendRow(table.Row{
					e.Time.Format(time.RFC3339),
					e.Type,
					e.Level,
					e.Severity,
					e.Message,
					fmt.Sprintf("%.4f", e.Current),
					fmt.Sprintf("%.4f", e.Limit),
					e.Action,
					strings.Join(e.Positions, ","),
				})
			}
			t.SetStyle(table.StyleLight)
			t.Render()

			rc.Logger.Debug().Int("count", len(events)).Msg("events listed")
			return nil
		},
	}

	cmd.Flags().DurationVar(&since, "since", 24*time.Hour, "Window to list, e.g. 6h or 72h")
	cmd.Flags().StringVar(&typeStr, "type", "", "Filter by type: warning|limit_breach|circuit_breaker|black_swan")

	return cmd
}
