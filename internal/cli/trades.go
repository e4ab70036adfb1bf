package cli

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/riskcore/internal/cli/config"
	"github.com/rustyeddy/riskcore/journal"
)

func newTradesCmd(rc *config.RootConfig) *cobra.Command {
	var since time.Duration

	cmd := &cobra.Command{
		Use:   "trades",
		Short: "List recently closed trades from the journal",
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := journal.NewSQLite(rc.DBPath)
			if err != nil {
				return fmt.Errorf("open journal: %w", err)
			}
			defer j.Close()

			end := time.Now()
			trades, err := j.ListTradesClosedBetween(end.Add(-since), end)
			if err != nil {
				return fmt.Errorf("list trades: %w", err)
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"Trade", "Instrument", "Side", "Lots", "Entry", "Exit", "Closed", "Pips", "Net P&L", "Commission", "Reason"})
			var totalPnL float64
			for _, tr := range trades {
				totalPnL += tr.NetPnL
				t.AppendRow(table.Row{
					tr.TradeID,
					tr.Instrument,
					tr.Side,
					fmt.Sprintf("%.2f", tr.Lots),
					fmt.Sprintf("%.5f", tr.EntryPrice),
					fmt.Sprintf("%.5f", tr.ExitPrice),
					tr.CloseTime.Format(time.RFC3339),
					fmt.Sprintf("%.1f", tr.Pips),
					fmt.Sprintf("%.2f", tr.NetPnL),
					fmt.Sprintf("%.2f", tr.Commission),
					tr.Reason,
				})
			}
			t.AppendFooter(table.Row{"", "", "", "", "", "", "", "total", fmt.Sprintf("%.2f", totalPnL), "", ""})
			t.SetStyle(table.StyleLight)
			t.Render()

			return nil
		},
	}

	cmd.Flags().DurationVar(&since, "since", 7*24*time.Hour, "Window to list, e.g. 24h or 168h")

	return cmd
}
