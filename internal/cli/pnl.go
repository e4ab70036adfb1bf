package cli

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/riskcore/internal/cli/config"
	"github.com/rustyeddy/riskcore/market"
)

func newPnLCmd(rc *config.RootConfig) *cobra.Command {
	var (
		symbol  string
		sideStr string
		entry   float64
		exit    float64
		lots    float64
	)

	cmd := &cobra.Command{
		Use:   "pnl",
		Short: "Compute pip and money P&L for a hypothetical trade",
		RunE: func(cmd *cobra.Command, args []string) error {
			if entry <= 0 || exit <= 0 {
				return fmt.Errorf("require positive --entry and --exit")
			}
			if lots <= 0 {
				return fmt.Errorf("invalid --lots (got %v)", lots)
			}
			side := market.ParseSide(sideStr)

			meta := market.Meta(symbol)
			res := market.CalcTradePnL(side, entry, exit, lots, meta)

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"Instrument", "Side", "Lots", "Pips", "Gross", "Commission", "Net"})
			t.AppendRow(table.Row{
				meta.Name,
				side,
				fmt.Sprintf("%.2f", lots),
				fmt.Sprintf("%.1f", res.Pips),
				fmt.Sprintf("%.2f", res.GrossPnL),
				fmt.Sprintf("%.2f", res.Commission),
				fmt.Sprintf("%.2f", res.NetPnL),
			})
			t.SetStyle(table.StyleLight)
			t.Render()

			return nil
		},
	}

	cmd.Flags().StringVar(&symbol, "symbol", "EUR_USD", "Instrument symbol")
	cmd.Flags().StringVar(&sideStr, "side", "buy", "Trade side: buy|sell")
	cmd.Flags().Float64Var(&entry, "entry", 0, "Entry price")
	cmd.Flags().Float64Var(&exit, "exit", 0, "Exit price")
	cmd.Flags().Float64Var(&lots, "lots", 1, "Position size in standard lots")

	return cmd
}
