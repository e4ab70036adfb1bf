package cli

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	appconfig "github.com/rustyeddy/riskcore/config"
	"github.com/rustyeddy/riskcore/internal/cli/config"
	"github.com/rustyeddy/riskcore/risk"
)

func newLimitsCmd(rc *config.RootConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "limits",
		Short: "Show the effective risk limits",
		RunE: func(cmd *cobra.Command, args []string) error {
			limits := risk.DefaultLimits()
			source := "defaults"

			if rc.ConfigPath != "" {
				cfg, err := appconfig.LoadFromFile(rc.ConfigPath)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				limits = cfg.Limits
				source = rc.ConfigPath
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"Limit", "Value"})
			t.AppendRows([]table.Row{
				{"max_position_size", fmt.Sprintf("%.2f", limits.MaxPositionSize)},
				{"max_leverage", fmt.Sprintf("%.0f", limits.MaxLeverage)},
				{"max_risk_per_trade", fmt.Sprintf("%.3f", limits.MaxRiskPerTrade)},
				{"max_total_exposure", fmt.Sprintf("%.2f", limits.MaxTotalExposure)},
				{"max_correlated_exposure", fmt.Sprintf("%.2f", limits.MaxCorrelatedExposure)},
				{"max_sector_exposure", fmt.Sprintf("%.2f", limits.MaxSectorExposure)},
				{"max_daily_loss", fmt.Sprintf("%.2f", limits.MaxDailyLoss)},
				{"max_weekly_loss", fmt.Sprintf("%.2f", limits.MaxWeeklyLoss)},
				{"max_monthly_loss", fmt.Sprintf("%.2f", limits.MaxMonthlyLoss)},
				{"max_drawdown", fmt.Sprintf("%.2f", limits.MaxDrawdown)},
				{"daily_drawdown_limit", fmt.Sprintf("%.2f", limits.DailyDrawdownLimit)},
				{"max_trades_per_day", fmt.Sprintf("%d", limits.MaxTradesPerDay)},
				{"max_trades_per_hour", fmt.Sprintf("%d", limits.MaxTradesPerHour)},
				{"min_trade_spacing", limits.MinTradeSpacing.String()},
			})
			t.SetStyle(table.StyleLight)
			t.Render()

			rc.Logger.Debug().Str("source", source).Msg("limits shown")
			return nil
		},
	}

	return cmd
}
