package risk

import (
	"fmt"
	"time"
)

// Limits is the immutable snapshot of every risk ceiling the core enforces.
// Fractions are of total portfolio value (0.10 = 10%). The snapshot is
// replaced atomically through Manager.UpdateLimits; partial overrides are safe
// because every field has an explicit default.
type Limits struct {
	MaxPositionSize       float64 `yaml:"max_position_size" json:"max_position_size"`
	MaxLeverage           float64 `yaml:"max_leverage" json:"max_leverage"`
	MaxRiskPerTrade       float64 `yaml:"max_risk_per_trade" json:"max_risk_per_trade"`
	MaxTotalExposure      float64 `yaml:"max_total_exposure" json:"max_total_exposure"`
	MaxCorrelatedExposure float64 `yaml:"max_correlated_exposure" json:"max_correlated_exposure"`
	MaxSectorExposure     float64 `yaml:"max_sector_exposure" json:"max_sector_exposure"`

	MaxDailyLoss   float64 `yaml:"max_daily_loss" json:"max_daily_loss"`
	MaxWeeklyLoss  float64 `yaml:"max_weekly_loss" json:"max_weekly_loss"`
	MaxMonthlyLoss float64 `yaml:"max_monthly_loss" json:"max_monthly_loss"`

	MaxDrawdown        float64 `yaml:"max_drawdown" json:"max_drawdown"`
	DailyDrawdownLimit float64 `yaml:"daily_drawdown_limit" json:"daily_drawdown_limit"`

	MaxTradesPerDay  int           `yaml:"max_trades_per_day" json:"max_trades_per_day"`
	MaxTradesPerHour int           `yaml:"max_trades_per_hour" json:"max_trades_per_hour"`
	MinTradeSpacing  time.Duration `yaml:"min_trade_spacing" json:"min_trade_spacing"`
}

// DefaultLimits returns the limits used when nothing is configured.
func DefaultLimits() Limits {
	return Limits{
		MaxPositionSize:       0.10,
		MaxLeverage:           30,
		MaxRiskPerTrade:       0.02,
		MaxTotalExposure:      0.60,
		MaxCorrelatedExposure: 0.20,
		MaxSectorExposure:     0.30,
		MaxDailyLoss:          0.03,
		MaxWeeklyLoss:         0.06,
		MaxMonthlyLoss:        0.10,
		MaxDrawdown:           0.15,
		DailyDrawdownLimit:    0.05,
		MaxTradesPerDay:       20,
		MaxTradesPerHour:      5,
		MinTradeSpacing:       5 * time.Minute,
	}
}

// Validate rejects configurations that can never be correct. Limits of zero
// are legal (they disable trading outright) but negative values are not.
func (l Limits) Validate() error {
	pct := map[string]float64{
		"max_position_size":       l.MaxPositionSize,
		"max_risk_per_trade":      l.MaxRiskPerTrade,
		"max_total_exposure":      l.MaxTotalExposure,
		"max_correlated_exposure": l.MaxCorrelatedExposure,
		"max_sector_exposure":     l.MaxSectorExposure,
		"max_daily_loss":          l.MaxDailyLoss,
		"max_weekly_loss":         l.MaxWeeklyLoss,
		"max_monthly_loss":        l.MaxMonthlyLoss,
		"max_drawdown":            l.MaxDrawdown,
		"daily_drawdown_limit":    l.DailyDrawdownLimit,
	}
	for name, v := range pct {
		if v < 0 {
			return fmt.Errorf("%s must be non-negative, got %v", name, v)
		}
	}
	if l.MaxLeverage < 0 {
		return fmt.Errorf("max_leverage must be non-negative, got %v", l.MaxLeverage)
	}
	if l.MaxTradesPerDay < 0 || l.MaxTradesPerHour < 0 {
		return fmt.Errorf("trade count limits must be non-negative")
	}
	if l.MinTradeSpacing < 0 {
		return fmt.Errorf("min_trade_spacing must be non-negative, got %v", l.MinTradeSpacing)
	}
	return nil
}

// LimitsUpdate is a partial override: nil fields keep their current value.
type LimitsUpdate struct {
	MaxPositionSize       *float64 `yaml:"max_position_size" json:"max_position_size"`
	MaxLeverage           *float64 `yaml:"max_leverage" json:"max_leverage"`
	MaxRiskPerTrade       *float64 `yaml:"max_risk_per_trade" json:"max_risk_per_trade"`
	MaxTotalExposure      *float64 `yaml:"max_total_exposure" json:"max_total_exposure"`
	MaxCorrelatedExposure *float64 `yaml:"max_correlated_exposure" json:"max_correlated_exposure"`
	MaxSectorExposure     *float64 `yaml:"max_sector_exposure" json:"max_sector_exposure"`

	MaxDailyLoss   *float64 `yaml:"max_daily_loss" json:"max_daily_loss"`
	MaxWeeklyLoss  *float64 `yaml:"max_weekly_loss" json:"max_weekly_loss"`
	MaxMonthlyLoss *float64 `yaml:"max_monthly_loss" json:"max_monthly_loss"`

	MaxDrawdown        *float64 `yaml:"max_drawdown" json:"max_drawdown"`
	DailyDrawdownLimit *float64 `yaml:"daily_drawdown_limit" json:"daily_drawdown_limit"`

	MaxTradesPerDay  *int           `yaml:"max_trades_per_day" json:"max_trades_per_day"`
	MaxTradesPerHour *int           `yaml:"max_trades_per_hour" json:"max_trades_per_hour"`
	MinTradeSpacing  *time.Duration `yaml:"min_trade_spacing" json:"min_trade_spacing"`
}

// Apply merges the update onto l and returns the merged snapshot. The
// receiver is not modified.
func (l Limits) Apply(u LimitsUpdate) Limits {
	if u.MaxPositionSize != nil {
		l.MaxPositionSize = *u.MaxPositionSize
	}
	if u.MaxLeverage != nil {
		l.MaxLeverage = *u.MaxLeverage
	}
	if u.MaxRiskPerTrade != nil {
		l.MaxRiskPerTrade = *u.MaxRiskPerTrade
	}
	if u.MaxTotalExposure != nil {
		l.MaxTotalExposure = *u.MaxTotalExposure
	}
	if u.MaxCorrelatedExposure != nil {
		l.MaxCorrelatedExposure = *u.MaxCorrelatedExposure
	}
	if u.MaxSectorExposure != nil {
		l.MaxSectorExposure = *u.MaxSectorExposure
	}
	if u.MaxDailyLoss != nil {
		l.MaxDailyLoss = *u.MaxDailyLoss
	}
	if u.MaxWeeklyLoss != nil {
		l.MaxWeeklyLoss = *u.MaxWeeklyLoss
	}
	if u.MaxMonthlyLoss != nil {
		l.MaxMonthlyLoss = *u.MaxMonthlyLoss
	}
	if u.MaxDrawdown != nil {
		l.MaxDrawdown = *u.MaxDrawdown
	}
	if u.DailyDrawdownLimit != nil {
		l.DailyDrawdownLimit = *u.DailyDrawdownLimit
	}
	if u.MaxTradesPerDay != nil {
		l.MaxTradesPerDay = *u.MaxTradesPerDay
	}
	if u.MaxTradesPerHour != nil {
		l.MaxTradesPerHour = *u.MaxTradesPerHour
	}
	if u.MinTradeSpacing != nil {
		l.MinTradeSpacing = *u.MinTradeSpacing
	}
	return l
}
