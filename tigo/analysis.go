package tigo

import (
	"context"
	"sort"
	"time"

	"github.com/samber/lo"
)

// DefaultThresholdPercent flags panels producing below this share of
// the best panel's mean power.
const DefaultThresholdPercent = 85.0

// Panel analysis works on hourly samples; minute data over multi-day
// windows is needlessly heavy.
const analysisLevel = LevelHour

// PanelStats describes one panel's production over an analysis window.
type PanelStats struct {
	PanelID       string  `json:"panel_id"`
	MeanPower     float64 `json:"mean_power"`
	PeakPower     float64 `json:"peak_power"`
	EnergyWh      float64 `json:"energy_wh"`
	PercentOfBest float64 `json:"percent_of_best"`
}

// EfficiencyMetrics summarizes system-wide efficiency relative to the
// best performing panel.
type EfficiencyMetrics struct {
	SystemID                 int     `json:"system_id"`
	DaysAnalyzed             int     `json:"days_analyzed"`
	PanelCount               int     `json:"panel_count"`
	AverageEfficiencyPercent float64 `json:"average_efficiency_percent"`
	BestPanel                string  `json:"best_panel,omitempty"`
	BestMeanPowerW           float64 `json:"best_mean_power_w,omitempty"`
	TotalEnergyWh            float64 `json:"total_energy_wh"`
	WindowStart              string  `json:"window_start,omitempty"`
	WindowEnd                string  `json:"window_end,omitempty"`
}

// UnderperformingPanel flags a panel below the performance threshold.
type UnderperformingPanel struct {
	PanelID          string  `json:"panel_id"`
	MeanPower        float64 `json:"mean_power"`
	PercentOfBest    float64 `json:"percent_of_best"`
	ThresholdPercent float64 `json:"threshold_percent"`
}

// GetPanelPerformance ranks panels by mean production over the
// trailing daysBack days, best first.
func (c *Client) GetPanelPerformance(ctx context.Context, systemID, daysBack int) ([]PanelStats, error) {
	ds, err := c.combinedWindow(ctx, systemID, daysBack)
	if err != nil {
		return nil, err
	}
	return panelStats(ds), nil
}

// CalculateSystemEfficiency scores the system by comparing every
// panel's mean production against the best performer.
func (c *Client) CalculateSystemEfficiency(ctx context.Context, systemID, daysBack int) (EfficiencyMetrics, error) {
	ds, err := c.combinedWindow(ctx, systemID, daysBack)
	if err != nil {
		return EfficiencyMetrics{}, err
	}

	m := EfficiencyMetrics{
		SystemID:     systemID,
		DaysAnalyzed: daysBack,
	}

	stats := panelStats(ds)
	m.PanelCount = len(stats)
	if len(stats) == 0 {
		return m, nil
	}

	best := stats[0]
	m.BestPanel = best.PanelID
	m.BestMeanPowerW = best.MeanPower
	m.TotalEnergyWh = lo.SumBy(stats, func(s PanelStats) float64 { return s.EnergyWh })
	if best.MeanPower > 0 {
		mean := lo.SumBy(stats, func(s PanelStats) float64 { return s.MeanPower }) / float64(len(stats))
		m.AverageEfficiencyPercent = mean / best.MeanPower * 100
	}
	if !ds.Empty() {
		m.WindowStart = ds.Start().Format(time.RFC3339)
		m.WindowEnd = ds.End().Format(time.RFC3339)
	}

	return m, nil
}

// FindUnderperformingPanels returns panels whose mean production falls
// below thresholdPercent of the best panel, worst first.
func (c *Client) FindUnderperformingPanels(ctx context.Context, systemID int, thresholdPercent float64, daysBack int) ([]UnderperformingPanel, error) {
	if thresholdPercent <= 0 {
		thresholdPercent = DefaultThresholdPercent
	}

	stats, err := c.GetPanelPerformance(ctx, systemID, daysBack)
	if err != nil {
		return nil, err
	}

	under := lo.FilterMap(stats, func(s PanelStats, _ int) (UnderperformingPanel, bool) {
		if s.PercentOfBest >= thresholdPercent {
			return UnderperformingPanel{}, false
		}
		return UnderperformingPanel{
			PanelID:          s.PanelID,
			MeanPower:        s.MeanPower,
			PercentOfBest:    s.PercentOfBest,
			ThresholdPercent: thresholdPercent,
		}, true
	})

	sort.Slice(under, func(i, j int) bool {
		return under[i].PercentOfBest < under[j].PercentOfBest
	})
	return under, nil
}

func (c *Client) combinedWindow(ctx context.Context, systemID, daysBack int) (*DataSet, error) {
	end := time.Now()
	start := end.AddDate(0, 0, -daysBack)
	return c.GetCombinedData(ctx, systemID, start, end, analysisLevel)
}

// panelStats derives per-panel statistics from a combined data set,
// sorted by mean power descending. Mean power counts producing samples
// only, so nighttime rows do not drag every panel down equally.
func panelStats(ds *DataSet) []PanelStats {
	if ds == nil {
		return nil
	}

	stats := make([]PanelStats, 0, len(ds.Columns))
	for i, name := range ds.Columns {
		stats = append(stats, PanelStats{
			PanelID:   name,
			MeanPower: producingMean(ds.column(i)),
			PeakPower: ds.ColumnMax(i),
			EnergyWh:  ds.ColumnTotal(i),
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		return stats[i].MeanPower > stats[j].MeanPower
	})

	if len(stats) > 0 && stats[0].MeanPower > 0 {
		best := stats[0].MeanPower
		for i := range stats {
			stats[i].PercentOfBest = stats[i].MeanPower / best * 100
		}
	}
	return stats
}

// producingMean averages the samples above zero. A panel with no
// production in the window reports a zero mean.
func producingMean(vals []float64) float64 {
	producing := lo.Filter(vals, func(v float64, _ int) bool { return v > 0 })
	if len(producing) == 0 {
		return 0
	}
	return lo.Sum(producing) / float64(len(producing))
}
