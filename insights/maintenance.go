package insights

import (
	"fmt"

	"github.com/matt-dreyer/Tigo-MCP-server/tigo"
	"github.com/samber/lo"
)

// Priority ranks maintenance urgency.
type Priority string

const (
	PriorityLow      Priority = "Low"
	PriorityMedium   Priority = "Medium"
	PriorityHigh     Priority = "High"
	PriorityCritical Priority = "Critical"
)

// MaintenanceItem is one actionable finding.
type MaintenanceItem struct {
	Category       string       `json:"category"`
	Issue          string       `json:"issue"`
	Priority       Priority     `json:"priority"`
	Recommendation string       `json:"recommendation"`
	AffectedPanels []string     `json:"affected_panels,omitempty"`
	AlertDetails   []tigo.Alert `json:"alert_details,omitempty"`
}

// MaintenanceSummary aggregates the findings of a report.
type MaintenanceSummary struct {
	TotalIssues           int     `json:"total_issues"`
	CriticalIssues        int     `json:"critical_issues"`
	SystemEfficiency      float64 `json:"system_efficiency"`
	UnderperformingPanels int     `json:"underperforming_panels"`
}

// MaintenanceReport scores the maintenance needs of a system.
type MaintenanceReport struct {
	OverallPriority Priority           `json:"overall_maintenance_priority"`
	PriorityScore   int                `json:"priority_score"`
	Items           []MaintenanceItem  `json:"maintenance_items"`
	Summary         MaintenanceSummary `json:"summary"`
	NextAction      string             `json:"next_recommended_action"`
}

// BuildMaintenance derives a report from underperforming panels,
// system efficiency and the currently active alerts.
//
// Scoring: each underperformer adds 10 points, efficiency below 70%
// adds 50 (below 85% adds 25), and each active alert adds 15. Totals
// above 100/50/25 map to Critical/High/Medium priority.
func BuildMaintenance(under []tigo.UnderperformingPanel, eff tigo.EfficiencyMetrics, activeAlerts []tigo.Alert, thresholdPercent float64) MaintenanceReport {
	items := []MaintenanceItem{}
	score := 0

	if len(under) > 0 {
		priority := PriorityMedium
		if len(under) > 3 {
			priority = PriorityHigh
		}
		affected := lo.Map(lo.Slice(under, 0, 5), func(p tigo.UnderperformingPanel, _ int) string {
			return p.PanelID
		})
		items = append(items, MaintenanceItem{
			Category:       "Panel Performance",
			Issue:          fmt.Sprintf("%d panels performing below %.1f%%", len(under), thresholdPercent),
			Priority:       priority,
			Recommendation: "Inspect underperforming panels for soiling, shading, or hardware issues",
			AffectedPanels: affected,
		})
		score += len(under) * 10
	}

	avgEfficiency := eff.AverageEfficiencyPercent
	if eff.PanelCount == 0 {
		// Without panel data there is nothing to judge efficiency against
		avgEfficiency = 100
	}
	switch {
	case avgEfficiency < 70:
		items = append(items, MaintenanceItem{
			Category:       "System Efficiency",
			Issue:          fmt.Sprintf("Overall system efficiency at %.1f%%", avgEfficiency),
			Priority:       PriorityHigh,
			Recommendation: "Schedule comprehensive system inspection and cleaning",
		})
		score += 50
	case avgEfficiency < 85:
		items = append(items, MaintenanceItem{
			Category:       "System Efficiency",
			Issue:          fmt.Sprintf("System efficiency below optimal at %.1f%%", avgEfficiency),
			Priority:       PriorityMedium,
			Recommendation: "Consider panel cleaning and connection inspection",
		})
		score += 25
	}

	if len(activeAlerts) > 0 {
		items = append(items, MaintenanceItem{
			Category:       "System Alerts",
			Issue:          fmt.Sprintf("%d active system alerts", len(activeAlerts)),
			Priority:       PriorityHigh,
			Recommendation: "Address active alerts immediately",
			AlertDetails:   lo.Slice(activeAlerts, 0, 3),
		})
		score += len(activeAlerts) * 15
	}

	report := MaintenanceReport{
		OverallPriority: overallPriority(score),
		PriorityScore:   score,
		Items:           items,
		Summary: MaintenanceSummary{
			TotalIssues: len(items),
			CriticalIssues: lo.CountBy(items, func(i MaintenanceItem) bool {
				return i.Priority == PriorityHigh
			}),
			SystemEfficiency:      avgEfficiency,
			UnderperformingPanels: len(under),
		},
		NextAction: "System is performing well - continue regular monitoring",
	}
	if len(items) > 0 {
		report.NextAction = items[0].Recommendation
	}

	return report
}

func overallPriority(score int) Priority {
	switch {
	case score > 100:
		return PriorityCritical
	case score > 50:
		return PriorityHigh
	case score > 25:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// ActiveAlerts filters a listing down to unresolved alerts.
func ActiveAlerts(alerts []tigo.Alert) []tigo.Alert {
	return lo.Filter(alerts, func(a tigo.Alert, _ int) bool {
		return a.Status == "active"
	})
}
