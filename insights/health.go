package insights

// HealthStatus grades overall system condition.
type HealthStatus string

const (
	HealthExcellent      HealthStatus = "Excellent"
	HealthGood           HealthStatus = "Good"
	HealthFair           HealthStatus = "Fair"
	HealthNeedsAttention HealthStatus = "Needs Attention"
)

// GradeHealth grades a system from its alert count and average panel
// efficiency.
func GradeHealth(alertCount int, efficiencyPercent float64) HealthStatus {
	switch {
	case alertCount == 0 && efficiencyPercent > 80:
		return HealthExcellent
	case alertCount <= 2 && efficiencyPercent > 70:
		return HealthGood
	case alertCount <= 5 && efficiencyPercent > 60:
		return HealthFair
	default:
		return HealthNeedsAttention
	}
}

// HealthRecommendations lists follow-up actions for a graded system.
// The slice is never nil so it serializes as an empty list.
func HealthRecommendations(status HealthStatus, alertCount int, efficiencyPercent float64) []string {
	recs := []string{}
	if alertCount > 0 {
		recs = append(recs, "Review and address active system alerts")
	}
	if efficiencyPercent < 70 {
		recs = append(recs, "System efficiency is below optimal - consider maintenance check")
	}
	if status == HealthExcellent {
		recs = append(recs, "System is performing optimally")
	}
	return recs
}
