package insights

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestGradeHealth(t *testing.T) {
	tests := []struct {
		name       string
		alertCount int
		efficiency float64
		want       HealthStatus
	}{
		{name: "no alerts high efficiency", alertCount: 0, efficiency: 92, want: HealthExcellent},
		{name: "efficiency exactly 80 is not excellent", alertCount: 0, efficiency: 80, want: HealthGood},
		{name: "couple of alerts", alertCount: 2, efficiency: 75, want: HealthGood},
		{name: "several alerts", alertCount: 3, efficiency: 75, want: HealthFair},
		{name: "five alerts low efficiency", alertCount: 5, efficiency: 61, want: HealthFair},
		{name: "too many alerts", alertCount: 6, efficiency: 95, want: HealthNeedsAttention},
		{name: "no alerts but poor efficiency", alertCount: 0, efficiency: 50, want: HealthNeedsAttention},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GradeHealth(tt.alertCount, tt.efficiency)
			if got != tt.want {
				t.Errorf("GradeHealth(%d, %v) = %q, want %q", tt.alertCount, tt.efficiency, got, tt.want)
			}
		})
	}
}

func TestHealthRecommendations(t *testing.T) {
	tests := []struct {
		name       string
		status     HealthStatus
		alertCount int
		efficiency float64
		want       []string
	}{
		{
			name:       "excellent system",
			status:     HealthExcellent,
			alertCount: 0,
			efficiency: 92,
			want:       []string{"System is performing optimally"},
		},
		{
			name:       "alerts and poor efficiency",
			status:     HealthNeedsAttention,
			alertCount: 3,
			efficiency: 65,
			want: []string{
				"Review and address active system alerts",
				"System efficiency is below optimal - consider maintenance check",
			},
		},
		{
			name:       "good system has nothing to say",
			status:     HealthGood,
			alertCount: 0,
			efficiency: 75,
			want:       []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HealthRecommendations(tt.status, tt.alertCount, tt.efficiency)
			if got == nil {
				t.Fatal("recommendations must never be nil")
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("recommendations mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
