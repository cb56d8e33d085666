package tigo

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func analysisClient(t *testing.T) *Client {
	t.Helper()

	csv := strings.Join([]string{
		"Datetime,A1,A2,A3,A4",
		"2025-08-18 10:00:00,210,180,150,100",
		"2025-08-18 11:00:00,210,180,150,100",
		"2025-08-18 12:00:00,210,180,150,100",
	}, "\n")

	base := testHandler(t)
	return newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/data/combined" {
			w.Header().Set("Content-Type", "text/csv")
			fmt.Fprint(w, csv)
			return
		}
		base(w, r)
	}))
}

func approx(got, want float64) bool {
	return math.Abs(got-want) < 0.01
}

func TestPanelStats(t *testing.T) {
	ds := &DataSet{
		Columns: []string{"A2", "A1"},
		Rows: []Row{
			{Values: []float64{100, 200}},
			{Values: []float64{110, 210}},
			{Values: []float64{90, math.NaN()}},
			{Values: []float64{0, 0}},
		},
	}

	got := panelStats(ds)

	if len(got) != 2 {
		t.Fatalf("got %d panels, want 2", len(got))
	}
	// Sorted best first; neither the NaN sample nor the nighttime row
	// may drag a mean down
	if got[0].PanelID != "A1" || !approx(got[0].MeanPower, 205) {
		t.Errorf("best panel = %+v, want A1 at 205", got[0])
	}
	if !approx(got[0].PercentOfBest, 100) {
		t.Errorf("best percent_of_best = %v, want 100", got[0].PercentOfBest)
	}
	if got[1].PanelID != "A2" || !approx(got[1].MeanPower, 100) {
		t.Errorf("second panel = %+v, want A2 at 100", got[1])
	}
	if !approx(got[1].PercentOfBest, 100.0/205*100) {
		t.Errorf("second percent_of_best = %v", got[1].PercentOfBest)
	}
	if !approx(got[1].EnergyWh, 300) {
		t.Errorf("A2 energy = %v, want 300", got[1].EnergyWh)
	}
}

func TestPanelStatsEmpty(t *testing.T) {
	if got := panelStats(&DataSet{}); len(got) != 0 {
		t.Errorf("got %d panels, want 0", len(got))
	}
}

func TestGetPanelPerformance(t *testing.T) {
	c := analysisClient(t)

	stats, err := c.GetPanelPerformance(context.Background(), 1234, 7)
	if err != nil {
		t.Fatal(err)
	}

	wantOrder := []string{"A1", "A2", "A3", "A4"}
	var gotOrder []string
	for _, s := range stats {
		gotOrder = append(gotOrder, s.PanelID)
	}
	if diff := cmp.Diff(wantOrder, gotOrder); diff != "" {
		t.Errorf("panel order mismatch (-want +got):\n%s", diff)
	}
}

func TestCalculateSystemEfficiency(t *testing.T) {
	c := analysisClient(t)

	m, err := c.CalculateSystemEfficiency(context.Background(), 1234, 7)
	if err != nil {
		t.Fatal(err)
	}

	if m.SystemID != 1234 || m.DaysAnalyzed != 7 {
		t.Errorf("window fields = %+v", m)
	}
	if m.PanelCount != 4 {
		t.Errorf("panel_count = %d, want 4", m.PanelCount)
	}
	if m.BestPanel != "A1" {
		t.Errorf("best_panel = %q, want A1", m.BestPanel)
	}
	// mean(210,180,150,100) / 210 * 100
	if !approx(m.AverageEfficiencyPercent, 76.190476) {
		t.Errorf("average_efficiency_percent = %v, want 76.19", m.AverageEfficiencyPercent)
	}
	if !approx(m.TotalEnergyWh, 1920) {
		t.Errorf("total_energy_wh = %v, want 1920", m.TotalEnergyWh)
	}
	if m.WindowStart == "" || m.WindowEnd == "" {
		t.Error("analysis window is empty")
	}
}

func TestFindUnderperformingPanels(t *testing.T) {
	c := analysisClient(t)

	under, err := c.FindUnderperformingPanels(context.Background(), 1234, 85, 7)
	if err != nil {
		t.Fatal(err)
	}

	// A2 sits at 85.7% of best and must not be flagged; worst first
	wantOrder := []string{"A4", "A3"}
	var gotOrder []string
	for _, p := range under {
		gotOrder = append(gotOrder, p.PanelID)
	}
	if diff := cmp.Diff(wantOrder, gotOrder); diff != "" {
		t.Errorf("underperformer order mismatch (-want +got):\n%s", diff)
	}

	for _, p := range under {
		if p.ThresholdPercent != 85 {
			t.Errorf("threshold_percent = %v, want 85", p.ThresholdPercent)
		}
		if p.PercentOfBest >= 85 {
			t.Errorf("panel %s flagged at %v%%", p.PanelID, p.PercentOfBest)
		}
	}
}

func TestFindUnderperformingPanelsDefaultThreshold(t *testing.T) {
	c := analysisClient(t)

	under, err := c.FindUnderperformingPanels(context.Background(), 1234, 0, 7)
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range under {
		if p.ThresholdPercent != DefaultThresholdPercent {
			t.Errorf("threshold_percent = %v, want %v", p.ThresholdPercent, DefaultThresholdPercent)
		}
	}
}
