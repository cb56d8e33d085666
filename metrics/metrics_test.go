package metrics

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/matt-dreyer/Tigo-MCP-server/cache"
	"github.com/matt-dreyer/Tigo-MCP-server/tigo"
)

func newMetricsClient(t *testing.T, handler http.Handler) *tigo.Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	oldDir := cache.DefaultDir
	cache.DefaultDir = t.TempDir()
	t.Cleanup(func() { cache.DefaultDir = oldDir })

	client, err := tigo.NewClient(tigo.Config{
		Username: "user@example.com",
		Password: "secret",
		BaseURL:  srv.URL,
	})
	if err != nil {
		t.Fatal(err)
	}
	return client
}

func scrape(t *testing.T, handler http.Handler) string {
	t.Helper()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("scrape returned status %d", rec.Code)
	}
	return rec.Body.String()
}

func TestCollectorScrape(t *testing.T) {
	client := newMetricsClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users/login":
			fmt.Fprint(w, `{"user":{"user_id":7,"auth":"test-token"}}`)
		case "/systems":
			fmt.Fprint(w, `{"systems":[{"system_id":1234,"name":"Home"}]}`)
		case "/systems/view":
			fmt.Fprint(w, `{"system":{"system_id":1234,"name":"Home"}}`)
		case "/data/summary":
			fmt.Fprint(w, `{"summary":{"last_power_dc":2345.6,"daily_energy_dc":12345.6,"lifetime_energy_dc":987654,"updated_on":"2025-08-18 12:34:56"}}`)
		default:
			http.NotFound(w, r)
		}
	}))

	handler := Handler(Registry(NewCollector(client, 0)))
	body := scrape(t, handler)

	for _, line := range []string{
		`tigo_last_power_watts{system_id="1234",system_name="Home"} 2345.6`,
		`tigo_daily_energy_wh{system_id="1234",system_name="Home"} 12345.6`,
		`tigo_lifetime_energy_wh{system_id="1234",system_name="Home"} 987654`,
		`tigo_last_report_timestamp_seconds{system_id="1234",system_name="Home"}`,
		"tigo_scrape_success 1",
	} {
		if !strings.Contains(body, line) {
			t.Errorf("scrape output missing %q:\n%s", line, body)
		}
	}
}

func TestCollectorServesCachedSnapshot(t *testing.T) {
	summaryHits := 0
	client := newMetricsClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users/login":
			fmt.Fprint(w, `{"user":{"user_id":7,"auth":"test-token"}}`)
		case "/systems/view":
			fmt.Fprint(w, `{"system":{"system_id":1234,"name":"Home"}}`)
		case "/data/summary":
			summaryHits++
			fmt.Fprint(w, `{"summary":{"last_power_dc":100}}`)
		default:
			http.NotFound(w, r)
		}
	}))

	handler := Handler(Registry(NewCollector(client, 1234)))
	scrape(t, handler)
	body := scrape(t, handler)

	if summaryHits != 1 {
		t.Errorf("summary fetched %d times across two scrapes, want 1", summaryHits)
	}
	if !strings.Contains(body, `tigo_last_power_watts{system_id="1234",system_name="Home"} 100`) {
		t.Errorf("cached scrape lost the gauge:\n%s", body)
	}
}

func TestCollectorScrapeFailure(t *testing.T) {
	client := newMetricsClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/users/login" {
			fmt.Fprint(w, `{"user":{"user_id":7,"auth":"test-token"}}`)
			return
		}
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	handler := Handler(Registry(NewCollector(client, 1234)))
	body := scrape(t, handler)

	if !strings.Contains(body, "tigo_scrape_success 0") {
		t.Errorf("failed scrape not reported:\n%s", body)
	}
	if strings.Contains(body, "tigo_last_power_watts{") {
		t.Errorf("failed scrape still exported power series:\n%s", body)
	}
}
