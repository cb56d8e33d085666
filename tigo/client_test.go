package tigo

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/matt-dreyer/Tigo-MCP-server/cache"
	"github.com/morikuni/failure/v2"
)

const testToken = "test-token"

func testHandler(t *testing.T) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/users/login" {
			user, pass, ok := r.BasicAuth()
			if !ok || user != "user@example.com" || pass != "secret" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			fmt.Fprintf(w, `{"user":{"user_id":7,"auth":%q}}`, testToken)
			return
		}
		if r.Header.Get("Authorization") != "Bearer "+testToken {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		switch r.URL.Path {
		case "/users/view":
			fmt.Fprint(w, `{"user":{"user_id":7,"first_name":"Ada","last_name":"Day","email":"user@example.com"}}`)
		case "/systems":
			fmt.Fprint(w, `{"systems":[{"system_id":1234,"name":"Home","status":"Active","power_rating":"5670","timezone":"America/Los_Angeles"},{"system_id":5678,"name":"Cabin"}]}`)
		case "/systems/view":
			fmt.Fprintf(w, `{"system":{"system_id":%s,"name":"Home","status":"Active"}}`, r.URL.Query().Get("id"))
		case "/systems/layout":
			fmt.Fprint(w, `{"system_layout":{"panels":[{"label":"A1"},{"label":"A2"}]}}`)
		case "/sources":
			fmt.Fprint(w, `{"sources":[{"source_id":1,"name":"Inverter 1"}]}`)
		case "/data/summary":
			fmt.Fprint(w, `{"summary":{"last_power_dc":"2345.6","daily_energy_dc":12345.6,"lifetime_energy_dc":"9876543","updated_on":"2025-08-18 12:34:56"}}`)
		case "/alerts/system":
			if r.URL.Query().Get("start_added") != "" {
				fmt.Fprint(w, `{"alerts":[{"alert_id":1,"title":"Low production","status":"active"}]}`)
				return
			}
			fmt.Fprint(w, `{"alerts":[{"alert_id":1,"title":"Low production","status":"active"},{"alert_id":2,"title":"Gateway offline","status":"resolved"}]}`)
		case "/alerts/types":
			fmt.Fprint(w, `{"alert_types":[{"alert_type_id":10,"name":"Low production","severity":"warning"}]}`)
		case "/data/aggregate":
			w.Header().Set("Content-Type", "text/csv")
			fmt.Fprint(w, "Datetime,Pin\n2025-08-18 10:00:00,1000\n2025-08-18 10:01:00,1100\n")
		case "/data/combined":
			w.Header().Set("Content-Type", "text/csv")
			fmt.Fprint(w, "Datetime,A1,A2\n2025-08-18 10:00:00,210,100\n2025-08-18 11:00:00,210,100\n")
		default:
			http.NotFound(w, r)
		}
	}
}

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	oldDir := cache.DefaultDir
	cache.DefaultDir = t.TempDir()
	t.Cleanup(func() { cache.DefaultDir = oldDir })

	c, err := NewClient(Config{
		Username: "user@example.com",
		Password: "secret",
		BaseURL:  srv.URL,
	})
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestNewClientMissingCredentials(t *testing.T) {
	if _, err := NewClient(Config{}); err == nil {
		t.Fatal("expected error for empty credentials")
	}
}

func TestGetUser(t *testing.T) {
	c := newTestClient(t, testHandler(t))

	got, err := c.GetUser(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	want := User{UserID: 7, FirstName: "Ada", LastName: "Day", Email: "user@example.com"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("GetUser mismatch (-want +got):\n%s", diff)
	}
}

func TestListSystems(t *testing.T) {
	c := newTestClient(t, testHandler(t))

	systems, err := c.ListSystems(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if len(systems) != 2 {
		t.Fatalf("got %d systems, want 2", len(systems))
	}
	if systems[0].SystemID != 1234 {
		t.Errorf("first system_id = %d, want 1234", systems[0].SystemID)
	}
	// power_rating arrives string-encoded
	if float64(systems[0].PowerRating) != 5670 {
		t.Errorf("power_rating = %v, want 5670", systems[0].PowerRating)
	}
}

func TestPrimarySystemID(t *testing.T) {
	listCalls := 0
	base := testHandler(t)
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/systems" {
			listCalls++
		}
		base(w, r)
	}))

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		id, err := c.PrimarySystemID(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if id != 1234 {
			t.Fatalf("PrimarySystemID = %d, want 1234", id)
		}
	}
	if listCalls != 1 {
		t.Errorf("listed systems %d times, want 1 (memoized)", listCalls)
	}
}

func TestPrimarySystemIDNoSystems(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/users/login" {
			fmt.Fprintf(w, `{"user":{"user_id":7,"auth":%q}}`, testToken)
			return
		}
		fmt.Fprint(w, `{"systems":[]}`)
	}))

	_, err := c.PrimarySystemID(context.Background())
	if err == nil {
		t.Fatal("expected error for account without systems")
	}
	if msg := failure.MessageOf(err); msg.String() != "No systems found" {
		t.Errorf("message = %q, want %q", msg, "No systems found")
	}
}

func TestGetSummary(t *testing.T) {
	c := newTestClient(t, testHandler(t))

	got, err := c.GetSummary(context.Background(), 1234)
	if err != nil {
		t.Fatal(err)
	}

	if float64(got.LastPowerDC) != 2345.6 {
		t.Errorf("last_power_dc = %v, want 2345.6", got.LastPowerDC)
	}
	if float64(got.DailyEnergyDC) != 12345.6 {
		t.Errorf("daily_energy_dc = %v, want 12345.6", got.DailyEnergyDC)
	}
	if got.UpdatedOn != "2025-08-18 12:34:56" {
		t.Errorf("updated_on = %q", got.UpdatedOn)
	}
}

func TestGetAlerts(t *testing.T) {
	c := newTestClient(t, testHandler(t))
	ctx := context.Background()

	all, err := c.GetAlerts(ctx, 1234, time.Time{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("got %d alerts, want 2", len(all))
	}

	since := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	recent, err := c.GetAlerts(ctx, 1234, since)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 1 {
		t.Fatalf("got %d windowed alerts, want 1", len(recent))
	}
	if recent[0].Status != "active" {
		t.Errorf("status = %q, want active", recent[0].Status)
	}
}

func TestGetAlertTypesCached(t *testing.T) {
	typeCalls := 0
	base := testHandler(t)
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/alerts/types" {
			typeCalls++
		}
		base(w, r)
	}))

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		types, err := c.GetAlertTypes(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if len(types) != 1 || types[0].AlertTypeID != 10 {
			t.Fatalf("unexpected alert types: %+v", types)
		}
	}
	if typeCalls != 1 {
		t.Errorf("fetched alert types %d times, want 1 (cached)", typeCalls)
	}
}

func TestGetSystemInfo(t *testing.T) {
	c := newTestClient(t, testHandler(t))

	info, err := c.GetSystemInfo(context.Background(), 1234)
	if err != nil {
		t.Fatal(err)
	}

	if info.System.SystemID != 1234 {
		t.Errorf("system_id = %d, want 1234", info.System.SystemID)
	}
	if len(info.Layout) == 0 {
		t.Error("layout is empty")
	}
	if len(info.Sources) != 1 || info.Sources[0].SourceID != 1 {
		t.Errorf("unexpected sources: %+v", info.Sources)
	}
	if float64(info.Summary.LastPowerDC) != 2345.6 {
		t.Errorf("summary last_power_dc = %v, want 2345.6", info.Summary.LastPowerDC)
	}
}

func TestGetAggregateData(t *testing.T) {
	c := newTestClient(t, testHandler(t))

	start := time.Date(2025, 8, 18, 0, 0, 0, 0, time.UTC)
	end := start.Add(12 * time.Hour)
	ds, err := c.GetAggregateData(context.Background(), 1234, start, end, LevelMinute)
	if err != nil {
		t.Fatal(err)
	}

	if ds.Len() != 2 {
		t.Fatalf("got %d rows, want 2", ds.Len())
	}
	if got := ds.ColumnTotal(0); got != 2100 {
		t.Errorf("ColumnTotal(0) = %v, want 2100", got)
	}
}

func TestReloginOn401(t *testing.T) {
	logins := 0
	systemCalls := 0
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users/login":
			logins++
			fmt.Fprintf(w, `{"user":{"user_id":7,"auth":"token-%d"}}`, logins)
		case "/systems":
			systemCalls++
			// The first token is treated as expired
			if r.Header.Get("Authorization") == "Bearer token-1" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			fmt.Fprint(w, `{"systems":[{"system_id":1234,"name":"Home"}]}`)
		default:
			http.NotFound(w, r)
		}
	}))

	systems, err := c.ListSystems(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(systems) != 1 {
		t.Fatalf("got %d systems, want 1", len(systems))
	}
	if logins != 2 {
		t.Errorf("logged in %d times, want 2", logins)
	}
	if systemCalls != 2 {
		t.Errorf("hit /systems %d times, want 2", systemCalls)
	}
}

func TestAPIErrorIncludesStatus(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/users/login" {
			fmt.Fprintf(w, `{"user":{"user_id":7,"auth":%q}}`, testToken)
			return
		}
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, "upstream unavailable")
	}))

	_, err := c.ListSystems(context.Background())
	if err == nil {
		t.Fatal("expected error for 502 response")
	}
	if msg := failure.MessageOf(err); msg.String() != "Tigo API returned an error" {
		t.Errorf("message = %q", msg)
	}
}
