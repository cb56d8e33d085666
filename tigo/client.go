package tigo

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/matt-dreyer/Tigo-MCP-server/cache"
	"github.com/morikuni/failure/v2"
	"github.com/motemen/go-loghttp"
	"golang.org/x/sync/errgroup"
)

// DefaultBaseURL is the production endpoint of the Tigo Energy Platform API.
const DefaultBaseURL = "https://api2.tigoenergy.com/api/v3"

const (
	defaultTimeout = 15 * time.Second
	alertTypesTTL  = 24 * time.Hour
)

// Config carries the settings needed to talk to the Tigo API.
type Config struct {
	Username string
	Password string
	// BaseURL overrides DefaultBaseURL, mainly for tests.
	BaseURL string
	// Timeout bounds each HTTP request, 15s when zero.
	Timeout time.Duration
}

// Client talks to the Tigo Energy Platform API. Login happens lazily
// on the first request; the bearer token is kept for the client
// lifetime and refreshed once when the API answers 401.
type Client struct {
	username string
	password string
	baseURL  string
	http     *http.Client

	mu        sync.Mutex
	token     string
	primaryID int

	alertTypes *cache.Cache[[]AlertType]
	layouts    *cache.Cache[json.RawMessage]
}

// NewClient builds a Client from the given configuration.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Username == "" || cfg.Password == "" {
		return nil, failure.New(ErrCredentials,
			failure.Message("Tigo credentials are not configured"),
		)
	}

	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	c := &Client{
		username: cfg.Username,
		password: cfg.Password,
		baseURL:  baseURL,
		http: &http.Client{
			Timeout:   timeout,
			Transport: loghttp.DefaultTransport,
		},
		alertTypes: cache.New[[]AlertType]("alert-types"),
		layouts:    cache.New[json.RawMessage]("layouts"),
	}
	c.alertTypes.SetTTL(alertTypesTTL)

	return c, nil
}

// login exchanges the configured credentials for a bearer token.
// Callers must hold c.mu.
func (c *Client) login(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/users/login", nil)
	if err != nil {
		return failure.Wrap(err)
	}
	req.SetBasicAuth(c.username, c.password)

	resp, err := c.http.Do(req)
	if err != nil {
		return failure.Wrap(err, failure.Message("login request failed"))
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return failure.New(ErrLogin,
			failure.Message("Tigo rejected the configured credentials"),
			failure.Context{"status": resp.Status},
		)
	}
	if resp.StatusCode != http.StatusOK {
		return failure.New(ErrAPI,
			failure.Message("login returned an unexpected status"),
			failure.Context{"status": resp.Status},
		)
	}

	var lr loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return failure.New(ErrDecode, failure.Message("unexpected login response"))
	}
	if lr.User.Auth == "" {
		return failure.New(ErrLogin, failure.Message("login response carried no auth token"))
	}

	c.token = lr.User.Auth
	return nil
}

func (c *Client) ensureToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token == "" {
		if err := c.login(ctx); err != nil {
			return "", err
		}
	}
	return c.token, nil
}

// refreshToken drops a stale token and logs in again. Concurrent
// callers that already hold a newer token reuse it.
func (c *Client) refreshToken(ctx context.Context, stale string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token == stale {
		c.token = ""
		if err := c.login(ctx); err != nil {
			return "", err
		}
	}
	return c.token, nil
}

func (c *Client) roundTrip(ctx context.Context, path string, query url.Values, accept, token string) ([]byte, int, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, 0, failure.Wrap(err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, failure.Wrap(err, failure.Context{"path": path})
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, failure.Wrap(err, failure.Context{"path": path})
	}
	return body, resp.StatusCode, nil
}

// get performs an authenticated GET, logging in lazily and retrying
// once with a fresh token when the API answers 401.
func (c *Client) get(ctx context.Context, path string, query url.Values, accept string) ([]byte, error) {
	token, err := c.ensureToken(ctx)
	if err != nil {
		return nil, err
	}

	body, status, err := c.roundTrip(ctx, path, query, accept, token)
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnauthorized {
		token, err = c.refreshToken(ctx, token)
		if err != nil {
			return nil, err
		}
		body, status, err = c.roundTrip(ctx, path, query, accept, token)
		if err != nil {
			return nil, err
		}
	}
	if status != http.StatusOK {
		return nil, failure.New(ErrAPI,
			failure.Message("Tigo API returned an error"),
			failure.Context{
				"path":   path,
				"status": strconv.Itoa(status),
				"body":   snippet(body),
			},
		)
	}
	return body, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	body, err := c.get(ctx, path, query, "application/json")
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return failure.New(ErrDecode,
			failure.Message("unexpected response body"),
			failure.Context{"path": path, "body": snippet(body)},
		)
	}
	return nil
}

// snippet trims a response body for use in error context.
func snippet(body []byte) string {
	const max = 200
	s := strings.TrimSpace(string(body))
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}

// GetUser returns the account that owns the API credentials.
func (c *Client) GetUser(ctx context.Context) (User, error) {
	var r userResponse
	if err := c.getJSON(ctx, "/users/view", nil, &r); err != nil {
		return User{}, err
	}
	return r.User, nil
}

// ListSystems returns every system visible to the account.
func (c *Client) ListSystems(ctx context.Context) ([]System, error) {
	var r systemsResponse
	if err := c.getJSON(ctx, "/systems", nil, &r); err != nil {
		return nil, err
	}
	return r.Systems, nil
}

// GetSystem returns the detail view of a single system.
func (c *Client) GetSystem(ctx context.Context, systemID int) (System, error) {
	q := url.Values{}
	q.Set("id", strconv.Itoa(systemID))

	var r systemResponse
	if err := c.getJSON(ctx, "/systems/view", q, &r); err != nil {
		return System{}, err
	}
	return r.System, nil
}

// GetLayout returns the physical layout tree of a system. Layouts
// change rarely, so they are served from the file cache.
func (c *Client) GetLayout(ctx context.Context, systemID int) (json.RawMessage, error) {
	return c.layouts.GetOrSet(strconv.Itoa(systemID), func() (json.RawMessage, error) {
		q := url.Values{}
		q.Set("id", strconv.Itoa(systemID))

		var r layoutResponse
		if err := c.getJSON(ctx, "/systems/layout", q, &r); err != nil {
			return nil, err
		}
		return r.SystemLayout, nil
	}, false)
}

// ListSources returns the power sources attached to a system.
func (c *Client) ListSources(ctx context.Context, systemID int) ([]Source, error) {
	var r sourcesResponse
	if err := c.getJSON(ctx, "/sources", systemQuery(systemID), &r); err != nil {
		return nil, err
	}
	return r.Sources, nil
}

// GetSummary returns the current production snapshot of a system.
func (c *Client) GetSummary(ctx context.Context, systemID int) (Summary, error) {
	var r summaryResponse
	if err := c.getJSON(ctx, "/data/summary", systemQuery(systemID), &r); err != nil {
		return Summary{}, err
	}
	return r.Summary, nil
}

// GetAlerts returns the alerts of a system. A non-zero since limits
// the listing to alerts added after that instant.
func (c *Client) GetAlerts(ctx context.Context, systemID int, since time.Time) ([]Alert, error) {
	q := systemQuery(systemID)
	if !since.IsZero() {
		q.Set("start_added", since.Format("2006-01-02T15:04:05"))
	}

	var r alertsResponse
	if err := c.getJSON(ctx, "/alerts/system", q, &r); err != nil {
		return nil, err
	}
	return r.Alerts, nil
}

// GetAlertTypes returns the alert catalog. The catalog is static per
// API deployment and is served from the file cache for a day.
func (c *Client) GetAlertTypes(ctx context.Context) ([]AlertType, error) {
	return c.alertTypes.GetOrSet(c.baseURL, func() ([]AlertType, error) {
		var r alertTypesResponse
		if err := c.getJSON(ctx, "/alerts/types", nil, &r); err != nil {
			return nil, err
		}
		return r.AlertTypes, nil
	}, false)
}

// GetSystemInfo assembles the configuration view of a system. The
// sub-resources are fetched concurrently.
func (c *Client) GetSystemInfo(ctx context.Context, systemID int) (*SystemInfo, error) {
	info := &SystemInfo{}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		system, err := c.GetSystem(ctx, systemID)
		if err != nil {
			return err
		}
		info.System = system
		return nil
	})
	g.Go(func() error {
		layout, err := c.GetLayout(ctx, systemID)
		if err != nil {
			return err
		}
		info.Layout = layout
		return nil
	})
	g.Go(func() error {
		sources, err := c.ListSources(ctx, systemID)
		if err != nil {
			return err
		}
		info.Sources = sources
		return nil
	})
	g.Go(func() error {
		summary, err := c.GetSummary(ctx, systemID)
		if err != nil {
			return err
		}
		info.Summary = summary
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return info, nil
}

// PrimarySystemID returns the first system of the account, memoized
// for the client lifetime.
func (c *Client) PrimarySystemID(ctx context.Context) (int, error) {
	c.mu.Lock()
	id := c.primaryID
	c.mu.Unlock()
	if id != 0 {
		return id, nil
	}

	systems, err := c.ListSystems(ctx)
	if err != nil {
		return 0, err
	}
	if len(systems) == 0 {
		return 0, failure.New(ErrNoSystems, failure.Message("No systems found"))
	}

	c.mu.Lock()
	c.primaryID = systems[0].SystemID
	c.mu.Unlock()
	return systems[0].SystemID, nil
}

// GetAggregateData returns system-level production samples between
// start and end at the given level.
func (c *Client) GetAggregateData(ctx context.Context, systemID int, start, end time.Time, level Level) (*DataSet, error) {
	q := systemQuery(systemID)
	q.Set("start", start.Format(timeLayout))
	q.Set("end", end.Format(timeLayout))
	q.Set("level", string(level))
	q.Set("param", "Pin")

	body, err := c.get(ctx, "/data/aggregate", q, "text/csv")
	if err != nil {
		return nil, err
	}
	return ParseDataSet(bytes.NewReader(body))
}

// GetCombinedData returns per-panel production samples between start
// and end at the given level.
func (c *Client) GetCombinedData(ctx context.Context, systemID int, start, end time.Time, level Level) (*DataSet, error) {
	q := systemQuery(systemID)
	q.Set("start", start.Format(timeLayout))
	q.Set("end", end.Format(timeLayout))
	q.Set("agg", string(level))
	q.Set("header", "label")

	body, err := c.get(ctx, "/data/combined", q, "text/csv")
	if err != nil {
		return nil, err
	}
	return ParseDataSet(bytes.NewReader(body))
}

// GetTodayData returns today's minute-level production.
func (c *Client) GetTodayData(ctx context.Context, systemID int) (*DataSet, error) {
	now := time.Now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return c.GetAggregateData(ctx, systemID, start, now, LevelMinute)
}

// GetDateRangeData returns production for the trailing daysBack days.
func (c *Client) GetDateRangeData(ctx context.Context, systemID, daysBack int, level Level) (*DataSet, error) {
	end := time.Now()
	start := end.AddDate(0, 0, -daysBack)
	return c.GetAggregateData(ctx, systemID, start, end, level)
}

func systemQuery(systemID int) url.Values {
	q := url.Values{}
	q.Set("system_id", strconv.Itoa(systemID))
	return q
}
