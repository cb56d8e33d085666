// Package metrics exports production gauges for Prometheus scrapes.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/matt-dreyer/Tigo-MCP-server/tigo"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	minFetchInterval = 5 * time.Minute
	fetchTimeout     = 10 * time.Second
)

type snapshot struct {
	system    tigo.System
	summary   tigo.Summary
	fetchedAt time.Time
	success   bool
}

// Collector collects production metrics for one system. Scrapes inside
// the minimum fetch interval are served from the last snapshot so a
// tight scrape loop cannot hammer the API.
type Collector struct {
	client   *tigo.Client
	systemID int

	lastPower      *prometheus.GaugeVec
	dailyEnergy    *prometheus.GaugeVec
	lifetimeEnergy *prometheus.GaugeVec
	lastReported   *prometheus.GaugeVec
	lastSuccess    prometheus.Gauge
	success        prometheus.Gauge

	mu     sync.Mutex
	cached *snapshot
}

// NewCollector builds a collector for the given system. A zero systemID
// resolves to the account's primary system on first scrape.
func NewCollector(client *tigo.Client, systemID int) *Collector {
	labels := []string{"system_id", "system_name"}
	return &Collector{
		client:   client,
		systemID: systemID,
		lastPower: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "tigo_last_power_watts",
			Help: "Most recent DC power reading per system (watts)",
		}, labels),
		dailyEnergy: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "tigo_daily_energy_wh",
			Help: "Energy produced today per system (watt hours)",
		}, labels),
		lifetimeEnergy: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "tigo_lifetime_energy_wh",
			Help: "Lifetime energy produced per system (watt hours)",
		}, labels),
		lastReported: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "tigo_last_report_timestamp_seconds",
			Help: "Time of the last production report per system (epoch seconds)",
		}, labels),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tigo_last_success_timestamp_seconds",
			Help: "Last successful Tigo scrape timestamp (epoch seconds)",
		}),
		success: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tigo_scrape_success",
			Help: "Last scrape success (1=ok, 0=error)",
		}),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.lastPower.Describe(ch)
	c.dailyEnergy.Describe(ch)
	c.lifetimeEnergy.Describe(ch)
	c.lastReported.Describe(ch)
	c.lastSuccess.Describe(ch)
	c.success.Describe(ch)
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.mu.Lock()
	if c.cached != nil && time.Since(c.cached.fetchedAt) < minFetchInterval {
		snapshot := *c.cached
		c.mu.Unlock()
		c.applySnapshot(snapshot)
		c.collectAll(ch)
		return
	}
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	snapshot := c.fetch(ctx)
	c.storeSnapshot(snapshot)
	c.applySnapshot(snapshot)
	c.collectAll(ch)
}

func (c *Collector) fetch(ctx context.Context) snapshot {
	id := c.systemID
	if id == 0 {
		var err error
		id, err = c.client.PrimarySystemID(ctx)
		if err != nil {
			return snapshot{fetchedAt: time.Now()}
		}
	}

	system, err := c.client.GetSystem(ctx, id)
	if err != nil {
		return snapshot{fetchedAt: time.Now()}
	}

	summary, err := c.client.GetSummary(ctx, id)
	if err != nil {
		return snapshot{system: system, fetchedAt: time.Now()}
	}

	return snapshot{
		system:    system,
		summary:   summary,
		fetchedAt: time.Now(),
		success:   true,
	}
}

func (c *Collector) storeSnapshot(snapshot snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cached = &snapshot
}

func (c *Collector) applySnapshot(snapshot snapshot) {
	c.lastPower.Reset()
	c.dailyEnergy.Reset()
	c.lifetimeEnergy.Reset()
	c.lastReported.Reset()

	if snapshot.system.SystemID != 0 {
		labels := prometheus.Labels{
			"system_id":   strconv.Itoa(snapshot.system.SystemID),
			"system_name": snapshot.system.Name,
		}
		c.lastPower.With(labels).Set(float64(snapshot.summary.LastPowerDC))
		c.dailyEnergy.With(labels).Set(float64(snapshot.summary.DailyEnergyDC))
		c.lifetimeEnergy.With(labels).Set(float64(snapshot.summary.LifetimeEnergyDC))
		if t, ok := snapshot.summary.UpdatedAt(); ok {
			c.lastReported.With(labels).Set(float64(t.Unix()))
		}
	}

	if snapshot.success {
		c.success.Set(1)
		c.lastSuccess.Set(float64(snapshot.fetchedAt.Unix()))
	} else {
		c.success.Set(0)
	}
}

func (c *Collector) collectAll(ch chan<- prometheus.Metric) {
	c.lastPower.Collect(ch)
	c.dailyEnergy.Collect(ch)
	c.lifetimeEnergy.Collect(ch)
	c.lastReported.Collect(ch)
	c.lastSuccess.Collect(ch)
	c.success.Collect(ch)
}

// Registry builds a Prometheus registry holding the given collectors.
func Registry(collectors ...prometheus.Collector) *prometheus.Registry {
	registry := prometheus.NewRegistry()
	for _, collector := range collectors {
		registry.MustRegister(collector)
	}
	return registry
}

// Handler exposes a registry in the Prometheus text format.
func Handler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
