// Package tigo implements a client for the Tigo Energy Platform API v3.
//
// The tigo package provides:
// - Authenticated access to api2.tigoenergy.com with lazy login
// - System, layout and source discovery
// - Production summaries and CSV time-series aggregates
// - Alert retrieval and panel-level performance analysis
package tigo
