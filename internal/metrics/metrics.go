// Package metrics provides lightweight, lock-free counters for
// tracking runtime statistics of the command server.
//
// All methods are safe for concurrent use.  A nil *Collector is a
// valid no-op receiver, so callers never need to nil-check.
package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Collector tracks runtime metrics for a command server.
// A nil Collector is safe to use; all methods become no-ops.
type Collector struct {
	connectionsActive atomic.Int64
	connectionsTotal  atomic.Int64
	commandsTotal     atomic.Int64
	commandErrors     atomic.Int64

	mu           sync.RWMutex
	startTime    time.Time
	lastError    time.Time
	lastErrorMsg string
}

// New creates a metrics collector with the start time set to now.
func New() *Collector {
	return &Collector{startTime: time.Now()}
}

// ── Connection metrics ───────────────────────────────────────────────

// ConnectionOpened increments both the active and total counters.
func (c *Collector) ConnectionOpened() {
	if c == nil {
		return
	}
	c.connectionsActive.Add(1)
	c.connectionsTotal.Add(1)
}

// ConnectionClosed decrements the active connection counter.
func (c *Collector) ConnectionClosed() {
	if c == nil {
		return
	}
	c.connectionsActive.Add(-1)
}

// ActiveConnections returns the current number of open connections.
func (c *Collector) ActiveConnections() int64 {
	if c == nil {
		return 0
	}
	return c.connectionsActive.Load()
}

// TotalConnections returns the lifetime connection count.
func (c *Collector) TotalConnections() int64 {
	if c == nil {
		return 0
	}
	return c.connectionsTotal.Load()
}

// ── Command metrics ──────────────────────────────────────────────────

// CommandProcessed records one dispatched command line.
func (c *Collector) CommandProcessed() {
	if c == nil {
		return
	}
	c.commandsTotal.Add(1)
}

// CommandFailed increments the error counter and stores the reason.
func (c *Collector) CommandFailed(reason string) {
	if c == nil {
		return
	}
	c.commandErrors.Add(1)
	c.mu.Lock()
	c.lastError = time.Now()
	c.lastErrorMsg = reason
	c.mu.Unlock()
}

// TotalCommands returns the lifetime command count.
func (c *Collector) TotalCommands() int64 {
	if c == nil {
		return 0
	}
	return c.commandsTotal.Load()
}

// ErrorCount returns the total number of failed commands.
func (c *Collector) ErrorCount() int64 {
	if c == nil {
		return 0
	}
	return c.commandErrors.Load()
}

// ── Snapshot ─────────────────────────────────────────────────────────

// Snapshot is a point-in-time view of all metrics.
type Snapshot struct {
	Uptime            string `json:"uptime"`
	ConnectionsActive int64  `json:"connections_active"`
	ConnectionsTotal  int64  `json:"connections_total"`
	CommandsTotal     int64  `json:"commands_total"`
	ErrorsTotal       int64  `json:"errors_total"`
	LastError         string `json:"last_error,omitempty"`
	LastErrorMessage  string `json:"last_error_message,omitempty"`
}

// Snapshot returns a copy of all current metrics.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Snapshot{
		Uptime:            time.Since(c.startTime).Truncate(time.Second).String(),
		ConnectionsActive: c.connectionsActive.Load(),
		ConnectionsTotal:  c.connectionsTotal.Load(),
		CommandsTotal:     c.commandsTotal.Load(),
		ErrorsTotal:       c.commandErrors.Load(),
	}
	if !c.lastError.IsZero() {
		s.LastError = c.lastError.Format(time.RFC3339)
		s.LastErrorMessage = c.lastErrorMsg
	}
	return s
}
