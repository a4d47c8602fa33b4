package services

import (
	"sync"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
)

// AbuseGuardConfig controls when a source gets blocked.
type AbuseGuardConfig struct {
	// Threshold is the number of rejections inside Window that triggers a block.
	Threshold int
	Window    time.Duration
	// Cooldown is how long a block lasts.
	Cooldown time.Duration
}

// DefaultAbuseGuardConfig returns three rejections in ten minutes, blocking
// for fifteen.
func DefaultAbuseGuardConfig() AbuseGuardConfig {
	return AbuseGuardConfig{Threshold: 3, Window: 10 * time.Minute, Cooldown: 15 * time.Minute}
}

type abuseKey struct {
	tenant string
	source string
}

type abuseEntry struct {
	rejections   []time.Time
	blockedUntil time.Time
}

// AbuseGuard counts rejected orders per (tenant, source) in a sliding window
// and blocks a source for Cooldown once Threshold rejections land inside the
// window. It only observes REJECTED transitions; it never gates them.
//
// State lives in process memory: each service process keeps its own counters,
// and a restart forgives every source.
type AbuseGuard struct {
	cfg AbuseGuardConfig
	now func() time.Time

	mu      sync.Mutex
	entries map[abuseKey]*abuseEntry
}

// NewAbuseGuard creates a guard with no recorded rejections.
//
// Parameters:
//   - cfg: thresholds; Threshold must be at least 1, Window and Cooldown positive
//   - now: clock used for windows and cooldowns; nil means time.Now
//
// Returns:
//   - *AbuseGuard: the guard, ready for concurrent use
//   - error: validation error if cfg is out of range
//
// Example:
//
//	guard, err := NewAbuseGuard(DefaultAbuseGuardConfig(), nil)
//	if err != nil {
//	    return err
//	}
//	blocked := guard.RecordRejection(tenant, source)
func NewAbuseGuard(cfg AbuseGuardConfig, now func() time.Time) (*AbuseGuard, error) {
	if cfg.Threshold < 1 {
		return nil, errs.NewValueIsOutOfRangeError("abuse threshold", cfg.Threshold, 1, 1000)
	}
	if cfg.Window <= 0 {
		return nil, errs.NewValueIsInvalidError("abuse window")
	}
	if cfg.Cooldown <= 0 {
		return nil, errs.NewValueIsInvalidError("abuse cooldown")
	}
	if now == nil {
		now = time.Now
	}
	return &AbuseGuard{cfg: cfg, now: now, entries: make(map[abuseKey]*abuseEntry)}, nil
}

// RecordRejection registers one REJECTED order for source and reports
// whether the source is now blocked. A rejection landing while the source is
// already blocked is not counted again. Zero sources are ignored.
//
// Parameters:
//   - tenant: tenant the rejected order belongs to
//   - source: client address the order was placed from
//
// Returns:
//   - true if the source is blocked after this rejection
func (g *AbuseGuard) RecordRejection(tenant kernel.TenantID, source kernel.Source) bool {
	if source.IsZero() {
		return false
	}
	now := g.now()
	key := abuseKey{tenant: tenant.String(), source: source.String()}

	g.mu.Lock()
	defer g.mu.Unlock()

	e, ok := g.entries[key]
	if !ok {
		e = &abuseEntry{}
		g.entries[key] = e
	}
	if now.Before(e.blockedUntil) {
		return true
	}

	e.rejections = append(g.inWindow(e.rejections, now), now)
	if len(e.rejections) >= g.cfg.Threshold {
		e.blockedUntil = now.Add(g.cfg.Cooldown)
		e.rejections = nil
		return true
	}
	return false
}

// Check returns a BlockedError while source is cooling down, carrying the
// remaining cooldown as RetryAfter. It returns nil for unknown sources.
func (g *AbuseGuard) Check(tenant kernel.TenantID, source kernel.Source) error {
	now := g.now()
	key := abuseKey{tenant: tenant.String(), source: source.String()}

	g.mu.Lock()
	defer g.mu.Unlock()

	e, ok := g.entries[key]
	if !ok || !now.Before(e.blockedUntil) {
		return nil
	}
	return errs.NewBlockedError(source.String(), e.blockedUntil.Sub(now))
}

// Rejections returns how many rejections of source are still inside the window.
func (g *AbuseGuard) Rejections(tenant kernel.TenantID, source kernel.Source) int {
	now := g.now()
	key := abuseKey{tenant: tenant.String(), source: source.String()}

	g.mu.Lock()
	defer g.mu.Unlock()

	e, ok := g.entries[key]
	if !ok {
		return 0
	}
	return len(g.inWindow(e.rejections, now))
}

// Sweep forgets sources with no live rejections and no active block.
// It returns how many entries were dropped.
func (g *AbuseGuard) Sweep() int {
	now := g.now()

	g.mu.Lock()
	defer g.mu.Unlock()

	dropped := 0
	for key, e := range g.entries {
		e.rejections = g.inWindow(e.rejections, now)
		if len(e.rejections) == 0 && !now.Before(e.blockedUntil) {
			delete(g.entries, key)
			dropped++
		}
	}
	return dropped
}

func (g *AbuseGuard) inWindow(ts []time.Time, now time.Time) []time.Time {
	cutoff := now.Add(-g.cfg.Window)
	i := 0
	for i < len(ts) && !ts[i].After(cutoff) {
		i++
	}
	return ts[i:]
}
