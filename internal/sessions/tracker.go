// Package sessions derives privacy-preserving visitor session identifiers
// and tracks returning-visitor state in memory.
package sessions

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

const (
	defaultWindow    = 30 * time.Minute
	defaultRetention = 24 * time.Hour

	// bucketLayout renders the floored timestamp to minute granularity, so
	// every timestamp inside a window yields an identical bucket string.
	bucketLayout = "200601021504"
)

// ClickInfo describes one tracked click within a session.
type ClickInfo struct {
	IsFirstClick    bool
	ClicksInSession int
	DurationSeconds float64
}

type sessionState struct {
	firstSeen time.Time
	lastSeen  time.Time
	count     int
}

// Tracker holds per-session click state. All methods are safe for
// concurrent use; races between redirects for the same session resolve as
// last-writer-wins, which is acceptable for visit counting.
type Tracker struct {
	window    time.Duration
	retention time.Duration

	mu       sync.Mutex
	sessions map[string]*sessionState
}

func NewTracker(window, retention time.Duration) *Tracker {
	if window <= 0 {
		window = defaultWindow
	}
	if retention <= 0 {
		retention = defaultRetention
	}
	return &Tracker{
		window:    window,
		retention: retention,
		sessions:  make(map[string]*sessionState),
	}
}

// SessionID hashes IP, user agent, and the time bucket the timestamp falls
// into. Identical visitors inside one window share an id; crossing a window
// boundary or changing IP/UA starts a new session. No raw IP or UA is ever
// stored.
func (t *Tracker) SessionID(ip, userAgent string, ts time.Time) string {
	bucket := ts.UTC().Truncate(t.window).Format(bucketLayout)
	sum := sha256.Sum256([]byte(ip + "_" + userAgent + "_" + bucket))
	return hex.EncodeToString(sum[:])[:16]
}

// TrackClick records a click for a session on a specific short code and
// reports whether it opened the session. Session state is keyed by
// (session id, short code) so the same visitor clicking two different links
// counts as a first click on each.
func (t *Tracker) TrackClick(sessionID, shortCode string, ts time.Time) ClickInfo {
	key := sessionID + ":" + shortCode

	t.mu.Lock()
	defer t.mu.Unlock()

	state, ok := t.sessions[key]
	if !ok {
		t.sessions[key] = &sessionState{firstSeen: ts, lastSeen: ts, count: 1}
		return ClickInfo{IsFirstClick: true, ClicksInSession: 1}
	}

	state.count++
	state.lastSeen = ts
	return ClickInfo{
		IsFirstClick:    false,
		ClicksInSession: state.count,
		DurationSeconds: ts.Sub(state.firstSeen).Seconds(),
	}
}

// Seen reports whether a (session id, short code) pair has been tracked.
func (t *Tracker) Seen(sessionID, shortCode string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.sessions[sessionID+":"+shortCode]
	return ok
}

// Sweep drops sessions whose last activity is older than the retention
// horizon and returns the number removed. Best-effort memory bounding; a
// missed sweep only costs memory, never correctness.
func (t *Tracker) Sweep(now time.Time) int {
	cutoff := now.Add(-t.retention)

	t.mu.Lock()
	defer t.mu.Unlock()

	removed := 0
	for key, state := range t.sessions {
		if state.lastSeen.Before(cutoff) {
			delete(t.sessions, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked sessions.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sessions)
}
