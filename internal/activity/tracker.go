// Package activity tracks which organizations are sending events.
//
// The ingest handler records every stored message. A background sweeper
// marks organizations idle once nothing has arrived for a threshold and
// forgets them after a longer one, so the roster only holds orgs that have
// been active recently.
package activity

import (
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Entry is one organization's ingest activity.
type Entry struct {
	OrgID         string    `json:"orgId"`
	FirstSeen     time.Time `json:"firstSeen"`
	LastSeen      time.Time `json:"lastSeen"`
	LastMessageID string    `json:"lastMessageId,omitempty"`
	MessageCount  int64     `json:"messageCount"`
	IdleSecs      float64   `json:"idleSecs"`
	Idle          bool      `json:"idle,omitempty"`
	IdleSince     time.Time `json:"idleSince,omitzero"`
}

// SweepConfig configures the background idle sweeper.
type SweepConfig struct {
	// IdleAfter is how long an org must go without messages before it is
	// marked idle. Default: 15 minutes.
	IdleAfter time.Duration

	// EvictAfter is how long an idle org stays in the roster. Default: 1 hour.
	EvictAfter time.Duration

	// Interval is how often the sweeper runs. Default: 1 minute.
	Interval time.Duration

	// OnIdle is called outside the lock for each org newly marked idle.
	OnIdle func(orgID string)
}

// Tracker is an in-memory roster of organizations seen by ingest.
type Tracker struct {
	mu   sync.RWMutex
	orgs map[string]*orgState
	now  func() time.Time

	stop chan struct{}
	done chan struct{}
}

type orgState struct {
	firstSeen     time.Time
	lastSeen      time.Time
	lastMessageID string
	count         int64
	idle          bool
	idleSince     time.Time
}

// New creates an empty tracker.
func New() *Tracker {
	return &Tracker{
		orgs: make(map[string]*orgState),
		now:  time.Now,
	}
}

// Record notes that a message for orgID was stored.
func (t *Tracker) Record(orgID, messageID string) {
	if orgID == "" {
		return
	}
	now := t.now()

	t.mu.Lock()
	defer t.mu.Unlock()

	st, ok := t.orgs[orgID]
	if !ok {
		st = &orgState{firstSeen: now}
		t.orgs[orgID] = st
	}
	if st.idle {
		slog.Info("activity: org active again", "org_id", orgID)
		st.idle = false
		st.idleSince = time.Time{}
	}
	st.lastSeen = now
	st.lastMessageID = messageID
	st.count++
}

// Roster returns a snapshot of tracked orgs, most recently active first.
// Orgs idle for longer than within are left out; pass 0 to include all.
func (t *Tracker) Roster(within time.Duration) []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()

	now := t.now()
	entries := make([]Entry, 0, len(t.orgs))
	for org, st := range t.orgs {
		idle := now.Sub(st.lastSeen)
		if within > 0 && idle > within {
			continue
		}
		entries = append(entries, Entry{
			OrgID:         org,
			FirstSeen:     st.firstSeen,
			LastSeen:      st.lastSeen,
			LastMessageID: st.lastMessageID,
			MessageCount:  st.count,
			IdleSecs:      idle.Seconds(),
			Idle:          st.idle,
			IdleSince:     st.idleSince,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].LastSeen.Equal(entries[j].LastSeen) {
			return entries[i].OrgID < entries[j].OrgID
		}
		return entries[i].LastSeen.After(entries[j].LastSeen)
	})
	return entries
}

// StartSweeper launches the idle sweeper. Call Stop to shut it down.
func (t *Tracker) StartSweeper(cfg SweepConfig) {
	if cfg.IdleAfter == 0 {
		cfg.IdleAfter = 15 * time.Minute
	}
	if cfg.EvictAfter == 0 {
		cfg.EvictAfter = time.Hour
	}
	if cfg.Interval == 0 {
		cfg.Interval = time.Minute
	}

	t.stop = make(chan struct{})
	t.done = make(chan struct{})
	go t.sweepLoop(cfg)
	slog.Info("activity: sweeper started", "idle_after", cfg.IdleAfter, "interval", cfg.Interval)
}

// Stop shuts down the sweeper. It is a no-op if the sweeper never started.
func (t *Tracker) Stop() {
	if t.stop != nil {
		close(t.stop)
		<-t.done
		t.stop = nil
		t.done = nil
	}
}

func (t *Tracker) sweepLoop(cfg SweepConfig) {
	defer close(t.done)

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-t.stop:
			return
		case <-ticker.C:
			t.sweep(cfg)
		}
	}
}

func (t *Tracker) sweep(cfg SweepConfig) {
	now := t.now()
	var newlyIdle []string

	t.mu.Lock()
	for org, st := range t.orgs {
		if st.idle {
			if now.Sub(st.idleSince) > cfg.EvictAfter {
				delete(t.orgs, org)
			}
			continue
		}
		if now.Sub(st.lastSeen) > cfg.IdleAfter {
			st.idle = true
			st.idleSince = now
			newlyIdle = append(newlyIdle, org)
		}
	}
	t.mu.Unlock()

	for _, org := range newlyIdle {
		slog.Info("activity: org idle", "org_id", org, "idle_after", cfg.IdleAfter)
		if cfg.OnIdle != nil {
			cfg.OnIdle(org)
		}
	}
}
