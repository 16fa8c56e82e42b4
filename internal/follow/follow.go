// Package follow tails one organization's events through the query API and
// forwards each page to a set of destinations.
package follow

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/alfredjeanlab/listener/internal/model"
)

// Defaults applied by NewScheduler.
const (
	DefaultPageSize = 100
	DefaultInterval = 5 * time.Second
)

// Source returns events with ids greater than firstEvent in ascending order.
type Source interface {
	ListEvents(ctx context.Context, orgID string, firstEvent int64, max int) ([]*model.Event, error)
}

// Destination receives pages of events in id order.
type Destination interface {
	Name() string
	Write(ctx context.Context, orgID string, events []*model.Event) error
}

// Options configure a Scheduler.
type Options struct {
	OrgID    string
	Cursor   int64 // highest event id already delivered
	PageSize int
	Interval time.Duration
}

// Scheduler polls a source on an interval, drains the backlog after the
// cursor, and hands each page to every destination.
type Scheduler struct {
	source       Source
	destinations []Destination
	opts         Options
	logger       *slog.Logger

	mu     sync.Mutex
	cursor int64

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler creates a scheduler. Zero PageSize and Interval take the
// defaults.
func NewScheduler(source Source, destinations []Destination, opts Options, logger *slog.Logger) *Scheduler {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	return &Scheduler{
		source:       source,
		destinations: destinations,
		opts:         opts,
		logger:       logger,
		cursor:       opts.Cursor,
	}
}

// Cursor returns the highest event id every destination has accepted.
func (s *Scheduler) Cursor() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// Start begins periodic polling. It polls once immediately, then on each tick.
func (s *Scheduler) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(ctx)
	}()
}

// Stop cancels the scheduler and waits for the current poll to finish.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

// Run polls until ctx is done.
func (s *Scheduler) Run(ctx context.Context) {
	s.run(ctx)
}

func (s *Scheduler) run(ctx context.Context) {
	s.poll(ctx)

	ticker := time.NewTicker(s.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.poll(ctx)
		}
	}
}

func (s *Scheduler) poll(ctx context.Context) {
	n, err := s.PollOnce(ctx)
	if err != nil && ctx.Err() == nil {
		s.logger.Error("follow poll failed", "org_id", s.opts.OrgID, "cursor", s.Cursor(), "err", err)
		return
	}
	if n > 0 {
		s.logger.Info("follow delivered events", "org_id", s.opts.OrgID, "events", n, "cursor", s.Cursor())
	}
}

// PollOnce fetches pages after the cursor until a short page, delivering
// each one. The cursor moves past a page only when every destination
// accepted it. It returns the number of events delivered.
func (s *Scheduler) PollOnce(ctx context.Context) (int, error) {
	delivered := 0
	for ctx.Err() == nil {
		cursor := s.Cursor()
		page, err := s.source.ListEvents(ctx, s.opts.OrgID, cursor, s.opts.PageSize)
		if err != nil {
			return delivered, fmt.Errorf("list events after %d: %w", cursor, err)
		}
		if len(page) == 0 {
			return delivered, nil
		}

		for _, dest := range s.destinations {
			if err := dest.Write(ctx, s.opts.OrgID, page); err != nil {
				return delivered, fmt.Errorf("destination %s: %w", dest.Name(), err)
			}
		}

		s.mu.Lock()
		s.cursor = page[len(page)-1].EventID
		s.mu.Unlock()
		delivered += len(page)

		if len(page) < s.opts.PageSize {
			return delivered, nil
		}
	}
	return delivered, ctx.Err()
}
