package locsession

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"kampalabites/internal/geocode"
	"kampalabites/internal/geolocate"
	"kampalabites/internal/structs"

	"go.uber.org/zap"
)

const updateBuffer = 8

// Update is a settled result set for one generation of input.
type Update struct {
	Generation uint64                        `json:"generation"`
	Query      string                        `json:"query"`
	Results    []structs.DeliverabilityResult `json:"results"`
}

// Session owns at most one in-flight lookup for a single input field. Every
// keystroke supersedes the previous one: the old fetch is cancelled
// synchronously, the generation counter moves on, and any late completion
// compares its captured generation before publishing, so a stale result can
// never overwrite a newer one.
type Session struct {
	svc     *Service
	locator *geolocate.Locator

	mu       sync.Mutex
	gen      uint64
	cancel   context.CancelFunc
	locating bool
	closed   bool

	updates       chan Update
	intentDelay   time.Duration
	courtesyDelay time.Duration
}

// Updates delivers settled result sets, newest generation last. Consumers
// should trust the Generation field, not arrival order.
func (s *Session) Updates() <-chan Update {
	return s.updates
}

// Input supersedes any prior query. Queries shorter than the search minimum
// settle immediately with an empty set; everything else goes through the
// two-stage debounce before the geocoder is called.
func (s *Session) Input(query string) {
	q := strings.TrimSpace(query)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.gen++
	gen := s.gen

	var ctx context.Context
	if utf8.RuneCountInString(q) >= geocode.MinQueryLen {
		ctx, s.cancel = context.WithCancel(context.Background())
	}
	s.mu.Unlock()

	if ctx == nil {
		s.publish(Update{Generation: gen, Query: q, Results: []structs.DeliverabilityResult{}})
		return
	}
	go s.run(ctx, gen, q)
}

func (s *Session) run(ctx context.Context, gen uint64, query string) {
	// intent debounce, then a network-courtesy pause before dispatch
	if !sleepCtx(ctx, s.intentDelay) {
		return
	}
	if !sleepCtx(ctx, s.courtesyDelay) {
		return
	}

	res := s.svc.searcher.Search(ctx, query)
	if res.Stale {
		// outdated input, not an empty answer: publish nothing
		return
	}
	if !s.current(gen) {
		return
	}

	s.publish(Update{Generation: gen, Query: query, Results: s.svc.merge(query, res.Candidates)})
}

// Locate runs device detection through the two-attempt accuracy machine.
// Attempts are single-flight: the platform cannot abort a position request
// mid-flight, so a second concurrent one is refused rather than stacked.
func (s *Session) Locate(ctx context.Context) (structs.ResolvedLocation, *geolocate.Error) {
	s.mu.Lock()
	if s.locating {
		s.mu.Unlock()
		return structs.ResolvedLocation{}, &geolocate.Error{
			Category: geolocate.Unknown,
			Message:  "Location detection is already running.",
		}
	}
	s.locating = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.locating = false
		s.mu.Unlock()
	}()

	pos, lerr := s.locator.Locate(ctx)
	if lerr != nil {
		return structs.ResolvedLocation{}, lerr
	}
	return s.svc.ResolvePosition(pos.Point), nil
}

// Generation returns the current (most recent) input generation.
func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// Close cancels any in-flight work and stops future publications.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	close(s.updates)
}

func (s *Session) current(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed && gen == s.gen
}

func (s *Session) publish(u Update) {
	s.mu.Lock()
	if s.closed || u.Generation != s.gen {
		s.mu.Unlock()
		return
	}
	select {
	case s.updates <- u:
		s.mu.Unlock()
	default:
		s.mu.Unlock()
		s.svc.logger.Warn(context.TODO(), "session update dropped, consumer too slow",
			zap.Uint64("generation", u.Generation))
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
