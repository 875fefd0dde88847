package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"ricavi/internal/cache"
	"ricavi/internal/core"
	"ricavi/internal/store"
)

// Publisher announces month changes to other processes.
type Publisher interface {
	PublishMonthUpdated(ctx context.Context, p core.Period) error
}

// MonthView is a month's raw cells together with their summary.
type MonthView struct {
	Period  core.Period
	Raw     core.RawMonth
	Summary core.MonthSummary
}

// Options configures a RevenueService.
type Options struct {
	Policy    core.Policy
	Rooms     []string
	Cache     *cache.LRUCache[core.Period, core.MonthSummary]
	Publisher Publisher
}

// RevenueService connects the raw store with the parser and aggregator.
type RevenueService struct {
	store     store.RawStore
	parser    *core.Parser
	rooms     []string
	roomSet   map[string]bool
	cache     *cache.LRUCache[core.Period, core.MonthSummary]
	publisher Publisher

	// writes serializes read-modify-write per month; gens counts saves per
	// month so a reader never caches a summary older than the last save.
	mu     sync.Mutex
	writes map[core.Period]*sync.Mutex
	gens   map[core.Period]uint64
}

func NewRevenueService(rs store.RawStore, opts Options) *RevenueService {
	s := &RevenueService{
		store:     rs,
		parser:    core.NewParser(opts.Policy),
		rooms:     append([]string(nil), opts.Rooms...),
		roomSet:   make(map[string]bool, len(opts.Rooms)),
		cache:     opts.Cache,
		publisher: opts.Publisher,
		writes:    make(map[core.Period]*sync.Mutex),
		gens:      make(map[core.Period]uint64),
	}
	for _, r := range opts.Rooms {
		s.roomSet[r] = true
	}
	return s
}

// Rooms returns the configured rooms; empty means one cell per day.
func (s *RevenueService) Rooms() []string {
	return append([]string(nil), s.rooms...)
}

// Policy returns the amount policy used for parsing.
func (s *RevenueService) Policy() core.Policy {
	return s.parser.Policy()
}

// Month loads and summarizes a month. A storage failure degrades to an
// empty month so the views keep working.
func (s *RevenueService) Month(ctx context.Context, p core.Period) (MonthView, error) {
	if err := p.Validate(); err != nil {
		return MonthView{}, err
	}
	gen := s.generation(p)
	raw := s.load(ctx, p)
	return MonthView{
		Period:  p,
		Raw:     raw,
		Summary: s.summarize(p, raw, gen),
	}, nil
}

// Summary returns only the summary of a month, served from cache when fresh.
func (s *RevenueService) Summary(ctx context.Context, p core.Period) (core.MonthSummary, error) {
	if err := p.Validate(); err != nil {
		return core.MonthSummary{}, err
	}
	if s.cache != nil {
		if sum, ok := s.cache.Get(p); ok {
			return sum.Clone(), nil
		}
	}
	gen := s.generation(p)
	return s.summarize(p, s.load(ctx, p), gen), nil
}

// Compare summarizes two months independently of each other.
func (s *RevenueService) Compare(ctx context.Context, a, b core.Period) (core.Comparison, error) {
	if err := a.Validate(); err != nil {
		return core.Comparison{}, err
	}
	if err := b.Validate(); err != nil {
		return core.Comparison{}, err
	}

	var cmp core.Comparison
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sum, err := s.Summary(gctx, a)
		cmp.Primary = sum
		return err
	})
	g.Go(func() error {
		sum, err := s.Summary(gctx, b)
		cmp.Other = sum
		return err
	})
	if err := g.Wait(); err != nil {
		return core.Comparison{}, err
	}
	return cmp, nil
}

// UpdateCell stores the raw text of one cell verbatim and returns the new
// month view.
func (s *RevenueService) UpdateCell(ctx context.Context, p core.Period, day int, room, raw string) (MonthView, error) {
	if err := p.Validate(); err != nil {
		return MonthView{}, err
	}
	if !p.ValidDay(day) {
		return MonthView{}, fmt.Errorf("day %d of %s: %w", day, p, core.ErrInvalidDay)
	}
	if err := s.checkRoom(room); err != nil {
		return MonthView{}, err
	}

	unlock := s.lockMonth(p)
	defer unlock()

	current, err := s.store.Load(ctx, p)
	if err != nil {
		return MonthView{}, fmt.Errorf("load month %s: %w", p, err)
	}
	if current == nil {
		current = core.RawMonth{}
	}
	current.Set(day, room, raw)

	return s.save(ctx, p, current)
}

// ReplaceMonth stores a whole month at once, e.g. from an import.
func (s *RevenueService) ReplaceMonth(ctx context.Context, p core.Period, raw core.RawMonth) (MonthView, error) {
	if err := p.Validate(); err != nil {
		return MonthView{}, err
	}
	clean := core.RawMonth{}
	for day, rooms := range raw {
		if !p.ValidDay(day) {
			return MonthView{}, fmt.Errorf("day %d of %s: %w", day, p, core.ErrInvalidDay)
		}
		for room, text := range rooms {
			if err := s.checkRoom(room); err != nil {
				return MonthView{}, err
			}
			clean.Set(day, room, text)
		}
	}
	unlock := s.lockMonth(p)
	defer unlock()
	return s.save(ctx, p, clean)
}

// save must be called with the month lock held.
func (s *RevenueService) save(ctx context.Context, p core.Period, raw core.RawMonth) (MonthView, error) {
	if err := s.store.Save(ctx, p, raw); err != nil {
		return MonthView{}, fmt.Errorf("save month %s: %w", p, err)
	}

	s.mu.Lock()
	s.gens[p]++
	gen := s.gens[p]
	if s.cache != nil {
		s.cache.Delete(p)
	}
	s.mu.Unlock()

	view := MonthView{Period: p, Raw: raw, Summary: s.summarize(p, raw, gen)}

	if s.publisher != nil {
		if err := s.publisher.PublishMonthUpdated(ctx, p); err != nil {
			// the month is saved locally, the mirror catches up on the next update
			slog.WarnContext(ctx, "Failed to publish month update", "period", p.Key(), "error", err)
		}
	}
	return view, nil
}

func (s *RevenueService) load(ctx context.Context, p core.Period) core.RawMonth {
	raw, err := s.store.Load(ctx, p)
	if err != nil {
		slog.WarnContext(ctx, "Failed to load month, using empty data", "period", p.Key(), "error", err)
		return core.RawMonth{}
	}
	if raw == nil {
		return core.RawMonth{}
	}
	return raw
}

// summarize caches the result only if no save happened since gen was read.
func (s *RevenueService) summarize(p core.Period, raw core.RawMonth, gen uint64) core.MonthSummary {
	sum := s.parser.Summarize(raw, p.Days(), p.Label())
	if s.cache != nil {
		s.mu.Lock()
		if s.gens[p] == gen {
			s.cache.Set(p, sum.Clone())
		}
		s.mu.Unlock()
	}
	return sum
}

func (s *RevenueService) generation(p core.Period) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gens[p]
}

// lockMonth serializes writers of one month and returns the unlock func.
func (s *RevenueService) lockMonth(p core.Period) func() {
	s.mu.Lock()
	m, ok := s.writes[p]
	if !ok {
		m = &sync.Mutex{}
		s.writes[p] = m
	}
	s.mu.Unlock()
	m.Lock()
	return m.Unlock
}

func (s *RevenueService) checkRoom(room string) error {
	if len(s.rooms) == 0 {
		if room != "" {
			return fmt.Errorf("room %q without configured rooms: %w", room, core.ErrUnknownRoom)
		}
		return nil
	}
	if !s.roomSet[room] {
		return fmt.Errorf("room %q: %w", room, core.ErrUnknownRoom)
	}
	return nil
}

// IsInputError reports whether err was caused by bad caller input.
func IsInputError(err error) bool {
	return errors.Is(err, core.ErrInvalidDay) ||
		errors.Is(err, core.ErrInvalidMonth) ||
		errors.Is(err, core.ErrInvalidYear) ||
		errors.Is(err, core.ErrUnknownRoom)
}
