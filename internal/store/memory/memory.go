package memory

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	jsoniter "github.com/json-iterator/go"

	"ricavi/internal/core"
	"ricavi/internal/store"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	_ store.RawStore     = (*Store)(nil)
	_ store.PeriodLister = (*Store)(nil)
)

// Store keeps raw months in memory. When path is set every save is
// snapshotted to a JSON file keyed by period.
type Store struct {
	mu     sync.Mutex
	months map[core.Period]core.RawMonth
	path   string
}

// snapshot is the on-disk layout: period key -> day -> room -> raw.
type snapshot map[string]map[string]map[string]string

func New() *Store {
	return &Store{months: make(map[core.Period]core.RawMonth)}
}

// NewFromFile loads a snapshot from path. A missing or unreadable snapshot
// starts an empty dataset.
func NewFromFile(path string) *Store {
	s := New()
	s.path = path

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("Cannot read data file, starting empty", "path", path, "error", err)
		}
		return s
	}
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		slog.Warn("Malformed data file, starting empty", "path", path, "error", err)
		return s
	}
	for key, days := range snap {
		p, err := core.ParsePeriodKey(key)
		if err != nil {
			slog.Warn("Skipping malformed period in data file", "key", key, "error", err)
			continue
		}
		m := core.RawMonth{}
		for dayKey, rooms := range days {
			var day int
			if _, err := fmt.Sscanf(dayKey, "%d", &day); err != nil || !p.ValidDay(day) {
				continue
			}
			for room, raw := range rooms {
				m.Set(day, room, raw)
			}
		}
		s.months[p] = m
	}
	return s
}

// Load returns a copy of the stored month.
func (s *Store) Load(_ context.Context, p core.Period) (core.RawMonth, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.months[p]
	if !ok {
		return core.RawMonth{}, nil
	}
	return m.Clone(), nil
}

// Save replaces the stored month and writes the snapshot if configured.
// The in-memory month changes only once the snapshot is written.
func (s *Store) Save(_ context.Context, p core.Period, raw core.RawMonth) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[core.Period]core.RawMonth, len(s.months)+1)
	for k, m := range s.months {
		next[k] = m
	}
	if raw.Count() == 0 {
		delete(next, p)
	} else {
		next[p] = raw.Clone()
	}
	if s.path != "" {
		if err := writeSnapshot(s.path, next); err != nil {
			return err
		}
	}
	s.months = next
	return nil
}

// Periods lists stored periods, oldest first.
func (s *Store) Periods(_ context.Context) ([]core.Period, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Period, 0, len(s.months))
	for p := range s.months {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out, nil
}

func writeSnapshot(path string, months map[core.Period]core.RawMonth) error {
	snap := make(snapshot, len(months))
	for p, m := range months {
		days := make(map[string]map[string]string, len(m))
		for day, rooms := range m {
			cp := make(map[string]string, len(rooms))
			for room, raw := range rooms {
				cp[room] = raw
			}
			days[fmt.Sprintf("%d", day)] = cp
		}
		snap[p.Key()] = days
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create data directory: %w", err)
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}
