// Package state persists the identity ledgers backing duplicate suppression.
//
// Three layers, consulted in strict order: the long-lived seen ledger
// (promoted on successful import), the global import log, and a per-calendar-
// date import log. The short-lived logs cover the window between "digest
// produced" and "digest imported", when the seen ledger has not been updated
// yet.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"genairadar/internal/domain"
	"genairadar/internal/ports"
)

const (
	seenFile      = "monitor_seen.json"
	globalLogFile = "import_log_global.json"
	dailyLogFmt   = "import_log_%s.json"
	dayKeyLayout  = "20060102"
)

// Store is the file-backed dedup store. Ledgers are loaded fully into memory
// at construction and flushed atomically; a single run is the only writer.
type Store struct {
	dir   string
	today string

	seen     map[string]time.Time
	globalLg map[string]struct{}
	dailyLg  map[string]struct{}
	dirty    bool
}

var _ ports.DedupStore = (*Store)(nil)

// Open loads all three ledgers for the given run date. An unreadable ledger
// is a domain.ErrPersistence: the dedup guarantee cannot be honored silently.
func Open(dir string, runDate time.Time) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create state dir: %v", domain.ErrPersistence, err)
	}

	s := &Store{
		dir:      dir,
		today:    runDate.Format(dayKeyLayout),
		seen:     map[string]time.Time{},
		globalLg: map[string]struct{}{},
		dailyLg:  map[string]struct{}{},
	}

	if err := readJSON(filepath.Join(dir, seenFile), &s.seen); err != nil {
		return nil, err
	}
	if err := readRefSet(filepath.Join(dir, globalLogFile), s.globalLg); err != nil {
		return nil, err
	}
	daily := filepath.Join(dir, fmt.Sprintf(dailyLogFmt, s.today))
	if err := readRefSet(daily, s.dailyLg); err != nil {
		return nil, err
	}

	return s, nil
}

// IsNew reports whether none of the refs appear in any layer. The seen ledger
// wins over both import logs; the daily log only counts for today's date
// (older daily files are simply never loaded).
func (s *Store) IsNew(refs ...string) bool {
	for _, ref := range refs {
		if ref == "" {
			continue
		}
		if _, ok := s.seen[ref]; ok {
			return false
		}
		if _, ok := s.globalLg[ref]; ok {
			return false
		}
		if _, ok := s.dailyLg[ref]; ok {
			return false
		}
	}
	return true
}

// MarkSeen records refs in the long-lived ledger with their first-seen
// timestamp. Entries are never deleted; the first timestamp wins.
func (s *Store) MarkSeen(ts time.Time, refs ...string) {
	for _, ref := range refs {
		if ref == "" {
			continue
		}
		if _, ok := s.seen[ref]; !ok {
			s.seen[ref] = ts.UTC()
			s.dirty = true
		}
	}
}

// MarkLogged records refs in the global and per-day import logs.
func (s *Store) MarkLogged(day time.Time, refs ...string) {
	for _, ref := range refs {
		if ref == "" {
			continue
		}
		s.globalLg[ref] = struct{}{}
		if day.Format(dayKeyLayout) == s.today {
			s.dailyLg[ref] = struct{}{}
		}
		s.dirty = true
	}
}

// SeenLedger returns a copy of the long-lived ledger (used by the dashboard).
func (s *Store) SeenLedger() map[string]time.Time {
	out := make(map[string]time.Time, len(s.seen))
	for k, v := range s.seen {
		out[k] = v
	}
	return out
}

// ImportCounts reports sizes of the global and today's import logs.
func (s *Store) ImportCounts() (global, today int) {
	return len(s.globalLg), len(s.dailyLg)
}

// Flush writes all three ledgers atomically (write-to-temp-then-rename).
func (s *Store) Flush() error {
	if !s.dirty {
		return nil
	}

	if err := writeJSON(filepath.Join(s.dir, seenFile), s.seen); err != nil {
		return err
	}
	if err := writeRefSet(filepath.Join(s.dir, globalLogFile), s.globalLg); err != nil {
		return err
	}
	daily := filepath.Join(s.dir, fmt.Sprintf(dailyLogFmt, s.today))
	if err := writeRefSet(daily, s.dailyLg); err != nil {
		return err
	}

	s.dirty = false
	return nil
}

type refSetFile struct {
	Refs []string `json:"refs"`
}

func readRefSet(path string, into map[string]struct{}) error {
	var file refSetFile
	if err := readJSON(path, &file); err != nil {
		return err
	}
	for _, ref := range file.Refs {
		into[ref] = struct{}{}
	}
	return nil
}

func writeRefSet(path string, set map[string]struct{}) error {
	file := refSetFile{Refs: make([]string, 0, len(set))}
	for ref := range set {
		file.Refs = append(file.Refs, ref)
	}
	sort.Strings(file.Refs)
	return writeJSON(path, file)
}

func readJSON(path string, v any) error {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: read %s: %v", domain.ErrPersistence, path, err)
	}
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: parse %s: %v", domain.ErrPersistence, path, err)
	}
	return nil
}

func writeJSON(path string, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", domain.ErrPersistence, path, err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(raw, '\n'), 0o644); err != nil {
		return fmt.Errorf("%w: write %s: %v", domain.ErrPersistence, tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("%w: replace %s: %v", domain.ErrPersistence, path, err)
	}
	return nil
}
