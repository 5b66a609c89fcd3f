package state

import (
	"path/filepath"
)

const starSnapshotFile = "awesome_stars.json"

// StarSnapshot is the awesome-list adapter's private state: star counts from
// the previous run, keyed by repository path. Diffing against it yields the
// trending delta. It is deliberately separate from the dedup ledgers.
type StarSnapshot struct {
	path  string
	stars map[string]int
	dirty bool
}

// OpenStarSnapshot loads the snapshot from the state directory.
func OpenStarSnapshot(dir string) (*StarSnapshot, error) {
	s := &StarSnapshot{
		path:  filepath.Join(dir, starSnapshotFile),
		stars: map[string]int{},
	}
	if err := readJSON(s.path, &s.stars); err != nil {
		return nil, err
	}
	return s, nil
}

// Delta returns current minus previous stars for the repo, or 0 when the repo
// was not in the previous snapshot, and records the current value.
func (s *StarSnapshot) Delta(repo string, current int) int {
	prev, ok := s.stars[repo]
	if s.stars[repo] != current || !ok {
		s.stars[repo] = current
		s.dirty = true
	}
	if !ok || current < prev {
		return 0
	}
	return current - prev
}

// Flush persists the snapshot atomically.
func (s *StarSnapshot) Flush() error {
	if !s.dirty {
		return nil
	}
	if err := writeJSON(s.path, s.stars); err != nil {
		return err
	}
	s.dirty = false
	return nil
}
