package ports

import (
	"context"
	"time"

	"genairadar/internal/domain"
)

// SourceAdapter pulls fresh candidates from one upstream feed. A malformed
// upstream entry is skipped (and logged), never fatal for the adapter.
type SourceAdapter interface {
	Name() domain.Source
	Fetch(ctx context.Context) ([]domain.CandidateItem, error)
}

// DedupStore owns the three persisted identity ledgers. A ref is either an
// ItemKey rendered with Ref() or a canonical item URL; IsNew reports true only
// if none of the refs appear in any layer (seen ledger, global import log,
// today's import log).
type DedupStore interface {
	IsNew(refs ...string) bool
	MarkSeen(ts time.Time, refs ...string)
	MarkLogged(day time.Time, refs ...string)
	Flush() error
}

// DigestWriter serializes scored items to the digest file atomically.
type DigestWriter interface {
	Write(path string, items []domain.ScoredItem) error
}

// Notifier posts the run-end summary to an outbound channel.
type Notifier interface {
	PublishSummary(ctx context.Context, text string) error
}

// Scheduler controls when pipeline runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
