package store

import (
	"context"
	"errors"

	"github.com/Ashmit111/secure-scan/internal/domain"
)

// ErrNotFound is returned by Get and History when no website exists for the
// given URL.
var ErrNotFound = errors.New("website not found")

// StatusStore is the persistence port for website status and check history.
// Swap in any adapter (memory, postgres, sqlite) — the monitor only needs
// create/read/update-by-url semantics.
//
// Upsert must be atomic per URL: the log append and the field updates land
// together or not at all, and two concurrent Upserts for the same URL must
// not interleave. Write failures are returned, never swallowed; a lost write
// is lost monitoring history.
type StatusStore interface {
	// Get returns the record for url without its log (use History for
	// entries), or ErrNotFound.
	Get(ctx context.Context, url string) (*domain.Website, error)

	// Upsert creates the record on first sight with a log holding only
	// entry; otherwise it appends entry, sets status and responseTime, and
	// bumps lastChecked. It is not deduplicating: identical consecutive
	// calls append distinct entries.
	Upsert(ctx context.Context, url, ownerContact string, status domain.Status, responseTime string, entry domain.LogEntry) (*domain.Website, error)

	// List returns all tracked websites, logs omitted.
	List(ctx context.Context) ([]*domain.Website, error)

	// History returns up to limit of the newest log entries for url,
	// oldest-first. limit <= 0 means the adapter's default cap.
	History(ctx context.Context, url string, limit int) ([]domain.LogEntry, error)
}

// DefaultHistoryLimit caps History responses when the caller does not say.
const DefaultHistoryLimit = 50
