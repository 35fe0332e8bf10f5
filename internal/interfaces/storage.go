package interfaces

import "context"

// PrefsStore persists viewer preferences across sessions.
type PrefsStore interface {
	// LastPortfolioID returns the remembered portfolio id, 0 if none.
	LastPortfolioID(ctx context.Context) (int64, error)
	SetLastPortfolioID(ctx context.Context, id int64) error
	ClearLastPortfolioID(ctx context.Context) error

	Close() error
}
