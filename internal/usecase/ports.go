package usecase

import (
	"context"

	"github.com/daypaste/dayclip/internal/domain"
)

// EntryRepository defines storage operations for clipboard entries, including
// the derived day index.
type EntryRepository interface {
	Insert(ctx context.Context, entry domain.Entry) (domain.Entry, error)
	FindByID(ctx context.Context, id string) (domain.Entry, error)
	FindByDay(ctx context.Context, dayKey string) ([]domain.Entry, error)
	FindRecent(ctx context.Context, limit int) ([]domain.Entry, error)
	Update(ctx context.Context, entry domain.Entry) (domain.Entry, error)
	DeleteByID(ctx context.Context, id string) (bool, error)
	DeleteByDay(ctx context.Context, dayKey string) (int64, error)
	ListDays(ctx context.Context, limit int) ([]domain.DaySummary, error)
}

// Broadcaster fans a domain event out to every connected subscriber,
// best-effort and without replay.
type Broadcaster interface {
	Publish(ctx context.Context, event domain.Event) error
}

// FeedCache holds the serialized cross-day latest feed between mutations.
type FeedCache interface {
	GetLatest(ctx context.Context) ([]domain.Entry, bool)
	SetLatest(ctx context.Context, entries []domain.Entry)
	Invalidate(ctx context.Context)
}
