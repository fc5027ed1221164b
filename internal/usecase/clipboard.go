package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/daypaste/dayclip/internal/domain"
)

var tracer = otel.Tracer("clipboard")

const (
	maxSourceLength = 120

	DefaultDayHistory  = 30
	DefaultLatestLimit = 20
	maxLatestLimit     = 100
)

// Limits carries the configurable query caps.
type Limits struct {
	DayHistory  int
	LatestLimit int
}

// CreateInput is the validated input for a new entry. Format defaults to
// markdown when empty.
type CreateInput struct {
	Content string
	Format  domain.Format
	Source  *string
}

// UpdateInput distinguishes "field absent" (nil pointer, leave unchanged)
// from "field present but blank" (clear, for Source).
type UpdateInput struct {
	Content *string
	Format  *domain.Format
	Source  *string
}

type ClipboardUsecase struct {
	repo   EntryRepository
	signal Broadcaster
	feed   FeedCache
	limits Limits
}

func NewClipboardUsecase(repo EntryRepository, signal Broadcaster, feed FeedCache, limits Limits) *ClipboardUsecase {
	if limits.DayHistory <= 0 {
		limits.DayHistory = DefaultDayHistory
	}
	if limits.LatestLimit <= 0 {
		limits.LatestLimit = DefaultLatestLimit
	}
	return &ClipboardUsecase{
		repo:   repo,
		signal: signal,
		feed:   feed,
		limits: limits,
	}
}

func (uc *ClipboardUsecase) Create(ctx context.Context, input CreateInput) (domain.Entry, error) {
	ctx, span := tracer.Start(ctx, "Clipboard.Usecase.Create")
	defer span.End()

	if strings.TrimSpace(input.Content) == "" {
		return domain.Entry{}, domain.ValidationError{Reason: "content must not be empty"}
	}

	format := input.Format
	if format == "" {
		format = domain.FormatMarkdown
	}
	if !format.Valid() {
		return domain.Entry{}, domain.ValidationError{Reason: fmt.Sprintf("unsupported format %q", format)}
	}

	source, err := normalizeSource(input.Source)
	if err != nil {
		return domain.Entry{}, err
	}

	entry, err := uc.repo.Insert(ctx, domain.Entry{
		Content: input.Content,
		Format:  format,
		Source:  source,
	})
	if err != nil {
		span.RecordError(err)
		return domain.Entry{}, err
	}

	uc.invalidateFeed(ctx)
	uc.publish(ctx, domain.CreatedEvent(entry))

	return entry, nil
}

func (uc *ClipboardUsecase) Update(ctx context.Context, id string, input UpdateInput) (domain.Entry, error) {
	ctx, span := tracer.Start(ctx, "Clipboard.Usecase.Update")
	defer span.End()

	entry, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Entry{}, err
	}

	if input.Content != nil {
		if strings.TrimSpace(*input.Content) == "" {
			return domain.Entry{}, domain.ValidationError{Reason: "content must not be empty"}
		}
		entry.Content = *input.Content
	}

	if input.Format != nil {
		if !input.Format.Valid() {
			return domain.Entry{}, domain.ValidationError{Reason: fmt.Sprintf("unsupported format %q", *input.Format)}
		}
		entry.Format = *input.Format
	}

	if input.Source != nil {
		source, err := normalizeSource(input.Source)
		if err != nil {
			return domain.Entry{}, err
		}
		entry.Source = source
	}

	saved, err := uc.repo.Update(ctx, entry)
	if err != nil {
		span.RecordError(err)
		return domain.Entry{}, err
	}

	uc.invalidateFeed(ctx)
	uc.publish(ctx, domain.UpdatedEvent(saved))

	return saved, nil
}

func (uc *ClipboardUsecase) Remove(ctx context.Context, id string) (domain.Removal, error) {
	ctx, span := tracer.Start(ctx, "Clipboard.Usecase.Remove")
	defer span.End()

	entry, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Removal{}, err
	}

	existed, err := uc.repo.DeleteByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		return domain.Removal{}, err
	}
	if !existed {
		return domain.Removal{}, domain.NotFoundError{Resource: "clipboard entry"}
	}

	removal := domain.Removal{ID: entry.ID, DayKey: entry.DayKey}

	uc.invalidateFeed(ctx)
	uc.publish(ctx, domain.DeletedEvent(removal))

	return removal, nil
}

// RemoveByDay clears a whole day partition. A clear that removes nothing is
// still a success and still emits, so clients re-query their day index.
func (uc *ClipboardUsecase) RemoveByDay(ctx context.Context, dayInput string) (domain.DayCleared, error) {
	ctx, span := tracer.Start(ctx, "Clipboard.Usecase.RemoveByDay")
	defer span.End()

	dayKey, err := domain.NormalizeDayKey(dayInput)
	if err != nil {
		return domain.DayCleared{}, err
	}

	removed, err := uc.repo.DeleteByDay(ctx, dayKey)
	if err != nil {
		span.RecordError(err)
		return domain.DayCleared{}, err
	}

	cleared := domain.DayCleared{DayKey: dayKey, Removed: removed}

	uc.invalidateFeed(ctx)
	uc.publish(ctx, domain.ClearedEvent(cleared))

	return cleared, nil
}

func (uc *ClipboardUsecase) Get(ctx context.Context, id string) (domain.Entry, error) {
	return uc.repo.FindByID(ctx, id)
}

// ListByDay returns a day's entries, newest first. A missing day parameter
// means today; a present but unparseable one is rejected.
func (uc *ClipboardUsecase) ListByDay(ctx context.Context, dayInput string) ([]domain.Entry, error) {
	ctx, span := tracer.Start(ctx, "Clipboard.Usecase.ListByDay")
	defer span.End()

	dayKey := domain.DayKeyOf(time.Now())
	if strings.TrimSpace(dayInput) != "" {
		normalized, err := domain.NormalizeDayKey(dayInput)
		if err != nil {
			return nil, err
		}
		dayKey = normalized
	}

	return uc.repo.FindByDay(ctx, dayKey)
}

func (uc *ClipboardUsecase) ListDays(ctx context.Context) ([]domain.DaySummary, error) {
	ctx, span := tracer.Start(ctx, "Clipboard.Usecase.ListDays")
	defer span.End()

	return uc.repo.ListDays(ctx, uc.limits.DayHistory)
}

// Latest returns the most recent entries across all days. The default page is
// served from the feed cache when one is configured.
func (uc *ClipboardUsecase) Latest(ctx context.Context, limit int) ([]domain.Entry, error) {
	ctx, span := tracer.Start(ctx, "Clipboard.Usecase.Latest")
	defer span.End()

	if limit <= 0 {
		limit = uc.limits.LatestLimit
	}
	if limit > maxLatestLimit {
		limit = maxLatestLimit
	}

	cacheable := uc.feed != nil && limit == uc.limits.LatestLimit
	if cacheable {
		if entries, found := uc.feed.GetLatest(ctx); found {
			return entries, nil
		}
	}

	entries, err := uc.repo.FindRecent(ctx, limit)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if cacheable {
		uc.feed.SetLatest(ctx, entries)
	}

	return entries, nil
}

// publish runs after the store write has committed. Delivery is
// fire-and-forget: a failed publish is logged, never surfaced to the caller.
func (uc *ClipboardUsecase) publish(ctx context.Context, event domain.Event) {
	if err := uc.signal.Publish(ctx, event); err != nil {
		slog.WarnContext(
			ctx, "failed to publish clipboard event",
			slog.String("type", string(event.Type)),
			slog.String("error", err.Error()),
			slog.String("module", "clipboard"),
		)
	}
}

func (uc *ClipboardUsecase) invalidateFeed(ctx context.Context) {
	if uc.feed != nil {
		uc.feed.Invalidate(ctx)
	}
}

func normalizeSource(source *string) (*string, error) {
	if source == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*source)
	if trimmed == "" {
		return nil, nil
	}
	if len(trimmed) > maxSourceLength {
		return nil, domain.ValidationError{Reason: fmt.Sprintf("source exceeds %d characters", maxSourceLength)}
	}
	return &trimmed, nil
}
