package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/daypaste/dayclip/internal/domain"
	"github.com/daypaste/dayclip/internal/infra/database/models"
)

type EntryRepository struct {
	db *gorm.DB
}

func NewEntryRepository(db *gorm.DB) *EntryRepository {
	return &EntryRepository{db: db}
}

// Insert assigns the id and createdAt and derives the day key from the same
// clock reading, so the two can never disagree.
func (r *EntryRepository) Insert(ctx context.Context, entry domain.Entry) (domain.Entry, error) {

	now := time.Now().UTC()

	row := models.Entry{
		ID:        uuid.NewString(),
		Content:   entry.Content,
		Format:    string(entry.Format),
		Source:    entry.Source,
		DayKey:    domain.DayKeyOf(now),
		CreatedAt: now,
	}

	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return domain.Entry{}, errors.Wrap(err, "failed to insert clipboard entry")
	}

	return toDomain(row), nil
}

func (r *EntryRepository) FindByID(ctx context.Context, id string) (domain.Entry, error) {

	var row models.Entry
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Take(&row).Error
	if err == gorm.ErrRecordNotFound {
		return domain.Entry{}, domain.NotFoundError{Resource: "clipboard entry"}
	}
	if err != nil {
		return domain.Entry{}, errors.Wrap(err, "failed to load clipboard entry")
	}

	return toDomain(row), nil
}

func (r *EntryRepository) FindByDay(ctx context.Context, dayKey string) ([]domain.Entry, error) {

	var rows []models.Entry
	err := r.db.WithContext(ctx).
		Where("day_key = ?", dayKey).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list clipboard entries")
	}

	return toDomainSlice(rows), nil
}

func (r *EntryRepository) FindRecent(ctx context.Context, limit int) ([]domain.Entry, error) {

	var rows []models.Entry
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list recent clipboard entries")
	}

	return toDomainSlice(rows), nil
}

// Update replaces the mutable columns in a single statement. DayKey and
// CreatedAt are never touched.
func (r *EntryRepository) Update(ctx context.Context, entry domain.Entry) (domain.Entry, error) {

	res := r.db.WithContext(ctx).
		Model(&models.Entry{}).
		Where("id = ?", entry.ID).
		Updates(map[string]any{
			"content": entry.Content,
			"format":  string(entry.Format),
			"source":  entry.Source,
		})
	if res.Error != nil {
		return domain.Entry{}, errors.Wrap(res.Error, "failed to update clipboard entry")
	}
	if res.RowsAffected == 0 {
		return domain.Entry{}, domain.NotFoundError{Resource: "clipboard entry"}
	}

	return entry, nil
}

func (r *EntryRepository) DeleteByID(ctx context.Context, id string) (bool, error) {

	res := r.db.WithContext(ctx).Delete(&models.Entry{}, "id = ?", id)
	if res.Error != nil {
		return false, errors.Wrap(res.Error, "failed to delete clipboard entry")
	}

	return res.RowsAffected > 0, nil
}

func (r *EntryRepository) DeleteByDay(ctx context.Context, dayKey string) (int64, error) {

	res := r.db.WithContext(ctx).
		Where("day_key = ?", dayKey).
		Delete(&models.Entry{})
	if res.Error != nil {
		return 0, errors.Wrap(res.Error, "failed to clear clipboard day")
	}

	return res.RowsAffected, nil
}

// ListDays recomputes the per-day counts from the live rows. Days whose last
// entry was removed simply stop appearing.
func (r *EntryRepository) ListDays(ctx context.Context, limit int) ([]domain.DaySummary, error) {

	var summaries []domain.DaySummary
	err := r.db.WithContext(ctx).
		Model(&models.Entry{}).
		Select("day_key, COUNT(id) AS total").
		Group("day_key").
		Order("day_key DESC").
		Limit(limit).
		Scan(&summaries).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list clipboard days")
	}

	return summaries, nil
}

func toDomain(row models.Entry) domain.Entry {
	return domain.Entry{
		ID:        row.ID,
		Content:   row.Content,
		Format:    domain.Format(row.Format),
		Source:    row.Source,
		DayKey:    row.DayKey,
		CreatedAt: row.CreatedAt,
	}
}

func toDomainSlice(rows []models.Entry) []domain.Entry {
	entries := make([]domain.Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, toDomain(row))
	}
	return entries
}
