package domain

import "time"

// Format identifies how an entry's content should be rendered.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
)

func (f Format) Valid() bool {
	return f == FormatMarkdown || f == FormatText
}

// Entry is one persisted clipboard snippet. DayKey always equals the UTC
// calendar date of CreatedAt and never changes after creation.
type Entry struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Format    Format    `json:"format"`
	Source    *string   `json:"source"`
	DayKey    string    `json:"dayKey"`
	CreatedAt time.Time `json:"createdAt"`
}

// DaySummary is the per-day entry count, recomputed from the store on every
// read.
type DaySummary struct {
	DayKey string `json:"dayKey"`
	Total  int64  `json:"total"`
}
