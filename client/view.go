package client

import (
	"fmt"

	"github.com/daypaste/dayclip/internal/domain"
)

// View is the local mirror of one selected day plus the day index. Apply
// folds incoming events into it; the same rules run no matter whether the
// event arrived over the push channel or as the response to this client's own
// mutation, so double delivery converges instead of duplicating.
type View struct {
	SelectedDay string
	Entries     []domain.Entry
	Days        []domain.DaySummary
}

func NewView(selectedDay string) *View {
	return &View{SelectedDay: selectedDay}
}

func (v *View) SetEntries(entries []domain.Entry) {
	v.Entries = entries
}

func (v *View) SetDays(days []domain.DaySummary) {
	v.Days = days
}

func (v *View) indexOf(id string) int {
	for i, entry := range v.Entries {
		if entry.ID == id {
			return i
		}
	}
	return -1
}

// Apply folds one event into the view. The returned flag tells the caller the
// day index counts are stale and need a re-query; entry-list changes for the
// selected day happen in place.
func (v *View) Apply(event domain.Event) (bool, error) {
	switch event.Type {
	case domain.EventCreated:
		var entry domain.Entry
		if err := event.Decode(&entry); err != nil {
			return false, fmt.Errorf("failed to decode created event: %v", err)
		}
		return v.applyCreated(entry), nil

	case domain.EventUpdated:
		var entry domain.Entry
		if err := event.Decode(&entry); err != nil {
			return false, fmt.Errorf("failed to decode updated event: %v", err)
		}
		return v.applyUpdated(entry), nil

	case domain.EventDeleted:
		var removal domain.Removal
		if err := event.Decode(&removal); err != nil {
			return false, fmt.Errorf("failed to decode deleted event: %v", err)
		}
		return v.applyDeleted(removal), nil

	case domain.EventCleared:
		var cleared domain.DayCleared
		if err := event.Decode(&cleared); err != nil {
			return false, fmt.Errorf("failed to decode cleared event: %v", err)
		}
		return v.applyCleared(cleared), nil

	default:
		// Unknown variants are skipped so older clients survive newer servers.
		return false, nil
	}
}

func (v *View) applyCreated(entry domain.Entry) bool {
	if entry.DayKey != v.SelectedDay {
		return true
	}
	if v.indexOf(entry.ID) >= 0 {
		// Already folded in from this client's own REST response.
		return false
	}
	v.Entries = append([]domain.Entry{entry}, v.Entries...)
	return true
}

func (v *View) applyUpdated(entry domain.Entry) bool {
	i := v.indexOf(entry.ID)

	if entry.DayKey == v.SelectedDay {
		if i >= 0 {
			v.Entries[i] = entry
			return false
		}
		// Missed the create while disconnected; surface it now.
		v.Entries = append([]domain.Entry{entry}, v.Entries...)
		return true
	}

	if i >= 0 {
		// Stale copy from a day that is no longer selected.
		v.Entries = append(v.Entries[:i], v.Entries[i+1:]...)
		return true
	}
	return false
}

func (v *View) applyDeleted(removal domain.Removal) bool {
	if i := v.indexOf(removal.ID); i >= 0 {
		v.Entries = append(v.Entries[:i], v.Entries[i+1:]...)
		return true
	}
	return removal.DayKey != v.SelectedDay
}

func (v *View) applyCleared(cleared domain.DayCleared) bool {
	if cleared.DayKey == v.SelectedDay {
		v.Entries = nil
	}
	// Even a zero-removal clear refreshes: the server confirmed the day is
	// empty, and this client's index may say otherwise.
	return true
}
