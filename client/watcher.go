package client

import (
	"context"
	"time"

	"github.com/daypaste/dayclip/internal/domain"
)

// Watcher drives a live view of the server: it bootstraps over REST, folds
// push events into the view, and routes this client's own mutations through
// the same fold so both delivery paths agree.
type Watcher struct {
	api  *Client
	view *View

	editEntryID string
}

func NewWatcher(api *Client) *Watcher {
	return &Watcher{
		api:  api,
		view: NewView(domain.DayKeyOf(time.Now())),
	}
}

func (w *Watcher) View() *View {
	return w.view
}

// Bootstrap pulls the day index and the selected day's entries. It is also
// the recovery path after a dropped realtime connection, since any events
// sent meanwhile were lost.
func (w *Watcher) Bootstrap(ctx context.Context) error {
	if err := w.loadDays(ctx); err != nil {
		return err
	}
	return w.loadEntries(ctx)
}

// SelectDay switches the view to another day and abandons any edit in
// progress.
func (w *Watcher) SelectDay(ctx context.Context, day string) error {
	w.editEntryID = ""
	w.view.SelectedDay = day
	w.view.Entries = nil
	return w.loadEntries(ctx)
}

// Handle folds one event into the view and re-queries the day index when the
// fold reports it stale.
func (w *Watcher) Handle(ctx context.Context, event domain.Event) error {
	refreshDays, err := w.view.Apply(event)
	if err != nil {
		return err
	}

	if w.editEntryID != "" && w.view.indexOf(w.editEntryID) < 0 {
		// The entry being edited disappeared under us.
		w.editEntryID = ""
	}

	if refreshDays {
		return w.loadDays(ctx)
	}
	return nil
}

func (w *Watcher) StartEdit(id string) bool {
	if w.view.indexOf(id) < 0 {
		return false
	}
	w.editEntryID = id
	return true
}

func (w *Watcher) Editing() string {
	return w.editEntryID
}

func (w *Watcher) Create(ctx context.Context, payload CreatePayload) (domain.Entry, error) {
	entry, err := w.api.Create(ctx, payload)
	if err != nil {
		return domain.Entry{}, err
	}
	return entry, w.Handle(ctx, domain.CreatedEvent(entry))
}

// SaveEdit patches the entry under edit and clears the edit state on success.
func (w *Watcher) SaveEdit(ctx context.Context, payload UpdatePayload) (domain.Entry, error) {
	entry, err := w.api.Update(ctx, w.editEntryID, payload)
	if err != nil {
		return domain.Entry{}, err
	}
	w.editEntryID = ""
	return entry, w.Handle(ctx, domain.UpdatedEvent(entry))
}

func (w *Watcher) Delete(ctx context.Context, id string) error {
	removal, err := w.api.Delete(ctx, id)
	if err != nil {
		return err
	}
	return w.Handle(ctx, domain.DeletedEvent(removal))
}

func (w *Watcher) ClearDay(ctx context.Context) (domain.DayCleared, error) {
	cleared, err := w.api.ClearDay(ctx, w.view.SelectedDay)
	if err != nil {
		return domain.DayCleared{}, err
	}
	return cleared, w.Handle(ctx, domain.ClearedEvent(cleared))
}

// loadDays refreshes the index. When the selected day fell out of the
// history window it falls back to the newest listed day, or today when the
// store is empty.
func (w *Watcher) loadDays(ctx context.Context) error {
	days, err := w.api.ListDays(ctx)
	if err != nil {
		return err
	}
	w.view.SetDays(days)

	for _, day := range days {
		if day.DayKey == w.view.SelectedDay {
			return nil
		}
	}
	if len(days) > 0 && w.view.SelectedDay != domain.DayKeyOf(time.Now()) {
		w.view.SelectedDay = days[0].DayKey
		w.view.Entries = nil
		return w.loadEntries(ctx)
	}
	return nil
}

func (w *Watcher) loadEntries(ctx context.Context) error {
	entries, err := w.api.ListByDay(ctx, w.view.SelectedDay)
	if err != nil {
		return err
	}
	w.view.SetEntries(entries)
	return nil
}
