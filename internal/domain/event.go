package domain

import "encoding/json"

// EventType is the wire name of a domain event variant.
type EventType string

const (
	EventCreated EventType = "clipboard:new"
	EventUpdated EventType = "clipboard:updated"
	EventDeleted EventType = "clipboard:deleted"
	EventCleared EventType = "clipboard:cleared"
)

// Removal is the payload of a deleted event.
type Removal struct {
	ID     string `json:"id"`
	DayKey string `json:"dayKey"`
}

// DayCleared is the payload of a cleared event. Removed may be zero: a clear
// of an empty day still emits, so clients re-sync their day index.
type DayCleared struct {
	DayKey  string `json:"dayKey"`
	Removed int64  `json:"removed"`
}

// Event describes one completed mutation. Exactly one event is published per
// successful mutation; the payload shape depends on Type.
type Event struct {
	Type    EventType       `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Decode unmarshals the payload into v.
func (e Event) Decode(v any) error {
	return json.Unmarshal(e.Payload, v)
}

func newEvent(t EventType, payload any) Event {
	raw, _ := json.Marshal(payload)
	return Event{Type: t, Payload: raw}
}

func CreatedEvent(entry Entry) Event {
	return newEvent(EventCreated, entry)
}

func UpdatedEvent(entry Entry) Event {
	return newEvent(EventUpdated, entry)
}

func DeletedEvent(removal Removal) Event {
	return newEvent(EventDeleted, removal)
}

func ClearedEvent(cleared DayCleared) Event {
	return newEvent(EventCleared, cleared)
}
