package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/daypaste/dayclip/internal/config"
	"github.com/daypaste/dayclip/internal/domain"
	"github.com/daypaste/dayclip/internal/service"
	"github.com/daypaste/dayclip/internal/usecase"
)

// --- mocks ---

type mockEntryRepo struct {
	seq     int
	entries []domain.Entry
}

func (m *mockEntryRepo) Insert(ctx context.Context, entry domain.Entry) (domain.Entry, error) {
	m.seq++
	now := time.Now().UTC()
	entry.ID = fmt.Sprintf("entry-%d", m.seq)
	entry.CreatedAt = now
	entry.DayKey = domain.DayKeyOf(now)
	m.entries = append(m.entries, entry)
	return entry, nil
}

func (m *mockEntryRepo) FindByID(ctx context.Context, id string) (domain.Entry, error) {
	for _, entry := range m.entries {
		if entry.ID == id {
			return entry, nil
		}
	}
	return domain.Entry{}, domain.NotFoundError{Resource: "clipboard entry"}
}

func (m *mockEntryRepo) FindByDay(ctx context.Context, dayKey string) ([]domain.Entry, error) {
	var result []domain.Entry
	for _, entry := range m.entries {
		if entry.DayKey == dayKey {
			result = append(result, entry)
		}
	}
	return result, nil
}

func (m *mockEntryRepo) FindRecent(ctx context.Context, limit int) ([]domain.Entry, error) {
	if limit > len(m.entries) {
		limit = len(m.entries)
	}
	return m.entries[:limit], nil
}

func (m *mockEntryRepo) Update(ctx context.Context, entry domain.Entry) (domain.Entry, error) {
	for i := range m.entries {
		if m.entries[i].ID == entry.ID {
			m.entries[i] = entry
			return entry, nil
		}
	}
	return domain.Entry{}, domain.NotFoundError{Resource: "clipboard entry"}
}

func (m *mockEntryRepo) DeleteByID(ctx context.Context, id string) (bool, error) {
	for i := range m.entries {
		if m.entries[i].ID == id {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *mockEntryRepo) DeleteByDay(ctx context.Context, dayKey string) (int64, error) {
	var kept []domain.Entry
	var removed int64
	for _, entry := range m.entries {
		if entry.DayKey == dayKey {
			removed++
			continue
		}
		kept = append(kept, entry)
	}
	m.entries = kept
	return removed, nil
}

func (m *mockEntryRepo) ListDays(ctx context.Context, limit int) ([]domain.DaySummary, error) {
	counts := map[string]int64{}
	for _, entry := range m.entries {
		counts[entry.DayKey]++
	}
	var summaries []domain.DaySummary
	for day, total := range counts {
		summaries = append(summaries, domain.DaySummary{DayKey: day, Total: total})
	}
	return summaries, nil
}

type mockBroadcaster struct {
	events []domain.Event
}

func (m *mockBroadcaster) Publish(ctx context.Context, event domain.Event) error {
	m.events = append(m.events, event)
	return nil
}

func newTestServer() (*echo.Echo, *mockEntryRepo, *mockBroadcaster) {
	repo := &mockEntryRepo{}
	signal := &mockBroadcaster{}
	clipboard := usecase.NewClipboardUsecase(repo, signal, nil, usecase.Limits{})

	h := NewHandler(config.Server{}, clipboard, service.NewRenderService(), nil)

	e := echo.New()
	h.RegisterRoutes(e)
	return e, repo, signal
}

// --- tests ---

func TestHandleCreate(t *testing.T) {
	e, _, signal := newTestServer()

	body, _ := json.Marshal(map[string]string{"content": "**hello**", "source": "laptop"})
	req := httptest.NewRequest(http.MethodPost, "/clipboard", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	res := httptest.NewRecorder()

	e.ServeHTTP(res, req)

	if res.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", res.Code, res.Body.String())
	}

	var entry domain.Entry
	if err := json.Unmarshal(res.Body.Bytes(), &entry); err != nil {
		t.Fatalf("decode response failed: %v", err)
	}
	if entry.ID == "" || entry.DayKey == "" {
		t.Fatalf("expected server-assigned id and dayKey: %+v", entry)
	}
	if entry.Format != domain.FormatMarkdown {
		t.Fatalf("expected markdown default, got %s", entry.Format)
	}

	if len(signal.events) != 1 || signal.events[0].Type != domain.EventCreated {
		t.Fatalf("expected a created event, got %v", signal.events)
	}
}

func TestHandleCreateRejectsBlankContent(t *testing.T) {
	e, _, signal := newTestServer()

	body, _ := json.Marshal(map[string]string{"content": "   "})
	req := httptest.NewRequest(http.MethodPost, "/clipboard", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	res := httptest.NewRecorder()

	e.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", res.Code)
	}
	if len(signal.events) != 0 {
		t.Fatalf("expected no events for rejected input")
	}
}

func TestHandleUpdateNotFound(t *testing.T) {
	e, _, _ := newTestServer()

	body, _ := json.Marshal(map[string]string{"content": "changed"})
	req := httptest.NewRequest(http.MethodPatch, "/clipboard/missing", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	res := httptest.NewRecorder()

	e.ServeHTTP(res, req)

	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", res.Code)
	}
}

func TestHandleRemoveByDayRequiresDay(t *testing.T) {
	e, _, _ := newTestServer()

	req := httptest.NewRequest(http.MethodDelete, "/clipboard", nil)
	res := httptest.NewRecorder()

	e.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", res.Code)
	}
}

func TestHandleRemoveByDayClearsAndReports(t *testing.T) {
	e, repo, signal := newTestServer()

	ctx := context.Background()
	inserted, err := repo.Insert(ctx, domain.Entry{Content: "hi", Format: domain.FormatText})
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodDelete, "/clipboard?day="+inserted.DayKey, nil)
	res := httptest.NewRecorder()
	e.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", res.Code)
	}

	var cleared domain.DayCleared
	if err := json.Unmarshal(res.Body.Bytes(), &cleared); err != nil {
		t.Fatalf("decode response failed: %v", err)
	}
	if cleared.DayKey != inserted.DayKey || cleared.Removed != 1 {
		t.Fatalf("unexpected clear result: %+v", cleared)
	}

	// A second clear is a no-op but still succeeds and still emits.
	res = httptest.NewRecorder()
	e.ServeHTTP(res, httptest.NewRequest(http.MethodDelete, "/clipboard?day="+inserted.DayKey, nil))
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 on idempotent clear got %d", res.Code)
	}
	if err := json.Unmarshal(res.Body.Bytes(), &cleared); err != nil {
		t.Fatalf("decode response failed: %v", err)
	}
	if cleared.Removed != 0 {
		t.Fatalf("expected zero removals, got %d", cleared.Removed)
	}

	var clearedEvents int
	for _, event := range signal.events {
		if event.Type == domain.EventCleared {
			clearedEvents++
		}
	}
	if clearedEvents != 2 {
		t.Fatalf("expected 2 cleared events, got %d", clearedEvents)
	}
}

func TestHandleRenderEntry(t *testing.T) {
	e, repo, _ := newTestServer()

	inserted, err := repo.Insert(context.Background(), domain.Entry{Content: "**strong**", Format: domain.FormatMarkdown})
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/clipboard/"+inserted.ID+"/html", nil)
	res := httptest.NewRecorder()
	e.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), "<strong>strong</strong>") {
		t.Fatalf("unexpected render output: %s", res.Body.String())
	}
}

func TestHandleListDays(t *testing.T) {
	e, repo, _ := newTestServer()

	if _, err := repo.Insert(context.Background(), domain.Entry{Content: "a"}); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/clipboard/days", nil)
	res := httptest.NewRecorder()
	e.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", res.Code)
	}

	var days []domain.DaySummary
	if err := json.Unmarshal(res.Body.Bytes(), &days); err != nil {
		t.Fatalf("decode response failed: %v", err)
	}
	if len(days) != 1 || days[0].Total != 1 {
		t.Fatalf("unexpected day index: %+v", days)
	}
}
