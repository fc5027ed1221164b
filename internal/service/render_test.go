package service

import (
	"strings"
	"testing"

	"github.com/daypaste/dayclip/internal/domain"
)

func TestRenderMarkdown(t *testing.T) {
	svc := NewRenderService()

	entry := domain.Entry{ID: "e1", Content: "**bold** move", Format: domain.FormatMarkdown}

	rendered, err := svc.Render(entry)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !strings.Contains(rendered, "<strong>bold</strong>") {
		t.Fatalf("unexpected output: %s", rendered)
	}

	again, err := svc.Render(entry)
	if err != nil {
		t.Fatalf("cached render failed: %v", err)
	}
	if again != rendered {
		t.Fatalf("cached output diverged")
	}
}

func TestRenderTextEscapesHTML(t *testing.T) {
	svc := NewRenderService()

	rendered, err := svc.Render(domain.Entry{ID: "e2", Content: "<script>alert(1)</script>", Format: domain.FormatText})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if strings.Contains(rendered, "<script>") {
		t.Fatalf("text content must be escaped: %s", rendered)
	}
	if !strings.HasPrefix(rendered, "<pre>") {
		t.Fatalf("expected preformatted wrapper: %s", rendered)
	}
}

func TestRenderMissesStaleCacheAfterEdit(t *testing.T) {
	svc := NewRenderService()

	before, err := svc.Render(domain.Entry{ID: "e3", Content: "first", Format: domain.FormatText})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}

	after, err := svc.Render(domain.Entry{ID: "e3", Content: "second", Format: domain.FormatText})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}

	if before == after {
		t.Fatalf("expected edited content to re-render")
	}
}
