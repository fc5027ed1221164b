package service

import (
	"bytes"
	"fmt"
	"html"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/zeebo/xxh3"

	"github.com/daypaste/dayclip/internal/domain"
)

// RenderService turns entry content into HTML fragments. Rendered output is
// cached by id plus content hash, so edits naturally miss the stale fragment.
type RenderService struct {
	md    goldmark.Markdown
	cache *cache.Cache
}

func NewRenderService() *RenderService {
	return &RenderService{
		md:    goldmark.New(goldmark.WithExtensions(extension.GFM)),
		cache: cache.New(10*time.Minute, 15*time.Minute),
	}
}

func (s *RenderService) Render(entry domain.Entry) (string, error) {

	key := fmt.Sprintf("%s:%016x", entry.ID, xxh3.HashString(entry.Content))
	if cached, found := s.cache.Get(key); found {
		return cached.(string), nil
	}

	var rendered string
	switch entry.Format {
	case domain.FormatMarkdown:
		var buf bytes.Buffer
		if err := s.md.Convert([]byte(entry.Content), &buf); err != nil {
			return "", errors.Wrap(err, "failed to render markdown")
		}
		rendered = buf.String()
	default:
		rendered = "<pre>" + html.EscapeString(entry.Content) + "</pre>"
	}

	s.cache.Set(key, rendered, cache.DefaultExpiration)
	return rendered, nil
}
