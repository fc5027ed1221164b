package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/daypaste/dayclip/internal/domain"
)

const defaultTimeout = 10 * time.Second

// Client talks to a dayclip server over its REST surface.
type Client struct {
	client *http.Client
	base   string
}

func New(base string) *Client {
	return &Client{
		client: &http.Client{Timeout: defaultTimeout},
		base:   strings.TrimRight(base, "/"),
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// do performs one request and decodes the JSON response into out. Server-side
// rejections come back as the domain error types, so callers can errors.Is
// them the same way they would against a local store.
func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to perform request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var failure errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&failure)

		switch resp.StatusCode {
		case http.StatusNotFound:
			return domain.NotFoundError{Resource: failure.Error}
		case http.StatusBadRequest:
			return domain.ValidationError{Reason: failure.Error}
		default:
			return fmt.Errorf("unexpected status code: %d (%s)", resp.StatusCode, failure.Error)
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %v", err)
	}
	return nil
}

// ListByDay fetches one day's entries, newest first. An empty day means the
// server's current day.
func (c *Client) ListByDay(ctx context.Context, day string) ([]domain.Entry, error) {
	path := "/clipboard"
	if day != "" {
		path += "?day=" + url.QueryEscape(day)
	}

	var entries []domain.Entry
	if err := c.do(ctx, http.MethodGet, path, nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *Client) ListDays(ctx context.Context) ([]domain.DaySummary, error) {
	var days []domain.DaySummary
	if err := c.do(ctx, http.MethodGet, "/clipboard/days", nil, &days); err != nil {
		return nil, err
	}
	return days, nil
}

// Latest fetches the most recent entries across all days. Zero limit takes
// the server default.
func (c *Client) Latest(ctx context.Context, limit int) ([]domain.Entry, error) {
	path := "/clipboard/latest"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}

	var entries []domain.Entry
	if err := c.do(ctx, http.MethodGet, path, nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

type CreatePayload struct {
	Content string  `json:"content"`
	Format  string  `json:"format,omitempty"`
	Source  *string `json:"source,omitempty"`
}

func (c *Client) Create(ctx context.Context, payload CreatePayload) (domain.Entry, error) {
	var entry domain.Entry
	if err := c.do(ctx, http.MethodPost, "/clipboard", payload, &entry); err != nil {
		return domain.Entry{}, err
	}
	return entry, nil
}

// UpdatePayload uses pointers so absent fields stay untouched on the server.
// A pointer to an empty Source clears it.
type UpdatePayload struct {
	Content *string `json:"content,omitempty"`
	Format  *string `json:"format,omitempty"`
	Source  *string `json:"source,omitempty"`
}

func (c *Client) Update(ctx context.Context, id string, payload UpdatePayload) (domain.Entry, error) {
	var entry domain.Entry
	if err := c.do(ctx, http.MethodPatch, "/clipboard/"+url.PathEscape(id), payload, &entry); err != nil {
		return domain.Entry{}, err
	}
	return entry, nil
}

func (c *Client) Delete(ctx context.Context, id string) (domain.Removal, error) {
	var removal domain.Removal
	if err := c.do(ctx, http.MethodDelete, "/clipboard/"+url.PathEscape(id), nil, &removal); err != nil {
		return domain.Removal{}, err
	}
	return removal, nil
}

func (c *Client) ClearDay(ctx context.Context, day string) (domain.DayCleared, error) {
	var cleared domain.DayCleared
	if err := c.do(ctx, http.MethodDelete, "/clipboard?day="+url.QueryEscape(day), nil, &cleared); err != nil {
		return domain.DayCleared{}, err
	}
	return cleared, nil
}
