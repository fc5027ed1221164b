package rest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/daypaste/dayclip/internal/config"
	"github.com/daypaste/dayclip/internal/domain"
	"github.com/daypaste/dayclip/internal/present/rest/presenter"
	"github.com/daypaste/dayclip/internal/service"
	"github.com/daypaste/dayclip/internal/usecase"
)

type Handler struct {
	config    config.Server
	clipboard *usecase.ClipboardUsecase
	render    *service.RenderService
	signal    *service.SignalService
}

func NewHandler(
	config config.Server,
	clipboard *usecase.ClipboardUsecase,
	render *service.RenderService,
	signal *service.SignalService,
) *Handler {
	return &Handler{
		config:    config,
		clipboard: clipboard,
		render:    render,
		signal:    signal,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.handleHealth)
	e.GET("/clipboard", h.handleListByDay)
	e.GET("/clipboard/days", h.handleListDays)
	e.GET("/clipboard/latest", h.handleLatest)
	e.GET("/clipboard/:id/html", h.handleRenderEntry)
	e.POST("/clipboard", h.handleCreate)
	e.PATCH("/clipboard/:id", h.handleUpdate)
	e.DELETE("/clipboard/:id", h.handleRemove)
	e.DELETE("/clipboard", h.handleRemoveByDay)
	e.GET("/realtime", h.handleRealtime)
}

func (h *Handler) handleHealth(c echo.Context) error {
	return presenter.OK(c, echo.Map{"status": "ok"})
}

func (h *Handler) handleListByDay(c echo.Context) error {
	ctx := c.Request().Context()

	entries, err := h.clipboard.ListByDay(ctx, c.QueryParam("day"))
	if err != nil {
		return respondError(c, err)
	}
	return presenter.OK(c, entries)
}

func (h *Handler) handleListDays(c echo.Context) error {
	ctx := c.Request().Context()

	days, err := h.clipboard.ListDays(ctx)
	if err != nil {
		return respondError(c, err)
	}
	return presenter.OK(c, days)
}

func (h *Handler) handleLatest(c echo.Context) error {
	ctx := c.Request().Context()

	limit := 0
	limitStr := c.QueryParam("limit")
	if limitStr != "" {
		limitInt, err := strconv.Atoi(limitStr)
		if err != nil {
			return presenter.BadRequestMessage(c, "invalid limit parameter")
		}
		limit = limitInt
	}

	entries, err := h.clipboard.Latest(ctx, limit)
	if err != nil {
		return respondError(c, err)
	}
	return presenter.OK(c, entries)
}

func (h *Handler) handleRenderEntry(c echo.Context) error {
	ctx := c.Request().Context()

	entry, err := h.clipboard.Get(ctx, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}

	rendered, err := h.render.Render(entry)
	if err != nil {
		return respondError(c, err)
	}
	return c.HTML(http.StatusOK, rendered)
}

type createRequest struct {
	Content string  `json:"content"`
	Format  *string `json:"format"`
	Source  *string `json:"source"`
}

func (h *Handler) handleCreate(c echo.Context) error {
	ctx := c.Request().Context()

	var req createRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	input := usecase.CreateInput{
		Content: req.Content,
		Source:  req.Source,
	}
	if req.Format != nil {
		input.Format = domain.Format(*req.Format)
	}

	entry, err := h.clipboard.Create(ctx, input)
	if err != nil {
		return respondError(c, err)
	}
	return presenter.Created(c, entry)
}

type updateRequest struct {
	Content *string `json:"content"`
	Format  *string `json:"format"`
	Source  *string `json:"source"`
}

func (h *Handler) handleUpdate(c echo.Context) error {
	ctx := c.Request().Context()

	var req updateRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	input := usecase.UpdateInput{
		Content: req.Content,
		Source:  req.Source,
	}
	if req.Format != nil {
		format := domain.Format(*req.Format)
		input.Format = &format
	}

	entry, err := h.clipboard.Update(ctx, c.Param("id"), input)
	if err != nil {
		return respondError(c, err)
	}
	return presenter.OK(c, entry)
}

func (h *Handler) handleRemove(c echo.Context) error {
	ctx := c.Request().Context()

	removal, err := h.clipboard.Remove(ctx, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return presenter.OK(c, removal)
}

func (h *Handler) handleRemoveByDay(c echo.Context) error {
	ctx := c.Request().Context()

	cleared, err := h.clipboard.RemoveByDay(ctx, c.QueryParam("day"))
	if err != nil {
		return respondError(c, err)
	}
	return presenter.OK(c, cleared)
}

func respondError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalid):
		return presenter.BadRequest(c, err)
	case errors.Is(err, domain.ErrNotFound):
		return presenter.NotFound(c, err.Error())
	default:
		return presenter.InternalError(c, err)
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type realtimeRequest struct {
	Type string `json:"type"`
}

// handleRealtime upgrades to a websocket and pushes every domain event to the
// client in publish order. There is no day scoping: every subscriber sees
// every event.
func (h *Handler) handleRealtime(c echo.Context) error {
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(
			"Failed to upgrade WebSocket",
			slog.String("error", err.Error()),
			slog.String("module", "socket"),
		)
		return err
	}
	defer func() {
		ws.Close()
	}()

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	output := make(chan domain.Event)
	go h.signal.Realtime(ctx, output)

	quit := make(chan struct{})

	go func() {
		for {
			var req realtimeRequest
			err := ws.ReadJSON(&req)
			if err != nil {

				wsErr, ok := err.(*websocket.CloseError)
				if ok {
					if !(wsErr.Code == websocket.CloseNormalClosure || wsErr.Code == websocket.CloseGoingAway) {
						slog.DebugContext(
							ctx, "WebSocket closed",
							slog.String("error", wsErr.Error()),
							slog.String("module", "socket"),
						)
					}
				} else {
					slog.ErrorContext(
						ctx, "Error reading message",
						slog.String("error", err.Error()),
						slog.String("module", "socket"),
					)
				}

				quit <- struct{}{}
				break
			}

			switch req.Type {
			case "h": // heartbeat
				// do nothing
			default:
				slog.InfoContext(
					ctx, "Unknown request type",
					slog.String("type", req.Type),
					slog.String("module", "socket"),
				)
			}
		}
	}()

	for {
		select {
		case <-quit:
			return nil
		case event := <-output:
			err := ws.WriteJSON(event)
			if err != nil {
				slog.ErrorContext(
					ctx, "Error writing message",
					slog.String("error", err.Error()),
					slog.String("module", "socket"),
				)
				return nil
			}
		}
	}
}
