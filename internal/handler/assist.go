package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/apex/log"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/care-assistant-api/internal/assistant"
	"github.com/iliyamo/care-assistant-api/internal/model"
	"github.com/iliyamo/care-assistant-api/internal/queue"
)

// EventPublisher receives an audit event per reply.
type EventPublisher interface {
	PublishAssistReplied(ctx context.Context, ev queue.AssistRepliedEvent) error
}

// AssistHandler serves POST /ai/assist.  Events is optional.
type AssistHandler struct {
	Events         EventPublisher
	PublishTimeout time.Duration
	now            func() time.Time
	// publish runs the event hand-off; tests replace it to run inline.
	publish func(func())
}

// NewAssistHandler builds the assist handler; events may be nil.
func NewAssistHandler(events EventPublisher, publishTimeout time.Duration) *AssistHandler {
	if publishTimeout <= 0 {
		publishTimeout = 3 * time.Second
	}
	return &AssistHandler{
		Events:         events,
		PublishTimeout: publishTimeout,
		now:            time.Now,
		publish:        func(f func()) { go f() },
	}
}

// Assist answers with the canned reply of the message's category.
func (h *AssistHandler) Assist(c echo.Context) error {
	var req model.AssistRequest
	if err := bindAssist(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Message == nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "message is required"})
	}

	category := assistant.Classify(*req.Message)
	reply := assistant.ReplyFor(category)
	log.WithField("category", category.String()).Info("assist.reply")

	if h.Events != nil {
		ev := queue.NewAssistRepliedEvent(category, *req.Message, req.Context != nil && *req.Context != "", h.now())
		h.publish(func() {
			ctx, cancel := context.WithTimeout(context.Background(), h.PublishTimeout)
			defer cancel()
			if err := h.Events.PublishAssistReplied(ctx, ev); err != nil {
				log.WithError(err).WithField("category", ev.Category).Warn("assist.event.publish")
			}
		})
	}

	return c.JSON(http.StatusOK, model.AssistReply{Reply: reply})
}

// bindAssist decodes a body sent without Content-Type as JSON; anything
// else goes through echo's binder, which refuses non-JSON media types.
func bindAssist(c echo.Context, req *model.AssistRequest) error {
	r := c.Request()
	if r.Header.Get(echo.HeaderContentType) != "" {
		return c.Bind(req)
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	return json.Unmarshal(body, req)
}
