package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/care-assistant-api/internal/database"
	"github.com/iliyamo/care-assistant-api/internal/diagnostics"
	"github.com/iliyamo/care-assistant-api/internal/model"
	"github.com/iliyamo/care-assistant-api/internal/queue"
)

type recordingPublisher struct {
	events []queue.AssistRepliedEvent
	err    error
}

func (p *recordingPublisher) PublishAssistReplied(ctx context.Context, ev queue.AssistRepliedEvent) error {
	p.events = append(p.events, ev)
	return p.err
}

func newContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func inlineAssistHandler(p EventPublisher) *AssistHandler {
	h := NewAssistHandler(p, time.Second)
	h.publish = func(f func()) { f() }
	h.now = func() time.Time { return time.Date(2026, 3, 1, 8, 30, 0, 0, time.UTC) }
	return h
}

func TestRoot(t *testing.T) {
	c, rec := newContext(http.MethodGet, "/", "")
	require.NoError(t, Root(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message": "Hello from FastAPI Backend!"}`, rec.Body.String())
}

func TestHello(t *testing.T) {
	c, rec := newContext(http.MethodGet, "/api/hello", "")
	require.NoError(t, Hello(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message": "Hello from the backend API!"}`, rec.Body.String())
}

func TestDiagnosticAlwaysOK(t *testing.T) {
	for _, h := range []database.Handle{{}, {Installed: true}} {
		c, rec := newContext(http.MethodGet, "/test", "")
		require.NoError(t, NewDiagnosticHandler(diagnostics.NewProber(h, time.Second)).Test(c))

		assert.Equal(t, http.StatusOK, rec.Code)
		var report map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
		for _, k := range []string{"backend", "database", "database_url", "database_name", "connection_status", "collections"} {
			assert.Contains(t, report, k)
		}
		assert.Equal(t, []any{}, report["collections"])
	}
}

func TestDiagnosticNeverEchoesEnvValues(t *testing.T) {
	t.Setenv("DATABASE_URL", "root:hunter2@tcp(db:3306)/clinic")
	t.Setenv("DATABASE_NAME", "clinic_prod")

	c, rec := newContext(http.MethodGet, "/test", "")
	require.NoError(t, NewDiagnosticHandler(diagnostics.NewProber(database.Handle{}, time.Second)).Test(c))

	assert.NotContains(t, rec.Body.String(), "hunter2")
	assert.NotContains(t, rec.Body.String(), "clinic_prod")
	var report model.DiagnosticReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, "✅ Set", report.DatabaseURL)
	assert.Equal(t, "✅ Set", report.DatabaseName)
}

func TestAssist(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantPrefix string
	}{
		{"chart summary", `{"message": "Can you summarize the patient's last visit?"}`, "Here's a concise chart summary"},
		{"capacity", `{"message": "ICU occupancy forecast please"}`, "ICU occupancy forecast (next 24h)"},
		{"imaging wins", `{"message": "book an MRI slot", "context": null}`, "Next MRI availability"},
		{"empty message", `{"message": ""}`, "I can help with scheduling"},
		{"with context", `{"message": "rebook", "context": "ward 3"}`, "I can propose optimal slots"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newContext(http.MethodPost, "/ai/assist", tt.body)
			require.NoError(t, inlineAssistHandler(nil).Assist(c))

			assert.Equal(t, http.StatusOK, rec.Code)
			var reply model.AssistReply
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reply))
			assert.True(t, strings.HasPrefix(reply.Reply, tt.wantPrefix), reply.Reply)
		})
	}
}

func TestAssistRejectsBadBodies(t *testing.T) {
	tests := []struct {
		name string
		body string
		code int
	}{
		{"malformed", `{"message":`, http.StatusBadRequest},
		{"wrong type", `{"message": 42}`, http.StatusBadRequest},
		{"missing message", `{"context": "x"}`, http.StatusUnprocessableEntity},
		{"null message", `{"message": null}`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newContext(http.MethodPost, "/ai/assist", tt.body)
			require.NoError(t, inlineAssistHandler(nil).Assist(c))
			assert.Equal(t, tt.code, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

func TestAssistWithoutContentType(t *testing.T) {
	tests := []struct {
		name string
		body string
		code int
	}{
		{"json body", `{"message":"MRI"}`, http.StatusOK},
		{"empty body", ``, http.StatusUnprocessableEntity},
		{"malformed", `{"message":`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newContext(http.MethodPost, "/ai/assist", tt.body)
			c.Request().Header.Del(echo.HeaderContentType)
			require.NoError(t, inlineAssistHandler(nil).Assist(c))
			assert.Equal(t, tt.code, rec.Code)
			if tt.code == http.StatusOK {
				var reply model.AssistReply
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reply))
				assert.True(t, strings.HasPrefix(reply.Reply, "Next MRI availability"), reply.Reply)
			}
		})
	}
}

func TestAssistRejectsDeclaredNonJSON(t *testing.T) {
	c, rec := newContext(http.MethodPost, "/ai/assist", `{"message":"MRI"}`)
	c.Request().Header.Set(echo.HeaderContentType, echo.MIMETextPlain)
	require.NoError(t, inlineAssistHandler(nil).Assist(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAssistPublishesEvent(t *testing.T) {
	pub := &recordingPublisher{}
	c, rec := newContext(http.MethodPost, "/ai/assist", `{"message": "MRI tomorrow?", "context": "radiology"}`)
	require.NoError(t, inlineAssistHandler(pub).Assist(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, pub.events, 1)
	assert.Equal(t, queue.AssistRepliedEvent{
		Category:     "imaging",
		MessageChars: 13,
		HasContext:   true,
		RepliedAt:    "2026-03-01T08:30:00Z",
	}, pub.events[0])
}

func TestAssistIgnoresPublishFailure(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	c, rec := newContext(http.MethodPost, "/ai/assist", `{"message": "hello"}`)
	require.NoError(t, inlineAssistHandler(pub).Assist(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, pub.events, 1)
}
