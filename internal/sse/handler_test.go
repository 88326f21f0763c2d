package sse

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mommylounge/lounge-server/internal/domain"
)

type stubAuth map[string]string

func (s stubAuth) Authenticate(token string) (*domain.Principal, error) {
	if userID, ok := s[token]; ok {
		return &domain.Principal{ID: userID}, nil
	}
	return nil, errors.New("bad token")
}

type stubCounter int

func (c stubCounter) UnreadCount(context.Context, string) (int, error) { return int(c), nil }

func TestHandler_RejectsMissingToken(t *testing.T) {
	m := NewManager(slog.New(slog.DiscardHandler))
	h := NewHandler(m, stubAuth{}, nil, slog.New(slog.DiscardHandler))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/events", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"UNAUTHORIZED"`)
}

func TestHandler_RejectsWrongMethod(t *testing.T) {
	m := NewManager(slog.New(slog.DiscardHandler))
	h := NewHandler(m, stubAuth{}, nil, slog.New(slog.DiscardHandler))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/events", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestHandler_StreamsUserEvents(t *testing.T) {
	m, cancel := newTestManager(t)
	defer cancel()

	h := NewHandler(m, stubAuth{"tok": "owner"}, stubCounter(2), slog.New(slog.DiscardHandler))

	ctx, stop := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer stop()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/events?token=tok", nil).WithContext(ctx)
	w := httptest.NewRecorder()

	go func() {
		for m.ClientCount() == 0 {
			time.Sleep(5 * time.Millisecond)
		}
		m.Emit(NewUnreadCountEvent("owner", 3))
		m.Emit(NewUnreadCountEvent("someone-else", 9))
	}()

	h.ServeHTTP(w, req)

	body := w.Body.String()
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	assert.Contains(t, body, "event: connected\n")
	assert.Contains(t, body, `"unread_count":2`)
	assert.Contains(t, body, `"unread_count":3`)
	assert.NotContains(t, body, `"unread_count":9`)
	assert.Equal(t, 0, m.ClientCount())
}

func TestTokenFromRequest(t *testing.T) {
	tests := []struct {
		name   string
		header string
		query  string
		want   string
	}{
		{"bearer header", "Bearer abc", "", "abc"},
		{"header wins over query", "Bearer abc", "xyz", "abc"},
		{"non bearer header", "Basic abc", "", ""},
		{"query fallback", "", "xyz", "xyz"},
		{"nothing", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := "/api/v1/events"
			if tt.query != "" {
				target += "?token=" + tt.query
			}
			r := httptest.NewRequest(http.MethodGet, target, nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			assert.Equal(t, tt.want, tokenFromRequest(r))
		})
	}
}
