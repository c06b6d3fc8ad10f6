package internal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"vira-api/internal/ai"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type stubGenerator struct {
	response string
	err      error
}

func (s *stubGenerator) GenerateContent(_ context.Context, _ string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func newTestServer(gen ai.ContentGenerator) *Server {
	s := &Server{
		Router:  chi.NewRouter(),
		Metrics: NewMetrics(),
		Logger:  zap.NewNop(),
	}
	if gen != nil {
		s.Recommender = ai.NewRecommender(gen, s.Logger)
		s.Chat = ai.NewChat(gen, s.Logger)
	}
	s.Router.Post("/ai/match-vendors", s.matchVendors)
	s.Router.Post("/ai/chat", s.chatWithVira)
	s.Router.Post("/projects/{id}/rating", s.submitProjectRating)
	return s
}

func postJSON(s *Server, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Router.ServeHTTP(w, req)
	return w
}

func TestMatchVendorsUnconfigured(t *testing.T) {
	s := newTestServer(nil)

	w := postJSON(s, "/ai/match-vendors",
		`{"scope":"Full redesign of the site","budget":1000,"preferredVendorAttributes":"fast and responsive"}`)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}

func TestMatchVendorsValidation(t *testing.T) {
	s := newTestServer(&stubGenerator{response: "[]"})

	tests := []struct {
		name string
		body string
	}{
		{"short scope", `{"scope":"short","budget":1000,"preferredVendorAttributes":"fast and responsive"}`},
		{"short attributes", `{"scope":"Full redesign of the site","budget":1000,"preferredVendorAttributes":"fast"}`},
		{"negative budget", `{"scope":"Full redesign of the site","budget":-5,"preferredVendorAttributes":"fast and responsive"}`},
		{"bad json", `{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(s, "/ai/match-vendors", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestChatValidation(t *testing.T) {
	s := newTestServer(&stubGenerator{response: "hello"})

	w := postJSON(s, "/ai/chat", `{"question":"  "}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestChatWithProvidedContext(t *testing.T) {
	s := newTestServer(&stubGenerator{response: "Acme handles SEO."})

	w := postJSON(s, "/ai/chat",
		`{"question":"Who does SEO?","vendorData":"[{\"name\":\"Acme\"}]"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp chatResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Answer != "Acme handles SEO." {
		t.Fatalf("expected verbatim answer, got %q", resp.Answer)
	}
}

func TestChatUnavailable(t *testing.T) {
	s := newTestServer(&stubGenerator{err: errors.New("deadline exceeded")})

	w := postJSON(s, "/ai/chat",
		`{"question":"Who does SEO?","vendorData":"[]"}`)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), msgChatUnavailable) {
		t.Fatalf("expected fixed apology message, got %q", w.Body.String())
	}
}

func TestSubmitRatingValidation(t *testing.T) {
	s := newTestServer(nil)

	tests := []struct {
		name string
		body string
	}{
		{"missing vendor", `{"rating":3}`},
		{"rating too low", `{"vendorId":"v1","rating":0}`},
		{"rating too high", `{"vendorId":"v1","rating":6}`},
		{"bad json", `{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(s, "/projects/p1/rating", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
		})
	}
}
