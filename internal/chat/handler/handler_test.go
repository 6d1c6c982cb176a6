package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"roofchat_backend/internal/chat/domain"
	"roofchat_backend/internal/chat/responder"
	"roofchat_backend/internal/chat/scoring"
	"roofchat_backend/internal/chat/service"
	"roofchat_backend/platform/logger"
)

type memStore struct {
	sessions map[string]*domain.Conversation
}

func (m *memStore) Get(_ context.Context, sessionID string) (*domain.Conversation, bool, error) {
	conv, ok := m.sessions[sessionID]
	return conv, ok, nil
}

func (m *memStore) Save(_ context.Context, conv *domain.Conversation) error {
	m.sessions[conv.SessionID] = conv
	return nil
}

func (m *memStore) Ping(context.Context) error { return nil }

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := logger.New("test")
	rule := responder.NewRuleResponder()
	store := &memStore{sessions: map[string]*domain.Conversation{}}
	svc := service.NewService(store, rule, rule, scoring.NewService(log), nil, log)
	h := New(svc, nil, rule, log)

	engine := gin.New()
	api := engine.Group("/api/v1/chat")
	api.POST("/sessions/:sessionId/messages", h.SendMessage)
	api.POST("/sessions/:sessionId/quick-actions", h.TapQuickAction)
	api.GET("/sessions/:sessionId", h.GetConversation)
	api.GET("/quick-actions", h.QuickActions)
	api.POST("/respond", h.Respond)
	return engine
}

func doJSON(t *testing.T, engine *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestSendMessageEndpoint(t *testing.T) {
	engine := newTestRouter()

	rec := doJSON(t, engine, http.MethodPost, "/api/v1/chat/sessions/s-1/messages",
		`{"message":"my roof is leaking","context":{"page":"/services"}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var reply service.Reply
	if err := json.Unmarshal(rec.Body.Bytes(), &reply); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reply.Success || reply.Response == "" {
		t.Fatalf("unexpected reply: %+v", reply)
	}
	if !reply.IsEmergency {
		t.Fatal("leak should flag an emergency")
	}
}

func TestSendMessageEndpointRejectsEmptyBody(t *testing.T) {
	engine := newTestRouter()
	rec := doJSON(t, engine, http.MethodPost, "/api/v1/chat/sessions/s-1/messages", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestQuickActionTapEndpoint(t *testing.T) {
	engine := newTestRouter()

	rec := doJSON(t, engine, http.MethodPost, "/api/v1/chat/sessions/s-2/quick-actions",
		`{"id":"qa-quote","label":"Get a free quote","action":"send_message","value":"I'd like a free quote"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	// The tap became a user message in the stored conversation.
	rec = doJSON(t, engine, http.MethodGet, "/api/v1/chat/sessions/s-2", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "I'd like a free quote") {
		t.Fatalf("synthesized message missing from history: %s", rec.Body.String())
	}
}

func TestQuickActionTapRejectsUnknownKind(t *testing.T) {
	engine := newTestRouter()
	rec := doJSON(t, engine, http.MethodPost, "/api/v1/chat/sessions/s-3/quick-actions",
		`{"label":"x","action":"format_disk"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGetConversationNotFound(t *testing.T) {
	engine := newTestRouter()
	rec := doJSON(t, engine, http.MethodGet, "/api/v1/chat/sessions/unknown", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestRespondEndpoint(t *testing.T) {
	engine := newTestRouter()
	rec := doJSON(t, engine, http.MethodPost, "/api/v1/chat/respond",
		`{"session_id":"s-4","message":"how much does a new roof cost?"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var parsed struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &parsed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if parsed.Response == "" {
		t.Fatal("expected a composed reply")
	}
}
