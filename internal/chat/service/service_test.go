package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"roofchat_backend/internal/chat/domain"
	"roofchat_backend/internal/chat/handoff"
	"roofchat_backend/internal/chat/responder"
	"roofchat_backend/internal/chat/scoring"
	"roofchat_backend/platform/apperr"
	"roofchat_backend/platform/logger"
)

type memStore struct {
	sessions map[string]*domain.Conversation
	failGet  bool
	failSave bool
	saves    int
}

func newMemStore() *memStore {
	return &memStore{sessions: map[string]*domain.Conversation{}}
}

func (m *memStore) Get(_ context.Context, sessionID string) (*domain.Conversation, bool, error) {
	if m.failGet {
		return nil, false, errors.New("store down")
	}
	conv, ok := m.sessions[sessionID]
	if !ok {
		return nil, false, nil
	}
	clone := *conv
	return &clone, true, nil
}

func (m *memStore) Save(_ context.Context, conv *domain.Conversation) error {
	if m.failSave {
		return errors.New("store down")
	}
	m.saves++
	clone := *conv
	m.sessions[conv.SessionID] = &clone
	return nil
}

func (m *memStore) Ping(context.Context) error { return nil }

type scriptedResponder struct {
	reply responder.Reply
	err   error
	calls int
}

func (r *scriptedResponder) Respond(_ context.Context, _ responder.Request) (responder.Reply, error) {
	r.calls++
	if r.err != nil {
		return responder.Reply{}, r.err
	}
	return r.reply, nil
}

func newTestService(store *memStore, primary, fallback responder.Responder) *Service {
	log := logger.New("test")
	return NewService(store, primary, fallback, scoring.NewService(log), nil, log)
}

func TestSendMessageValidation(t *testing.T) {
	svc := newTestService(newMemStore(), &scriptedResponder{}, &scriptedResponder{})

	if _, err := svc.SendMessage(context.Background(), "", "hello", domain.ContextUpdate{}, ""); apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("expected validation error for empty session, got %v", err)
	}
	if _, err := svc.SendMessage(context.Background(), "s-1", "   ", domain.ContextUpdate{}, ""); apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("expected validation error for blank text, got %v", err)
	}
}

// A visitor introduces themselves with contact details and an emergency; the
// reply must carry extraction, emergency and handoff signals together.
func TestSendMessageEmergencyIntroduction(t *testing.T) {
	store := newMemStore()
	primary := &scriptedResponder{reply: responder.Reply{Text: "We can be there within the hour."}}
	svc := newTestService(store, primary, &scriptedResponder{})

	reply, err := svc.SendMessage(context.Background(), "s-1",
		"Hi, my name is Jane Smith, jane@example.com, I need emergency roof repair",
		domain.ContextUpdate{Page: "/services"}, "203.0.113.9")
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if !reply.Success {
		t.Fatal("expected success")
	}
	if !reply.IsEmergency {
		t.Fatal("expected emergency flag")
	}
	if !reply.RequiresHuman || reply.HandoffReason != handoff.ReasonEmergency {
		t.Fatalf("expected emergency handoff, got %+v", reply)
	}

	conv := store.sessions["s-1"]
	if conv.Context.UserInfo.Name != "Jane Smith" || conv.Context.UserInfo.Email != "jane@example.com" {
		t.Fatalf("extraction not persisted: %+v", conv.Context.UserInfo)
	}
	if conv.Context.UserInfo.ProjectType != domain.ProjectEmergency {
		t.Fatalf("expected emergency project type, got %q", conv.Context.UserInfo.ProjectType)
	}
	if conv.State != domain.SessionActive {
		t.Fatalf("expected active state, got %s", conv.State)
	}
	if len(conv.Messages) != 2 || conv.Messages[0].Role != domain.RoleUser || conv.Messages[1].Role != domain.RoleBot {
		t.Fatalf("expected user then bot message, got %+v", conv.Messages)
	}
}

// A long mid-score conversation escalates purely on message count.
func TestSendMessageComplexConversationHandoff(t *testing.T) {
	store := newMemStore()
	primary := &scriptedResponder{reply: responder.Reply{Text: "noted"}}
	svc := newTestService(store, primary, &scriptedResponder{})

	var last Reply
	var err error
	for i := 0; i < 13; i++ {
		last, err = svc.SendMessage(context.Background(), "s-2",
			fmt.Sprintf("question %d about shingle colors", i), domain.ContextUpdate{}, "")
		if err != nil {
			t.Fatalf("send %d: %v", i, err)
		}
	}

	if last.LeadScore >= 80 {
		t.Fatalf("scenario needs a mid score, got %d", last.LeadScore)
	}
	if !last.RequiresHuman || last.HandoffReason != handoff.ReasonComplexConversation {
		t.Fatalf("expected complex conversation handoff, got %+v", last)
	}
}

// The primary being down is invisible to the caller: the fallback answers
// with the same reply shape and success stays true.
func TestSendMessagePrimaryDownFallbackAnswers(t *testing.T) {
	store := newMemStore()
	primary := &scriptedResponder{err: errors.New("connection refused")}
	fallback := &scriptedResponder{reply: responder.Reply{Text: "We can help with your roof."}}
	svc := newTestService(store, primary, fallback)

	reply, err := svc.SendMessage(context.Background(), "s-3", "my roof needs work", domain.ContextUpdate{}, "")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if !reply.Success {
		t.Fatal("fallback reply must report success")
	}
	if reply.Response != "We can help with your roof." {
		t.Fatalf("unexpected reply %q", reply.Response)
	}
	if primary.calls != 1 || fallback.calls != 1 {
		t.Fatalf("expected one call each, got %d/%d", primary.calls, fallback.calls)
	}
	if len(reply.QuickActions) == 0 {
		t.Fatal("expected synthesized quick actions")
	}
}

func TestSendMessageBothRespondersDown(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store,
		&scriptedResponder{err: errors.New("down")},
		&scriptedResponder{err: errors.New("also down")})

	reply, err := svc.SendMessage(context.Background(), "s-4", "hello there", domain.ContextUpdate{}, "")
	if err != nil {
		t.Fatalf("a responder outage must not error the call: %v", err)
	}
	if reply.Success {
		t.Fatal("expected success=false")
	}
	if reply.Response == "" {
		t.Fatal("expected apologetic reply text")
	}
	// The user message still made it into the store.
	conv := store.sessions["s-4"]
	if len(conv.Messages) == 0 || conv.Messages[0].Content != "hello there" {
		t.Fatalf("user message lost: %+v", conv.Messages)
	}
}

func TestSendMessageStoreOutageStillAnswers(t *testing.T) {
	store := newMemStore()
	store.failGet = true
	store.failSave = true
	primary := &scriptedResponder{reply: responder.Reply{Text: "still here"}}
	svc := newTestService(store, primary, &scriptedResponder{})

	reply, err := svc.SendMessage(context.Background(), "s-5", "can you do inspections?", domain.ContextUpdate{}, "")
	if err != nil {
		t.Fatalf("persistence is best effort, send must not fail: %v", err)
	}
	if !reply.Success || reply.Response != "still here" {
		t.Fatalf("unexpected reply: %+v", reply)
	}
}

func TestSendMessageRemoteEnrichmentOverridesLocal(t *testing.T) {
	store := newMemStore()
	score := 91
	hot := true
	primary := &scriptedResponder{reply: responder.Reply{
		Text:      "Our estimator will call you.",
		LeadScore: &score,
		IsHotLead: &hot,
	}}
	svc := newTestService(store, primary, &scriptedResponder{})

	reply, err := svc.SendMessage(context.Background(), "s-6", "just browsing", domain.ContextUpdate{}, "")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if reply.LeadScore != 91 || !reply.IsHotLead {
		t.Fatalf("expected remote verdicts to win, got %+v", reply)
	}
	if store.sessions["s-6"].Context.LeadScore != 91 {
		t.Fatalf("remote score not persisted, got %d", store.sessions["s-6"].Context.LeadScore)
	}
}

func TestSendMessageContextMergeLastWriteWins(t *testing.T) {
	store := newMemStore()
	primary := &scriptedResponder{reply: responder.Reply{Text: "ok"}}
	svc := newTestService(store, primary, &scriptedResponder{})

	ctx := context.Background()
	if _, err := svc.SendMessage(ctx, "s-7", "hi", domain.ContextUpdate{Page: "/home", Referrer: "google"}, ""); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.SendMessage(ctx, "s-7", "hi again", domain.ContextUpdate{Page: "/pricing"}, ""); err != nil {
		t.Fatal(err)
	}

	conv := store.sessions["s-7"]
	if conv.Context.Page != "/pricing" {
		t.Fatalf("expected last page write to win, got %q", conv.Context.Page)
	}
	if conv.Context.Referrer != "google" {
		t.Fatalf("absent referrer must not clear the old one, got %q", conv.Context.Referrer)
	}
	if !conv.Context.LastActivity.After(conv.Context.SessionStart) && !conv.Context.LastActivity.Equal(conv.Context.SessionStart) {
		t.Fatal("last activity not refreshed")
	}
}

func TestGetConversation(t *testing.T) {
	store := newMemStore()
	primary := &scriptedResponder{reply: responder.Reply{Text: "ok"}}
	svc := newTestService(store, primary, &scriptedResponder{})

	if _, err := svc.SendMessage(context.Background(), "s-8", "hello", domain.ContextUpdate{}, ""); err != nil {
		t.Fatal(err)
	}

	conv, err := svc.GetConversation(context.Background(), "s-8")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(conv.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(conv.Messages))
	}

	if _, err := svc.GetConversation(context.Background(), "nope"); apperr.GetKind(err) != apperr.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
