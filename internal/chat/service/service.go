// Package service orchestrates a conversation turn: persistence, signal
// extraction, scoring, handoff and reply generation.
package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"roofchat_backend/internal/chat/domain"
	"roofchat_backend/internal/chat/handoff"
	"roofchat_backend/internal/chat/repository"
	"roofchat_backend/internal/chat/responder"
	"roofchat_backend/internal/chat/scoring"
	"roofchat_backend/internal/chat/signals"
	"roofchat_backend/internal/events"
	"roofchat_backend/platform/apperr"
	"roofchat_backend/platform/logger"
)

const apologyReply = "Sorry, something went wrong on our end. Please try again in a " +
	"moment, or call us directly at (512) 555-0199."

// Reply is the outcome of one conversation turn. Success is false only when
// both responders failed and the apology text was used.
type Reply struct {
	SessionID     string               `json:"sessionId"`
	Response      string               `json:"response"`
	LeadScore     int                  `json:"leadScore"`
	IsHotLead     bool                 `json:"isHotLead"`
	IsEmergency   bool                 `json:"isEmergency"`
	RequiresHuman bool                 `json:"requiresHuman"`
	HandoffReason string               `json:"handoffReason,omitempty"`
	QuickActions  []domain.QuickAction `json:"quickActions,omitempty"`
	Success       bool                 `json:"success"`
}

// Service is the conversation orchestrator. The primary responder is tried
// first; on any failure the fallback takes over with no change to the reply
// shape, only the logs tell the difference.
type Service struct {
	store    repository.ConversationStore
	primary  responder.Responder
	fallback responder.Responder
	scorer   *scoring.Service
	bus      events.Bus
	logger   *logger.Logger
}

func NewService(
	store repository.ConversationStore,
	primary responder.Responder,
	fallback responder.Responder,
	scorer *scoring.Service,
	bus events.Bus,
	log *logger.Logger,
) *Service {
	return &Service{
		store:    store,
		primary:  primary,
		fallback: fallback,
		scorer:   scorer,
		bus:      bus,
		logger:   log,
	}
}

// SendMessage runs one full conversation turn.
func (s *Service) SendMessage(ctx context.Context, sessionID, text string, update domain.ContextUpdate, ipAddress string) (Reply, error) {
	sessionID = strings.TrimSpace(sessionID)
	text = strings.TrimSpace(text)
	if sessionID == "" {
		return Reply{}, apperr.Validation("sessionId is required")
	}
	if text == "" {
		return Reply{}, apperr.Validation("message text is required")
	}

	conv, isNew, err := s.loadOrCreate(ctx, sessionID)
	if err != nil {
		return Reply{}, err
	}

	now := time.Now().UTC()
	applyContextUpdate(conv, update, now)

	conv.Messages = append(conv.Messages, domain.Message{
		ID:        uuid.NewString(),
		Role:      domain.RoleUser,
		Content:   text,
		Timestamp: now,
	})
	if conv.State == domain.SessionNew {
		conv.State = domain.SessionActive
	}
	// The user message is stored before the reply is even attempted, so a
	// responder crash cannot lose it.
	s.persist(ctx, conv)

	if isNew {
		s.publish(ctx, events.ConversationStarted{
			BaseEvent: events.NewBaseEvent(),
			SessionID: sessionID,
			Page:      conv.Context.Page,
			Referrer:  conv.Context.Referrer,
		})
	}

	info := signals.ExtractUserInfo(conv.UserMessages())
	conv.Context.UserInfo = conv.Context.UserInfo.Merge(info)
	info = conv.Context.UserInfo

	scored := s.scorer.Score(conv, info)
	emergency := signals.AssessEmergency(text)
	decision := handoff.Evaluate(conv, scored.Score)

	previousScore := conv.Context.LeadScore
	conv.Context.LeadScore = scored.Score

	reply, viaFallback, ok := s.respond(ctx, responder.Request{
		SessionID:   sessionID,
		Message:     text,
		PageContext: conv.Context.Page,
		UserInfo:    info,
		Timestamp:   now,
		IPAddress:   ipAddress,
	})

	result := Reply{
		SessionID:     sessionID,
		Response:      reply.Text,
		LeadScore:     scored.Score,
		IsHotLead:     scored.Classification == scoring.BandHot,
		IsEmergency:   emergency.IsEmergency,
		RequiresHuman: decision.RequiresHuman,
		HandoffReason: decision.Reason,
		QuickActions:  reply.QuickActions,
		Success:       ok,
	}
	// A responder that computed its own verdicts overrides the local ones.
	if reply.LeadScore != nil {
		result.LeadScore = *reply.LeadScore
		conv.Context.LeadScore = *reply.LeadScore
	}
	if reply.IsHotLead != nil {
		result.IsHotLead = *reply.IsHotLead
	}
	if reply.IsEmergency != nil {
		result.IsEmergency = *reply.IsEmergency
	}
	if reply.RequiresHuman != nil {
		result.RequiresHuman = *reply.RequiresHuman
		if !*reply.RequiresHuman {
			result.HandoffReason = handoff.ReasonNone
		}
	}
	if len(result.QuickActions) == 0 {
		result.QuickActions = defaultQuickActions(result.IsEmergency, info)
	}

	conv.Messages = append(conv.Messages, domain.Message{
		ID:        uuid.NewString(),
		Role:      domain.RoleBot,
		Content:   result.Response,
		Timestamp: time.Now().UTC(),
		Metadata: &domain.MessageMetadata{
			LeadScore:     &result.LeadScore,
			IsHotLead:     &result.IsHotLead,
			IsEmergency:   &result.IsEmergency,
			RequiresHuman: &result.RequiresHuman,
			HandoffReason: result.HandoffReason,
			ViaFallback:   viaFallback,
		},
	})

	s.notify(ctx, conv, result, previousScore, text)
	s.persist(ctx, conv)

	return result, nil
}

// GetConversation loads a session for the history endpoint.
func (s *Service) GetConversation(ctx context.Context, sessionID string) (*domain.Conversation, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, apperr.Validation("sessionId is required")
	}
	conv, found, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, apperr.Internal("failed to load conversation")
	}
	if !found {
		return nil, apperr.NotFound("conversation not found")
	}
	return conv, nil
}

func (s *Service) loadOrCreate(ctx context.Context, sessionID string) (*domain.Conversation, bool, error) {
	conv, found, err := s.store.Get(ctx, sessionID)
	if err != nil {
		// The store being down must not kill the conversation; start a
		// fresh in-memory record and keep going.
		s.logger.StoreError("get", sessionID, err)
		found = false
	}
	if found {
		return conv, false, nil
	}
	now := time.Now().UTC()
	return &domain.Conversation{
		SessionID: sessionID,
		State:     domain.SessionNew,
		Context: domain.Context{
			SessionStart: now,
			LastActivity: now,
		},
	}, true, nil
}

func applyContextUpdate(conv *domain.Conversation, update domain.ContextUpdate, now time.Time) {
	if update.Page != "" {
		conv.Context.Page = update.Page
	}
	if update.Referrer != "" {
		conv.Context.Referrer = update.Referrer
	}
	conv.Context.LastActivity = now
}

// respond tries the primary responder, then the fallback. The bool return
// reports whether any responder produced a real reply.
func (s *Service) respond(ctx context.Context, req responder.Request) (responder.Reply, bool, bool) {
	reply, err := s.primary.Respond(ctx, req)
	if err == nil {
		return reply, false, true
	}
	s.logger.ResponderFallback(req.SessionID, err)

	reply, err = s.fallback.Respond(ctx, req)
	if err == nil {
		return reply, true, true
	}
	s.logger.Error("all responders failed",
		"session_id", req.SessionID,
		"error", err,
	)
	return responder.Reply{Text: apologyReply}, true, false
}

// notify publishes the one-shot qualification and handoff events.
func (s *Service) notify(ctx context.Context, conv *domain.Conversation, result Reply, previousScore int, lastMessage string) {
	info := conv.Context.UserInfo

	if result.IsHotLead && previousScore < result.LeadScore && scoring.Classify(previousScore) != scoring.BandHot {
		s.publish(ctx, events.LeadQualified{
			BaseEvent:    events.NewBaseEvent(),
			SessionID:    conv.SessionID,
			LeadScore:    result.LeadScore,
			ContactName:  info.Name,
			ContactEmail: info.Email,
			ContactPhone: info.Phone,
			ProjectType:  string(info.ProjectType),
		})
	}

	if result.RequiresHuman && !conv.Context.HandoffNotified {
		conv.Context.HandoffNotified = true
		s.logger.HandoffTriggered(conv.SessionID, result.HandoffReason, result.LeadScore)
		s.publish(ctx, events.HandoffRequested{
			BaseEvent:    events.NewBaseEvent(),
			SessionID:    conv.SessionID,
			Reason:       result.HandoffReason,
			LeadScore:    result.LeadScore,
			LastMessage:  lastMessage,
			ContactName:  info.Name,
			ContactEmail: info.Email,
			ContactPhone: info.Phone,
			ProjectType:  string(info.ProjectType),
		})
	}
}

func (s *Service) persist(ctx context.Context, conv *domain.Conversation) {
	if err := s.store.Save(ctx, conv); err != nil {
		s.logger.StoreError("save", conv.SessionID, err)
	}
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.bus != nil {
		s.bus.Publish(ctx, event)
	}
}

func defaultQuickActions(isEmergency bool, info domain.UserInfo) []domain.QuickAction {
	if isEmergency {
		return []domain.QuickAction{
			{ID: "qa-emergency", Label: "Call emergency line", Action: domain.ActionEmergencyContact, Value: "(512) 555-0199"},
			{ID: "qa-callback", Label: "Have someone call me", Action: domain.ActionRequestCallback},
		}
	}
	actions := []domain.QuickAction{
		{ID: "qa-inspect", Label: "Schedule an inspection", Action: domain.ActionScheduleInspection},
		{ID: "qa-quote", Label: "Get a free quote", Action: domain.ActionSendMessage, Value: "I'd like a free quote"},
	}
	if !info.HasFullContact() {
		actions = append(actions, domain.QuickAction{
			ID: "qa-callback", Label: "Have someone call me", Action: domain.ActionRequestCallback,
		})
	}
	return actions
}
