// Package transport defines the request and response shapes of the chat API.
package transport

import (
	"time"

	"roofchat_backend/internal/chat/domain"
)

// SendMessageRequest is the body of a sendMessage call. Context is optional;
// present fields merge into the stored session context.
type SendMessageRequest struct {
	Message string `json:"message" binding:"required"`
	Context struct {
		Page     string `json:"page"`
		Referrer string `json:"referrer"`
	} `json:"context"`
}

// QuickActionRequest is the body of a quick-action tap. The widget sends the
// action it rendered; the backend synthesizes the canned user message.
type QuickActionRequest struct {
	ID     string `json:"id"`
	Label  string `json:"label" binding:"required"`
	Action string `json:"action" binding:"required"`
	Value  string `json:"value"`
}

// Text returns the user message a tap synthesizes.
func (r QuickActionRequest) Text() string {
	if r.Value != "" {
		return r.Value
	}
	return r.Label
}

// RespondRequest is the body of the built-in rule responder endpoint. Its
// shape matches what the orchestrator sends to any responder.
type RespondRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	Message   string `json:"message" binding:"required"`
	Context   struct {
		Page        string `json:"page"`
		Name        string `json:"name"`
		ProjectType string `json:"project_type"`
		Urgency     int    `json:"urgency"`
	} `json:"context"`
}

// RespondResponse mirrors the webhook responder wire shape so the fallback is
// indistinguishable from the primary.
type RespondResponse struct {
	Response     string               `json:"response"`
	QuickActions []domain.QuickAction `json:"quick_actions,omitempty"`
}

// MessageView is one message in the conversation history response.
type MessageView struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ConversationView is the read model for the history endpoint.
type ConversationView struct {
	SessionID    string          `json:"sessionId"`
	State        string          `json:"state"`
	Messages     []MessageView   `json:"messages"`
	LeadScore    int             `json:"leadScore"`
	UserInfo     domain.UserInfo `json:"userInfo"`
	SessionStart time.Time       `json:"sessionStart"`
	LastActivity time.Time       `json:"lastActivity"`
}

func ToConversationView(conv *domain.Conversation) ConversationView {
	view := ConversationView{
		SessionID:    conv.SessionID,
		State:        string(conv.State),
		Messages:     make([]MessageView, 0, len(conv.Messages)),
		LeadScore:    conv.Context.LeadScore,
		UserInfo:     conv.Context.UserInfo,
		SessionStart: conv.Context.SessionStart,
		LastActivity: conv.Context.LastActivity,
	}
	for _, m := range conv.Messages {
		view.Messages = append(view.Messages, MessageView{
			ID:        m.ID,
			Role:      string(m.Role),
			Content:   m.Content,
			Timestamp: m.Timestamp,
		})
	}
	return view
}
