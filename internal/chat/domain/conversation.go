// Package domain holds the chat bounded context's core types.
// A conversation is an append-only message log plus a context record,
// owned by exactly one session id and mutated only by the orchestrator.
package domain

import (
	"strings"
	"time"
)

// Role identifies the author of a message.
type Role string

const (
	RoleUser   Role = "user"
	RoleBot    Role = "bot"
	RoleSystem Role = "system"
)

// SessionState tracks the session-level lifecycle. There is no terminal state
// here; lifecycle end is external (store-level expiry).
type SessionState string

const (
	// SessionNew is a session that has not yet received a message.
	SessionNew SessionState = "new"
	// SessionActive is a session with at least one message.
	SessionActive SessionState = "active"
)

// ProjectType classifies what kind of roofing work the visitor is asking for.
type ProjectType string

const (
	ProjectRepair      ProjectType = "repair"
	ProjectReplacement ProjectType = "replacement"
	ProjectInspection  ProjectType = "inspection"
	ProjectCommercial  ProjectType = "commercial"
	ProjectEmergency   ProjectType = "emergency"
)

// MessageMetadata carries scoring and escalation signals attached to a bot
// reply when it is persisted.
type MessageMetadata struct {
	LeadScore     *int   `json:"leadScore,omitempty"`
	IsHotLead     *bool  `json:"isHotLead,omitempty"`
	IsEmergency   *bool  `json:"isEmergency,omitempty"`
	RequiresHuman *bool  `json:"requiresHuman,omitempty"`
	HandoffReason string `json:"handoffReason,omitempty"`
	ViaFallback   bool   `json:"viaFallback,omitempty"`
}

// Message is a single entry in a conversation. Immutable once stored.
type Message struct {
	ID        string           `json:"id"`
	Role      Role             `json:"role"`
	Content   string           `json:"content"`
	Timestamp time.Time        `json:"timestamp"`
	Metadata  *MessageMetadata `json:"metadata,omitempty"`
}

// UserInfo is the incrementally extracted picture of the visitor. Every field
// is optional; a field is never overwritten with an empty value once set.
type UserInfo struct {
	Name         string      `json:"name,omitempty"`
	Email        string      `json:"email,omitempty"`
	Phone        string      `json:"phone,omitempty"`
	ProjectType  ProjectType `json:"projectType,omitempty"`
	UrgencyLevel int         `json:"urgencyLevel,omitempty"`
}

// Merge folds freshly extracted info into the existing record. Extraction
// re-runs over the full history, so the incoming value wins per field when it
// is present; absence never clears a known value.
func (u UserInfo) Merge(incoming UserInfo) UserInfo {
	merged := u
	if incoming.Name != "" {
		merged.Name = incoming.Name
	}
	if incoming.Email != "" {
		merged.Email = incoming.Email
	}
	if incoming.Phone != "" {
		merged.Phone = incoming.Phone
	}
	if incoming.ProjectType != "" {
		merged.ProjectType = incoming.ProjectType
	}
	if incoming.UrgencyLevel > merged.UrgencyLevel {
		merged.UrgencyLevel = incoming.UrgencyLevel
	}
	return merged
}

// HasFullContact reports whether name, email and phone are all known.
func (u UserInfo) HasFullContact() bool {
	return u.Name != "" && u.Email != "" && u.Phone != ""
}

// Context is the per-session context record. Partial updates merge
// last-write-wins per field; LastActivity refreshes on every message.
type Context struct {
	Page         string    `json:"page,omitempty"`
	Referrer     string    `json:"referrer,omitempty"`
	SessionStart time.Time `json:"sessionStart"`
	LastActivity time.Time `json:"lastActivity"`
	UserInfo     UserInfo  `json:"userInfo"`
	LeadScore    int       `json:"leadScore"`

	// HandoffNotified marks that operators were alerted once for this
	// session; the handoff flag itself stays advisory on every reply.
	HandoffNotified bool `json:"handoffNotified,omitempty"`
}

// ContextUpdate carries the optional context fields a caller may set on a
// sendMessage call.
type ContextUpdate struct {
	Page     string
	Referrer string
}

// Conversation is the full per-session record held in the store.
type Conversation struct {
	SessionID string       `json:"sessionId"`
	State     SessionState `json:"state"`
	Messages  []Message    `json:"messages"`
	Context   Context      `json:"context"`
}

// UserMessages returns the contents of all user-authored messages in order.
func (c *Conversation) UserMessages() []string {
	texts := make([]string, 0, len(c.Messages))
	for _, m := range c.Messages {
		if m.Role == RoleUser {
			texts = append(texts, m.Content)
		}
	}
	return texts
}

// UserText joins all user-authored message content into one searchable blob.
func (c *Conversation) UserText() string {
	return strings.Join(c.UserMessages(), " ")
}

// LastUserMessage returns the most recent user-authored message content,
// or "" when none exists.
func (c *Conversation) LastUserMessage() string {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].Role == RoleUser {
			return c.Messages[i].Content
		}
	}
	return ""
}

// QuickActionKind enumerates the tappable shortcut kinds the widget renders.
type QuickActionKind string

const (
	ActionSendMessage        QuickActionKind = "send_message"
	ActionRequestCallback    QuickActionKind = "request_callback"
	ActionScheduleInspection QuickActionKind = "schedule_inspection"
	ActionEmergencyContact   QuickActionKind = "emergency_contact"
)

// Valid reports whether the kind is one the widget knows how to render.
func (k QuickActionKind) Valid() bool {
	switch k {
	case ActionSendMessage, ActionRequestCallback, ActionScheduleInspection, ActionEmergencyContact:
		return true
	}
	return false
}

// QuickAction is a predefined canned reply offered to the user. Selecting one
// synthesizes a user message fed back through the orchestrator.
type QuickAction struct {
	ID     string          `json:"id"`
	Label  string          `json:"label"`
	Action QuickActionKind `json:"action"`
	Value  string          `json:"value,omitempty"`
}
