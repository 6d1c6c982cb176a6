// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"roofchat_backend/platform/events"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Chat Domain Events
// =============================================================================

// ConversationStarted is published when a session receives its first message.
type ConversationStarted struct {
	BaseEvent
	SessionID string `json:"sessionId"`
	Page      string `json:"page,omitempty"`
	Referrer  string `json:"referrer,omitempty"`
}

func (e ConversationStarted) EventName() string { return "chat.conversation.started" }

// HandoffRequested is published when the handoff policy decides a conversation
// should move to a human operator. Escalation is advisory; the conversation
// keeps flowing while downstream handlers alert the operator.
type HandoffRequested struct {
	BaseEvent
	SessionID    string `json:"sessionId"`
	Reason       string `json:"reason"`
	LeadScore    int    `json:"leadScore"`
	LastMessage  string `json:"lastMessage"`
	ContactName  string `json:"contactName,omitempty"`
	ContactEmail string `json:"contactEmail,omitempty"`
	ContactPhone string `json:"contactPhone,omitempty"`
	ProjectType  string `json:"projectType,omitempty"`
}

func (e HandoffRequested) EventName() string { return "chat.handoff.requested" }

// LeadQualified is published the first time a conversation's composite score
// enters the hot-lead band.
type LeadQualified struct {
	BaseEvent
	SessionID    string `json:"sessionId"`
	LeadScore    int    `json:"leadScore"`
	ContactName  string `json:"contactName,omitempty"`
	ContactEmail string `json:"contactEmail,omitempty"`
	ContactPhone string `json:"contactPhone,omitempty"`
	ProjectType  string `json:"projectType,omitempty"`
}

func (e LeadQualified) EventName() string { return "chat.lead.qualified" }

// AttachmentUploaded is published when a chat file upload is stored.
type AttachmentUploaded struct {
	BaseEvent
	SessionID   string `json:"sessionId"`
	FileKey     string `json:"fileKey"`
	FileURL     string `json:"fileUrl"`
	ContentType string `json:"contentType"`
	SizeBytes   int64  `json:"sizeBytes"`
}

func (e AttachmentUploaded) EventName() string { return "chat.attachment.uploaded" }
