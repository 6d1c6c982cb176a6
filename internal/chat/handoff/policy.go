// Package handoff decides when a conversation should leave the bot and go to
// a person.
package handoff

import (
	"strings"

	"roofchat_backend/internal/chat/domain"
	"roofchat_backend/internal/chat/signals"
)

// Handoff reasons, most urgent first. The evaluation order below is part of
// the contract: an emergency always reports as "emergency" even when the lead
// score or message count would also trigger.
const (
	ReasonEmergency           = "emergency"
	ReasonHighValueLead       = "high_value_lead"
	ReasonComplexConversation = "complex_conversation"
	ReasonUserRequest         = "user_request"
	ReasonNone                = "none"

	highValueThreshold = 80
	complexityLimit    = 20
	requestWindow      = 5
)

var humanRequestPhrases = []string{
	"human", "agent", "representative", "speak to someone", "talk to someone",
}

// Decision is the verdict for one conversation turn.
type Decision struct {
	RequiresHuman bool   `json:"requiresHuman"`
	Reason        string `json:"reason"`
}

// Evaluate checks the triggers in fixed priority order and returns the first
// that fires. It never blocks the conversation; callers treat the decision as
// advisory metadata on the reply.
func Evaluate(conv *domain.Conversation, leadScore int) Decision {
	if last := conv.LastUserMessage(); last != "" {
		if signals.AssessEmergency(last).IsEmergency {
			return Decision{RequiresHuman: true, Reason: ReasonEmergency}
		}
	}
	if leadScore >= highValueThreshold {
		return Decision{RequiresHuman: true, Reason: ReasonHighValueLead}
	}
	if len(conv.Messages) >= complexityLimit {
		return Decision{RequiresHuman: true, Reason: ReasonComplexConversation}
	}
	if userAskedForHuman(conv.Messages) {
		return Decision{RequiresHuman: true, Reason: ReasonUserRequest}
	}
	return Decision{Reason: ReasonNone}
}

func userAskedForHuman(messages []domain.Message) bool {
	start := len(messages) - requestWindow
	if start < 0 {
		start = 0
	}
	for _, m := range messages[start:] {
		if m.Role != domain.RoleUser {
			continue
		}
		lowered := strings.ToLower(m.Content)
		for _, phrase := range humanRequestPhrases {
			if strings.Contains(lowered, phrase) {
				return true
			}
		}
	}
	return false
}
