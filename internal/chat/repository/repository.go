// Package repository persists conversation state keyed by session id.
package repository

import (
	"context"

	"roofchat_backend/internal/chat/domain"
)

// ConversationStore is the persistence contract the chat service depends on.
// Absence of a session is reported through the found flag, not an error, since
// a first message legitimately has no prior state.
type ConversationStore interface {
	// Get loads the conversation for a session. found is false when the
	// session has never been seen or has expired.
	Get(ctx context.Context, sessionID string) (conv *domain.Conversation, found bool, err error)

	// Save writes the full conversation record and refreshes its expiry.
	Save(ctx context.Context, conv *domain.Conversation) error

	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error
}
