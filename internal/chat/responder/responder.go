// Package responder produces bot replies, either through the external
// automation webhook or through the built-in rule engine.
package responder

import (
	"context"
	"time"

	"roofchat_backend/internal/chat/domain"
)

// Request is what a responder needs to produce a reply.
type Request struct {
	SessionID   string
	Message     string
	PageContext string
	UserInfo    domain.UserInfo
	Timestamp   time.Time
	IPAddress   string
}

// Reply is a responder's answer. The enrichment fields are pointers so a
// responder that only returns text is distinguishable from one that computed
// its own scoring; nil means "not provided", and the caller keeps its local
// values.
type Reply struct {
	Text          string
	LeadScore     *int
	IsHotLead     *bool
	IsEmergency   *bool
	RequiresHuman *bool
	QuickActions  []domain.QuickAction
}

// Responder produces a reply to one user message. Implementations must honor
// the context deadline and return an error rather than a fabricated reply.
type Responder interface {
	Respond(ctx context.Context, req Request) (Reply, error)
}
