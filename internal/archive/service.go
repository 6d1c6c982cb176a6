package archive

import (
	"context"

	"roofchat_backend/internal/chat/scoring"
	"roofchat_backend/internal/events"
	"roofchat_backend/platform/logger"
	"roofchat_backend/platform/phone"
)

// LeadWriter is what the archiver needs from storage.
type LeadWriter interface {
	Upsert(ctx context.Context, lead Lead) error
}

// Archiver listens for qualification and handoff events and snapshots them to
// the leads table. Failures are logged; archival never disturbs the chat path.
type Archiver struct {
	repo   LeadWriter
	logger *logger.Logger
}

func NewArchiver(repo LeadWriter, log *logger.Logger) *Archiver {
	return &Archiver{repo: repo, logger: log}
}

// Register subscribes the archiver to the events it snapshots.
func (a *Archiver) Register(bus events.Bus) {
	bus.Subscribe(events.LeadQualified{}.EventName(), events.HandlerFunc(a.onLeadQualified))
	bus.Subscribe(events.HandoffRequested{}.EventName(), events.HandlerFunc(a.onHandoffRequested))
}

func (a *Archiver) onLeadQualified(ctx context.Context, event events.Event) error {
	e, ok := event.(events.LeadQualified)
	if !ok {
		return nil
	}
	return a.repo.Upsert(ctx, Lead{
		SessionID:      e.SessionID,
		LeadScore:      e.LeadScore,
		Classification: scoring.BandHot,
		HandoffReason:  "none",
		ContactName:    e.ContactName,
		ContactEmail:   e.ContactEmail,
		ContactPhone:   phone.NormalizeE164(e.ContactPhone),
		ProjectType:    e.ProjectType,
	})
}

func (a *Archiver) onHandoffRequested(ctx context.Context, event events.Event) error {
	e, ok := event.(events.HandoffRequested)
	if !ok {
		return nil
	}
	return a.repo.Upsert(ctx, Lead{
		SessionID:      e.SessionID,
		LeadScore:      e.LeadScore,
		Classification: scoring.Classify(e.LeadScore),
		HandoffReason:  e.Reason,
		ContactName:    e.ContactName,
		ContactEmail:   e.ContactEmail,
		ContactPhone:   phone.NormalizeE164(e.ContactPhone),
		ProjectType:    e.ProjectType,
		LastMessage:    e.LastMessage,
	})
}
