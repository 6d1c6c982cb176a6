// Package archive persists qualified-lead snapshots to Postgres so they
// survive conversation expiry in the session store.
package archive

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Lead is one archived lead snapshot, keyed by session.
type Lead struct {
	SessionID      string
	LeadScore      int
	Classification string
	HandoffReason  string
	ContactName    string
	ContactEmail   string
	ContactPhone   string
	ProjectType    string
	LastMessage    string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Upsert writes the snapshot, keeping the highest score seen for the session.
func (r *Repository) Upsert(ctx context.Context, lead Lead) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO leads (
			session_id, lead_score, classification, handoff_reason,
			contact_name, contact_email, contact_phone, project_type, last_message
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (session_id) DO UPDATE SET
			lead_score     = GREATEST(leads.lead_score, EXCLUDED.lead_score),
			classification = EXCLUDED.classification,
			handoff_reason = EXCLUDED.handoff_reason,
			contact_name   = COALESCE(NULLIF(EXCLUDED.contact_name, ''), leads.contact_name),
			contact_email  = COALESCE(NULLIF(EXCLUDED.contact_email, ''), leads.contact_email),
			contact_phone  = COALESCE(NULLIF(EXCLUDED.contact_phone, ''), leads.contact_phone),
			project_type   = COALESCE(NULLIF(EXCLUDED.project_type, ''), leads.project_type),
			last_message   = EXCLUDED.last_message,
			updated_at     = now()`,
		lead.SessionID, lead.LeadScore, lead.Classification, lead.HandoffReason,
		lead.ContactName, lead.ContactEmail, lead.ContactPhone, lead.ProjectType, lead.LastMessage,
	)
	if err != nil {
		return fmt.Errorf("upsert lead %s: %w", lead.SessionID, err)
	}
	return nil
}

// Get loads one archived lead.
func (r *Repository) Get(ctx context.Context, sessionID string) (Lead, error) {
	var lead Lead
	err := r.pool.QueryRow(ctx, `
		SELECT session_id, lead_score, classification, handoff_reason,
		       COALESCE(contact_name, ''), COALESCE(contact_email, ''),
		       COALESCE(contact_phone, ''), COALESCE(project_type, ''),
		       COALESCE(last_message, ''), created_at, updated_at
		FROM leads WHERE session_id = $1`, sessionID,
	).Scan(&lead.SessionID, &lead.LeadScore, &lead.Classification, &lead.HandoffReason,
		&lead.ContactName, &lead.ContactEmail, &lead.ContactPhone, &lead.ProjectType,
		&lead.LastMessage, &lead.CreatedAt, &lead.UpdatedAt)
	if err != nil {
		return Lead{}, fmt.Errorf("load lead %s: %w", sessionID, err)
	}
	return lead, nil
}
