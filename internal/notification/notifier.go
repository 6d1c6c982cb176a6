// Package notification emails operators when a conversation needs a human.
package notification

import (
	"context"
	"fmt"
	"strings"

	"github.com/wneessen/go-mail"

	"roofchat_backend/internal/events"
	"roofchat_backend/platform/config"
	"roofchat_backend/platform/logger"
)

// Sender delivers one composed message. The SMTP client implements it; tests
// substitute a recorder.
type Sender interface {
	Send(ctx context.Context, subject, body string) error
}

// Notifier turns handoff events into operator alert emails.
type Notifier struct {
	sender Sender
	logger *logger.Logger
}

func NewNotifier(sender Sender, log *logger.Logger) *Notifier {
	return &Notifier{sender: sender, logger: log}
}

// Register subscribes the notifier to handoff events.
func (n *Notifier) Register(bus events.Bus) {
	bus.Subscribe(events.HandoffRequested{}.EventName(), events.HandlerFunc(n.onHandoffRequested))
}

func (n *Notifier) onHandoffRequested(ctx context.Context, event events.Event) error {
	e, ok := event.(events.HandoffRequested)
	if !ok {
		return nil
	}

	subject := fmt.Sprintf("Chat handoff (%s): session %s", e.Reason, e.SessionID)
	body := composeAlertBody(e)
	if err := n.sender.Send(ctx, subject, body); err != nil {
		return fmt.Errorf("send handoff alert: %w", err)
	}
	n.logger.Info("handoff alert sent", "session_id", e.SessionID, "reason", e.Reason)
	return nil
}

func composeAlertBody(e events.HandoffRequested) string {
	var b strings.Builder
	fmt.Fprintf(&b, "A chat conversation needs a human.\n\n")
	fmt.Fprintf(&b, "Session:    %s\n", e.SessionID)
	fmt.Fprintf(&b, "Reason:     %s\n", e.Reason)
	fmt.Fprintf(&b, "Lead score: %d\n", e.LeadScore)
	if e.ContactName != "" {
		fmt.Fprintf(&b, "Name:       %s\n", e.ContactName)
	}
	if e.ContactEmail != "" {
		fmt.Fprintf(&b, "Email:      %s\n", e.ContactEmail)
	}
	if e.ContactPhone != "" {
		fmt.Fprintf(&b, "Phone:      %s\n", e.ContactPhone)
	}
	if e.ProjectType != "" {
		fmt.Fprintf(&b, "Project:    %s\n", e.ProjectType)
	}
	if e.LastMessage != "" {
		fmt.Fprintf(&b, "\nLast message:\n%s\n", e.LastMessage)
	}
	return b.String()
}

// SMTPSender sends alerts through the configured SMTP server.
type SMTPSender struct {
	client *mail.Client
	from   string
	to     string
}

func NewSMTPSender(cfg config.EmailConfig) (*SMTPSender, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.GetSMTPPort()),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if cfg.GetSMTPUsername() != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.GetSMTPUsername()),
			mail.WithPassword(cfg.GetSMTPPassword()),
		)
	}
	client, err := mail.NewClient(cfg.GetSMTPHost(), opts...)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}
	return &SMTPSender{
		client: client,
		from:   cfg.GetEmailFromAddress(),
		to:     cfg.GetHandoffAlertAddress(),
	}, nil
}

func (s *SMTPSender) Send(ctx context.Context, subject, body string) error {
	msg := mail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return fmt.Errorf("set from address: %w", err)
	}
	if err := msg.To(s.to); err != nil {
		return fmt.Errorf("set to address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("deliver alert: %w", err)
	}
	return nil
}
