// Package notify delivers share-notification emails. Delivery is
// best-effort; callers log and continue on failure.
package notify

import (
	"context"
	"fmt"

	"github.com/lk2023060901/cloud-drive-backend/internal/conf"
	"github.com/wneessen/go-mail"
)

// Mailer sends share notifications over SMTP.
type Mailer struct {
	cfg conf.SMTPConfig
}

// NewMailer returns nil when SMTP is not configured, which disables
// notifications entirely.
func NewMailer(cfg conf.SMTPConfig) *Mailer {
	if cfg.Host == "" {
		return nil
	}
	return &Mailer{cfg: cfg}
}

func (m *Mailer) NotifyShare(ctx context.Context, recipient, filename string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(recipient); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(fmt.Sprintf("A file has been shared with you: %s", filename))
	msg.SetBodyString(mail.TypeTextPlain,
		fmt.Sprintf("The file %q has been shared with you.", filename))

	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.cfg.Username),
		mail.WithPassword(m.cfg.Password),
	}

	client, err := mail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("failed to create mail client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	return nil
}
