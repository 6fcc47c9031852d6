package notification

import (
	"context"
	"fmt"

	"github.com/recipemanager/server/internal/domain/contact"
	"github.com/recipemanager/server/internal/infrastructure/config"
	"github.com/recipemanager/server/internal/ports/outbound"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// SMTPNotifier emails submissions through an SMTP relay
type SMTPNotifier struct {
	cfg    config.EmailConfig
	send   func(m ...*gomail.Message) error
	logger *zap.Logger
}

// NewSMTPNotifier creates a new SMTP notifier
func NewSMTPNotifier(cfg config.EmailConfig, logger *zap.Logger) *SMTPNotifier {
	d := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)
	return &SMTPNotifier{
		cfg:    cfg,
		send:   d.DialAndSend,
		logger: logger.Named("smtp-notifier"),
	}
}

var _ outbound.Notifier = (*SMTPNotifier)(nil)

// NotifyContact emails the message to the contact recipient. Replies go to
// the submitter.
func (n *SMTPNotifier) NotifyContact(ctx context.Context, msg *contact.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", n.cfg.FromAddress, n.cfg.FromName)
	m.SetHeader("To", n.cfg.ContactRecipient)
	m.SetAddressHeader("Reply-To", msg.Email, msg.Name)
	m.SetHeader("Subject", subjectLine(msg))
	m.SetBody("text/plain", bodyText(msg))

	if err := n.send(m); err != nil {
		return fmt.Errorf("failed to send contact email: %w", err)
	}

	n.logger.Info("Contact email sent",
		zap.String("id", msg.ID.String()),
		zap.String("recipient", n.cfg.ContactRecipient))
	return nil
}
