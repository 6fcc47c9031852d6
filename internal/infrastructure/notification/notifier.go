// Package notification delivers contact form submissions to the site operators
package notification

import (
	"context"
	"fmt"
	"strings"

	"github.com/recipemanager/server/internal/domain/contact"
	"github.com/recipemanager/server/internal/infrastructure/config"
	"github.com/recipemanager/server/internal/infrastructure/storage"
	"github.com/recipemanager/server/internal/ports/outbound"
	"go.uber.org/zap"
)

// New creates the notifier selected by cfg.Email.Provider. Without a
// contact recipient every provider degrades to logging.
func New(cfg *config.Config, logger *zap.Logger) (outbound.Notifier, error) {
	if cfg.Email.ContactRecipient == "" && cfg.Email.Provider != "log" {
		logger.Warn("email.contact_recipient is empty, contact messages will only be logged",
			zap.String("provider", cfg.Email.Provider))
		return NewLogNotifier(logger), nil
	}

	switch cfg.Email.Provider {
	case "log":
		return NewLogNotifier(logger), nil
	case "smtp":
		return NewSMTPNotifier(cfg.Email, logger), nil
	case "ses":
		sess, err := storage.NewSession(cfg.AWS)
		if err != nil {
			return nil, err
		}
		return NewSESNotifier(sess, cfg.Email, logger), nil
	default:
		return nil, fmt.Errorf("unsupported email provider: %s", cfg.Email.Provider)
	}
}

// LogNotifier writes submissions to the application log
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a notifier that only logs
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.Named("contact-notifier")}
}

var _ outbound.Notifier = (*LogNotifier)(nil)

// NotifyContact logs the submission
func (n *LogNotifier) NotifyContact(ctx context.Context, msg *contact.Message) error {
	n.logger.Info("Contact message received",
		zap.String("id", msg.ID.String()),
		zap.String("name", msg.Name),
		zap.String("email", msg.Email),
		zap.String("subject", msg.Subject),
		zap.Int("length", len(msg.Body)))
	return nil
}

func subjectLine(msg *contact.Message) string {
	if msg.Subject == "" {
		return "New contact message from " + msg.Name
	}
	return "[Contact] " + msg.Subject
}

func bodyText(msg *contact.Message) string {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\n", msg.Name, msg.Email)
	fmt.Fprintf(&b, "Received: %s\n", msg.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	if msg.Subject != "" {
		fmt.Fprintf(&b, "Subject: %s\n", msg.Subject)
	}
	b.WriteString("\n")
	b.WriteString(msg.Body)
	b.WriteString("\n")
	return b.String()
}
