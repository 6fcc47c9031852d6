package notification

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ses"
	"github.com/aws/aws-sdk-go/service/ses/sesiface"
	"github.com/recipemanager/server/internal/domain/contact"
	"github.com/recipemanager/server/internal/infrastructure/config"
	"github.com/recipemanager/server/internal/ports/outbound"
	"go.uber.org/zap"
)

// SESNotifier emails submissions through Amazon SES
type SESNotifier struct {
	client sesiface.SESAPI
	cfg    config.EmailConfig
	logger *zap.Logger
}

// NewSESNotifier creates a new SES notifier
func NewSESNotifier(sess *session.Session, cfg config.EmailConfig, logger *zap.Logger) *SESNotifier {
	return newSESNotifier(ses.New(sess), cfg, logger)
}

func newSESNotifier(client sesiface.SESAPI, cfg config.EmailConfig, logger *zap.Logger) *SESNotifier {
	return &SESNotifier{
		client: client,
		cfg:    cfg,
		logger: logger.Named("ses-notifier"),
	}
}

var _ outbound.Notifier = (*SESNotifier)(nil)

// NotifyContact sends the message with SES SendEmail
func (n *SESNotifier) NotifyContact(ctx context.Context, msg *contact.Message) error {
	from := (&mail.Address{Name: n.cfg.FromName, Address: n.cfg.FromAddress}).String()
	replyTo := (&mail.Address{Name: msg.Name, Address: msg.Email}).String()

	input := &ses.SendEmailInput{
		Source: aws.String(from),
		Destination: &ses.Destination{
			ToAddresses: []*string{aws.String(n.cfg.ContactRecipient)},
		},
		ReplyToAddresses: []*string{aws.String(replyTo)},
		Message: &ses.Message{
			Subject: &ses.Content{
				Charset: aws.String("UTF-8"),
				Data:    aws.String(subjectLine(msg)),
			},
			Body: &ses.Body{
				Text: &ses.Content{
					Charset: aws.String("UTF-8"),
					Data:    aws.String(bodyText(msg)),
				},
			},
		},
	}

	out, err := n.client.SendEmailWithContext(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send contact email via SES: %w", err)
	}

	n.logger.Info("Contact email sent",
		zap.String("id", msg.ID.String()),
		zap.String("message_id", aws.StringValue(out.MessageId)))
	return nil
}
