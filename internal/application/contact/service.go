// Package contact handles contact form submissions
package contact

import (
	"context"
	"time"

	"github.com/recipemanager/server/internal/application/validation"
	"github.com/recipemanager/server/internal/domain/contact"
	"github.com/recipemanager/server/internal/ports/inbound"
	"github.com/recipemanager/server/internal/ports/outbound"
	"github.com/recipemanager/server/pkg/errors"
	"go.uber.org/zap"
)

// ContactService stores submissions and notifies the site operators
type ContactService struct {
	repo      outbound.ContactRepository
	notifier  outbound.Notifier
	validator *validation.Validator
	logger    *zap.Logger
}

func NewContactService(repo outbound.ContactRepository, notifier outbound.Notifier, validator *validation.Validator, logger *zap.Logger) *ContactService {
	return &ContactService{
		repo:      repo,
		notifier:  notifier,
		validator: validator,
		logger:    logger.Named("contact-service"),
	}
}

var _ inbound.ContactService = (*ContactService)(nil)

// Submit stores the message. A failed notification is logged only.
func (s *ContactService) Submit(ctx context.Context, cmd inbound.ContactCommand) (*inbound.ContactReceipt, error) {
	if err := s.validator.Struct(cmd); err != nil {
		return nil, err
	}

	msg, err := contact.NewMessage(cmd.Name, cmd.Email, cmd.Subject, cmd.Message)
	if err != nil {
		return nil, errors.NewValidationError(err.Error()).WithCause(err)
	}

	if err := s.repo.Save(ctx, msg); err != nil {
		return nil, errors.NewDatabaseError("save contact message", err)
	}

	if err := s.notifier.NotifyContact(ctx, msg); err != nil {
		s.logger.Warn("Contact notification failed",
			zap.String("message_id", msg.ID.String()),
			zap.Error(err),
		)
	}

	s.logger.Info("Contact message received",
		zap.String("message_id", msg.ID.String()),
		zap.String("subject", msg.DisplaySubject()),
	)

	return &inbound.ContactReceipt{
		ID:          msg.ID,
		SubmittedAt: msg.CreatedAt.Format(time.RFC3339),
	}, nil
}
