package inbound

import (
	"context"

	"github.com/google/uuid"
)

// ContactService accepts contact form submissions
type ContactService interface {
	Submit(ctx context.Context, cmd ContactCommand) (*ContactReceipt, error)
}

type ContactCommand struct {
	Name    string `json:"name" validate:"required,not_blank,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"max=200"`
	Message string `json:"message" validate:"required,not_blank,max=5000"`
}

type ContactReceipt struct {
	ID          uuid.UUID `json:"id"`
	SubmittedAt string    `json:"submitted_at"`
}
