// Package contact holds messages submitted through the public contact form.
package contact

import (
	"errors"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	MaxNameLength    = 100
	MaxSubjectLength = 200
	MaxMessageLength = 5000
)

var (
	ErrNameRequired    = errors.New("name is required")
	ErrNameTooLong     = errors.New("name too long")
	ErrInvalidEmail    = errors.New("a valid email is required")
	ErrSubjectTooLong  = errors.New("subject too long")
	ErrMessageRequired = errors.New("message is required")
	ErrMessageTooLong  = errors.New("message too long")
)

// Message is a single contact form submission
type Message struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Subject   string
	Body      string
	CreatedAt time.Time
}

// NewMessage validates and builds a submission
func NewMessage(name, email, subject, body string) (*Message, error) {
	m := &Message{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(name),
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Subject:   strings.TrimSpace(subject),
		Body:      strings.TrimSpace(body),
		CreatedAt: time.Now().UTC(),
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Message) Validate() error {
	switch {
	case m.Name == "":
		return ErrNameRequired
	case utf8.RuneCountInString(m.Name) > MaxNameLength:
		return ErrNameTooLong
	}

	if addr, err := mail.ParseAddress(m.Email); err != nil || addr.Address != m.Email {
		return ErrInvalidEmail
	}

	if utf8.RuneCountInString(m.Subject) > MaxSubjectLength {
		return ErrSubjectTooLong
	}

	switch {
	case m.Body == "":
		return ErrMessageRequired
	case utf8.RuneCountInString(m.Body) > MaxMessageLength:
		return ErrMessageTooLong
	}
	return nil
}

// DisplaySubject falls back to a generic subject line
func (m *Message) DisplaySubject() string {
	if m.Subject == "" {
		return "Contact form submission"
	}
	return m.Subject
}
