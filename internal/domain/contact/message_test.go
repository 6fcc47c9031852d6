package contact

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMessage(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		m, err := NewMessage(" Ana ", "Ana@Example.com", "", "Love the site")

		require.NoError(t, err)
		assert.Equal(t, "Ana", m.Name)
		assert.Equal(t, "ana@example.com", m.Email)
		assert.Equal(t, "Contact form submission", m.DisplaySubject())
	})

	cases := map[string]struct {
		name, email, subject, body string
		want                       error
	}{
		"missing name":    {"", "a@b.co", "", "hi", ErrNameRequired},
		"bad email":       {"Ana", "nope", "", "hi", ErrInvalidEmail},
		"long subject":    {"Ana", "a@b.co", strings.Repeat("s", MaxSubjectLength+1), "hi", ErrSubjectTooLong},
		"missing message": {"Ana", "a@b.co", "Hi", "   ", ErrMessageRequired},
		"long message":    {"Ana", "a@b.co", "Hi", strings.Repeat("m", MaxMessageLength+1), ErrMessageTooLong},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewMessage(tc.name, tc.email, tc.subject, tc.body)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}
