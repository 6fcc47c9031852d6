package notification

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/ses"
	"github.com/aws/aws-sdk-go/service/ses/sesiface"
	"github.com/recipemanager/server/internal/domain/contact"
	"github.com/recipemanager/server/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

func testMessage(t *testing.T) *contact.Message {
	t.Helper()
	msg, err := contact.NewMessage("Ada Lovelace", "ada@example.com", "Hello", "I love the soup recipe.")
	require.NoError(t, err)
	return msg
}

func testEmailConfig() config.EmailConfig {
	return config.EmailConfig{
		Provider:         "smtp",
		SMTPHost:         "smtp.example.com",
		SMTPPort:         587,
		FromAddress:      "noreply@example.com",
		FromName:         "Recipe Manager",
		ContactRecipient: "team@example.com",
	}
}

func TestSMTPNotifier(t *testing.T) {
	n := NewSMTPNotifier(testEmailConfig(), zap.NewNop())

	var sent []*gomail.Message
	n.send = func(m ...*gomail.Message) error {
		sent = append(sent, m...)
		return nil
	}

	require.NoError(t, n.NotifyContact(context.Background(), testMessage(t)))
	require.Len(t, sent, 1)
	assert.Equal(t, []string{"team@example.com"}, sent[0].GetHeader("To"))
	assert.Equal(t, []string{"[Contact] Hello"}, sent[0].GetHeader("Subject"))
	require.Len(t, sent[0].GetHeader("Reply-To"), 1)
	assert.Contains(t, sent[0].GetHeader("Reply-To")[0], "ada@example.com")
}

func TestSMTPNotifierError(t *testing.T) {
	n := NewSMTPNotifier(testEmailConfig(), zap.NewNop())
	n.send = func(m ...*gomail.Message) error { return errors.New("connection refused") }

	err := n.NotifyContact(context.Background(), testMessage(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

type fakeSES struct {
	sesiface.SESAPI
	input *ses.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmailWithContext(ctx aws.Context, in *ses.SendEmailInput, opts ...request.Option) (*ses.SendEmailOutput, error) {
	f.input = in
	if f.err != nil {
		return nil, f.err
	}
	return &ses.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestSESNotifier(t *testing.T) {
	fake := &fakeSES{}
	n := newSESNotifier(fake, testEmailConfig(), zap.NewNop())

	require.NoError(t, n.NotifyContact(context.Background(), testMessage(t)))
	require.NotNil(t, fake.input)
	assert.Equal(t, "team@example.com", aws.StringValue(fake.input.Destination.ToAddresses[0]))
	assert.Equal(t, "[Contact] Hello", aws.StringValue(fake.input.Message.Subject.Data))
	assert.Contains(t, aws.StringValue(fake.input.Message.Body.Text.Data), "I love the soup recipe.")
}

func TestNewFallsBackToLog(t *testing.T) {
	cfg := &config.Config{Email: testEmailConfig()}
	cfg.Email.ContactRecipient = ""

	n, err := New(cfg, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &LogNotifier{}, n)

	cfg.Email.ContactRecipient = "team@example.com"
	n, err = New(cfg, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &SMTPNotifier{}, n)

	cfg.Email.Provider = "pigeon"
	_, err = New(cfg, zap.NewNop())
	assert.Error(t, err)
}
