package mailer

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockSESService struct {
	SendEmailFunc func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

func (m *MockSESService) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	return m.SendEmailFunc(ctx, params, optFns...)
}

func TestSend_BuildsSESInput(t *testing.T) {
	var got *ses.SendEmailInput
	mock := &MockSESService{
		SendEmailFunc: func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			got = params
			return &ses.SendEmailOutput{}, nil
		},
	}

	m := NewSESWithClient(mock, "concierge@example.com")
	err := m.Send(context.Background(), "diner@example.com", "Your Italian Restaurant Recommendations!", "Hello!")
	require.NoError(t, err)

	require.NotNil(t, got)
	assert.Equal(t, []string{"diner@example.com"}, got.Destination.ToAddresses)
	assert.Equal(t, "concierge@example.com", *got.Source)
	assert.Equal(t, "Your Italian Restaurant Recommendations!", *got.Message.Subject.Data)
	assert.Equal(t, "Hello!", *got.Message.Body.Text.Data)
}

func TestSend_PropagatesFailure(t *testing.T) {
	mock := &MockSESService{
		SendEmailFunc: func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			return nil, errors.New("throttled")
		},
	}

	m := NewSESWithClient(mock, "concierge@example.com")
	err := m.Send(context.Background(), "diner@example.com", "subject", "body")
	assert.Error(t, err)
}
