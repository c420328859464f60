// Package mailer delivers recommendation emails through AWS SES.
package mailer

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	conciergeaws "dining-concierge/internal/common/aws"
)

// SESService is the slice of the SES API the mailer uses; tests substitute
// a mock.
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SESMailer struct {
	client SESService
	from   string
}

func NewSES(ctx context.Context, region, from string) (*SESMailer, error) {
	client, err := conciergeaws.NewSESClient(ctx, region)
	if err != nil {
		return nil, fmt.Errorf("init SES client: %w", err)
	}
	return &SESMailer{client: client, from: from}, nil
}

// NewSESWithClient builds a mailer over an existing SES client.
func NewSESWithClient(client SESService, from string) *SESMailer {
	return &SESMailer{client: client, from: from}
}

func (m *SESMailer) Send(ctx context.Context, to, subject, body string) error {
	_, err := m.client.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(m.from),
	})
	if err != nil {
		return fmt.Errorf("send email to %s: %w", to, err)
	}
	return nil
}
