package notify

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
)

type Message struct {
	From    string
	To      []string
	Subject string
	HTML    string
}

// Sender delivers one email and returns the provider's message id.
//
//go:generate mockgen -destination=mocks/mock_sender.go -source=sender.go Sender
type Sender interface {
	Send(ctx context.Context, m Message) (string, error)
}

// ResendSender sends through the Resend API.
type ResendSender struct {
	client *resend.Client
}

// NewResendSender returns nil when apiKey is empty, meaning email is not configured.
func NewResendSender(apiKey string) *ResendSender {
	if apiKey == "" {
		return nil
	}
	return &ResendSender{client: resend.NewClient(apiKey)}
}

func (s *ResendSender) Send(ctx context.Context, m Message) (string, error) {
	res, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    m.From,
		To:      m.To,
		Subject: m.Subject,
		Html:    m.HTML,
	})
	if err != nil {
		return "", fmt.Errorf("resend: %w", err)
	}
	return res.Id, nil
}
