package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"
)

type EmailMessage struct {
	From    string
	To      string
	Subject string
	HTML    string
}

// EmailSender delivers a rendered message and returns the provider message id.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) (string, error)
}

type ResendConfig struct {
	APIKey  string
	BaseURL string
}

// ResendService sends email through resend-go.
type ResendService struct {
	config     *ResendConfig
	httpClient *http.Client
}

func NewResendService(config *ResendConfig) *ResendService {
	return &ResendService{
		config:     config,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *ResendService) ValidateConfig() error {
	if s.config.APIKey == "" {
		return fmt.Errorf("RESEND_API_KEY is not set")
	}
	return nil
}

// client is built per send so a rotated key is picked up at invocation.
func (s *ResendService) client() (*resend.Client, error) {
	c := resend.NewCustomClient(s.httpClient, s.config.APIKey)
	if s.config.BaseURL != "" {
		base, err := url.Parse(strings.TrimRight(s.config.BaseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("invalid RESEND_BASE_URL: %w", err)
		}
		c.BaseURL = base
	}
	return c, nil
}

func (s *ResendService) Send(ctx context.Context, msg EmailMessage) (string, error) {
	if err := s.ValidateConfig(); err != nil {
		return "", err
	}
	c, err := s.client()
	if err != nil {
		return "", err
	}

	sent, err := c.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    msg.From,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
	})
	if err != nil {
		return "", fmt.Errorf("Resend API error: %w", err)
	}
	return sent.Id, nil
}
