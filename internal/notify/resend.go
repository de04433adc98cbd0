// Package notify delivers transactional email.
package notify

import (
	"context"
	"fmt"
	"net/url"

	"github.com/resend/resend-go/v2"

	"github.com/seanlongden/asa-student-portal/internal/logger"
)

const DefaultFrom = "ASA Portal <noreply@yourdomain.com>"

type Resend struct {
	client *resend.Client
	from   string
}

func NewResend(apiKey, from string) *Resend {
	if from == "" {
		from = DefaultFrom
	}
	return &Resend{client: resend.NewClient(apiKey), from: from}
}

// WithBaseURL points the client at another API host, for tests.
func (r *Resend) WithBaseURL(raw string) (*Resend, error) {
	base, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if base.Path == "" {
		base.Path = "/"
	}
	r.client.BaseURL = base
	return r, nil
}

func (r *Resend) Send(ctx context.Context, to, subject, html string) error {
	_, err := r.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    r.from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
	})
	if err != nil {
		return fmt.Errorf("resend: %w", err)
	}
	return nil
}

// LogNotifier writes emails to the log instead of sending them. Used when no
// Resend key is configured.
type LogNotifier struct {
	Log *logger.Logger
}

func (n LogNotifier) Send(ctx context.Context, to, subject, html string) error {
	n.Log.Info("email not sent, no provider configured", "to", to, "subject", subject, "html", html)
	return nil
}
