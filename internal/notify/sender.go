package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/2beens/fittrack/internal/telemetry/tracing"

	"github.com/resend/resend-go/v2"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
)

const (
	ModeLog      = "log"
	ModeResend   = "resend"
	ModeFunction = "function"
)

var ErrNotConfigured = errors.New("order notifications not configured")

type Sender interface {
	Send(ctx context.Context, notification Notification) error
}

type SenderParams struct {
	Mode         string
	ResendAPIKey string
	FromEmail    string
	FunctionURL  string
	Timeout      time.Duration
}

// NewSender picks the sender for the configured mode; unknown mode falls back to logging.
func NewSender(params SenderParams) (Sender, error) {
	switch params.Mode {
	case ModeResend:
		if params.ResendAPIKey == "" {
			return nil, fmt.Errorf("%w: missing RESEND_API_KEY", ErrNotConfigured)
		}
		return NewResendSender(resend.NewClient(params.ResendAPIKey), params.FromEmail), nil
	case ModeFunction:
		if params.FunctionURL == "" {
			return nil, fmt.Errorf("%w: missing function url", ErrNotConfigured)
		}
		tracedHttpClient := &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   params.Timeout,
		}
		return NewFunctionSender(params.FunctionURL, tracedHttpClient), nil
	case ModeLog, "":
		return NewLogSender(), nil
	default:
		log.Warnf("unknown notification mode [%s], order emails will only be logged", params.Mode)
		return NewLogSender(), nil
	}
}

// LogSender renders the email and logs it instead of sending. Used in development.
type LogSender struct{}

func NewLogSender() *LogSender {
	return &LogSender{}
}

func (s *LogSender) Send(_ context.Context, notification Notification) error {
	email, err := Format(notification)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"to":      email.To,
		"subject": email.Subject,
		"order":   notification.OrderID,
		"status":  notification.Status,
	}).Info("order email sent (dev mode)")
	return nil
}

type emailsSender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

type ResendSender struct {
	emails    emailsSender
	fromEmail string
}

func NewResendSender(client *resend.Client, fromEmail string) *ResendSender {
	return newResendSender(client.Emails, fromEmail)
}

func newResendSender(emails emailsSender, fromEmail string) *ResendSender {
	if fromEmail == "" {
		fromEmail = "FitTrack <onboarding@resend.dev>"
	}
	return &ResendSender{
		emails:    emails,
		fromEmail: fromEmail,
	}
}

func (s *ResendSender) Send(ctx context.Context, notification Notification) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "notify.resend.send")
	span.SetAttributes(
		attribute.String("order.id", notification.OrderID),
		attribute.String("order.status", notification.Status),
	)
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	email, err := Format(notification)
	if err != nil {
		return err
	}

	resp, err := s.emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    s.fromEmail,
		To:      []string{email.To},
		Subject: email.Subject,
		Html:    email.HTML,
	})
	if err != nil {
		return fmt.Errorf("resend send: %w", err)
	}

	log.Debugf("order email %s sent for order %s", resp.Id, notification.OrderID)
	return nil
}

// FunctionSender posts the notification JSON to a remote function which does the sending.
type FunctionSender struct {
	url        string
	httpClient *http.Client
}

func NewFunctionSender(url string, httpClient *http.Client) *FunctionSender {
	return &FunctionSender{
		url:        url,
		httpClient: httpClient,
	}
}

func (s *FunctionSender) Send(ctx context.Context, notification Notification) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "notify.function.send")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	payload, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post notification: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("notification function returned %d: %s", resp.StatusCode, body)
	}
	return nil
}
