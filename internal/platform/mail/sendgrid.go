package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/finwise/finwise-backend/internal/pkg/envutil"
	"github.com/finwise/finwise-backend/internal/pkg/logger"
)

// Client sends transactional mail (verification, password reset). Delivery
// failures are surfaced to the caller; callers decide whether they block.
type Client interface {
	Send(ctx context.Context, req SendEmailRequest) error
}

type EmailAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type SendEmailRequest struct {
	From    EmailAddress
	To      []EmailAddress
	Subject string
	Text    string
}

type Config struct {
	APIKey           string
	BaseURL          string
	DefaultFromEmail string
	DefaultFromName  string
	Timeout          time.Duration
	MaxRetries       int
}

func ConfigFromEnv(log *logger.Logger) Config {
	return Config{
		APIKey:           strings.TrimSpace(os.Getenv("SENDGRID_API_KEY")),
		BaseURL:          strings.TrimSpace(os.Getenv("SENDGRID_BASE_URL")),
		DefaultFromEmail: strings.TrimSpace(os.Getenv("SENDGRID_FROM_EMAIL")),
		DefaultFromName:  strings.TrimSpace(os.Getenv("SENDGRID_FROM_NAME")),
		Timeout:          time.Duration(envutil.GetEnvAsInt("SENDGRID_TIMEOUT_SECONDS", 30, log)) * time.Second,
		MaxRetries:       envutil.GetEnvAsInt("SENDGRID_MAX_RETRIES", 3, log),
	}
}

// NewFromEnv returns a real SendGrid client when an API key is configured
// and a logging no-op client otherwise, so local runs never need mail creds.
func NewFromEnv(log *logger.Logger) Client {
	cfg := ConfigFromEnv(log)
	if cfg.APIKey == "" {
		log.Info("SENDGRID_API_KEY not set, using no-op mail client")
		return &noopClient{log: log.With("client", "NoopMailClient")}
	}
	return New(log, cfg)
}

func New(log *logger.Logger, cfg Config) Client {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = "https://api.sendgrid.com"
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	return &client{
		log:        log.With("client", "SendGridClient"),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type client struct {
	log        *logger.Logger
	cfg        Config
	httpClient *http.Client
}

type mailSendRequest struct {
	Personalizations []personalization `json:"personalizations"`
	From             EmailAddress      `json:"from"`
	Subject          string            `json:"subject,omitempty"`
	Content          []mailContent     `json:"content,omitempty"`
}

type personalization struct {
	To []EmailAddress `json:"to"`
}

type mailContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

func (c *client) Send(ctx context.Context, req SendEmailRequest) error {
	if strings.TrimSpace(req.From.Email) == "" {
		req.From.Email = c.cfg.DefaultFromEmail
		req.From.Name = c.cfg.DefaultFromName
	}
	if strings.TrimSpace(req.From.Email) == "" {
		return fmt.Errorf("mail: From.Email required (or set SENDGRID_FROM_EMAIL)")
	}
	if len(req.To) == 0 {
		return fmt.Errorf("mail: To required")
	}
	if strings.TrimSpace(req.Subject) == "" || strings.TrimSpace(req.Text) == "" {
		return fmt.Errorf("mail: Subject and Text required")
	}

	body := mailSendRequest{
		Personalizations: []personalization{{To: req.To}},
		From:             req.From,
		Subject:          req.Subject,
		Content:          []mailContent{{Type: "text/plain", Value: req.Text}},
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}

	var lastErr error
	for attempt := 0; attempt < c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v3/mail/send", bytes.NewReader(raw))
		if err != nil {
			return err
		}
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
		httpReq.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			lastErr = err
			continue
		}
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}
		lastErr = fmt.Errorf("sendgrid status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return lastErr
		}
	}
	return lastErr
}

type noopClient struct {
	log *logger.Logger
}

func (n *noopClient) Send(ctx context.Context, req SendEmailRequest) error {
	n.log.Info("mail send skipped (no-op client)", "subject", req.Subject, "to", len(req.To))
	return nil
}
