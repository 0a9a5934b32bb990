package channels

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/clawinfra/herald/internal/config"
	"github.com/clawinfra/herald/internal/types"
)

// WebhookChannel POSTs the JSON-encoded notification to a configured URL.
// Without a URL it runs in console-only mode.
type WebhookChannel struct {
	cfg    *config.WebhookConfig
	logger *slog.Logger
	client HTTPClient
	out    io.Writer
}

// NewWebhook creates a new webhook channel adapter
func NewWebhook(cfg *config.WebhookConfig, logger *slog.Logger) *WebhookChannel {
	return NewWebhookWithClient(cfg, logger, &DefaultHTTPClient{
		client: &http.Client{Timeout: 10 * time.Second},
	})
}

// NewWebhookWithClient creates a webhook channel with a custom HTTP client (for testing)
func NewWebhookWithClient(cfg *config.WebhookConfig, logger *slog.Logger, client HTTPClient) *WebhookChannel {
	if cfg == nil {
		cfg = &config.WebhookConfig{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &WebhookChannel{
		cfg:    cfg,
		logger: logger.With("channel", "webhook"),
		client: client,
		out:    os.Stdout,
	}
}

// SetOutput redirects the observable delivery line (tests).
func (c *WebhookChannel) SetOutput(w io.Writer) { c.out = w }

func (c *WebhookChannel) Name() string { return "webhook" }

func (c *WebhookChannel) Kind() types.Kind { return types.KindWebhook }

func (c *WebhookChannel) Send(ctx context.Context, n types.Notification) error {
	emit(c.out, types.KindWebhook, n.Body)

	if c.cfg.URL == "" {
		c.logger.Debug("no webhook url configured, console only")
		return nil
	}

	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range c.cfg.Headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("webhook error: %s (status %d)", respBody, resp.StatusCode)
	}

	c.logger.Debug("webhook delivered", "url", c.cfg.URL, "status", resp.StatusCode)
	return nil
}

func (c *WebhookChannel) Close() error { return nil }
