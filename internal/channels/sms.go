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

// SMSChannel delivers notifications through an SMS gateway. Without a
// gateway URL it runs in console-only mode.
type SMSChannel struct {
	cfg    *config.SMSConfig
	logger *slog.Logger
	client HTTPClient
	out    io.Writer
}

// NewSMS creates a new SMS channel adapter
func NewSMS(cfg *config.SMSConfig, logger *slog.Logger) *SMSChannel {
	return NewSMSWithClient(cfg, logger, &DefaultHTTPClient{
		client: &http.Client{Timeout: 10 * time.Second},
	})
}

// NewSMSWithClient creates an SMS channel with a custom HTTP client (for testing)
func NewSMSWithClient(cfg *config.SMSConfig, logger *slog.Logger, client HTTPClient) *SMSChannel {
	if cfg == nil {
		cfg = &config.SMSConfig{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SMSChannel{
		cfg:    cfg,
		logger: logger.With("channel", "sms"),
		client: client,
		out:    os.Stdout,
	}
}

// SetOutput redirects the observable delivery line (tests).
func (c *SMSChannel) SetOutput(w io.Writer) { c.out = w }

func (c *SMSChannel) Name() string { return "sms" }

func (c *SMSChannel) Kind() types.Kind { return types.KindSMS }

func (c *SMSChannel) Send(ctx context.Context, n types.Notification) error {
	emit(c.out, types.KindSMS, n.Body)

	if c.cfg.GatewayURL == "" {
		c.logger.Debug("no gateway configured, console only", "to", n.To)
		return nil
	}

	payload := map[string]string{
		"from": c.cfg.From,
		"to":   n.To,
		"body": n.Body,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal sms payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.GatewayURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("sms gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("sms gateway error: %s (status %d)", respBody, resp.StatusCode)
	}

	c.logger.Debug("sms submitted", "to", n.To, "length", len(n.Body))
	return nil
}

func (c *SMSChannel) Close() error { return nil }
