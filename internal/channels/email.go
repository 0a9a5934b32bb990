package channels

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/smtp"
	"os"
	"strings"

	"github.com/clawinfra/herald/internal/config"
	"github.com/clawinfra/herald/internal/types"
)

// smtpSendFunc matches smtp.SendMail so tests can intercept submission.
type smtpSendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// EmailChannel delivers notifications over SMTP. Without a host it runs in
// console-only mode.
type EmailChannel struct {
	cfg    *config.EmailConfig
	logger *slog.Logger
	send   smtpSendFunc
	out    io.Writer
}

// NewEmail creates a new email channel adapter
func NewEmail(cfg *config.EmailConfig, logger *slog.Logger) *EmailChannel {
	return NewEmailWithSender(cfg, logger, smtp.SendMail)
}

// NewEmailWithSender creates an email channel with a custom SMTP submit
// function (for testing)
func NewEmailWithSender(cfg *config.EmailConfig, logger *slog.Logger, send smtpSendFunc) *EmailChannel {
	if cfg == nil {
		cfg = &config.EmailConfig{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &EmailChannel{
		cfg:    cfg,
		logger: logger.With("channel", "email"),
		send:   send,
		out:    os.Stdout,
	}
}

// SetOutput redirects the observable delivery line (tests).
func (c *EmailChannel) SetOutput(w io.Writer) { c.out = w }

func (c *EmailChannel) Name() string { return "email" }

func (c *EmailChannel) Kind() types.Kind { return types.KindEmail }

func (c *EmailChannel) Send(ctx context.Context, n types.Notification) error {
	emit(c.out, types.KindEmail, n.Body)

	if c.cfg.Host == "" {
		c.logger.Debug("no smtp host configured, console only", "to", n.To)
		return nil
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if c.cfg.Username != "" {
		auth = smtp.PlainAuth("", c.cfg.Username, c.cfg.Password, c.cfg.Host)
	}

	addr := fmt.Sprintf("%s:%d", c.cfg.Host, c.cfg.Port)
	msg := buildMessage(c.cfg.From, n.To, n.Body)

	if err := c.send(addr, auth, c.cfg.From, []string{n.To}, msg); err != nil {
		return fmt.Errorf("smtp submit: %w", err)
	}

	c.logger.Debug("email submitted", "to", n.To)
	return nil
}

func (c *EmailChannel) Close() error { return nil }

// buildMessage assembles a minimal RFC 5322 message. The first line of the
// body doubles as the subject.
func buildMessage(from, to, body string) []byte {
	subject := body
	if i := strings.IndexByte(subject, '\n'); i >= 0 {
		subject = subject[:i]
	}
	if len(subject) > 78 {
		subject = subject[:78]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	b.WriteString("\r\n")
	return []byte(b.String())
}
