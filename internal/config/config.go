package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config holds all herald configuration
type Config struct {
	// Server settings
	Server ServerConfig `json:"server" toml:"server"`

	// Channel transport configurations
	Channels ChannelConfig `json:"channels" toml:"channels"`

	// Retry policy applied by the retry decorator
	Retry RetryConfig `json:"retry" toml:"retry"`

	// Signing key for the digest decorator (hex); empty disables signing
	SigningKey string `json:"signingKey,omitempty" toml:"signingKey"`

	// Quiet-hours routing windows; empty disables window routing
	Windows []WindowConfig `json:"windows,omitempty" toml:"windows"`

	// Subscriber roster file (YAML)
	RosterPath string `json:"rosterPath,omitempty" toml:"rosterPath"`

	// Scheduler configuration
	Scheduler SchedulerConfig `json:"scheduler,omitempty" toml:"scheduler"`
}

type ServerConfig struct {
	Port     int    `json:"port" toml:"port"`
	DataDir  string `json:"dataDir" toml:"dataDir"`
	LogLevel string `json:"logLevel" toml:"logLevel"`
}

type ChannelConfig struct {
	SMS     *SMSConfig     `json:"sms,omitempty" toml:"sms"`
	Email   *EmailConfig   `json:"email,omitempty" toml:"email"`
	Push    *PushConfig    `json:"push,omitempty" toml:"push"`
	Webhook *WebhookConfig `json:"webhook,omitempty" toml:"webhook"`
}

// SMSConfig holds SMS gateway settings. An empty GatewayURL leaves the
// channel in console-only mode.
type SMSConfig struct {
	Enabled    bool   `json:"enabled" toml:"enabled"`
	GatewayURL string `json:"gatewayUrl,omitempty" toml:"gatewayUrl"`
	From       string `json:"from,omitempty" toml:"from"`
	APIKey     string `json:"apiKey,omitempty" toml:"apiKey"`
}

// EmailConfig holds SMTP submission settings. An empty Host leaves the
// channel in console-only mode.
type EmailConfig struct {
	Enabled  bool   `json:"enabled" toml:"enabled"`
	Host     string `json:"host,omitempty" toml:"host"`
	Port     int    `json:"port,omitempty" toml:"port"`
	From     string `json:"from,omitempty" toml:"from"`
	Username string `json:"username,omitempty" toml:"username"`
	Password string `json:"password,omitempty" toml:"password"`
}

// PushConfig holds MQTT publish settings. An empty BrokerURL leaves the
// channel in console-only mode.
type PushConfig struct {
	Enabled   bool   `json:"enabled" toml:"enabled"`
	BrokerURL string `json:"brokerUrl,omitempty" toml:"brokerUrl"`
	Topic     string `json:"topic,omitempty" toml:"topic"`
	ClientID  string `json:"clientId,omitempty" toml:"clientId"`
	QoS       int    `json:"qos" toml:"qos"`
}

type WebhookConfig struct {
	Enabled bool              `json:"enabled" toml:"enabled"`
	URL     string            `json:"url,omitempty" toml:"url"`
	Headers map[string]string `json:"headers,omitempty" toml:"headers"`
}

// RetryConfig tunes the retry decorator
type RetryConfig struct {
	MaxAttempts   int   `json:"maxAttempts" toml:"maxAttempts"`
	BaseBackoffMs int64 `json:"baseBackoffMs" toml:"baseBackoffMs"`
	JitterMs      int64 `json:"jitterMs" toml:"jitterMs"`
}

// WindowConfig defines one quiet-hours routing window ("HH:MM" bounds,
// To exclusive; windows may wrap midnight)
type WindowConfig struct {
	Name string `json:"name" toml:"name"`
	From string `json:"from" toml:"from"`
	To   string `json:"to" toml:"to"`
	Kind string `json:"kind" toml:"kind"`
}

// SchedulerConfig holds scheduler configuration
type SchedulerConfig struct {
	Enabled bool                 `json:"enabled" toml:"enabled"`
	Jobs    []SchedulerJobConfig `json:"jobs,omitempty" toml:"jobs"`
}

// SchedulerJobConfig defines a recurring notification job
type SchedulerJobConfig struct {
	ID       string         `json:"id" toml:"id"`
	Name     string         `json:"name" toml:"name"`
	Schedule ScheduleConfig `json:"schedule" toml:"schedule"`
	Action   ActionConfig   `json:"action" toml:"action"`
	Enabled  bool           `json:"enabled" toml:"enabled"`
}

// ScheduleConfig defines when a job runs
type ScheduleConfig struct {
	Kind       string `json:"kind" toml:"kind"` // "interval", "cron", "at"
	IntervalMs int64  `json:"intervalMs,omitempty" toml:"intervalMs"`
	Expr       string `json:"expr,omitempty" toml:"expr"` // cron expression
	Time       string `json:"time,omitempty" toml:"time"` // "HH:MM" for daily
	Timezone   string `json:"timezone,omitempty" toml:"timezone"`
}

// ActionConfig defines the notification a job sends
type ActionConfig struct {
	Kind    string `json:"kind" toml:"kind"` // channel kind: "sms", "email", ...
	To      string `json:"to,omitempty" toml:"to"`
	Message string `json:"message" toml:"message"`
}

// DefaultConfig returns a sensible default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:     8430,
			DataDir:  "./data",
			LogLevel: "info",
		},
		Channels: ChannelConfig{
			SMS:     &SMSConfig{Enabled: true},
			Email:   &EmailConfig{Enabled: true, Port: 587},
			Push:    &PushConfig{Enabled: true, Topic: "herald/push", ClientID: "herald"},
			Webhook: &WebhookConfig{Enabled: false},
		},
		Retry: RetryConfig{
			MaxAttempts:   3,
			BaseBackoffMs: 100,
		},
	}
}

// Load reads config from a JSON or TOML file (chosen by extension).
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Ensure data directory exists
	if err := os.MkdirAll(cfg.Server.DataDir, 0750); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	return cfg, nil
}

// Save writes config to a JSON file
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0640)
}
