package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.Port != 8430 {
		t.Errorf("expected default port 8430, got %d", cfg.Server.Port)
	}
	if cfg.Server.LogLevel != "info" {
		t.Errorf("expected default log level info, got %s", cfg.Server.LogLevel)
	}
	if cfg.Retry.MaxAttempts != 3 {
		t.Errorf("expected 3 retry attempts, got %d", cfg.Retry.MaxAttempts)
	}
	if cfg.Channels.SMS == nil || !cfg.Channels.SMS.Enabled {
		t.Error("expected SMS channel enabled by default")
	}
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "herald.json")

	content := `{
		"server": {"port": 9000, "dataDir": "` + filepath.Join(dir, "data") + `", "logLevel": "debug"},
		"channels": {"sms": {"enabled": true, "gatewayUrl": "http://gw.local/send"}},
		"windows": [{"name": "day", "from": "08:00", "to": "22:00", "kind": "push"}]
	}`
	if err := os.WriteFile(path, []byte(content), 0640); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Server.Port)
	}
	if cfg.Channels.SMS.GatewayURL != "http://gw.local/send" {
		t.Errorf("unexpected gateway url: %s", cfg.Channels.SMS.GatewayURL)
	}
	if len(cfg.Windows) != 1 || cfg.Windows[0].Kind != "push" {
		t.Errorf("unexpected windows: %+v", cfg.Windows)
	}

	// Data dir is created on load
	if _, err := os.Stat(filepath.Join(dir, "data")); err != nil {
		t.Errorf("data dir not created: %v", err)
	}
}

func TestLoadTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "herald.toml")

	content := `
[server]
port = 9100
dataDir = "` + filepath.Join(dir, "data") + `"
logLevel = "warn"

[channels.push]
enabled = true
brokerUrl = "tcp://localhost:1883"
topic = "alerts"
qos = 1

[retry]
maxAttempts = 5
baseBackoffMs = 50
`
	if err := os.WriteFile(path, []byte(content), 0640); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Port != 9100 {
		t.Errorf("expected port 9100, got %d", cfg.Server.Port)
	}
	if cfg.Channels.Push.BrokerURL != "tcp://localhost:1883" {
		t.Errorf("unexpected broker url: %s", cfg.Channels.Push.BrokerURL)
	}
	if cfg.Channels.Push.Topic != "alerts" {
		t.Errorf("unexpected topic: %s", cfg.Channels.Push.Topic)
	}
	if cfg.Retry.MaxAttempts != 5 {
		t.Errorf("expected 5 attempts, got %d", cfg.Retry.MaxAttempts)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "herald.json")

	cfg := DefaultConfig()
	cfg.Server.Port = 9999
	cfg.Server.DataDir = filepath.Join(dir, "data")

	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Server.Port != 9999 {
		t.Errorf("expected port 9999, got %d", loaded.Server.Port)
	}
}
