package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "netinv.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadFromPath(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":8080"
scan:
  cooldown_seconds: 60
  source_timeout: 30s
  auto_interval: 15m
history:
  enabled: true
  db_path: /tmp/test.db
network_scan:
  enabled: true
  subnet: 10.0.0.0/24
unifi:
  enabled: true
  host: unifi.local
  username: admin
  password: secret
portainer:
  - name: main
    enabled: true
    url: https://portainer.local
    api_token: tok
proxmox:
  - name: pve
    enabled: true
    host: pve.local
    api_token_name: api@pam!inv
    api_token_value: abc
`)

	cfg, loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if loaded != path {
		t.Errorf("expected loaded path %s, got %s", path, loaded)
	}

	if cfg.Server.Addr != ":8080" {
		t.Errorf("unexpected addr: %s", cfg.Server.Addr)
	}
	if cfg.Scan.CooldownSeconds != 60 {
		t.Errorf("unexpected cooldown: %d", cfg.Scan.CooldownSeconds)
	}
	if got := cfg.SourceTimeoutDuration(); got != 30*time.Second {
		t.Errorf("unexpected source timeout: %v", got)
	}
	if got := cfg.AutoScanInterval(); got != 15*time.Minute {
		t.Errorf("unexpected auto interval: %v", got)
	}
	if len(cfg.Portainer) != 1 || cfg.Portainer[0].Name != "main" {
		t.Errorf("unexpected portainer config: %+v", cfg.Portainer)
	}
	if len(cfg.Proxmox) != 1 || cfg.Proxmox[0].APITokenName != "api@pam!inv" {
		t.Errorf("unexpected proxmox config: %+v", cfg.Proxmox)
	}
}

func TestDefaultsApplied(t *testing.T) {
	path := writeConfig(t, `
unifi:
  enabled: false
network_scan:
  enabled: true
`)

	cfg, _, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}

	if cfg.Server.Addr != ":5000" {
		t.Errorf("expected default addr, got %s", cfg.Server.Addr)
	}
	if cfg.Scan.CooldownSeconds != 300 {
		t.Errorf("expected default cooldown 300, got %d", cfg.Scan.CooldownSeconds)
	}
	if cfg.SourceTimeoutDuration() != 2*time.Minute {
		t.Errorf("expected default source timeout, got %v", cfg.SourceTimeoutDuration())
	}
	if cfg.AutoScanInterval() != 0 {
		t.Errorf("expected auto scans disabled by default")
	}
	if cfg.NetworkScan.Subnet != "192.168.1.0/24" {
		t.Errorf("expected default subnet, got %s", cfg.NetworkScan.Subnet)
	}
	if cfg.UniFi.Site != "default" {
		t.Errorf("expected default site, got %s", cfg.UniFi.Site)
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("SCAN_COOLDOWN", "120")
	t.Setenv("NETWORK_SCAN_ENABLED", "false")
	t.Setenv("UNIFI_ENABLED", "true")
	t.Setenv("UNIFI_HOST", "10.0.0.1")
	t.Setenv("UNIFI_USERNAME", "admin")
	t.Setenv("UNIFI_PASSWORD", "pw")
	t.Setenv("PORTAINER_URL", "https://portainer.local")
	t.Setenv("PORTAINER_API_TOKEN", "tok")

	cfg := FromEnv()

	if cfg.Server.Addr != ":9000" {
		t.Errorf("unexpected addr: %s", cfg.Server.Addr)
	}
	if cfg.Scan.CooldownSeconds != 120 {
		t.Errorf("unexpected cooldown: %d", cfg.Scan.CooldownSeconds)
	}
	if cfg.NetworkScan.Enabled {
		t.Error("expected network scan disabled")
	}
	if len(cfg.Portainer) != 1 || cfg.Portainer[0].URL != "https://portainer.local" {
		t.Errorf("unexpected portainer config: %+v", cfg.Portainer)
	}
	if len(cfg.Proxmox) != 0 {
		t.Errorf("expected no proxmox config without PROXMOX_HOST")
	}
}

func TestValidate(t *testing.T) {
	t.Run("valid config has no findings", func(t *testing.T) {
		cfg := &Config{
			NetworkScan: NetworkScanConfig{Enabled: true, Subnet: "10.0.0.0/24"},
		}
		cfg.applyDefaults()
		findings := cfg.Validate()
		if len(findings) != 0 {
			t.Errorf("expected no findings, got %v", findings)
		}
	})

	t.Run("invalid subnet is fatal", func(t *testing.T) {
		cfg := &Config{
			NetworkScan: NetworkScanConfig{Enabled: true, Subnet: "not-a-cidr"},
		}
		cfg.applyDefaults()
		findings := cfg.Validate()
		if !HasFatalErrors(findings) {
			t.Errorf("expected fatal error, got %v", findings)
		}
	})

	t.Run("enabled unifi without credentials is fatal", func(t *testing.T) {
		cfg := &Config{
			UniFi: UniFiConfig{Enabled: true, Host: "unifi.local"},
		}
		cfg.applyDefaults()
		findings := cfg.Validate()
		if !HasFatalErrors(findings) {
			t.Errorf("expected fatal error, got %v", findings)
		}
	})

	t.Run("all sources disabled is a warning only", func(t *testing.T) {
		cfg := &Config{}
		cfg.applyDefaults()
		cfg.UniFi.Enabled = false
		cfg.NetworkScan.Enabled = false
		findings := cfg.Validate()
		if len(findings) == 0 {
			t.Fatal("expected a warning")
		}
		if HasFatalErrors(findings) {
			t.Errorf("expected no fatal errors, got %v", findings)
		}
	})

	t.Run("portainer url scheme is checked", func(t *testing.T) {
		cfg := &Config{
			Portainer: []PortainerConfig{{Name: "p1", Enabled: true, URL: "portainer.local", APIToken: "tok"}},
		}
		cfg.applyDefaults()
		cfg.UniFi.Enabled = false
		cfg.NetworkScan.Enabled = false
		findings := cfg.Validate()
		if !HasFatalErrors(findings) {
			t.Errorf("expected fatal error for bad URL, got %v", findings)
		}
	})
}
