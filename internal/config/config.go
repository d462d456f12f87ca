// Package config provides configuration management for the inventory service.
//
// Configuration is read from a YAML file when one exists, falling back to
// environment variables otherwise so the service can run in a container with
// nothing mounted. File locations (priority order):
//  1. $NETINV_CONFIG
//  2. ./netinv.yaml
//  3. /etc/netinv/config.yaml
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// ScanConfig holds scan orchestration settings
type ScanConfig struct {
	CooldownSeconds int `yaml:"cooldown_seconds"`
	// SourceTimeout bounds each adapter fetch, e.g. "120s"
	SourceTimeout string `yaml:"source_timeout"`
	// AutoInterval enables scheduled scans when set, e.g. "15m"
	AutoInterval string `yaml:"auto_interval"`
}

// HistoryConfig holds durable history settings
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	DBPath  string `yaml:"db_path"`
}

// NetworkScanConfig configures the subnet ping sweep
type NetworkScanConfig struct {
	Enabled bool   `yaml:"enabled"`
	Subnet  string `yaml:"subnet"`
}

// UniFiConfig configures the wireless controller source
type UniFiConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	Site      string `yaml:"site"`
	VerifySSL bool   `yaml:"verify_ssl"`
}

// PortainerConfig configures one container-orchestration instance
type PortainerConfig struct {
	Name     string `yaml:"name"`
	Enabled  bool   `yaml:"enabled"`
	URL      string `yaml:"url"`
	APIToken string `yaml:"api_token"`
}

// ProxmoxConfig configures one hypervisor instance
type ProxmoxConfig struct {
	Name          string `yaml:"name"`
	Enabled       bool   `yaml:"enabled"`
	Host          string `yaml:"host"`
	APITokenName  string `yaml:"api_token_name"`
	APITokenValue string `yaml:"api_token_value"`
	VerifySSL     bool   `yaml:"verify_ssl"`
}

// Config is the complete service configuration, resolved once at startup
// and injected into each component constructor.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Scan        ScanConfig        `yaml:"scan"`
	History     HistoryConfig     `yaml:"history"`
	NetworkScan NetworkScanConfig `yaml:"network_scan"`
	UniFi       UniFiConfig       `yaml:"unifi"`
	Portainer   []PortainerConfig `yaml:"portainer"`
	Proxmox     []ProxmoxConfig   `yaml:"proxmox"`
}

// Load finds and loads the config file, or builds config from environment
// variables if no file exists.
func Load() (*Config, string, error) {
	path := FindConfigPath()
	if path == "" {
		cfg := FromEnv()
		return cfg, "", nil
	}
	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, path, nil
}

// FindConfigPath returns the first existing config file location
func FindConfigPath() string {
	candidates := []string{
		os.Getenv("NETINV_CONFIG"),
		"./netinv.yaml",
		"/etc/netinv/config.yaml",
	}
	for _, p := range candidates {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// FromEnv builds configuration from environment variables, for container
// deployments that ship no config file.
func FromEnv() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Addr: ":" + envOr("PORT", "5000"),
		},
		Scan: ScanConfig{
			CooldownSeconds: envInt("SCAN_COOLDOWN", 300),
		},
		History: HistoryConfig{
			Enabled: envBool("HISTORY_ENABLED", true),
			DBPath:  envOr("HISTORY_DB_PATH", "data/inventory.db"),
		},
		NetworkScan: NetworkScanConfig{
			Enabled: envBool("NETWORK_SCAN_ENABLED", true),
			Subnet:  envOr("NETWORK_SUBNET", "192.168.1.0/24"),
		},
		UniFi: UniFiConfig{
			Enabled:  envBool("UNIFI_ENABLED", true),
			Host:     os.Getenv("UNIFI_HOST"),
			Port:     envInt("UNIFI_PORT", 443),
			Username: os.Getenv("UNIFI_USERNAME"),
			Password: os.Getenv("UNIFI_PASSWORD"),
			Site:     envOr("UNIFI_SITE", "default"),
		},
	}

	if os.Getenv("PORTAINER_URL") != "" {
		cfg.Portainer = []PortainerConfig{{
			Name:     envOr("PORTAINER_NAME", "Main Portainer"),
			Enabled:  envBool("PORTAINER_ENABLED", true),
			URL:      os.Getenv("PORTAINER_URL"),
			APIToken: os.Getenv("PORTAINER_API_TOKEN"),
		}}
	}

	if os.Getenv("PROXMOX_HOST") != "" {
		cfg.Proxmox = []ProxmoxConfig{{
			Name:          envOr("PROXMOX_NAME", "Main Proxmox"),
			Enabled:       envBool("PROXMOX_ENABLED", false),
			Host:          os.Getenv("PROXMOX_HOST"),
			APITokenName:  os.Getenv("PROXMOX_API_TOKEN_NAME"),
			APITokenValue: os.Getenv("PROXMOX_API_TOKEN_VALUE"),
			VerifySSL:     envBool("PROXMOX_VERIFY_SSL", false),
		}}
	}

	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":5000"
	}
	if c.Scan.CooldownSeconds == 0 {
		c.Scan.CooldownSeconds = 300
	}
	if c.Scan.SourceTimeout == "" {
		c.Scan.SourceTimeout = "120s"
	}
	if c.History.DBPath == "" {
		c.History.DBPath = "data/inventory.db"
	}
	if c.NetworkScan.Subnet == "" {
		c.NetworkScan.Subnet = "192.168.1.0/24"
	}
	if c.UniFi.Port == 0 {
		c.UniFi.Port = 443
	}
	if c.UniFi.Site == "" {
		c.UniFi.Site = "default"
	}
}

// SourceTimeoutDuration parses the per-source timeout, falling back to
// two minutes on a malformed value.
func (c *Config) SourceTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.Scan.SourceTimeout)
	if err != nil || d <= 0 {
		return 2 * time.Minute
	}
	return d
}

// AutoScanInterval returns the scheduled-scan interval, or zero when
// automatic scans are disabled.
func (c *Config) AutoScanInterval() time.Duration {
	if c.Scan.AutoInterval == "" {
		return 0
	}
	d, err := time.ParseDuration(c.Scan.AutoInterval)
	if err != nil || d <= 0 {
		return 0
	}
	return d
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return strings.EqualFold(v, "true")
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
