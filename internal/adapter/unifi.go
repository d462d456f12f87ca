package adapter

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/cookiejar"

	"netinv/internal/config"
	"netinv/internal/domain"
)

// UniFi fetches clients, networks, and access points from a UniFi
// controller. Login is session-based: UniFi OS consoles (UDM and friends)
// answer on /api/auth/login and proxy the network app under /proxy/network,
// classic controllers answer on /api/login directly.
type UniFi struct {
	cfg     config.UniFiConfig
	baseURL string
	client  *http.Client
}

// NewUniFi creates the wireless controller adapter
func NewUniFi(cfg config.UniFiConfig) *UniFi {
	jar, _ := cookiejar.New(nil)
	client := &http.Client{Jar: jar}
	if !cfg.VerifySSL {
		// Controllers almost always run with self-signed certificates
		client.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	return &UniFi{
		cfg:     cfg,
		baseURL: fmt.Sprintf("https://%s:%d", cfg.Host, cfg.Port),
		client:  client,
	}
}

// Name returns the adapter identifier
func (u *UniFi) Name() string {
	return "unifi"
}

// Enabled reports whether the controller is configured on
func (u *UniFi) Enabled() bool {
	return u.cfg.Enabled
}

type unifiClientRecord struct {
	Name     string `json:"name"`
	Hostname string `json:"hostname"`
	MAC      string `json:"mac"`
	IP       string `json:"ip"`
	IsWired  bool   `json:"is_wired"`
	RSSI     int    `json:"rssi"`
	APMAC    string `json:"ap_mac"`
	Network  string `json:"network"`
}

type unifiNetworkRecord struct {
	Name     string `json:"name"`
	VLAN     int    `json:"vlan"`
	IPSubnet string `json:"ip_subnet"`
	Purpose  string `json:"purpose"`
}

type unifiDeviceRecord struct {
	Name   string `json:"name"`
	MAC    string `json:"mac"`
	IP     string `json:"ip"`
	Model  string `json:"model"`
	Type   string `json:"type"`
	NumSta int    `json:"num_sta"`
}

// Fetch logs in, pulls the three inventories, and logs out
func (u *UniFi) Fetch(ctx context.Context) (*SourceResult, error) {
	prefix, err := u.login(ctx)
	if err != nil {
		return nil, NewSourceError(u.Name(), err)
	}
	defer u.logout(ctx)

	site := u.cfg.Site

	var clients []unifiClientRecord
	if err := u.getData(ctx, fmt.Sprintf("%s/api/s/%s/stat/sta", prefix, site), &clients); err != nil {
		return nil, NewSourceError(u.Name(), fmt.Errorf("fetch clients: %w", err))
	}

	var networks []unifiNetworkRecord
	if err := u.getData(ctx, fmt.Sprintf("%s/api/s/%s/rest/networkconf", prefix, site), &networks); err != nil {
		return nil, NewSourceError(u.Name(), fmt.Errorf("fetch networks: %w", err))
	}

	var devices []unifiDeviceRecord
	if err := u.getData(ctx, fmt.Sprintf("%s/api/s/%s/stat/device", prefix, site), &devices); err != nil {
		return nil, NewSourceError(u.Name(), fmt.Errorf("fetch devices: %w", err))
	}

	res := &SourceResult{}
	for _, c := range clients {
		name := c.Name
		if name == "" {
			name = c.Hostname
		}
		res.WirelessClients = append(res.WirelessClients, domain.WirelessClient{
			Name:    name,
			MAC:     c.MAC,
			IP:      c.IP,
			IsWired: c.IsWired,
			RSSI:    c.RSSI,
			APMAC:   c.APMAC,
			Network: c.Network,
		})
	}
	for _, n := range networks {
		res.WirelessNetworks = append(res.WirelessNetworks, domain.WirelessNetwork{
			Name:    n.Name,
			VLAN:    n.VLAN,
			Subnet:  n.IPSubnet,
			Purpose: n.Purpose,
		})
	}
	for _, d := range devices {
		switch d.Type {
		case "uap", "udm", "uxg":
		default:
			continue
		}
		res.AccessPoints = append(res.AccessPoints, domain.AccessPoint{
			Name:       d.Name,
			MAC:        d.MAC,
			IP:         d.IP,
			Model:      d.Model,
			Type:       d.Type,
			NumClients: d.NumSta,
		})
	}

	log.Printf("unifi: %d clients, %d networks, %d access points",
		len(res.WirelessClients), len(res.WirelessNetworks), len(res.AccessPoints))
	return res, nil
}

// login authenticates and returns the API prefix for subsequent requests.
// UniFi OS is tried first, then the classic controller endpoint.
func (u *UniFi) login(ctx context.Context) (string, error) {
	creds, _ := json.Marshal(map[string]string{
		"username": u.cfg.Username,
		"password": u.cfg.Password,
	})

	status, err := u.postJSON(ctx, "/api/auth/login", creds)
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}
	if status == http.StatusOK {
		return "/proxy/network", nil
	}

	status, err = u.postJSON(ctx, "/api/login", creds)
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}
	if status == http.StatusOK {
		return "", nil
	}

	return "", &AuthError{Message: fmt.Sprintf("controller rejected login (status %d)", status)}
}

func (u *UniFi) logout(ctx context.Context) {
	if _, err := u.postJSON(ctx, "/api/logout", nil); err != nil {
		log.Printf("unifi: logout failed: %v", err)
	}
}

func (u *UniFi) postJSON(ctx context.Context, path string, body []byte) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := u.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}

// getData fetches a controller endpoint and decodes its data envelope
func (u *UniFi) getData(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.baseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := u.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return &AuthError{Message: fmt.Sprintf("controller returned status %d", resp.StatusCode)}
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("controller returned status %d", resp.StatusCode)
	}

	envelope := struct {
		Data json.RawMessage `json:"data"`
	}{}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if envelope.Data == nil {
		return nil
	}
	return json.Unmarshal(envelope.Data, out)
}
