package adapter

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"netinv/internal/config"
	"netinv/internal/domain"
)

// Proxmox fetches qemu VMs and lxc containers from one Proxmox VE cluster
// using API token auth.
type Proxmox struct {
	cfg     config.ProxmoxConfig
	baseURL string
	client  *http.Client
}

// NewProxmox creates an adapter for one configured cluster
func NewProxmox(cfg config.ProxmoxConfig) *Proxmox {
	client := &http.Client{}
	if !cfg.VerifySSL {
		client.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	return &Proxmox{
		cfg:     cfg,
		baseURL: fmt.Sprintf("https://%s:8006", cfg.Host),
		client:  client,
	}
}

// Name returns the adapter identifier, unique per cluster
func (p *Proxmox) Name() string {
	return "proxmox:" + p.cfg.Name
}

// Enabled reports whether the cluster is configured on
func (p *Proxmox) Enabled() bool {
	return p.cfg.Enabled
}

type proxmoxResource struct {
	VMID   int     `json:"vmid"`
	Name   string  `json:"name"`
	Node   string  `json:"node"`
	Status string  `json:"status"`
	Type   string  `json:"type"`
	CPU    float64 `json:"cpu"`
	MaxMem int64   `json:"maxmem"`
	Uptime int64   `json:"uptime"`
}

// Fetch lists cluster guests via the resources endpoint
func (p *Proxmox) Fetch(ctx context.Context) (*SourceResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		p.baseURL+"/api2/json/cluster/resources?type=vm", nil)
	if err != nil {
		return nil, NewSourceError(p.Name(), err)
	}
	req.Header.Set("Authorization",
		fmt.Sprintf("PVEAPIToken=%s=%s", p.cfg.APITokenName, p.cfg.APITokenValue))

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, NewSourceError(p.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, NewSourceError(p.Name(),
			&AuthError{Message: fmt.Sprintf("proxmox returned status %d", resp.StatusCode)})
	}
	if resp.StatusCode != http.StatusOK {
		return nil, NewSourceError(p.Name(), fmt.Errorf("proxmox returned status %d", resp.StatusCode))
	}

	envelope := struct {
		Data []proxmoxResource `json:"data"`
	}{}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, NewSourceError(p.Name(), fmt.Errorf("decode response: %w", err))
	}

	res := &SourceResult{}
	for _, r := range envelope.Data {
		if r.Type != "qemu" && r.Type != "lxc" {
			continue
		}
		res.VirtualMachines = append(res.VirtualMachines, domain.VirtualMachine{
			ID:            r.VMID,
			Name:          r.Name,
			Node:          r.Node,
			Status:        r.Status,
			Kind:          r.Type,
			CPU:           r.CPU,
			MaxMemBytes:   r.MaxMem,
			UptimeSeconds: r.Uptime,
		})
	}

	log.Printf("proxmox: %d guests on %s", len(res.VirtualMachines), p.cfg.Name)
	return res, nil
}
