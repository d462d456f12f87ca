package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"netinv/internal/config"
	"netinv/internal/domain"
)

// Portainer fetches containers from one Portainer instance. The instance
// fronts one or more Docker endpoints; containers from every endpoint are
// returned, tagged with the instance and endpoint names.
type Portainer struct {
	cfg     config.PortainerConfig
	baseURL string
	client  *http.Client
}

// NewPortainer creates an adapter for one configured instance
func NewPortainer(cfg config.PortainerConfig) *Portainer {
	return &Portainer{
		cfg:     cfg,
		baseURL: strings.TrimRight(cfg.URL, "/"),
		client:  &http.Client{},
	}
}

// Name returns the adapter identifier, unique per instance
func (p *Portainer) Name() string {
	return "portainer:" + p.cfg.Name
}

// Enabled reports whether the instance is configured on
func (p *Portainer) Enabled() bool {
	return p.cfg.Enabled
}

type portainerEndpoint struct {
	ID   int    `json:"Id"`
	Name string `json:"Name"`
}

type dockerContainer struct {
	ID     string   `json:"Id"`
	Names  []string `json:"Names"`
	Image  string   `json:"Image"`
	State  string   `json:"State"`
	Status string   `json:"Status"`
}

// Fetch enumerates endpoints and collects containers from each one
func (p *Portainer) Fetch(ctx context.Context) (*SourceResult, error) {
	var endpoints []portainerEndpoint
	if err := p.get(ctx, "/api/endpoints", &endpoints); err != nil {
		return nil, NewSourceError(p.Name(), fmt.Errorf("fetch endpoints: %w", err))
	}

	res := &SourceResult{}
	for _, ep := range endpoints {
		var containers []dockerContainer
		path := fmt.Sprintf("/api/endpoints/%d/docker/containers/json?all=1", ep.ID)
		if err := p.get(ctx, path, &containers); err != nil {
			return nil, NewSourceError(p.Name(),
				fmt.Errorf("fetch containers for endpoint %s: %w", ep.Name, err))
		}

		for _, c := range containers {
			name := ""
			if len(c.Names) > 0 {
				name = strings.TrimPrefix(c.Names[0], "/")
			}
			res.Containers = append(res.Containers, domain.Container{
				ID:       c.ID,
				Name:     name,
				Image:    c.Image,
				State:    c.State,
				Status:   c.Status,
				Instance: p.cfg.Name,
				Endpoint: ep.Name,
			})
		}
	}

	log.Printf("portainer: %d containers across %d endpoints on %s",
		len(res.Containers), len(endpoints), p.cfg.Name)
	return res, nil
}

func (p *Portainer) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("X-API-Key", p.cfg.APIToken)

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return &AuthError{Message: fmt.Sprintf("portainer returned status %d", resp.StatusCode)}
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("portainer returned status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
