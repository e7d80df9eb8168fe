// Package hass implements the read-only Home Assistant REST client that
// feeds the registry cache. Only the three endpoints the validator needs
// are wrapped: states, services and the area registry (read through a
// template render, since core HA has no REST endpoint for areas).
package hass

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/hassops/ha-guard/pkg/logger"
	"github.com/hassops/ha-guard/pkg/registry"
)

var clientLog = logger.New("hass:client")

// DefaultTimeout bounds each request to the HA instance.
const DefaultTimeout = 10 * time.Second

// areaTemplate asks HA to render its area registry to JSON. The template
// API is the only way to read areas over plain REST.
const areaTemplate = `{{ areas() | to_json }}`

// Client talks to one Home Assistant instance. It implements
// registry.Client and is safe for concurrent use.
type Client struct {
	http *resty.Client
}

// Option customizes the client.
type Option func(*Client)

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.SetTimeout(d)
	}
}

// WithHTTPClient swaps the underlying resty client, for tests.
func WithHTTPClient(rc *resty.Client) Option {
	return func(c *Client) {
		c.http = rc
	}
}

// NewClient builds a client for the HA instance at baseURL using a
// long-lived access token.
func NewClient(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetAuthToken(token).
			SetTimeout(DefaultTimeout).
			SetHeader("Content-Type", "application/json"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type stateRow struct {
	EntityID string `json:"entity_id"`
}

// ListEntities returns every entity known to the instance.
func (c *Client) ListEntities(ctx context.Context) ([]registry.Entity, error) {
	var rows []stateRow
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&rows).
		Get("/api/states")
	if err != nil {
		return nil, fmt.Errorf("listing entities: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("listing entities: %s", resp.Status())
	}
	clientLog.Printf("Listed %d entities", len(rows))
	entities := make([]registry.Entity, 0, len(rows))
	for _, r := range rows {
		entities = append(entities, registry.Entity{EntityID: r.EntityID})
	}
	return entities, nil
}

type serviceDomainRow struct {
	Domain   string                       `json:"domain"`
	Services map[string]serviceDetailsRow `json:"services"`
}

type serviceDetailsRow struct {
	Fields map[string]any `json:"fields"`
}

// ListServices returns the service catalog grouped by domain.
func (c *Client) ListServices(ctx context.Context) ([]registry.ServiceDomain, error) {
	var rows []serviceDomainRow
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&rows).
		Get("/api/services")
	if err != nil {
		return nil, fmt.Errorf("listing services: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("listing services: %s", resp.Status())
	}
	clientLog.Printf("Listed services for %d domains", len(rows))
	domains := make([]registry.ServiceDomain, 0, len(rows))
	for _, r := range rows {
		services := make(map[string]registry.Service, len(r.Services))
		for name, d := range r.Services {
			services[name] = registry.Service{Fields: d.Fields}
		}
		domains = append(domains, registry.ServiceDomain{Domain: r.Domain, Services: services})
	}
	return domains, nil
}

type areaRow struct {
	AreaID string `json:"area_id"`
	Name   string `json:"name"`
}

// GetAreaRegistry returns the area registry by rendering areas() through
// the template API. The endpoint returns the rendered template as plain
// text, which here is a JSON array.
func (c *Client) GetAreaRegistry(ctx context.Context) ([]registry.Area, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"template": areaTemplate}).
		Post("/api/template")
	if err != nil {
		return nil, fmt.Errorf("reading area registry: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("reading area registry: %s", resp.Status())
	}

	// areas() yields area ids on current HA; older builds yield
	// {area_id, name} objects. Accept both.
	body := resp.Body()
	var ids []string
	if err := json.Unmarshal(body, &ids); err == nil {
		areas := make([]registry.Area, 0, len(ids))
		for _, id := range ids {
			areas = append(areas, registry.Area{AreaID: id})
		}
		clientLog.Printf("Listed %d areas", len(areas))
		return areas, nil
	}
	var rows []areaRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("reading area registry: unexpected template output: %w", err)
	}
	areas := make([]registry.Area, 0, len(rows))
	for _, r := range rows {
		areas = append(areas, registry.Area{AreaID: r.AreaID})
	}
	clientLog.Printf("Listed %d areas", len(areas))
	return areas, nil
}

// Ping verifies the instance is reachable and the token is accepted.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.http.R().SetContext(ctx).Get("/api/")
	if err != nil {
		return fmt.Errorf("pinging instance: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("pinging instance: %s", resp.Status())
	}
	return nil
}

var _ registry.Client = (*Client)(nil)
