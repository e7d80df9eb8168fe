// Package registry caches the live Home Assistant registries (entities,
// services, areas) behind a TTL with single-flight refresh, and exposes
// the lookups the semantic validator needs.
package registry

import "context"

// Entity is one row of the entity registry. Only the id matters here.
type Entity struct {
	EntityID string `json:"entity_id"`
}

// Service describes one callable service within a domain.
type Service struct {
	Fields map[string]any `json:"fields"`
}

// ServiceDomain groups the services of one domain, as returned by the
// /api/services endpoint.
type ServiceDomain struct {
	Domain   string             `json:"domain"`
	Services map[string]Service `json:"services"`
}

// Area is one row of the area registry.
type Area struct {
	AreaID string `json:"area_id"`
}

// Client is the narrow read-only surface of a Home Assistant instance
// consumed by the cache. Implementations must be safe for concurrent use.
type Client interface {
	ListEntities(ctx context.Context) ([]Entity, error)
	ListServices(ctx context.Context) ([]ServiceDomain, error)
	GetAreaRegistry(ctx context.Context) ([]Area, error)
}
