package registry

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/hassops/ha-guard/pkg/logger"
)

var cacheLog = logger.New("registry:cache")

// DefaultTTL is how long a fetched snapshot stays fresh.
const DefaultTTL = 5 * time.Minute

// snapshot pairs an immutable fetched collection with its fetch time.
// Replaced wholesale under the write lock, never mutated.
type snapshot[T any] struct {
	data      T
	fetchedAt time.Time
}

// Cache is a TTL read-through cache over the three registry collections.
// Each collection is fetched lazily on first use and independently
// refreshed when its snapshot ages past the TTL. Concurrent callers that
// miss at the same moment share one fetch.
type Cache struct {
	client Client
	ttl    time.Duration
	now    func() time.Time

	sf singleflight.Group

	mu       sync.RWMutex
	entities *snapshot[map[string]struct{}]
	services *snapshot[map[string]map[string]Service]
	areas    *snapshot[map[string]struct{}]
}

// NewCache wraps client with TTL caching. A non-positive ttl falls back
// to DefaultTTL.
func NewCache(client Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{client: client, ttl: ttl, now: time.Now}
}

// Invalidate drops all three snapshots. The next lookup of each
// collection refetches regardless of TTL.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entities = nil
	c.services = nil
	c.areas = nil
	cacheLog.Print("Invalidated all registry snapshots")
}

func fresh[T any](s *snapshot[T], now time.Time, ttl time.Duration) bool {
	return s != nil && now.Sub(s.fetchedAt) < ttl
}

// ensureEntities returns a fresh entity id set, fetching at most once per
// TTL window across all concurrent callers.
func (c *Cache) ensureEntities(ctx context.Context) (map[string]struct{}, error) {
	c.mu.RLock()
	if s := c.entities; fresh(s, c.now(), c.ttl) {
		c.mu.RUnlock()
		return s.data, nil
	}
	c.mu.RUnlock()

	v, err, _ := c.sf.Do("entities", func() (any, error) {
		// Re-check inside the flight: a caller queued behind the fetch
		// that just completed must not trigger another one.
		c.mu.RLock()
		if s := c.entities; fresh(s, c.now(), c.ttl) {
			c.mu.RUnlock()
			return s.data, nil
		}
		c.mu.RUnlock()

		entities, err := c.client.ListEntities(ctx)
		if err != nil {
			return nil, fmt.Errorf("fetching entity registry: %w", err)
		}
		ids := make(map[string]struct{}, len(entities))
		for _, e := range entities {
			ids[e.EntityID] = struct{}{}
		}
		cacheLog.Printf("Fetched %d entities", len(ids))

		c.mu.Lock()
		c.entities = &snapshot[map[string]struct{}]{data: ids, fetchedAt: c.now()}
		c.mu.Unlock()
		return ids, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(map[string]struct{}), nil
}

func (c *Cache) ensureServices(ctx context.Context) (map[string]map[string]Service, error) {
	c.mu.RLock()
	if s := c.services; fresh(s, c.now(), c.ttl) {
		c.mu.RUnlock()
		return s.data, nil
	}
	c.mu.RUnlock()

	v, err, _ := c.sf.Do("services", func() (any, error) {
		c.mu.RLock()
		if s := c.services; fresh(s, c.now(), c.ttl) {
			c.mu.RUnlock()
			return s.data, nil
		}
		c.mu.RUnlock()

		domains, err := c.client.ListServices(ctx)
		if err != nil {
			return nil, fmt.Errorf("fetching service registry: %w", err)
		}
		services := make(map[string]map[string]Service, len(domains))
		for _, d := range domains {
			byName := make(map[string]Service, len(d.Services))
			for name, svc := range d.Services {
				byName[name] = svc
			}
			services[d.Domain] = byName
		}
		cacheLog.Printf("Fetched services for %d domains", len(services))

		c.mu.Lock()
		c.services = &snapshot[map[string]map[string]Service]{data: services, fetchedAt: c.now()}
		c.mu.Unlock()
		return services, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(map[string]map[string]Service), nil
}

func (c *Cache) ensureAreas(ctx context.Context) (map[string]struct{}, error) {
	c.mu.RLock()
	if s := c.areas; fresh(s, c.now(), c.ttl) {
		c.mu.RUnlock()
		return s.data, nil
	}
	c.mu.RUnlock()

	v, err, _ := c.sf.Do("areas", func() (any, error) {
		c.mu.RLock()
		if s := c.areas; fresh(s, c.now(), c.ttl) {
			c.mu.RUnlock()
			return s.data, nil
		}
		c.mu.RUnlock()

		areas, err := c.client.GetAreaRegistry(ctx)
		if err != nil {
			return nil, fmt.Errorf("fetching area registry: %w", err)
		}
		ids := make(map[string]struct{}, len(areas))
		for _, a := range areas {
			ids[a.AreaID] = struct{}{}
		}
		cacheLog.Printf("Fetched %d areas", len(ids))

		c.mu.Lock()
		c.areas = &snapshot[map[string]struct{}]{data: ids, fetchedAt: c.now()}
		c.mu.Unlock()
		return ids, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(map[string]struct{}), nil
}

// EntityExists reports whether id is a known entity.
func (c *Cache) EntityExists(ctx context.Context, id string) (bool, error) {
	ids, err := c.ensureEntities(ctx)
	if err != nil {
		return false, err
	}
	_, ok := ids[id]
	return ok, nil
}

// EntityIDs returns the known entity ids, optionally filtered to one
// domain. The result is a sorted copy; callers may keep it.
func (c *Cache) EntityIDs(ctx context.Context, domain string) ([]string, error) {
	ids, err := c.ensureEntities(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(ids))
	for id := range ids {
		if domain == "" || strings.HasPrefix(id, domain+".") {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out, nil
}

// ServiceExists reports whether "domain.service" is a known service.
func (c *Cache) ServiceExists(ctx context.Context, service string) (bool, error) {
	domain, name, ok := strings.Cut(service, ".")
	if !ok {
		return false, nil
	}
	services, err := c.ensureServices(ctx)
	if err != nil {
		return false, err
	}
	_, ok = services[domain][name]
	return ok, nil
}

// ServiceFields returns the declared fields of "domain.service", or nil
// when the service is unknown.
func (c *Cache) ServiceFields(ctx context.Context, service string) (map[string]any, error) {
	domain, name, ok := strings.Cut(service, ".")
	if !ok {
		return nil, nil
	}
	services, err := c.ensureServices(ctx)
	if err != nil {
		return nil, err
	}
	svc, ok := services[domain][name]
	if !ok {
		return nil, nil
	}
	return svc.Fields, nil
}

// ServiceDomains returns the sorted set of domains that expose services.
func (c *Cache) ServiceDomains(ctx context.Context) ([]string, error) {
	services, err := c.ensureServices(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(services))
	for domain := range services {
		out = append(out, domain)
	}
	sort.Strings(out)
	return out, nil
}

// AreaExists reports whether id is a known area.
func (c *Cache) AreaExists(ctx context.Context, id string) (bool, error) {
	ids, err := c.ensureAreas(ctx)
	if err != nil {
		return false, err
	}
	_, ok := ids[id]
	return ok, nil
}
