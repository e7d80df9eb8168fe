package hass

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "test-token")
}

func TestListEntities(t *testing.T) {
	client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/states", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"entity_id": "light.kitchen", "state": "on", "attributes": {}},
			{"entity_id": "sensor.temp", "state": "21.5", "attributes": {}}
		]`))
	})

	entities, err := client.ListEntities(context.Background())
	require.NoError(t, err)
	require.Len(t, entities, 2)
	assert.Equal(t, "light.kitchen", entities[0].EntityID)
	assert.Equal(t, "sensor.temp", entities[1].EntityID)
}

func TestListServices(t *testing.T) {
	client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/services", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"domain": "light", "services": {
				"turn_on": {"fields": {"brightness": {"example": 120}}},
				"turn_off": {"fields": {}}
			}}
		]`))
	})

	domains, err := client.ListServices(context.Background())
	require.NoError(t, err)
	require.Len(t, domains, 1)
	assert.Equal(t, "light", domains[0].Domain)
	require.Contains(t, domains[0].Services, "turn_on")
	assert.Contains(t, domains[0].Services["turn_on"].Fields, "brightness")
}

func TestGetAreaRegistryIDList(t *testing.T) {
	client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/template", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		w.Write([]byte(`["kitchen", "bedroom"]`))
	})

	areas, err := client.GetAreaRegistry(context.Background())
	require.NoError(t, err)
	require.Len(t, areas, 2)
	assert.Equal(t, "kitchen", areas[0].AreaID)
}

func TestGetAreaRegistryObjectList(t *testing.T) {
	client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"area_id": "kitchen", "name": "Kitchen"}]`))
	})

	areas, err := client.GetAreaRegistry(context.Background())
	require.NoError(t, err)
	require.Len(t, areas, 1)
	assert.Equal(t, "kitchen", areas[0].AreaID)
}

func TestErrorStatusSurfaces(t *testing.T) {
	client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.ListEntities(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")

	_, err = client.ListServices(context.Background())
	require.Error(t, err)

	_, err = client.GetAreaRegistry(context.Background())
	require.Error(t, err)

	assert.Error(t, client.Ping(context.Background()))
}

func TestPing(t *testing.T) {
	client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/", r.URL.Path)
		w.Write([]byte(`{"message": "API running."}`))
	})
	assert.NoError(t, client.Ping(context.Background()))
}
