package db_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"discover-server/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test the Set and Get methods against every RedisClient we can run in-process
func TestRedisClient_SetAndGet(t *testing.T) {
	tests := []struct {
		name   string
		client db.RedisClient
	}{
		{"MockRedisClient", db.NewMockRedisClient()},
		// GeoRedisClient needs a live server; see db.NewGeoRedisClient.
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, test.client.Set(ctx, "test-key", "test-value"))

			retrieved, err := test.client.Get(ctx, "test-key")
			require.NoError(t, err)
			assert.Equal(t, "test-value", retrieved)

			require.NoError(t, test.client.Del(ctx, "test-key"))
			_, err = test.client.Get(ctx, "test-key")
			assert.True(t, errors.Is(err, db.ErrKeyNotFound))
		})
	}
}

func TestMockRedisClient_GetLocationsWithinRadius(t *testing.T) {
	ctx := context.Background()
	client := db.NewMockRedisClient()

	// Kızılay square, Ankara, and points roughly 1.1km and 11km north of it.
	originLat, originLon := 39.9208, 32.8541
	require.NoError(t, client.AddLocationWithJSON(ctx, "geo", "far", originLat+0.1, originLon, map[string]string{"id": "far"}))
	require.NoError(t, client.AddLocationWithJSON(ctx, "geo", "near", originLat+0.01, originLon, map[string]string{"id": "near"}))
	require.NoError(t, client.AddLocationWithJSON(ctx, "geo", "here", originLat, originLon, map[string]string{"id": "here"}))

	results, err := client.GetLocationsWithinRadius(ctx, "geo", originLat, originLon, 5000)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "here", results[0].Name)
	assert.InDelta(t, 0, results[0].DistanceMeters, 0.001)
	assert.Equal(t, "near", results[1].Name)
	assert.InDelta(t, 1112, results[1].DistanceMeters, 5)

	var payload map[string]string
	require.NoError(t, json.Unmarshal([]byte(results[1].JSON), &payload))
	assert.Equal(t, "near", payload["id"])

	results, err = client.GetLocationsWithinRadius(ctx, "unknown", originLat, originLon, 5000)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestMockRedisClient_RemoveLocationAndKeys(t *testing.T) {
	ctx := context.Background()
	client := db.NewMockRedisClient()

	require.NoError(t, client.AddLocationWithJSON(ctx, "geo", "place:a", 1, 1, "a"))
	require.NoError(t, client.AddLocationWithJSON(ctx, "geo", "place:b", 1, 1, "b"))
	require.NoError(t, client.Set(ctx, "other", "x"))

	keys, err := client.Keys(ctx, "place:*")
	require.NoError(t, err)
	assert.Equal(t, []string{"place:a", "place:b"}, keys)

	require.NoError(t, client.RemoveLocation(ctx, "geo", "place:a"))
	results, err := client.GetLocationsWithinRadius(ctx, "geo", 1, 1, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "place:b", results[0].Name)
}

func TestRedisClient_Ping(t *testing.T) {
	assert.NoError(t, db.NewMockRedisClient().Ping(context.Background()))
}
