package discovery

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"discover-server/config"
	"discover-server/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixturePath = filepath.Join("..", "..", config.RESOURCES_PATH_PREFIX, config.ESTABLISHMENTS_RESOURCE)

func newFixtureMock(t *testing.T) *DiscoveryApiClientMock {
	t.Helper()
	client, err := NewDiscoveryApiClientMockFromFile(fixturePath)
	require.NoError(t, err)
	return client
}

func defaultCriteria() models.SearchCriteria {
	return models.SearchCriteria{OriginLat: 39.87, OriginLong: 32.75, RadiusMeters: 5000, PageSize: 50}
}

func TestDiscoveryApiClientMock_SearchSortsByDistance(t *testing.T) {
	client := newFixtureMock(t)

	got, err := client.Search(context.Background(), defaultCriteria())
	require.NoError(t, err)

	names := []string{}
	for i, e := range got {
		names = append(names, e.Name)
		if i > 0 {
			assert.LessOrEqual(t, got[i-1].DistanceMeters, e.DistanceMeters)
		}
	}
	assert.Equal(t, []string{
		"Kahve Durağı", "Köşe Kafe", "Gece Kuşu", "Napoli Pizza",
		"Ocakbaşı Mehmet Usta", "Eski Defter", "Pazar Kahvaltı Evi",
	}, names)
}

func TestDiscoveryApiClientMock_SearchFilters(t *testing.T) {
	client := newFixtureMock(t)

	c := defaultCriteria()
	restaurant := models.AmenityRestaurant
	c.Amenity = &restaurant
	c.MinReviewCount = 10
	got, err := client.Search(context.Background(), c)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Ocakbaşı Mehmet Usta", got[0].Name)
	assert.Equal(t, "Pazar Kahvaltı Evi", got[1].Name)

	c = defaultCriteria()
	c.Text = strPtr("coffee")
	got, err = client.Search(context.Background(), c)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestDiscoveryApiClientMock_SearchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newFixtureMock(t).Search(ctx, defaultCriteria())
	var searchErr *SearchError
	assert.True(t, errors.As(err, &searchErr))
}

func TestDiscoveryApiClientMock_DetailsAndReviews(t *testing.T) {
	client := newFixtureMock(t)
	id := "c1a7e0b2-0001-4f00-9a00-000000000001"

	details, err := client.GetEstablishmentDetails(context.Background(), id, 39.87, 32.75)
	require.NoError(t, err)
	assert.Equal(t, "Kahve Durağı", details.Name)
	assert.InDelta(t, 150, details.DistanceMeters, 1)
	assert.Equal(t, "Kahveler", details.Menu[0].Name)
	assert.Equal(t, 84, details.Stats.Count)

	require.NoError(t, client.PostReview(context.Background(), models.ReviewRecord{EstablishmentID: id, Rating: 1, Comment: "Soğuk geldi"}))

	details, err = client.GetEstablishmentDetails(context.Background(), id, 39.87, 32.75)
	require.NoError(t, err)
	assert.Equal(t, 85, details.Stats.Count)
	assert.Equal(t, "Soğuk geldi", details.Reviews[0].Comment)
	assert.Len(t, client.PostedReviews(), 1)

	_, err = client.GetEstablishmentDetails(context.Background(), "missing", 0, 0)
	assert.True(t, errors.Is(err, ErrEstablishmentNotFound))
	err = client.PostReview(context.Background(), models.ReviewRecord{EstablishmentID: "missing", Rating: 5})
	assert.True(t, errors.Is(err, ErrEstablishmentNotFound))
}
