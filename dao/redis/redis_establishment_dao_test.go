package redis

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"discover-server/api/discovery"
	"discover-server/db"
	"discover-server/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func seed(t *testing.T, dao *RedisEstablishmentDAO) {
	t.Helper()
	records := []models.EstablishmentRecord{
		{ID: "far", Name: "Uzak Lokanta", Amenity: models.AmenityRestaurant, Location: models.Location{Latitude: 39.83, Longitude: 32.70}, AverageRating: 4.5, ReviewCount: 67},
		{ID: "pizza", Name: "Napoli Pizza", Amenity: models.AmenityRestaurant, Location: models.Location{Latitude: 39.862, Longitude: 32.7399}, AverageRating: 3.7, ReviewCount: 9, CuisineTags: []string{"pizza"}},
		{ID: "cafe", Name: "Kahve Durağı", Amenity: models.AmenityCafe, Location: models.Location{Latitude: 39.8712, Longitude: 32.7508}, AverageRating: 4.6, ReviewCount: 84, OpeningHours: strPtr("Mo-Fr 08:00-20:00")},
	}
	for _, r := range records {
		require.NoError(t, dao.UpsertEstablishment(context.Background(), r))
	}
}

func criteria() models.SearchCriteria {
	return models.SearchCriteria{OriginLat: 39.87, OriginLong: 32.75, RadiusMeters: 5000, PageSize: 50}
}

func TestRedisEstablishmentDAO_UpsertEstablishment(t *testing.T) {
	mockClient := db.NewMockRedisClient()
	dao := NewRedisEstablishmentDAO(mockClient)
	ctx := context.Background()

	require.NoError(t, dao.UpsertEstablishment(ctx, models.EstablishmentRecord{ID: "e1", Name: "Test"}))

	stored, err := mockClient.Get(ctx, "establishment_v1:e1")
	require.NoError(t, err)
	var r models.EstablishmentRecord
	require.NoError(t, json.Unmarshal([]byte(stored), &r))
	assert.Equal(t, "Test", r.Name)

	assert.Error(t, dao.UpsertEstablishment(ctx, models.EstablishmentRecord{Name: "no id"}))
}

func TestRedisEstablishmentDAO_Search(t *testing.T) {
	dao := NewRedisEstablishmentDAO(db.NewMockRedisClient())
	seed(t, dao)
	ctx := context.Background()

	got, err := dao.Search(ctx, criteria())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "cafe", got[0].ID)
	assert.InDelta(t, 150, got[0].DistanceMeters, 1)
	assert.Equal(t, "pizza", got[1].ID)
	require.NotNil(t, got[0].OpeningHours)

	c := criteria()
	c.Text = strPtr("PIZ")
	got, err = dao.Search(ctx, c)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "pizza", got[0].ID)

	c = criteria()
	c.MinReviewCount = 10
	c.RadiusMeters = 10000
	got, err = dao.Search(ctx, c)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestRedisEstablishmentDAO_SearchSkipsCorruptMembers(t *testing.T) {
	client := db.NewMockRedisClient()
	dao := NewRedisEstablishmentDAO(client)
	seed(t, dao)
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "establishment_v1:pizza", "{not json"))

	got, err := dao.Search(ctx, criteria())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "cafe", got[0].ID)
}

func TestRedisEstablishmentDAO_DetailsAndReviews(t *testing.T) {
	dao := NewRedisEstablishmentDAO(db.NewMockRedisClient())
	seed(t, dao)
	ctx := context.Background()

	require.NoError(t, dao.PostReview(ctx, models.ReviewRecord{EstablishmentID: "pizza", Rating: 5, Comment: "Hamuru çok iyi"}))

	details, err := dao.GetEstablishmentDetails(ctx, "pizza", 39.87, 32.75)
	require.NoError(t, err)
	assert.Equal(t, 10, details.Stats.Count)
	assert.Equal(t, 3.8, details.Stats.Rating)
	require.Len(t, details.Reviews, 1)
	assert.Equal(t, "Hamuru çok iyi", details.Reviews[0].Comment)
	assert.NotEmpty(t, details.Reviews[0].ID)
	assert.InDelta(t, 1239, details.DistanceMeters, 2)

	_, err = dao.GetEstablishmentDetails(ctx, "missing", 0, 0)
	assert.True(t, errors.Is(err, discovery.ErrEstablishmentNotFound))
	err = dao.PostReview(ctx, models.ReviewRecord{EstablishmentID: "missing", Rating: 3})
	assert.True(t, errors.Is(err, discovery.ErrEstablishmentNotFound))
}

func TestRedisEstablishmentDAO_ListAndDelete(t *testing.T) {
	dao := NewRedisEstablishmentDAO(db.NewMockRedisClient())
	seed(t, dao)
	ctx := context.Background()

	ids, err := dao.ListAllEstablishmentIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"cafe", "far", "pizza"}, ids)

	require.NoError(t, dao.DeleteEstablishment(ctx, "cafe"))
	got, err := dao.Search(ctx, criteria())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "pizza", got[0].ID)
}

func TestRedisEstablishmentDAO_ImplementsDiscoveryAPI(t *testing.T) {
	var _ discovery.DiscoveryAPI = NewRedisEstablishmentDAO(db.NewMockRedisClient())
}
