package discovery

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"discover-server/api"
	"discover-server/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoveryApiClient_Search(t *testing.T) {
	var received map[string]interface{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/rest/v1/rpc/get_establishments", r.URL.Path)
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer anon-key", r.Header.Get("Authorization"))

		b, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(b, &received))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id":"b","name":"Far","amenity":"cafe","dist_meters":900,"average_rating":4,"review_count":3,"cuisine_tags":["tea"],"opening_hours":null},
			{"id":"a","name":"Near","amenity":"cafe","dist_meters":100,"average_rating":0,"review_count":0,"cuisine_tags":[],"opening_hours":"24/7"}
		]`))
	}))
	defer srv.Close()

	client := NewDiscoveryApiClient(api.NewHTTPClient(srv.URL), "anon-key")
	cafe := models.AmenityCafe

	got, err := client.Search(context.Background(), models.SearchCriteria{
		OriginLat:      39.87,
		OriginLong:     32.75,
		RadiusMeters:   5000,
		Text:           strPtr("   "),
		Amenity:        &cafe,
		MinRating:      4,
		MinReviewCount: 10,
		PageSize:       50,
	})
	require.NoError(t, err)

	assert.Equal(t, 39.87, received["user_lat"])
	assert.Equal(t, 32.75, received["user_long"])
	assert.Equal(t, 5000.0, received["radius_meters"])
	assert.Contains(t, received, "search_text")
	assert.Nil(t, received["search_text"], "blank text is sent as null")
	assert.Equal(t, "cafe", received["filter_amenity"])
	assert.Equal(t, 4.0, received["min_rating"])
	assert.Equal(t, 10.0, received["min_review_count"])
	assert.Equal(t, 50.0, received["page_size"])
	assert.Equal(t, 0.0, received["page_number"])

	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].ID, "server order is kept")
	assert.Nil(t, got[0].OpeningHours)
	require.NotNil(t, got[1].OpeningHours)
	assert.Equal(t, "24/7", *got[1].OpeningHours)
}

func TestDiscoveryApiClient_SearchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code":"P0001","message":"radius too large"}`))
	}))
	defer srv.Close()

	client := NewDiscoveryApiClient(api.NewHTTPClient(srv.URL), "anon-key")
	got, err := client.Search(context.Background(), models.SearchCriteria{PageSize: 50})

	assert.Nil(t, got)
	var searchErr *SearchError
	require.True(t, errors.As(err, &searchErr))
	assert.Contains(t, searchErr.Message, "radius too large")
	assert.Contains(t, searchErr.Message, "400")
}

func TestDiscoveryApiClient_SearchTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewDiscoveryApiClient(api.NewHTTPClient(url), "k").Search(context.Background(), models.SearchCriteria{})
	var searchErr *SearchError
	assert.True(t, errors.As(err, &searchErr))
}

func TestDiscoveryApiClient_SearchEmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	got, err := NewDiscoveryApiClient(api.NewHTTPClient(srv.URL), "k").Search(context.Background(), models.SearchCriteria{})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestDiscoveryApiClient_GetEstablishmentDetails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/rpc/get_establishment_details", r.URL.Path)

		var params map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&params))
		if params["input_id"] == "missing" {
			w.Write([]byte(`null`))
			return
		}
		assert.Equal(t, "e1", params["input_id"])
		assert.Equal(t, 39.87, params["user_lat"])

		w.Write([]byte(`{
			"id":"e1","name":"Mado","amenity":"cafe","distance_meters":420,
			"location":{"latitude":39.87,"longitude":32.75},
			"opening_hours":"Mo-Su 08:00-23:00",
			"stats":{"rating":4.2,"count":17},
			"menu":{"Dondurma":[{"name":"Sade","price":90}],"Baklava":[]},
			"reviews":[]
		}`))
	}))
	defer srv.Close()

	client := NewDiscoveryApiClient(api.NewHTTPClient(srv.URL), "k")

	details, err := client.GetEstablishmentDetails(context.Background(), "e1", 39.87, 32.75)
	require.NoError(t, err)
	assert.Equal(t, "Mado", details.Name)
	assert.Equal(t, 17, details.Stats.Count)
	require.Len(t, details.Menu, 2)
	assert.Equal(t, "Dondurma", details.Menu[0].Name)

	_, err = client.GetEstablishmentDetails(context.Background(), "missing", 39.87, 32.75)
	assert.True(t, errors.Is(err, ErrEstablishmentNotFound))
}

func TestDiscoveryApiClient_PostReview(t *testing.T) {
	var received models.ReviewRecord
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/rpc/post_review", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	url := "https://cdn.example/review_content/1.jpg"
	err := NewDiscoveryApiClient(api.NewHTTPClient(srv.URL), "k").PostReview(context.Background(), models.ReviewRecord{
		EstablishmentID: "e1", Rating: 5, Comment: "Çok güzel", MediaURL: &url,
	})
	require.NoError(t, err)
	assert.Equal(t, "e1", received.EstablishmentID)
	assert.Equal(t, 5, received.Rating)
	require.NotNil(t, received.MediaURL)
	assert.Equal(t, url, *received.MediaURL)
}

func TestDiscoveryApiClient_SearchNullName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":"a","name":null,"amenity":"cafe","dist_meters":100,"average_rating":null,"review_count":null,"cuisine_tags":null,"opening_hours":null}]`))
	}))
	defer srv.Close()

	client := NewDiscoveryApiClient(api.NewHTTPClient(srv.URL), "anon-key")
	got, err := client.Search(context.Background(), models.SearchCriteria{RadiusMeters: 5000, PageSize: 50})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, UNKNOWN_ESTABLISHMENT_NAME, got[0].Name)
	assert.Equal(t, 0, got[0].ReviewCount)
}
