package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClient_Request_Success(t *testing.T) {
	// Mock server setup
	mockResponse := map[string]string{"message": "success"}
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/test-endpoint", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("apikey"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(mockResponse)
	}))
	defer mockServer.Close()

	client := NewHTTPClient(mockServer.URL)
	var response map[string]string

	err := client.Request(context.Background(), "GET", "/test-endpoint", map[string]string{"apikey": "secret"}, nil, &response)

	require.NoError(t, err)
	assert.Equal(t, "success", response["message"])
}

func TestHTTPClient_Request_Failure(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": "bad request"}`))
	}))
	defer mockServer.Close()

	client := NewHTTPClient(mockServer.URL)
	var response map[string]string

	err := client.Request(context.Background(), "POST", "/test-endpoint", nil, map[string]string{"key": "value"}, &response)

	require.Error(t, err)
	assert.Equal(t, "unexpected status code: 400 Bad Request", err.Error())

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadRequest, statusErr.StatusCode)
	assert.JSONEq(t, `{"error": "bad request"}`, statusErr.Body)
}

func TestHTTPClient_Request_EmptyBody(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer mockServer.Close()

	var response map[string]string
	err := NewHTTPClient(mockServer.URL).Request(context.Background(), "POST", "/", nil, nil, &response)
	assert.NoError(t, err)
	assert.Nil(t, response)
}

func TestHTTPClient_Request_ContextCancelled(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer mockServer.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := NewHTTPClient(mockServer.URL).Request(ctx, "GET", "/", nil, nil, nil)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestHTTPClient_RateLimit(t *testing.T) {
	client := NewHTTPClient("http://unused").WithRateLimit(1, 1)
	require.NotNil(t, client.Limiter)

	// The single burst token is taken, so a cancelled context fails in the limiter.
	require.True(t, client.Limiter.Allow())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := client.Request(ctx, "GET", "/", nil, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limiter")

	assert.Nil(t, NewHTTPClient("http://unused").WithRateLimit(0, 5).Limiter)
}
