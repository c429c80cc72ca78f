package discovery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"discover-server/api"
	"discover-server/models"
)

const SEARCH_RPC_ENDPOINT = "/rest/v1/rpc/get_establishments"
const DETAILS_RPC_ENDPOINT = "/rest/v1/rpc/get_establishment_details"
const POST_REVIEW_RPC_ENDPOINT = "/rest/v1/rpc/post_review"

// DiscoveryApiClient calls the PostgREST RPC functions of the hosted backend.
type DiscoveryApiClient struct {
	*api.HTTPClient // Embed HTTPClient to reuse its methods and properties
	apiKey          string
}

// NewDiscoveryApiClient creates a new instance of DiscoveryApiClient
func NewDiscoveryApiClient(httpClient *api.HTTPClient, apiKey string) *DiscoveryApiClient {
	return &DiscoveryApiClient{
		HTTPClient: httpClient,
		apiKey:     apiKey,
	}
}

func (c *DiscoveryApiClient) headers() map[string]string {
	return map[string]string{
		"apikey":        c.apiKey,
		"Authorization": "Bearer " + c.apiKey,
	}
}

type detailsRPCParams struct {
	InputID  string  `json:"input_id"`
	UserLat  float64 `json:"user_lat"`
	UserLong float64 `json:"user_long"`
}

// postgrestError is the error body PostgREST returns with non-2xx responses.
type postgrestError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Search calls get_establishments once. Results come back in server order.
func (c *DiscoveryApiClient) Search(ctx context.Context, criteria models.SearchCriteria) ([]models.Establishment, error) {
	params := NormalizeCriteria(criteria).ToRPCParams()

	var response []models.Establishment
	if err := c.Request(ctx, "POST", SEARCH_RPC_ENDPOINT, c.headers(), params, &response); err != nil {
		log.Printf("[DiscoveryApiClient] search failed: %v", err)
		return nil, newSearchError("search failed", describe(err))
	}
	if response == nil {
		response = []models.Establishment{}
	}
	fillDefaults(response)
	return response, nil
}

// GetEstablishmentDetails calls get_establishment_details. A null result means not found.
func (c *DiscoveryApiClient) GetEstablishmentDetails(ctx context.Context, id string, lat, lon float64) (*models.EstablishmentDetails, error) {
	var response *models.EstablishmentDetails
	params := detailsRPCParams{InputID: id, UserLat: lat, UserLong: lon}
	if err := c.Request(ctx, "POST", DETAILS_RPC_ENDPOINT, c.headers(), params, &response); err != nil {
		return nil, fmt.Errorf("get establishment %s: %w", id, describe(err))
	}
	if response == nil {
		return nil, fmt.Errorf("%w: %s", ErrEstablishmentNotFound, id)
	}
	return response, nil
}

// PostReview calls post_review with the already uploaded media URL.
func (c *DiscoveryApiClient) PostReview(ctx context.Context, review models.ReviewRecord) error {
	if err := c.Request(ctx, "POST", POST_REVIEW_RPC_ENDPOINT, c.headers(), review, nil); err != nil {
		return fmt.Errorf("post review: %w", describe(err))
	}
	return nil
}

// describe replaces a bare status error with the backend's own message when it sent one.
func describe(err error) error {
	var statusErr *api.StatusError
	if !errors.As(err, &statusErr) {
		return err
	}
	var body postgrestError
	if jsonErr := json.Unmarshal([]byte(statusErr.Body), &body); jsonErr != nil || body.Message == "" {
		return err
	}
	return fmt.Errorf("%w (%s)", err, body.Message)
}
