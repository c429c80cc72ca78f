package discovery

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"discover-server/models"
	"discover-server/util"
)

// DiscoveryApiClientMock serves searches from an in-memory set of records, the
// way get_establishments would: distance from the origin, filters, nearest first.
type DiscoveryApiClientMock struct {
	mu      sync.RWMutex
	records []models.EstablishmentRecord
	posted  []models.ReviewRecord
}

// NewDiscoveryApiClientMock creates a new instance of DiscoveryApiClientMock
func NewDiscoveryApiClientMock(records []models.EstablishmentRecord) *DiscoveryApiClientMock {
	return &DiscoveryApiClientMock{records: records}
}

// NewDiscoveryApiClientMockFromFile loads the records from a JSON fixture.
func NewDiscoveryApiClientMockFromFile(path string) (*DiscoveryApiClientMock, error) {
	records, err := util.ReadEstablishmentRecordsFromJSON(path)
	if err != nil {
		return nil, err
	}
	log.Printf("[DiscoveryApiClientMock] Loaded %d establishments from %s", len(records), path)
	return NewDiscoveryApiClientMock(records), nil
}

func (c *DiscoveryApiClientMock) Search(ctx context.Context, criteria models.SearchCriteria) ([]models.Establishment, error) {
	if err := ctx.Err(); err != nil {
		return nil, newSearchError("search cancelled", err)
	}
	criteria = NormalizeCriteria(criteria)

	c.mu.RLock()
	rows := make([]models.Establishment, 0, len(c.records))
	for i := range c.records {
		r := &c.records[i]
		dist := util.HaversineMeters(criteria.OriginLat, criteria.OriginLong, r.Location.Latitude, r.Location.Longitude)
		rows = append(rows, r.ToEstablishment(dist))
	}
	c.mu.RUnlock()

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].DistanceMeters < rows[j].DistanceMeters })
	return ApplyCriteria(rows, criteria), nil
}

func (c *DiscoveryApiClientMock) GetEstablishmentDetails(ctx context.Context, id string, lat, lon float64) (*models.EstablishmentDetails, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	r := c.find(id)
	if r == nil {
		return nil, fmt.Errorf("%w: %s", ErrEstablishmentNotFound, id)
	}
	details := r.ToDetails(util.HaversineMeters(lat, lon, r.Location.Latitude, r.Location.Longitude))
	return &details, nil
}

func (c *DiscoveryApiClientMock) PostReview(ctx context.Context, review models.ReviewRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	r := c.find(review.EstablishmentID)
	if r == nil {
		return fmt.Errorf("%w: %s", ErrEstablishmentNotFound, review.EstablishmentID)
	}
	r.AddReview(models.Review{
		ID:        uuid.NewString(),
		UserName:  "Anonymous",
		Rating:    review.Rating,
		Comment:   review.Comment,
		MediaURL:  review.MediaURL,
		CreatedAt: time.Now().UTC(),
	})
	c.posted = append(c.posted, review)
	return nil
}

// PostedReviews returns every review recorded so far.
func (c *DiscoveryApiClientMock) PostedReviews() []models.ReviewRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.ReviewRecord(nil), c.posted...)
}

func (c *DiscoveryApiClientMock) find(id string) *models.EstablishmentRecord {
	for i := range c.records {
		if c.records[i].ID == id {
			return &c.records[i]
		}
	}
	return nil
}
