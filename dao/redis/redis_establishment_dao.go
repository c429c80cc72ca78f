package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"discover-server/api/discovery"
	"discover-server/db"
	"discover-server/models"
	"discover-server/util"
)

const ESTABLISHMENTS_GEO_KEY_V1 = "establishments_geo_v1"
const ESTABLISHMENT_MEMBER_FORMAT_V1 = "establishment_v1:%s"

// RedisEstablishmentDAO stores establishment records in a Redis geo index and
// answers searches from it, so a dev stack needs nothing but Redis.
type RedisEstablishmentDAO struct {
	client db.RedisClient
}

// NewRedisEstablishmentDAO initializes a RedisEstablishmentDAO with the Redis client.
func NewRedisEstablishmentDAO(client db.RedisClient) *RedisEstablishmentDAO {
	return &RedisEstablishmentDAO{client: client}
}

func memberKey(id string) string {
	return fmt.Sprintf(ESTABLISHMENT_MEMBER_FORMAT_V1, id)
}

// UpsertEstablishment stores the record as a geolocation with the record's JSON data.
func (dao *RedisEstablishmentDAO) UpsertEstablishment(ctx context.Context, r models.EstablishmentRecord) error {
	if r.ID == "" {
		return fmt.Errorf("[RedisEstablishmentDAO] establishment without id")
	}
	return dao.client.AddLocationWithJSON(ctx, ESTABLISHMENTS_GEO_KEY_V1, memberKey(r.ID), r.Location.Latitude, r.Location.Longitude, r)
}

// Search answers get_establishments from the geo index.
func (dao *RedisEstablishmentDAO) Search(ctx context.Context, criteria models.SearchCriteria) ([]models.Establishment, error) {
	criteria = discovery.NormalizeCriteria(criteria)

	members, err := dao.client.GetLocationsWithinRadius(ctx, ESTABLISHMENTS_GEO_KEY_V1, criteria.OriginLat, criteria.OriginLong, criteria.RadiusMeters)
	if err != nil {
		log.Printf("[RedisEstablishmentDAO] search failed: %v", err)
		return nil, &discovery.SearchError{Message: "search failed: " + err.Error(), Err: err}
	}

	rows := make([]models.Establishment, 0, len(members))
	for _, m := range members {
		var r models.EstablishmentRecord
		if err := json.Unmarshal([]byte(m.JSON), &r); err != nil {
			log.Printf("[RedisEstablishmentDAO] Skipping member %s: %v", m.Name, err)
			continue
		}
		rows = append(rows, r.ToEstablishment(m.DistanceMeters))
	}
	return discovery.ApplyCriteria(rows, criteria), nil
}

// GetEstablishment reads a stored record.
func (dao *RedisEstablishmentDAO) GetEstablishment(ctx context.Context, id string) (*models.EstablishmentRecord, error) {
	str, err := dao.client.Get(ctx, memberKey(id))
	if errors.Is(err, db.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", discovery.ErrEstablishmentNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get establishment from redis: %w", err)
	}
	var r models.EstablishmentRecord
	if err := json.Unmarshal([]byte(str), &r); err != nil {
		return nil, fmt.Errorf("failed to unmarshal establishment JSON: %w", err)
	}
	return &r, nil
}

func (dao *RedisEstablishmentDAO) GetEstablishmentDetails(ctx context.Context, id string, lat, lon float64) (*models.EstablishmentDetails, error) {
	r, err := dao.GetEstablishment(ctx, id)
	if err != nil {
		return nil, err
	}
	details := r.ToDetails(util.HaversineMeters(lat, lon, r.Location.Latitude, r.Location.Longitude))
	return &details, nil
}

// PostReview folds the review into the stored record.
func (dao *RedisEstablishmentDAO) PostReview(ctx context.Context, review models.ReviewRecord) error {
	r, err := dao.GetEstablishment(ctx, review.EstablishmentID)
	if err != nil {
		return err
	}
	r.AddReview(models.Review{
		ID:        uuid.NewString(),
		UserName:  "Anonymous",
		Rating:    review.Rating,
		Comment:   review.Comment,
		MediaURL:  review.MediaURL,
		CreatedAt: time.Now().UTC(),
	})
	if err := dao.UpsertEstablishment(ctx, *r); err != nil {
		return fmt.Errorf("failed to store review: %w", err)
	}
	log.Printf("[RedisEstablishmentDAO] Stored review for %s", review.EstablishmentID)
	return nil
}

// ListAllEstablishmentIDs returns all establishment IDs present in the index.
func (dao *RedisEstablishmentDAO) ListAllEstablishmentIDs(ctx context.Context) ([]string, error) {
	keys, err := dao.client.Keys(ctx, memberKey("*"))
	if err != nil {
		return nil, fmt.Errorf("failed to list establishment keys: %w", err)
	}
	prefix := memberKey("")
	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		ids = append(ids, strings.TrimPrefix(k, prefix))
	}
	return ids, nil
}

func (dao *RedisEstablishmentDAO) DeleteEstablishment(ctx context.Context, id string) error {
	if err := dao.client.RemoveLocation(ctx, ESTABLISHMENTS_GEO_KEY_V1, memberKey(id)); err != nil {
		return fmt.Errorf("failed to delete establishment %s: %w", id, err)
	}
	log.Printf("[RedisEstablishmentDAO] Deleted establishment %s", id)
	return nil
}
