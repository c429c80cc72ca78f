package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"discover-server/models"
)

// pgxPool is the subset of *pgxpool.Pool the client uses.
type pgxPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

var _ pgxPool = (*pgxpool.Pool)(nil)

const searchSQL = `SELECT id, name, amenity, dist_meters, average_rating, review_count, cuisine_tags, opening_hours
FROM get_establishments($1, $2, $3, $4, $5, $6, $7, $8, $9)`

const detailsSQL = `SELECT get_establishment_details($1, $2, $3)`

const postReviewSQL = `SELECT post_review($1, $2, $3, $4)`

// PostgresClient calls the same SQL functions as the RPC client, directly over pgx.
type PostgresClient struct {
	pool pgxPool
}

func NewPostgresClient(pool *pgxpool.Pool) *PostgresClient {
	return &PostgresClient{pool: pool}
}

func (c *PostgresClient) Search(ctx context.Context, criteria models.SearchCriteria) ([]models.Establishment, error) {
	p := NormalizeCriteria(criteria).ToRPCParams()

	var amenity *string
	if p.FilterAmenity != nil {
		a := string(*p.FilterAmenity)
		amenity = &a
	}

	rows, err := c.pool.Query(ctx, searchSQL,
		p.UserLat, p.UserLong, p.RadiusMeters, p.SearchText, amenity,
		p.MinRating, p.MinReviewCount, p.PageSize, p.PageNumber)
	if err != nil {
		log.Printf("[PostgresClient] search failed: %v", err)
		return nil, newSearchError("search failed", err)
	}
	defer rows.Close()

	establishments, err := scanEstablishments(rows)
	if err != nil {
		return nil, newSearchError("search failed", err)
	}
	return establishments, nil
}

// scanEstablishments reads get_establishments rows. Name, amenity, rating and
// review count may be NULL for establishments nobody has filled in or reviewed.
func scanEstablishments(rows pgx.Rows) ([]models.Establishment, error) {
	establishments := []models.Establishment{}
	for rows.Next() {
		var (
			e           models.Establishment
			name        pgtype.Text
			amenity     pgtype.Text
			rating      pgtype.Float8
			reviewCount pgtype.Int8
			tags        []string
		)
		if err := rows.Scan(
			&e.ID,
			&name,
			&amenity,
			&e.DistanceMeters,
			&rating,
			&reviewCount,
			&tags,
			&e.OpeningHours,
		); err != nil {
			return nil, fmt.Errorf("scan establishment: %w", err)
		}
		e.Name = name.String
		e.Amenity = models.Amenity(amenity.String)
		e.AverageRating = rating.Float64
		e.ReviewCount = int(reviewCount.Int64)
		e.CuisineTags = tags
		establishments = append(establishments, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate establishments: %w", err)
	}
	fillDefaults(establishments)
	return establishments, nil
}

func (c *PostgresClient) GetEstablishmentDetails(ctx context.Context, id string, lat, lon float64) (*models.EstablishmentDetails, error) {
	var raw []byte
	if err := c.pool.QueryRow(ctx, detailsSQL, id, lat, lon).Scan(&raw); err != nil {
		return nil, fmt.Errorf("get establishment %s: %w", id, err)
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil, fmt.Errorf("%w: %s", ErrEstablishmentNotFound, id)
	}

	var details models.EstablishmentDetails
	if err := json.Unmarshal(raw, &details); err != nil {
		return nil, fmt.Errorf("decode establishment %s: %w", id, err)
	}
	return &details, nil
}

func (c *PostgresClient) PostReview(ctx context.Context, review models.ReviewRecord) error {
	if _, err := c.pool.Exec(ctx, postReviewSQL,
		review.EstablishmentID, review.Rating, review.Comment, review.MediaURL); err != nil {
		return fmt.Errorf("post review: %w", err)
	}
	return nil
}
