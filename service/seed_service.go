package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"math"
	"math/rand"

	"github.com/jaswdr/faker"
	"github.com/lucsky/cuid"
	"github.com/schollz/progressbar/v3"

	"discover-server/models"
	"discover-server/util"
)

// EstablishmentStore is where seeded records end up.
type EstablishmentStore interface {
	UpsertEstablishment(ctx context.Context, r models.EstablishmentRecord) error
	ListAllEstablishmentIDs(ctx context.Context) ([]string, error)
	DeleteEstablishment(ctx context.Context, id string) error
}

var fakeCafeTags = []string{"coffee", "dessert", "breakfast", "tea", "bakery", "bar", "brunch"}
var fakeRestaurantTags = []string{"turkish", "kebab", "pizza", "italian", "burger", "seafood", "vegan", "grill", "homemade", "street food"}
var fakeOpeningHours = []string{
	"",
	"24/7",
	"Mo-Su 08:00-22:00",
	"Mo-Fr 09:00-18:00; Sa 10:00-14:00",
	"Mo-Fr 11:00-15:00,18:00-23:00; Sa,Su 12:00-23:00",
	"Tu-Su 12:00-23:00; Mo off",
	"Mo-Su 18:00-02:00",
}

// SeedService loads establishment records into the redis backend.
type SeedService struct {
	store EstablishmentStore
	out   io.Writer
}

// NewSeedService writes progress to out.
func NewSeedService(store EstablishmentStore, out io.Writer) *SeedService {
	return &SeedService{store: store, out: out}
}

// SeedFromFixture upserts every record of a JSON fixture file.
func (s *SeedService) SeedFromFixture(ctx context.Context, path string) (int, error) {
	records, err := util.ReadEstablishmentRecordsFromJSON(path)
	if err != nil {
		return 0, fmt.Errorf("error reading fixture %s: %w", path, err)
	}
	log.Printf("[SeedService] Seeding %d establishments from %s", len(records), path)
	return s.seed(ctx, records)
}

// SeedFake upserts n generated records scattered around the origin.
func (s *SeedService) SeedFake(ctx context.Context, n int, seed int64, lat, lon, radiusMeters float64) (int, error) {
	fake := faker.NewWithSeed(rand.NewSource(seed))
	records := GenerateFakeEstablishments(fake, n, lat, lon, radiusMeters)
	log.Printf("[SeedService] Seeding %d fake establishments around lat=%.6f, long=%.6f", n, lat, lon)
	return s.seed(ctx, records)
}

// Reset deletes every stored establishment and returns how many were removed.
func (s *SeedService) Reset(ctx context.Context) (int, error) {
	ids, err := s.store.ListAllEstablishmentIDs(ctx)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, id := range ids {
		if err := s.store.DeleteEstablishment(ctx, id); err != nil {
			return removed, err
		}
		removed++
	}
	log.Printf("[SeedService] Removed %d establishments", removed)
	return removed, nil
}

func (s *SeedService) seed(ctx context.Context, records []models.EstablishmentRecord) (int, error) {
	bar := progressbar.NewOptions(len(records),
		progressbar.OptionSetWriter(s.out),
		progressbar.OptionSetDescription("seeding establishments"),
		progressbar.OptionShowCount(),
	)
	seeded := 0
	for _, r := range records {
		if err := ctx.Err(); err != nil {
			return seeded, err
		}
		if err := s.store.UpsertEstablishment(ctx, r); err != nil {
			return seeded, fmt.Errorf("error upserting establishment %s: %w", r.ID, err)
		}
		seeded++
		_ = bar.Add(1)
	}
	_ = bar.Finish()
	return seeded, nil
}

// GenerateFakeEstablishments builds n plausible records inside the square that
// encloses the circle of radiusMeters around (lat, lon).
func GenerateFakeEstablishments(fake faker.Faker, n int, lat, lon, radiusMeters float64) []models.EstablishmentRecord {
	latRange := radiusMeters / 1000 / 111.0
	lonRange := latRange / math.Cos(lat*math.Pi/180.0)

	out := make([]models.EstablishmentRecord, 0, n)
	for i := 0; i < n; i++ {
		amenity := models.AmenityRestaurant
		tags := fakeRestaurantTags
		name := fake.Company().Name()
		if fake.Boolean().Bool() {
			amenity = models.AmenityCafe
			tags = fakeCafeTags
			name = name + " Cafe"
		}

		var hours *string
		if h := fake.RandomStringElement(fakeOpeningHours); h != "" {
			hours = &h
		}

		reviewCount := fake.IntBetween(0, 300)
		rating := 0.0
		if reviewCount > 0 {
			rating = fake.Float64(1, 1, 5)
		}

		out = append(out, models.EstablishmentRecord{
			ID:      cuid.New(),
			Name:    name,
			Amenity: amenity,
			Location: models.Location{
				Latitude:  lat + (fake.Float64(6, 0, 2)-1)*latRange,
				Longitude: lon + (fake.Float64(6, 0, 2)-1)*lonRange,
			},
			Phone:         fake.Phone().Number(),
			AverageRating: rating,
			ReviewCount:   reviewCount,
			CuisineTags:   pickTags(fake, tags),
			OpeningHours:  hours,
		})
	}
	return out
}

func pickTags(fake faker.Faker, from []string) []string {
	n := fake.IntBetween(1, 3)
	seen := make(map[string]struct{}, n)
	tags := make([]string, 0, n)
	for len(tags) < n {
		t := fake.RandomStringElement(from)
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		tags = append(tags, t)
	}
	return tags
}
