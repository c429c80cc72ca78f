package db

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by Get for a missing key.
var ErrKeyNotFound = errors.New("key not found")

// GeoMember is one hit of a radius query: the member, its distance from the
// query point and the JSON stored under the member key.
type GeoMember struct {
	Name           string
	DistanceMeters float64
	JSON           string
}

// RedisClient defines the methods the DAOs need from Redis
type RedisClient interface {
	Set(ctx context.Context, key, value string) error
	Get(ctx context.Context, key string) (string, error)
	AddLocationWithJSON(ctx context.Context, geoKey, memberKey string, lat, lon float64, data interface{}) error
	// GetLocationsWithinRadius returns members within radiusMeters, nearest first.
	GetLocationsWithinRadius(ctx context.Context, key string, lat, lon, radiusMeters float64) ([]GeoMember, error)
	RemoveLocation(ctx context.Context, geoKey, memberKey string) error
	Ping(ctx context.Context) error
	Keys(ctx context.Context, pattern string) ([]string, error)
	Del(ctx context.Context, key string) error
}
