package config

import (
	"os"
	"path/filepath"
)

// Server config
const HTTP_ADDR = ":8080"
const ENV = "dev"

// Backend: rpc | postgres | redis | mock
const BACKEND = "mock"

// Redis Config
const REDIS_DB_ADDRESS = "redis:6379"
const REDIS_DB_PASSWORD = ""
const REDIS_DB = 0

// Remote search defaults, taken from the mobile app home screen
const ORIGIN_LAT = 39.87
const ORIGIN_LONG = 32.75
const RADIUS_METERS = 5000
const PAGE_SIZE = 50
const DEBOUNCE_WINDOW_MS = 600
const POPULAR_REVIEW_THRESHOLD = 10
const OPEN_NOW_DEFAULT = true
const TIMEZONE = "Europe/Istanbul"

// Session config
const SESSION_TTL_MINUTES = 30
const SESSION_REAPER_SCHEDULE_MINUTES = 1
const VIEW_REFRESH_INTERVAL_SECONDS = 60
const LONG_POLL_WAIT_SECONDS = 25

// Outbound search pacing
const SEARCH_RATE_LIMIT = 10.0
const SEARCH_BURST = 5

const SCHEDULE_CACHE_SIZE = 1024
const PHONE_REGION = "TR"

// Review content storage
const S3_REGION = "eu-central-1"
const S3_BUCKET = "review_content"

// Resources file paths
const RESOURCES_PATH_PREFIX = "resources"
const ESTABLISHMENTS_RESOURCE = "establishments.json"

// BaseDir returns the absolute path of the project root directory
func BaseDir() string {
	// Check if PROJECT_ROOT is set
	if root := os.Getenv("PROJECT_ROOT"); root != "" {
		return root
	}

	// Default to the current working directory
	wd, err := os.Getwd()
	if err != nil {
		panic("Unable to determine working directory: " + err.Error())
	}

	return wd
}

func GetResourcePath(resourceFile string) string {
	return filepath.Join(BaseDir(), RESOURCES_PATH_PREFIX, resourceFile)
}
