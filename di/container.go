package di

import (
	"context"
	"fmt"
	"io"
	"log"

	goredis "github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"

	"discover-server/api"
	"discover-server/api/discovery"
	"discover-server/config"
	"discover-server/coordinator"
	"discover-server/dao/redis"
	"discover-server/db"
	"discover-server/metrics"
	"discover-server/projector"
	"discover-server/schedule"
	"discover-server/server"
	"discover-server/server/handlers"
	services "discover-server/service"
	"discover-server/storage"
)

// Container holds all application dependencies.
type Container struct {
	Config               *config.Config
	Metrics              *metrics.Registry
	DiscoveryAPI         discovery.DiscoveryAPI
	Evaluator            *schedule.Evaluator
	Projector            *projector.Projector
	MediaStore           storage.MediaStore
	SessionService       *services.SessionService
	EstablishmentService *services.EstablishmentService
	ReviewService        *services.ReviewService
	SessionHandler       *handlers.SessionHandler
	EstablishmentHandler *handlers.EstablishmentHandler
	MuxRouter            *mux.Router
	Router               *server.Router
	DiscoverHttpServer   *server.DiscoverHttpServer

	closers []func()
}

// NewContainer initializes and wires up all dependencies.
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	log.Printf("initializing container - env: %s, backend: %s", cfg.Env, cfg.Backend)
	c := &Container{Config: cfg, Metrics: metrics.NewRegistry()}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	discoveryAPI, err := c.newDiscoveryAPI(ctx)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.DiscoveryAPI = discoveryAPI

	mediaStore, err := c.newMediaStore(ctx)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.MediaStore = mediaStore

	c.Evaluator = schedule.NewEvaluator(cfg.ScheduleCacheSize, c.Metrics)
	c.Projector = projector.NewProjector(c.Evaluator, projector.AssumeOpenWhenUnknown, loc)

	settings := coordinator.Settings{
		OriginLat:              cfg.OriginLat,
		OriginLong:             cfg.OriginLong,
		RadiusMeters:           cfg.RadiusMeters,
		PageSize:               cfg.PageSize,
		PopularReviewThreshold: cfg.PopularReviewThreshold,
		DebounceWindow:         cfg.DebounceWindow,
		ViewRefreshInterval:    cfg.ViewRefreshInterval,
	}
	c.SessionService = services.NewSessionService(c.DiscoveryAPI, c.Projector, settings, cfg.OpenNowDefault, cfg.SessionTTL, c.Metrics)
	c.EstablishmentService = services.NewEstablishmentService(c.DiscoveryAPI, c.Evaluator, loc, cfg.PhoneRegion)
	c.ReviewService = services.NewReviewService(c.DiscoveryAPI, c.MediaStore, c.Metrics)

	c.SessionHandler = handlers.NewSessionHandler(c.SessionService, c.Projector, cfg.LongPollMaxWait)
	c.EstablishmentHandler = handlers.NewEstablishmentHandler(c.EstablishmentService, c.ReviewService, cfg.OriginLat, cfg.OriginLong)

	c.MuxRouter = mux.NewRouter()
	c.MuxRouter.Use(server.RequestID, server.Logging(c.Metrics))
	c.Router = server.NewRouter(c.SessionHandler, c.EstablishmentHandler, c.Metrics.Handler(), c.MuxRouter)
	c.DiscoverHttpServer = server.NewDiscoverHttpServer(c.Router, c.MuxRouter, cfg.HTTPAddr, c.SessionService.CloseAll)

	return c, nil
}

func (c *Container) newDiscoveryAPI(ctx context.Context) (discovery.DiscoveryAPI, error) {
	cfg := c.Config
	switch cfg.Backend {
	case "rpc":
		log.Printf("Using discovery rpc api at %s", cfg.SupabaseURL)
		httpClient := api.NewHTTPClient(cfg.SupabaseURL).WithRateLimit(cfg.SearchRateLimit, cfg.SearchBurst)
		return discovery.NewDiscoveryApiClient(httpClient, cfg.SupabaseKey), nil

	case "postgres":
		log.Printf("Using postgres discovery backend")
		pool, err := db.ConnectPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, pool.Close)
		return discovery.NewPostgresClient(pool), nil

	case "redis":
		log.Printf("Using redis discovery backend at %s", cfg.RedisAddr)
		dao, err := c.NewRedisEstablishmentDAO(ctx)
		if err != nil {
			return nil, err
		}
		return dao, nil

	case "mock":
		log.Printf("Using mock discovery api with fixture %s", cfg.FixturePath)
		return discovery.NewDiscoveryApiClientMockFromFile(cfg.FixturePath)

	default:
		return nil, fmt.Errorf("%w: unknown backend %q", config.ErrInvalidConfig, cfg.Backend)
	}
}

// NewRedisEstablishmentDAO connects to the configured Redis and returns the
// establishment DAO on top of it. The connection is released by Close.
func (c *Container) NewRedisEstablishmentDAO(ctx context.Context) (*redis.RedisEstablishmentDAO, error) {
	redisInternalClient := goredis.NewClient(&goredis.Options{
		Addr:     c.Config.RedisAddr,
		Password: c.Config.RedisPassword,
		DB:       c.Config.RedisDB,
	})
	c.closers = append(c.closers, func() { redisInternalClient.Close() })

	redisClient, err := db.NewGeoRedisClient(ctx, redisInternalClient)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return redis.NewRedisEstablishmentDAO(redisClient), nil
}

func (c *Container) newMediaStore(ctx context.Context) (storage.MediaStore, error) {
	cfg := c.Config
	if cfg.Env != "prod" && cfg.S3Endpoint == "" {
		log.Printf("Using in-memory media store")
		baseURL := cfg.MediaPublicBaseURL
		if baseURL == "" {
			baseURL = "http://localhost" + cfg.HTTPAddr + "/media"
		}
		return storage.NewMockMediaStore(baseURL), nil
	}

	log.Printf("Using s3 media store, bucket %s", cfg.S3Bucket)
	client, err := storage.NewS3Client(ctx, cfg.S3Region, cfg.S3Endpoint)
	if err != nil {
		return nil, err
	}
	return storage.NewS3MediaStore(client, cfg.S3Bucket, cfg.S3Region, cfg.MediaPublicBaseURL), nil
}

// NewSeedService wires a seed service writing to the configured Redis. The
// returned func releases the connection.
func NewSeedService(ctx context.Context, cfg *config.Config, progress io.Writer) (*services.SeedService, func(), error) {
	c := &Container{Config: cfg}
	dao, err := c.NewRedisEstablishmentDAO(ctx)
	if err != nil {
		c.Close()
		return nil, nil, err
	}
	return services.NewSeedService(dao, progress), c.Close, nil
}

// Close releases backend connections. Sessions are closed by the server on shutdown.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}
