package main

import (
	"context"
	"net/http"
	"os"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	authgate "github.com/clipstream/clipstream-backend/internal/auth/gate"
	authapi "github.com/clipstream/clipstream-backend/internal/auth/http"
	authservice "github.com/clipstream/clipstream-backend/internal/auth/service"
	"github.com/clipstream/clipstream-backend/internal/common/clock"
	"github.com/clipstream/clipstream-backend/internal/common/config"
	"github.com/clipstream/clipstream-backend/internal/common/constants"
	"github.com/clipstream/clipstream-backend/internal/common/crypto"
	"github.com/clipstream/clipstream-backend/internal/common/db"
	commonhttp "github.com/clipstream/clipstream-backend/internal/common/http"
	"github.com/clipstream/clipstream-backend/internal/common/logger"
	"github.com/clipstream/clipstream-backend/internal/common/resilience"
	"github.com/clipstream/clipstream-backend/internal/common/server"
	"github.com/clipstream/clipstream-backend/internal/media"
	"github.com/clipstream/clipstream-backend/internal/realtime"
	subsapi "github.com/clipstream/clipstream-backend/internal/subscription/http"
	subsrepo "github.com/clipstream/clipstream-backend/internal/subscription/repository"
	subsservice "github.com/clipstream/clipstream-backend/internal/subscription/service"
	tweetapi "github.com/clipstream/clipstream-backend/internal/tweet/http"
	tweetrepo "github.com/clipstream/clipstream-backend/internal/tweet/repository"
	tweetservice "github.com/clipstream/clipstream-backend/internal/tweet/service"
	userapi "github.com/clipstream/clipstream-backend/internal/user/http"
	userrepo "github.com/clipstream/clipstream-backend/internal/user/repository"
	userservice "github.com/clipstream/clipstream-backend/internal/user/service"
	videoapi "github.com/clipstream/clipstream-backend/internal/video/http"
	videorepo "github.com/clipstream/clipstream-backend/internal/video/repository"
	videoservice "github.com/clipstream/clipstream-backend/internal/video/service"
	"github.com/clipstream/clipstream-backend/internal/viewcount"
)

func main() {
	log, err := logger.New(os.Getenv("LOG_DIR"), "api", os.Getenv("LOG_LEVEL"))
	if err != nil {
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	corsPolicy, err := commonhttp.NewCORSPolicy(cfg.CORSOrigins)
	if err != nil {
		log.Fatalf("failed to build CORS policy: %v", err)
	}

	var hooks []server.ShutdownHook

	// Storage.
	var pool *pgxpool.Pool
	var users userrepo.UserRepository
	var videos videorepo.VideoRepository
	var tweets tweetrepo.TweetRepository
	var subs subsrepo.SubscriptionRepository

	switch cfg.StorageDriver {
	case config.StorageDriverPostgres:
		pool = db.NewPool(log, cfg.DatabaseURL)
		users = userrepo.NewPostgresUserRepository(pool)
		videos = videorepo.NewPostgresVideoRepository(pool)
		tweets = tweetrepo.NewPostgresTweetRepository(pool)
		subs = subsrepo.NewPostgresSubscriptionRepository(pool)
		hooks = append(hooks, func(context.Context) error {
			pool.Close()
			return nil
		})
	default:
		users = userrepo.NewMemoryUserRepository()
		videos = videorepo.NewMemoryVideoRepository()
		tweets = tweetrepo.NewMemoryTweetRepository()
		subs = subsrepo.NewMemorySubscriptionRepository()
		log.Warn("using in-memory storage, data will not survive restarts")
	}

	// Media host.
	var host media.Uploader
	switch cfg.MediaDriver {
	case config.MediaDriverS3:
		host, err = media.NewS3Host(context.Background(), media.S3Config{
			Endpoint:   cfg.S3Endpoint,
			Region:     cfg.S3Region,
			Bucket:     cfg.S3Bucket,
			AccessKey:  cfg.S3AccessKey,
			SecretKey:  cfg.S3SecretKey,
			PublicBase: cfg.MediaPublicBase,
		}, log)
		if err != nil {
			log.Fatalf("failed to initialize media host: %v", err)
		}
	default:
		host, err = media.NewLocalHost(cfg.MediaLocalDir, cfg.MediaPublicBase)
		if err != nil {
			log.Fatalf("failed to initialize media host: %v", err)
		}
	}

	breaker := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		Threshold:  5,
		Timeout:    constants.UploadTimeout,
		ResetAfter: constants.DBPoolHealthCheck,
		Name:       "media_host",
		Logger:     log,
	})
	uploader := media.Guard(media.Instrument(host), breaker)

	stager, err := media.NewStager(cfg.MediaStagingDir)
	if err != nil {
		log.Fatalf("failed to initialize upload staging: %v", err)
	}

	// View counting.
	var views viewcount.Counter = viewcount.NewDirectCounter(videos)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		counter := viewcount.NewRedisCounter(rdb, videos, constants.ViewCountFlushInterval, log)
		views = counter
		hooks = append(hooks, func(context.Context) error {
			counter.Close()
			return rdb.Close()
		})
	}

	// Realtime.
	hub := realtime.NewHub(log)
	hooks = append(hooks, func(context.Context) error {
		hub.Close()
		return nil
	})

	clk := clock.NewRealClock()
	idGen := crypto.NewUUIDGenerator()
	hasher := crypto.NewBcryptHasher(cfg.BcryptCost)

	issuer := authservice.NewTokenIssuer(
		cfg.AccessTokenSecret, cfg.RefreshTokenSecret,
		cfg.AccessTokenTTL, cfg.RefreshTokenTTL, clk,
	)
	ledger := authservice.NewSessionLedger(users)
	auth := authservice.NewAuthService(users, hasher, issuer, ledger, idGen, clk, log)
	authGate := authgate.New(auth, users, log)

	userSvc := userservice.NewUserService(users, subs, videos, uploader, log)
	videoSvc := videoservice.NewVideoService(videos, users, uploader, views, hub, idGen, clk, log)
	tweetSvc := tweetservice.NewTweetService(tweets, hub, idGen, clk, log)
	subsSvc := subsservice.NewSubscriptionService(subs, users, idGen, clk, log)

	authHandler := authapi.NewAuthHandler(auth, cfg.SecureCookies, log)
	userHandler := userapi.NewUserHandler(userSvc, stager, log)
	videoHandler := videoapi.NewVideoHandler(videoSvc, stager, log)
	tweetHandler := tweetapi.NewTweetHandler(tweetSvc, log)
	subsHandler := subsapi.NewSubscriptionHandler(subsSvc, log)
	realtimeHandler := realtime.NewHandler(hub, corsPolicy.Allows, log)

	post := commonhttp.RequireMethod(http.MethodPost)
	get := commonhttp.RequireMethod(http.MethodGet)
	patch := commonhttp.RequireMethod(http.MethodPatch)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", commonhttp.HealthHandler())
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/api/v1/users/register", post(authHandler.Register))
	mux.HandleFunc("/api/v1/users/login", post(authHandler.Login))
	mux.HandleFunc("/api/v1/users/refresh-token", post(authHandler.RefreshToken))
	mux.HandleFunc("/api/v1/users/logout", post(authGate.Protect(authHandler.Logout)))
	mux.HandleFunc("/api/v1/users/change-password", post(authGate.Protect(authHandler.ChangePassword)))

	mux.HandleFunc("/api/v1/users/current-user", get(authGate.Protect(userHandler.CurrentUser)))
	mux.HandleFunc("/api/v1/users/update-account", patch(authGate.Protect(userHandler.UpdateAccount)))
	mux.HandleFunc("/api/v1/users/avatar", patch(authGate.Protect(userHandler.UpdateAvatar)))
	mux.HandleFunc("/api/v1/users/cover-image", patch(authGate.Protect(userHandler.UpdateCoverImage)))
	mux.HandleFunc("/api/v1/users/channel/", get(authGate.Optional(userHandler.ChannelProfile)))
	mux.HandleFunc("/api/v1/users/watch-history", get(authGate.Protect(userHandler.WatchHistory)))

	mux.HandleFunc("/api/v1/videos", authGate.Optional(videoHandler.Collection))
	mux.HandleFunc("/api/v1/videos/", authGate.Optional(videoHandler.Item))

	mux.HandleFunc("/api/v1/tweets", authGate.Protect(tweetHandler.Collection))
	mux.HandleFunc("/api/v1/tweets/", authGate.Optional(tweetHandler.Item))

	mux.HandleFunc("/api/v1/subscriptions/", authGate.Optional(subsHandler.Dispatch))

	mux.Handle("/api/v1/realtime", realtimeHandler)

	rateLimiter := commonhttp.NewAuthRateLimiter()
	handler := commonhttp.BuildBaseHandler(log, corsPolicy, rateLimiter.Middleware(mux))

	srv := server.New(server.DefaultConfig(cfg.HTTPPort), handler)
	server.StartWithGracefulShutdownAndHooks(srv, log, "api", hooks)
}
