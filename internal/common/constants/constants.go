package constants

import "time"

const (
	UsernameMinLength = 3
	UsernameMaxLength = 32
	PasswordMinLength = 8
	PasswordMaxLength = 72
	FullnameMaxLength = 100
	SecretMinLength   = 32

	TitleMaxLength       = 150
	DescriptionMaxLength = 5000
	TweetMaxLength       = 280

	DefaultPageLimit = 20
	MaxPageLimit     = 100

	DefaultMaxRequestSize = 1 << 20
	MaxVideoUploadSize    = 200 * 1024 * 1024
	MaxImageUploadSize    = 6 * 1024 * 1024

	DBPoolMaxConns        = 25
	DBPoolMinConns        = 5
	DBPoolConnMaxLifetime = time.Hour
	DBPoolConnMaxIdleTime = 30 * time.Minute
	DBPoolHealthCheck     = time.Minute
	DBPoolConnectTimeout  = 5 * time.Second
	DBPoolMaxAttempts     = 10
	DBPoolRetryDelay      = time.Second

	ServerReadHeaderTimeout = 10 * time.Second
	ServerIdleTimeout       = 120 * time.Second
	ServerMaxHeaderBytes    = 1 << 20

	ShutdownTimeout = 30 * time.Second
	DrainTimeout    = 10 * time.Second

	RequestTimeout = 10 * time.Second
	UploadTimeout  = 10 * time.Minute

	RateLimitCleanupInterval = 5 * time.Minute

	ViewCountFlushInterval = 30 * time.Second

	RealtimeWriteWait   = 10 * time.Second
	RealtimePongWait    = 60 * time.Second
	RealtimePingPeriod  = 54 * time.Second
	RealtimeSendBufSize = 32

	DefaultHTTPPort         = "8080"
	DefaultBcryptCost       = 10
	DefaultAccessTokenTTL   = 30 * time.Minute
	DefaultRefreshTokenTTL  = 10 * 24 * time.Hour
	DefaultUploadStagingDir = "/tmp/clipstream-uploads"
)

type ContextKey string

const TraceIDKey ContextKey = "trace_id"
