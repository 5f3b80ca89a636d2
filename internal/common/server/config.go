// Package server builds the API's http.Server with timeouts suited to
// a mix of short JSON endpoints and long-lived media traffic.
package server

import (
	"net/http"
	"time"

	"github.com/clipstream/clipstream-backend/internal/common/constants"
)

type Config struct {
	Addr              string
	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
}

// DefaultConfig leaves the body deadlines at zero: video transfers and
// websocket sessions outlive any fixed ReadTimeout or WriteTimeout, so
// slowloris protection comes from ReadHeaderTimeout and IdleTimeout.
func DefaultConfig(port string) Config {
	return Config{
		Addr:              ":" + port,
		ReadHeaderTimeout: constants.ServerReadHeaderTimeout,
		IdleTimeout:       constants.ServerIdleTimeout,
		MaxHeaderBytes:    constants.ServerMaxHeaderBytes,
	}
}

func New(cfg Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}
}
