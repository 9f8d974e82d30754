package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/fastprodman/wagerpool/internal/config"
)

// NewServer creates and returns a configured *http.Server for the game API.
func NewServer(cfg config.APIConfig, svc GameService) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           NewRouter(svc, cfg),
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
