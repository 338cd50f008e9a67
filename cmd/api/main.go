package main

import (
	"context"
	"errors"
	"log"

	"resume-checker/internal/bootstrap"
	"resume-checker/internal/shared/config"
	"resume-checker/internal/shared/server"
	"resume-checker/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()
	telemetry.Configure(cfg.Env)

	if err := cfg.Validate(); err != nil {
		var cfgErr *config.ConfigurationError
		if errors.As(err, &cfgErr) {
			log.Fatalf("configuration error: %v; set it in the environment or a .env file", cfgErr)
		}
		log.Fatalf("configuration error: %v", err)
	}

	app, err := bootstrap.Build(context.Background(), cfg, bootstrap.Overrides{})
	if err != nil {
		log.Fatalf("bootstrap: %v", err)
	}

	addr := server.Addr(cfg.Port)
	log.Printf("Starting API server on %s", addr)

	if err := app.Router.Run(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
