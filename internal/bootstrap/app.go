package bootstrap

import (
	"context"
	"errors"
	"os/exec"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-checker/internal/analyses"
	"resume-checker/internal/extract"
	"resume-checker/internal/llm"
	"resume-checker/internal/llm/gemini"
	"resume-checker/internal/services/health"
	"resume-checker/internal/sessions"
	"resume-checker/internal/shared/config"
	"resume-checker/internal/shared/server"
	"resume-checker/internal/shared/telemetry"
)

// App holds shared dependencies.
type App struct {
	Config          config.Config
	Router          *gin.Engine
	Sessions        *sessions.Store
	Extractor       *extract.Extractor
	LLM             llm.Client
	AnalysesService *analyses.Service
	AnalysisHandler *analyses.Handler
	Health          *health.Service
}

// Overrides replaces external collaborators, mainly for tests.
type Overrides struct {
	LLM        llm.Client
	Rasterizer extract.Rasterizer
}

// Build wires the application. Without an LLM override the configuration must
// carry a Gemini API key; a missing key is returned as *config.ConfigurationError.
func Build(ctx context.Context, cfg config.Config, ov Overrides) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}

	client := ov.LLM
	if client == nil {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		gc, err := gemini.NewClient(ctx, cfg.GoogleAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, err
		}
		client = gc
	}

	raster := ov.Rasterizer
	var pdftoppm *extract.Pdftoppm
	if raster == nil {
		pdftoppm = extract.NewPdftoppm(cfg.PdftoppmPath, cfg.RasterDPI)
		raster = pdftoppm
	}

	app := &App{
		Config:    cfg,
		Sessions:  sessions.NewStore(cfg.SessionTTL),
		Extractor: extract.New(raster),
		LLM:       client,
		Health:    health.NewService(),
	}
	app.AnalysesService = &analyses.Service{
		Extractor: app.Extractor,
		LLM:       app.LLM,
		Timeout:   cfg.AnalysisTimeout,
	}
	app.AnalysisHandler = analyses.NewHandler(app.AnalysesService, cfg.MaxUploadBytes)

	if pdftoppm != nil {
		path := pdftoppm.Path
		app.Health.Register("pdftoppm", func(ctx context.Context) error {
			if _, err := exec.LookPath(path); err != nil {
				return errors.New("pdftoppm not found on PATH")
			}
			return nil
		})
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          app.Config,
		Sessions:        app.Sessions,
		AnalysisHandler: app.AnalysisHandler,
		Health:          app.Health,
	})

	telemetry.Info("bootstrap.ready", map[string]any{
		"env":          cfg.Env,
		"model":        cfg.GeminiModel,
		"timeout_ms":   cfg.AnalysisTimeout.Milliseconds(),
		"max_upload":   cfg.MaxUploadBytes,
		"raster_dpi":   cfg.RasterDPI,
		"session_ttl":  cfg.SessionTTL.String(),
		"llm_override": ov.LLM != nil,
	})
	return app, nil
}
