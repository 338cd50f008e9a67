package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultModel          = "gemini-2.5-flash"
	defaultMaxUploadBytes = 10 << 20
	defaultRasterDPI      = 150
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	CORSAllowOrigin []string
	GoogleAPIKey    string
	GeminiModel     string
	AnalysisTimeout time.Duration
	MaxUploadBytes  int64
	RasterDPI       int
	PdftoppmPath    string
	SessionTTL      time.Duration
}

// ConfigurationError reports a setting the process cannot start without.
type ConfigurationError struct {
	Key    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return e.Key + " " + e.Reason
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	apiKey := strings.TrimSpace(os.Getenv("GOOGLE_API_KEY"))
	if apiKey == "" {
		apiKey = strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	}

	return Config{
		Port:            getEnv("PORT", "8080"),
		Env:             normalizeEnv(getEnv("ENV", "dev")),
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:8080")),
		GoogleAPIKey:    apiKey,
		GeminiModel:     getEnv("GEMINI_MODEL", defaultModel),
		AnalysisTimeout: time.Duration(getInt("ANALYSIS_TIMEOUT_SECONDS", 120)) * time.Second,
		MaxUploadBytes:  int64(getInt("MAX_UPLOAD_BYTES", defaultMaxUploadBytes)),
		RasterDPI:       getInt("PDF_RASTER_DPI", defaultRasterDPI),
		PdftoppmPath:    getEnv("PDFTOPPM_PATH", "pdftoppm"),
		SessionTTL:      time.Duration(getInt("SESSION_TTL_MINUTES", 60)) * time.Minute,
	}
}

// Validate reports settings that must be present before serving.
func (c Config) Validate() error {
	if strings.TrimSpace(c.GoogleAPIKey) == "" {
		return &ConfigurationError{Key: "GOOGLE_API_KEY", Reason: "is not set"}
	}
	if strings.TrimSpace(c.GeminiModel) == "" {
		return &ConfigurationError{Key: "GEMINI_MODEL", Reason: "is empty"}
	}
	return nil
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// getInt falls back to def when the variable is unset, malformed or negative.
func getInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed < 0 {
		return def
	}
	return parsed
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	default:
		return "dev"
	}
}
