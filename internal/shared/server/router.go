package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-checker/internal/analyses"
	"resume-checker/internal/services/health"
	"resume-checker/internal/sessions"
	"resume-checker/internal/shared/config"
	"resume-checker/internal/shared/metrics"
	"resume-checker/internal/shared/server/middleware"
	"resume-checker/internal/shared/server/respond"
	"resume-checker/internal/ui"
)

// RouterDeps holds the handlers the router mounts.
type RouterDeps struct {
	Config          config.Config
	Sessions        *sessions.Store
	AnalysisHandler *analyses.Handler
	Health          *health.Service
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.SetHTMLTemplate(ui.MustTemplates())

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	healthSvc := deps.Health
	if healthSvc == nil {
		healthSvc = health.NewService()
	}
	r.GET("/metrics", metrics.Handler())
	r.GET("/api/v1/health", func(c *gin.Context) {
		report := healthSvc.Status(c.Request.Context())
		status := http.StatusOK
		if !report.OK {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, report)
	})

	store := deps.Sessions
	if store == nil {
		store = sessions.NewStore(deps.Config.SessionTTL)
	}
	app := r.Group("/", middleware.Session(store, deps.Config.Env == "production"))
	if deps.AnalysisHandler != nil {
		deps.AnalysisHandler.RegisterPageRoutes(app)
		deps.AnalysisHandler.RegisterRoutes(app.Group("/api/v1"))
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
