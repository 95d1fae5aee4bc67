package handler

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rollcall/internal/auth"
	"rollcall/internal/httpmiddleware"
)

// RouterConfig holds the middleware settings for NewRouter.
type RouterConfig struct {
	CORSOrigins []string
	Limiter     httpmiddleware.Limiter // nil disables rate limiting
	TrustProxy  bool
}

// NewRouter wires middleware and routes.
func NewRouter(h *Handler, rc RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	if !rc.TrustProxy {
		_ = r.SetTrustedProxies(nil)
	}

	cc := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:       24 * time.Hour,
	}
	if len(rc.CORSOrigins) == 0 || (len(rc.CORSOrigins) == 1 && rc.CORSOrigins[0] == "*") {
		cc.AllowAllOrigins = true
	} else {
		cc.AllowOrigins = rc.CORSOrigins
		cc.AllowCredentials = true
	}
	r.Use(cors.New(cc))
	r.Use(httpmiddleware.SecurityHeaders())
	if rc.Limiter != nil {
		r.Use(httpmiddleware.RateLimit(rc.Limiter))
	}

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", h.Healthz)

	v1 := r.Group("/v1")
	{
		v1.POST("/sessions", h.CreateSession)
		v1.POST("/sessions/refresh", h.RefreshSession)

		v1.GET("/records", h.ListRecords)
		v1.GET("/classes", h.ListClasses)
		v1.GET("/summary", h.Summary)
		v1.GET("/reports", h.Report)
		v1.GET("/attendance/export.csv", h.ExportCSV)
		v1.GET("/sync/status", h.SyncStatus)
	}

	authed := r.Group("/v1", auth.TeacherAuth(h.issuer))
	{
		authed.PUT("/records/:id/status", h.SetStatus)
		authed.POST("/records/mark-present", h.MarkPresent)
		authed.POST("/sync", h.Sync)
		authed.GET("/sync/history", h.SyncHistory)
	}

	return r
}
