// Package router sets up the API routes for the application.
package router

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/veridex/veridex/consts"
	"github.com/veridex/veridex/internal/api/handler"
	"github.com/veridex/veridex/internal/api/middleware"
	"github.com/veridex/veridex/internal/client"
	"github.com/veridex/veridex/internal/config"
	"github.com/veridex/veridex/internal/indexer"
	"github.com/veridex/veridex/internal/pipeline"
)

// Setup configures all API routes. The emitter may be nil when no indexer
// is configured.
func Setup(r *gin.Engine, p *pipeline.Pipeline, similarity *client.SimilarityClient,
	emitter *indexer.Emitter, cfg *config.Config) {
	// Apply global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger(&middleware.LoggerConfig{
		AccessLog: cfg.Logging.AccessLog,
	}))
	r.Use(middleware.CORS(cfg.Server.CORSOrigins))
	r.Use(middleware.RequestID())
	r.Use(middleware.ErrorHandler(cfg.Server.Debug))

	// Apply OpenTelemetry tracing middleware
	r.Use(otelgin.Middleware(consts.ServiceName))

	systemHandler := handler.NewSystemHandler()
	r.GET("/", systemHandler.Index)
	r.GET("/test", systemHandler.Test)
	r.GET("/health", systemHandler.Health)

	// API v1 routes
	v1 := r.Group("/api/v1")
	v1.GET("/uptime", systemHandler.Uptime)

	// ============== Auth routes ==============

	authHandler := handler.NewAuthHandler(cfg.Auth)
	if cfg.Auth.Enabled {
		v1.POST("/auth/login", authHandler.Login)
	}

	// ============== Review routes ==============

	reviewHandler := handler.NewReviewHandler(p, similarity, emitter, cfg.Review)

	// The reviewer group carries JWT auth when enabled; the service runs
	// open inside a trusted network otherwise.
	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.JWTAuth(authHandler))
	}
	{
		protected.GET("/claim/search", reviewHandler.ClaimSearch)
		protected.GET("/reviewer/credibility/claim", reviewHandler.ClaimCredibility)
		protected.GET("/claim/predict/credibility", reviewHandler.ClaimCredibility)
		protected.GET("/reviewer/credibility/website", reviewHandler.WebsiteCredibility)
		protected.GET("/reviewer/credibility/webpage", reviewHandler.WebpageCredibility)
		protected.POST("/reviewer/credibility/webpage", reviewHandler.WebpageCredibility)
		protected.POST("/reviewer/credibility/tweet", reviewHandler.TweetCredibility)
		protected.POST("/tweet/claim/credibility", reviewHandler.TweetCredibility)
	}

	// Internal claim search is service-to-service and guarded by basic
	// auth instead of JWT.
	v1.POST("/claim/internal-search",
		middleware.BasicAuth(cfg.Upstream.InternalAuth),
		reviewHandler.InternalClaimSearch)
}
