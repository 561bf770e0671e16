package httpapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/support-qa/backend/internal/auth"
	"github.com/support-qa/backend/internal/config"
	"github.com/support-qa/backend/internal/db"
	"github.com/support-qa/backend/internal/http/handlers"
	"github.com/support-qa/backend/internal/http/middleware"
	"github.com/support-qa/backend/internal/sentiment"

	_ "github.com/support-qa/backend/docs"
)

func Router(cfg config.Config, store *db.Store, adapter sentiment.Adapter, authSvc *auth.Service, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.CORSAllowed == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = []string{cfg.CORSAllowed}
	}
	r.Use(cors.New(corsCfg))

	h := &handlers.Handler{
		Store:         store,
		Sentiment:     adapter,
		Auth:          authSvc,
		Validator:     validator.New(),
		Logger:        logger,
		TZOffsetHours: cfg.ReportTZOffsetHours,
	}

	r.GET("/healthz", h.Healthz)
	r.POST("/api/auth/login", h.Login)

	api := r.Group("/api")
	api.Use(middleware.Session(authSvc))
	{
		api.GET("/users", h.UsersList)
		api.POST("/users", h.UserCreate)
		api.PUT("/users/:id", h.UserUpdate)
		api.POST("/users/:id/status", h.UserSetStatus)

		api.GET("/evaluations", h.EvaluationsList)
		api.POST("/evaluations", h.EvaluationCreate)
		api.GET("/evaluations/export", h.EvaluationsExport)

		api.GET("/metrics", h.Metrics)
		api.GET("/metrics/sentiment", h.SentimentMetrics)

		api.GET("/reviews", h.ReviewsList)
		api.POST("/reviews", h.ReviewCreate)

		api.POST("/sentiment", h.SentimentAnalyze)
		api.POST("/sentiment/batch", h.SentimentBatch)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
