// Package api exposes runs and one-off detail lookups over HTTP.
package api

import (
	"context"
	"strconv"
	"time"

	"go-jobscout/internal/metrics"
	"go-jobscout/internal/models"
	"go-jobscout/internal/runs"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type RunService interface {
	Submit(ctx context.Context, q models.SearchQuery) (*runs.Run, error)
	Execute(ctx context.Context, q models.SearchQuery) (*runs.Run, error)
	Get(ctx context.Context, id string) (*runs.Run, error)
	Cancel(ctx context.Context, id string) error
}

type SkillsLookup interface {
	Skills(ctx context.Context, url string) ([]string, error)
}

// Archive reads records kept after a run left the run store. It is nil
// when no database is configured.
type Archive interface {
	ListingsForRun(ctx context.Context, runID string) ([]models.ListingRecord, error)
}

type Handler struct {
	runs    RunService
	skills  SkillsLookup
	archive Archive
	log     *zap.Logger
}

func NewRouter(svc RunService, skills SkillsLookup, archive Archive, log *zap.Logger) *gin.Engine {
	h := &Handler{runs: svc, skills: skills, archive: archive, log: log}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(log))
	r.Use(prometheusMiddleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition", "Location"},
		MaxAge:        12 * time.Hour,
	}))

	r.GET("/health", h.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/search", h.search)
	r.GET("/job-details", h.jobDetails)

	r.POST("/runs", h.createRun)
	r.GET("/runs/:id", h.getRun)
	r.DELETE("/runs/:id", h.cancelRun)
	r.GET("/runs/:id/download", h.download)
	r.GET("/runs/:id/listings", h.listings)

	return r
}

func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		//route template keeps label cardinality bounded
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.HttpRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HttpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if c.Request.URL.Path == "/metrics" || c.Request.URL.Path == "/health" {
			return
		}
		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}
