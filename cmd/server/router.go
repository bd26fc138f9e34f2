package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/Skufu/HeartCheck/internal/heart"
	"github.com/Skufu/HeartCheck/internal/observability"
)

const requestIDHeader = "X-Request-ID"

// ModelInfo describes the loaded artifact to the frontend.
type ModelInfo struct {
	Path        string `json:"path"`
	Description string `json:"description,omitempty"`
	Synthetic   bool   `json:"synthetic"`
}

type Dependencies struct {
	Service  *heart.Service
	Model    ModelInfo
	DB       HealthChecker
	Logger   *zap.Logger
	Metrics  *observability.Metrics
	Gatherer prometheus.Gatherer
}

func setupRouter(deps Dependencies, staticRoot string) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(
		requestID(),
		requestLogger(logger),
		gin.Recovery(),
		limitBodySize(1<<20), // 1MB max body
		cors.New(cors.Config{
			AllowOrigins:  []string{"*"},
			AllowMethods:  []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", requestIDHeader},
			ExposeHeaders: []string{requestIDHeader},
			MaxAge:        12 * time.Hour,
		}),
		otelgin.Middleware(serviceName),
	)

	router.StaticFile("/", filepath.Join(staticRoot, "index.html"))
	router.StaticFile("/styles.css", filepath.Join(staticRoot, "styles.css"))
	router.StaticFile("/app.js", filepath.Join(staticRoot, "app.js"))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/readyz", func(c *gin.Context) {
		if deps.Service == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "model": "not loaded"})
			return
		}
		if deps.DB == nil {
			c.JSON(http.StatusOK, gin.H{"status": "ok", "model": "loaded", "db": "disabled"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := deps.DB.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "degraded",
				"model":  "loaded",
				"db":     fmt.Sprintf("unhealthy: %v", err),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "ok", "model": "loaded", "db": "ok"})
	})

	if deps.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	api := router.Group("/api")
	api.GET("/examples", examplesHandler(deps.Model))
	api.POST("/predict", predictHandler(deps.Service, deps.Metrics, logger))

	return router
}

func examplesHandler(info ModelInfo) gin.HandlerFunc {
	return func(c *gin.Context) {
		categories := gin.H{}
		for _, field := range []string{
			heart.FieldSex, heart.FieldChestPainType, heart.FieldRestingECG,
			heart.FieldExerciseAngina, heart.FieldSTSlope,
		} {
			categories[field] = heart.Categories(field)
		}
		categories[heart.FieldFastingBS] = []int{0, 1}

		c.JSON(http.StatusOK, gin.H{
			"examples":   heart.Examples(),
			"categories": categories,
			"features":   heart.FeatureNames(),
			"model":      info,
		})
	}
}

func predictHandler(svc *heart.Service, metrics *observability.Metrics, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in heart.RawInput
		if err := c.ShouldBind(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{heart.KeyError: "invalid payload: " + err.Error()})
			return
		}

		start := time.Now()
		p, err := svc.Predict(c.Request.Context(), in)
		elapsed := time.Since(start)

		status, outcome := classifyOutcome(err)
		label := ""
		if p != nil {
			label = p.Label
		}
		metrics.ObservePrediction(outcome, label, elapsed)

		fields := []zap.Field{
			zap.String("request_id", c.GetString(requestIDHeader)),
			zap.String("outcome", outcome),
			zap.Duration("elapsed", elapsed),
		}
		if err != nil {
			logger.Warn("prediction rejected", append(fields, zap.Error(err))...)
		} else {
			logger.Debug("prediction served", append(fields, zap.String("label", label))...)
		}

		c.JSON(status, heart.Respond(p, err))
	}
}

func classifyOutcome(err error) (int, string) {
	if err == nil {
		return http.StatusOK, observability.OutcomeSuccess
	}
	var invalid *heart.InvalidValueError
	if errors.As(err, &invalid) {
		return http.StatusUnprocessableEntity, observability.OutcomeInvalid
	}
	var failure *heart.FailureError
	if errors.As(err, &failure) && (failure.Op == heart.OpCoerce || failure.Op == heart.OpDerive) {
		return http.StatusUnprocessableEntity, observability.OutcomeInvalid
	}
	return http.StatusInternalServerError, observability.OutcomeFailure
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDHeader, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("request_id", c.GetString(requestIDHeader)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

func limitBodySize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
