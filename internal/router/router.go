package router

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Majedzeyad/cancare-api/internal/middleware"
	"github.com/Majedzeyad/cancare-api/internal/model"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Router struct {
	engine       *gin.Engine
	auth         *middleware.AuthMiddleware
	healthH      Handler
	authH        Handler
	doctorH      Handler
	nurseH       Handler
	patientH     Handler
	responsibleH Handler
	chatH        Handler
	metrics      *routerMetrics
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	errorTotal      *prometheus.CounterVec
}

type RouterConfig struct {
	RateLimitRPS   float64
	RateLimitBurst int
	MetricsPrefix  string
}

func NewRouter(
	auth *middleware.AuthMiddleware,
	healthH Handler,
	authH Handler,
	doctorH Handler,
	nurseH Handler,
	patientH Handler,
	responsibleH Handler,
	chatH Handler,
	config RouterConfig,
) *Router {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()

	registerValidations()

	r := &Router{
		engine:       engine,
		auth:         auth,
		healthH:      healthH,
		authH:        authH,
		doctorH:      doctorH,
		nurseH:       nurseH,
		patientH:     patientH,
		responsibleH: responsibleH,
		chatH:        chatH,
		metrics:      initRouterMetrics(config.MetricsPrefix),
	}

	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		r.metricsMiddleware(),
	)

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		RPS:   config.RateLimitRPS,
		Burst: config.RateLimitBurst,
	})
	engine.Use(rateLimiter.RateLimit())

	return r
}

func (r *Router) Setup() {
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.engine.Group("/api/v1")

	api.Use(func(c *gin.Context) {
		c.Header("X-API-Version", "1.0")
		c.Next()
	})

	r.healthH.RegisterRoutes(api)
	r.authH.RegisterRoutes(api)

	protected := api.Group("")
	protected.Use(r.auth.Authenticate())

	doctors := protected.Group("")
	doctors.Use(r.auth.RequireRole(model.RoleDoctor))
	r.doctorH.RegisterRoutes(doctors)

	nurses := protected.Group("")
	nurses.Use(r.auth.RequireRole(model.RoleNurse))
	r.nurseH.RegisterRoutes(nurses)

	patients := protected.Group("")
	patients.Use(r.auth.RequireRole(model.RolePatient))
	r.patientH.RegisterRoutes(patients)

	responsibles := protected.Group("")
	responsibles.Use(r.auth.RequireRole(model.RoleResponsible))
	r.responsibleH.RegisterRoutes(responsibles)

	// Chats span roles; any authenticated member may participate.
	r.chatH.RegisterRoutes(protected)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// registerValidations adds the "role" rule to gin's binding validator.
func registerValidations() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		switch model.Role(fl.Field().String()) {
		case model.RoleDoctor, model.RoleNurse, model.RolePatient, model.RoleResponsible:
			return true
		default:
			return false
		}
	})
}

func initRouterMetrics(prefix string) *routerMetrics {
	return &routerMetrics{
		requestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: prefix + "_request_duration_seconds",
				Help: "Duration of HTTP requests in seconds",
			},
			[]string{"method", "path", "status"},
		),
		requestTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		errorTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_errors_total",
				Help: "Total number of HTTP errors",
			},
			[]string{"method", "path", "type"},
		),
	}
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()

		c.Next()

		status := fmt.Sprintf("%d", c.Writer.Status())
		duration := time.Since(start).Seconds()

		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(duration)
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()

		if c.Writer.Status() >= 400 {
			r.metrics.errorTotal.WithLabelValues(c.Request.Method, path, "http").Inc()
		}
	}
}
