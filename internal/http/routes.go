package http

import (
	"time"

	"taskmanager/internal/config"
	"taskmanager/internal/events"
	"taskmanager/internal/http/handlers"
	"taskmanager/internal/http/middleware"
	"taskmanager/internal/repository"
	"taskmanager/internal/service"
	"taskmanager/internal/ws"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Deps is everything the router needs, built once in main.
type Deps struct {
	Config  *config.Config
	Log     *zap.Logger
	Users   repository.UserStore
	Tasks   repository.TaskStore
	Redis   *redis.Client
	Broker  events.Publisher
	Checks  map[string]handlers.Checker
	Version string
}

// NewRouter builds the engine with the global middleware chain and all routes.
// The returned hub must be closed on shutdown.
func NewRouter(d Deps) (*gin.Engine, *ws.Hub) {
	r := gin.New()
	// ClientIP feeds the per-IP limiter, so X-Forwarded-For is honoured only from listed proxies
	if err := r.SetTrustedProxies(d.Config.TrustedProxies); err != nil {
		d.Log.Warn("invalid trusted proxies, trusting none", zap.Strings("proxies", d.Config.TrustedProxies), zap.Error(err))
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(
		middleware.RequestLogger(d.Log),
		middleware.Metrics(),
		middleware.Recovery(d.Log),
		middleware.ErrorHandler(d.Log),
	)
	if cfg, ok := corsConfig(d.Config.CORSAllowedOrigins, d.Config.CORSAllowAll); ok {
		r.Use(cors.New(cfg))
	}

	hub := RegisterRoutes(r, d)
	return r, hub
}

// corsConfig reports false when cross-origin requests are not enabled at all.
func corsConfig(origins []string, allowAll bool) (cors.Config, bool) {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	switch {
	case len(origins) > 0:
		cfg.AllowOrigins = origins
	case allowAll:
		// cookies need a concrete origin, so echo the caller's back
		cfg.AllowOriginFunc = func(string) bool { return true }
	default:
		return cfg, false
	}
	return cfg, true
}

func RegisterRoutes(r *gin.Engine, d Deps) *ws.Hub {
	cfg := d.Config

	hub := ws.NewHub(d.Log.Named("ws"))
	publisher := events.Multi{hub}
	if d.Broker != nil {
		publisher = append(publisher, d.Broker)
	}

	authService := service.NewAuthService(
		d.Users,
		service.NewPasswordHasher(cfg.BcryptCost),
		service.NewTokenService(cfg.JWTSecret, cfg.SessionTTL),
		d.Log.Named("auth"),
	)
	h := handlers.NewHandler(
		authService,
		service.NewTaskService(d.Tasks, d.Users, publisher, d.Log.Named("tasks")),
		service.NewUserService(d.Users, publisher, d.Log.Named("users")),
		handlers.CookieConfig{
			Name:   cfg.CookieName,
			Domain: cfg.CookieDomain,
			Secure: cfg.CookieSecure,
			MaxAge: cfg.SessionTTL,
		},
	)
	healthHandler := handlers.NewHealthHandler(d.Version, d.Checks)

	authn := middleware.NewAuth(authService, cfg.CookieName)
	limiter := middleware.NewRateLimiter(d.Redis, d.Log.Named("ratelimit"))

	// Health checks and metrics (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := r.Group("/auth")
	auth.Use(limiter.ByIP("auth", cfg.AuthRateLimit))
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.GET("/logout", h.Logout)
	}

	api := r.Group("")
	api.Use(limiter.ByIP("api", cfg.APIRateLimit), authn.IsAuthenticated())
	registerAPIRoutes(api, h, authn, limiter.ByIdentity("write", cfg.WriteRateLimit))

	api.GET("/ws/tasks", ws.HandleWS(hub, cfg.CORSAllowedOrigins, cfg.CORSAllowAll, d.Log.Named("ws")))

	return hub
}

func registerAPIRoutes(api *gin.RouterGroup, h *handlers.Handler, authn *middleware.Auth, writeRL gin.HandlerFunc) {
	// Task reads
	api.GET("/tasks", h.GetTasks)
	api.GET("/tasksByUser/:user_id", h.GetTasksByUser)
	api.GET("/taskById/:task_id", h.GetTaskByID)
	api.GET("/tasksByStatus", h.GetTasksByStatus)
	api.GET("/tasksByPriority", h.GetTasksByPriority)
	api.GET("/tasksByDate", h.GetTasksByDate)

	// Task writes (managers only, per user write limit)
	api.POST("/createTask", authn.IsManager(), writeRL, h.CreateTask)
	api.PUT("/updateTask/:task_id", authn.IsManager(), writeRL, h.UpdateTask)

	// Users
	api.GET("/users", h.GetUsers)
	api.PATCH("/user/update/:id", authn.IsOwner("id"), h.UpdateUser)
	api.DELETE("/user/delete/:id", authn.IsManager(), h.DeleteUser)
}
