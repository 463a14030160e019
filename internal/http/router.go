package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/vedang-raul/taskhub/internal/auth"
	"github.com/vedang-raul/taskhub/internal/cache"
	"github.com/vedang-raul/taskhub/internal/config"
	"github.com/vedang-raul/taskhub/internal/domain/task"
	"github.com/vedang-raul/taskhub/internal/domain/user"
	"github.com/vedang-raul/taskhub/internal/http/handlers"
	"github.com/vedang-raul/taskhub/internal/http/middlewares"
	"github.com/vedang-raul/taskhub/internal/observability"
	"github.com/vedang-raul/taskhub/internal/ratelimit"
)

// Deps carries the collaborators the router wires into handlers. Tests inject
// the memory repos here; cmd/api injects postgres and redis.
type Deps struct {
	Users handlers.UserStore
	Tasks handlers.TaskStore

	JWT         *auth.Manager
	AuthLimiter *ratelimit.AuthLimiter

	Prom           *observability.Prom
	MetricsHandler http.Handler

	Ping func() error
}

func NewRouter(log *slog.Logger, cfg config.Config, deps Deps) *gin.Engine {
	if cfg.Env != "dev" && cfg.Env != "test" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(middlewares.RequireJSON())
	r.Use(middlewares.MaxBodyBytes(1 << 20))
	r.Use(otelgin.Middleware("taskhub"))

	if deps.Prom != nil {
		r.Use(deps.Prom.GinHandleMiddleware())
	}

	rl := middlewares.NewRateLimiter(100, time.Minute)
	r.Use(rl.RateLimiterMiddleware(middlewares.KeyByUserOrIP))

	// health + metrics

	h := handlers.NewHealthHandler(deps.Ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if deps.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(deps.MetricsHandler))
	}

	// wire up guard and handlers

	guard := auth.NewGuard(deps.JWT, deps.Users)
	authMW := middlewares.NewAuthMiddleware(guard, deps.Prom)

	authHandler := handlers.NewAuthHandler(deps.Users, deps.JWT, deps.AuthLimiter, cfg.AdminCode)
	tasksHandler := handlers.NewTasksHandler(deps.Tasks, cache.New[[]task.Task](5*time.Second))

	v1 := r.Group("/api/v1")

	authRoutes := v1.Group("/auth")
	authRoutes.POST("/register", authHandler.Register)
	authRoutes.POST("/login", authHandler.Login)
	authRoutes.GET("/get-all", authMW.RequireAuth(), authMW.RequireRole(user.RoleAdmin), authHandler.ListUsers)
	authRoutes.DELETE("/delete/:id", authMW.RequireAuth(), authMW.RequireRole(user.RoleAdmin), authHandler.DeleteUser)

	tasks := v1.Group("/tasks", authMW.RequireAuth())
	tasks.POST("", authMW.RequireRole(user.RoleAdmin), tasksHandler.CreateTask)
	tasks.GET("", tasksHandler.ListTasks)
	// field-level role check lives in the handler: non-admins may only touch
	// the completed flag.
	tasks.PUT("/:id", tasksHandler.UpdateTask)
	tasks.DELETE("/:id", authMW.RequireRole(user.RoleAdmin), tasksHandler.DeleteTask)

	return r
}
