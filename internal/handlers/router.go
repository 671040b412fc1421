package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/flowtrack/flowtrack-api/internal/middleware"
	"github.com/flowtrack/flowtrack-api/internal/policy"
	"github.com/flowtrack/flowtrack-api/internal/ratelimit"
	"github.com/flowtrack/flowtrack-api/internal/repository"
	"github.com/flowtrack/flowtrack-api/internal/services"
)

// Dependencies are the services the router wires into handlers.
type Dependencies struct {
	Store        repository.Store
	AuthService  *services.AuthService
	UserService  *services.UserService
	TaskService  *services.TaskService
	LoginLimiter ratelimit.Limiter
}

// NewRouter builds the gin engine with all routes registered.
func NewRouter(deps Dependencies) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.Metrics())

	limiter := deps.LoginLimiter
	if limiter == nil {
		limiter = ratelimit.NewNoopLimiter()
	}

	authHandler := NewAuthHandler(deps.AuthService)
	userHandler := NewUserHandler(deps.UserService)
	taskHandler := NewTaskHandler(deps.TaskService)
	healthHandler := NewHealthHandler(deps.Store)

	requireAuth := middleware.RequireAuth(deps.AuthService)

	r.GET("/health", healthHandler.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Auth routes (public)
	r.POST("/auth/login", middleware.LoginRateLimit(limiter), authHandler.Login)

	// User routes
	users := r.Group("/users")
	{
		users.POST("", middleware.OptionalAuth(deps.AuthService), userHandler.Register)
		users.GET("", requireAuth, middleware.RequirePermission(policy.ActionListEmployeeUsers), userHandler.ListEmployees)
		users.GET("/all", requireAuth, middleware.RequirePermission(policy.ActionListAllUsers), userHandler.ListAll)
		users.GET("/me", requireAuth, userHandler.Me)
		users.GET("/elevated", requireAuth, middleware.RequirePermission(policy.ActionElevatedProbe), userHandler.Elevated)
	}

	// Task routes (protected)
	tasks := r.Group("/tasks")
	tasks.Use(requireAuth)
	{
		tasks.GET("", taskHandler.ListTasks)
		tasks.POST("", middleware.RequirePermission(policy.ActionCreateTask), taskHandler.CreateTask)
		tasks.POST("/generate", middleware.RequirePermission(policy.ActionDraftTasks), taskHandler.GenerateTasks)
		tasks.GET("/:id", taskHandler.GetTask)
		tasks.PATCH("/:id/status", taskHandler.UpdateTaskStatus)
		tasks.PATCH("/:id/assign", middleware.RequirePermission(policy.ActionAssignTask), taskHandler.AssignTask)
	}

	return r
}
