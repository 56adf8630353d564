package handlers

import (
	"net/http"

	"taskboard/backend/internal/config"
	"taskboard/backend/internal/middleware"
	"taskboard/backend/internal/monitoring"
	"taskboard/backend/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type RouterDeps struct {
	DB            *gorm.DB
	Config        *config.Config
	Logger        *zap.Logger
	TaskService   services.TaskService
	ReportService services.ReportService
	AuthService   services.AuthService
	UserService   services.UserService
}

// NewRouter wires middleware and routes. Everything under /api except
// auth token issuance requires a verified identity.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.Recovery(deps.Logger))
	router.Use(middleware.RequestLogger(deps.Logger))
	router.Use(monitoring.MetricsMiddleware())
	router.Use(middleware.RateLimitMiddleware(deps.Config.RateLimit))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{deps.Config.Server.CORSOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	taskHandler := NewTaskHandler(deps.DB, deps.TaskService)
	reportHandler := NewReportHandler(deps.DB, deps.ReportService)
	authHandler := NewAuthHandler(deps.DB, deps.AuthService, deps.UserService)
	userHandler := NewUserHandler(deps.DB, deps.UserService)

	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Taskboard API")
	})
	router.GET("/health", monitoring.HealthHandler)
	router.GET("/metrics", monitoring.MetricsHandler)

	auth := router.Group("/api/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", authHandler.Logout)
		auth.GET("/user", middleware.AuthMiddleware(deps.Config.Auth.JWTSecret), authHandler.CurrentUser)
	}

	api := router.Group("/api", middleware.AuthMiddleware(deps.Config.Auth.JWTSecret))
	{
		api.GET("/tasks", taskHandler.GetTasks)
		api.POST("/tasks", taskHandler.CreateTask)
		api.GET("/tasks/:id", taskHandler.GetTaskByID)
		api.PUT("/tasks/:id", taskHandler.UpdateTask)
		api.DELETE("/tasks/:id", taskHandler.DeleteTask)

		api.GET("/reports/tasks-summary", reportHandler.TasksSummary)

		api.GET("/users", userHandler.GetUsers)
	}

	return router
}
