package server

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/ideascope/ideascope-backend/internal/handlers"
	"github.com/ideascope/ideascope-backend/internal/middleware"
	"github.com/ideascope/ideascope-backend/internal/utils"
)

type RouterConfig struct {
	AuthHandler    *handlers.AuthHandler
	AuthMiddleware *middleware.AuthMiddleware
	UserHandler    *handlers.UserHandler
	RoomHandler    *handlers.RoomHandler
	IdeaHandler    *handlers.IdeaHandler
	PaperHandler   *handlers.PaperHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()
	router.Use(otelgin.Middleware("ideascope-backend"))

	origins := strings.Split(utils.GetEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000,http://localhost:5173", nil), ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// Public
	router.GET("/healthcheck", handlers.HealthCheck)
	router.POST("/api/register", cfg.AuthHandler.Register)
	router.POST("/api/login", cfg.AuthHandler.Login)

	// Protected
	protected := router.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())

	protected.POST("/refresh", cfg.AuthHandler.Refresh)
	protected.POST("/logout", cfg.AuthHandler.Logout)
	protected.GET("/user", cfg.UserHandler.GetCurrentUser)

	api := protected.Group("/api")
	{
		api.POST("/rooms", cfg.RoomHandler.Create)
		api.GET("/rooms", cfg.RoomHandler.List)
		api.GET("/rooms/:id", cfg.RoomHandler.Get)
		api.POST("/rooms/:id/ideas", cfg.IdeaHandler.Submit)
		api.GET("/rooms/:id/ideas", cfg.IdeaHandler.ListByRoom)
		api.GET("/ideas/:id", cfg.IdeaHandler.Get)
		api.POST("/ideas/compare", cfg.IdeaHandler.Compare)

		api.POST("/papers", cfg.PaperHandler.Submit)
		api.GET("/papers", cfg.PaperHandler.List)
		api.GET("/papers/:id", cfg.PaperHandler.Get)
		api.POST("/papers/:id/ai-detection", cfg.PaperHandler.DetectAIText)
	}

	return router
}
