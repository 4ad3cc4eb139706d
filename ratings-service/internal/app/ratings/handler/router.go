package handler

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"locaplay/pkg/logger"
	"locaplay/pkg/metrics"
)

// SetupRoutes настраивает все маршруты приложения с использованием Gin
func SetupRoutes(ratingHandler *RatingHandler, commentHandler *CommentHandler, authMiddleware *AuthMiddleware) *gin.Engine {
	router := gin.New()

	// Recovery middleware для обработки panic
	router.Use(gin.Recovery())

	// JSON logging middleware для HTTP-запросов (ELK Stack)
	router.Use(logger.GinLoggerMiddleware())

	// Prometheus metrics middleware
	router.Use(metrics.GinPrometheusMiddleware("ratings-service"))

	// CORS настройки: публичные эндпоинты вызываются прямо с игровых страниц
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"https://*", "http://*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposeHeaders:    []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "ratings-service",
		})
	})

	// Prometheus metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Публичные эндпоинты (без аутентификации)
	ratings := router.Group("/ratings")
	{
		ratings.GET("/", ratingHandler.GetRating)
		ratings.POST("/", ratingHandler.SubmitRating)
	}

	comments := router.Group("/comments")
	{
		comments.GET("/", commentHandler.ListComments)
		comments.POST("/", commentHandler.CreateComment)
		comments.POST("/:comment_id/helpful", commentHandler.AddHelpfulVote)
	}

	// Административные эндпоинты (требуют роли admin)
	admin := router.Group("/admin")
	admin.Use(authMiddleware.Authenticate(), authMiddleware.RequireAdmin())
	{
		admin.PUT("/ratings", ratingHandler.UpsertRating)
		admin.POST("/ratings/recalculate", ratingHandler.Recalculate)
		admin.GET("/comments/:comment_id", commentHandler.GetComment)
		admin.GET("/comments/:comment_id/audit", commentHandler.GetModerationHistory)
		admin.POST("/comments/:comment_id/moderate", commentHandler.Moderate)
		admin.POST("/comments/moderate", commentHandler.BatchModerate)
		admin.DELETE("/comments/:comment_id", commentHandler.DeleteComment)
	}

	return router
}
