package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-record-service/internal/adapter/gin/handler"
	"user-record-service/internal/adapter/gin/middleware"
)

// SetupRouter configures the gin engine with middleware and the five routes.
// rateLimiter may be nil.
func SetupRouter(
	userHandler *handler.UserHandler,
	rateLimiter *middleware.RateLimiter,
	log *zap.Logger,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	// A known path with the wrong method or a trailing slash is a plain 404
	// like any other miss.
	router.HandleMethodNotAllowed = false
	router.RedirectTrailingSlash = false
	router.RedirectFixedPath = false

	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	if rateLimiter != nil {
		router.Use(rateLimiter.Middleware())
	}

	router.GET("/", userHandler.Health)
	router.POST("/create", userHandler.CreateUser)
	router.GET("/read", userHandler.ListUsers)
	router.PUT("/update/:id", userHandler.UpdateUser)
	router.DELETE("/delete/:id", userHandler.DeleteUser)

	router.NoRoute(userHandler.NotFound)

	return router
}
