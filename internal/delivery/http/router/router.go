// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"scribe/internal/delivery/http/middleware"
	"scribe/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// RouterParams holds the handlers and middleware injected by Fx.
type RouterParams struct {
	fx.In

	AuthHandler         *handler.AuthHandler
	PostHandler         *handler.PostHandler
	UploadHandler       *handler.UploadHandler
	AuthMiddleware      *middleware.AuthMiddleware
	RequestIDMiddleware *middleware.RequestIDMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	authHandler         *handler.AuthHandler
	postHandler         *handler.PostHandler
	uploadHandler       *handler.UploadHandler
	authMiddleware      *middleware.AuthMiddleware
	requestIDMiddleware *middleware.RequestIDMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		authHandler:         params.AuthHandler,
		postHandler:         params.PostHandler,
		uploadHandler:       params.UploadHandler,
		authMiddleware:      params.AuthMiddleware,
		requestIDMiddleware: params.RequestIDMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.Use(r.requestIDMiddleware.Handle)

	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	// Auth routes
	authGroup := e.Group("/auth")
	{
		authGroup.POST("/register", r.authHandler.Register)
		authGroup.POST("/login", r.authHandler.Login)
		authGroup.GET("/me", r.authHandler.Me, r.authMiddleware.Authenticate)
	}

	// Post routes; reads are public, mutations require authentication.
	postGroup := e.Group("/posts")
	{
		postGroup.GET("", r.postHandler.GetAll)
		postGroup.GET("/:id", r.postHandler.GetOne)
		postGroup.GET("/:id/qr", r.postHandler.ShareQR)
		postGroup.POST("", r.postHandler.Create, r.authMiddleware.Authenticate)
		postGroup.PATCH("/:id", r.postHandler.Update, r.authMiddleware.Authenticate)
		postGroup.DELETE("/:id", r.postHandler.Delete, r.authMiddleware.Authenticate)
	}

	// Tag frequency aggregate
	e.GET("/tags", r.postHandler.TopTags)

	// Uploads; writing requires authentication, reading does not.
	e.POST("/upload", r.uploadHandler.Upload, r.authMiddleware.Authenticate)
	e.DELETE("/upload/:filename", r.uploadHandler.Delete, r.authMiddleware.Authenticate)
	e.GET("/uploads/:filename", r.uploadHandler.Serve)
}
