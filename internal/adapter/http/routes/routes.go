package routes

import (
	"todoclient/internal/adapter/http/handler"
	"todoclient/internal/adapter/http/middleware"

	"github.com/gin-gonic/gin"
)

type HandlersConfig struct {
	AuthHandler *handler.AuthHandler
	TodoHandler *handler.TodoHandler
	Sessions    *middleware.Sessions
}

// SetupAuthRouter serves the auth service: login, logout and session status.
func SetupAuthRouter(handlers HandlersConfig, opts middleware.Options) *gin.Engine {
	router := newEngine(opts)

	router.GET("/health", handler.Health(opts.ServiceName))

	public := router.Group("/")
	{
		public.POST("/login", handlers.AuthHandler.Login)
		public.POST("/logout", handlers.AuthHandler.Logout)
		public.GET("/is-logged-in", handlers.AuthHandler.IsLoggedIn)
	}

	return router
}

// SetupTodoRouter serves the todo service. Every route but /health needs a
// session.
func SetupTodoRouter(handlers HandlersConfig, opts middleware.Options) *gin.Engine {
	router := newEngine(opts)

	router.GET("/health", handler.Health(opts.ServiceName))

	protected := router.Group("/")
	protected.Use(handlers.Sessions.RequireSession())
	{
		protected.GET("/to-do", handlers.TodoHandler.GetAllTodos)
		protected.POST("/to-do", handlers.TodoHandler.CreateTodo)
		protected.GET("/to-do/:id", handlers.TodoHandler.GetTodo)
		protected.PUT("/to-do/:id", handlers.TodoHandler.UpdateTodo)
		protected.DELETE("/to-do/:id", handlers.TodoHandler.DeleteTodo)
		protected.GET("/suggestions", handlers.TodoHandler.Suggestions)
		protected.GET("/user", handlers.TodoHandler.CurrentUser)
	}

	return router
}

func newEngine(opts middleware.Options) *gin.Engine {
	if gin.Mode() == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	middleware.SetupGinMiddleware(router, opts)

	return router
}
