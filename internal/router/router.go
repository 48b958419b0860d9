package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/davitp/timesheet-tracker/internal/handler" // import the handlers that implement business logic
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// The health endpoint can be used by load balancers or monitoring
	// systems to verify that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterUser registers the credential endpoints.  Register and login are
// open; logout resolves its own token (header or body) so it is not wrapped
// by the guard; /user/get requires a resolved session.
func RegisterUser(e *echo.Echo, a *handler.AuthHandler, guard echo.MiddlewareFunc) {
	g := e.Group("/user")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/logout", a.Logout)
	g.GET("/get", a.Me, guard)
}

// RegisterTimesheet registers the weekly timesheet endpoints.  Every route
// runs behind the auth guard; the cache middleware sits behind the guard so
// cached entries are keyed by the resolved user.
func RegisterTimesheet(e *echo.Echo, h *handler.TimesheetHandler, guard, cache echo.MiddlewareFunc) {
	g := e.Group("/timesheet")
	g.Use(guard)
	if cache != nil {
		g.Use(cache)
	}
	g.POST("", h.CreateWeek)
	g.GET("", h.ListWeeks)
	g.GET("/:id", h.GetWeek)
	g.POST("/:id/task", h.AddTask)
	g.PUT("/:id/task/:taskId", h.UpdateTask)
	g.DELETE("/:id/task/:taskId", h.DeleteTask)
}
