package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/care-assistant-api/internal/handler"    // import the handlers that implement the endpoints
	"github.com/iliyamo/care-assistant-api/internal/middleware" // import CORS, logging and cache middleware
)

// Deps bundles what the routes need.  Cache wraps the static liveness
// routes only; pass a pass-through middleware to disable it.
type Deps struct {
	Diagnostic *handler.DiagnosticHandler
	Assist     *handler.AssistHandler
	Cache      echo.MiddlewareFunc
}

// RegisterRoutes installs the global middleware and every route on e.
func RegisterRoutes(e *echo.Echo, d Deps) {
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger())
	e.Use(middleware.CORS())

	cache := d.Cache
	if cache == nil {
		cache = func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}

	// Liveness.  The payloads never change, so they may be replayed from Redis.
	e.GET("/", handler.Root, cache)
	e.GET("/api/hello", handler.Hello, cache)

	// /test must reflect live state and is never cached.
	e.GET("/test", d.Diagnostic.Test)

	e.POST("/ai/assist", d.Assist.Assist)
}
