package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// CORS allows every origin, method and header with credentials.  Because a
// literal "*" is rejected by browsers on credentialed requests, the request
// Origin is echoed back instead.
func CORS() echo.MiddlewareFunc {
	return echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{
			http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		// empty AllowHeaders reflects Access-Control-Request-Headers
		AllowCredentials:                         true,
		UnsafeWildcardOriginWithAllowCredentials: true,
	})
}
