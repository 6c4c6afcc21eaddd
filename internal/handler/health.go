package handler // declare the package name; contains HTTP handlers

import (
	"net/http" // net/http provides status codes and response helpers

	"github.com/labstack/echo/v4" // echo is the web framework used for this project

	"github.com/iliyamo/care-assistant-api/internal/model"
)

// Root is the liveness check served at "/".  It returns a fixed JSON
// greeting with an HTTP 200 status code.
func Root(c echo.Context) error {
	return c.JSON(http.StatusOK, model.MessageResponse{Message: "Hello from FastAPI Backend!"})
}

// Hello is the liveness check served at "/api/hello".
func Hello(c echo.Context) error {
	return c.JSON(http.StatusOK, model.MessageResponse{Message: "Hello from the backend API!"})
}
