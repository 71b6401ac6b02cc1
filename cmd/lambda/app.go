package main

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/strutsgo/lambda-container/internal/dispatch"
	"github.com/strutsgo/lambda-container/internal/proxy"
)

// newApp builds the example web application served through the dispatch
// filter. Any http.Handler works here; Echo stands in for the kind of
// routed, action-style application the container is meant to host.
func newApp() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	e.GET("/ping", func(c echo.Context) error {
		return c.String(http.StatusOK, "pong")
	})

	e.GET("/whoami", func(c echo.Context) error {
		sc := proxy.SecurityContextFrom(c.Request().Context())
		if !sc.Authenticated() {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "anonymous"})
		}
		return c.JSON(http.StatusOK, map[string]string{
			"principal": sc.Principal,
			"scheme":    sc.AuthScheme,
		})
	})

	// Legacy actions report their real status through the override header
	// while the body is committed with a 200.
	e.GET("/legacy/missing", func(c echo.Context) error {
		c.Response().Header().Set(dispatch.StatusCodeHeader, "404")
		return c.String(http.StatusOK, "not found")
	})

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return e
}
