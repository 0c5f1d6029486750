package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// authSkipPrefixes are paths that never require a key
var authSkipPrefixes = []string{"/health", "/ready"}

// APIKeyAuth checks the Authorization bearer token against apiKey using a
// constant-time comparison. An empty apiKey disables auth entirely, which is
// only acceptable in development.
func APIKeyAuth(apiKey string, logger *slog.Logger) echo.MiddlewareFunc {
	if apiKey == "" && logger != nil {
		logger.Warn("API key not set - API is UNSECURED")
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Path()
			if apiKey == "" || skipAuth(path) {
				return next(c)
			}

			header := c.Request().Header.Get("Authorization")
			if header == "" {
				return authFailure(c, logger, path, "missing authorization header")
			}

			token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
			if subtle.ConstantTimeCompare([]byte(token), []byte(apiKey)) != 1 {
				return authFailure(c, logger, path, "invalid API key")
			}

			return next(c)
		}
	}
}

func skipAuth(path string) bool {
	for _, prefix := range authSkipPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func authFailure(c echo.Context, logger *slog.Logger, path, reason string) error {
	if logger != nil {
		logger.Warn("unauthorized request",
			slog.String("reason", reason),
			slog.String("ip", c.RealIP()),
			slog.String("path", path))
	}
	return echo.NewHTTPError(http.StatusUnauthorized, map[string]string{
		"error": reason,
		"code":  "UNAUTHORIZED",
	})
}
