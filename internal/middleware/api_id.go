package middleware

import (
	"github.com/labstack/echo/v4"
)

const (
	InstanceIDHeader = "X-Composer-Instance-ID"
	VersionHeader    = "X-Composer-Version"
)

// InstanceIDMiddleware adds the instance ID header to all responses so clients can tell
// which server answered
func InstanceIDMiddleware(instanceID string) echo.MiddlewareFunc {
	return headerMiddleware(InstanceIDHeader, instanceID)
}

// VersionMiddleware adds the server version header to all responses
func VersionMiddleware(version string) echo.MiddlewareFunc {
	return headerMiddleware(VersionHeader, version)
}

func headerMiddleware(name, value string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if value != "" {
				c.Response().Header().Set(name, value)
			}
			return next(c)
		}
	}
}
