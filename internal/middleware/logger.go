package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/lissto-dev/composer/pkg/logging"
)

// LoggerMiddleware logs every request through the zap logger
func LoggerMiddleware() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				logging.L().Warn("request failed", append(fields, zap.Error(v.Error))...)
				return nil
			}
			logging.L().Info("request", fields...)
			return nil
		},
	})
}

// CORSMiddleware provides CORS support for the canvas editor
func CORSMiddleware() echo.MiddlewareFunc {
	return middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{echo.GET, echo.POST, echo.OPTIONS},
		AllowHeaders:  []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		ExposeHeaders: []string{InstanceIDHeader, VersionHeader},
	})
}

// RecoverMiddleware provides panic recovery
func RecoverMiddleware() echo.MiddlewareFunc {
	return middleware.Recover()
}
