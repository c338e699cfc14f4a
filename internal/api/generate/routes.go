package generate

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes registers generate routes
func RegisterRoutes(g *echo.Group, handler *Handler) {
	g.POST("/", handler.GenerateCompose)
	g.POST("/docker-compose", handler.GenerateCompose)
	g.POST("/kubernetes", handler.GenerateKubernetes)
}
