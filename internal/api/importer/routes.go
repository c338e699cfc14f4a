package importer

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes registers import routes
func RegisterRoutes(g *echo.Group, handler *Handler) {
	g.POST("/", handler.Import)
}
