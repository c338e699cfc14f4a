package importer

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/lissto-dev/composer/internal/api/common"
	"github.com/lissto-dev/composer/pkg/compose"
	"github.com/lissto-dev/composer/pkg/logging"
	"github.com/lissto-dev/composer/pkg/response"
)

// Handler turns compose documents back into canvas graphs
type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

// Import handles POST /import/. With ?lint=true the compose-go loader's findings are
// returned next to the graph.
func (h *Handler) Import(c echo.Context) error {
	var req common.ImportRequest
	if err := c.Bind(&req); err != nil {
		logging.L().Warn("failed to bind import request", zap.Error(err))
		return response.BadRequest(c, "Invalid request")
	}
	if err := c.Validate(&req); err != nil {
		return response.FromError(c, err)
	}

	g, err := compose.Parse(req.Code, req.Prior())
	if err != nil {
		logging.L().Info("rejected compose document", zap.Error(err))
		return response.FromError(c, err)
	}

	resp := common.ImportResponse{Data: g}
	if c.QueryParam("lint") == "true" {
		resp.Lint = compose.Lint(c.Request().Context(), req.Code)
	}

	logging.L().Debug("imported compose document",
		zap.String("version", g.Version),
		zap.Int("services", len(g.Services)),
		zap.Int("volumes", len(g.Volumes)),
		zap.Int("networks", len(g.Networks)))
	return response.OK(c, resp)
}
