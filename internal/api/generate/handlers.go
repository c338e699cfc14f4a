package generate

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/lissto-dev/composer/internal/api/common"
	"github.com/lissto-dev/composer/pkg/kompose"
	"github.com/lissto-dev/composer/pkg/logging"
	"github.com/lissto-dev/composer/pkg/response"
	"github.com/lissto-dev/composer/pkg/serializer"
)

// Handler renders canvas graphs as compose YAML or Kubernetes manifests
type Handler struct {
	serializer     *serializer.ComposeSerializer
	adapter        *kompose.Adapter
	defaultVersion string
}

// NewHandler creates a generate handler. defaultVersion applies to graphs without a version.
func NewHandler(adapter *kompose.Adapter, defaultVersion string) *Handler {
	return &Handler{
		serializer:     serializer.NewComposeSerializer(),
		adapter:        adapter,
		defaultVersion: defaultVersion,
	}
}

func (h *Handler) bind(c echo.Context) (*common.GenerateRequest, error) {
	var req common.GenerateRequest
	if err := c.Bind(&req); err != nil {
		logging.L().Warn("failed to bind generate request", zap.Error(err))
		return nil, response.BadRequest(c, "Invalid request")
	}
	if err := c.Validate(&req); err != nil {
		return nil, response.FromError(c, err)
	}
	if err := req.Data.Validate(); err != nil {
		return nil, response.FromError(c, err)
	}
	return &req, nil
}

// GenerateCompose handles POST /generate/ and /generate/docker-compose
func (h *Handler) GenerateCompose(c echo.Context) error {
	req, err := h.bind(c)
	if req == nil {
		return err
	}

	target := req.TargetVersion(h.defaultVersion)
	code, err := h.serializer.Serialize(req.Data, target)
	if err != nil {
		return response.FromError(c, err)
	}

	logging.L().Debug("generated compose document",
		zap.String("version", target),
		zap.Int("services", len(req.Data.Services)))
	return response.Code(c, code)
}

// GenerateKubernetes handles POST /generate/kubernetes. Converter failures are part of
// the 200 body so the editor can show them next to any partial manifest.
func (h *Handler) GenerateKubernetes(c echo.Context) error {
	req, err := h.bind(c)
	if req == nil {
		return err
	}

	result, err := h.adapter.ConvertGraph(c.Request().Context(), req.Data, req.TargetVersion(h.defaultVersion))
	if err != nil {
		return response.FromError(c, err)
	}
	switch {
	case kompose.IsUnavailable(result.Err):
		logging.L().Error("kubernetes converter is not available", zap.Error(result.Err))
	case result.Err != nil:
		logging.L().Warn("kubernetes conversion reported errors",
			zap.String("error", result.Error),
			zap.Error(result.Err))
	}
	return response.OK(c, result)
}
