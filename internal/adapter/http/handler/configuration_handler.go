package handler

import (
	"time"

	"webhook-ingest-gateway/internal/adapter/http/dto"
	"webhook-ingest-gateway/internal/core/domain"
	"webhook-ingest-gateway/internal/core/ports"
	"webhook-ingest-gateway/pkg/apperror"
	"webhook-ingest-gateway/pkg/response"

	"github.com/gin-gonic/gin"
)

// ConfigurationHandler handles webhook configuration endpoints.
type ConfigurationHandler struct {
	configSvc ports.ConfigurationService
}

// NewConfigurationHandler creates a new ConfigurationHandler.
func NewConfigurationHandler(configSvc ports.ConfigurationService) *ConfigurationHandler {
	return &ConfigurationHandler{configSvc: configSvc}
}

// Register handles POST /api/v1/configurations.
func (h *ConfigurationHandler) Register(c *gin.Context) {
	var req dto.ConfigurationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	cfg := &domain.WebhookConfiguration{
		Source:     domain.SourceKind(req.Source),
		RemoteID:   req.RemoteID,
		URL:        req.URL,
		Secret:     req.Secret,
		EventTypes: req.EventTypes,
		Active:     true,
	}
	if req.Active != nil {
		cfg.Active = *req.Active
	}

	if err := h.configSvc.Register(c.Request.Context(), cfg); err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toConfigurationResponse(*cfg))
}

// ListBySource handles GET /api/v1/configurations/:source.
func (h *ConfigurationHandler) ListBySource(c *gin.Context) {
	source := domain.SourceKind(c.Param("source"))

	configs, err := h.configSvc.ListBySource(c.Request.Context(), source)
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]dto.ConfigurationResponse, 0, len(configs))
	for _, cfg := range configs {
		out = append(out, toConfigurationResponse(cfg))
	}
	response.OK(c, out)
}

// toConfigurationResponse converts the domain record to its DTO. The
// secret is never echoed back.
func toConfigurationResponse(cfg domain.WebhookConfiguration) dto.ConfigurationResponse {
	return dto.ConfigurationResponse{
		ID:         cfg.ID.String(),
		Source:     string(cfg.Source),
		RemoteID:   cfg.RemoteID,
		URL:        cfg.URL,
		EventTypes: cfg.EventTypes,
		Active:     cfg.Active,
		CreatedAt:  cfg.CreatedAt.UTC().Format(time.RFC3339),
	}
}
