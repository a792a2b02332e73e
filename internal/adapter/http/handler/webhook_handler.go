package handler

import (
	"encoding/json"

	"webhook-ingest-gateway/internal/adapter/http/dto"
	"webhook-ingest-gateway/internal/core/domain"
	"webhook-ingest-gateway/internal/core/ports"
	"webhook-ingest-gateway/pkg/apperror"
	"webhook-ingest-gateway/pkg/response"

	"github.com/gin-gonic/gin"
)

// signatureHeaders maps each source to the header carrying its webhook
// signature. Verification happens upstream; the value is stored for audit.
var signatureHeaders = map[domain.SourceKind]string{
	domain.SourceGitHub: "X-Hub-Signature-256",
	domain.SourceLinear: "Linear-Signature",
	domain.SourceSlack:  "X-Slack-Signature",
}

// deliveryHeaders maps each source to its provider-assigned delivery id
// header, where one exists.
var deliveryHeaders = map[domain.SourceKind]string{
	domain.SourceGitHub: "X-GitHub-Delivery",
	domain.SourceLinear: "Linear-Delivery",
}

// WebhookHandler handles inbound webhook events.
type WebhookHandler struct {
	ingestSvc ports.IngestService
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(ingestSvc ports.IngestService) *WebhookHandler {
	return &WebhookHandler{ingestSvc: ingestSvc}
}

// Ingest handles POST /api/v1/webhooks/:source. Direct mode answers 201
// after the canonical insert; batched mode answers 202 on acceptance,
// before durability is confirmed.
func (h *WebhookHandler) Ingest(c *gin.Context) {
	source := domain.SourceKind(c.Param("source"))
	if !source.Valid() {
		response.Error(c, apperror.ErrUnknownSource(c.Param("source")))
		return
	}

	raw, err := c.GetRawData()
	if err != nil {
		response.Error(c, apperror.ErrInvalidBody())
		return
	}

	if !json.Valid(raw) {
		response.Error(c, apperror.ErrInvalidBody())
		return
	}

	headers := make(map[string]string, len(c.Request.Header))
	for name, values := range c.Request.Header {
		if len(values) > 0 {
			headers[name] = values[0]
		}
	}

	req := ports.IngestRequest{
		Source:     source,
		RawPayload: raw,
		Headers:    headers,
	}
	if sig := c.GetHeader(signatureHeaders[source]); sig != "" {
		req.Signature = &sig
	}
	if name, ok := deliveryHeaders[source]; ok {
		if id := c.GetHeader(name); id != "" {
			req.DeliveryID = &id
		}
	}

	result, err := h.ingestSvc.Ingest(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	ack := toWebhookAck(result)
	if result.Status == domain.EventStatusPending {
		response.Accepted(c, ack)
		return
	}
	response.Created(c, ack)
}

func toWebhookAck(result *ports.IngestResult) dto.WebhookAck {
	return dto.WebhookAck{EventID: result.EventID, Status: string(result.Status)}
}
