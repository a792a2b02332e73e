package handler

import (
	"strconv"
	"time"

	"webhook-ingest-gateway/internal/adapter/http/dto"
	"webhook-ingest-gateway/internal/core/domain"
	"webhook-ingest-gateway/internal/core/ports"
	"webhook-ingest-gateway/pkg/apperror"
	"webhook-ingest-gateway/pkg/response"

	"github.com/gin-gonic/gin"
)

// EventHandler handles the dashboard read path.
type EventHandler struct {
	querySvc ports.QueryService
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(querySvc ports.QueryService) *EventHandler {
	return &EventHandler{querySvc: querySvc}
}

// List handles GET /api/v1/events.
func (h *EventHandler) List(c *gin.Context) {
	params, err := parseListParams(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	rows, err := h.querySvc.ListEvents(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.EventResponse, 0, len(rows))
	for _, row := range rows {
		items = append(items, dto.EventResponse{
			Source:     string(row.Source),
			EventType:  row.EventType,
			Identifier: row.Identifier,
			Actor:      row.Actor,
			ReceivedAt: row.ReceivedAt.UTC().Format(time.RFC3339),
			Status:     string(row.Status),
			Payload:    row.Payload,
		})
	}

	response.OK(c, dto.EventListResponse{
		Items:  items,
		Count:  len(items),
		Limit:  params.Limit,
		Offset: params.Offset,
	})
}

// Summary handles GET /api/v1/events/summary.
func (h *EventHandler) Summary(c *gin.Context) {
	windowDays := 7
	if raw := c.Query("window_days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			response.Error(c, apperror.ErrInvalidQueryParam("window_days"))
			return
		}
		windowDays = n
	}

	rows, err := h.querySvc.Summarize(c.Request.Context(), windowDays)
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]dto.SummaryRowResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, dto.SummaryRowResponse{
			Day:       row.Day.UTC().Format("2006-01-02"),
			Source:    string(row.Source),
			EventType: row.EventType,
			Total:     row.Total,
			Succeeded: row.Succeeded,
			Failed:    row.Failed,
		})
	}

	response.OK(c, dto.SummaryResponse{WindowDays: windowDays, Rows: out})
}

func parseListParams(c *gin.Context) (ports.EventListParams, error) {
	var params ports.EventListParams

	if raw := c.Query("source"); raw != "" {
		source := domain.SourceKind(raw)
		params.Source = &source
	}
	if raw := c.Query("event_type"); raw != "" {
		params.EventType = &raw
	}
	if raw := c.Query("status"); raw != "" {
		status := domain.EventStatus(raw)
		params.Status = &status
	}

	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return params, apperror.ErrInvalidQueryParam("limit")
		}
		params.Limit = n
	}
	if raw := c.Query("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return params, apperror.ErrInvalidQueryParam("offset")
		}
		params.Offset = n
	}

	if raw := c.Query("start_date"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return params, apperror.ErrInvalidQueryParam("start_date")
		}
		params.StartDate = &t
	}
	if raw := c.Query("end_date"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return params, apperror.ErrInvalidQueryParam("end_date")
		}
		params.EndDate = &t
	}

	return params, nil
}
