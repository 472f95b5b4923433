package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/petmarket-trust/internal/domain/entity"
	"github.com/ignatzorin/petmarket-trust/internal/domain/valueobject"
	"github.com/ignatzorin/petmarket-trust/internal/interface/http/dto"
	"github.com/ignatzorin/petmarket-trust/internal/interface/http/response"
	"github.com/ignatzorin/petmarket-trust/internal/pkg/pagination"
	"github.com/ignatzorin/petmarket-trust/internal/usecase/listing"
	"github.com/ignatzorin/petmarket-trust/internal/usecase/moderation"
)

type AdminReportHandler struct {
	engine  ModerationEngine
	listing ListingService
}

func NewAdminReportHandler(engine ModerationEngine, listing ListingService) *AdminReportHandler {
	return &AdminReportHandler{engine: engine, listing: listing}
}

// List обслуживает GET /api/admin/reports; statistics считается по тем же фильтрам без статуса.
func (h *AdminReportHandler) List(c *gin.Context) {
	page, err := pageRequest(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	from, to, err := dateRange(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.listing.ListReports(c.Request.Context(), listing.ReportQuery{
		Statuses:       c.QueryArray("status"),
		Reason:         c.Query("reason"),
		DateFrom:       from,
		DateTo:         to,
		Search:         c.Query("search"),
		SubjectID:      c.Query("subjectId"),
		ReportedUserID: c.Query("reportedUserId"),
		Page:           page,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	items := pagination.Map(result.Page, toReportSummary)
	response.PaginatedWithStatistics(c, items.Items, response.Meta(items), result.Statistics)
}

func (h *AdminReportHandler) Get(c *gin.Context) {
	r, err := h.listing.GetReport(c.Request.Context(), c.Param("reportId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToReportResponse(r, true))
}

// Update обслуживает PUT /api/admin/reports/:reportId.
func (h *AdminReportHandler) Update(c *gin.Context) {
	var req dto.UpdateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректные данные запроса")
		return
	}

	result, err := h.engine.ApplyTransition(c.Request.Context(), moderation.Command{
		Kind:            valueobject.EntityKindReport,
		EntityID:        c.Param("reportId"),
		RequestedStatus: req.Status,
		Actor:           principal(c),
		Message:         req.AdminMessage,
		Report:          req.Payload(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToReportResponse(result.Report, true))
}

// Escalate обслуживает POST /api/admin/reports/:reportId/escalate; статус жалобы не меняется.
func (h *AdminReportHandler) Escalate(c *gin.Context) {
	var req dto.EscalateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректные данные запроса")
		return
	}

	report, err := h.engine.Escalate(c.Request.Context(), moderation.EscalateCommand{
		ReportID: c.Param("reportId"),
		Actor:    principal(c),
		Level:    req.EscalationLevel,
		Reason:   req.Reason,
		Urgency:  req.Urgency,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToReportResponse(report, true))
}

func toReportSummary(r *entity.Report) dto.ReportResponse {
	return dto.ToReportResponse(r, false)
}
