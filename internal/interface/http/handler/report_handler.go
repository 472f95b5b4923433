package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/petmarket-trust/internal/interface/http/dto"
	"github.com/ignatzorin/petmarket-trust/internal/interface/http/response"
	"github.com/ignatzorin/petmarket-trust/internal/pkg/pagination"
	"github.com/ignatzorin/petmarket-trust/internal/usecase/submission"
)

// ReportHandler - подача жалоб и список своих жалоб.
type ReportHandler struct {
	submissions SubmissionService
	listing     ListingService
}

func NewReportHandler(submissions SubmissionService, listing ListingService) *ReportHandler {
	return &ReportHandler{submissions: submissions, listing: listing}
}

func (h *ReportHandler) Create(c *gin.Context) {
	var req dto.CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректные данные запроса")
		return
	}

	report, err := h.submissions.CreateReport(c.Request.Context(), principal(c), submission.ReportInput{
		SubjectType:    req.SubjectType,
		SubjectID:      req.SubjectID,
		ReportedUserID: req.ReportedUserID,
		Reason:         req.Reason,
		Description:    req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.ToReportResponse(report, false))
}

func (h *ReportHandler) ListMine(c *gin.Context) {
	page, err := pageRequest(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.listing.ListMyReports(c.Request.Context(), principal(c).ID, page)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := pagination.Map(*result, toReportSummary)
	response.Paginated(c, items.Items, response.Meta(items))
}
