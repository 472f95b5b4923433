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

type AdminVerificationHandler struct {
	engine  ModerationEngine
	listing ListingService
}

func NewAdminVerificationHandler(engine ModerationEngine, listing ListingService) *AdminVerificationHandler {
	return &AdminVerificationHandler{engine: engine, listing: listing}
}

// ListPending обслуживает GET /api/admin/verification/pending.
func (h *AdminVerificationHandler) ListPending(c *gin.Context) {
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

	result, err := h.listing.ListVerifications(c.Request.Context(), listing.VerificationQuery{
		Statuses:  c.QueryArray("status"),
		DateFrom:  from,
		DateTo:    to,
		Search:    c.Query("search"),
		SubjectID: c.Query("subjectId"),
		Page:      page,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	items := pagination.Map(*result, func(v *entity.Verification) dto.VerificationResponse {
		return dto.ToVerificationResponse(v, false)
	})
	response.Paginated(c, items.Items, response.Meta(items))
}

// Get обслуживает GET /api/admin/verification/:subjectId.
func (h *AdminVerificationHandler) Get(c *gin.Context) {
	v, err := h.listing.GetVerification(c.Request.Context(), c.Param("subjectId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToVerificationResponse(v, true))
}

// Update обслуживает PUT /api/admin/verification/:subjectId.
func (h *AdminVerificationHandler) Update(c *gin.Context) {
	var req dto.UpdateVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректные данные запроса")
		return
	}

	result, err := h.engine.ApplyTransition(c.Request.Context(), moderation.Command{
		Kind:            valueobject.EntityKindVerification,
		EntityID:        c.Param("subjectId"),
		RequestedStatus: req.Status,
		Actor:           principal(c),
		Message:         req.Message,
		Verification:    req.Payload(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToVerificationResponse(result.Verification, true))
}
