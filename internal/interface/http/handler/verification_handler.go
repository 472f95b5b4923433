package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/petmarket-trust/internal/interface/http/dto"
	"github.com/ignatzorin/petmarket-trust/internal/interface/http/response"
	"github.com/ignatzorin/petmarket-trust/internal/usecase/submission"
)

// VerificationHandler - заявка на верификацию со стороны заводчика.
type VerificationHandler struct {
	submissions SubmissionService
}

func NewVerificationHandler(submissions SubmissionService) *VerificationHandler {
	return &VerificationHandler{submissions: submissions}
}

// Open обслуживает POST /api/verification: 201 для новой заявки, 200 для существующей.
func (h *VerificationHandler) Open(c *gin.Context) {
	var req dto.OpenVerificationRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "некорректные данные запроса")
			return
		}
	}

	v, created, err := h.submissions.OpenVerification(c.Request.Context(), principal(c), req.Plan, req.Level)
	if err != nil {
		response.Error(c, err)
		return
	}

	if created {
		response.Created(c, dto.ToVerificationResponse(v, true))
		return
	}
	response.Success(c, dto.ToVerificationResponse(v, true))
}

func (h *VerificationHandler) SubmitDocuments(c *gin.Context) {
	var req dto.SubmitDocumentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректные данные запроса")
		return
	}

	inputs := make([]submission.DocumentInput, 0, len(req.Documents))
	for _, d := range req.Documents {
		inputs = append(inputs, submission.DocumentInput{Type: d.Type, URL: d.URL})
	}

	v, err := h.submissions.SubmitDocuments(c.Request.Context(), principal(c), inputs)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToVerificationResponse(v, true))
}

func (h *VerificationHandler) Status(c *gin.Context) {
	v, err := h.submissions.GetVerificationStatus(c.Request.Context(), principal(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToVerificationResponse(v, true))
}
