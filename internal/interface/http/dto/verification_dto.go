package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/petmarket-trust/internal/domain/entity"
	"github.com/ignatzorin/petmarket-trust/internal/domain/transition"
)

// UpdateVerificationRequest - решение администратора по заявке.
// Обязательность полей проверяет движок модерации, чтобы порядок ошибок был единым.
type UpdateVerificationRequest struct {
	Status            string     `json:"status"`
	Message           string     `json:"message"`
	Conditions        []string   `json:"conditions"`
	Reasons           []string   `json:"reasons"`
	RequiredDocuments []string   `json:"requiredDocuments"`
	ReapplyAfter      *time.Time `json:"reapplyAfter"`
}

func (r UpdateVerificationRequest) Payload() transition.VerificationPayload {
	return transition.VerificationPayload{
		Conditions:        r.Conditions,
		Reasons:           r.Reasons,
		RequiredDocuments: r.RequiredDocuments,
		ReapplyAfter:      r.ReapplyAfter,
	}
}

type OpenVerificationRequest struct {
	Plan  string `json:"plan"`
	Level string `json:"level"`
}

type DocumentRequest struct {
	Type string `json:"type" binding:"required"`
	URL  string `json:"url" binding:"required"`
}

type SubmitDocumentsRequest struct {
	Documents []DocumentRequest `json:"documents" binding:"required"`
}

type VerificationResponse struct {
	ID                uuid.UUID             `json:"id"`
	SubjectID         uuid.UUID             `json:"subjectId"`
	Status            string                `json:"status"`
	Plan              string                `json:"plan"`
	Level             string                `json:"level"`
	Documents         []entity.Document     `json:"documents"`
	SubmittedAt       time.Time             `json:"submittedAt"`
	ReviewedAt        *time.Time            `json:"reviewedAt"`
	ReviewedBy        *uuid.UUID            `json:"reviewedBy"`
	RevokedAt         *time.Time            `json:"revokedAt,omitempty"`
	RejectionReason   *string               `json:"rejectionReason"`
	Conditions        []string              `json:"conditions"`
	RequiredDocuments []string              `json:"requiredDocuments"`
	ReviewDeadline    *time.Time            `json:"reviewDeadline"`
	ReapplyAfter      *time.Time            `json:"reapplyAfter"`
	History           []entity.HistoryEntry `json:"history,omitempty"`
	Version           int                   `json:"version"`
	CreatedAt         time.Time             `json:"createdAt"`
	UpdatedAt         time.Time             `json:"updatedAt"`
}

// ToVerificationResponse отдаёт заявку целиком; withHistory добавляет журнал переходов.
func ToVerificationResponse(v *entity.Verification, withHistory bool) VerificationResponse {
	resp := VerificationResponse{
		ID:                v.ID,
		SubjectID:         v.SubjectID,
		Status:            string(v.Status),
		Plan:              string(v.Plan),
		Level:             string(v.Level),
		Documents:         nonNilDocs(v.Documents),
		SubmittedAt:       v.SubmittedAt,
		ReviewedAt:        v.ReviewedAt,
		ReviewedBy:        v.ReviewedBy,
		RevokedAt:         v.RevokedAt,
		RejectionReason:   v.RejectionReason,
		Conditions:        nonNil(v.Conditions),
		RequiredDocuments: nonNil(v.RequiredDocuments),
		ReviewDeadline:    v.ReviewDeadline,
		ReapplyAfter:      v.ReapplyAfter,
		Version:           v.Version,
		CreatedAt:         v.CreatedAt,
		UpdatedAt:         v.UpdatedAt,
	}
	if withHistory {
		resp.History = v.History
		if resp.History == nil {
			resp.History = []entity.HistoryEntry{}
		}
	}
	return resp
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilDocs(d []entity.Document) []entity.Document {
	if d == nil {
		return []entity.Document{}
	}
	return d
}
