package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/petmarket-trust/internal/domain/entity"
	"github.com/ignatzorin/petmarket-trust/internal/domain/transition"
)

type CreateReportRequest struct {
	SubjectType    string `json:"subjectType"`
	SubjectID      string `json:"subjectId"`
	ReportedUserID string `json:"reportedUserId"`
	Reason         string `json:"reason"`
	Description    string `json:"description"`
}

type ActionDetailsRequest struct {
	SuspensionDays *int   `json:"suspensionDays"`
	Reason         string `json:"reason"`
	Note           string `json:"note"`
}

type UpdateReportRequest struct {
	Status          string                `json:"status"`
	AdminMessage    string                `json:"adminMessage"`
	Action          string                `json:"action"`
	ActionDetails   *ActionDetailsRequest `json:"actionDetails"`
	ReportValid     *bool                 `json:"reportValid"`
	RejectionReason string                `json:"rejectionReason"`
}

func (r UpdateReportRequest) Payload() transition.ReportPayload {
	payload := transition.ReportPayload{
		Action:          r.Action,
		ReportValid:     r.ReportValid,
		RejectionReason: r.RejectionReason,
	}
	if r.ActionDetails != nil {
		payload.ActionDetails = &entity.ActionDetails{
			SuspensionDays: r.ActionDetails.SuspensionDays,
			Reason:         r.ActionDetails.Reason,
			Note:           r.ActionDetails.Note,
		}
	}
	return payload
}

type EscalateReportRequest struct {
	EscalationLevel int    `json:"escalationLevel"`
	Reason          string `json:"reason"`
	Urgency         string `json:"urgency"`
}

type ReportResponse struct {
	ID               uuid.UUID             `json:"id"`
	ReporterID       uuid.UUID             `json:"reporterId"`
	SubjectType      string                `json:"subjectType"`
	SubjectID        uuid.UUID             `json:"subjectId"`
	ReportedUserID   uuid.UUID             `json:"reportedUserId"`
	Reason           string                `json:"reason"`
	Description      string                `json:"description"`
	Status           string                `json:"status"`
	Action           *string               `json:"action"`
	ActionDetails    *entity.ActionDetails `json:"actionDetails"`
	ReportValid      *bool                 `json:"reportValid"`
	RejectionReason  *string               `json:"rejectionReason"`
	Priority         string                `json:"priority"`
	AssignedAdminID  *uuid.UUID            `json:"assignedAdminId"`
	EscalationLevel  int                   `json:"escalationLevel"`
	EscalationReason *string               `json:"escalationReason"`
	EscalatedAt      *time.Time            `json:"escalatedAt"`
	EscalatedBy      *uuid.UUID            `json:"escalatedBy"`
	ResolvedAt       *time.Time            `json:"resolvedAt"`
	AdminMessage     *string               `json:"adminMessage"`
	History          []entity.HistoryEntry `json:"history,omitempty"`
	Version          int                   `json:"version"`
	CreatedAt        time.Time             `json:"createdAt"`
	UpdatedAt        time.Time             `json:"updatedAt"`
}

func ToReportResponse(r *entity.Report, withHistory bool) ReportResponse {
	resp := ReportResponse{
		ID:               r.ID,
		ReporterID:       r.ReporterID,
		SubjectType:      string(r.SubjectType),
		SubjectID:        r.SubjectID,
		ReportedUserID:   r.ReportedUserID,
		Reason:           string(r.Reason),
		Description:      r.Description,
		Status:           string(r.Status),
		ActionDetails:    r.ActionDetails,
		ReportValid:      r.ReportValid,
		RejectionReason:  r.RejectionReason,
		Priority:         string(r.Priority),
		AssignedAdminID:  r.AssignedAdminID,
		EscalationLevel:  r.EscalationLevel,
		EscalationReason: r.EscalationReason,
		EscalatedAt:      r.EscalatedAt,
		EscalatedBy:      r.EscalatedBy,
		ResolvedAt:       r.ResolvedAt,
		AdminMessage:     r.AdminMessage,
		Version:          r.Version,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
	if r.Action != nil {
		action := string(*r.Action)
		resp.Action = &action
	}
	if withHistory {
		resp.History = r.History
		if resp.History == nil {
			resp.History = []entity.HistoryEntry{}
		}
	}
	return resp
}
