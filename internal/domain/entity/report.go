package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/petmarket-trust/internal/domain/valueobject"
	"github.com/ignatzorin/petmarket-trust/internal/pkg/apperror"
)

const (
	maxReportDescription = 2000
	MaxEscalationLevel   = 3
)

// ActionDetails уточняет решение по жалобе.
type ActionDetails struct {
	SuspensionDays *int   `json:"suspensionDays,omitempty"`
	Reason         string `json:"reason,omitempty"`
	Note           string `json:"note,omitempty"`
}

// Report - жалоба пользователя на заводчика, публикацию или отзыв.
type Report struct {
	ID               uuid.UUID
	ReporterID       uuid.UUID
	SubjectType      valueobject.SubjectType
	SubjectID        uuid.UUID
	ReportedUserID   uuid.UUID
	Reason           valueobject.ReportReason
	Description      string
	Status           valueobject.ReportStatus
	Action           *valueobject.ReportAction
	ActionDetails    *ActionDetails
	ReportValid      *bool
	RejectionReason  *string
	Priority         valueobject.Priority
	AssignedAdminID  *uuid.UUID
	EscalationLevel  int
	EscalationReason *string
	EscalatedAt      *time.Time
	EscalatedBy      *uuid.UUID
	ResolvedAt       *time.Time
	AdminMessage     *string
	History          []HistoryEntry
	Version          int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ReportDecision - изменения, которые переход вносит в жалобу.
type ReportDecision struct {
	To              valueobject.ReportStatus
	Action          *valueobject.ReportAction
	ActionDetails   *ActionDetails
	ReportValid     *bool
	RejectionReason *string
}

type NewReportInput struct {
	ReporterID     uuid.UUID
	SubjectType    valueobject.SubjectType
	SubjectID      uuid.UUID
	ReportedUserID uuid.UUID
	Reason         valueobject.ReportReason
	Description    string
}

func NewReport(in NewReportInput, now time.Time) (*Report, error) {
	if in.ReporterID == uuid.Nil || in.SubjectID == uuid.Nil {
		return nil, apperror.ErrInvalidID
	}
	if in.SubjectType == valueobject.SubjectTypeBreeder && in.ReportedUserID == uuid.Nil {
		in.ReportedUserID = in.SubjectID
	}
	if in.ReportedUserID == uuid.Nil {
		return nil, apperror.Validation("для жалобы на %s требуется reportedUserId", in.SubjectType)
	}
	if in.ReportedUserID == in.ReporterID {
		return nil, apperror.Validation("нельзя пожаловаться на самого себя")
	}
	description := strings.TrimSpace(in.Description)
	if description == "" {
		return nil, apperror.Validation("описание жалобы обязательно")
	}
	if len([]rune(description)) > maxReportDescription {
		return nil, apperror.Validation("описание жалобы не должно превышать %d символов", maxReportDescription)
	}

	return &Report{
		ID:             uuid.New(),
		ReporterID:     in.ReporterID,
		SubjectType:    in.SubjectType,
		SubjectID:      in.SubjectID,
		ReportedUserID: in.ReportedUserID,
		Reason:         in.Reason,
		Description:    description,
		Status:         valueobject.ReportStatusPending,
		Priority:       in.Reason.DefaultPriority(),
		History:        []HistoryEntry{},
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// Apply переводит жалобу в новый статус и дописывает журнал.
func (r *Report) Apply(d ReportDecision, actorID uuid.UUID, message string, now time.Time) {
	from := r.Status
	r.Status = d.To

	switch d.To {
	case valueobject.ReportStatusInvestigating:
		admin := actorID
		r.AssignedAdminID = &admin
	case valueobject.ReportStatusResolved:
		r.Action = d.Action
		r.ActionDetails = d.ActionDetails
		r.ReportValid = d.ReportValid
		r.ResolvedAt = &now
	case valueobject.ReportStatusRejected:
		r.RejectionReason = d.RejectionReason
		r.ReportValid = d.ReportValid
		r.ResolvedAt = &now
	}

	msg := message
	r.AdminMessage = &msg
	r.History = append(r.History, HistoryEntry{
		FromStatus: string(from),
		ToStatus:   string(d.To),
		ActorID:    actorID,
		Message:    message,
		Timestamp:  now,
	})
	r.UpdatedAt = now
}

// Escalate меняет только метаданные эскалации, статус и журнал не трогает.
func (r *Report) Escalate(level int, reason string, urgency valueobject.Priority, actorID uuid.UUID, now time.Time) error {
	if level < 1 || level > MaxEscalationLevel {
		return apperror.Validation("уровень эскалации должен быть от 1 до %d", MaxEscalationLevel)
	}
	if level <= r.EscalationLevel {
		return apperror.Validation("уровень эскалации должен быть выше текущего (%d)", r.EscalationLevel)
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return apperror.Validation("причина эскалации обязательна")
	}

	actor := actorID
	r.EscalationLevel = level
	r.EscalationReason = &reason
	r.Priority = urgency
	r.EscalatedAt = &now
	r.EscalatedBy = &actor
	r.UpdatedAt = now
	return nil
}

func (r *Report) Clone() *Report {
	c := *r
	c.History = append([]HistoryEntry(nil), r.History...)
	if r.ActionDetails != nil {
		details := *r.ActionDetails
		c.ActionDetails = &details
	}
	return &c
}
