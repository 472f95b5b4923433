package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/petmarket-trust/internal/domain/valueobject"
	"github.com/ignatzorin/petmarket-trust/internal/pkg/apperror"
)

// Document - ссылка на загруженный документ, сам файл хранится во внешнем хранилище.
type Document struct {
	Type       string    `json:"type"`
	URL        string    `json:"url"`
	MimeType   string    `json:"mimeType,omitempty"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// Verification - заявка заводчика на верификацию, одна на заводчика.
type Verification struct {
	ID                uuid.UUID
	SubjectID         uuid.UUID
	Status            valueobject.VerificationStatus
	Plan              valueobject.BreederPlan
	Level             valueobject.BreederLevel
	Documents         []Document
	SubmittedAt       time.Time
	ReviewedAt        *time.Time
	ReviewedBy        *uuid.UUID
	RevokedAt         *time.Time
	RejectionReason   *string
	Conditions        []string
	RequiredDocuments []string
	ReviewDeadline    *time.Time
	ReapplyAfter      *time.Time
	History           []HistoryEntry
	Version           int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// VerificationDecision - изменения, которые переход вносит в заявку.
type VerificationDecision struct {
	To                valueobject.VerificationStatus
	RejectionReason   *string
	Conditions        []string
	RequiredDocuments []string
	ReviewDeadline    *time.Time
	ReapplyAfter      *time.Time
}

func NewVerification(subjectID uuid.UUID, plan valueobject.BreederPlan, level valueobject.BreederLevel, now time.Time) (*Verification, error) {
	if subjectID == uuid.Nil {
		return nil, apperror.ErrInvalidID
	}
	return &Verification{
		ID:          uuid.New(),
		SubjectID:   subjectID,
		Status:      valueobject.VerificationStatusPending,
		Plan:        plan,
		Level:       level,
		Documents:   []Document{},
		SubmittedAt: now,
		History:     []HistoryEntry{},
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// AddDocuments дописывает документы в конец списка. После решения администратора список закрыт.
func (v *Verification) AddDocuments(docs []Document, now time.Time) error {
	if v.Status.IsProcessed() {
		return apperror.AlreadyProcessed("заявка на верификацию", string(v.Status))
	}
	if len(docs) == 0 {
		return apperror.Validation("необходимо приложить хотя бы один документ")
	}
	for i := range docs {
		if docs[i].UploadedAt.IsZero() {
			docs[i].UploadedAt = now
		}
	}
	v.Documents = append(v.Documents, docs...)
	v.SubmittedAt = now
	v.UpdatedAt = now
	return nil
}

// Apply переводит заявку в новый статус и дописывает журнал.
// Легальность перехода проверяется заранее валидатором.
func (v *Verification) Apply(d VerificationDecision, actorID uuid.UUID, message string, now time.Time) {
	from := v.Status
	v.Status = d.To

	if d.To.IsReviewed() {
		v.ReviewedAt = &now
	} else {
		v.ReviewedAt = nil
	}

	switch d.To {
	case valueobject.VerificationStatusRejected:
		v.RejectionReason = d.RejectionReason
		v.ReapplyAfter = d.ReapplyAfter
	case valueobject.VerificationStatusConditionallyApproved:
		v.Conditions = d.Conditions
	case valueobject.VerificationStatusAdditionalDocumentsRequired:
		v.RequiredDocuments = d.RequiredDocuments
		v.ReviewDeadline = d.ReviewDeadline
	case valueobject.VerificationStatusRevoked:
		v.RevokedAt = &now
		v.RejectionReason = d.RejectionReason
	}
	if from == valueobject.VerificationStatusAdditionalDocumentsRequired {
		v.ReviewDeadline = nil
	}

	actor := actorID
	v.ReviewedBy = &actor
	v.History = append(v.History, HistoryEntry{
		FromStatus: string(from),
		ToStatus:   string(d.To),
		ActorID:    actorID,
		Message:    message,
		Timestamp:  now,
	})
	v.UpdatedAt = now
}

func (v *Verification) IsOwnedBy(userID uuid.UUID) bool {
	return v.SubjectID == userID
}

// Clone возвращает глубокую копию, чтобы мутатор не портил прочитанный снимок.
func (v *Verification) Clone() *Verification {
	c := *v
	c.Documents = append([]Document(nil), v.Documents...)
	c.Conditions = append([]string(nil), v.Conditions...)
	c.RequiredDocuments = append([]string(nil), v.RequiredDocuments...)
	c.History = append([]HistoryEntry(nil), v.History...)
	return &c
}
