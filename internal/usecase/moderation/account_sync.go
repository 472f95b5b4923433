package moderation

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/petmarket-trust/internal/domain/repository"
	"github.com/ignatzorin/petmarket-trust/internal/domain/transition"
	"github.com/ignatzorin/petmarket-trust/internal/domain/valueobject"
	"github.com/ignatzorin/petmarket-trust/internal/pkg/apperror"
)

// AccountSync - изменение аккаунта в журнале сбоев. EntityStatus хранит статус,
// в который перешла сущность; повтор допустим, только пока статус не сменился.
type AccountSync struct {
	transition.AccountChange
	EntityStatus string `json:"entity_status"`
}

// EntityStatusReader читает текущий статус заявки или жалобы.
type EntityStatusReader struct {
	verifications repository.VerificationRepository
	reports       repository.ReportRepository
}

func NewEntityStatusReader(verifications repository.VerificationRepository, reports repository.ReportRepository) *EntityStatusReader {
	return &EntityStatusReader{verifications: verifications, reports: reports}
}

// CurrentStatus для заявки принимает идентификатор заводчика, для жалобы - идентификатор жалобы.
func (r *EntityStatusReader) CurrentStatus(ctx context.Context, kind valueobject.EntityKind, id uuid.UUID) (string, error) {
	switch kind {
	case valueobject.EntityKindVerification:
		v, err := r.verifications.FindBySubjectID(ctx, id)
		if err != nil {
			return "", err
		}
		return string(v.Status), nil
	case valueobject.EntityKindReport:
		rep, err := r.reports.FindByID(ctx, id)
		if err != nil {
			return "", err
		}
		return string(rep.Status), nil
	default:
		return "", apperror.Validation("неизвестный вид сущности: %q", kind)
	}
}
