package valueobject

import "github.com/ignatzorin/petmarket-trust/internal/pkg/apperror"

// EntityKind различает потоки модерации.
type EntityKind string

const (
	EntityKindVerification EntityKind = "verification"
	EntityKindReport       EntityKind = "report"
)

func (k EntityKind) IsValid() bool {
	return k == EntityKindVerification || k == EntityKindReport
}

type VerificationStatus string

const (
	VerificationStatusPending                     VerificationStatus = "pending"
	VerificationStatusReviewing                   VerificationStatus = "reviewing"
	VerificationStatusApproved                    VerificationStatus = "approved"
	VerificationStatusRejected                    VerificationStatus = "rejected"
	VerificationStatusConditionallyApproved       VerificationStatus = "conditionally_approved"
	VerificationStatusAdditionalDocumentsRequired VerificationStatus = "additional_documents_required"
	VerificationStatusRevoked                     VerificationStatus = "revoked"
)

func (s VerificationStatus) IsValid() bool {
	switch s {
	case VerificationStatusPending, VerificationStatusReviewing, VerificationStatusApproved,
		VerificationStatusRejected, VerificationStatusConditionallyApproved,
		VerificationStatusAdditionalDocumentsRequired, VerificationStatusRevoked:
		return true
	}
	return false
}

// IsProcessed возвращает true, если решение администратора по заявке уже принято.
// Из approved допускается только отзыв, остальные статусы финальные.
func (s VerificationStatus) IsProcessed() bool {
	switch s {
	case VerificationStatusApproved, VerificationStatusRejected,
		VerificationStatusConditionallyApproved, VerificationStatusRevoked:
		return true
	}
	return false
}

// IsReviewed соответствует статусам, для которых заполняется reviewedAt.
func (s VerificationStatus) IsReviewed() bool {
	switch s {
	case VerificationStatusApproved, VerificationStatusRejected, VerificationStatusConditionallyApproved:
		return true
	}
	return false
}

func NewVerificationStatus(status string) (VerificationStatus, error) {
	s := VerificationStatus(status)
	if !s.IsValid() {
		return "", apperror.Validation("некорректный статус верификации: %q", status)
	}
	return s, nil
}

type ReportStatus string

const (
	ReportStatusPending       ReportStatus = "pending"
	ReportStatusInvestigating ReportStatus = "investigating"
	ReportStatusResolved      ReportStatus = "resolved"
	ReportStatusRejected      ReportStatus = "rejected"
)

func (s ReportStatus) IsValid() bool {
	switch s {
	case ReportStatusPending, ReportStatusInvestigating, ReportStatusResolved, ReportStatusRejected:
		return true
	}
	return false
}

func (s ReportStatus) IsTerminal() bool {
	return s == ReportStatusResolved || s == ReportStatusRejected
}

func NewReportStatus(status string) (ReportStatus, error) {
	s := ReportStatus(status)
	if !s.IsValid() {
		return "", apperror.Validation("некорректный статус жалобы: %q", status)
	}
	return s, nil
}

// ReportAction - итоговое решение по жалобе.
type ReportAction string

const (
	ReportActionNoAction       ReportAction = "no_action"
	ReportActionWarning        ReportAction = "warning"
	ReportActionSuspendAccount ReportAction = "suspend_account"
	ReportActionContentRemoved ReportAction = "content_removed"
)

func (a ReportAction) IsValid() bool {
	switch a {
	case ReportActionNoAction, ReportActionWarning, ReportActionSuspendAccount, ReportActionContentRemoved:
		return true
	}
	return false
}

func NewReportAction(action string) (ReportAction, error) {
	a := ReportAction(action)
	if !a.IsValid() {
		return "", apperror.Validation("некорректное действие по жалобе: %q", action)
	}
	return a, nil
}

type ReportReason string

const (
	ReportReasonInappropriateContent ReportReason = "inappropriate_content"
	ReportReasonFalseInformation     ReportReason = "false_information"
	ReportReasonAnimalAbuse          ReportReason = "animal_abuse"
	ReportReasonFraud                ReportReason = "fraud"
	ReportReasonOther                ReportReason = "other"
)

func (r ReportReason) IsValid() bool {
	switch r {
	case ReportReasonInappropriateContent, ReportReasonFalseInformation,
		ReportReasonAnimalAbuse, ReportReasonFraud, ReportReasonOther:
		return true
	}
	return false
}

// DefaultPriority определяет приоритет новой жалобы по её причине.
func (r ReportReason) DefaultPriority() Priority {
	switch r {
	case ReportReasonAnimalAbuse, ReportReasonFraud:
		return PriorityHigh
	case ReportReasonFalseInformation:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

func NewReportReason(reason string) (ReportReason, error) {
	r := ReportReason(reason)
	if !r.IsValid() {
		return "", apperror.Validation("некорректная причина жалобы: %q", reason)
	}
	return r, nil
}

type SubjectType string

const (
	SubjectTypeBreeder SubjectType = "breeder"
	SubjectTypePost    SubjectType = "post"
	SubjectTypeReview  SubjectType = "review"
)

func NewSubjectType(t string) (SubjectType, error) {
	switch SubjectType(t) {
	case SubjectTypeBreeder, SubjectTypePost, SubjectTypeReview:
		return SubjectType(t), nil
	}
	return "", apperror.Validation("некорректный тип объекта жалобы: %q", t)
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func NewPriority(p string) (Priority, error) {
	switch Priority(p) {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return Priority(p), nil
	}
	return "", apperror.Validation("некорректная срочность: %q", p)
}

// BreederPlan носит информационный характер и не влияет на переходы.
type BreederPlan string

const (
	BreederPlanBasic   BreederPlan = "basic"
	BreederPlanPremium BreederPlan = "premium"
)

func NewBreederPlan(p string) (BreederPlan, error) {
	switch BreederPlan(p) {
	case "":
		return BreederPlanBasic, nil
	case BreederPlanBasic, BreederPlanPremium:
		return BreederPlan(p), nil
	}
	return "", apperror.Validation("некорректный тариф: %q", p)
}

type BreederLevel string

const (
	BreederLevelNew   BreederLevel = "new"
	BreederLevelElite BreederLevel = "elite"
)

func NewBreederLevel(l string) (BreederLevel, error) {
	switch BreederLevel(l) {
	case "":
		return BreederLevelNew, nil
	case BreederLevelNew, BreederLevelElite:
		return BreederLevel(l), nil
	}
	return "", apperror.Validation("некорректный уровень заводчика: %q", l)
}

// Role - роль аутентифицированного пользователя из access токена.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleBreeder Role = "breeder"
	RoleAdopter Role = "adopter"
)

// AccountStatus - состояние аккаунта, которым управляют побочные эффекты модерации.
type AccountStatus string

const (
	AccountStatusActive    AccountStatus = "active"
	AccountStatusSuspended AccountStatus = "suspended"
)
