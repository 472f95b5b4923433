package transition

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/petmarket-trust/internal/domain/entity"
	"github.com/ignatzorin/petmarket-trust/internal/domain/valueobject"
)

type AccountChangeKind string

const (
	AccountChangeVerificationGranted AccountChangeKind = "verification_granted"
	AccountChangeVerificationRevoked AccountChangeKind = "verification_revoked"
	AccountChangeSuspended           AccountChangeKind = "suspended"
)

// AccountChange - изменение статуса аккаунта, которое должно последовать за переходом.
type AccountChange struct {
	UserID          uuid.UUID                 `json:"userId"`
	Kind            AccountChangeKind         `json:"kind"`
	Status          valueobject.AccountStatus `json:"status,omitempty"`
	VerifiedBreeder *bool                     `json:"verifiedBreeder,omitempty"`
	ProfilePublic   *bool                     `json:"profilePublic,omitempty"`
	SuspensionDays  *int                      `json:"suspensionDays,omitempty"`
	SuspendedUntil  *time.Time                `json:"suspendedUntil,omitempty"`
	Reason          string                    `json:"reason,omitempty"`
}

// NotificationIntent - запрос на отправку уведомления, доставка не гарантируется.
type NotificationIntent struct {
	RecipientID uuid.UUID      `json:"recipientId"`
	Template    string         `json:"template"`
	Payload     map[string]any `json:"payload"`
}

// Plan описывает легальный переход и все его побочные эффекты.
type Plan struct {
	Kind          valueobject.EntityKind
	From          string
	To            string
	Message       string
	Verification  *entity.VerificationDecision
	Report        *entity.ReportDecision
	AccountChange *AccountChange
	Notifications []NotificationIntent
}

// Шаблоны уведомлений.
const (
	TemplateVerificationReviewing   = "verification.reviewing"
	TemplateVerificationApproved    = "verification.approved"
	TemplateVerificationRejected    = "verification.rejected"
	TemplateVerificationConditional = "verification.conditionally_approved"
	TemplateVerificationDocuments   = "verification.additional_documents_required"
	TemplateVerificationRevoked     = "verification.revoked"
	TemplateReportInvestigating     = "report.investigating"
	TemplateReportResolved          = "report.resolved"
	TemplateReportRejected          = "report.rejected"
	TemplateAccountWarning          = "account.warning"
	TemplateAccountSuspended        = "account.suspended"
	TemplateContentRemoved          = "content.removed"
)

func boolPtr(v bool) *bool {
	return &v
}
