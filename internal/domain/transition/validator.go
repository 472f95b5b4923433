package transition

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/petmarket-trust/internal/domain/entity"
	"github.com/ignatzorin/petmarket-trust/internal/domain/valueobject"
	"github.com/ignatzorin/petmarket-trust/internal/pkg/apperror"
)

const maxSuspensionDays = 365

// Subject - участники, которых касается переход.
type Subject struct {
	EntityID       uuid.UUID
	SubjectID      uuid.UUID
	ReporterID     uuid.UUID
	ReportedUserID uuid.UUID
	SubjectType    valueobject.SubjectType
}

type VerificationPayload struct {
	Conditions        []string
	Reasons           []string
	RequiredDocuments []string
	ReapplyAfter      *time.Time
	ReviewDeadline    *time.Time
}

type ReportPayload struct {
	Action          string
	ActionDetails   *entity.ActionDetails
	ReportValid     *bool
	RejectionReason string
}

// Request - всё, что нужно валидатору для решения о переходе.
type Request struct {
	Kind         valueobject.EntityKind
	Current      string
	Requested    string
	ActorRole    valueobject.Role
	Message      string
	Subject      Subject
	Verification VerificationPayload
	Report       ReportPayload
	Now          time.Time
}

// Validate решает, допустим ли переход, и строит план побочных эффектов.
// Ничего не изменяет: результат используется движком модерации.
func Validate(req Request) (*Plan, error) {
	if !req.Kind.IsValid() {
		return nil, apperror.Validation("неизвестный вид сущности: %q", req.Kind)
	}
	if req.ActorRole != valueobject.RoleAdmin {
		return nil, apperror.ErrAdminOnly
	}

	if isProcessed(req.Kind, req.Current) && !CanTransition(req.Kind, req.Current, req.Requested) {
		return nil, apperror.AlreadyProcessed(entityTitle(req.Kind), req.Current)
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, apperror.ErrMessageRequired
	}
	if req.Now.IsZero() {
		req.Now = time.Now()
	}

	switch req.Kind {
	case valueobject.EntityKindVerification:
		return validateVerification(req, message)
	default:
		return validateReport(req, message)
	}
}

func validateVerification(req Request, message string) (*Plan, error) {
	to, err := valueobject.NewVerificationStatus(req.Requested)
	if err != nil {
		return nil, err
	}
	if !CanTransition(req.Kind, req.Current, string(to)) {
		return nil, invalidTransition(req.Current, string(to))
	}

	p := req.Verification
	decision := &entity.VerificationDecision{To: to}
	plan := &Plan{
		Kind:         req.Kind,
		From:         req.Current,
		To:           string(to),
		Message:      message,
		Verification: decision,
	}
	subject := req.Subject.SubjectID
	payload := map[string]any{"status": string(to), "message": message}

	switch to {
	case valueobject.VerificationStatusReviewing:
		plan.Notifications = append(plan.Notifications, intent(subject, TemplateVerificationReviewing, payload))

	case valueobject.VerificationStatusApproved:
		plan.AccountChange = &AccountChange{
			UserID:          subject,
			Kind:            AccountChangeVerificationGranted,
			VerifiedBreeder: boolPtr(true),
			ProfilePublic:   boolPtr(true),
			Reason:          message,
		}
		plan.Notifications = append(plan.Notifications, intent(subject, TemplateVerificationApproved, payload))

	case valueobject.VerificationStatusRejected:
		reason := joinNonEmpty(p.Reasons)
		if reason == "" {
			return nil, apperror.Validation("для отклонения заявки необходимо указать причины")
		}
		if p.ReapplyAfter != nil && !p.ReapplyAfter.After(req.Now) {
			return nil, apperror.Validation("дата повторной подачи должна быть в будущем")
		}
		decision.RejectionReason = &reason
		decision.ReapplyAfter = p.ReapplyAfter
		payload["reason"] = reason
		if p.ReapplyAfter != nil {
			payload["reapplyAfter"] = p.ReapplyAfter
		}
		plan.Notifications = append(plan.Notifications, intent(subject, TemplateVerificationRejected, payload))

	case valueobject.VerificationStatusConditionallyApproved:
		conditions := trimAll(p.Conditions)
		if len(conditions) == 0 {
			return nil, apperror.Validation("для условного одобрения необходимо указать условия")
		}
		decision.Conditions = conditions
		payload["conditions"] = conditions
		plan.Notifications = append(plan.Notifications, intent(subject, TemplateVerificationConditional, payload))

	case valueobject.VerificationStatusAdditionalDocumentsRequired:
		docs := trimAll(p.RequiredDocuments)
		if len(docs) == 0 {
			return nil, apperror.Validation("необходимо перечислить требуемые документы")
		}
		decision.RequiredDocuments = docs
		decision.ReviewDeadline = p.ReviewDeadline
		payload["requiredDocuments"] = docs
		if p.ReviewDeadline != nil {
			payload["deadline"] = p.ReviewDeadline
		}
		plan.Notifications = append(plan.Notifications, intent(subject, TemplateVerificationDocuments, payload))

	case valueobject.VerificationStatusRevoked:
		reason := joinNonEmpty(p.Reasons)
		if reason == "" {
			return nil, apperror.Validation("для отзыва верификации необходимо указать причины")
		}
		decision.RejectionReason = &reason
		plan.AccountChange = &AccountChange{
			UserID:          subject,
			Kind:            AccountChangeVerificationRevoked,
			VerifiedBreeder: boolPtr(false),
			ProfilePublic:   boolPtr(false),
			Reason:          reason,
		}
		payload["reason"] = reason
		plan.Notifications = append(plan.Notifications, intent(subject, TemplateVerificationRevoked, payload))
	}

	return plan, nil
}

func validateReport(req Request, message string) (*Plan, error) {
	to, err := valueobject.NewReportStatus(req.Requested)
	if err != nil {
		return nil, err
	}
	if !CanTransition(req.Kind, req.Current, string(to)) {
		return nil, invalidTransition(req.Current, string(to))
	}

	p := req.Report
	if p.Action != "" && to != valueobject.ReportStatusResolved {
		return nil, apperror.Validation("действие по жалобе указывается только при статусе resolved")
	}

	decision := &entity.ReportDecision{To: to, ReportValid: p.ReportValid}
	plan := &Plan{
		Kind:    req.Kind,
		From:    req.Current,
		To:      string(to),
		Message: message,
		Report:  decision,
	}
	s := req.Subject
	reporterPayload := map[string]any{
		"reportId": s.EntityID,
		"status":   string(to),
		"message":  message,
	}

	switch to {
	case valueobject.ReportStatusInvestigating:
		plan.Notifications = append(plan.Notifications, intent(s.ReporterID, TemplateReportInvestigating, reporterPayload))

	case valueobject.ReportStatusRejected:
		reason := strings.TrimSpace(p.RejectionReason)
		if reason == "" {
			return nil, apperror.Validation("для отклонения жалобы необходимо указать rejectionReason")
		}
		decision.RejectionReason = &reason
		if decision.ReportValid == nil {
			decision.ReportValid = boolPtr(false)
		}
		reporterPayload["reason"] = reason
		plan.Notifications = append(plan.Notifications, intent(s.ReporterID, TemplateReportRejected, reporterPayload))

	case valueobject.ReportStatusResolved:
		if p.Action == "" {
			return nil, apperror.Validation("для закрытия жалобы необходимо указать action")
		}
		action, err := valueobject.NewReportAction(p.Action)
		if err != nil {
			return nil, err
		}
		if p.ReportValid != nil && !*p.ReportValid && action != valueobject.ReportActionNoAction {
			return nil, apperror.Validation("жалоба признана необоснованной, допустимо только действие no_action")
		}
		decision.Action = &action
		decision.ActionDetails = p.ActionDetails
		reporterPayload["action"] = string(action)
		plan.Notifications = append(plan.Notifications, intent(s.ReporterID, TemplateReportResolved, reporterPayload))

		if err := planReportAction(plan, req, action, message); err != nil {
			return nil, err
		}
	}

	return plan, nil
}

// planReportAction добавляет эффекты, направленные на нарушителя.
func planReportAction(plan *Plan, req Request, action valueobject.ReportAction, message string) error {
	s := req.Subject
	details := req.Report.ActionDetails
	target := map[string]any{
		"reportId":    s.EntityID,
		"subjectType": string(s.SubjectType),
		"subjectId":   s.SubjectID,
		"message":     message,
	}

	switch action {
	case valueobject.ReportActionWarning:
		plan.Notifications = append(plan.Notifications, intent(s.ReportedUserID, TemplateAccountWarning, target))

	case valueobject.ReportActionContentRemoved:
		plan.Notifications = append(plan.Notifications, intent(s.ReportedUserID, TemplateContentRemoved, target))

	case valueobject.ReportActionSuspendAccount:
		reason := message
		var days *int
		if details != nil {
			if strings.TrimSpace(details.Reason) != "" {
				reason = strings.TrimSpace(details.Reason)
			}
			days = details.SuspensionDays
		}
		change := &AccountChange{
			UserID: s.ReportedUserID,
			Kind:   AccountChangeSuspended,
			Status: valueobject.AccountStatusSuspended,
			Reason: reason,
		}
		if days != nil {
			if *days < 1 || *days > maxSuspensionDays {
				return apperror.Validation("срок блокировки должен быть от 1 до %d дней", maxSuspensionDays)
			}
			until := req.Now.AddDate(0, 0, *days)
			d := *days
			change.SuspensionDays = &d
			change.SuspendedUntil = &until
			target["suspensionDays"] = d
			target["suspendedUntil"] = until
		}
		target["reason"] = reason
		plan.AccountChange = change
		plan.Notifications = append(plan.Notifications, intent(s.ReportedUserID, TemplateAccountSuspended, target))
	}
	return nil
}

func invalidTransition(from, to string) error {
	return apperror.Validation("недопустимый переход из статуса %s в %s", from, to)
}

func entityTitle(kind valueobject.EntityKind) string {
	if kind == valueobject.EntityKindReport {
		return "жалоба"
	}
	return "заявка на верификацию"
}

func intent(recipient uuid.UUID, template string, payload map[string]any) NotificationIntent {
	copied := make(map[string]any, len(payload))
	for k, v := range payload {
		copied[k] = v
	}
	return NotificationIntent{RecipientID: recipient, Template: template, Payload: copied}
}

func trimAll(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if t := strings.TrimSpace(item); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func joinNonEmpty(items []string) string {
	return strings.Join(trimAll(items), "; ")
}
