package transition

import "github.com/ignatzorin/petmarket-trust/internal/domain/valueobject"

// Таблицы допустимых переходов по видам сущностей. Пустой список - финальный статус.
var verificationTransitions = map[valueobject.VerificationStatus][]valueobject.VerificationStatus{
	valueobject.VerificationStatusPending: {
		valueobject.VerificationStatusReviewing,
		valueobject.VerificationStatusApproved,
		valueobject.VerificationStatusRejected,
		valueobject.VerificationStatusConditionallyApproved,
		valueobject.VerificationStatusAdditionalDocumentsRequired,
	},
	valueobject.VerificationStatusReviewing: {
		valueobject.VerificationStatusApproved,
		valueobject.VerificationStatusRejected,
		valueobject.VerificationStatusConditionallyApproved,
		valueobject.VerificationStatusAdditionalDocumentsRequired,
	},
	valueobject.VerificationStatusAdditionalDocumentsRequired: {
		valueobject.VerificationStatusReviewing,
		valueobject.VerificationStatusRejected,
	},
	valueobject.VerificationStatusApproved:              {valueobject.VerificationStatusRevoked},
	valueobject.VerificationStatusRejected:              {},
	valueobject.VerificationStatusConditionallyApproved: {},
	valueobject.VerificationStatusRevoked:               {},
}

var reportTransitions = map[valueobject.ReportStatus][]valueobject.ReportStatus{
	valueobject.ReportStatusPending: {
		valueobject.ReportStatusInvestigating,
		valueobject.ReportStatusResolved,
		valueobject.ReportStatusRejected,
	},
	valueobject.ReportStatusInvestigating: {
		valueobject.ReportStatusResolved,
		valueobject.ReportStatusRejected,
	},
	valueobject.ReportStatusResolved: {},
	valueobject.ReportStatusRejected: {},
}

// AllowedTransitions возвращает статусы, в которые можно перейти из current.
func AllowedTransitions(kind valueobject.EntityKind, current string) []string {
	var out []string
	switch kind {
	case valueobject.EntityKindVerification:
		for _, s := range verificationTransitions[valueobject.VerificationStatus(current)] {
			out = append(out, string(s))
		}
	case valueobject.EntityKindReport:
		for _, s := range reportTransitions[valueobject.ReportStatus(current)] {
			out = append(out, string(s))
		}
	}
	return out
}

// CanTransition проверяет пару статусов по таблице.
func CanTransition(kind valueobject.EntityKind, from, to string) bool {
	for _, s := range AllowedTransitions(kind, from) {
		if s == to {
			return true
		}
	}
	return false
}

// isProcessed - решение по сущности уже принято, повторные действия устарели.
func isProcessed(kind valueobject.EntityKind, current string) bool {
	switch kind {
	case valueobject.EntityKindVerification:
		return valueobject.VerificationStatus(current).IsProcessed()
	case valueobject.EntityKindReport:
		return valueobject.ReportStatus(current).IsTerminal()
	}
	return false
}
