package repository

import (
	"time"

	"github.com/google/uuid"
)

// VerificationFilter - условия выборки заявок для администратора.
type VerificationFilter struct {
	Statuses  []string
	DateFrom  *time.Time
	DateTo    *time.Time
	Search    string
	SubjectID *uuid.UUID
	Limit     int
	Offset    int
}

// ReportFilter - условия выборки жалоб.
type ReportFilter struct {
	Statuses       []string
	Reason         string
	DateFrom       *time.Time
	DateTo         *time.Time
	Search         string
	SubjectID      *uuid.UUID
	ReportedUserID *uuid.UUID
	ReporterID     *uuid.UUID
	Limit          int
	Offset         int
}

// ReportStatistics - агрегаты по жалобам для панели администратора.
type ReportStatistics struct {
	TotalReports         int `db:"total_reports" json:"totalReports"`
	PendingReports       int `db:"pending_reports" json:"pendingReports"`
	InvestigatingReports int `db:"investigating_reports" json:"investigatingReports"`
	ResolvedReports      int `db:"resolved_reports" json:"resolvedReports"`
	RejectedReports      int `db:"rejected_reports" json:"rejectedReports"`
}
