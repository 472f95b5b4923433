package models

import (
	"time"

	"github.com/google/uuid"
)

// Account описывает учётную запись, статусом которой управляет модерация.
type Account struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	Email           string     `db:"email" json:"email"`
	Username        string     `db:"username" json:"username"`
	Role            string     `db:"role" json:"role"`
	VerifiedBreeder bool       `db:"verified_breeder" json:"verified_breeder"`
	ProfilePublic   bool       `db:"profile_public" json:"profile_public"`
	AccountStatus   string     `db:"account_status" json:"account_status"`
	SuspendedUntil  *time.Time `db:"suspended_until" json:"suspended_until,omitempty"`
	StatusReason    *string    `db:"status_reason" json:"status_reason,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}
