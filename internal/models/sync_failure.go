package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SyncFailure - запись журнала несработавших побочных эффектов.
type SyncFailure struct {
	ID         uuid.UUID       `db:"id" json:"id"`
	Effect     string          `db:"effect" json:"effect"`
	EntityKind string          `db:"entity_kind" json:"entity_kind"`
	EntityID   string          `db:"entity_id" json:"entity_id"`
	Payload    json.RawMessage `db:"payload" json:"payload"`
	Error      string          `db:"error" json:"error"`
	Attempts   int             `db:"attempts" json:"attempts"`
	ResolvedAt *time.Time      `db:"resolved_at" json:"resolved_at,omitempty"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time       `db:"updated_at" json:"updated_at"`
}
