package entity

import (
	"time"

	"github.com/google/uuid"
)

// HistoryEntry - неизменяемая запись журнала переходов, хранится вместе с сущностью.
type HistoryEntry struct {
	FromStatus string    `json:"fromStatus"`
	ToStatus   string    `json:"toStatus"`
	ActorID    uuid.UUID `json:"actorId"`
	Message    string    `json:"message"`
	Timestamp  time.Time `json:"timestamp"`
}

// LastHistoryEntry возвращает последнюю запись журнала или nil.
func LastHistoryEntry(history []HistoryEntry) *HistoryEntry {
	if len(history) == 0 {
		return nil
	}
	return &history[len(history)-1]
}
