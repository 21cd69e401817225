package domain

import (
	"time"

	"github.com/google/uuid"
)

// IncomingLog is the append-only audit record for a raw feed payload. One
// row is written for every payload regardless of what validation decides,
// so failed files can be inspected and replayed by hand.
type IncomingLog struct {
	ID           uuid.UUID
	Payload      string
	Errored      bool
	ErrorMessage string
	ReceivedAt   time.Time
}

func NewIncomingLog(payload string) *IncomingLog {
	return &IncomingLog{
		ID:         uuid.New(),
		Payload:    payload,
		ReceivedAt: time.Now().UTC(),
	}
}
