package model

import (
	"time"

	"github.com/edmon-lab/mentor/pkg/domain/types"
	"github.com/google/uuid"
)

// TurnID is a UUID-based identifier for a conversation turn
type TurnID string

// NewTurnID generates a new UUID v4 TurnID
func NewTurnID() TurnID {
	return TurnID(uuid.New().String())
}

// ConversationTurn is the minimal per-turn record persisted to history.
// Turn-scoped entities (intent, tool results, safety findings) are owned
// by the request and discarded after these fields are saved.
type ConversationTurn struct {
	ID              TurnID
	DistrictID      string
	ActorID         string
	Query           string
	Category        types.IntentCategory
	Confidence      float64
	Urgency         types.Urgency
	Escalated       bool
	ResponseSummary string
	CreatedAt       time.Time
}
