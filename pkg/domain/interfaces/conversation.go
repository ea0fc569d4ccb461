package interfaces

import (
	"context"

	"github.com/edmon-lab/mentor/pkg/domain/model"
)

// ConversationRepository persists the minimal per-turn history used as
// classifier context
type ConversationRepository interface {
	// AppendTurn stores one conversation turn
	AppendTurn(ctx context.Context, districtID string, turn *model.ConversationTurn) (*model.ConversationTurn, error)

	// RecentTurns returns up to limit most recent turns for an actor,
	// newest first
	RecentTurns(ctx context.Context, districtID string, actorID string, limit int) ([]*model.ConversationTurn, error)
}
