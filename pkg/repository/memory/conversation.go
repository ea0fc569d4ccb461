package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/edmon-lab/mentor/pkg/domain/model"
)

type conversationRepository struct {
	mu sync.RWMutex
	// districtID -> stored turns
	turns map[string][]*model.ConversationTurn
}

func newConversationRepository() *conversationRepository {
	return &conversationRepository{
		turns: make(map[string][]*model.ConversationTurn),
	}
}

func copyTurn(t *model.ConversationTurn) *model.ConversationTurn {
	copied := *t
	return &copied
}

func (r *conversationRepository) AppendTurn(ctx context.Context, districtID string, turn *model.ConversationTurn) (*model.ConversationTurn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := copyTurn(turn)
	if stored.ID == "" {
		stored.ID = model.NewTurnID()
	}
	stored.DistrictID = districtID
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}

	r.turns[districtID] = append(r.turns[districtID], stored)
	return copyTurn(stored), nil
}

func (r *conversationRepository) RecentTurns(ctx context.Context, districtID string, actorID string, limit int) ([]*model.ConversationTurn, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*model.ConversationTurn, 0)
	for _, t := range r.turns[districtID] {
		if t.ActorID == actorID {
			matched = append(matched, copyTurn(t))
		}
	}

	// Newest first
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}
