package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/edmon-lab/mentor/pkg/domain/model"
	"github.com/edmon-lab/mentor/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
)

type turnDoc struct {
	ID              model.TurnID `firestore:"ID"`
	ActorID         string       `firestore:"ActorID"`
	Query           string       `firestore:"Query"`
	Category        string       `firestore:"Category"`
	Confidence      float64      `firestore:"Confidence"`
	Urgency         string       `firestore:"Urgency"`
	Escalated       bool         `firestore:"Escalated"`
	ResponseSummary string       `firestore:"ResponseSummary"`
	CreatedAt       time.Time    `firestore:"CreatedAt"`
}

func toTurnDoc(t *model.ConversationTurn) *turnDoc {
	return &turnDoc{
		ID:              t.ID,
		ActorID:         t.ActorID,
		Query:           t.Query,
		Category:        string(t.Category),
		Confidence:      t.Confidence,
		Urgency:         string(t.Urgency),
		Escalated:       t.Escalated,
		ResponseSummary: t.ResponseSummary,
		CreatedAt:       t.CreatedAt,
	}
}

func fromTurnDoc(districtID string, d *turnDoc) *model.ConversationTurn {
	return &model.ConversationTurn{
		ID:              d.ID,
		DistrictID:      districtID,
		ActorID:         d.ActorID,
		Query:           d.Query,
		Category:        types.IntentCategory(d.Category),
		Confidence:      d.Confidence,
		Urgency:         types.Urgency(d.Urgency),
		Escalated:       d.Escalated,
		ResponseSummary: d.ResponseSummary,
		CreatedAt:       d.CreatedAt,
	}
}

type conversationRepository struct {
	client *firestore.Client
}

func newConversationRepository(client *firestore.Client) *conversationRepository {
	return &conversationRepository{
		client: client,
	}
}

func (r *conversationRepository) collection(districtID string) *firestore.CollectionRef {
	return districtDoc(r.client, districtID).Collection("conversations")
}

func (r *conversationRepository) AppendTurn(ctx context.Context, districtID string, turn *model.ConversationTurn) (*model.ConversationTurn, error) {
	stored := *turn
	if stored.ID == "" {
		stored.ID = model.NewTurnID()
	}
	stored.DistrictID = districtID
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}

	docRef := r.collection(districtID).Doc(string(stored.ID))
	if _, err := docRef.Set(ctx, toTurnDoc(&stored)); err != nil {
		return nil, goerr.Wrap(err, "failed to append conversation turn", goerr.V("turnID", stored.ID))
	}

	return &stored, nil
}

func (r *conversationRepository) RecentTurns(ctx context.Context, districtID string, actorID string, limit int) ([]*model.ConversationTurn, error) {
	q := r.collection(districtID).
		Where("ActorID", "==", actorID).
		OrderBy("CreatedAt", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	turns := make([]*model.ConversationTurn, 0, limit)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate conversation turns", goerr.V("actorID", actorID))
		}

		var d turnDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal conversation turn")
		}
		turns = append(turns, fromTurnDoc(districtID, &d))
	}

	return turns, nil
}
