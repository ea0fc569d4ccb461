package firestore

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/edmon-lab/mentor/pkg/domain/model"
	"github.com/edmon-lab/mentor/pkg/utils/keyword"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
)

// distanceField receives the cosine distance computed by FindNearest
const distanceField = "VectorDistance"

// maxDisjunctionTerms is Firestore's limit on array-contains-any values
const maxDisjunctionTerms = 10

// chunkDoc is the Firestore document representation of model.EmbeddedChunk.
// Embedding is stored as firestore.Vector32 so FindNearest vector search
// works; Keywords carries the normalized lexical terms for keyword search.
type chunkDoc struct {
	ID            model.ChunkID      `firestore:"ID"`
	DocumentID    model.DocumentID   `firestore:"DocumentID"`
	Content       string             `firestore:"Content"`
	TokenEstimate int                `firestore:"TokenEstimate"`
	Index         int                `firestore:"Index"`
	SectionHeader string             `firestore:"SectionHeader"`
	Type          string             `firestore:"Type"`
	Keywords      []string           `firestore:"Keywords"`
	Embedding     firestore.Vector32 `firestore:"Embedding,omitempty"`
	CreatedAt     time.Time          `firestore:"CreatedAt"`
}

func toChunkDoc(c *model.EmbeddedChunk, now time.Time) *chunkDoc {
	doc := &chunkDoc{
		ID:            c.ID,
		DocumentID:    c.DocumentID,
		Content:       c.Content,
		TokenEstimate: c.TokenEstimate,
		Index:         c.Metadata.Index,
		SectionHeader: c.Metadata.SectionHeader,
		Type:          string(c.Metadata.Type),
		Keywords:      keyword.Terms(c.Content),
		CreatedAt:     now,
	}
	if len(c.Embedding) > 0 {
		doc.Embedding = firestore.Vector32(c.Embedding)
	}
	return doc
}

type chunkRepository struct {
	client *firestore.Client
}

func newChunkRepository(client *firestore.Client) *chunkRepository {
	return &chunkRepository{
		client: client,
	}
}

func (r *chunkRepository) collection(districtID string) *firestore.CollectionRef {
	return districtDoc(r.client, districtID).Collection("chunks")
}

func applyFilter(q firestore.Query, filter model.SearchFilter) firestore.Query {
	if len(filter.DocumentIDs) > 0 {
		ids := make([]string, 0, len(filter.DocumentIDs))
		for _, id := range filter.DocumentIDs {
			ids = append(ids, string(id))
		}
		q = q.Where("DocumentID", "in", ids)
	}
	if filter.SectionHeader != "" {
		q = q.Where("SectionHeader", "==", filter.SectionHeader)
	}
	if len(filter.ChunkTypes) > 0 {
		chunkTypes := make([]string, 0, len(filter.ChunkTypes))
		for _, t := range filter.ChunkTypes {
			chunkTypes = append(chunkTypes, string(t))
		}
		q = q.Where("Type", "in", chunkTypes)
	}
	return q
}

func (r *chunkRepository) ReplaceDocumentChunks(ctx context.Context, districtID string, docID model.DocumentID, chunks []*model.EmbeddedChunk) error {
	iter := r.collection(districtID).
		Where("DocumentID", "==", string(docID)).
		Select().
		Documents(ctx)
	defer iter.Stop()

	bulkWriter := r.client.BulkWriter(ctx)

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return goerr.Wrap(err, "failed to iterate chunks for replacement", goerr.V("docID", docID))
		}
		if _, err := bulkWriter.Delete(doc.Ref); err != nil {
			return goerr.Wrap(err, "failed to delete chunk", goerr.V("docID", docID))
		}
	}

	now := time.Now().UTC()
	for _, c := range chunks {
		docRef := r.collection(districtID).Doc(string(c.ID))
		if _, err := bulkWriter.Set(docRef, toChunkDoc(c, now)); err != nil {
			return goerr.Wrap(err, "failed to store chunk", goerr.V("chunkID", c.ID))
		}
	}

	bulkWriter.End()
	return nil
}

func (r *chunkRepository) SearchByVector(ctx context.Context, districtID string, vector []float32, limit int, filter model.SearchFilter) ([]*model.VectorResult, error) {
	q := applyFilter(r.collection(districtID).Query, filter)

	vq := q.FindNearest("Embedding", firestore.Vector32(vector), limit,
		firestore.DistanceMeasureCosine,
		&firestore.FindNearestOptions{DistanceResultField: distanceField})

	iter := vq.Documents(ctx)
	defer iter.Stop()

	results := make([]*model.VectorResult, 0, limit)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate vector search results")
		}

		var d chunkDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal chunk from vector search")
		}

		// Cosine distance maps to similarity as 1 - distance
		similarity := 0.0
		if dist, ok := doc.Data()[distanceField].(float64); ok {
			similarity = 1 - dist
		}

		results = append(results, &model.VectorResult{
			ChunkID:    d.ID,
			DocumentID: d.DocumentID,
			Content:    d.Content,
			Similarity: similarity,
		})
	}

	return results, nil
}

func (r *chunkRepository) SearchByKeyword(ctx context.Context, districtID string, query string, limit int, filter model.SearchFilter) ([]*model.KeywordResult, error) {
	queryTerms := keyword.Terms(query)
	if len(queryTerms) == 0 {
		return nil, nil
	}

	disjunction := queryTerms
	if len(disjunction) > maxDisjunctionTerms {
		disjunction = disjunction[:maxDisjunctionTerms]
	}

	q := applyFilter(r.collection(districtID).Query, filter).
		Where("Keywords", "array-contains-any", disjunction)
	if limit > 0 {
		// Overfetch so overlap scoring has candidates to rank
		q = q.Limit(limit * 3)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	results := make([]*model.KeywordResult, 0, limit)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate keyword search results")
		}

		var d chunkDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal chunk from keyword search")
		}

		matched, score := keyword.Overlap(queryTerms, d.Keywords)
		if score == 0 {
			continue
		}
		results = append(results, &model.KeywordResult{
			ChunkID:    d.ID,
			DocumentID: d.DocumentID,
			Content:    d.Content,
			Score:      score,
			Highlights: matched,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ChunkID < results[j].ChunkID
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (r *chunkRepository) CountByDocument(ctx context.Context, districtID string, docID model.DocumentID) (int, error) {
	docs, err := r.collection(districtID).
		Where("DocumentID", "==", string(docID)).
		Select().
		Documents(ctx).GetAll()
	if err != nil {
		return 0, goerr.Wrap(err, "failed to count chunks", goerr.V("docID", docID))
	}
	return len(docs), nil
}

func (r *chunkRepository) DeleteDocumentChunks(ctx context.Context, districtID string, docID model.DocumentID) error {
	iter := r.collection(districtID).
		Where("DocumentID", "==", string(docID)).
		Select().
		Documents(ctx)
	defer iter.Stop()

	bulkWriter := r.client.BulkWriter(ctx)

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return goerr.Wrap(err, "failed to iterate chunks for deletion", goerr.V("docID", docID))
		}
		if _, err := bulkWriter.Delete(doc.Ref); err != nil {
			return goerr.Wrap(err, "failed to delete chunk", goerr.V("docID", docID))
		}
	}

	bulkWriter.End()
	return nil
}
