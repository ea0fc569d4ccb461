package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/edmon-lab/mentor/pkg/domain/interfaces"
	"github.com/m-mizutani/goerr/v2"
)

// Firestore is the production repository backend. All district data lives
// under districts/{districtID} subcollections so tenants stay isolated at
// the document-path level.
type Firestore struct {
	client       *firestore.Client
	chunk        *chunkRepository
	conversation *conversationRepository
	student      *studentRepository
}

var _ interfaces.Repository = &Firestore{}

// New creates a Firestore-backed repository. databaseID may be empty to
// use the project's default database.
func New(ctx context.Context, projectID, databaseID string) (*Firestore, error) {
	if projectID == "" {
		return nil, goerr.New("firestore project ID is required")
	}

	var client *firestore.Client
	var err error
	if databaseID == "" {
		client, err = firestore.NewClient(ctx, projectID)
	} else {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID), goerr.V("databaseID", databaseID))
	}

	return &Firestore{
		client:       client,
		chunk:        newChunkRepository(client),
		conversation: newConversationRepository(client),
		student:      newStudentRepository(client),
	}, nil
}

func (f *Firestore) Chunk() interfaces.ChunkRepository {
	return f.chunk
}

func (f *Firestore) Conversation() interfaces.ConversationRepository {
	return f.conversation
}

func (f *Firestore) Student() interfaces.StudentRepository {
	return f.student
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}

func districtDoc(client *firestore.Client, districtID string) *firestore.DocumentRef {
	return client.Collection("districts").Doc(districtID)
}
