package memory

import (
	"github.com/edmon-lab/mentor/pkg/domain/interfaces"
)

// Memory is the in-memory repository backend used for development and
// tests. All data is lost on process exit.
type Memory struct {
	chunk        *chunkRepository
	conversation *conversationRepository
	student      *studentRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		chunk:        newChunkRepository(),
		conversation: newConversationRepository(),
		student:      newStudentRepository(),
	}
}

func (m *Memory) Chunk() interfaces.ChunkRepository {
	return m.chunk
}

func (m *Memory) Conversation() interfaces.ConversationRepository {
	return m.conversation
}

func (m *Memory) Student() interfaces.StudentRepository {
	return m.student
}

func (m *Memory) Close() error {
	return nil
}
