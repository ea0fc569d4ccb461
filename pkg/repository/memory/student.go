package memory

import (
	"context"
	"sync"
	"time"

	"github.com/edmon-lab/mentor/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

type studentKey struct {
	districtID string
	studentID  string
}

type studentRepository struct {
	mu       sync.RWMutex
	students map[studentKey]*model.StudentRecord
}

func newStudentRepository() *studentRepository {
	return &studentRepository{
		students: make(map[studentKey]*model.StudentRecord),
	}
}

func copyStudent(s *model.StudentRecord) *model.StudentRecord {
	copied := *s
	if s.Grades != nil {
		copied.Grades = make(map[string]string, len(s.Grades))
		for k, v := range s.Grades {
			copied.Grades[k] = v
		}
	}
	return &copied
}

func (r *studentRepository) Get(ctx context.Context, districtID string, studentID string) (*model.StudentRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.students[studentKey{districtID: districtID, studentID: studentID}]
	if !ok {
		return nil, nil
	}
	return copyStudent(record), nil
}

func (r *studentRepository) Put(ctx context.Context, districtID string, record *model.StudentRecord) error {
	if record == nil || record.ID == "" {
		return goerr.New("student record requires an ID")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := copyStudent(record)
	stored.DistrictID = districtID
	if stored.UpdatedAt.IsZero() {
		stored.UpdatedAt = time.Now().UTC()
	}
	r.students[studentKey{districtID: districtID, studentID: record.ID}] = stored
	return nil
}
