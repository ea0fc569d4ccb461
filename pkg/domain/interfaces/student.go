package interfaces

import (
	"context"

	"github.com/edmon-lab/mentor/pkg/domain/model"
)

// StudentRepository exposes live student facts to tools. Authorization
// decisions happen before access; this interface only retrieves.
type StudentRepository interface {
	// Get retrieves a student record by ID. A missing record returns
	// (nil, nil); errors indicate a store failure.
	Get(ctx context.Context, districtID string, studentID string) (*model.StudentRecord, error)

	// Put stores a student record (used by fixtures and sync jobs)
	Put(ctx context.Context, districtID string, record *model.StudentRecord) error
}
