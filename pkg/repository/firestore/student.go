package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/edmon-lab/mentor/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type studentDoc struct {
	ID             string            `firestore:"ID"`
	Name           string            `firestore:"Name"`
	GradeLevel     string            `firestore:"GradeLevel"`
	Homeroom       string            `firestore:"Homeroom"`
	AttendanceRate float64           `firestore:"AttendanceRate"`
	AbsencesYTD    int               `firestore:"AbsencesYTD"`
	TardiesYTD     int               `firestore:"TardiesYTD"`
	Grades         map[string]string `firestore:"Grades"`
	UpdatedAt      time.Time         `firestore:"UpdatedAt"`
}

type studentRepository struct {
	client *firestore.Client
}

func newStudentRepository(client *firestore.Client) *studentRepository {
	return &studentRepository{
		client: client,
	}
}

func (r *studentRepository) collection(districtID string) *firestore.CollectionRef {
	return districtDoc(r.client, districtID).Collection("students")
}

func (r *studentRepository) Get(ctx context.Context, districtID string, studentID string) (*model.StudentRecord, error) {
	doc, err := r.collection(districtID).Doc(studentID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get student record", goerr.V("studentID", studentID))
	}

	var d studentDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal student record", goerr.V("studentID", studentID))
	}

	return &model.StudentRecord{
		ID:             d.ID,
		DistrictID:     districtID,
		Name:           d.Name,
		GradeLevel:     d.GradeLevel,
		Homeroom:       d.Homeroom,
		AttendanceRate: d.AttendanceRate,
		AbsencesYTD:    d.AbsencesYTD,
		TardiesYTD:     d.TardiesYTD,
		Grades:         d.Grades,
		UpdatedAt:      d.UpdatedAt,
	}, nil
}

func (r *studentRepository) Put(ctx context.Context, districtID string, record *model.StudentRecord) error {
	if record == nil || record.ID == "" {
		return goerr.New("student record requires an ID")
	}

	stored := &studentDoc{
		ID:             record.ID,
		Name:           record.Name,
		GradeLevel:     record.GradeLevel,
		Homeroom:       record.Homeroom,
		AttendanceRate: record.AttendanceRate,
		AbsencesYTD:    record.AbsencesYTD,
		TardiesYTD:     record.TardiesYTD,
		Grades:         record.Grades,
		UpdatedAt:      record.UpdatedAt,
	}
	if stored.UpdatedAt.IsZero() {
		stored.UpdatedAt = time.Now().UTC()
	}

	if _, err := r.collection(districtID).Doc(record.ID).Set(ctx, stored); err != nil {
		return goerr.Wrap(err, "failed to put student record", goerr.V("studentID", record.ID))
	}
	return nil
}
