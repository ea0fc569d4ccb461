package core

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/edmon-lab/mentor/pkg/agent/tool"
	"github.com/edmon-lab/mentor/pkg/domain/interfaces"
	"github.com/edmon-lab/mentor/pkg/domain/model"
	"github.com/edmon-lab/mentor/pkg/domain/types"
)

// studentRecordsTool surfaces live attendance and grade facts for one
// student. Access is re-checked here against the actor's student links
// even though the router already filtered by permission.
type studentRecordsTool struct {
	students interfaces.StudentRepository
}

func (t *studentRecordsTool) Definition() model.ToolDefinition {
	return model.ToolDefinition{
		Name:        "student_records",
		Description: "Looks up a student's current attendance rate, absences, tardies and grades. Only returns records the caller is authorized to view",
		RequiredPermissions: []types.Permission{
			types.PermissionStudentsRead,
		},
		HandledIntents: []types.IntentCategory{
			types.IntentAttendance,
			types.IntentAcademic,
		},
		RequiresStudentContext: true,
		Timeout:                10 * time.Second,
	}
}

func (t *studentRecordsTool) Run(ctx context.Context, req *tool.Request) (*model.ToolResult, error) {
	studentID := t.resolveStudentID(req)
	if studentID == "" {
		return model.FailedToolResult("student_records", types.ErrKindValidation,
			"could not determine which student the question concerns"), nil
	}

	if !req.Actor.CanAccessStudent(studentID) {
		return model.FailedToolResult("student_records", types.ErrKindPermission,
			fmt.Sprintf("caller is not authorized for student %s", studentID)), nil
	}

	tool.Update(ctx, "Looking up student records...")

	record, err := t.students.Get(ctx, req.Actor.DistrictID, studentID)
	if err != nil {
		return model.FailedToolResult("student_records", types.ErrKindProvider, err.Error()), nil
	}
	if record == nil {
		return model.FailedToolResult("student_records", types.ErrKindNotFound,
			fmt.Sprintf("no record found for student %s", studentID)), nil
	}

	return &model.ToolResult{
		ToolName:      "student_records",
		Success:       true,
		Content:       summarizeRecord(record),
		Confidence:    0.9,
		HasConfidence: true,
		Metadata:      map[string]any{"student_id": studentID},
	}, nil
}

// resolveStudentID picks the student the question concerns: explicit
// parameter, then classifier entity, then the actor's only linked student
func (t *studentRecordsTool) resolveStudentID(req *tool.Request) string {
	if id, ok := req.Params["student_id"].(string); ok && id != "" {
		return id
	}
	if id, ok := req.Intent.Entities["student_id"]; ok && id != "" {
		return id
	}
	if len(req.Actor.StudentIDs) == 1 {
		return req.Actor.StudentIDs[0]
	}
	return ""
}

func summarizeRecord(record *model.StudentRecord) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (grade %s, homeroom %s)\n", record.Name, record.GradeLevel, record.Homeroom)
	fmt.Fprintf(&sb, "Attendance rate: %.1f%%, absences this year: %d, tardies: %d\n",
		record.AttendanceRate*100, record.AbsencesYTD, record.TardiesYTD)

	if len(record.Grades) > 0 {
		subjects := make([]string, 0, len(record.Grades))
		for s := range record.Grades {
			subjects = append(subjects, s)
		}
		sort.Strings(subjects)

		sb.WriteString("Current grades:\n")
		for _, s := range subjects {
			fmt.Fprintf(&sb, "- %s: %s\n", s, record.Grades[s])
		}
	}
	fmt.Fprintf(&sb, "Record updated %s", record.UpdatedAt.Format("2006-01-02"))
	return sb.String()
}
