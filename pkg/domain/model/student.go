package model

import "time"

// StudentRecord holds the live operational facts tools may surface about a
// student, subject to disclosure authorization.
type StudentRecord struct {
	ID             string
	DistrictID     string
	Name           string
	GradeLevel     string
	Homeroom       string
	AttendanceRate float64
	AbsencesYTD    int
	TardiesYTD     int
	Grades         map[string]string // subject -> current grade
	UpdatedAt      time.Time
}
