package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// AcademicRecord is one subject's performance line inside a report.
type AcademicRecord struct {
	SubjectName  string  `json:"subjectName"`
	AverageScore float64 `json:"averageScore"`
	Absences     int     `json:"absences"`
	Conduct      string  `json:"conduct"`
}

// Validate checks the record value ranges.
func (r AcademicRecord) Validate() error {
	if r.AverageScore < 0 || r.AverageScore > 10 {
		return fmt.Errorf("averageScore %.2f out of range [0,10]", r.AverageScore)
	}
	if r.Absences < 0 {
		return fmt.Errorf("absences must not be negative")
	}
	return nil
}

// AcademicRecords is stored as a jsonb column.
type AcademicRecords []AcademicRecord

// Value implements driver.Valuer.
func (a AcademicRecords) Value() (driver.Value, error) {
	if a == nil {
		a = AcademicRecords{}
	}
	return json.Marshal(a)
}

// Scan implements sql.Scanner.
func (a *AcademicRecords) Scan(src interface{}) error {
	if src == nil {
		*a = nil
		return nil
	}
	raw, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("academic records: unsupported scan type %T", src)
	}
	return json.Unmarshal(raw, a)
}

// Report aggregates a student's term results. Records and comments are
// replaced wholesale on update, never merged field by field.
type Report struct {
	ID              string          `db:"id" json:"id"`
	StudentID       string          `db:"student_id" json:"studentId"`
	Term            string          `db:"term" json:"term"`
	Year            int             `db:"year" json:"year"`
	Records         AcademicRecords `db:"records" json:"records"`
	TeacherComments string          `db:"teacher_comments" json:"teacherComments"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}
