package models

// TimetableEntry is one scheduled lesson slot. DayOfWeek follows the
// Vietnamese convention: 2 is Monday through 6 for Friday.
type TimetableEntry struct {
	DayOfWeek   int    `db:"day_of_week" json:"dayOfWeek"`
	Period      int    `db:"period" json:"period"`
	SubjectName string `db:"subject_name" json:"subjectName"`
}

// Timetable is a class schedule resolved for one student (parents) or one
// taught class (teachers). StudentID is empty for teacher timetables.
type Timetable struct {
	StudentID   string           `json:"studentId"`
	StudentName string           `json:"studentName"`
	ClassID     string           `json:"classId"`
	ClassName   string           `json:"className"`
	Entries     []TimetableEntry `json:"entries"`
}
