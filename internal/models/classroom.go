package models

// Classroom represents a homeroom unit. Static reference data in this scope:
// no create/delete endpoints exist, rosters are seeded out of band.
type Classroom struct {
	ID                string `db:"id" json:"id"`
	Name              string `db:"name" json:"name"`
	HomeroomTeacherID string `db:"homeroom_teacher_id" json:"teacherId"`
}

// ClassroomWithRole tags a classroom with the label describing the
// requesting teacher's relationship to it ("Chủ nhiệm" or subject labels).
type ClassroomWithRole struct {
	Classroom
	TeacherRole string `json:"teacherRole"`
}

// Subject is static reference data.
type Subject struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// TeachingAssignment links a subject teacher to a classroom. The
// (teacher_id, class_id, subject_id) tuple is unique and disjoint in meaning
// from the homeroom relationship on Classroom.
type TeachingAssignment struct {
	TeacherID string `db:"teacher_id" json:"teacherId"`
	ClassID   string `db:"class_id" json:"classId"`
	SubjectID string `db:"subject_id" json:"subjectId"`
}

// TeachingAssignmentDetail enriches an assignment with the subject name.
type TeachingAssignmentDetail struct {
	TeachingAssignment
	SubjectName string `db:"subject_name" json:"subjectName"`
}
