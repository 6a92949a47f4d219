package models

import "time"

// Student represents a pupil enrolled in a classroom. parent_id must
// reference a user with the PARENT role and class_id an existing classroom.
type Student struct {
	ID          string    `db:"id" json:"id"`
	FullName    string    `db:"full_name" json:"name"`
	DateOfBirth string    `db:"date_of_birth" json:"dateOfBirth"`
	Gender      string    `db:"gender" json:"gender"`
	ParentID    string    `db:"parent_id" json:"parentId"`
	ClassID     string    `db:"class_id" json:"classId"`
	AvatarURL   string    `db:"avatar_url" json:"avatarUrl"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
