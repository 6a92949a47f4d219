package models

import "time"

// Message is an immutable chat message between two mutual contacts.
// Conversations are ordered by sent_at ascending.
type Message struct {
	ID         string    `db:"id" json:"id"`
	SenderID   string    `db:"sender_id" json:"senderId"`
	ReceiverID string    `db:"receiver_id" json:"receiverId"`
	Content    string    `db:"content" json:"content"`
	SentAt     time.Time `db:"sent_at" json:"timestamp"`
}

// Announcement is a school-wide notice, admin-authored, visible to everyone.
// Listings are ordered by published_at descending.
type Announcement struct {
	ID          string    `db:"id" json:"id"`
	Content     string    `db:"content" json:"content"`
	SchoolID    string    `db:"school_id" json:"schoolId"`
	CreatedBy   string    `db:"created_by" json:"-"`
	PublishedAt time.Time `db:"published_at" json:"timestamp"`
}
