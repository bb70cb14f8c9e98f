package models

import "time"

// Group is a class owned by a faculty member.
type Group struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
	FacultyID   string    `db:"faculty_id" json:"faculty_id"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// GroupMember joins a student into a group roster.
type GroupMember struct {
	GroupID     string    `db:"group_id" json:"group_id"`
	StudentID   string    `db:"student_id" json:"student_id"`
	StudentName string    `db:"student_name" json:"student_name"`
	JoinedAt    time.Time `db:"joined_at" json:"joined_at"`
}
