package models

import "time"

// Assignment belongs to a group and bounds the points a submission can earn.
type Assignment struct {
	ID        string     `db:"id" json:"id"`
	GroupID   string     `db:"group_id" json:"group_id"`
	Title     string     `db:"title" json:"title"`
	MaxScore  float64    `db:"max_score" json:"max_score"`
	DueDate   *time.Time `db:"due_date" json:"due_date,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

// Submission is a student's graded answer to an assignment. TotalScore is nil
// until a faculty member grades it.
type Submission struct {
	ID           string     `db:"id" json:"id"`
	AssignmentID string     `db:"assignment_id" json:"assignment_id"`
	StudentID    string     `db:"student_id" json:"student_id"`
	TotalScore   *float64   `db:"total_score" json:"total_score,omitempty"`
	SubmittedAt  time.Time  `db:"submitted_at" json:"submitted_at"`
	GradedAt     *time.Time `db:"graded_at" json:"graded_at,omitempty"`
}

// GradedSubmissionRow joins a graded submission with its assignment's max score
// and the submitting student's name. Produced by a single query so the
// aggregator never branches on joined-row shapes.
type GradedSubmissionRow struct {
	StudentID    string  `db:"student_id" json:"student_id"`
	StudentName  string  `db:"student_name" json:"student_name"`
	AssignmentID string  `db:"assignment_id" json:"assignment_id"`
	TotalScore   float64 `db:"total_score" json:"total_score"`
	MaxScore     float64 `db:"max_score" json:"max_score"`
}

// StudentGradeSummary is computed fresh per request and never persisted.
type StudentGradeSummary struct {
	StudentID            string  `json:"student_id"`
	StudentName          string  `json:"student_name"`
	TotalPointsEarned    float64 `json:"total_points_earned"`
	TotalPointsPossible  float64 `json:"total_points_possible"`
	Percentage           float64 `json:"percentage"`
	GPA                  float64 `json:"gpa"`
	CompletedAssignments int     `json:"completed_assignments"`
	TotalAssignments     int     `json:"total_assignments"`
	CompletionRate       float64 `json:"completion_rate"`
}

// GroupGradeStats aggregates grade summaries for a whole group.
type GroupGradeStats struct {
	GroupID                  string                `json:"group_id"`
	Students                 []StudentGradeSummary `json:"students"`
	ClassAverageGPA          float64               `json:"class_average_gpa"`
	ClassAverageScore        float64               `json:"class_average_score"`
	TotalStudents            int                   `json:"total_students"`
	TotalAssignments         int                   `json:"total_assignments"`
	AssignmentCompletionRate float64               `json:"assignment_completion_rate"`
}
