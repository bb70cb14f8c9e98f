package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/SouravGRoy/pcl-portal-api/internal/models"
)

// GradeRepository reads the assignment and submission rows the aggregator
// consumes. It never writes; grading happens elsewhere.
type GradeRepository struct {
	db *sqlx.DB
}

// NewGradeRepository constructs the repository.
func NewGradeRepository(db *sqlx.DB) *GradeRepository {
	return &GradeRepository{db: db}
}

// ListAssignmentsByGroup returns all assignments for a group.
func (r *GradeRepository) ListAssignmentsByGroup(ctx context.Context, groupID string) ([]models.Assignment, error) {
	query := `SELECT id, group_id, title, max_score, due_date, created_at
FROM assignments WHERE group_id = $1 ORDER BY created_at ASC`
	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, query, groupID); err != nil {
		return nil, fmt.Errorf("list assignments for group %s: %w", groupID, err)
	}
	return assignments, nil
}

// ListGradedSubmissions returns graded submissions for the given assignments,
// restricted to members of the group, each joined with the assignment's max
// score and the student's name. The join produces one canonical row shape so
// the aggregator never normalises per consumer.
func (r *GradeRepository) ListGradedSubmissions(ctx context.Context, assignmentIDs []string, groupID string) ([]models.GradedSubmissionRow, error) {
	if len(assignmentIDs) == 0 {
		return nil, nil
	}
	query := `SELECT sub.student_id, u.full_name AS student_name, sub.assignment_id, sub.total_score, a.max_score
FROM submissions sub
JOIN assignments a ON a.id = sub.assignment_id
JOIN users u ON u.id = sub.student_id
JOIN group_members gm ON gm.student_id = sub.student_id AND gm.group_id = $2
WHERE sub.assignment_id = ANY($1) AND sub.total_score IS NOT NULL`
	var rows []models.GradedSubmissionRow
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(assignmentIDs), groupID); err != nil {
		return nil, fmt.Errorf("list graded submissions: %w", err)
	}
	return rows, nil
}
