package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/SouravGRoy/pcl-portal-api/internal/models"
)

// GroupRepository reads groups and their rosters.
type GroupRepository struct {
	db *sqlx.DB
}

// NewGroupRepository constructs the repository.
func NewGroupRepository(db *sqlx.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

// FindByID returns a group by primary key.
func (r *GroupRepository) FindByID(ctx context.Context, id string) (*models.Group, error) {
	query := `SELECT id, name, description, faculty_id, created_at, updated_at FROM groups WHERE id = $1`
	var group models.Group
	if err := r.db.GetContext(ctx, &group, query, id); err != nil {
		return nil, err
	}
	return &group, nil
}

// ListMembers returns the group roster joined with student names.
func (r *GroupRepository) ListMembers(ctx context.Context, groupID string) ([]models.GroupMember, error) {
	query := `SELECT gm.group_id, gm.student_id, u.full_name AS student_name, gm.joined_at
FROM group_members gm
JOIN users u ON u.id = gm.student_id
WHERE gm.group_id = $1
ORDER BY u.full_name ASC`
	var members []models.GroupMember
	if err := r.db.SelectContext(ctx, &members, query, groupID); err != nil {
		return nil, fmt.Errorf("list members for group %s: %w", groupID, err)
	}
	return members, nil
}

// IsMember reports whether a student belongs to the group.
func (r *GroupRepository) IsMember(ctx context.Context, groupID, studentID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM group_members WHERE group_id = $1 AND student_id = $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, groupID, studentID); err != nil {
		return false, fmt.Errorf("check group membership: %w", err)
	}
	return exists, nil
}
