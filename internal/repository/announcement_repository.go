package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/SouravGRoy/pcl-portal-api/internal/models"
)

// AnnouncementRepository provides persistence for announcements.
type AnnouncementRepository struct {
	db *sqlx.DB
}

// NewAnnouncementRepository creates the repository.
func NewAnnouncementRepository(db *sqlx.DB) *AnnouncementRepository {
	return &AnnouncementRepository{db: db}
}

// List returns announcements visible to the provided audiences.
func (r *AnnouncementRepository) List(ctx context.Context, filter models.AnnouncementFilter) ([]models.Announcement, int, error) {
	base := "FROM announcements"
	where := []string{"published_at <= NOW()", "(expires_at IS NULL OR expires_at > NOW())"}
	args := []interface{}{}

	allowedAudiences := map[string]struct{}{
		string(models.AnnouncementAudienceAll): {},
	}
	for _, role := range filter.AudienceRoles {
		switch role {
		case models.RoleFaculty:
			allowedAudiences[string(models.AnnouncementAudienceFaculty)] = struct{}{}
		case models.RoleStudent:
			allowedAudiences[string(models.AnnouncementAudienceStudent)] = struct{}{}
		case models.RoleAdmin:
			allowedAudiences[string(models.AnnouncementAudienceFaculty)] = struct{}{}
			allowedAudiences[string(models.AnnouncementAudienceStudent)] = struct{}{}
			allowedAudiences[string(models.AnnouncementAudienceGroup)] = struct{}{}
		}
	}
	if len(filter.GroupIDs) > 0 {
		where = append(where, fmt.Sprintf("(audience <> 'GROUP' OR target_group_id = ANY($%d))", len(args)+1))
		args = append(args, pq.Array(filter.GroupIDs))
		allowedAudiences[string(models.AnnouncementAudienceGroup)] = struct{}{}
	}
	values := make([]string, 0, len(allowedAudiences))
	for v := range allowedAudiences {
		values = append(values, v)
	}
	where = append(where, fmt.Sprintf("audience = ANY($%d)", len(args)+1))
	args = append(args, pq.Array(values))

	whereClause := strings.Join(where, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT id, title, content, audience, target_group_id, priority, is_pinned, published_at, expires_at, created_by, created_at, updated_at
%s WHERE %s ORDER BY is_pinned DESC, priority = 'HIGH' DESC, published_at DESC LIMIT %d OFFSET %d`, base, whereClause, size, offset)
	var rows []models.Announcement
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list announcements: %w", err)
	}
	countQuery := fmt.Sprintf("SELECT COUNT(*) %s WHERE %s", base, whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count announcements: %w", err)
	}
	return rows, total, nil
}

// GetByID returns an announcement by primary key.
func (r *AnnouncementRepository) GetByID(ctx context.Context, id string) (*models.Announcement, error) {
	query := `SELECT id, title, content, audience, target_group_id, priority, is_pinned, published_at, expires_at, created_by, created_at, updated_at
FROM announcements WHERE id = $1`
	var ann models.Announcement
	if err := r.db.GetContext(ctx, &ann, query, id); err != nil {
		return nil, err
	}
	return &ann, nil
}

// Create inserts a new announcement.
func (r *AnnouncementRepository) Create(ctx context.Context, announcement *models.Announcement) error {
	now := time.Now().UTC()
	if announcement.ID == "" {
		announcement.ID = uuid.NewString()
	}
	announcement.CreatedAt = now
	announcement.UpdatedAt = now
	query := `INSERT INTO announcements (id, title, content, audience, target_group_id, priority, is_pinned, published_at, expires_at, created_by, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	if _, err := r.db.ExecContext(ctx, query,
		announcement.ID, announcement.Title, announcement.Content, announcement.Audience, announcement.TargetGroupID,
		announcement.Priority, announcement.IsPinned, announcement.PublishedAt, announcement.ExpiresAt,
		announcement.CreatedBy, announcement.CreatedAt, announcement.UpdatedAt,
	); err != nil {
		return fmt.Errorf("insert announcement: %w", err)
	}
	return nil
}

// Update modifies an existing announcement.
func (r *AnnouncementRepository) Update(ctx context.Context, announcement *models.Announcement) error {
	announcement.UpdatedAt = time.Now().UTC()
	query := `UPDATE announcements SET title = $1, content = $2, audience = $3, target_group_id = $4, priority = $5, is_pinned = $6, published_at = $7, expires_at = $8, updated_at = $9
WHERE id = $10`
	if _, err := r.db.ExecContext(ctx, query,
		announcement.Title, announcement.Content, announcement.Audience, announcement.TargetGroupID,
		announcement.Priority, announcement.IsPinned, announcement.PublishedAt, announcement.ExpiresAt,
		announcement.UpdatedAt, announcement.ID,
	); err != nil {
		return fmt.Errorf("update announcement: %w", err)
	}
	return nil
}

// Delete removes an announcement.
func (r *AnnouncementRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM announcements WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete announcement: %w", err)
	}
	return nil
}
