package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/SouravGRoy/pcl-portal-api/internal/models"
)

// SessionRepository persists attendance sessions. The check-in flow only
// reads through it; writes come from faculty endpoints.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository constructs the repository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

const sessionColumns = `id, group_id, qr_token, session_name, session_type, faculty_latitude, faculty_longitude, allowed_radius_meters, created_at, expires_at`

// FindByToken resolves a session by its QR token.
func (r *SessionRepository) FindByToken(ctx context.Context, token string) (*models.AttendanceSession, error) {
	query := fmt.Sprintf(`SELECT %s FROM attendance_sessions WHERE qr_token = $1`, sessionColumns)
	var session models.AttendanceSession
	if err := r.db.GetContext(ctx, &session, query, token); err != nil {
		return nil, err
	}
	return &session, nil
}

// FindByID resolves a session by primary key.
func (r *SessionRepository) FindByID(ctx context.Context, id string) (*models.AttendanceSession, error) {
	query := fmt.Sprintf(`SELECT %s FROM attendance_sessions WHERE id = $1`, sessionColumns)
	var session models.AttendanceSession
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		return nil, err
	}
	return &session, nil
}

// Create inserts a new attendance session.
func (r *SessionRepository) Create(ctx context.Context, session *models.AttendanceSession) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO attendance_sessions (id, group_id, qr_token, session_name, session_type, faculty_latitude, faculty_longitude, allowed_radius_meters, created_at, expires_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	if _, err := r.db.ExecContext(ctx, query,
		session.ID, session.GroupID, session.QRToken, session.SessionName, session.SessionType,
		session.FacultyLatitude, session.FacultyLongitude, session.AllowedRadiusMeters,
		session.CreatedAt, session.ExpiresAt,
	); err != nil {
		return fmt.Errorf("insert attendance session: %w", err)
	}
	return nil
}

// Expire moves a session's expiry to the given instant and returns the
// updated row.
func (r *SessionRepository) Expire(ctx context.Context, id string, at time.Time) (*models.AttendanceSession, error) {
	query := fmt.Sprintf(`UPDATE attendance_sessions SET expires_at = $2 WHERE id = $1 RETURNING %s`, sessionColumns)
	var session models.AttendanceSession
	if err := r.db.GetContext(ctx, &session, query, id, at); err != nil {
		return nil, err
	}
	return &session, nil
}

// ListByGroup returns a group's sessions, newest first.
func (r *SessionRepository) ListByGroup(ctx context.Context, groupID string) ([]models.AttendanceSession, error) {
	query := fmt.Sprintf(`SELECT %s FROM attendance_sessions WHERE group_id = $1 ORDER BY created_at DESC`, sessionColumns)
	var sessions []models.AttendanceSession
	if err := r.db.SelectContext(ctx, &sessions, query, groupID); err != nil {
		return nil, fmt.Errorf("list sessions for group %s: %w", groupID, err)
	}
	return sessions, nil
}
