package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/SouravGRoy/pcl-portal-api/internal/models"
)

// AttendanceRecordRepository persists check-in records. Records are
// insert-only; the table carries UNIQUE (session_id, student_id).
type AttendanceRecordRepository struct {
	db *sqlx.DB
}

// NewAttendanceRecordRepository constructs the repository.
func NewAttendanceRecordRepository(db *sqlx.DB) *AttendanceRecordRepository {
	return &AttendanceRecordRepository{db: db}
}

// Insert stores one check-in and returns it joined with session display
// fields. A conflicting (session, student) pair surfaces as sql.ErrNoRows
// because the ON CONFLICT clause swallows the insert; callers map that to a
// duplicate check-in error.
func (r *AttendanceRecordRepository) Insert(ctx context.Context, record *models.AttendanceRecord) (*models.AttendanceRecordDetail, error) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CheckInTime.IsZero() {
		record.CheckInTime = time.Now().UTC()
	}
	query := `WITH inserted AS (
    INSERT INTO attendance_records (id, session_id, student_id, status, check_in_time, student_latitude, student_longitude, distance_from_faculty_meters)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    ON CONFLICT (session_id, student_id) DO NOTHING
    RETURNING id, session_id, student_id, status, check_in_time, student_latitude, student_longitude, distance_from_faculty_meters
)
SELECT i.id, i.session_id, i.student_id, i.status, i.check_in_time, i.student_latitude, i.student_longitude, i.distance_from_faculty_meters,
       s.session_name, s.session_type
FROM inserted i
JOIN attendance_sessions s ON s.id = i.session_id`
	var detail models.AttendanceRecordDetail
	if err := r.db.GetContext(ctx, &detail, query,
		record.ID, record.SessionID, record.StudentID, record.Status, record.CheckInTime,
		record.StudentLatitude, record.StudentLongitude, record.DistanceFromFacultyMeters,
	); err != nil {
		return nil, err
	}
	return &detail, nil
}

// FindBySessionAndStudent returns the record for a (session, student) pair.
func (r *AttendanceRecordRepository) FindBySessionAndStudent(ctx context.Context, sessionID, studentID string) (*models.AttendanceRecord, error) {
	query := `SELECT id, session_id, student_id, status, check_in_time, student_latitude, student_longitude, distance_from_faculty_meters
FROM attendance_records WHERE session_id = $1 AND student_id = $2`
	var record models.AttendanceRecord
	if err := r.db.GetContext(ctx, &record, query, sessionID, studentID); err != nil {
		return nil, err
	}
	return &record, nil
}

// List returns records filtered by the provided criteria.
func (r *AttendanceRecordRepository) List(ctx context.Context, filter models.AttendanceRecordFilter) ([]models.AttendanceRecordDetail, int, error) {
	base := `FROM attendance_records ar
JOIN attendance_sessions s ON s.id = ar.session_id`
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.SessionID != "" {
		where = append(where, fmt.Sprintf("ar.session_id = $%d", len(args)+1))
		args = append(args, filter.SessionID)
	}
	if filter.StudentID != "" {
		where = append(where, fmt.Sprintf("ar.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.Status != nil && filter.Status.Valid() {
		where = append(where, fmt.Sprintf("ar.status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	whereClause := strings.Join(where, " AND ")

	allowedSort := map[string]string{
		"check_in_time": "ar.check_in_time",
		"distance":      "ar.distance_from_faculty_meters",
	}
	column, ok := allowedSort[filter.SortBy]
	if !ok {
		column = "ar.check_in_time"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT ar.id, ar.session_id, ar.student_id, ar.status, ar.check_in_time, ar.student_latitude, ar.student_longitude, ar.distance_from_faculty_meters,
        s.session_name, s.session_type
        %s WHERE %s ORDER BY %s %s LIMIT %d OFFSET %d`, base, whereClause, column, order, size, offset)
	var rows []models.AttendanceRecordDetail
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list attendance records: %w", err)
	}
	countQuery := fmt.Sprintf("SELECT COUNT(*) %s WHERE %s", base, whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count attendance records: %w", err)
	}
	return rows, total, nil
}

// SessionReport lists check-ins for a session joined with student names.
func (r *AttendanceRecordRepository) SessionReport(ctx context.Context, sessionID string) ([]models.SessionReportRow, error) {
	query := `SELECT ar.student_id, u.full_name AS student_name, ar.status, ar.check_in_time, ar.distance_from_faculty_meters
FROM attendance_records ar
JOIN users u ON u.id = ar.student_id
WHERE ar.session_id = $1
ORDER BY ar.check_in_time ASC`
	var rows []models.SessionReportRow
	if err := r.db.SelectContext(ctx, &rows, query, sessionID); err != nil {
		return nil, fmt.Errorf("attendance session report: %w", err)
	}
	return rows, nil
}

// StudentHistory lists a student's check-ins across sessions, newest first.
func (r *AttendanceRecordRepository) StudentHistory(ctx context.Context, studentID string) ([]models.StudentAttendanceRow, error) {
	query := `SELECT ar.session_id, s.session_name, s.session_type, ar.status, ar.check_in_time
FROM attendance_records ar
JOIN attendance_sessions s ON s.id = ar.session_id
WHERE ar.student_id = $1
ORDER BY ar.check_in_time DESC`
	var rows []models.StudentAttendanceRow
	if err := r.db.SelectContext(ctx, &rows, query, studentID); err != nil {
		return nil, fmt.Errorf("student attendance history: %w", err)
	}
	return rows, nil
}
