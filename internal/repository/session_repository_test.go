package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SouravGRoy/pcl-portal-api/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func sessionRows(session models.AttendanceSession) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "group_id", "qr_token", "session_name", "session_type", "faculty_latitude", "faculty_longitude", "allowed_radius_meters", "created_at", "expires_at"}).
		AddRow(session.ID, session.GroupID, session.QRToken, session.SessionName, string(session.SessionType),
			session.FacultyLatitude, session.FacultyLongitude, session.AllowedRadiusMeters, session.CreatedAt, session.ExpiresAt)
}

func TestSessionFindByToken(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	now := time.Now().UTC()
	stored := models.AttendanceSession{
		ID:                  "sess-1",
		GroupID:             "group-1",
		QRToken:             "tok-1",
		SessionName:         "Morning Lecture",
		SessionType:         models.SessionTypeLecture,
		FacultyLatitude:     12.9716,
		FacultyLongitude:    77.5946,
		AllowedRadiusMeters: 50,
		CreatedAt:           now,
		ExpiresAt:           now.Add(30 * time.Minute),
	}

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, group_id, qr_token, session_name, session_type, faculty_latitude, faculty_longitude, allowed_radius_meters, created_at, expires_at FROM attendance_sessions WHERE qr_token = $1")).
		WithArgs("tok-1").
		WillReturnRows(sessionRows(stored))

	session, err := repo.FindByToken(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.Equal(t, "sess-1", session.ID)
	assert.Equal(t, models.SessionTypeLecture, session.SessionType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionFindByTokenMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	mock.ExpectQuery("SELECT .* FROM attendance_sessions WHERE qr_token").
		WithArgs("tok-missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByToken(context.Background(), "tok-missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionCreateAssignsID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	mock.ExpectExec("INSERT INTO attendance_sessions").WillReturnResult(sqlmock.NewResult(1, 1))

	session := &models.AttendanceSession{
		GroupID:             "group-1",
		QRToken:             "tok-1",
		SessionName:         "Lab 3",
		SessionType:         models.SessionTypeLab,
		FacultyLatitude:     12.9716,
		FacultyLongitude:    77.5946,
		AllowedRadiusMeters: 50,
		ExpiresAt:           time.Now().UTC().Add(time.Hour),
	}
	err := repo.Create(context.Background(), session)
	require.NoError(t, err)
	assert.NotEmpty(t, session.ID)
	assert.False(t, session.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionExpire(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	now := time.Now().UTC()
	updated := models.AttendanceSession{
		ID: "sess-1", GroupID: "group-1", QRToken: "tok-1", SessionName: "Morning Lecture",
		SessionType: models.SessionTypeLecture, FacultyLatitude: 12.9716, FacultyLongitude: 77.5946,
		AllowedRadiusMeters: 50, CreatedAt: now.Add(-time.Hour), ExpiresAt: now,
	}
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE attendance_sessions SET expires_at = $2 WHERE id = $1 RETURNING")).
		WithArgs("sess-1", now).
		WillReturnRows(sessionRows(updated))

	session, err := repo.Expire(context.Background(), "sess-1", now)
	require.NoError(t, err)
	assert.Equal(t, now, session.ExpiresAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionListByGroup(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	now := time.Now().UTC()
	rows := sessionRows(models.AttendanceSession{
		ID: "sess-1", GroupID: "group-1", QRToken: "tok-1", SessionName: "Morning Lecture",
		SessionType: models.SessionTypeLecture, FacultyLatitude: 12.9716, FacultyLongitude: 77.5946,
		AllowedRadiusMeters: 50, CreatedAt: now, ExpiresAt: now.Add(time.Hour),
	})
	mock.ExpectQuery("SELECT .* FROM attendance_sessions WHERE group_id").
		WithArgs("group-1").
		WillReturnRows(rows)

	sessions, err := repo.ListByGroup(context.Background(), "group-1")
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}
