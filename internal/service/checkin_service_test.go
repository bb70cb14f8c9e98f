package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SouravGRoy/pcl-portal-api/internal/models"
	"github.com/SouravGRoy/pcl-portal-api/pkg/config"
	appErrors "github.com/SouravGRoy/pcl-portal-api/pkg/errors"
)

type stubSessionReader struct {
	sessions map[string]*models.AttendanceSession
}

func (s *stubSessionReader) FindByToken(_ context.Context, token string) (*models.AttendanceSession, error) {
	if session, ok := s.sessions[token]; ok {
		return session, nil
	}
	return nil, sql.ErrNoRows
}

type stubRecordWriter struct {
	inserted  []*models.AttendanceRecord
	insertErr error
}

func (s *stubRecordWriter) Insert(_ context.Context, record *models.AttendanceRecord) (*models.AttendanceRecordDetail, error) {
	if s.insertErr != nil {
		return nil, s.insertErr
	}
	s.inserted = append(s.inserted, record)
	return &models.AttendanceRecordDetail{
		AttendanceRecord: *record,
		SessionName:      "Morning Lecture",
		SessionType:      models.SessionTypeLecture,
	}, nil
}

func (s *stubRecordWriter) FindBySessionAndStudent(_ context.Context, sessionID, studentID string) (*models.AttendanceRecord, error) {
	for _, r := range s.inserted {
		if r.SessionID == sessionID && r.StudentID == studentID {
			return r, nil
		}
	}
	return nil, sql.ErrNoRows
}

type stubCheckInMetrics struct {
	statuses []string
}

func (s *stubCheckInMetrics) RecordCheckIn(status string) {
	s.statuses = append(s.statuses, status)
}

func activeSession() *models.AttendanceSession {
	now := time.Now().UTC()
	return &models.AttendanceSession{
		ID:                  "sess-1",
		GroupID:             "group-1",
		QRToken:             "tok-active",
		SessionName:         "Morning Lecture",
		SessionType:         models.SessionTypeLecture,
		FacultyLatitude:     12.9716,
		FacultyLongitude:    77.5946,
		AllowedRadiusMeters: 50,
		CreatedAt:           now,
		ExpiresAt:           now.Add(30 * time.Minute),
	}
}

func newTestCheckInService(sessions *stubSessionReader, records *stubRecordWriter, eligibility EligibilityPolicy, metrics *stubCheckInMetrics, cfg config.AttendanceConfig) *CheckInService {
	// Avoid wrapping a typed nil pointer in the metrics interface.
	var m checkInMetrics
	if metrics != nil {
		m = metrics
	}
	return NewCheckInService(sessions, records, eligibility, nil, m, nil, nil, cfg)
}

func TestProcessCheckInWithinRadiusIsPresent(t *testing.T) {
	session := activeSession()
	sessions := &stubSessionReader{sessions: map[string]*models.AttendanceSession{session.QRToken: session}}
	records := &stubRecordWriter{}
	metrics := &stubCheckInMetrics{}
	svc := newTestCheckInService(sessions, records, AllowAllPolicy{}, metrics, config.AttendanceConfig{EnforceExpiry: true})

	detail, err := svc.ProcessCheckIn(context.Background(), CheckInRequest{
		QRCodeToken:      session.QRToken,
		StudentLatitude:  12.9716,
		StudentLongitude: 77.5946,
	}, "student-1")

	require.NoError(t, err)
	assert.Equal(t, models.CheckInStatusPresent, detail.Status)
	assert.Equal(t, "Morning Lecture", detail.SessionName)
	assert.Len(t, records.inserted, 1)
	assert.InDelta(t, 0, records.inserted[0].DistanceFromFacultyMeters, 0.5)
	assert.Equal(t, []string{"present"}, metrics.statuses)
}

func TestProcessCheckInResolvesScannedURL(t *testing.T) {
	session := activeSession()
	sessions := &stubSessionReader{sessions: map[string]*models.AttendanceSession{session.QRToken: session}}
	records := &stubRecordWriter{}
	svc := newTestCheckInService(sessions, records, AllowAllPolicy{}, nil, config.AttendanceConfig{EnforceExpiry: true})

	detail, err := svc.ProcessCheckIn(context.Background(), CheckInRequest{
		QRCodeToken:      "https://portal.example.edu/attendance/scan?token=" + session.QRToken,
		StudentLatitude:  12.9716,
		StudentLongitude: 77.5946,
	}, "student-1")

	require.NoError(t, err)
	assert.Equal(t, session.ID, detail.SessionID)
}

func TestProcessCheckInBeyondRadiusIsLate(t *testing.T) {
	session := activeSession()
	sessions := &stubSessionReader{sessions: map[string]*models.AttendanceSession{session.QRToken: session}}
	records := &stubRecordWriter{}
	metrics := &stubCheckInMetrics{}
	svc := newTestCheckInService(sessions, records, AllowAllPolicy{}, metrics, config.AttendanceConfig{EnforceExpiry: true})

	// ~200m north of the anchor.
	detail, err := svc.ProcessCheckIn(context.Background(), CheckInRequest{
		QRCodeToken:      session.QRToken,
		StudentLatitude:  12.9734,
		StudentLongitude: 77.5946,
	}, "student-1")

	require.NoError(t, err)
	assert.Equal(t, models.CheckInStatusLate, detail.Status)
	assert.Greater(t, records.inserted[0].DistanceFromFacultyMeters, 50.0)
	assert.Equal(t, []string{"late"}, metrics.statuses)
}

func TestProcessCheckInHardRejectBeyondFactor(t *testing.T) {
	session := activeSession()
	sessions := &stubSessionReader{sessions: map[string]*models.AttendanceSession{session.QRToken: session}}
	records := &stubRecordWriter{}
	svc := newTestCheckInService(sessions, records, AllowAllPolicy{}, nil, config.AttendanceConfig{
		EnforceExpiry:    true,
		HardRejectFactor: 3,
	})

	// ~200m away exceeds 50m * 3.
	_, err := svc.ProcessCheckIn(context.Background(), CheckInRequest{
		QRCodeToken:      session.QRToken,
		StudentLatitude:  12.9734,
		StudentLongitude: 77.5946,
	}, "student-1")

	require.ErrorIs(t, err, appErrors.ErrOutOfRange)
	assert.Empty(t, records.inserted)
}

func TestProcessCheckInUnknownToken(t *testing.T) {
	sessions := &stubSessionReader{sessions: map[string]*models.AttendanceSession{}}
	records := &stubRecordWriter{}
	svc := newTestCheckInService(sessions, records, AllowAllPolicy{}, nil, config.AttendanceConfig{EnforceExpiry: true})

	_, err := svc.ProcessCheckIn(context.Background(), CheckInRequest{
		QRCodeToken:      "no-such-token",
		StudentLatitude:  12.9716,
		StudentLongitude: 77.5946,
	}, "student-1")

	require.ErrorIs(t, err, appErrors.ErrSessionNotFound)
	assert.Empty(t, records.inserted)
}

func TestProcessCheckInExpiredSession(t *testing.T) {
	session := activeSession()
	sessions := &stubSessionReader{sessions: map[string]*models.AttendanceSession{session.QRToken: session}}
	records := &stubRecordWriter{}
	svc := newTestCheckInService(sessions, records, AllowAllPolicy{}, nil, config.AttendanceConfig{EnforceExpiry: true})
	svc.now = func() time.Time { return session.ExpiresAt.Add(time.Minute) }

	_, err := svc.ProcessCheckIn(context.Background(), CheckInRequest{
		QRCodeToken:      session.QRToken,
		StudentLatitude:  12.9716,
		StudentLongitude: 77.5946,
	}, "student-1")

	require.ErrorIs(t, err, appErrors.ErrSessionExpired)
	assert.Empty(t, records.inserted)
}

func TestProcessCheckInExpiryDisabledAllowsLateScan(t *testing.T) {
	session := activeSession()
	sessions := &stubSessionReader{sessions: map[string]*models.AttendanceSession{session.QRToken: session}}
	records := &stubRecordWriter{}
	svc := newTestCheckInService(sessions, records, AllowAllPolicy{}, nil, config.AttendanceConfig{EnforceExpiry: false})
	svc.now = func() time.Time { return session.ExpiresAt.Add(time.Minute) }

	_, err := svc.ProcessCheckIn(context.Background(), CheckInRequest{
		QRCodeToken:      session.QRToken,
		StudentLatitude:  12.9716,
		StudentLongitude: 77.5946,
	}, "student-1")

	require.NoError(t, err)
	assert.Len(t, records.inserted, 1)
}

func TestProcessCheckInDuplicateRejectedByPolicy(t *testing.T) {
	session := activeSession()
	sessions := &stubSessionReader{sessions: map[string]*models.AttendanceSession{session.QRToken: session}}
	records := &stubRecordWriter{}
	svc := newTestCheckInService(sessions, records, NewNoDuplicatePolicy(records), nil, config.AttendanceConfig{EnforceExpiry: true})

	req := CheckInRequest{
		QRCodeToken:      session.QRToken,
		StudentLatitude:  12.9716,
		StudentLongitude: 77.5946,
	}

	_, err := svc.ProcessCheckIn(context.Background(), req, "student-1")
	require.NoError(t, err)

	_, err = svc.ProcessCheckIn(context.Background(), req, "student-1")
	require.ErrorIs(t, err, appErrors.ErrAlreadyCheckedIn)
	assert.Len(t, records.inserted, 1)
}

func TestProcessCheckInInsertConflictMapsToAlreadyCheckedIn(t *testing.T) {
	session := activeSession()
	sessions := &stubSessionReader{sessions: map[string]*models.AttendanceSession{session.QRToken: session}}
	records := &stubRecordWriter{insertErr: sql.ErrNoRows}
	svc := newTestCheckInService(sessions, records, AllowAllPolicy{}, nil, config.AttendanceConfig{EnforceExpiry: true})

	_, err := svc.ProcessCheckIn(context.Background(), CheckInRequest{
		QRCodeToken:      session.QRToken,
		StudentLatitude:  12.9716,
		StudentLongitude: 77.5946,
	}, "student-1")

	require.ErrorIs(t, err, appErrors.ErrAlreadyCheckedIn)
}

func TestProcessCheckInRequiresToken(t *testing.T) {
	sessions := &stubSessionReader{sessions: map[string]*models.AttendanceSession{}}
	records := &stubRecordWriter{}
	svc := newTestCheckInService(sessions, records, AllowAllPolicy{}, nil, config.AttendanceConfig{EnforceExpiry: true})

	_, err := svc.ProcessCheckIn(context.Background(), CheckInRequest{
		StudentLatitude:  12.9716,
		StudentLongitude: 77.5946,
	}, "student-1")

	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Empty(t, records.inserted)
}

func TestProcessCheckInRequiresStudent(t *testing.T) {
	sessions := &stubSessionReader{sessions: map[string]*models.AttendanceSession{}}
	records := &stubRecordWriter{}
	svc := newTestCheckInService(sessions, records, AllowAllPolicy{}, nil, config.AttendanceConfig{EnforceExpiry: true})

	_, err := svc.ProcessCheckIn(context.Background(), CheckInRequest{QRCodeToken: "tok"}, "")
	require.ErrorIs(t, err, appErrors.ErrUnauthorized)
}
