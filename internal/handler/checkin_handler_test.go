package handler

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/SouravGRoy/pcl-portal-api/internal/middleware"
	"github.com/SouravGRoy/pcl-portal-api/internal/models"
	"github.com/SouravGRoy/pcl-portal-api/internal/service"
	"github.com/SouravGRoy/pcl-portal-api/pkg/config"
)

type checkInSessionsMock struct {
	session *models.AttendanceSession
}

func (m *checkInSessionsMock) FindByToken(_ context.Context, token string) (*models.AttendanceSession, error) {
	if m.session != nil && m.session.QRToken == token {
		return m.session, nil
	}
	return nil, sql.ErrNoRows
}

type checkInRecordsMock struct {
	inserted []*models.AttendanceRecord
}

func (m *checkInRecordsMock) Insert(_ context.Context, record *models.AttendanceRecord) (*models.AttendanceRecordDetail, error) {
	m.inserted = append(m.inserted, record)
	return &models.AttendanceRecordDetail{AttendanceRecord: *record, SessionName: "Physics Lab"}, nil
}

func newCheckInTestHandler(session *models.AttendanceSession, records *checkInRecordsMock) *CheckInHandler {
	svc := service.NewCheckInService(
		&checkInSessionsMock{session: session},
		records,
		nil, nil, nil, nil, nil,
		config.AttendanceConfig{EnforceExpiry: true, DefaultRadiusMeters: 50},
	)
	return NewCheckInHandler(svc)
}

func testSession() *models.AttendanceSession {
	return &models.AttendanceSession{
		ID:                  "sess-1",
		GroupID:             "group-1",
		QRToken:             "tok-1",
		SessionName:         "Physics Lab",
		SessionType:         models.SessionTypeLab,
		FacultyLatitude:     12.9716,
		FacultyLongitude:    77.5946,
		AllowedRadiusMeters: 50,
		ExpiresAt:           time.Now().UTC().Add(10 * time.Minute),
	}
}

func TestCheckInHandlerRecordsAttendance(t *testing.T) {
	gin.SetMode(gin.TestMode)
	records := &checkInRecordsMock{}
	handler := newCheckInTestHandler(testSession(), records)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body := `{"qr_code_token":"tok-1","student_latitude":12.9716,"student_longitude":77.5946}`
	req, _ := http.NewRequest(http.MethodPost, "/attendance/check-in", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "student-1", Role: models.RoleStudent})

	handler.CheckIn(c)
	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, records.inserted, 1)
	require.Equal(t, models.CheckInStatusPresent, records.inserted[0].Status)
}

func TestCheckInHandlerRequiresAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newCheckInTestHandler(testSession(), &checkInRecordsMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body := `{"qr_code_token":"tok-1","student_latitude":12.9716,"student_longitude":77.5946}`
	req, _ := http.NewRequest(http.MethodPost, "/attendance/check-in", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.CheckIn(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCheckInHandlerUnknownToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	records := &checkInRecordsMock{}
	handler := newCheckInTestHandler(testSession(), records)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body := `{"qr_code_token":"tok-unknown","student_latitude":12.9716,"student_longitude":77.5946}`
	req, _ := http.NewRequest(http.MethodPost, "/attendance/check-in", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "student-1", Role: models.RoleStudent})

	handler.CheckIn(c)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Empty(t, records.inserted)
}

func TestScanPreviewResolvesSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newCheckInTestHandler(testSession(), &checkInRecordsMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/attendance/scan?token=tok-1", nil)
	c.Request = req

	handler.ScanPreview(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Physics Lab")
}

func TestScanPreviewRequiresToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newCheckInTestHandler(testSession(), &checkInRecordsMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/attendance/scan", nil)
	c.Request = req

	handler.ScanPreview(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
