package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"github.com/SouravGRoy/pcl-portal-api/internal/models"
	"github.com/SouravGRoy/pcl-portal-api/pkg/config"
	appErrors "github.com/SouravGRoy/pcl-portal-api/pkg/errors"
)

type sessionRepository interface {
	FindByID(ctx context.Context, id string) (*models.AttendanceSession, error)
	Create(ctx context.Context, session *models.AttendanceSession) error
	Expire(ctx context.Context, id string, at time.Time) (*models.AttendanceSession, error)
	ListByGroup(ctx context.Context, groupID string) ([]models.AttendanceSession, error)
}

type sessionReportReader interface {
	SessionReport(ctx context.Context, sessionID string) ([]models.SessionReportRow, error)
	StudentHistory(ctx context.Context, studentID string) ([]models.StudentAttendanceRow, error)
}

type groupReader interface {
	FindByID(ctx context.Context, id string) (*models.Group, error)
}

// CreateSessionRequest describes a faculty session-creation payload.
type CreateSessionRequest struct {
	GroupID             string  `json:"group_id" validate:"required"`
	SessionName         string  `json:"session_name" validate:"required"`
	SessionType         string  `json:"session_type" validate:"required,session_type"`
	FacultyLatitude     float64 `json:"faculty_latitude" validate:"latitude"`
	FacultyLongitude    float64 `json:"faculty_longitude" validate:"longitude"`
	AllowedRadiusMeters float64 `json:"allowed_radius_meters" validate:"omitempty,gt=0"`
	ExpiresInMinutes    int     `json:"expires_in_minutes" validate:"omitempty,gt=0"`
}

// SessionService owns the faculty side of attendance: minting sessions and
// rendering their QR codes and reports.
type SessionService struct {
	sessions  sessionRepository
	records   sessionReportReader
	groups    groupReader
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       config.AttendanceConfig
	baseURL   string
}

// NewSessionService constructs the service.
func NewSessionService(sessions sessionRepository, records sessionReportReader, groups groupReader, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg config.AttendanceConfig, baseURL string) *SessionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &SessionService{sessions: sessions, records: records, groups: groups, cache: cache, metrics: metrics, validator: validate, logger: logger, cfg: cfg, baseURL: strings.TrimRight(baseURL, "/")}
	svc.validator.RegisterValidation("session_type", func(fl validator.FieldLevel) bool {
		return models.SessionType(strings.ToLower(fl.Field().String())).Valid()
	})
	return svc
}

// Create mints a session with a fresh single-purpose token. The faculty
// coordinates recorded here become the authoritative class anchor.
func (s *SessionService) Create(ctx context.Context, req CreateSessionRequest, facultyID string) (*models.AttendanceSession, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session payload")
	}

	group, err := s.groups.FindByID(ctx, req.GroupID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "group not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load group")
	}
	if group.FacultyID != facultyID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the owning faculty can start a session")
	}

	radius := req.AllowedRadiusMeters
	if radius <= 0 {
		radius = s.cfg.DefaultRadiusMeters
	}
	ttl := s.cfg.SessionTTL
	if req.ExpiresInMinutes > 0 {
		ttl = time.Duration(req.ExpiresInMinutes) * time.Minute
	}

	now := time.Now().UTC()
	session := &models.AttendanceSession{
		GroupID:             req.GroupID,
		QRToken:             uuid.NewString(),
		SessionName:         req.SessionName,
		SessionType:         models.SessionType(strings.ToLower(req.SessionType)),
		FacultyLatitude:     req.FacultyLatitude,
		FacultyLongitude:    req.FacultyLongitude,
		AllowedRadiusMeters: radius,
		CreatedAt:           now,
		ExpiresAt:           now.Add(ttl),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create session")
	}

	s.logger.Info("attendance session created",
		zap.String("session_id", session.ID),
		zap.String("group_id", session.GroupID),
		zap.Time("expires_at", session.ExpiresAt),
	)
	return session, nil
}

// Get returns a session by id.
func (s *SessionService) Get(ctx context.Context, id string) (*models.AttendanceSession, error) {
	session, err := s.sessions.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	return session, nil
}

// Close ends a session early by moving its expiry to now and evicting the
// cached token lookup so stale scans stop resolving.
func (s *SessionService) Close(ctx context.Context, sessionID, facultyID string) (*models.AttendanceSession, error) {
	session, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	group, err := s.groups.FindByID(ctx, session.GroupID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load group")
	}
	if group.FacultyID != facultyID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the owning faculty can close a session")
	}

	closed, err := s.sessions.Expire(ctx, sessionID, time.Now().UTC())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to close session")
	}

	s.cache.Invalidate(ctx, fmt.Sprintf("attendance:session:token:%s", closed.QRToken))
	s.logger.Info("attendance session closed",
		zap.String("session_id", closed.ID),
		zap.String("group_id", closed.GroupID),
	)
	return closed, nil
}

// ListByGroup returns a group's sessions.
func (s *SessionService) ListByGroup(ctx context.Context, groupID string) ([]models.AttendanceSession, error) {
	sessions, err := s.sessions.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sessions")
	}
	return sessions, nil
}

// ScanURL is the address encoded into a session's QR image. Opening it in a
// browser bypasses the camera step entirely.
func (s *SessionService) ScanURL(session *models.AttendanceSession) string {
	return fmt.Sprintf("%s/attendance/scan?token=%s", s.baseURL, session.QRToken)
}

// QRImage renders the session's scan URL as a PNG.
func (s *SessionService) QRImage(ctx context.Context, sessionID string, size int) ([]byte, error) {
	session, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		size = 256
	}
	png, err := qrcode.Encode(s.ScanURL(session), qrcode.Medium, size)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render QR code")
	}
	return png, nil
}

// Report returns the session roster report.
func (s *SessionService) Report(ctx context.Context, sessionID string) ([]models.SessionReportRow, error) {
	if _, err := s.Get(ctx, sessionID); err != nil {
		return nil, err
	}
	start := time.Now()
	rows, err := s.records.SessionReport(ctx, sessionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session report")
	}
	s.metrics.ObserveDBQuery("session_report", time.Since(start))
	return rows, nil
}

// StudentHistory returns a student's check-in history.
func (s *SessionService) StudentHistory(ctx context.Context, studentID string) ([]models.StudentAttendanceRow, error) {
	start := time.Now()
	rows, err := s.records.StudentHistory(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance history")
	}
	s.metrics.ObserveDBQuery("student_history", time.Since(start))
	return rows, nil
}
