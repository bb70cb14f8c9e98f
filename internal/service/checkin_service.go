package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/SouravGRoy/pcl-portal-api/internal/models"
	"github.com/SouravGRoy/pcl-portal-api/pkg/config"
	appErrors "github.com/SouravGRoy/pcl-portal-api/pkg/errors"
	"github.com/SouravGRoy/pcl-portal-api/pkg/geo"
)

type sessionReader interface {
	FindByToken(ctx context.Context, token string) (*models.AttendanceSession, error)
}

type recordWriter interface {
	Insert(ctx context.Context, record *models.AttendanceRecord) (*models.AttendanceRecordDetail, error)
}

type checkInMetrics interface {
	RecordCheckIn(status string)
}

// CheckInRequest is the inbound check-in payload. The token may arrive as a
// raw token or as a scanned URL; ProcessCheckIn resolves both.
type CheckInRequest struct {
	QRCodeToken      string  `json:"qr_code_token" validate:"required"`
	StudentLatitude  float64 `json:"student_latitude" validate:"latitude"`
	StudentLongitude float64 `json:"student_longitude" validate:"longitude"`
}

// CheckInService performs the authoritative attendance check-in.
type CheckInService struct {
	sessions    sessionReader
	records     recordWriter
	eligibility EligibilityPolicy
	cache       *CacheService
	metrics     checkInMetrics
	validator   *validator.Validate
	logger      *zap.Logger
	cfg         config.AttendanceConfig
	now         func() time.Time
}

// NewCheckInService constructs the service. A nil policy falls back to the
// permissive gate; the duplicate policy is the configured default.
func NewCheckInService(sessions sessionReader, records recordWriter, eligibility EligibilityPolicy, cache *CacheService, metrics checkInMetrics, validate *validator.Validate, logger *zap.Logger, cfg config.AttendanceConfig) *CheckInService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if eligibility == nil {
		eligibility = AllowAllPolicy{}
	}
	return &CheckInService{
		sessions:    sessions,
		records:     records,
		eligibility: eligibility,
		cache:       cache,
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
		cfg:         cfg,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// ResolveSession finds the session for a scanned payload or raw token.
// Used both by ProcessCheckIn and by the scan-preview endpoint.
func (s *CheckInService) ResolveSession(ctx context.Context, payload string) (*models.AttendanceSession, error) {
	token := ResolveToken(payload)
	if token == "" {
		return nil, appErrors.ErrSessionNotFound
	}

	cacheKey := fmt.Sprintf("attendance:session:token:%s", token)
	var session models.AttendanceSession
	if hit, _ := s.cache.Get(ctx, cacheKey, &session); hit {
		return &session, nil
	}

	found, err := s.sessions.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrSessionNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve session")
	}

	s.cache.Set(ctx, cacheKey, found, s.cfg.SessionCacheTTL)
	return found, nil
}

// ProcessCheckIn validates the session, measures the student's distance from
// the class anchor, classifies the result and persists exactly one record.
// No internal retries: the caller owns the retry affordance.
func (s *CheckInService) ProcessCheckIn(ctx context.Context, req CheckInRequest, studentID string) (*models.AttendanceRecordDetail, error) {
	if studentID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid check-in payload")
	}

	session, err := s.ResolveSession(ctx, req.QRCodeToken)
	if err != nil {
		s.observe("rejected")
		return nil, err
	}

	if s.cfg.EnforceExpiry && session.Expired(s.now()) {
		s.observe("expired")
		return nil, appErrors.ErrSessionExpired
	}

	if err := s.eligibility.CheckEligibility(ctx, session, studentID); err != nil {
		s.observe("rejected")
		return nil, err
	}

	distance := geo.Haversine(
		geo.Coordinate{Latitude: req.StudentLatitude, Longitude: req.StudentLongitude},
		geo.Coordinate{Latitude: session.FacultyLatitude, Longitude: session.FacultyLongitude},
	)

	if s.cfg.HardRejectFactor > 0 && distance > session.AllowedRadiusMeters*s.cfg.HardRejectFactor {
		s.observe("out_of_range")
		return nil, appErrors.ErrOutOfRange
	}

	status := models.CheckInStatusPresent
	if distance > session.AllowedRadiusMeters {
		status = models.CheckInStatusLate
	}

	record := &models.AttendanceRecord{
		SessionID:                 session.ID,
		StudentID:                 studentID,
		Status:                    status,
		CheckInTime:               s.now(),
		StudentLatitude:           req.StudentLatitude,
		StudentLongitude:          req.StudentLongitude,
		DistanceFromFacultyMeters: distance,
	}

	stored, err := s.records.Insert(ctx, record)
	if err != nil {
		// The insert swallows conflicting rows, so a lost race between two
		// near-simultaneous scans surfaces here as no row returned.
		if errors.Is(err, sql.ErrNoRows) {
			s.observe("rejected")
			return nil, appErrors.ErrAlreadyCheckedIn
		}
		s.observe("error")
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record attendance")
	}

	s.observe(string(status))
	s.logger.Info("attendance recorded",
		zap.String("session_id", session.ID),
		zap.String("student_id", studentID),
		zap.String("status", string(status)),
		zap.Float64("distance_m", distance),
	)
	return stored, nil
}

func (s *CheckInService) observe(status string) {
	if s.metrics != nil {
		s.metrics.RecordCheckIn(status)
	}
}
