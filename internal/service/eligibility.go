package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/SouravGRoy/pcl-portal-api/internal/models"
	appErrors "github.com/SouravGRoy/pcl-portal-api/pkg/errors"
)

// EligibilityPolicy gates a check-in attempt before any record is written.
// CheckInService calls through this interface, so real duplicate-prevention
// rules can replace the permissive default without touching the call site.
type EligibilityPolicy interface {
	CheckEligibility(ctx context.Context, session *models.AttendanceSession, studentID string) error
}

// AllowAllPolicy permits any attempt that carries a session and a student.
// This mirrors the portal's original behaviour, where the gate only verified
// that a token and an authenticated user were present.
type AllowAllPolicy struct{}

// CheckEligibility implements EligibilityPolicy.
func (AllowAllPolicy) CheckEligibility(_ context.Context, session *models.AttendanceSession, studentID string) error {
	if session == nil || studentID == "" {
		return appErrors.Clone(appErrors.ErrValidation, "session and student required")
	}
	return nil
}

type recordFinder interface {
	FindBySessionAndStudent(ctx context.Context, sessionID, studentID string) (*models.AttendanceRecord, error)
}

// NoDuplicatePolicy rejects a second check-in for the same (session, student)
// pair. The insert-time uniqueness constraint still backstops races; this
// pre-check exists to fail fast with a specific error.
type NoDuplicatePolicy struct {
	records recordFinder
}

// NewNoDuplicatePolicy constructs the policy.
func NewNoDuplicatePolicy(records recordFinder) *NoDuplicatePolicy {
	return &NoDuplicatePolicy{records: records}
}

// CheckEligibility implements EligibilityPolicy.
func (p *NoDuplicatePolicy) CheckEligibility(ctx context.Context, session *models.AttendanceSession, studentID string) error {
	if session == nil || studentID == "" {
		return appErrors.Clone(appErrors.ErrValidation, "session and student required")
	}
	_, err := p.records.FindBySessionAndStudent(ctx, session.ID, studentID)
	if err == nil {
		return appErrors.ErrAlreadyCheckedIn
	}
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check prior attendance")
}
