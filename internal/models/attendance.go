package models

import "time"

// CheckInStatus classifies a check-in against the session radius.
type CheckInStatus string

const (
	// CheckInStatusPresent means the student was inside the allowed radius.
	CheckInStatusPresent CheckInStatus = "present"
	// CheckInStatusLate means the student checked in from outside the radius
	// but was still accepted.
	CheckInStatusLate CheckInStatus = "late"
)

// Valid returns true when the status is a supported value.
func (s CheckInStatus) Valid() bool {
	switch s {
	case CheckInStatusPresent, CheckInStatusLate:
		return true
	default:
		return false
	}
}

// SessionType distinguishes session kinds created by faculty.
type SessionType string

const (
	SessionTypeLecture SessionType = "lecture"
	SessionTypeLab     SessionType = "lab"
)

// Valid returns true when the session type is supported.
func (s SessionType) Valid() bool {
	switch s {
	case SessionTypeLecture, SessionTypeLab:
		return true
	default:
		return false
	}
}

// AttendanceSession is one instructor-initiated attendance window. The flow
// only ever reads sessions; faculty endpoints create them.
type AttendanceSession struct {
	ID                  string      `db:"id" json:"id"`
	GroupID             string      `db:"group_id" json:"group_id"`
	QRToken             string      `db:"qr_token" json:"qr_token"`
	SessionName         string      `db:"session_name" json:"session_name"`
	SessionType         SessionType `db:"session_type" json:"session_type"`
	FacultyLatitude     float64     `db:"faculty_latitude" json:"faculty_latitude"`
	FacultyLongitude    float64     `db:"faculty_longitude" json:"faculty_longitude"`
	AllowedRadiusMeters float64     `db:"allowed_radius_meters" json:"allowed_radius_meters"`
	CreatedAt           time.Time   `db:"created_at" json:"created_at"`
	ExpiresAt           time.Time   `db:"expires_at" json:"expires_at"`
}

// Expired reports whether the session window has passed at the given instant.
func (s *AttendanceSession) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// AttendanceRecord is one student's check-in result for a session.
// Insert-only: the flow never mutates or deletes records.
type AttendanceRecord struct {
	ID                        string        `db:"id" json:"id"`
	SessionID                 string        `db:"session_id" json:"session_id"`
	StudentID                 string        `db:"student_id" json:"student_id"`
	Status                    CheckInStatus `db:"status" json:"status"`
	CheckInTime               time.Time     `db:"check_in_time" json:"check_in_time"`
	StudentLatitude           float64       `db:"student_latitude" json:"student_latitude"`
	StudentLongitude          float64       `db:"student_longitude" json:"student_longitude"`
	DistanceFromFacultyMeters float64       `db:"distance_from_faculty_meters" json:"distance_from_faculty_meters"`
}

// AttendanceRecordDetail augments a record with session display fields.
type AttendanceRecordDetail struct {
	AttendanceRecord
	SessionName string      `db:"session_name" json:"session_name"`
	SessionType SessionType `db:"session_type" json:"session_type"`
}

// AttendanceRecordFilter scopes record listing queries.
type AttendanceRecordFilter struct {
	SessionID string
	StudentID string
	Status    *CheckInStatus
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// SessionReportRow captures one roster line of a session report.
type SessionReportRow struct {
	StudentID                 string        `db:"student_id" json:"student_id"`
	StudentName               string        `db:"student_name" json:"student_name"`
	Status                    CheckInStatus `db:"status" json:"status"`
	CheckInTime               time.Time     `db:"check_in_time" json:"check_in_time"`
	DistanceFromFacultyMeters float64       `db:"distance_from_faculty_meters" json:"distance_from_faculty_meters"`
}

// StudentAttendanceRow is one entry in a student's check-in history.
type StudentAttendanceRow struct {
	SessionID   string        `db:"session_id" json:"session_id"`
	SessionName string        `db:"session_name" json:"session_name"`
	SessionType SessionType   `db:"session_type" json:"session_type"`
	Status      CheckInStatus `db:"status" json:"status"`
	CheckInTime time.Time     `db:"check_in_time" json:"check_in_time"`
}
