package models

import "time"

// AnnouncementAudience scopes who can read an announcement.
type AnnouncementAudience string

const (
	AnnouncementAudienceAll     AnnouncementAudience = "ALL"
	AnnouncementAudienceFaculty AnnouncementAudience = "FACULTY"
	AnnouncementAudienceStudent AnnouncementAudience = "STUDENT"
	AnnouncementAudienceGroup   AnnouncementAudience = "GROUP"
)

// AnnouncementPriority orders announcements in listings.
type AnnouncementPriority string

const (
	AnnouncementPriorityLow    AnnouncementPriority = "LOW"
	AnnouncementPriorityNormal AnnouncementPriority = "NORMAL"
	AnnouncementPriorityHigh   AnnouncementPriority = "HIGH"
)

// Announcement is a faculty- or admin-authored notice.
type Announcement struct {
	ID            string               `db:"id" json:"id"`
	Title         string               `db:"title" json:"title"`
	Content       string               `db:"content" json:"content"`
	Audience      AnnouncementAudience `db:"audience" json:"audience"`
	TargetGroupID *string              `db:"target_group_id" json:"target_group_id,omitempty"`
	Priority      AnnouncementPriority `db:"priority" json:"priority"`
	IsPinned      bool                 `db:"is_pinned" json:"is_pinned"`
	PublishedAt   time.Time            `db:"published_at" json:"published_at"`
	ExpiresAt     *time.Time           `db:"expires_at" json:"expires_at,omitempty"`
	CreatedBy     string               `db:"created_by" json:"created_by"`
	CreatedAt     time.Time            `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time            `db:"updated_at" json:"updated_at"`
}

// AnnouncementFilter scopes announcement listings.
type AnnouncementFilter struct {
	AudienceRoles []UserRole
	GroupIDs      []string
	Page          int
	PageSize      int
}
