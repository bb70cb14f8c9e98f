package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/SouravGRoy/pcl-portal-api/internal/models"
	appErrors "github.com/SouravGRoy/pcl-portal-api/pkg/errors"
)

type groupRepository interface {
	FindByID(ctx context.Context, id string) (*models.Group, error)
	ListMembers(ctx context.Context, groupID string) ([]models.GroupMember, error)
}

// GroupService reads groups and rosters.
type GroupService struct {
	repo   groupRepository
	logger *zap.Logger
}

// NewGroupService constructs a group service.
func NewGroupService(repo groupRepository, logger *zap.Logger) *GroupService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GroupService{repo: repo, logger: logger}
}

// Get returns a single group.
func (s *GroupService) Get(ctx context.Context, id string) (*models.Group, error) {
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "group id is required")
	}
	group, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "group not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load group")
	}
	return group, nil
}

// Roster returns the group's members with student names.
func (s *GroupService) Roster(ctx context.Context, groupID string) ([]models.GroupMember, error) {
	if groupID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "group id is required")
	}
	members, err := s.repo.ListMembers(ctx, groupID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}
	if members == nil {
		members = []models.GroupMember{}
	}
	return members, nil
}
