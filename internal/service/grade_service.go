package service

import (
	"context"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/SouravGRoy/pcl-portal-api/internal/models"
	appErrors "github.com/SouravGRoy/pcl-portal-api/pkg/errors"
)

type assignmentReader interface {
	ListAssignmentsByGroup(ctx context.Context, groupID string) ([]models.Assignment, error)
}

type submissionReader interface {
	ListGradedSubmissions(ctx context.Context, assignmentIDs []string, groupID string) ([]models.GradedSubmissionRow, error)
}

type memberReader interface {
	ListMembers(ctx context.Context, groupID string) ([]models.GroupMember, error)
}

// GradeService computes grade summaries fresh on every request. Nothing here
// is cached or persisted.
type GradeService struct {
	assignments assignmentReader
	submissions submissionReader
	members     memberReader
	logger      *zap.Logger
}

// NewGradeService constructs the service.
func NewGradeService(assignments assignmentReader, submissions submissionReader, members memberReader, logger *zap.Logger) *GradeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeService{assignments: assignments, submissions: submissions, members: members, logger: logger}
}

// gpaSteps maps a percentage floor to a 4.0-scale GPA. Monotonic by
// construction: entries are ordered by descending floor.
var gpaSteps = []struct {
	floor float64
	gpa   float64
}{
	{90, 4.0},
	{85, 3.7},
	{80, 3.3},
	{75, 3.0},
	{70, 2.7},
	{65, 2.3},
	{60, 2.0},
	{55, 1.7},
	{50, 1.3},
	{45, 1.0},
}

// GPAFromPercentage maps a percentage in [0,100] onto the fixed GPA table.
func GPAFromPercentage(percentage float64) float64 {
	for _, step := range gpaSteps {
		if percentage >= step.floor {
			return step.gpa
		}
	}
	return 0.0
}

// GroupStudentGrades aggregates per-student grades for a group.
//
// Every roster member appears in the result; students without a graded
// submission carry zeroes and are excluded from the class averages. A group
// with no assignments yields a zero-valued stats object, not an error.
func (s *GradeService) GroupStudentGrades(ctx context.Context, groupID string) (*models.GroupGradeStats, error) {
	if groupID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "group id required")
	}

	assignments, err := s.assignments.ListAssignmentsByGroup(ctx, groupID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignments")
	}

	stats := &models.GroupGradeStats{
		GroupID:          groupID,
		Students:         []models.StudentGradeSummary{},
		TotalAssignments: len(assignments),
	}
	if len(assignments) == 0 {
		return stats, nil
	}

	assignmentIDs := make([]string, len(assignments))
	for i, a := range assignments {
		assignmentIDs[i] = a.ID
	}

	rows, err := s.submissions.ListGradedSubmissions(ctx, assignmentIDs, groupID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load submissions")
	}

	members, err := s.members.ListMembers(ctx, groupID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load group roster")
	}

	type accumulator struct {
		name      string
		earned    float64
		possible  float64
		completed int
	}
	perStudent := map[string]*accumulator{}
	for _, m := range members {
		perStudent[m.StudentID] = &accumulator{name: m.StudentName}
	}
	for _, row := range rows {
		acc, ok := perStudent[row.StudentID]
		if !ok {
			// A graded submission from a student no longer on the roster
			// still counts for that student.
			acc = &accumulator{name: row.StudentName}
			perStudent[row.StudentID] = acc
		}
		acc.earned += row.TotalScore
		acc.possible += row.MaxScore
		acc.completed++
	}

	var gpaSum, scoreSum float64
	var gradedStudents, completedTotal int
	for studentID, acc := range perStudent {
		summary := models.StudentGradeSummary{
			StudentID:            studentID,
			StudentName:          acc.name,
			TotalPointsEarned:    acc.earned,
			TotalPointsPossible:  acc.possible,
			CompletedAssignments: acc.completed,
			TotalAssignments:     len(assignments),
		}
		if acc.possible > 0 {
			// GPA maps from the exact ratio; rounding the displayed percentage
			// first would flip results sitting just under a step floor.
			raw := 100 * acc.earned / acc.possible
			summary.Percentage = round2(raw)
			summary.GPA = GPAFromPercentage(raw)
		}
		summary.CompletionRate = round2(100 * float64(acc.completed) / float64(len(assignments)))

		if acc.completed > 0 {
			gpaSum += summary.GPA
			scoreSum += summary.Percentage
			gradedStudents++
		}
		completedTotal += acc.completed
		stats.Students = append(stats.Students, summary)
	}

	sort.SliceStable(stats.Students, func(i, j int) bool {
		if stats.Students[i].GPA != stats.Students[j].GPA {
			return stats.Students[i].GPA > stats.Students[j].GPA
		}
		return stats.Students[i].StudentName < stats.Students[j].StudentName
	})

	stats.TotalStudents = len(stats.Students)
	if gradedStudents > 0 {
		stats.ClassAverageGPA = round2(gpaSum / float64(gradedStudents))
		stats.ClassAverageScore = round2(scoreSum / float64(gradedStudents))
	}
	if stats.TotalStudents > 0 {
		stats.AssignmentCompletionRate = round2(100 * float64(completedTotal) / float64(len(assignments)*stats.TotalStudents))
	}
	return stats, nil
}

// StudentGrades returns the summary for one student in a group.
func (s *GradeService) StudentGrades(ctx context.Context, groupID, studentID string) (*models.StudentGradeSummary, error) {
	stats, err := s.GroupStudentGrades(ctx, groupID)
	if err != nil {
		return nil, err
	}
	for i := range stats.Students {
		if stats.Students[i].StudentID == studentID {
			return &stats.Students[i], nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found in group")
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
