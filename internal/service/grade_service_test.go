package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SouravGRoy/pcl-portal-api/internal/models"
)

type stubAssignmentReader struct {
	assignments []models.Assignment
}

func (s *stubAssignmentReader) ListAssignmentsByGroup(_ context.Context, _ string) ([]models.Assignment, error) {
	return s.assignments, nil
}

type stubSubmissionReader struct {
	rows []models.GradedSubmissionRow
}

func (s *stubSubmissionReader) ListGradedSubmissions(_ context.Context, _ []string, _ string) ([]models.GradedSubmissionRow, error) {
	return s.rows, nil
}

type stubMemberReader struct {
	members []models.GroupMember
}

func (s *stubMemberReader) ListMembers(_ context.Context, _ string) ([]models.GroupMember, error) {
	return s.members, nil
}

func TestGPAFromPercentage(t *testing.T) {
	cases := []struct {
		percentage float64
		want       float64
	}{
		{100, 4.0},
		{90, 4.0},
		{89.99, 3.7},
		{85, 3.7},
		{80, 3.3},
		{75, 3.0},
		{70, 2.7},
		{65, 2.3},
		{60, 2.0},
		{55, 1.7},
		{50, 1.3},
		{45, 1.0},
		{44.999, 0.0},
		{10, 0.0},
		{0, 0.0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, GPAFromPercentage(tc.percentage), "percentage %v", tc.percentage)
	}
}

func TestGPAFromPercentageMonotonic(t *testing.T) {
	prev := GPAFromPercentage(0)
	for p := 1.0; p <= 100; p++ {
		cur := GPAFromPercentage(p)
		assert.GreaterOrEqual(t, cur, prev, "gpa dropped at %v", p)
		prev = cur
	}
}

func TestGroupStudentGradesNoAssignments(t *testing.T) {
	svc := NewGradeService(&stubAssignmentReader{}, &stubSubmissionReader{}, &stubMemberReader{}, nil)

	stats, err := svc.GroupStudentGrades(context.Background(), "group-1")
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalAssignments)
	assert.Empty(t, stats.Students)
	assert.Zero(t, stats.ClassAverageGPA)
	assert.Zero(t, stats.ClassAverageScore)
}

func TestGroupStudentGradesAggregation(t *testing.T) {
	assignments := &stubAssignmentReader{assignments: []models.Assignment{
		{ID: "a1", GroupID: "group-1", Title: "Quiz 1", MaxScore: 100},
		{ID: "a2", GroupID: "group-1", Title: "Quiz 2", MaxScore: 50},
	}}
	submissions := &stubSubmissionReader{rows: []models.GradedSubmissionRow{
		{StudentID: "s1", StudentName: "Asha", AssignmentID: "a1", TotalScore: 92, MaxScore: 100},
		{StudentID: "s1", StudentName: "Asha", AssignmentID: "a2", TotalScore: 44, MaxScore: 50},
		{StudentID: "s2", StudentName: "Ravi", AssignmentID: "a1", TotalScore: 60, MaxScore: 100},
	}}
	members := &stubMemberReader{members: []models.GroupMember{
		{GroupID: "group-1", StudentID: "s1", StudentName: "Asha"},
		{GroupID: "group-1", StudentID: "s2", StudentName: "Ravi"},
		{GroupID: "group-1", StudentID: "s3", StudentName: "Kiran"},
	}}

	svc := NewGradeService(assignments, submissions, members, nil)
	stats, err := svc.GroupStudentGrades(context.Background(), "group-1")
	require.NoError(t, err)

	require.Len(t, stats.Students, 3)
	assert.Equal(t, 2, stats.TotalAssignments)
	assert.Equal(t, 3, stats.TotalStudents)

	// Sorted GPA descending, name ascending on ties.
	assert.Equal(t, "s1", stats.Students[0].StudentID)
	assert.InDelta(t, 90.67, stats.Students[0].Percentage, 0.01)
	assert.Equal(t, 4.0, stats.Students[0].GPA)
	assert.Equal(t, 2, stats.Students[0].CompletedAssignments)

	assert.Equal(t, "s2", stats.Students[1].StudentID)
	assert.InDelta(t, 60.0, stats.Students[1].Percentage, 0.01)
	assert.Equal(t, 2.0, stats.Students[1].GPA)

	// Roster member with no graded work carries zeroes.
	assert.Equal(t, "s3", stats.Students[2].StudentID)
	assert.Zero(t, stats.Students[2].Percentage)
	assert.Zero(t, stats.Students[2].GPA)
	assert.Zero(t, stats.Students[2].CompletedAssignments)

	// Class averages exclude the zero-submission student.
	assert.InDelta(t, 3.0, stats.ClassAverageGPA, 0.01)
	assert.InDelta(t, 75.34, stats.ClassAverageScore, 0.01)
}

func TestGroupStudentGradesGPAUsesExactRatio(t *testing.T) {
	// 44996/100000 = 44.996%: displayed as 45.00 but still below the 1.0
	// floor, so the GPA must stay 0.0.
	assignments := &stubAssignmentReader{assignments: []models.Assignment{
		{ID: "a1", GroupID: "group-1", MaxScore: 100000},
	}}
	submissions := &stubSubmissionReader{rows: []models.GradedSubmissionRow{
		{StudentID: "s1", StudentName: "Asha", AssignmentID: "a1", TotalScore: 44996, MaxScore: 100000},
	}}
	members := &stubMemberReader{members: []models.GroupMember{
		{GroupID: "group-1", StudentID: "s1", StudentName: "Asha"},
	}}

	svc := NewGradeService(assignments, submissions, members, nil)
	stats, err := svc.GroupStudentGrades(context.Background(), "group-1")
	require.NoError(t, err)

	require.Len(t, stats.Students, 1)
	assert.Equal(t, 45.0, stats.Students[0].Percentage)
	assert.Equal(t, 0.0, stats.Students[0].GPA)
}

func TestGroupStudentGradesZeroStateStudent(t *testing.T) {
	assignments := &stubAssignmentReader{assignments: []models.Assignment{
		{ID: "a1", GroupID: "group-1", MaxScore: 100},
	}}
	members := &stubMemberReader{members: []models.GroupMember{
		{GroupID: "group-1", StudentID: "s1", StudentName: "Asha"},
	}}

	svc := NewGradeService(assignments, &stubSubmissionReader{}, members, nil)
	stats, err := svc.GroupStudentGrades(context.Background(), "group-1")
	require.NoError(t, err)

	require.Len(t, stats.Students, 1)
	assert.Zero(t, stats.Students[0].GPA)
	assert.Zero(t, stats.Students[0].TotalPointsPossible)
	assert.Zero(t, stats.ClassAverageGPA)
	assert.Zero(t, stats.ClassAverageScore)
}

func TestGroupStudentGradesSortTieBreaksOnName(t *testing.T) {
	assignments := &stubAssignmentReader{assignments: []models.Assignment{
		{ID: "a1", GroupID: "group-1", MaxScore: 100},
	}}
	submissions := &stubSubmissionReader{rows: []models.GradedSubmissionRow{
		{StudentID: "s1", StudentName: "Zoya", AssignmentID: "a1", TotalScore: 95, MaxScore: 100},
		{StudentID: "s2", StudentName: "Asha", AssignmentID: "a1", TotalScore: 93, MaxScore: 100},
	}}
	members := &stubMemberReader{members: []models.GroupMember{
		{GroupID: "group-1", StudentID: "s1", StudentName: "Zoya"},
		{GroupID: "group-1", StudentID: "s2", StudentName: "Asha"},
	}}

	svc := NewGradeService(assignments, submissions, members, nil)
	stats, err := svc.GroupStudentGrades(context.Background(), "group-1")
	require.NoError(t, err)

	// Both land at GPA 4.0; alphabetical order decides.
	require.Len(t, stats.Students, 2)
	assert.Equal(t, "Asha", stats.Students[0].StudentName)
	assert.Equal(t, "Zoya", stats.Students[1].StudentName)
}

func TestStudentGrades(t *testing.T) {
	assignments := &stubAssignmentReader{assignments: []models.Assignment{
		{ID: "a1", GroupID: "group-1", MaxScore: 100},
	}}
	submissions := &stubSubmissionReader{rows: []models.GradedSubmissionRow{
		{StudentID: "s1", StudentName: "Asha", AssignmentID: "a1", TotalScore: 70, MaxScore: 100},
	}}
	members := &stubMemberReader{members: []models.GroupMember{
		{GroupID: "group-1", StudentID: "s1", StudentName: "Asha"},
	}}

	svc := NewGradeService(assignments, submissions, members, nil)

	summary, err := svc.StudentGrades(context.Background(), "group-1", "s1")
	require.NoError(t, err)
	assert.Equal(t, 2.7, summary.GPA)

	_, err = svc.StudentGrades(context.Background(), "group-1", "missing")
	require.Error(t, err)
}
