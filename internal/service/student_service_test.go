package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/career-readiness-api/internal/dto"
	"github.com/noah-isme/career-readiness-api/internal/models"
	"github.com/noah-isme/career-readiness-api/internal/scoring"
	appErrors "github.com/noah-isme/career-readiness-api/pkg/errors"
)

type fakeSignupRepo struct {
	users map[string]*models.User
}

func (f *fakeSignupRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if u, ok := f.users[email]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeSignupRepo) CreateWithStudent(ctx context.Context, user *models.User, insertStudent func(context.Context, *sqlx.Tx) error) error {
	if err := insertStudent(ctx, nil); err != nil {
		return err
	}
	if f.users == nil {
		f.users = map[string]*models.User{}
	}
	f.users[user.Email] = user
	return nil
}

type studentFixture struct {
	store   *fakeStudentStore
	history *fakeHistoryStore
	users   *fakeSignupRepo
	svc     *StudentService
}

func newStudentFixture(students ...models.Student) studentFixture {
	store := newFakeStudentStore(students...)
	history := newFakeHistoryStore()
	users := &fakeSignupRepo{}
	readiness := newTestReadinessService(store, history)
	return studentFixture{
		store:   store,
		history: history,
		users:   users,
		svc:     NewStudentService(store, users, readiness, nil, nil),
	}
}

func TestStudentRegister(t *testing.T) {
	fx := newStudentFixture()

	student, err := fx.svc.Register(context.Background(), dto.RegisterStudentRequest{
		Name:     " Asha ",
		Email:    "Asha@Example.com",
		Password: "supersecret",
		Skills:   []string{"Go", " "},
	})
	require.NoError(t, err)
	assert.Equal(t, "Asha", student.Name)
	assert.Equal(t, []string{"Go"}, student.Skills)
	// base 25 + cgpa 2.5 + one skill + project floor 2
	assert.Equal(t, 31, student.ReadinessScore)

	user := fx.users.users["asha@example.com"]
	require.NotNil(t, user)
	assert.Equal(t, student.ID, user.ID)
	assert.Equal(t, models.RoleStudent, user.Role)
	assert.NotEqual(t, "supersecret", user.PasswordHash)

	require.Len(t, fx.history.timeline[student.ID], 1)
	assert.Equal(t, ReasonAccountCreated, fx.history.timeline[student.ID][0].Reason)
}

func TestStudentRegisterDuplicateEmail(t *testing.T) {
	fx := newStudentFixture()
	fx.users.users = map[string]*models.User{"taken@example.com": {ID: "u1"}}

	_, err := fx.svc.Register(context.Background(), dto.RegisterStudentRequest{Name: "A", Email: "taken@example.com", Password: "supersecret"})
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
}

func TestStudentRegisterValidation(t *testing.T) {
	fx := newStudentFixture()

	_, err := fx.svc.Register(context.Background(), dto.RegisterStudentRequest{Name: "A", Email: "bad", Password: "short"})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestStudentPendingItemsDoNotMoveScore(t *testing.T) {
	fx := newStudentFixture(models.Student{ID: "s1", ReadinessScore: 28})

	project, err := fx.svc.AddProject(context.Background(), "s1", dto.AddProjectRequest{Title: "Compiler", Tags: []string{"go"}})
	require.NoError(t, err)
	assert.Equal(t, models.ItemStatusPending, project.Status)
	_, err = fx.svc.AddCertification(context.Background(), "s1", dto.AddCertificationRequest{Name: "CKA"})
	require.NoError(t, err)
	_, err = fx.svc.AddEvent(context.Background(), "s1", dto.AddEventRequest{Name: "Hackathon", PointsAwarded: 10})
	require.NoError(t, err)

	stored := fx.store.get("s1")
	assert.Equal(t, 28, stored.ReadinessScore)
	assert.Len(t, stored.Projects, 1)
	assert.Len(t, stored.Certifications, 1)
	assert.Len(t, stored.Events, 1)
	assert.Empty(t, fx.history.scores["s1"])
}

func TestStudentVerifyProjectRaisesScore(t *testing.T) {
	fx := newStudentFixture(models.Student{ID: "s1", ReadinessScore: 28})
	project, err := fx.svc.AddProject(context.Background(), "s1", dto.AddProjectRequest{Title: "Compiler"})
	require.NoError(t, err)

	student, err := fx.svc.VerifyItem(context.Background(), "s1", models.CollectionProjects, project.ID, dto.VerifyItemRequest{Decision: models.ItemStatusVerified})
	require.NoError(t, err)
	assert.True(t, student.Projects[0].Verified)
	assert.Equal(t, 34, student.ReadinessScore)

	timeline := fx.history.timeline["s1"]
	require.Len(t, timeline, 1)
	assert.Equal(t, "projects verified", timeline[0].Reason)
	assert.Equal(t, 34, timeline[0].ReadinessScore)
}

func TestStudentRejectKeepsScoreButRecordsTimeline(t *testing.T) {
	fx := newStudentFixture(models.Student{ID: "s1", ReadinessScore: 28})
	cert, err := fx.svc.AddCertification(context.Background(), "s1", dto.AddCertificationRequest{Name: "CKA"})
	require.NoError(t, err)

	student, err := fx.svc.VerifyItem(context.Background(), "s1", models.CollectionCertifications, cert.ID, dto.VerifyItemRequest{Decision: models.ItemStatusRejected})
	require.NoError(t, err)
	assert.Equal(t, 28, student.ReadinessScore)
	require.Len(t, fx.history.timeline["s1"], 1)
	assert.Equal(t, "certifications rejected", fx.history.timeline["s1"][0].Reason)
}

func TestStudentVerifyItemErrors(t *testing.T) {
	fx := newStudentFixture(models.Student{ID: "s1"})

	_, err := fx.svc.VerifyItem(context.Background(), "s1", models.CollectionEvents, "missing", dto.VerifyItemRequest{Decision: models.ItemStatusVerified})
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))

	_, err = fx.svc.VerifyItem(context.Background(), "s1", models.CollectionCodingLogs, "x", dto.VerifyItemRequest{Decision: models.ItemStatusVerified})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	_, err = fx.svc.VerifyItem(context.Background(), "s1", models.CollectionProjects, "x", dto.VerifyItemRequest{Decision: models.ItemStatusPending})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestStudentRemoveVerifiedItemLowersScore(t *testing.T) {
	fx := newStudentFixture(models.Student{
		ID:             "s1",
		ReadinessScore: 38,
		Certifications: []models.Certification{
			{ID: "c1", Status: models.ItemStatusVerified},
			{ID: "c2", Status: models.ItemStatusVerified},
		},
	})

	student, err := fx.svc.RemoveItem(context.Background(), "s1", models.CollectionCertifications, "c1")
	require.NoError(t, err)
	assert.Equal(t, 33, student.ReadinessScore)
	require.Len(t, student.Certifications, 1)
	assert.Equal(t, "c2", student.Certifications[0].ID)

	_, err = fx.svc.RemoveItem(context.Background(), "s1", models.CollectionCertifications, "c1")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
	_, err = fx.svc.RemoveItem(context.Background(), "s1", models.Collection("badges"), "c1")
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestStudentCompleteInterviewAddsFourPoints(t *testing.T) {
	fx := newStudentFixture(models.Student{ID: "s1", ReadinessScore: 28})

	session := scoring.InterviewSession{Completed: true, Questions: []scoring.QuestionFeedback{{Score: 80}, {Score: 80}, {Score: 80}}}
	student, err := fx.svc.CompleteInterview(context.Background(), "s1", dto.CompleteInterviewRequest{InterviewSession: session})
	require.NoError(t, err)
	assert.Equal(t, 1, student.Interview.CompletedSessions)
	assert.Equal(t, 80.0, student.Interview.AvgScore)
	assert.Equal(t, 4.0, student.ReadinessBreakdown["interview"])
	assert.Equal(t, 32, student.ReadinessScore)
	assert.Equal(t, ReasonInterviewCompleted, fx.history.timeline["s1"][0].Reason)
}

func TestStudentAbandonedInterviewOnlyCountsSession(t *testing.T) {
	fx := newStudentFixture(models.Student{ID: "s1", ReadinessScore: 28})

	student, err := fx.svc.CompleteInterview(context.Background(), "s1", dto.CompleteInterviewRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, student.Interview.TotalSessions)
	assert.Equal(t, 0, student.Interview.CompletedSessions)
	assert.Equal(t, 28, student.ReadinessScore)
	assert.Empty(t, fx.history.timeline["s1"])
}

func TestStudentCompletedInterviewWithoutQuestionsRecordsNoTimeline(t *testing.T) {
	fx := newStudentFixture(models.Student{ID: "s1", ReadinessScore: 28})

	req := dto.CompleteInterviewRequest{InterviewSession: scoring.InterviewSession{Completed: true}}
	student, err := fx.svc.CompleteInterview(context.Background(), "s1", req)
	require.NoError(t, err)
	assert.Equal(t, 1, student.Interview.TotalSessions)
	assert.Equal(t, 0, student.Interview.CompletedSessions)
	assert.Empty(t, fx.history.timeline["s1"])
}

func TestStudentSyncs(t *testing.T) {
	fx := newStudentFixture(models.Student{ID: "s1", ReadinessScore: 28})

	student, err := fx.svc.SyncLeetCode(context.Background(), "s1", dto.SyncLeetCodeRequest{Easy: 20, Medium: 8, Hard: 2, Streak: 6})
	require.NoError(t, err)
	assert.Equal(t, 30, student.LeetCode.TotalSolved)
	// coding 2+2+1 = 5, consistency 6/3 = 2
	assert.Equal(t, 35, student.ReadinessScore)

	student, err = fx.svc.SyncGitHub(context.Background(), "s1", dto.SyncGitHubRequest{ActivityScore: 200})
	require.NoError(t, err)
	assert.Equal(t, 5.0, student.ReadinessBreakdown["github"])
	assert.Equal(t, 40, student.ReadinessScore)

	reasons := []string{}
	for _, e := range fx.history.timeline["s1"] {
		reasons = append(reasons, e.Reason)
	}
	assert.Equal(t, []string{ReasonLeetCodeSync, ReasonGitHubSync}, reasons)
}

func TestStudentProfileAndStreak(t *testing.T) {
	fx := newStudentFixture(models.Student{ID: "s1", ReadinessScore: 28})
	cgpa := 8.0

	student, err := fx.svc.UpdateProfile(context.Background(), "s1", dto.UpdateProfileRequest{Name: "Asha", CGPA: &cgpa})
	require.NoError(t, err)
	assert.Equal(t, 29, student.ReadinessScore)

	student, err = fx.svc.UpdateStreak(context.Background(), "s1", dto.UpdateStreakRequest{StreakDays: 30})
	require.NoError(t, err)
	assert.Equal(t, 39, student.ReadinessScore)

	_, err = fx.svc.UpdateProfile(context.Background(), "s1", dto.UpdateProfileRequest{})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestStudentLogCoding(t *testing.T) {
	fx := newStudentFixture(models.Student{ID: "s1", ReadinessScore: 28})

	entry, err := fx.svc.LogCoding(context.Background(), "s1", dto.LogCodingRequest{Platform: "codeforces", ProblemsSolved: 50})
	require.NoError(t, err)
	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.Date.IsZero())
	// 50/25 = 2 points from logs
	assert.Equal(t, 30, fx.store.get("s1").ReadinessScore)
}

func TestStudentGetAndList(t *testing.T) {
	fx := newStudentFixture(models.Student{ID: "s1"}, models.Student{ID: "s2"})

	_, err := fx.svc.Get(context.Background(), "s1")
	require.NoError(t, err)
	_, err = fx.svc.Get(context.Background(), "s9")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))

	students, page, err := fx.svc.List(context.Background(), models.StudentFilter{PageSize: 500})
	require.NoError(t, err)
	assert.Len(t, students, 2)
	assert.Equal(t, 20, page.PageSize)
	assert.Equal(t, 2, page.TotalCount)
}
