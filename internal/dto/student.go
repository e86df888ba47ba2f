package dto

import (
	"time"

	"github.com/noah-isme/career-readiness-api/internal/models"
	"github.com/noah-isme/career-readiness-api/internal/scoring"
)

// RegisterStudentRequest is the public signup payload.
type RegisterStudentRequest struct {
	Name     string   `json:"name" validate:"required,max=120"`
	Email    string   `json:"email" validate:"required,email"`
	Password string   `json:"password" validate:"required,min=8"`
	College  string   `json:"college" validate:"max=200"`
	Branch   string   `json:"branch" validate:"max=120"`
	CGPA     *float64 `json:"cgpa" validate:"omitempty,gte=0,lte=10"`
	Skills   []string `json:"skills" validate:"omitempty,max=100,dive,required,max=60"`
}

// UpdateProfileRequest replaces the editable profile fields.
type UpdateProfileRequest struct {
	Name    string   `json:"name" validate:"required,max=120"`
	College string   `json:"college" validate:"max=200"`
	Branch  string   `json:"branch" validate:"max=120"`
	CGPA    *float64 `json:"cgpa" validate:"omitempty,gte=0,lte=10"`
	Skills  []string `json:"skills" validate:"omitempty,max=100,dive,required,max=60"`
}

// AddProjectRequest submits a project for verification.
type AddProjectRequest struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Description string   `json:"description" validate:"max=2000"`
	Tags        []string `json:"tags" validate:"omitempty,max=20,dive,required,max=60"`
}

// AddCertificationRequest submits a certification for verification.
type AddCertificationRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Provider string `json:"provider" validate:"max=120"`
}

// AddEventRequest submits an event participation for verification.
type AddEventRequest struct {
	Name          string  `json:"name" validate:"required,max=200"`
	PointsAwarded float64 `json:"pointsAwarded" validate:"gte=0,lte=100"`
}

// LogCodingRequest records a practice session.
type LogCodingRequest struct {
	Platform       string     `json:"platform" validate:"required,max=60"`
	ProblemsSolved int        `json:"problemsSolved" validate:"gte=0,lte=1000"`
	MinutesSpent   int        `json:"minutesSpent" validate:"gte=0,lte=1440"`
	Date           *time.Time `json:"date"`
}

// VerifyItemRequest carries an admin verification decision.
type VerifyItemRequest struct {
	Decision models.ItemStatus `json:"decision" validate:"required,oneof=verified rejected"`
}

// SyncGitHubRequest carries a GitHub activity snapshot.
type SyncGitHubRequest struct {
	Username      string   `json:"username" validate:"max=100"`
	TotalRepos    int      `json:"totalRepos" validate:"gte=0"`
	TotalCommits  int      `json:"totalCommits" validate:"gte=0"`
	ActivityScore float64  `json:"activityScore" validate:"gte=0"`
	TopLanguages  []string `json:"topLanguages" validate:"omitempty,max=20"`
}

// SyncLeetCodeRequest carries a LeetCode progress snapshot.
type SyncLeetCodeRequest struct {
	Username    string `json:"username" validate:"max=100"`
	Easy        int    `json:"easy" validate:"gte=0"`
	Medium      int    `json:"medium" validate:"gte=0"`
	Hard        int    `json:"hard" validate:"gte=0"`
	TotalSolved int    `json:"totalSolved" validate:"gte=0"`
	Streak      int    `json:"streak" validate:"gte=0"`
}

// CompleteInterviewRequest reports the outcome of a mock interview.
type CompleteInterviewRequest struct {
	scoring.InterviewSession
}

// UpdateStreakRequest sets the daily activity streak.
type UpdateStreakRequest struct {
	StreakDays int `json:"streakDays" validate:"gte=0,lte=3650"`
}

// ReadinessView is the current score of a student with its category breakdown.
type ReadinessView struct {
	StudentID string             `json:"studentId"`
	Score     int                `json:"score"`
	Breakdown map[string]float64 `json:"breakdown"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// HistoryView combines the readiness history and the growth timeline.
type HistoryView struct {
	StudentID        string                 `json:"studentId"`
	ReadinessHistory []models.ScoreEntry    `json:"readinessHistory"`
	GrowthTimeline   []models.TimelineEntry `json:"growthTimeline"`
}
