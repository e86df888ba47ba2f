package models

import "time"

// ItemStatus is the verification state of a submitted activity item.
type ItemStatus string

const (
	ItemStatusPending  ItemStatus = "pending"
	ItemStatusVerified ItemStatus = "verified"
	ItemStatusRejected ItemStatus = "rejected"
)

// Valid reports whether the status belongs to the known set.
func (s ItemStatus) Valid() bool {
	switch s {
	case ItemStatusPending, ItemStatusVerified, ItemStatusRejected:
		return true
	}
	return false
}

// Collection names the embedded activity arrays of a student.
type Collection string

const (
	CollectionProjects       Collection = "projects"
	CollectionCertifications Collection = "certifications"
	CollectionEvents         Collection = "events"
	CollectionCodingLogs     Collection = "coding-logs"
)

// Student is the aggregate root for a learner's career-readiness profile.
// ReadinessBreakdown holds the per-category points of the last successful calculation.
type Student struct {
	ID                 string             `json:"id"`
	Name               string             `json:"name"`
	Email              string             `json:"email"`
	College            string             `json:"college"`
	Branch             string             `json:"branch"`
	CGPA               *float64           `json:"cgpa,omitempty"`
	Skills             []string           `json:"skills"`
	Projects           []Project          `json:"projects"`
	Certifications     []Certification    `json:"certifications"`
	Events             []Event            `json:"events"`
	CodingLogs         []CodingLog        `json:"codingLogs"`
	LeetCode           *LeetCodeStats     `json:"leetcodeStats,omitempty"`
	GitHub             *GitHubStats       `json:"githubStats,omitempty"`
	Interview          InterviewStats     `json:"interviewStats"`
	StreakDays         int                `json:"streakDays"`
	ReadinessScore     int                `json:"readinessScore"`
	ReadinessBreakdown map[string]float64 `json:"readinessBreakdown,omitempty"`
	ReadinessHistory   []ScoreEntry       `json:"readinessHistory"`
	GrowthTimeline     []TimelineEntry    `json:"growthTimeline"`
	Active             bool               `json:"active"`
	Version            int                `json:"version"`
	CreatedAt          time.Time          `json:"createdAt"`
	UpdatedAt          time.Time          `json:"updatedAt"`
}

// Project is a portfolio item submitted for admin verification.
type Project struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Tags        []string   `json:"tags"`
	Status      ItemStatus `json:"status"`
	Verified    bool       `json:"verified"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// ItemID implements Identifiable.
func (p Project) ItemID() string { return p.ID }

// IsVerified reports whether the project counts toward scoring.
func (p Project) IsVerified() bool {
	return p.Status == ItemStatusVerified || p.Verified
}

// Certification is an external credential awaiting or past verification.
type Certification struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Provider  string     `json:"provider"`
	Status    ItemStatus `json:"status"`
	CreatedAt time.Time  `json:"createdAt"`
}

// ItemID implements Identifiable.
func (c Certification) ItemID() string { return c.ID }

// Event records participation in a hackathon, workshop or competition.
type Event struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Status        ItemStatus `json:"status"`
	PointsAwarded float64    `json:"pointsAwarded"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// ItemID implements Identifiable.
func (e Event) ItemID() string { return e.ID }

// CodingLog is a self-reported practice session.
type CodingLog struct {
	ID             string    `json:"id"`
	Platform       string    `json:"platform"`
	ProblemsSolved int       `json:"problemsSolved"`
	MinutesSpent   int       `json:"minutesSpent"`
	Date           time.Time `json:"date"`
}

// ItemID implements Identifiable.
func (l CodingLog) ItemID() string { return l.ID }

// LeetCodeStats is the latest snapshot pulled by the LeetCode sync.
type LeetCodeStats struct {
	Username    string    `json:"username,omitempty"`
	Easy        int       `json:"easy"`
	Medium      int       `json:"medium"`
	Hard        int       `json:"hard"`
	TotalSolved int       `json:"totalSolved"`
	Streak      int       `json:"streak"`
	SyncedAt    time.Time `json:"syncedAt"`
}

// GitHubStats is the latest snapshot pulled by the GitHub sync.
type GitHubStats struct {
	Username      string    `json:"username,omitempty"`
	TotalRepos    int       `json:"totalRepos"`
	TotalCommits  int       `json:"totalCommits"`
	ActivityScore float64   `json:"activityScore"`
	TopLanguages  []string  `json:"topLanguages"`
	SyncedAt      time.Time `json:"syncedAt"`
}

// CommunicationStats holds running averages of interview rubric scores (0-10).
type CommunicationStats struct {
	AvgClarity     float64 `json:"avgClarity"`
	AvgStructure   float64 `json:"avgStructure"`
	AvgConciseness float64 `json:"avgConciseness"`
}

// InterviewStats aggregates mock interview performance.
type InterviewStats struct {
	TotalSessions     int                `json:"totalSessions"`
	CompletedSessions int                `json:"completedSessions"`
	AvgScore          float64            `json:"avgScore"`
	BestScore         float64            `json:"bestScore"`
	Communication     CommunicationStats `json:"communication"`
}

// ScoreEntry is one point of the readiness history.
type ScoreEntry struct {
	Score        int       `db:"score" json:"score"`
	CalculatedAt time.Time `db:"calculated_at" json:"calculatedAt"`
}

// TimelineEntry is a human-readable growth milestone.
type TimelineEntry struct {
	Date           time.Time `db:"date" json:"date"`
	ReadinessScore int       `db:"readiness_score" json:"readinessScore"`
	Reason         string    `db:"reason" json:"reason"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search   string
	Branch   string
	Active   *bool
	Page     int
	PageSize int
}

// VerifiedProjectCount returns the number of projects counted for scoring.
func (s *Student) VerifiedProjectCount() int {
	count := 0
	for _, p := range s.Projects {
		if p.IsVerified() {
			count++
		}
	}
	return count
}

// LeaderboardEntry is one ranked row of the readiness leaderboard.
type LeaderboardEntry struct {
	Rank           int    `db:"-" json:"rank"`
	StudentID      string `db:"id" json:"studentId"`
	Name           string `db:"name" json:"name"`
	College        string `db:"college" json:"college"`
	Branch         string `db:"branch" json:"branch"`
	ReadinessScore int    `db:"readiness_score" json:"readinessScore"`
	StreakDays     int    `db:"streak_days" json:"streakDays"`
}
