package scoring

import (
	"sort"

	"github.com/noah-isme/career-readiness-api/internal/models"
)

// Candidate is a scored student awaiting ranking for a job.
type Candidate struct {
	StudentID        string
	StudentName      string
	ReadinessScore   int
	StreakDays       int
	VerifiedProjects int
	Result           MatchResult
}

// NewCandidate captures the tie-break fields of s alongside its match result.
func NewCandidate(s *models.Student, result MatchResult) Candidate {
	return Candidate{
		StudentID:        s.ID,
		StudentName:      s.Name,
		ReadinessScore:   s.ReadinessScore,
		StreakDays:       s.StreakDays,
		VerifiedProjects: s.VerifiedProjectCount(),
		Result:           result,
	}
}

// RankLess orders candidates by match score, then readiness, streak, verified
// projects, and finally student ID so ties never depend on input order.
func RankLess(a, b Candidate) bool {
	if a.Result.TotalScore != b.Result.TotalScore {
		return a.Result.TotalScore > b.Result.TotalScore
	}
	if a.ReadinessScore != b.ReadinessScore {
		return a.ReadinessScore > b.ReadinessScore
	}
	if a.StreakDays != b.StreakDays {
		return a.StreakDays > b.StreakDays
	}
	if a.VerifiedProjects != b.VerifiedProjects {
		return a.VerifiedProjects > b.VerifiedProjects
	}
	return a.StudentID < b.StudentID
}

// Rank sorts candidates in place and returns them.
func Rank(candidates []Candidate) []Candidate {
	sort.SliceStable(candidates, func(i, j int) bool {
		return RankLess(candidates[i], candidates[j])
	})
	return candidates
}

// ToMatchedStudents converts ranked candidates into the cached job representation.
func ToMatchedStudents(candidates []Candidate) []models.MatchedStudent {
	out := make([]models.MatchedStudent, 0, len(candidates))
	for _, c := range candidates {
		breakdown := make(map[string]float64, len(c.Result.Breakdown))
		for k, v := range c.Result.Breakdown {
			breakdown[string(k)] = v
		}
		out = append(out, models.MatchedStudent{
			StudentID:      c.StudentID,
			StudentName:    c.StudentName,
			MatchScore:     c.Result.TotalScore,
			ScoreBreakdown: breakdown,
			SkillsMatched:  c.Result.SkillsMatched,
			SkillsMissing:  c.Result.SkillsMissing,
		})
	}
	return out
}
