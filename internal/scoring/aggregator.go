package scoring

import (
	"math"
	"strings"

	"github.com/noah-isme/career-readiness-api/internal/models"
)

// SubScores holds the capped, unweighted points of every readiness category.
type SubScores map[Category]float64

// Aggregate computes per-category points for a student. Only verified items
// contribute; absent stats score zero except CGPA, which falls back to a neutral value.
func Aggregate(s *models.Student, w Weights) (SubScores, error) {
	if err := ValidateShape(s); err != nil {
		return nil, err
	}
	r := w.Rules
	skills := distinctSkills(s.Skills)

	return SubScores{
		CategoryBase:           w.Base.Cap,
		CategorySkills:         capAt(float64(len(skills))*r.SkillPoints, w.Skills.Cap),
		CategoryProjects:       projectPoints(s, len(skills) > 0, r, w.Projects.Cap),
		CategoryCertifications: certificationPoints(s, r, w.Certifications.Cap),
		CategoryEvents:         eventPoints(s, r, w.Events.Cap),
		CategoryCoding:         codingPoints(s, r, w.Coding.Cap),
		CategoryConsistency:    consistencyPoints(s, r.StreakDivisor, w.Consistency.Cap),
		CategoryCGPA:           cgpaPoints(s.CGPA, r.NeutralCGPA, r.CGPAScale, w.CGPA.Cap),
		CategoryInterview:      interviewPoints(s.Interview, r.InterviewScoreShare, w.Interview.Cap),
	}, nil
}

func projectPoints(s *models.Student, hasSkills bool, r Rules, cap float64) float64 {
	verified := 0
	tagCounts := make(map[string]int)
	for _, p := range s.Projects {
		if !p.IsVerified() {
			continue
		}
		verified++
		for _, tag := range distinctSkills(p.Tags) {
			tagCounts[tag]++
		}
	}
	if verified == 0 {
		if hasSkills {
			return capAt(r.ProjectFloor, cap)
		}
		return 0
	}
	base := capAt(float64(verified)*r.ProjectPoints, r.ProjectCountCap)
	bonus := 0.0
	for _, count := range tagCounts {
		if count > 1 {
			bonus += float64(count - 1)
		}
	}
	return capAt(base+capAt(bonus, r.ProjectTagBonusCap), cap)
}

func certificationPoints(s *models.Student, r Rules, cap float64) float64 {
	verified := 0
	for _, c := range s.Certifications {
		if c.Status == models.ItemStatusVerified {
			verified++
		}
	}
	return capAt(float64(verified)*r.CertificationPoints, cap)
}

func eventPoints(s *models.Student, r Rules, cap float64) float64 {
	total := 0.0
	for _, e := range s.Events {
		if e.Status != models.ItemStatusVerified {
			continue
		}
		total += r.EventBasePoints + capAt(math.Max(e.PointsAwarded, 0), r.EventAwardCap)/r.EventAwardDivisor
	}
	return capAt(total, cap)
}

func codingPoints(s *models.Student, r Rules, cap float64) float64 {
	leetcode := 0.0
	if lc := s.LeetCode; lc != nil {
		easy, medium, hard := nonNeg(lc.Easy), nonNeg(lc.Medium), nonNeg(lc.Hard)
		if easy+medium+hard > 0 {
			leetcode = easy*r.LeetCodeEasy + medium*r.LeetCodeMedium + hard*r.LeetCodeHard
		} else {
			leetcode = nonNeg(lc.TotalSolved) * r.LeetCodeTotalFallback
		}
		leetcode = capAt(leetcode, r.LeetCodeCap)
	}
	problems := 0.0
	for _, l := range s.CodingLogs {
		problems += nonNeg(l.ProblemsSolved)
	}
	logs := capAt(problems/r.CodingLogDivisor, r.CodingLogCap)
	return capAt(leetcode+logs, cap)
}

func consistencyPoints(s *models.Student, divisor, cap float64) float64 {
	return capAt(effectiveStreak(s)/divisor, cap)
}

// effectiveStreak is the longer of the platform streak and the synced LeetCode streak.
func effectiveStreak(s *models.Student) float64 {
	streak := nonNeg(s.StreakDays)
	if s.LeetCode != nil {
		streak = math.Max(streak, nonNeg(s.LeetCode.Streak))
	}
	return streak
}

func cgpaPoints(cgpa *float64, neutral, scale, cap float64) float64 {
	v := neutral
	if cgpa != nil {
		v = *cgpa
	}
	return cap * clamp(v, 0, scale) / scale
}

func interviewPoints(iv models.InterviewStats, scoreShare, cap float64) float64 {
	if iv.CompletedSessions <= 0 {
		return 0
	}
	performance := clamp(iv.AvgScore, 0, 100)
	comm := iv.Communication
	if comm.AvgClarity > 0 && comm.AvgStructure > 0 && comm.AvgConciseness > 0 {
		mean := clamp((comm.AvgClarity+comm.AvgStructure+comm.AvgConciseness)/3, 0, 10)
		performance = scoreShare*performance + (1-scoreShare)*mean*10
	}
	return cap * clamp(performance, 0, 100) / 100
}

// normalizeSkill lowercases and trims a skill or tag for comparison.
func normalizeSkill(skill string) string {
	return strings.ToLower(strings.TrimSpace(skill))
}

// distinctSkills returns normalized, de-duplicated, non-empty entries in input order.
func distinctSkills(skills []string) []string {
	seen := make(map[string]struct{}, len(skills))
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		n := normalizeSkill(s)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

func nonNeg(v int) float64 {
	if v < 0 {
		return 0
	}
	return float64(v)
}

func capAt(v, cap float64) float64 {
	return clamp(v, 0, cap)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
