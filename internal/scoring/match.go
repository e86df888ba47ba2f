package scoring

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/noah-isme/career-readiness-api/internal/models"
)

// ErrNilJob is returned when matching against a missing posting.
var ErrNilJob = errors.New("job is nil")

// MatchResult is the score of one student against one job.
type MatchResult struct {
	TotalScore        float64              `json:"totalScore"`
	Breakdown         map[Category]float64 `json:"breakdown"`
	SkillsMatched     []string             `json:"skillsMatched"`
	SkillsMissing     []string             `json:"skillsMissing"`
	Eligible          bool                 `json:"eligible"`
	IneligibleReasons []string             `json:"ineligibleReasons,omitempty"`
}

// Matcher scores students against postings with a fixed allocation.
type Matcher struct {
	weights MatchWeights
}

// NewMatcher validates the allocation and returns a Matcher bound to a copy of it.
func NewMatcher(w MatchWeights) (*Matcher, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return &Matcher{weights: w}, nil
}

// Weights returns the allocation the matcher was built with.
func (m *Matcher) Weights() MatchWeights {
	return m.weights
}

// Match scores s against job. The result is deterministic for identical inputs and
// lists matched and missing skills in the job's order.
func (m *Matcher) Match(s *models.Student, job *models.Job) (MatchResult, error) {
	if err := ValidateShape(s); err != nil {
		return MatchResult{}, err
	}
	if job == nil {
		return MatchResult{}, ErrNilJob
	}
	w := m.weights
	pool := skillPool(s)

	required := distinctOriginal(job.RequiredSkills)
	preferred := distinctOriginal(job.PreferredSkills)
	matched, missing := splitByPool(required, pool)
	preferredMatched, _ := splitByPool(preferred, pool)

	breakdown := make(map[Category]float64, len(MatchCategories))

	if len(required) == 0 {
		breakdown[CategoryRequiredSkills] = w.RequiredSkills
	} else {
		breakdown[CategoryRequiredSkills] = w.RequiredSkills * float64(len(matched)) / float64(len(required))
	}
	if len(preferred) > 0 {
		breakdown[CategoryPreferredSkills] = w.PreferredSkills * float64(len(preferredMatched)) / float64(len(preferred))
	} else {
		breakdown[CategoryPreferredSkills] = 0
	}

	verified := s.VerifiedProjectCount()
	breakdown[CategoryProjects] = m.projectRelevance(s, append(append([]string{}, required...), preferred...), verified, len(matched) > 0)
	breakdown[CategoryReadiness] = w.Readiness * clamp(float64(s.ReadinessScore), 0, MaxScore) / MaxScore
	breakdown[CategoryGrowth] = m.growth(s.ReadinessHistory)
	breakdown[CategoryCGPA] = cgpaPoints(s.CGPA, w.NeutralCGPA, w.CGPAScale, w.CGPA)

	certs := 0
	for _, c := range s.Certifications {
		if c.Status == models.ItemStatusVerified {
			certs++
		}
	}
	breakdown[CategoryCertifications] = capAt(float64(certs)*w.CertificationPoints, w.Certifications)
	breakdown[CategoryConsistency] = capAt(effectiveStreak(s)/w.StreakDivisor, w.Consistency)

	total := 0.0
	for _, cat := range MatchCategories {
		total += breakdown[cat]
		breakdown[cat] = round2(breakdown[cat])
	}
	if len(matched) > 0 && verified == 0 {
		total = math.Max(total, w.MinimumMatchFloor)
	}

	reasons := ineligibleReasons(s, job, verified)
	return MatchResult{
		TotalScore:        round2(clamp(total, 0, MaxScore)),
		Breakdown:         breakdown,
		SkillsMatched:     matched,
		SkillsMissing:     missing,
		Eligible:          len(reasons) == 0,
		IneligibleReasons: reasons,
	}, nil
}

func (m *Matcher) projectRelevance(s *models.Student, jobSkills []string, verified int, anyRequiredMatched bool) float64 {
	w := m.weights
	if verified == 0 {
		if anyRequiredMatched {
			return capAt(w.ProjectFloor, w.Projects)
		}
		return 0
	}

	relevant := 0
	perSkill := make([]int, len(jobSkills))
	for _, p := range s.Projects {
		if !p.IsVerified() {
			continue
		}
		tags := distinctSkills(p.Tags)
		hit := false
		for i, skill := range jobSkills {
			if anyMatches(normalizeSkill(skill), tags) {
				perSkill[i]++
				hit = true
			}
		}
		if hit {
			relevant++
		}
	}

	bonus := 0.0
	for _, count := range perSkill {
		if count > 1 {
			bonus += float64(count - 1)
		}
	}
	points := capAt(float64(relevant)*w.ProjectPoints, w.ProjectCountCap) + capAt(bonus, w.SameSkillBonusCap)
	return capAt(points, w.Projects)
}

// growth rewards an upward readiness trend over the trailing window.
func (m *Matcher) growth(history []models.ScoreEntry) float64 {
	w := m.weights
	if len(history) > w.GrowthWindow {
		history = history[len(history)-w.GrowthWindow:]
	}
	if len(history) < 2 {
		return w.Growth / 2
	}
	delta := float64(history[len(history)-1].Score - history[0].Score)
	return capAt(math.Max(0, delta)/w.GrowthDivisor, w.Growth)
}

func ineligibleReasons(s *models.Student, job *models.Job, verified int) []string {
	var reasons []string
	if s.ReadinessScore < job.MinReadinessScore {
		reasons = append(reasons, fmt.Sprintf("readiness score %d below minimum %d", s.ReadinessScore, job.MinReadinessScore))
	}
	if job.MinCGPA > 0 {
		switch {
		case s.CGPA == nil:
			reasons = append(reasons, fmt.Sprintf("cgpa not provided, minimum %.2f", job.MinCGPA))
		case *s.CGPA < job.MinCGPA:
			reasons = append(reasons, fmt.Sprintf("cgpa %.2f below minimum %.2f", *s.CGPA, job.MinCGPA))
		}
	}
	if verified < job.MinProjects {
		reasons = append(reasons, fmt.Sprintf("%d verified projects below minimum %d", verified, job.MinProjects))
	}
	return reasons
}

// skillPool is the normalized set of declared skills and verified project tags.
func skillPool(s *models.Student) []string {
	pool := append([]string{}, s.Skills...)
	for _, p := range s.Projects {
		if p.IsVerified() {
			pool = append(pool, p.Tags...)
		}
	}
	return distinctSkills(pool)
}

// distinctOriginal trims and de-duplicates skills case-insensitively, keeping the
// first spelling and input order.
func distinctOriginal(skills []string) []string {
	seen := make(map[string]struct{}, len(skills))
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		trimmed := strings.TrimSpace(s)
		key := strings.ToLower(trimmed)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}

func splitByPool(skills, pool []string) (matched, missing []string) {
	matched = []string{}
	missing = []string{}
	for _, skill := range skills {
		if anyMatches(normalizeSkill(skill), pool) {
			matched = append(matched, skill)
		} else {
			missing = append(missing, skill)
		}
	}
	return matched, missing
}

// anyMatches applies case-insensitive substring matching in both directions.
// Both skill and candidates must already be normalized.
func anyMatches(skill string, candidates []string) bool {
	for _, c := range candidates {
		if strings.Contains(c, skill) || strings.Contains(skill, c) {
			return true
		}
	}
	return false
}

var defaultMatcher = &Matcher{weights: DefaultMatchWeights()}

// CalculateJobMatchScore scores a student against a job with DefaultMatchWeights.
func CalculateJobMatchScore(s *models.Student, job *models.Job) (MatchResult, error) {
	return defaultMatcher.Match(s, job)
}
