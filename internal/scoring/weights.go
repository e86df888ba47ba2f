package scoring

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalidWeights is returned when a weight table cannot produce a score in [0,100].
var ErrInvalidWeights = errors.New("invalid scoring weights")

// MaxScore is the upper bound of both readiness and match totals.
const MaxScore = 100.0

// CategoryWeight caps a category's raw points and scales them into the total.
type CategoryWeight struct {
	Cap    float64 `yaml:"cap" json:"cap"`
	Weight float64 `yaml:"weight" json:"weight"`
}

// Rules holds the per-item constants the aggregator uses inside each category.
type Rules struct {
	SkillPoints float64 `yaml:"skill_points" json:"skillPoints"`

	ProjectPoints      float64 `yaml:"project_points" json:"projectPoints"`
	ProjectCountCap    float64 `yaml:"project_count_cap" json:"projectCountCap"`
	ProjectTagBonusCap float64 `yaml:"project_tag_bonus_cap" json:"projectTagBonusCap"`

	// ProjectFloor is awarded when a student declares skills but has no verified projects yet.
	ProjectFloor float64 `yaml:"project_floor" json:"projectFloor"`

	CertificationPoints float64 `yaml:"certification_points" json:"certificationPoints"`

	EventBasePoints   float64 `yaml:"event_base_points" json:"eventBasePoints"`
	EventAwardCap     float64 `yaml:"event_award_cap" json:"eventAwardCap"`
	EventAwardDivisor float64 `yaml:"event_award_divisor" json:"eventAwardDivisor"`

	LeetCodeEasy          float64 `yaml:"leetcode_easy" json:"leetcodeEasy"`
	LeetCodeMedium        float64 `yaml:"leetcode_medium" json:"leetcodeMedium"`
	LeetCodeHard          float64 `yaml:"leetcode_hard" json:"leetcodeHard"`
	LeetCodeTotalFallback float64 `yaml:"leetcode_total_fallback" json:"leetcodeTotalFallback"`
	LeetCodeCap           float64 `yaml:"leetcode_cap" json:"leetcodeCap"`
	CodingLogDivisor      float64 `yaml:"coding_log_divisor" json:"codingLogDivisor"`
	CodingLogCap          float64 `yaml:"coding_log_cap" json:"codingLogCap"`

	StreakDivisor float64 `yaml:"streak_divisor" json:"streakDivisor"`

	NeutralCGPA float64 `yaml:"neutral_cgpa" json:"neutralCGPA"`
	CGPAScale   float64 `yaml:"cgpa_scale" json:"cgpaScale"`

	// InterviewScoreShare is the share of avgScore when communication averages exist;
	// the remainder comes from the communication rubric.
	InterviewScoreShare float64 `yaml:"interview_score_share" json:"interviewScoreShare"`
}

// Weights is the readiness weight table. It is a value type: a Calculator keeps its
// own copy and nothing mutates it after construction.
type Weights struct {
	Base           CategoryWeight `yaml:"base" json:"base"`
	Skills         CategoryWeight `yaml:"skills" json:"skills"`
	Projects       CategoryWeight `yaml:"projects" json:"projects"`
	Certifications CategoryWeight `yaml:"certifications" json:"certifications"`
	Events         CategoryWeight `yaml:"events" json:"events"`
	Coding         CategoryWeight `yaml:"coding" json:"coding"`
	Consistency    CategoryWeight `yaml:"consistency" json:"consistency"`
	CGPA           CategoryWeight `yaml:"cgpa" json:"cgpa"`
	Interview      CategoryWeight `yaml:"interview" json:"interview"`

	GitHubBonusCap     float64 `yaml:"github_bonus_cap" json:"githubBonusCap"`
	GitHubBonusDivisor float64 `yaml:"github_bonus_divisor" json:"githubBonusDivisor"`

	Rules Rules `yaml:"rules" json:"rules"`
}

// DefaultWeights returns the production readiness table. Caps sum to 95 and the
// GitHub bonus adds up to 5, so the maximum attainable total is exactly 100.
func DefaultWeights() Weights {
	return Weights{
		Base:           CategoryWeight{Cap: 25, Weight: 1},
		Skills:         CategoryWeight{Cap: 5, Weight: 1},
		Projects:       CategoryWeight{Cap: 20, Weight: 1},
		Certifications: CategoryWeight{Cap: 10, Weight: 1},
		Events:         CategoryWeight{Cap: 5, Weight: 1},
		Coding:         CategoryWeight{Cap: 10, Weight: 1},
		Consistency:    CategoryWeight{Cap: 10, Weight: 1},
		CGPA:           CategoryWeight{Cap: 5, Weight: 1},
		Interview:      CategoryWeight{Cap: 5, Weight: 1},

		GitHubBonusCap:     5,
		GitHubBonusDivisor: 20,

		Rules: Rules{
			SkillPoints: 1,

			ProjectPoints:      6,
			ProjectCountCap:    15,
			ProjectTagBonusCap: 5,
			ProjectFloor:       2,

			CertificationPoints: 5,

			EventBasePoints:   1,
			EventAwardCap:     10,
			EventAwardDivisor: 10,

			LeetCodeEasy:          0.1,
			LeetCodeMedium:        0.25,
			LeetCodeHard:          0.5,
			LeetCodeTotalFallback: 0.1,
			LeetCodeCap:           8,
			CodingLogDivisor:      25,
			CodingLogCap:          2,

			StreakDivisor: 3,

			NeutralCGPA: 5,
			CGPAScale:   10,

			InterviewScoreShare: 0.7,
		},
	}
}

// Category returns the cap and weight for a readiness category.
func (w Weights) Category(c Category) (CategoryWeight, bool) {
	switch c {
	case CategoryBase:
		return w.Base, true
	case CategorySkills:
		return w.Skills, true
	case CategoryProjects:
		return w.Projects, true
	case CategoryCertifications:
		return w.Certifications, true
	case CategoryEvents:
		return w.Events, true
	case CategoryCoding:
		return w.Coding, true
	case CategoryConsistency:
		return w.Consistency, true
	case CategoryCGPA:
		return w.CGPA, true
	case CategoryInterview:
		return w.Interview, true
	}
	return CategoryWeight{}, false
}

// MaxAttainable is the highest raw total the table can produce.
func (w Weights) MaxAttainable() float64 {
	total := w.GitHubBonusCap
	for _, c := range ReadinessCategories {
		cw, _ := w.Category(c)
		total += cw.Cap * cw.Weight
	}
	return total
}

// Validate checks that every number is finite and non-negative and that the table
// cannot exceed MaxScore.
func (w Weights) Validate() error {
	for _, c := range ReadinessCategories {
		cw, _ := w.Category(c)
		if !finiteNonNegative(cw.Cap) || !finiteNonNegative(cw.Weight) {
			return fmt.Errorf("%w: category %s has cap=%v weight=%v", ErrInvalidWeights, c, cw.Cap, cw.Weight)
		}
	}
	if !finiteNonNegative(w.GitHubBonusCap) {
		return fmt.Errorf("%w: github bonus cap %v", ErrInvalidWeights, w.GitHubBonusCap)
	}
	if !positive(w.GitHubBonusDivisor) {
		return fmt.Errorf("%w: github bonus divisor must be positive", ErrInvalidWeights)
	}
	r := w.Rules
	for name, v := range map[string]float64{
		"skill_points":            r.SkillPoints,
		"project_points":          r.ProjectPoints,
		"project_count_cap":       r.ProjectCountCap,
		"project_tag_bonus_cap":   r.ProjectTagBonusCap,
		"project_floor":           r.ProjectFloor,
		"certification_points":    r.CertificationPoints,
		"event_base_points":       r.EventBasePoints,
		"event_award_cap":         r.EventAwardCap,
		"leetcode_easy":           r.LeetCodeEasy,
		"leetcode_medium":         r.LeetCodeMedium,
		"leetcode_hard":           r.LeetCodeHard,
		"leetcode_total_fallback": r.LeetCodeTotalFallback,
		"leetcode_cap":            r.LeetCodeCap,
		"coding_log_cap":          r.CodingLogCap,
		"neutral_cgpa":            r.NeutralCGPA,
		"interview_score_share":   r.InterviewScoreShare,
	} {
		if !finiteNonNegative(v) {
			return fmt.Errorf("%w: %s=%v", ErrInvalidWeights, name, v)
		}
	}
	for name, divisor := range map[string]float64{
		"event_award_divisor": r.EventAwardDivisor,
		"coding_log_divisor":  r.CodingLogDivisor,
		"streak_divisor":      r.StreakDivisor,
		"cgpa_scale":          r.CGPAScale,
	} {
		if !positive(divisor) {
			return fmt.Errorf("%w: %s must be positive", ErrInvalidWeights, name)
		}
	}
	if r.InterviewScoreShare < 0 || r.InterviewScoreShare > 1 {
		return fmt.Errorf("%w: interview_score_share must be within [0,1]", ErrInvalidWeights)
	}
	if r.NeutralCGPA < 0 || r.NeutralCGPA > r.CGPAScale {
		return fmt.Errorf("%w: neutral_cgpa must be within [0,%v]", ErrInvalidWeights, r.CGPAScale)
	}
	if max := w.MaxAttainable(); max > MaxScore+1e-9 {
		return fmt.Errorf("%w: maximum attainable total %.2f exceeds %v", ErrInvalidWeights, max, MaxScore)
	}
	return nil
}

// LoadWeightsFile overlays a YAML file on DefaultWeights. An empty path or a
// missing file yields the defaults.
func LoadWeightsFile(path string) (Weights, error) {
	w := DefaultWeights()
	if path == "" {
		return w, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return w, nil
		}
		return Weights{}, fmt.Errorf("reading weights file: %w", err)
	}
	if err := yaml.Unmarshal(data, &w); err != nil {
		return Weights{}, fmt.Errorf("parsing weights file: %w", err)
	}
	if err := w.Validate(); err != nil {
		return Weights{}, err
	}
	return w, nil
}

// MatchWeights is the job match allocation. Every field except the rule constants
// is the maximum points of its breakdown key; they sum to 100.
type MatchWeights struct {
	RequiredSkills  float64 `yaml:"required_skills" json:"requiredSkills"`
	PreferredSkills float64 `yaml:"preferred_skills" json:"preferredSkills"`
	Projects        float64 `yaml:"projects" json:"projects"`
	Readiness       float64 `yaml:"readiness" json:"readiness"`
	Growth          float64 `yaml:"growth" json:"growth"`
	CGPA            float64 `yaml:"cgpa" json:"cgpa"`
	Certifications  float64 `yaml:"certifications" json:"certifications"`
	Consistency     float64 `yaml:"consistency" json:"consistency"`

	ProjectPoints       float64 `yaml:"project_points" json:"projectPoints"`
	ProjectCountCap     float64 `yaml:"project_count_cap" json:"projectCountCap"`
	SameSkillBonusCap   float64 `yaml:"same_skill_bonus_cap" json:"sameSkillBonusCap"`
	ProjectFloor        float64 `yaml:"project_floor" json:"projectFloor"`
	CertificationPoints float64 `yaml:"certification_points" json:"certificationPoints"`
	StreakDivisor       float64 `yaml:"streak_divisor" json:"streakDivisor"`
	GrowthWindow        int     `yaml:"growth_window" json:"growthWindow"`
	GrowthDivisor       float64 `yaml:"growth_divisor" json:"growthDivisor"`
	NeutralCGPA         float64 `yaml:"neutral_cgpa" json:"neutralCGPA"`
	CGPAScale           float64 `yaml:"cgpa_scale" json:"cgpaScale"`

	// MinimumMatchFloor lifts the total for students who match at least one required
	// skill but have no verified projects. Pending product-owner confirmation.
	MinimumMatchFloor float64 `yaml:"minimum_match_floor" json:"minimumMatchFloor"`
}

// DefaultMatchWeights returns the production match allocation.
func DefaultMatchWeights() MatchWeights {
	return MatchWeights{
		RequiredSkills:  30,
		PreferredSkills: 5,
		Projects:        20,
		Readiness:       15,
		Growth:          5,
		CGPA:            5,
		Certifications:  10,
		Consistency:     10,

		ProjectPoints:       5,
		ProjectCountCap:     15,
		SameSkillBonusCap:   5,
		ProjectFloor:        3,
		CertificationPoints: 5,
		StreakDivisor:       3,
		GrowthWindow:        10,
		GrowthDivisor:       2,
		NeutralCGPA:         5,
		CGPAScale:           10,

		MinimumMatchFloor: 25,
	}
}

// Total is the sum of every breakdown allocation.
func (m MatchWeights) Total() float64 {
	return m.RequiredSkills + m.PreferredSkills + m.Projects + m.Readiness + m.Growth + m.CGPA + m.Certifications + m.Consistency
}

// Validate checks the allocation is finite, non-negative and bounded by MaxScore.
func (m MatchWeights) Validate() error {
	for name, v := range map[string]float64{
		"required_skills":      m.RequiredSkills,
		"preferred_skills":     m.PreferredSkills,
		"projects":             m.Projects,
		"readiness":            m.Readiness,
		"growth":               m.Growth,
		"cgpa":                 m.CGPA,
		"certifications":       m.Certifications,
		"consistency":          m.Consistency,
		"project_points":       m.ProjectPoints,
		"project_count_cap":    m.ProjectCountCap,
		"same_skill_bonus_cap": m.SameSkillBonusCap,
		"project_floor":        m.ProjectFloor,
		"certification_points": m.CertificationPoints,
		"neutral_cgpa":         m.NeutralCGPA,
		"minimum_match_floor":  m.MinimumMatchFloor,
	} {
		if !finiteNonNegative(v) {
			return fmt.Errorf("%w: %s=%v", ErrInvalidWeights, name, v)
		}
	}
	if !positive(m.StreakDivisor) || !positive(m.GrowthDivisor) || !positive(m.CGPAScale) {
		return fmt.Errorf("%w: divisors must be positive", ErrInvalidWeights)
	}
	if m.NeutralCGPA > m.CGPAScale {
		return fmt.Errorf("%w: neutral_cgpa must be within [0,%v]", ErrInvalidWeights, m.CGPAScale)
	}
	if m.GrowthWindow < 2 {
		return fmt.Errorf("%w: growth_window must be at least 2", ErrInvalidWeights)
	}
	if m.MinimumMatchFloor > MaxScore {
		return fmt.Errorf("%w: minimum_match_floor exceeds %v", ErrInvalidWeights, MaxScore)
	}
	if total := m.Total(); total > MaxScore+1e-9 {
		return fmt.Errorf("%w: match allocation %.2f exceeds %v", ErrInvalidWeights, total, MaxScore)
	}
	return nil
}

func finiteNonNegative(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

func positive(v float64) bool {
	return finiteNonNegative(v) && v > 0
}
