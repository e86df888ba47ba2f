// Package scoring turns a student's activity into a bounded readiness score and
// scores students against job postings. Everything here is pure: no I/O, no clock
// reads outside the history Recorder.
package scoring

// Category is a canonical breakdown key. Display names are mapped at the
// presentation layer only.
type Category string

// Readiness categories.
const (
	CategoryBase           Category = "base"
	CategorySkills         Category = "skills"
	CategoryProjects       Category = "projects"
	CategoryCertifications Category = "certifications"
	CategoryEvents         Category = "events"
	CategoryCoding         Category = "coding"
	CategoryConsistency    Category = "consistency"
	CategoryCGPA           Category = "cgpa"
	CategoryInterview      Category = "interview"
	CategoryGitHub         Category = "github"
)

// Job match categories. Projects, certifications, consistency and cgpa reuse the
// readiness keys above.
const (
	CategoryRequiredSkills  Category = "requiredSkills"
	CategoryPreferredSkills Category = "preferredSkills"
	CategoryReadiness       Category = "readiness"
	CategoryGrowth          Category = "growth"
)

// ReadinessCategories lists the weighted readiness categories in evaluation order.
// The GitHub bonus is applied separately after the weighted sum.
var ReadinessCategories = []Category{
	CategoryBase,
	CategorySkills,
	CategoryProjects,
	CategoryCertifications,
	CategoryEvents,
	CategoryCoding,
	CategoryConsistency,
	CategoryCGPA,
	CategoryInterview,
}

// MatchCategories lists the job match breakdown keys.
var MatchCategories = []Category{
	CategoryRequiredSkills,
	CategoryPreferredSkills,
	CategoryProjects,
	CategoryReadiness,
	CategoryGrowth,
	CategoryCGPA,
	CategoryCertifications,
	CategoryConsistency,
}

var displayNames = map[Category]string{
	CategoryBase:            "Base readiness",
	CategorySkills:          "Declared skills",
	CategoryProjects:        "Projects",
	CategoryCertifications:  "Certifications",
	CategoryEvents:          "Events",
	CategoryCoding:          "Coding practice",
	CategoryConsistency:     "Coding consistency",
	CategoryCGPA:            "CGPA",
	CategoryInterview:       "Interview performance",
	CategoryGitHub:          "GitHub activity",
	CategoryRequiredSkills:  "Required skills",
	CategoryPreferredSkills: "Preferred skills",
	CategoryReadiness:       "Readiness score",
	CategoryGrowth:          "Growth trend",
}

// DisplayName returns the human label for a category.
func (c Category) DisplayName() string {
	if name, ok := displayNames[c]; ok {
		return name
	}
	return string(c)
}
