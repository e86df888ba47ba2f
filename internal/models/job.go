package models

import (
	"strings"
	"time"
)

// JobStatus captures the posting lifecycle.
type JobStatus string

const (
	JobStatusDraft  JobStatus = "draft"
	JobStatusOpen   JobStatus = "open"
	JobStatusClosed JobStatus = "closed"
)

// Job is a recruiter posting matched against students.
type Job struct {
	ID                string           `json:"id"`
	RecruiterID       string           `json:"recruiterId"`
	Title             string           `json:"title"`
	Company           string           `json:"company"`
	Description       string           `json:"description,omitempty"`
	Status            JobStatus        `json:"status"`
	RequiredSkills    []string         `json:"requiredSkills"`
	PreferredSkills   []string         `json:"preferredSkills"`
	MinReadinessScore int              `json:"minReadinessScore"`
	MinCGPA           float64          `json:"minCGPA"`
	MinProjects       int              `json:"minProjects"`
	ExpiresAt         *time.Time       `json:"expiresAt,omitempty"`
	MatchedStudents   []MatchedStudent `json:"matchedStudents"`
	MatchesComputedAt *time.Time       `json:"matchesComputedAt,omitempty"`
	Version           int              `json:"version"`
	CreatedAt         time.Time        `json:"createdAt"`
	UpdatedAt         time.Time        `json:"updatedAt"`
}

// MatchedStudent is one cached ranking row on a job.
type MatchedStudent struct {
	StudentID      string             `json:"studentId"`
	StudentName    string             `json:"studentName,omitempty"`
	MatchScore     float64            `json:"matchScore"`
	ScoreBreakdown map[string]float64 `json:"scoreBreakdown"`
	SkillsMatched  []string           `json:"skillsMatched"`
	SkillsMissing  []string           `json:"skillsMissing"`
}

// JobFilter scopes job listings.
type JobFilter struct {
	RecruiterID string
	Status      JobStatus
	Page        int
	PageSize    int
}

// MatchingCriteriaEqual reports whether two postings share every field that feeds matching.
func (j *Job) MatchingCriteriaEqual(other *Job) bool {
	if j.MinReadinessScore != other.MinReadinessScore || j.MinCGPA != other.MinCGPA || j.MinProjects != other.MinProjects {
		return false
	}
	return equalSkillSets(j.RequiredSkills, other.RequiredSkills) && equalSkillSets(j.PreferredSkills, other.PreferredSkills)
}

// ClearMatches drops the cached ranking.
func (j *Job) ClearMatches() {
	j.MatchedStudents = nil
	j.MatchesComputedAt = nil
}

func equalSkillSets(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !strings.EqualFold(strings.TrimSpace(a[i]), strings.TrimSpace(b[i])) {
			return false
		}
	}
	return true
}
