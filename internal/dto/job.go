package dto

import (
	"time"

	"github.com/noah-isme/career-readiness-api/internal/models"
)

// CreateJobRequest creates a posting owned by the calling recruiter.
type CreateJobRequest struct {
	Title             string           `json:"title" validate:"required,max=200"`
	Company           string           `json:"company" validate:"required,max=200"`
	Description       string           `json:"description" validate:"max=5000"`
	Status            models.JobStatus `json:"status" validate:"omitempty,oneof=draft open closed"`
	RequiredSkills    []string         `json:"requiredSkills" validate:"omitempty,max=50,dive,required,max=60"`
	PreferredSkills   []string         `json:"preferredSkills" validate:"omitempty,max=50,dive,required,max=60"`
	MinReadinessScore int              `json:"minReadinessScore" validate:"gte=0,lte=100"`
	MinCGPA           float64          `json:"minCGPA" validate:"gte=0,lte=10"`
	MinProjects       int              `json:"minProjects" validate:"gte=0,lte=100"`
	ExpiresAt         *time.Time       `json:"expiresAt"`
}

// UpdateJobRequest replaces the editable fields of a posting.
type UpdateJobRequest CreateJobRequest

// MatchRunAccepted acknowledges a queued matching run.
type MatchRunAccepted struct {
	JobID   string `json:"jobId"`
	Queued  bool   `json:"queued"`
	Message string `json:"message"`
}

// JobMatchesView lists the cached ranking of a job.
type JobMatchesView struct {
	JobID      string                  `json:"jobId"`
	ComputedAt *time.Time              `json:"computedAt,omitempty"`
	Matches    []models.MatchedStudent `json:"matches"`
}
