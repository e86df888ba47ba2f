package scoring

import (
	"errors"
	"fmt"
	"math"

	"github.com/noah-isme/career-readiness-api/internal/models"
)

// ErrInvalidShape marks a student record whose data cannot be scored.
var ErrInvalidShape = errors.New("invalid student shape")

// ShapeError names the offending field of a malformed student.
type ShapeError struct {
	Field  string
	Reason string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("invalid student shape: %s %s", e.Field, e.Reason)
}

// Is lets errors.Is match ErrInvalidShape.
func (e *ShapeError) Is(target error) bool {
	return target == ErrInvalidShape
}

func shapeErr(field, reason string) error {
	return &ShapeError{Field: field, Reason: reason}
}

// ValidateShape rejects records that contain non-finite numbers or unknown item
// states. Missing data is not an error; it scores with neutral defaults.
func ValidateShape(s *models.Student) error {
	if s == nil {
		return shapeErr("student", "is nil")
	}
	if s.CGPA != nil && !finite(*s.CGPA) {
		return shapeErr("cgpa", "is not a finite number")
	}
	for i, p := range s.Projects {
		if !statusKnown(p.Status) {
			return shapeErr(fmt.Sprintf("projects[%d].status", i), fmt.Sprintf("%q is unknown", p.Status))
		}
	}
	for i, c := range s.Certifications {
		if !statusKnown(c.Status) {
			return shapeErr(fmt.Sprintf("certifications[%d].status", i), fmt.Sprintf("%q is unknown", c.Status))
		}
	}
	for i, e := range s.Events {
		if !statusKnown(e.Status) {
			return shapeErr(fmt.Sprintf("events[%d].status", i), fmt.Sprintf("%q is unknown", e.Status))
		}
		if !finite(e.PointsAwarded) {
			return shapeErr(fmt.Sprintf("events[%d].pointsAwarded", i), "is not a finite number")
		}
	}
	if s.GitHub != nil && !finite(s.GitHub.ActivityScore) {
		return shapeErr("githubStats.activityScore", "is not a finite number")
	}
	iv := s.Interview
	for field, v := range map[string]float64{
		"interviewStats.avgScore":                     iv.AvgScore,
		"interviewStats.bestScore":                    iv.BestScore,
		"interviewStats.communication.avgClarity":     iv.Communication.AvgClarity,
		"interviewStats.communication.avgStructure":   iv.Communication.AvgStructure,
		"interviewStats.communication.avgConciseness": iv.Communication.AvgConciseness,
	} {
		if !finite(v) {
			return shapeErr(field, "is not a finite number")
		}
	}
	return nil
}

// an empty status is treated as pending
func statusKnown(s models.ItemStatus) bool {
	return s == "" || s.Valid()
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
