package scoring

import (
	"time"

	"github.com/noah-isme/career-readiness-api/internal/models"
)

// Recorder appends readiness history and growth timeline entries.
type Recorder struct {
	Now func() time.Time
}

// NewRecorder returns a Recorder on the wall clock.
func NewRecorder() *Recorder {
	return &Recorder{Now: time.Now}
}

// Record sets the student's readiness score and appends history when the score
// changed or a reason is supplied. A non-empty reason also adds a timeline entry.
// Existing entries are never modified. It reports whether anything was appended.
func (r *Recorder) Record(s *models.Student, newScore int, reason string) bool {
	changed := newScore != s.ReadinessScore
	s.ReadinessScore = newScore
	if !changed && reason == "" {
		return false
	}

	now := r.now()
	s.ReadinessHistory = append(s.ReadinessHistory, models.ScoreEntry{Score: newScore, CalculatedAt: now})
	if reason != "" {
		s.GrowthTimeline = append(s.GrowthTimeline, models.TimelineEntry{
			Date:           now,
			ReadinessScore: newScore,
			Reason:         reason,
		})
	}
	return true
}

func (r *Recorder) now() time.Time {
	if r == nil || r.Now == nil {
		return time.Now().UTC()
	}
	return r.Now().UTC()
}
