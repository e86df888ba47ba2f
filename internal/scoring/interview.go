package scoring

import "github.com/noah-isme/career-readiness-api/internal/models"

// QuestionFeedback is the evaluation of one answered interview question.
// Score is on a 0-100 scale, the rubric fields on 0-10.
type QuestionFeedback struct {
	Score       float64 `json:"score" validate:"gte=0,lte=100"`
	Clarity     float64 `json:"clarity" validate:"gte=0,lte=10"`
	Structure   float64 `json:"structure" validate:"gte=0,lte=10"`
	Conciseness float64 `json:"conciseness" validate:"gte=0,lte=10"`
}

// InterviewSession is a finished or abandoned mock interview.
type InterviewSession struct {
	Completed bool               `json:"completed"`
	Questions []QuestionFeedback `json:"questions" validate:"dive"`
}

// Scored reports whether the session moves the interview averages.
func (s InterviewSession) Scored() bool {
	return s.Completed && len(s.Questions) > 0
}

// FoldSession folds a session into the running interview stats. Abandoned sessions
// and sessions without evaluated questions only bump TotalSessions.
func FoldSession(stats models.InterviewStats, session InterviewSession) models.InterviewStats {
	stats.TotalSessions++
	if !session.Scored() {
		return stats
	}

	var score, clarity, structure, conciseness float64
	for _, q := range session.Questions {
		score += clamp(q.Score, 0, 100)
		clarity += clamp(q.Clarity, 0, 10)
		structure += clamp(q.Structure, 0, 10)
		conciseness += clamp(q.Conciseness, 0, 10)
	}
	n := float64(len(session.Questions))
	score /= n

	prev := float64(stats.CompletedSessions)
	next := prev + 1
	runningMean := func(avg, sample float64) float64 {
		return (avg*prev + sample) / next
	}

	stats.CompletedSessions++
	stats.AvgScore = round2(runningMean(stats.AvgScore, score))
	if score > stats.BestScore {
		stats.BestScore = round2(score)
	}
	stats.Communication = models.CommunicationStats{
		AvgClarity:     round2(runningMean(stats.Communication.AvgClarity, clarity/n)),
		AvgStructure:   round2(runningMean(stats.Communication.AvgStructure, structure/n)),
		AvgConciseness: round2(runningMean(stats.Communication.AvgConciseness, conciseness/n)),
	}
	return stats
}
