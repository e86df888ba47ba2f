package scoring

import (
	"math"

	"github.com/noah-isme/career-readiness-api/internal/models"
)

// Result is the outcome of a readiness calculation.
type Result struct {
	Total     int                  `json:"total"`
	Raw       float64              `json:"raw"`
	Breakdown map[Category]float64 `json:"breakdown"`
}

// Calculator scores students with a fixed weight table.
type Calculator struct {
	weights Weights
}

// NewCalculator validates the table and returns a Calculator bound to a copy of it.
func NewCalculator(w Weights) (*Calculator, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return &Calculator{weights: w}, nil
}

// Weights returns the table the calculator was built with.
func (c *Calculator) Weights() Weights {
	return c.weights
}

// Calculate returns the bounded readiness score of a student. It does not modify s.
func (c *Calculator) Calculate(s *models.Student) (Result, error) {
	sub, err := Aggregate(s, c.weights)
	if err != nil {
		return Result{}, err
	}

	breakdown := make(map[Category]float64, len(ReadinessCategories)+1)
	raw := 0.0
	for _, cat := range ReadinessCategories {
		cw, _ := c.weights.Category(cat)
		points := sub[cat] * cw.Weight
		raw += points
		breakdown[cat] = round2(points)
	}

	bonus := 0.0
	if s.GitHub != nil {
		bonus = capAt(s.GitHub.ActivityScore/c.weights.GitHubBonusDivisor, c.weights.GitHubBonusCap)
	}
	raw += bonus
	breakdown[CategoryGitHub] = round2(bonus)
	if !finite(raw) {
		return Result{}, shapeErr("total", "is not a finite number")
	}

	return Result{
		Total:     int(math.Round(clamp(raw, 0, MaxScore))),
		Raw:       round2(raw),
		Breakdown: breakdown,
	}, nil
}

var defaultCalculator = &Calculator{weights: DefaultWeights()}

// CalculateReadinessScore scores a student with DefaultWeights.
func CalculateReadinessScore(s *models.Student) (Result, error) {
	return defaultCalculator.Calculate(s)
}
