package services

import (
	"fmt"
	"math"

	"talentmatch/cv-matcher/internal/models"
)

// dimensionWeights is the fixed, process-wide weight table. It is read-only
// after startup and safe for concurrent use.
var dimensionWeights = map[models.Dimension]float64{
	models.DimensionEducation:  0.15,
	models.DimensionExperience: 0.25,
	models.DimensionTechSkills: 0.50,
	models.DimensionSoftSkills: 0.10,
}

// ScoreAggregator combines the four dimension results into one composite
// MatchResult. A dimension that degraded to zero still participates at full
// weight: an evaluation failure penalizes the composite, it is not excluded.
type ScoreAggregator struct {
	weights map[models.Dimension]float64
}

// NewScoreAggregator validates the weight invariant at construction so a
// broken table can never reach scoring.
func NewScoreAggregator() (*ScoreAggregator, error) {
	var sum float64
	for _, w := range dimensionWeights {
		sum += w
	}
	if math.Abs(sum-1.0) > 1e-9 {
		return nil, fmt.Errorf("dimension weights must sum to 1.0, got %v", sum)
	}

	return &ScoreAggregator{weights: dimensionWeights}, nil
}

// Aggregate computes the weighted composite of the given subscores.
// Sub-scores enter the sum unrounded; only the composite is rounded, half-up
// to two decimals (0.675 rounds to 0.68).
func (a *ScoreAggregator) Aggregate(subscores models.Subscores) models.MatchResult {
	// Summation follows the fixed dimension order. Map iteration order would
	// make the float sum order dependent and the composite nondeterministic
	// in the last ulp.
	var composite float64
	for _, dim := range models.Dimensions {
		composite += a.weights[dim] * subscores.Get(dim).Score
	}

	return models.MatchResult{
		CompositeScore: roundHalfUp(clampScore(composite)),
		Subscores:      subscores,
	}
}

// Weight returns the configured weight of one dimension.
func (a *ScoreAggregator) Weight(dim models.Dimension) float64 {
	return a.weights[dim]
}

func roundHalfUp(v float64) float64 {
	return math.Round(v*100) / 100
}
