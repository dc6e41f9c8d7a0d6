// Package risk scores construction projects for budget and schedule risk.
package risk

import (
	"errors"
	"fmt"
	"math"

	"constructerp/internal/model"
)

// ErrInvalidInput is returned when a project's figures cannot be scored.
var ErrInvalidInput = errors.New("invalid risk input")

// Factor labels, in the order their rules are evaluated.
const (
	FactorBudgetExceeded   = "Budget Exceeded"
	FactorSpendingAhead    = "Spending exceeds progress by >20%"
	FactorLowProgressSpend = "Low progress with high spend"
)

// Rule weights and thresholds.
const (
	weightBudgetExceeded = 40
	weightSpendingAhead  = 30
	weightLowProgress    = 25

	spendingAheadDelta   = 20.0
	lowProgressThreshold = 50
	highSpendRatio       = 0.7
)

// Assess scores a single project.
//
// The overrun rule fires at most once: a budget overrun (used > 100%) adds 40,
// otherwise spending more than 20 points ahead of progress adds 30. The pace
// rule is independent and adds 25 when progress is under 50% while more than
// 70% of the budget is spent. Progress is used as given.
func Assess(p model.Project) (model.RiskAssessment, error) {
	if err := check(p); err != nil {
		return model.RiskAssessment{}, err
	}

	usedPct := p.Spent / p.Budget * 100
	delta := usedPct - float64(p.Progress)

	score := 0
	factors := []string{}

	if usedPct > 100 {
		score += weightBudgetExceeded
		factors = append(factors, FactorBudgetExceeded)
	} else if delta > spendingAheadDelta {
		score += weightSpendingAhead
		factors = append(factors, FactorSpendingAhead)
	}

	if p.Progress < lowProgressThreshold && p.Spent > p.Budget*highSpendRatio {
		score += weightLowProgress
		factors = append(factors, FactorLowProgressSpend)
	}

	return model.RiskAssessment{
		ProjectID:         p.ID,
		ProjectName:       p.Name,
		RiskScore:         score,
		RiskLevel:         LevelFor(score),
		Factors:           factors,
		BudgetUsedPercent: usedPct,
	}, nil
}

// LevelFor maps a score to its severity band.
func LevelFor(score int) model.RiskLevel {
	switch {
	case score > 75:
		return model.RiskCritical
	case score > 50:
		return model.RiskHigh
	case score > 25:
		return model.RiskMedium
	default:
		return model.RiskLow
	}
}

// AssessAll scores every project in input order. Projects that cannot be
// scored are left out and reported together in the returned error.
func AssessAll(projects []model.Project) ([]model.RiskAssessment, error) {
	out := make([]model.RiskAssessment, 0, len(projects))
	var errs []error
	for _, p := range projects {
		a, err := Assess(p)
		if err != nil {
			errs = append(errs, fmt.Errorf("project %d (%s): %w", p.ID, p.Name, err))
			continue
		}
		out = append(out, a)
	}
	return out, errors.Join(errs...)
}

func check(p model.Project) error {
	switch {
	case math.IsNaN(p.Budget) || math.IsInf(p.Budget, 0):
		return fmt.Errorf("%w: budget is not a finite number", ErrInvalidInput)
	case p.Budget <= 0:
		return fmt.Errorf("%w: budget must be positive, got %g", ErrInvalidInput, p.Budget)
	case math.IsNaN(p.Spent) || math.IsInf(p.Spent, 0):
		return fmt.Errorf("%w: spent is not a finite number", ErrInvalidInput)
	case p.Spent < 0:
		return fmt.Errorf("%w: spent must not be negative, got %g", ErrInvalidInput, p.Spent)
	}
	return nil
}
