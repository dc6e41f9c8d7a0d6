package risk

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"constructerp/internal/model"
)

func project(budget, spent float64, progress int) model.Project {
	return model.Project{ID: 1, Name: "test", Budget: budget, Spent: spent, Progress: progress}
}

func TestAssess_Cases(t *testing.T) {
	tests := []struct {
		name    string
		p       model.Project
		score   int
		level   model.RiskLevel
		factors []string
		usedPct float64
	}{
		{
			name:    "budget exceeded at half progress",
			p:       project(100, 110, 50),
			score:   40,
			level:   model.RiskMedium,
			factors: []string{FactorBudgetExceeded},
			usedPct: 110,
		},
		{
			name:    "spending ahead of progress",
			p:       project(100, 90, 60),
			score:   30,
			level:   model.RiskMedium,
			factors: []string{FactorSpendingAhead},
			usedPct: 90,
		},
		{
			name:    "spending ahead with low progress",
			p:       project(100, 80, 40),
			score:   55,
			level:   model.RiskHigh,
			factors: []string{FactorSpendingAhead, FactorLowProgressSpend},
			usedPct: 80,
		},
		{
			name:    "skyline tower",
			p:       project(5_000_000, 4_200_000, 60),
			score:   30,
			level:   model.RiskMedium,
			factors: []string{FactorSpendingAhead},
			usedPct: 84,
		},
		{
			name:    "exceeded with low progress",
			p:       project(100, 120, 10),
			score:   65,
			level:   model.RiskHigh,
			factors: []string{FactorBudgetExceeded, FactorLowProgressSpend},
			usedPct: 120,
		},
		{
			name:    "on track",
			p:       project(1_200_000, 300_000, 25),
			score:   0,
			level:   model.RiskLow,
			factors: []string{},
			usedPct: 25,
		},
		{
			name:    "exactly at budget is not exceeded",
			p:       project(100, 100, 80),
			score:   0,
			level:   model.RiskLow,
			factors: []string{},
			usedPct: 100,
		},
		{
			name:    "delta of exactly 20 does not fire",
			p:       project(100, 70, 50),
			score:   0,
			level:   model.RiskLow,
			factors: []string{},
			usedPct: 70,
		},
		{
			name:    "zero spent and zero progress",
			p:       project(100, 0, 0),
			score:   0,
			level:   model.RiskLow,
			factors: []string{},
			usedPct: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Assess(tt.p)
			if err != nil {
				t.Fatalf("Assess: %v", err)
			}
			if got.RiskScore != tt.score {
				t.Errorf("RiskScore = %d, want %d", got.RiskScore, tt.score)
			}
			if got.RiskLevel != tt.level {
				t.Errorf("RiskLevel = %s, want %s", got.RiskLevel, tt.level)
			}
			if !reflect.DeepEqual(got.Factors, tt.factors) {
				t.Errorf("Factors = %q, want %q", got.Factors, tt.factors)
			}
			if math.Abs(got.BudgetUsedPercent-tt.usedPct) > 1e-9 {
				t.Errorf("BudgetUsedPercent = %.4f, want %.4f", got.BudgetUsedPercent, tt.usedPct)
			}
		})
	}
}

func TestAssess_QuietProjectsScoreZero(t *testing.T) {
	for budget := 50.0; budget <= 1000; budget += 150 {
		for spent := 0.0; spent <= budget; spent += budget / 20 {
			for progress := 0; progress <= 100; progress += 5 {
				used := spent / budget * 100
				if used > 100 || used-float64(progress) > 20 {
					continue
				}
				if progress < 50 && spent > budget*0.7 {
					continue
				}
				got, err := Assess(project(budget, spent, progress))
				if err != nil {
					t.Fatalf("Assess(%g, %g, %d): %v", budget, spent, progress, err)
				}
				if got.RiskScore != 0 || got.RiskLevel != model.RiskLow || len(got.Factors) != 0 {
					t.Fatalf("Assess(%g, %g, %d) = %d %s %q, want 0 Low []",
						budget, spent, progress, got.RiskScore, got.RiskLevel, got.Factors)
				}
			}
		}
	}
}

func TestAssess_Idempotent(t *testing.T) {
	p := project(8_500_000, 8_600_000, 95)
	first, err := Assess(p)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Assess(p)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("second Assess = %+v, want %+v", second, first)
	}
}

func TestAssess_MonotonicInSpent(t *testing.T) {
	const budget = 1000.0
	for progress := 0; progress <= 120; progress += 10 {
		prev := -1
		for spent := 0.0; spent <= 2*budget; spent += 10 {
			got, err := Assess(project(budget, spent, progress))
			if err != nil {
				t.Fatal(err)
			}
			if got.RiskScore < prev {
				t.Fatalf("progress=%d spent=%g: score dropped from %d to %d",
					progress, spent, prev, got.RiskScore)
			}
			prev = got.RiskScore
		}
	}
}

func TestAssess_ScoreDomain(t *testing.T) {
	allowed := map[int]bool{0: true, 25: true, 30: true, 40: true, 55: true, 65: true}
	for spent := 0.0; spent <= 200; spent += 5 {
		for progress := -10; progress <= 150; progress += 5 {
			got, err := Assess(project(100, spent, progress))
			if err != nil {
				t.Fatal(err)
			}
			if !allowed[got.RiskScore] {
				t.Fatalf("spent=%g progress=%d: unexpected score %d", spent, progress, got.RiskScore)
			}
		}
	}
}

func TestAssess_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		p    model.Project
	}{
		{"zero budget", project(0, 0, 0)},
		{"zero budget with spend", project(0, 100, 50)},
		{"negative budget", project(-100, 50, 50)},
		{"nan budget", project(math.NaN(), 50, 50)},
		{"infinite budget", project(math.Inf(1), 50, 50)},
		{"negative spent", project(100, -1, 50)},
		{"nan spent", project(100, math.NaN(), 50)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Assess(tt.p)
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("err = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestLevelFor_Thresholds(t *testing.T) {
	tests := []struct {
		score int
		want  model.RiskLevel
	}{
		{0, model.RiskLow},
		{25, model.RiskLow},
		{26, model.RiskMedium},
		{50, model.RiskMedium},
		{51, model.RiskHigh},
		{75, model.RiskHigh},
		{76, model.RiskCritical},
		{100, model.RiskCritical},
	}
	for _, tt := range tests {
		if got := LevelFor(tt.score); got != tt.want {
			t.Errorf("LevelFor(%d) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestAssessAll_SkipsInvalid(t *testing.T) {
	projects := []model.Project{
		{ID: 1, Name: "ok", Budget: 100, Spent: 90, Progress: 60},
		{ID: 2, Name: "broken", Budget: 0, Spent: 10, Progress: 10},
		{ID: 3, Name: "fine", Budget: 100, Spent: 10, Progress: 10},
	}

	got, err := AssessAll(projects)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].ProjectID != 1 || got[1].ProjectID != 3 {
		t.Errorf("ids = %d,%d, want 1,3", got[0].ProjectID, got[1].ProjectID)
	}
}
