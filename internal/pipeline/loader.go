package pipeline

import (
	"context"

	"constructerp/internal/model"

	"golang.org/x/sync/errgroup"
)

// DashboardSource is what the dashboard needs from the data service.
type DashboardSource interface {
	DashboardStats(ctx context.Context) (model.DashboardStats, error)
	RiskAnalysis(ctx context.Context) ([]model.RiskAssessment, error)
	CashFlow(ctx context.Context) ([]model.CashFlowPoint, error)
}

// Dashboard is the joined result of the dashboard fetches.
type Dashboard struct {
	Stats    model.DashboardStats   `json:"stats"`
	Risks    []model.RiskAssessment `json:"risks"`
	CashFlow []model.CashFlowPoint  `json:"cashFlow"`
}

// LoadDashboard runs the three fetches concurrently and joins them.
// The first failure cancels the others.
func LoadDashboard(ctx context.Context, src DashboardSource) (*Dashboard, error) {
	g, ctx := errgroup.WithContext(ctx)
	var d Dashboard

	g.Go(func() error {
		stats, err := src.DashboardStats(ctx)
		if err != nil {
			return err
		}
		d.Stats = stats
		return nil
	})
	g.Go(func() error {
		risks, err := src.RiskAnalysis(ctx)
		if err != nil {
			return err
		}
		d.Risks = risks
		return nil
	})
	g.Go(func() error {
		cf, err := src.CashFlow(ctx)
		if err != nil {
			return err
		}
		d.CashFlow = cf
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &d, nil
}
