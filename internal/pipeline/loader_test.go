package pipeline

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"constructerp/internal/model"
)

type fakeSource struct {
	delay    time.Duration
	inflight atomic.Int32
	peak     atomic.Int32
	failCash error
}

func (f *fakeSource) enter(ctx context.Context) error {
	n := f.inflight.Add(1)
	defer f.inflight.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}
	select {
	case <-time.After(f.delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeSource) DashboardStats(ctx context.Context) (model.DashboardStats, error) {
	if err := f.enter(ctx); err != nil {
		return model.DashboardStats{}, err
	}
	return model.DashboardStats{ActiveProjects: 3}, nil
}

func (f *fakeSource) RiskAnalysis(ctx context.Context) ([]model.RiskAssessment, error) {
	if err := f.enter(ctx); err != nil {
		return nil, err
	}
	return []model.RiskAssessment{{ProjectID: 1, RiskScore: 30}}, nil
}

func (f *fakeSource) CashFlow(ctx context.Context) ([]model.CashFlowPoint, error) {
	if f.failCash != nil {
		return nil, f.failCash
	}
	if err := f.enter(ctx); err != nil {
		return nil, err
	}
	return []model.CashFlowPoint{{Month: "Oct"}}, nil
}

func TestLoadDashboard_JoinsResults(t *testing.T) {
	src := &fakeSource{delay: 50 * time.Millisecond}
	d, err := LoadDashboard(context.Background(), src)
	if err != nil {
		t.Fatalf("LoadDashboard: %v", err)
	}
	if d.Stats.ActiveProjects != 3 {
		t.Errorf("ActiveProjects = %d, want 3", d.Stats.ActiveProjects)
	}
	if len(d.Risks) != 1 || len(d.CashFlow) != 1 {
		t.Errorf("risks=%d cashflow=%d, want 1 and 1", len(d.Risks), len(d.CashFlow))
	}
	if src.peak.Load() < 2 {
		t.Errorf("peak concurrency = %d, want fetches to overlap", src.peak.Load())
	}
}

func TestLoadDashboard_FirstErrorWins(t *testing.T) {
	boom := errors.New("boom")
	src := &fakeSource{delay: time.Second, failCash: boom}

	start := time.Now()
	_, err := LoadDashboard(context.Background(), src)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("took %v, slow fetches were not cancelled", elapsed)
	}
}
