package service

import (
	"context"
	"time"
)

// Latency is the simulated round-trip time of each operation.
type Latency struct {
	Login         time.Duration
	Stats         time.Duration
	Projects      time.Duration
	Invoices      time.Duration
	Accounts      time.Duration
	CashFlow      time.Duration
	Risk          time.Duration
	Users         time.Duration
	CreateInvoice time.Duration
	Audit         time.Duration
}

// DefaultLatency returns the demo backend's response times.
func DefaultLatency() Latency {
	return Latency{
		Login:         500 * time.Millisecond,
		Stats:         300 * time.Millisecond,
		Projects:      400 * time.Millisecond,
		Invoices:      400 * time.Millisecond,
		Accounts:      300 * time.Millisecond,
		CashFlow:      500 * time.Millisecond,
		Risk:          600 * time.Millisecond,
		Users:         300 * time.Millisecond,
		CreateInvoice: 400 * time.Millisecond,
		Audit:         300 * time.Millisecond,
	}
}

// Scale multiplies every delay by f. f <= 0 disables latency.
func (l Latency) Scale(f float64) Latency {
	if f <= 0 {
		return Latency{}
	}
	m := func(d time.Duration) time.Duration { return time.Duration(float64(d) * f) }
	return Latency{
		Login:         m(l.Login),
		Stats:         m(l.Stats),
		Projects:      m(l.Projects),
		Invoices:      m(l.Invoices),
		Accounts:      m(l.Accounts),
		CashFlow:      m(l.CashFlow),
		Risk:          m(l.Risk),
		Users:         m(l.Users),
		CreateInvoice: m(l.CreateInvoice),
		Audit:         m(l.Audit),
	}
}

// wait sleeps for d or until ctx is done.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
