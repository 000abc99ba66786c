package metrics

import "sync/atomic"

type Counters struct {
	OrdersCreated        uint64 `json:"orders_created"`
	SettlementsProcessed uint64 `json:"settlements_processed"`
	SettlementsSucceeded uint64 `json:"settlements_succeeded"`
	SettlementsFailed    uint64 `json:"settlements_failed"`
	OnboardingsCompleted uint64 `json:"onboardings_completed"`
	OnboardingsFailed    uint64 `json:"onboardings_failed"`
}

func (c *Counters) IncOrdersCreated() {
	atomic.AddUint64(&c.OrdersCreated, 1)
}

func (c *Counters) IncProcessed() {
	atomic.AddUint64(&c.SettlementsProcessed, 1)
}

func (c *Counters) IncSucceeded() {
	atomic.AddUint64(&c.SettlementsSucceeded, 1)
}

func (c *Counters) IncFailed() {
	atomic.AddUint64(&c.SettlementsFailed, 1)
}

func (c *Counters) IncOnboardingCompleted() {
	atomic.AddUint64(&c.OnboardingsCompleted, 1)
}

func (c *Counters) IncOnboardingFailed() {
	atomic.AddUint64(&c.OnboardingsFailed, 1)
}

// Snapshot copies the counters with atomic loads.
func (c *Counters) Snapshot() Counters {
	return Counters{
		OrdersCreated:        atomic.LoadUint64(&c.OrdersCreated),
		SettlementsProcessed: atomic.LoadUint64(&c.SettlementsProcessed),
		SettlementsSucceeded: atomic.LoadUint64(&c.SettlementsSucceeded),
		SettlementsFailed:    atomic.LoadUint64(&c.SettlementsFailed),
		OnboardingsCompleted: atomic.LoadUint64(&c.OnboardingsCompleted),
		OnboardingsFailed:    atomic.LoadUint64(&c.OnboardingsFailed),
	}
}
