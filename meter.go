package spendgate

import "time"

// Meter observes gateway events for monitoring/logging.
type Meter interface {
	// OnRequest is called when a spend request is accepted, before any
	// confirmation or execution.
	OnRequest(event RequestEvent)

	// OnSettle is called when an action settles, after all pool mutations
	// for that settlement have been applied.
	OnSettle(event SettleEvent)
}

// RequestEvent describes an accepted spend request.
type RequestEvent struct {
	RequestID            string
	FeatureKey           string
	Cost                 int
	RequiresConfirmation bool
}

// SettleEvent describes the outcome of an executed action.
type SettleEvent struct {
	RequestID    string
	FeatureKey   string
	Cost         int
	Confirmed    bool // routed through an explicit confirmation
	Success      bool
	Duration     time.Duration
	BalanceAfter int
	Error        error
}
