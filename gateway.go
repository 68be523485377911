package spendgate

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Action is the caller-supplied paid operation. It is invoked at most once
// per request and must not mutate the ResourcePool itself.
type Action func(ctx context.Context) error

// SpendRequest describes a paid action proposed for execution.
type SpendRequest struct {
	Cost       int
	FeatureKey string
	Action     Action

	// Title and Message are shown on the confirmation prompt. Defaults are
	// supplied when empty.
	Title   string
	Message string
}

// PromptView is the read-only snapshot the confirmation surface renders.
// The surface emits Confirm/Dismiss back in; it must disable dismissal
// while IsLoading is true.
type PromptView struct {
	IsOpen         bool
	Cost           int
	CurrentBalance int
	Title          string
	Message        string
	IsLoading      bool
}

// Default prompt strings.
const (
	DefaultConfirmTitle = "Confirm spend"
)

type gatewayState int

const (
	stateIdle gatewayState = iota
	stateAwaitingConfirmation
	stateExecuting
)

type pendingConfirmation struct {
	id         string
	cost       int
	featureKey string
	title      string
	message    string
	action     Action
	loading    bool
}

// Gateway decides whether a paid action executes immediately or requires
// explicit user confirmation, runs it at most once, and mutates the
// ResourcePool only after the action's own result is known. The debit
// happens strictly after and only upon action success.
//
// At most one request is in flight at a time: Request returns
// ErrConfirmationPending or ErrExecutionInFlight instead of replacing or
// queuing an outstanding one.
type Gateway struct {
	mu       sync.Mutex
	cfg      Config
	policy   TierQuotaPolicy
	pool     *ResourcePool
	notifier Notifier
	meter    Meter
	state    gatewayState
	pending  *pendingConfirmation
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithNotifier sets the user-facing notifier.
func WithNotifier(n Notifier) Option {
	return func(g *Gateway) { g.notifier = n }
}

// WithMeter sets the meter.
func WithMeter(m Meter) Option {
	return func(g *Gateway) { g.meter = m }
}

// NewGateway creates a Gateway owning the given pool. Default components
// (noop notifier, noop meter) are used unless overridden via options.
func NewGateway(cfg Config, pool *ResourcePool, opts ...Option) (*Gateway, error) {
	if pool == nil {
		return nil, fmt.Errorf("spendgate: resource pool is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	g := &Gateway{
		cfg:    cfg,
		policy: cfg.Policy(),
		pool:   pool,
	}

	for _, opt := range opts {
		opt(g)
	}

	// Apply defaults after options.
	if g.notifier == nil {
		g.notifier = &noopNotifier{}
	}
	if g.meter == nil {
		g.meter = &noopMeter{}
	}

	return g, nil
}

// Pool returns the pool owned by this gateway.
func (g *Gateway) Pool() *ResourcePool { return g.pool }

// SetTier recomputes the pool's sub-quota totals for a new subscription
// tier. Consumed usage is preserved.
func (g *Gateway) SetTier(tier Tier) {
	g.pool.ApplyTierQuotas(tier, g.policy)
}

// BootstrapDemo seeds the pool's sub-quotas from the promotional demo
// table, used for guest/demo sessions.
func (g *Gateway) BootstrapDemo(tier Tier) {
	g.pool.ApplyTierQuotas(tier, DemoTierQuotas)
}

// TopUp credits a purchased amount to the pool and notifies the user.
func (g *Gateway) TopUp(amount int) {
	g.pool.CreditTopUp(amount)
	g.notifier.Notify(fmt.Sprintf("%d credits added to your balance.", amount), SeveritySuccess)
}

// Request proposes a paid action. Low-cost requests for unreserved features
// execute immediately; a request at or above the threshold, or for an
// always-confirm feature, is staged behind a confirmation prompt instead.
//
// The returned error reports rejection (busy gateway, exhausted quota,
// invalid request) or, for immediately executed actions, the settlement
// outcome wrapped in a GatewayError. A settlement failure has already been
// surfaced to the user via the notifier; no resource was consumed.
func (g *Gateway) Request(ctx context.Context, req SpendRequest) error {
	if req.Action == nil {
		return ErrNilAction
	}
	if req.Cost < 0 {
		return ErrNegativeCost
	}

	g.mu.Lock()
	switch g.state {
	case stateAwaitingConfirmation:
		g.mu.Unlock()
		return ErrConfirmationPending
	case stateExecuting:
		g.mu.Unlock()
		return ErrExecutionInFlight
	}

	id := uuid.New().String()
	feature, tracked := g.cfg.feature(req.FeatureKey)

	// Reject before execution when the feature's sub-quota is exhausted.
	if tracked && feature.Quota != "" {
		if sq, ok := g.pool.GetSubQuota(feature.Quota); ok && sq.Used >= sq.Total {
			g.mu.Unlock()
			return &GatewayError{Err: ErrQuotaExceeded, RequestID: id, FeatureKey: req.FeatureKey, Cost: req.Cost}
		}
	}

	requires := req.Cost >= g.cfg.HighCostThreshold || (tracked && feature.AlwaysConfirm)

	g.meter.OnRequest(RequestEvent{
		RequestID:            id,
		FeatureKey:           req.FeatureKey,
		Cost:                 req.Cost,
		RequiresConfirmation: requires,
	})

	if !requires {
		g.state = stateExecuting
		g.mu.Unlock()

		err := g.executeAndSettle(ctx, id, req.Cost, req.FeatureKey, req.Action, false)

		g.mu.Lock()
		g.state = stateIdle
		g.mu.Unlock()
		return err
	}

	title := req.Title
	if title == "" {
		title = DefaultConfirmTitle
	}
	message := req.Message
	if message == "" {
		message = fmt.Sprintf("This action will use %d credits.", req.Cost)
	}

	g.pending = &pendingConfirmation{
		id:         id,
		cost:       req.Cost,
		featureKey: req.FeatureKey,
		title:      title,
		message:    message,
		action:     req.Action,
	}
	g.state = stateAwaitingConfirmation
	g.mu.Unlock()
	return nil
}

// Confirm executes the pending action. Valid only while a confirmation is
// awaiting; the pending state is cleared once the action settles,
// regardless of outcome.
func (g *Gateway) Confirm(ctx context.Context) error {
	g.mu.Lock()
	if g.state == stateExecuting {
		g.mu.Unlock()
		return ErrExecutionInFlight
	}
	if g.state != stateAwaitingConfirmation || g.pending == nil {
		g.mu.Unlock()
		return ErrNoPendingConfirmation
	}

	p := g.pending
	p.loading = true
	g.state = stateExecuting
	g.mu.Unlock()

	err := g.executeAndSettle(ctx, p.id, p.cost, p.featureKey, p.action, true)

	g.mu.Lock()
	g.pending = nil
	g.state = stateIdle
	g.mu.Unlock()
	return err
}

// Dismiss clears the pending confirmation without running its action or
// touching the pool. Invalid while an execution is in flight.
func (g *Gateway) Dismiss() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state == stateExecuting {
		return ErrExecutionInFlight
	}
	if g.state != stateAwaitingConfirmation || g.pending == nil {
		return ErrNoPendingConfirmation
	}

	g.pending = nil
	g.state = stateIdle
	return nil
}

// Prompt returns the snapshot the confirmation surface renders.
func (g *Gateway) Prompt() PromptView {
	g.mu.Lock()
	defer g.mu.Unlock()

	view := PromptView{CurrentBalance: g.pool.Balance()}
	if g.pending == nil {
		return view
	}

	view.IsOpen = true
	view.Cost = g.pending.cost
	view.Title = g.pending.title
	view.Message = g.pending.message
	view.IsLoading = g.pending.loading
	return view
}

// executeAndSettle runs the action and applies pool mutations only after
// the result is known. On failure the pool is untouched; there is nothing
// to roll back because nothing was applied before settlement.
func (g *Gateway) executeAndSettle(ctx context.Context, id string, cost int, featureKey string, action Action, confirmed bool) error {
	start := time.Now()
	err := action(ctx)
	duration := time.Since(start)

	if err != nil {
		g.notifier.Notify("The action could not be completed. You have not been charged.", SeverityError)
		g.meter.OnSettle(SettleEvent{
			RequestID:    id,
			FeatureKey:   featureKey,
			Cost:         cost,
			Confirmed:    confirmed,
			Success:      false,
			Duration:     duration,
			BalanceAfter: g.pool.Balance(),
			Error:        err,
		})
		return &GatewayError{Err: err, RequestID: id, FeatureKey: featureKey, Cost: cost}
	}

	if cost > 0 {
		g.pool.Debit(cost)
		// High-cost actions were confirmed explicitly, so no redundant
		// spend notification is emitted for them.
		if cost < g.cfg.HighCostThreshold {
			g.notifier.Notify(fmt.Sprintf("%d credits used.", cost), SeverityInfo)
		}
	}
	if feature, ok := g.cfg.feature(featureKey); ok && feature.Quota != "" {
		g.pool.IncrementSubQuotaUsage(feature.Quota)
	}

	g.meter.OnSettle(SettleEvent{
		RequestID:    id,
		FeatureKey:   featureKey,
		Cost:         cost,
		Confirmed:    confirmed,
		Success:      true,
		Duration:     duration,
		BalanceAfter: g.pool.Balance(),
	})
	return nil
}

// noopNotifier is an inline default to avoid import cycles with notify/.
type noopNotifier struct{}

func (n *noopNotifier) Notify(string, Severity) {}

// noopMeter is an inline default to avoid import cycles with meter/.
type noopMeter struct{}

func (m *noopMeter) OnRequest(RequestEvent) {}
func (m *noopMeter) OnSettle(SettleEvent)   {}
