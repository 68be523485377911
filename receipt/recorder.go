package receipt

import (
	"sync"
	"time"

	"github.com/everlume/spendgate"
)

// Recorder is a spendgate.Meter that signs a receipt for every settlement.
// Receipts accumulate in memory until drained by the reconciliation path.
type Recorder struct {
	signer *Signer

	mu       sync.Mutex
	receipts []SignedReceipt
}

var _ spendgate.Meter = (*Recorder)(nil)

// NewRecorder creates a Recorder signing with the given signer.
func NewRecorder(signer *Signer) *Recorder {
	return &Recorder{signer: signer}
}

func (r *Recorder) OnRequest(spendgate.RequestEvent) {}

func (r *Recorder) OnSettle(e spendgate.SettleEvent) {
	outcome := OutcomeSuccess
	if !e.Success {
		outcome = OutcomeFailure
	}

	signed := r.signer.Sign(Receipt{
		RequestID:    e.RequestID,
		FeatureKey:   e.FeatureKey,
		Cost:         e.Cost,
		Outcome:      outcome,
		BalanceAfter: e.BalanceAfter,
		IssuedAt:     time.Now().UTC(),
	})

	r.mu.Lock()
	r.receipts = append(r.receipts, signed)
	r.mu.Unlock()
}

// Drain returns all accumulated receipts and clears the buffer.
func (r *Recorder) Drain() []SignedReceipt {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := r.receipts
	r.receipts = nil
	return out
}
