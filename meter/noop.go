package meter

import "github.com/everlume/spendgate"

// NoopMeter is a meter that does nothing.
type NoopMeter struct{}

var _ spendgate.Meter = (*NoopMeter)(nil)

func (m *NoopMeter) OnRequest(spendgate.RequestEvent) {}
func (m *NoopMeter) OnSettle(spendgate.SettleEvent)   {}
