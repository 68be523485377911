package notify

import "github.com/everlume/spendgate"

// NoopNotifier is a notifier that does nothing.
type NoopNotifier struct{}

var _ spendgate.Notifier = (*NoopNotifier)(nil)

func (n *NoopNotifier) Notify(string, spendgate.Severity) {}
