package spendgate

// Severity classifies a user-facing notification.
type Severity int

const (
	SeverityInfo Severity = iota
	SeveritySuccess
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeveritySuccess:
		return "success"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Notifier delivers user-facing notifications. Calls are fire-and-forget;
// the gateway never consumes a return value.
type Notifier interface {
	Notify(message string, severity Severity)
}
