package notify

import (
	"log/slog"

	"github.com/everlume/spendgate"
)

// LogNotifier writes user-facing notifications to slog.
type LogNotifier struct {
	Logger *slog.Logger
}

var _ spendgate.Notifier = (*LogNotifier)(nil)

// NewLogNotifier creates a LogNotifier with the given logger.
// If logger is nil, slog.Default() is used.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{Logger: logger}
}

func (n *LogNotifier) Notify(message string, severity spendgate.Severity) {
	switch severity {
	case spendgate.SeverityError:
		n.Logger.Error("notification", "message", message, "severity", severity.String())
	default:
		n.Logger.Info("notification", "message", message, "severity", severity.String())
	}
}
