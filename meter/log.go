package meter

import (
	"log/slog"

	"github.com/everlume/spendgate"
)

// LogMeter logs gateway events using slog.
type LogMeter struct {
	Logger *slog.Logger
}

var _ spendgate.Meter = (*LogMeter)(nil)

// NewLogMeter creates a LogMeter with the given logger.
// If logger is nil, slog.Default() is used.
func NewLogMeter(logger *slog.Logger) *LogMeter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMeter{Logger: logger}
}

func (m *LogMeter) OnRequest(e spendgate.RequestEvent) {
	m.Logger.Info("request",
		"request_id", e.RequestID,
		"feature", e.FeatureKey,
		"cost", e.Cost,
		"requires_confirmation", e.RequiresConfirmation,
	)
}

func (m *LogMeter) OnSettle(e spendgate.SettleEvent) {
	if e.Success {
		m.Logger.Info("settle",
			"request_id", e.RequestID,
			"feature", e.FeatureKey,
			"cost", e.Cost,
			"confirmed", e.Confirmed,
			"duration_ms", e.Duration.Milliseconds(),
			"balance_after", e.BalanceAfter,
		)
	} else {
		m.Logger.Warn("settle_error",
			"request_id", e.RequestID,
			"feature", e.FeatureKey,
			"cost", e.Cost,
			"confirmed", e.Confirmed,
			"duration_ms", e.Duration.Milliseconds(),
			"error", e.Error,
		)
	}
}
