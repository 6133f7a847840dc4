package notification

import (
	"context"
	"log/slog"
)

const (
	// KindTransferReceived indicates funds arrived from another account.
	KindTransferReceived = "transfer_received"
)

// Message describes a customer notification about a ledger event.
type Message struct {
	Kind          string
	AccountNumber string
	Body          string
}

// Notifier delivers notifications to downstream channels (SMS, push, ...).
type Notifier interface {
	Send(ctx context.Context, message Message) error
}

// LoggerNotifier is a stub implementation that writes notifications to the logger.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier stub.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the message to the structured logger.
func (n *LoggerNotifier) Send(_ context.Context, message Message) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.Info("notification", "kind", message.Kind, "account_number", message.AccountNumber, "body", message.Body)
	return nil
}
