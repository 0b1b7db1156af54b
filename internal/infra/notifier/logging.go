package notifier

import (
	"context"

	"go.uber.org/zap"

	"github.com/engsiam/phone-email-auth/internal/core/port"
	"github.com/engsiam/phone-email-auth/internal/infra/logger"
)

// LoggingNotifier writes notifications to the log instead of delivering them.
// Used when no Kafka brokers are configured, typically in local development.
type LoggingNotifier struct {
	logger *zap.Logger
}

// NewLoggingNotifier constructs a log-only notification gateway.
func NewLoggingNotifier(log *zap.Logger) *LoggingNotifier {
	return &LoggingNotifier{logger: log}
}

// SendSMS logs the SMS instead of sending it.
func (n *LoggingNotifier) SendSMS(ctx context.Context, phone, body string) error {
	n.logger.Info("sms notification (logging mode)",
		zap.String("phone", logger.MaskPhone(phone)),
		zap.String("body", body),
	)
	return nil
}

// SendEmail logs the email instead of sending it.
func (n *LoggingNotifier) SendEmail(ctx context.Context, address, body string) error {
	n.logger.Info("email notification (logging mode)",
		zap.String("email", logger.MaskEmail(address)),
		zap.String("body", body),
	)
	return nil
}

var _ port.Notifier = (*LoggingNotifier)(nil)
