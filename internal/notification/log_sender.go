package notification

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/parking-pilot/internal/config"
)

// LogSender writes outgoing messages to the log instead of delivering them.
// Message bodies are not logged; they carry one-time codes.
type LogSender struct {
	logger *zap.Logger
	cfg    config.NotificationConfig
}

// NewLogSender creates the stub sender.
func NewLogSender(logger *zap.Logger, cfg config.NotificationConfig) *LogSender {
	return &LogSender{logger: logger, cfg: cfg}
}

// SendEmail logs the email envelope.
func (s *LogSender) SendEmail(_ context.Context, to, subject, _ string) error {
	s.logger.Info("email dispatched",
		zap.String("from", s.cfg.EmailFrom),
		zap.String("to", to),
		zap.String("subject", subject))
	return nil
}

// SendSMS logs the SMS envelope.
func (s *LogSender) SendSMS(_ context.Context, to, _ string) error {
	s.logger.Info("sms dispatched",
		zap.String("from", s.cfg.SMSFrom),
		zap.String("to", to))
	return nil
}
