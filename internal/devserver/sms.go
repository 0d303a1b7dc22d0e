package devserver

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Sender entrega el codigo OTP al telefono del usuario.
type Sender interface {
	SendOTP(ctx context.Context, phone, code string, expiresAt time.Time) error
}

// LogSender escribe el codigo en el log en lugar de mandar un SMS real.
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSender{logger: logger}
}

func (s *LogSender) SendOTP(_ context.Context, phone, code string, expiresAt time.Time) error {
	s.logger.Info("otp issued",
		zap.String("phone", phone),
		zap.String("code", code),
		zap.Time("expires_at", expiresAt),
	)
	return nil
}

type disabledSender struct {
	reason string
}

func NewDisabledSender(reason string) Sender {
	return &disabledSender{reason: reason}
}

func (s *disabledSender) SendOTP(context.Context, string, string, time.Time) error {
	if s.reason == "" {
		return errors.New("sms sender disabled")
	}
	return errors.New(s.reason)
}

// SenderFor devuelve el LogSender, o un Sender que siempre falla cuando la
// entrega esta apagada; en ese caso send-otp responde 503.
func SenderFor(logger *zap.Logger, disabled bool) Sender {
	if disabled {
		return NewDisabledSender("sms delivery disabled by DEV_SMS_DISABLED")
	}
	return NewLogSender(logger)
}
