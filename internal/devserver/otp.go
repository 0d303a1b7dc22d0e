package devserver

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"carwash-client/internal/service"
)

var (
	ErrInvalidPhone    = errors.New("invalid phone number")
	ErrOTPNotRequested = errors.New("otp not requested")
	ErrOTPExpired      = errors.New("otp expired")
	ErrOTPInvalid      = errors.New("otp invalid")
	ErrRateLimited     = errors.New("rate limited")
	ErrSendFailure     = errors.New("otp delivery failed")
)

const defaultOTPTTL = 10 * time.Minute

// OTPService emite y verifica codigos. Solo se guarda el hash bcrypt.
type OTPService struct {
	logger  *zap.Logger
	store   *MemoryStore
	sender  Sender
	limiter OTPRateLimiter
	ttl     time.Duration
	now     func() time.Time

	// fixedCode evita leer el log en pruebas manuales.
	fixedCode string
}

func NewOTPService(logger *zap.Logger, store *MemoryStore, sender Sender, limiter OTPRateLimiter, ttl time.Duration) *OTPService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = defaultOTPTTL
	}
	if limiter == nil {
		limiter = NewMemoryRateLimiter(ttl, 5)
	}
	return &OTPService{
		logger:  logger,
		store:   store,
		sender:  sender,
		limiter: limiter,
		ttl:     ttl,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// WithFixedCode hace que todos los OTP emitidos valgan code.
func (s *OTPService) WithFixedCode(code string) *OTPService {
	if service.ValidateOtp(code) {
		s.fixedCode = code
	}
	return s
}

// Request genera un codigo nuevo para phone, reemplazando cualquier anterior.
func (s *OTPService) Request(ctx context.Context, phone string) error {
	phone = service.CleanPhoneNumber(phone)
	if !service.ValidatePhoneNumber(phone) {
		return ErrInvalidPhone
	}
	if !s.limiter.Allow(ctx, phone) {
		return ErrRateLimited
	}

	code, err := s.generateCode()
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	expiresAt := s.now().Add(s.ttl)
	s.store.SaveOTP(phone, string(hash), expiresAt)

	if s.sender == nil {
		return ErrSendFailure
	}
	if err := s.sender.SendOTP(ctx, phone, code, expiresAt); err != nil {
		s.logger.Warn("send otp failed", zap.Error(err), zap.String("phone", phone))
		return ErrSendFailure
	}
	return nil
}

// Verify consume el codigo si es correcto. Un codigo erroneo no lo invalida.
func (s *OTPService) Verify(_ context.Context, phone, code string) error {
	phone = service.CleanPhoneNumber(phone)
	if !service.ValidatePhoneNumber(phone) {
		return ErrInvalidPhone
	}
	if !service.ValidateOtp(code) {
		return ErrOTPInvalid
	}
	hash, expiresAt, ok := s.store.OTP(phone)
	if !ok {
		return ErrOTPNotRequested
	}
	if s.now().After(expiresAt) {
		s.store.DeleteOTP(phone)
		return ErrOTPExpired
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)); err != nil {
		return ErrOTPInvalid
	}
	s.store.DeleteOTP(phone)
	return nil
}

func (s *OTPService) generateCode() (string, error) {
	if s.fixedCode != "" {
		return s.fixedCode, nil
	}
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
