package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"carwash-client/internal/domain"
)

var (
	ErrNoChallenge     = errors.New("no otp challenge in progress")
	ErrResendCooldown  = errors.New("otp resend not available yet")
	errSendOTPRejected = "Failed to send OTP"
)

// OTPAPI cubre el envio y reenvio del codigo.
type OTPAPI interface {
	SendOTP(ctx context.Context, phone string) (domain.MessageResponse, error)
	ResendOTP(ctx context.Context, phone string) (domain.MessageResponse, error)
}

// Authenticator es la operacion de login de la maquina de sesion.
type Authenticator interface {
	Login(ctx context.Context, phone, code string) LoginResult
}

// OTPFlow coordina el reto OTP en curso: envio, cooldown de reenvio y
// verificacion.
type OTPFlow struct {
	mu        sync.Mutex
	challenge *domain.OtpChallenge

	api    OTPAPI
	auth   Authenticator
	timer  *ResendTimer
	logger *zap.Logger
	now    func() time.Time
}

func NewOTPFlow(api OTPAPI, auth Authenticator, timer *ResendTimer, logger *zap.Logger) *OTPFlow {
	if timer == nil {
		timer = NewResendTimer(DefaultResendSeconds)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OTPFlow{
		api:    api,
		auth:   auth,
		timer:  timer,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (f *OTPFlow) Timer() *ResendTimer {
	return f.timer
}

// Challenge devuelve una copia del reto activo o nil.
func (f *OTPFlow) Challenge() *domain.OtpChallenge {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.challenge == nil {
		return nil
	}
	c := *f.challenge
	return &c
}

// Start valida el telefono localmente, envia el OTP y arma el cooldown.
func (f *OTPFlow) Start(ctx context.Context, rawPhone string) error {
	phone := CleanPhoneNumber(rawPhone)
	if !ValidatePhoneNumber(phone) {
		return &domain.ValidationError{Field: "phone", Message: "Please enter a valid 10-digit phone number"}
	}

	res, err := f.api.SendOTP(ctx, phone)
	if err != nil {
		return err
	}
	if !res.Success {
		msg := res.Message
		if msg == "" {
			msg = errSendOTPRejected
		}
		return &domain.RejectedError{Message: msg}
	}

	f.mu.Lock()
	f.challenge = &domain.OtpChallenge{PhoneNumber: phone, SentAt: f.now()}
	f.mu.Unlock()
	f.timer.Reset()
	f.logger.Info("otp sent", zap.String("phone", FormatPhoneNumber(phone, "")))
	return nil
}

// Resend pide un nuevo codigo si el cooldown termino.
func (f *OTPFlow) Resend(ctx context.Context) error {
	f.mu.Lock()
	challenge := f.challenge
	f.mu.Unlock()
	if challenge == nil {
		return ErrNoChallenge
	}
	if !f.timer.CanResend() {
		return ErrResendCooldown
	}

	res, err := f.api.ResendOTP(ctx, challenge.PhoneNumber)
	if err != nil {
		f.timer.SetErr(err)
		return err
	}
	if !res.Success {
		msg := res.Message
		if msg == "" {
			msg = errSendOTPRejected
		}
		err := &domain.RejectedError{Message: msg}
		f.timer.SetErr(err)
		return err
	}

	f.mu.Lock()
	if f.challenge != nil {
		f.challenge.SentAt = f.now()
	}
	f.mu.Unlock()
	f.timer.Reset()
	return nil
}

// Verify valida el formato del codigo antes de tocar la red y delega el
// login. Un login correcto destruye el reto.
func (f *OTPFlow) Verify(ctx context.Context, code string) (LoginResult, error) {
	f.mu.Lock()
	challenge := f.challenge
	f.mu.Unlock()
	if challenge == nil {
		return LoginResult{}, ErrNoChallenge
	}
	if !ValidateOtp(code) {
		return LoginResult{}, &domain.ValidationError{Field: "otp", Message: "Please enter a valid 6-digit OTP"}
	}

	res := f.auth.Login(ctx, challenge.PhoneNumber, code)
	if !res.Success {
		msg := res.Message
		if msg == "" {
			msg = "Invalid OTP. Please try again."
			res.Message = msg
		}
		f.timer.SetErr(errors.New(msg))
		return res, nil
	}

	f.Abandon()
	return res, nil
}

// Abandon descarta el reto, por ejemplo al salir de la pantalla.
func (f *OTPFlow) Abandon() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.challenge = nil
}
