package service

import (
	"context"
	"sync"
	"time"
)

const DefaultResendSeconds = 60

// ResendTimer es la cuenta regresiva que habilita el reenvio de OTP.
// Limita la accion del usuario, no reintenta llamadas de red.
type ResendTimer struct {
	mu        sync.Mutex
	duration  int
	remaining int
	err       error

	newTicker func(d time.Duration) (<-chan time.Time, func())
}

// NewResendTimer crea el timer ya armado con la duracion completa, igual que
// al entrar en la pantalla de verificacion tras enviar el OTP.
func NewResendTimer(seconds int) *ResendTimer {
	if seconds <= 0 {
		seconds = DefaultResendSeconds
	}
	return &ResendTimer{
		duration:  seconds,
		remaining: seconds,
		newTicker: func(d time.Duration) (<-chan time.Time, func()) {
			t := time.NewTicker(d)
			return t.C, t.Stop
		},
	}
}

// Reset reinicia la cuenta completa y limpia el error del intento anterior.
func (t *ResendTimer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.remaining = t.duration
	t.err = nil
}

// Tick descuenta un segundo sin bajar de cero y devuelve lo que queda.
func (t *ResendTimer) Tick() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.remaining > 0 {
		t.remaining--
	}
	return t.remaining
}

func (t *ResendTimer) RemainingSeconds() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining
}

func (t *ResendTimer) CanResend() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining == 0
}

func (t *ResendTimer) Duration() int {
	return t.duration
}

// SetErr asocia un error al intento actual.
func (t *ResendTimer) SetErr(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.err = err
}

func (t *ResendTimer) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// Run descuenta una vez por segundo hasta que ctx se cancele.
func (t *ResendTimer) Run(ctx context.Context) {
	ticks, stop := t.newTicker(time.Second)
	defer stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticks:
			t.Tick()
		}
	}
}
