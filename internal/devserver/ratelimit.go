package devserver

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"carwash-client/internal/service"
)

const (
	defaultRateWindow = time.Minute
	redisRatePrefix   = "carwash:otp:rl:"
	redisRateTimeout  = 500 * time.Millisecond
)

// OTPRateLimiter limita los envios de OTP por telefono dentro de una ventana.
type OTPRateLimiter interface {
	Allow(ctx context.Context, phone string) bool
}

// ratePolicy es la ventana y el cupo comunes a ambos limitadores.
type ratePolicy struct {
	window time.Duration
	max    int
}

func newRatePolicy(window time.Duration, max int) ratePolicy {
	if window < time.Second {
		window = defaultRateWindow
	}
	if max <= 0 {
		max = 1
	}
	return ratePolicy{window: window, max: max}
}

// ttlSeconds redondea la ventana hacia arriba para EXPIRE.
func (p ratePolicy) ttlSeconds() int {
	return int(math.Ceil(p.window.Seconds()))
}

// rateKey reduce el telefono a sus digitos; "98765-43210" y "9876543210"
// comparten cupo.
func rateKey(phone string) string {
	return service.CleanPhoneNumber(phone)
}

type memoryRateLimiter struct {
	ratePolicy
	mu   sync.Mutex
	hits map[string][]time.Time
	now  func() time.Time
}

// NewMemoryRateLimiter crea un limitador de ventana deslizante en memoria.
func NewMemoryRateLimiter(window time.Duration, max int) OTPRateLimiter {
	return &memoryRateLimiter{
		ratePolicy: newRatePolicy(window, max),
		hits:       make(map[string][]time.Time),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (l *memoryRateLimiter) Allow(_ context.Context, phone string) bool {
	key := rateKey(phone)
	if key == "" {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)
	kept := l.hits[key][:0]
	for _, ts := range l.hits[key] {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) >= l.max {
		l.hits[key] = kept
		return false
	}
	l.hits[key] = append(kept, now)
	return true
}

// El primer INCR de la ventana fija la expiracion; el contador muere con ella.
const redisOTPAllowScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return current
`

type redisEvaler interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// redisRateLimiter es una ventana fija compartida entre instancias del
// backend. Cualquier fallo de Redis deja pasar la peticion.
type redisRateLimiter struct {
	ratePolicy
	client redisEvaler
}

func NewRedisRateLimiter(client *redis.Client, window time.Duration, max int) OTPRateLimiter {
	if client == nil {
		return nil
	}
	return &redisRateLimiter{ratePolicy: newRatePolicy(window, max), client: client}
}

func (l *redisRateLimiter) Allow(ctx context.Context, phone string) bool {
	if l == nil || l.client == nil {
		return true
	}
	key := rateKey(phone)
	if key == "" {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, redisRateTimeout)
	defer cancel()

	count, err := l.client.Eval(ctx, redisOTPAllowScript, []string{redisRatePrefix + key}, l.ttlSeconds()).Int()
	if err != nil {
		return true
	}
	return count <= l.max
}
