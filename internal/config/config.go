package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Config centraliza la configuración del cliente.
type Config struct {
	APIBaseURL string        `env:"API_BASE_URL" envDefault:"http://localhost:8080"`
	APITimeout time.Duration `env:"API_TIMEOUT" envDefault:"15s"`

	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"file"`
	StoragePath    string `env:"STORAGE_PATH,expand" envDefault:"${HOME}/.carwash/credentials.json"`
	StoragePrefix  string `env:"STORAGE_PREFIX" envDefault:"@carwash_"`
	RedisAddr      string `env:"REDIS_ADDR"`
	RedisPassword  string `env:"REDIS_PASSWORD"`
	RedisDB        int    `env:"REDIS_DB" envDefault:"0"`

	GoogleMapsAPIKey    string        `env:"GOOGLE_MAPS_API_KEY"`
	DefaultLatitude     float64       `env:"DEFAULT_LATITUDE" envDefault:"28.6139"`
	DefaultLongitude    float64       `env:"DEFAULT_LONGITUDE" envDefault:"77.2090"`
	WatchInterval       time.Duration `env:"LOCATION_WATCH_INTERVAL" envDefault:"10s"`
	WatchDistanceMeters float64       `env:"LOCATION_WATCH_DISTANCE_METERS" envDefault:"50"`

	OTPResendSeconds int    `env:"OTP_RESEND_SECONDS" envDefault:"60"`
	CountryCode      string `env:"COUNTRY_CODE" envDefault:"+91"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// DevServerConfig agrupa la configuración del backend local de desarrollo.
type DevServerConfig struct {
	HTTPPort  string        `env:"DEV_HTTP_PORT" envDefault:"8080"`
	JWTSecret string        `env:"DEV_JWT_SECRET" envDefault:"carwash-dev-secret"`
	TokenTTL  time.Duration `env:"DEV_TOKEN_TTL" envDefault:"24h"`

	OTPTTL        time.Duration `env:"DEV_OTP_TTL" envDefault:"10m"`
	OTPRateWindow time.Duration `env:"DEV_OTP_RATE_WINDOW" envDefault:"10m"`
	OTPRateMax    int           `env:"DEV_OTP_RATE_MAX" envDefault:"5"`
	FixedOTP      string        `env:"DEV_FIXED_OTP"`
	SMSDisabled   bool          `env:"DEV_SMS_DISABLED" envDefault:"false"`
	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	LogLevel      string        `env:"LOG_LEVEL" envDefault:"info"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDevServerConfig carga la configuración del servidor de desarrollo.
func LoadDevServerConfig() (*DevServerConfig, error) {
	var cfg DevServerConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
