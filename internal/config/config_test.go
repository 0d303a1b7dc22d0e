package config

import (
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("HOME", "/home/tester")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.APIBaseURL != "http://localhost:8080" || cfg.APITimeout != 15*time.Second {
		t.Fatalf("unexpected api defaults: %s %s", cfg.APIBaseURL, cfg.APITimeout)
	}
	if cfg.StoragePath != "/home/tester/.carwash/credentials.json" {
		t.Fatalf("storage path not expanded: %s", cfg.StoragePath)
	}
	if cfg.StoragePrefix != "@carwash_" || cfg.StorageBackend != "file" {
		t.Fatalf("unexpected storage defaults: %+v", cfg)
	}
	if cfg.OTPResendSeconds != 60 || cfg.CountryCode != "+91" {
		t.Fatalf("unexpected otp defaults: %+v", cfg)
	}
	if cfg.DefaultLatitude != 28.6139 || cfg.DefaultLongitude != 77.2090 {
		t.Fatalf("unexpected default coordinates: %v,%v", cfg.DefaultLatitude, cfg.DefaultLongitude)
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://api.example.com")
	t.Setenv("API_TIMEOUT", "3s")
	t.Setenv("STORAGE_BACKEND", "redis")
	t.Setenv("LOCATION_WATCH_DISTANCE_METERS", "120")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.APIBaseURL != "https://api.example.com" || cfg.APITimeout != 3*time.Second {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.StorageBackend != "redis" || cfg.WatchDistanceMeters != 120 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}

func TestLoadConfig_StoragePathExpandsOverride(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	t.Setenv("CARWASH_DATA", "/var/lib/carwash")
	t.Setenv("STORAGE_PATH", "${CARWASH_DATA}/creds.json")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.StoragePath != "/var/lib/carwash/creds.json" {
		t.Fatalf("storage path not expanded: %s", cfg.StoragePath)
	}
}

func TestLoadConfig_InvalidDuration(t *testing.T) {
	t.Setenv("API_TIMEOUT", "soon")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestLoadDevServerConfig_Defaults(t *testing.T) {
	cfg, err := LoadDevServerConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.HTTPPort != "8080" || cfg.TokenTTL != 24*time.Hour || cfg.OTPRateMax != 5 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestNewLogger_UnknownLevelFallsBack(t *testing.T) {
	logger, err := NewLogger("chatty")
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	if !logger.Core().Enabled(0) {
		t.Fatalf("info level should be enabled")
	}
}
