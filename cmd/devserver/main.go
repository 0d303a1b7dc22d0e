package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"carwash-client/internal/config"
	"carwash-client/internal/devserver"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadDevServerConfig()
	if err != nil {
		panic(err)
	}

	logger, err := config.NewLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	var limiter devserver.OTPRateLimiter
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, using in-memory rate limiter", zap.Error(err))
		} else {
			limiter = devserver.NewRedisRateLimiter(redisClient, cfg.OTPRateWindow, cfg.OTPRateMax)
		}
		cancel()
	}
	if limiter == nil {
		limiter = devserver.NewMemoryRateLimiter(cfg.OTPRateWindow, cfg.OTPRateMax)
	}

	store := devserver.NewMemoryStore()
	tokens := devserver.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	otps := devserver.NewOTPService(logger, store, devserver.SenderFor(logger, cfg.SMSDisabled), limiter, cfg.OTPTTL).
		WithFixedCode(cfg.FixedOTP)
	router := devserver.New(logger, tokens, otps, store)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting dev server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
