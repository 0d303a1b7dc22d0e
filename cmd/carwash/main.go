package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"carwash-client/internal/api"
	"carwash-client/internal/config"
	"carwash-client/internal/domain"
	"carwash-client/internal/location"
	"carwash-client/internal/service"
	"carwash-client/internal/storage"
)

type app struct {
	cfg      *config.Config
	reader   *bufio.Reader
	logger   *zap.Logger
	creds    *storage.Credentials
	client   *api.Client
	manager  *service.SessionManager
	locator  *location.Service
	bookings *service.BookingService
}

func main() {
	ctx := context.Background()
	reader := bufio.NewReader(os.Stdin)

	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := config.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("abrir almacen: %v", err)
	}
	defer closeStore()

	creds := storage.NewCredentials(store, cfg.StoragePrefix, logger)
	client := api.NewClient(cfg.APIBaseURL, cfg.APITimeout, creds, logger)
	manager := service.NewSessionManager(client, creds, logger)
	stopWatching := manager.Subscribe(func(s domain.Session) {
		logger.Info("session transition",
			zap.String("state", string(s.State())),
			zap.String("route", string(service.SelectRoute(s))),
		)
	})
	defer stopWatching()

	var positioner location.Positioner = location.NewStaticPositioner(cfg.DefaultLatitude, cfg.DefaultLongitude)
	var geocoder location.Geocoder
	if cfg.GoogleMapsAPIKey != "" {
		gm, err := location.NewGoogleMaps(cfg.GoogleMapsAPIKey)
		if err != nil {
			logger.Warn("google maps init failed, using static position", zap.Error(err))
		} else {
			positioner = gm
			geocoder = gm
		}
	}
	locator := location.NewService(
		positioner,
		geocoder,
		location.NewStoredPermissions(store, cfg.StoragePrefix, logger),
		&stdinPrompter{reader: reader},
		logger,
		location.WithWatchThresholds(cfg.WatchInterval, cfg.WatchDistanceMeters),
	)

	a := &app{
		cfg:      cfg,
		reader:   reader,
		logger:   logger,
		creds:    creds,
		client:   client,
		manager:  manager,
		locator:  locator,
		bookings: service.NewBookingService(client, manager, logger),
	}

	fmt.Println("Loading...")
	manager.CheckAuthStatus(ctx)

	for {
		switch service.SelectRoute(manager.Snapshot()) {
		case service.RouteSplash:
			manager.CheckAuthStatus(ctx)
		case service.RouteAuth:
			a.authScreen(ctx)
		case service.RouteProfileSetup:
			a.profileSetupScreen(ctx)
		case service.RouteMain:
			a.mainMenu(ctx)
		}
	}
}

// openStore elige el backend de credenciales segun STORAGE_BACKEND.
func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (storage.Store, func(), error) {
	noop := func() {}
	switch strings.ToLower(cfg.StorageBackend) {
	case "memory":
		return storage.NewMemoryStore(), noop, nil
	case "redis":
		if cfg.RedisAddr == "" {
			return nil, noop, fmt.Errorf("REDIS_ADDR is required for redis storage")
		}
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := client.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, credentials will not persist", zap.Error(err))
		}
		return storage.NewRedisStore(client, storage.RedisNamespace), func() { _ = client.Close() }, nil
	default:
		fs, err := storage.NewFileStore(cfg.StoragePath)
		if err != nil {
			return nil, noop, err
		}
		return fs, noop, nil
	}
}

// stdinPrompter resuelve las confirmaciones del proveedor de ubicacion.
type stdinPrompter struct {
	reader *bufio.Reader
}

func (p *stdinPrompter) Confirm(_ context.Context, title, message string) bool {
	fmt.Printf("\n%s\n%s\n[Y] Enable  [N] Skip: ", title, message)
	line, _ := p.reader.ReadString('\n')
	return strings.EqualFold(strings.TrimSpace(line), "y")
}

func (a *app) readLine(prompt string) string {
	fmt.Print(prompt)
	line, err := a.reader.ReadString('\n')
	if err != nil && line == "" {
		fmt.Println()
		os.Exit(0)
	}
	return strings.TrimSpace(line)
}

// printError muestra un unico mensaje por fallo, con el detalle por campo si
// es de validacion.
func printError(err error) {
	switch {
	case domain.IsValidation(err):
		var errs domain.ValidationErrors
		if errors.As(err, &errs) {
			for _, e := range errs {
				fmt.Printf("  - %s\n", e.Message)
			}
			return
		}
		var ve *domain.ValidationError
		errors.As(err, &ve)
		fmt.Printf("  - %s\n", ve.Message)
	case domain.IsTransport(err):
		fmt.Println("Network error. Please check your connection.")
	default:
		fmt.Printf("Error: %v\n", err)
	}
}
