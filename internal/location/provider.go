package location

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"carwash-client/internal/domain"
)

const (
	DefaultWatchInterval = 10 * time.Second
	DefaultWatchDistance = 50.0
)

// ErrNoFix lo devuelve un Positioner que no puede producir una posición.
var ErrNoFix = errors.New("no position fix available")

type Fix struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy"`
}

type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Place es un candidato crudo devuelto por el geocoder.
type Place struct {
	Street       string
	StreetNumber string
	City         string
	Subregion    string
	Region       string
	Country      string
	PostalCode   string
}

type AddressComponents struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	Country    string `json:"country"`
	PostalCode string `json:"postalCode"`
}

type GeocodedAddress struct {
	FormattedAddress string            `json:"formattedAddress"`
	Components       AddressComponents `json:"addressComponents"`
}

// Provider agrupa geolocalizacion y geocoding.
type Provider interface {
	HasPermission(ctx context.Context) bool
	RequestPermission(ctx context.Context) bool
	GetCurrentLocation(ctx context.Context) (Fix, error)
	ReverseGeocode(ctx context.Context, latitude, longitude float64) *GeocodedAddress
	Geocode(ctx context.Context, address string) *Coordinates
	WatchLocation(ctx context.Context, callback func(Fix)) (*Subscription, error)
}

type Positioner interface {
	CurrentPosition(ctx context.Context) (Fix, error)
}

type Geocoder interface {
	Reverse(ctx context.Context, latitude, longitude float64) ([]Place, error)
	Forward(ctx context.Context, address string) ([]Coordinates, error)
}

// Prompter pregunta al usuario; la respuesta negativa no es un error.
type Prompter interface {
	Confirm(ctx context.Context, title, message string) bool
}

type PermissionStore interface {
	Granted(ctx context.Context) bool
	SetGranted(ctx context.Context, granted bool)
}

type ticker func(d time.Duration) (<-chan time.Time, func())

func realTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

// Service implementa Provider sobre un Positioner y un Geocoder.
type Service struct {
	positioner  Positioner
	geocoder    Geocoder
	permissions PermissionStore
	prompter    Prompter
	logger      *zap.Logger

	interval  time.Duration
	distance  float64
	newTicker ticker
}

type Option func(*Service)

// WithWatchThresholds ajusta la cadencia temporal y la distancia minima del watch.
func WithWatchThresholds(interval time.Duration, meters float64) Option {
	return func(s *Service) {
		if interval > 0 {
			s.interval = interval
		}
		if meters >= 0 {
			s.distance = meters
		}
	}
}

func NewService(positioner Positioner, geocoder Geocoder, permissions PermissionStore, prompter Prompter, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		positioner:  positioner,
		geocoder:    geocoder,
		permissions: permissions,
		prompter:    prompter,
		logger:      logger,
		interval:    DefaultWatchInterval,
		distance:    DefaultWatchDistance,
		newTicker:   realTicker,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) HasPermission(ctx context.Context) bool {
	if s.permissions == nil {
		return false
	}
	return s.permissions.Granted(ctx)
}

func (s *Service) RequestPermission(ctx context.Context) bool {
	if s.prompter == nil {
		return false
	}
	granted := s.prompter.Confirm(ctx, "Location Access",
		"This app needs access to your location to provide better service.")
	if s.permissions != nil {
		s.permissions.SetGranted(ctx, granted)
	}
	if !granted {
		s.logger.Info("location permission denied")
	}
	return granted
}

func (s *Service) ensurePermission(ctx context.Context) error {
	if s.HasPermission(ctx) {
		return nil
	}
	if s.RequestPermission(ctx) {
		return nil
	}
	return &domain.LocationUnavailableError{Reason: "Location permission denied"}
}

func (s *Service) GetCurrentLocation(ctx context.Context) (Fix, error) {
	if err := s.ensurePermission(ctx); err != nil {
		return Fix{}, err
	}
	if s.positioner == nil {
		return Fix{}, &domain.LocationUnavailableError{Err: ErrNoFix}
	}
	fix, err := s.positioner.CurrentPosition(ctx)
	if err != nil {
		s.logger.Warn("get location failed", zap.Error(err))
		return Fix{}, &domain.LocationUnavailableError{Err: err}
	}
	return fix, nil
}

// ReverseGeocode devuelve nil cuando no hay candidatos o el geocoder falla.
// nil no es un error: el usuario completa la dirección a mano.
func (s *Service) ReverseGeocode(ctx context.Context, latitude, longitude float64) *GeocodedAddress {
	if s.geocoder == nil {
		return nil
	}
	places, err := s.geocoder.Reverse(ctx, latitude, longitude)
	if err != nil {
		s.logger.Warn("reverse geocode failed", zap.Error(err))
		return nil
	}
	if len(places) == 0 {
		return nil
	}
	p := places[0]
	city := p.City
	if city == "" {
		city = p.Subregion
	}
	return &GeocodedAddress{
		FormattedAddress: FormatAddress(p),
		Components: AddressComponents{
			Street:     p.Street,
			City:       city,
			State:      p.Region,
			Country:    p.Country,
			PostalCode: p.PostalCode,
		},
	}
}

func (s *Service) Geocode(ctx context.Context, address string) *Coordinates {
	if s.geocoder == nil || strings.TrimSpace(address) == "" {
		return nil
	}
	results, err := s.geocoder.Forward(ctx, address)
	if err != nil {
		s.logger.Warn("geocode failed", zap.Error(err))
		return nil
	}
	if len(results) == 0 {
		return nil
	}
	c := results[0]
	return &c
}

// FormatAddress une las partes no vacias con ", ".
func FormatAddress(p Place) string {
	parts := make([]string, 0, 6)
	for _, v := range []string{p.Street, p.StreetNumber, p.City, p.Region, p.PostalCode, p.Country} {
		if strings.TrimSpace(v) != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, ", ")
}

// Subscription representa un watch activo. El dueño debe llamar Cancel al salir.
type Subscription struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Cancel detiene el sondeo. Es idempotente y no bloquea; Done se cierra
// cuando el goroutine de sondeo termina.
func (sub *Subscription) Cancel() {
	sub.once.Do(sub.cancel)
}

func (sub *Subscription) Done() <-chan struct{} {
	return sub.done
}

// WatchLocation sondea la posicion cada interval y entrega al callback los
// fixes que se alejan al menos distance metros del ultimo entregado.
func (s *Service) WatchLocation(ctx context.Context, callback func(Fix)) (*Subscription, error) {
	if callback == nil {
		return nil, errors.New("watch callback is required")
	}
	if err := s.ensurePermission(ctx); err != nil {
		return nil, err
	}
	if s.positioner == nil {
		return nil, &domain.LocationUnavailableError{Err: ErrNoFix}
	}

	watchCtx, cancel := context.WithCancel(ctx)
	sub := &Subscription{cancel: cancel, done: make(chan struct{})}
	ticks, stop := s.newTicker(s.interval)

	go func() {
		defer close(sub.done)
		defer stop()

		var last *Fix
		poll := func() {
			fix, err := s.positioner.CurrentPosition(watchCtx)
			if err != nil {
				s.logger.Debug("watch poll failed", zap.Error(err))
				return
			}
			if last != nil && DistanceMeters(*last, fix) < s.distance {
				return
			}
			if watchCtx.Err() != nil {
				return
			}
			last = &fix
			callback(fix)
		}

		poll()
		for {
			select {
			case <-watchCtx.Done():
				return
			case <-ticks:
				poll()
			}
		}
	}()

	return sub, nil
}

const earthRadiusMeters = 6371000.0

// DistanceMeters es la distancia haversine entre dos fixes.
func DistanceMeters(a, b Fix) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(h))
}
