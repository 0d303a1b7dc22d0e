package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"carwash-client/internal/domain"
	"carwash-client/internal/location"
)

const locationRequiredMessage = "Please use current location or tap on the map to set your location."

// Locator es la parte del proveedor de ubicacion que usa el alta de perfil.
type Locator interface {
	HasPermission(ctx context.Context) bool
	RequestPermission(ctx context.Context) bool
	GetCurrentLocation(ctx context.Context) (location.Fix, error)
	ReverseGeocode(ctx context.Context, latitude, longitude float64) *location.GeocodedAddress
}

type ProfileCreator interface {
	CreateProfile(ctx context.Context, in domain.ProfileInput) (domain.Profile, error)
}

// ProfileSession expone lo que el alta necesita de la maquina de sesion.
type ProfileSession interface {
	Snapshot() domain.Session
	RefreshProfile(ctx context.Context) (bool, error)
}

// ProfileForm es el estado editable del formulario.
type ProfileForm struct {
	Name       string
	Line1      string
	Line2      string
	City       string
	State      string
	PostalCode string
	Location   *location.Coordinates
}

// ProfileSetup conduce el alta de perfil: captura de ubicacion, validacion
// local y envio. El cambio de ruta lo decide la sesion tras RefreshProfile.
type ProfileSetup struct {
	mu   sync.Mutex
	form ProfileForm

	locator Locator
	api     ProfileCreator
	session ProfileSession
	logger  *zap.Logger
}

func NewProfileSetup(locator Locator, api ProfileCreator, session ProfileSession, logger *zap.Logger) *ProfileSetup {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileSetup{
		locator: locator,
		api:     api,
		session: session,
		logger:  logger,
	}
}

func (s *ProfileSetup) Form() ProfileForm {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.form
	if f.Location != nil {
		c := *f.Location
		f.Location = &c
	}
	return f
}

// Update aplica cambios manuales del usuario sobre el formulario.
func (s *ProfileSetup) Update(fn func(*ProfileForm)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.form)
}

// EnsureLocationPermission pide el permiso una vez si aun no esta concedido.
// Un rechazo no bloquea el alta: el usuario puede marcar el punto a mano.
func (s *ProfileSetup) EnsureLocationPermission(ctx context.Context) bool {
	if s.locator.HasPermission(ctx) {
		return true
	}
	return s.locator.RequestPermission(ctx)
}

// UseCurrentLocation obtiene la posicion y rellena la direccion. Si el
// geocoder no devuelve nada los campos quedan como estaban y las coordenadas
// se fijan igualmente.
func (s *ProfileSetup) UseCurrentLocation(ctx context.Context) error {
	fix, err := s.locator.GetCurrentLocation(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrLocationUnavailable) {
			return err
		}
		return &domain.LocationUnavailableError{Err: err}
	}
	s.applyLocation(ctx, fix.Latitude, fix.Longitude)
	return nil
}

// PickOnMap fija las coordenadas elegidas por el usuario e intenta
// completar la direccion.
func (s *ProfileSetup) PickOnMap(ctx context.Context, latitude, longitude float64) {
	s.applyLocation(ctx, latitude, longitude)
}

func (s *ProfileSetup) applyLocation(ctx context.Context, latitude, longitude float64) {
	s.mu.Lock()
	s.form.Location = &location.Coordinates{Latitude: latitude, Longitude: longitude}
	s.mu.Unlock()

	addr := s.locator.ReverseGeocode(ctx, latitude, longitude)
	if addr == nil {
		s.logger.Debug("no address for coordinates, keeping manual fields",
			zap.Float64("latitude", latitude), zap.Float64("longitude", longitude))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.form.Line1 = addr.FormattedAddress
	s.form.City = addr.Components.City
	s.form.State = addr.Components.State
	s.form.PostalCode = addr.Components.PostalCode
}

// Validate devuelve nil si el formulario se puede enviar. Sin coordenadas
// solo se informa ese error, igual que la alerta de la pantalla original.
func (s *ProfileSetup) Validate() error {
	f := s.Form()
	if f.Location == nil {
		return domain.ValidationErrors{{Field: "location", Message: locationRequiredMessage}}
	}

	var errs domain.ValidationErrors
	name := strings.TrimSpace(f.Name)
	switch {
	case name == "":
		errs = append(errs, &domain.ValidationError{Field: "name", Message: "Name is required"})
	case len([]rune(name)) < 2:
		errs = append(errs, &domain.ValidationError{Field: "name", Message: "Name must be at least 2 characters"})
	}
	if strings.TrimSpace(f.Line1) == "" {
		errs = append(errs, &domain.ValidationError{Field: "address", Message: "Address is required"})
	}
	if strings.TrimSpace(f.City) == "" {
		errs = append(errs, &domain.ValidationError{Field: "city", Message: "City is required"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Submit crea el perfil y refresca la sesion. Devuelve si la sesion quedo
// con perfil completo.
func (s *ProfileSetup) Submit(ctx context.Context) (bool, error) {
	if err := s.Validate(); err != nil {
		return false, err
	}
	f := s.Form()
	in := domain.ProfileInput{
		Name:        strings.TrimSpace(f.Name),
		PhoneNumber: s.session.Snapshot().PhoneNumber,
		Address: domain.Address{
			Line1:      strings.TrimSpace(f.Line1),
			Line2:      strings.TrimSpace(f.Line2),
			City:       strings.TrimSpace(f.City),
			State:      strings.TrimSpace(f.State),
			PostalCode: strings.TrimSpace(f.PostalCode),
			Latitude:   domain.Float64(f.Location.Latitude),
			Longitude:  domain.Float64(f.Location.Longitude),
		},
	}

	if _, err := s.api.CreateProfile(ctx, in); err != nil {
		s.logger.Warn("create profile failed", zap.Error(err))
		return false, err
	}
	hasProfile, err := s.session.RefreshProfile(ctx)
	if err != nil {
		return false, err
	}
	s.logger.Info("profile created", zap.Bool("complete", hasProfile))
	return hasProfile, nil
}
