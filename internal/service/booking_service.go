package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"carwash-client/internal/domain"
)

// ErrNotCancellable se devuelve al intentar cancelar una reserva que ya no
// esta pendiente.
var ErrNotCancellable = errors.New("booking can no longer be cancelled")

type serviceOffer struct {
	title string
	price float64
}

var serviceCatalog = map[domain.ServiceType]serviceOffer{
	domain.ServiceBasicWash:     {title: "Basic Wash", price: 299},
	domain.ServicePremiumWash:   {title: "Premium Wash", price: 499},
	domain.ServiceInteriorClean: {title: "Interior Clean", price: 399},
	domain.ServiceFullService:   {title: "Full Service", price: 799},
}

// ServicePrice devuelve el precio de lista en rupias.
func ServicePrice(st domain.ServiceType) (float64, bool) {
	o, ok := serviceCatalog[st]
	return o.price, ok
}

func ServiceTitle(st domain.ServiceType) string {
	if o, ok := serviceCatalog[st]; ok {
		return o.title
	}
	return strings.ReplaceAll(string(st), "_", " ")
}

type BookingAPI interface {
	ListBookings(ctx context.Context) ([]domain.Booking, error)
	CreateBooking(ctx context.Context, in domain.BookingInput) (domain.Booking, error)
	GetBooking(ctx context.Context, id string) (domain.Booking, error)
	ListBookingsByStatus(ctx context.Context, status domain.BookingStatus) ([]domain.Booking, error)
	CancelBooking(ctx context.Context, id string) (domain.MessageResponse, error)
	UpdateBookingStatus(ctx context.Context, id string, status domain.BookingStatus) (domain.Booking, error)
}

type SessionReader interface {
	Snapshot() domain.Session
}

// BookingRequest es lo que elige el usuario; direccion, precio y nombre salen
// del perfil y del catalogo.
type BookingRequest struct {
	ServiceType         domain.ServiceType
	ScheduledAt         *time.Time
	VehicleType         string
	VehicleNumber       string
	SpecialInstructions string
}

type BookingService struct {
	api     BookingAPI
	session SessionReader
	logger  *zap.Logger
	now     func() time.Time
}

func NewBookingService(api BookingAPI, session SessionReader, logger *zap.Logger) *BookingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookingService{
		api:     api,
		session: session,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Create arma la reserva con la direccion del perfil actual.
func (s *BookingService) Create(ctx context.Context, req BookingRequest) (domain.Booking, error) {
	price, ok := ServicePrice(req.ServiceType)
	if !ok {
		return domain.Booking{}, &domain.ValidationError{Field: "serviceType", Message: "Please select a valid service"}
	}
	if req.ScheduledAt != nil && req.ScheduledAt.Before(s.now()) {
		return domain.Booking{}, &domain.ValidationError{Field: "scheduledDateTime", Message: "Please choose a future date and time"}
	}

	profile := s.session.Snapshot().Profile
	if profile == nil {
		return domain.Booking{}, &domain.ValidationError{Field: "profile", Message: "Please complete your profile before booking"}
	}
	addr := profile.Address
	if !addr.HasCoordinates() {
		return domain.Booking{}, &domain.ValidationError{Field: "location", Message: "You will need to provide your location to book services."}
	}

	in := domain.BookingInput{
		UserName:            profile.Name,
		ServiceType:         req.ServiceType,
		Price:               price,
		ScheduledDateTime:   req.ScheduledAt,
		AddressLine1:        addr.Line1,
		AddressLine2:        addr.Line2,
		City:                addr.City,
		State:               addr.State,
		PostalCode:          addr.PostalCode,
		Latitude:            domain.Float64(*addr.Latitude),
		Longitude:           domain.Float64(*addr.Longitude),
		VehicleType:         strings.TrimSpace(req.VehicleType),
		VehicleNumber:       strings.ToUpper(strings.TrimSpace(req.VehicleNumber)),
		SpecialInstructions: strings.TrimSpace(req.SpecialInstructions),
	}

	b, err := s.api.CreateBooking(ctx, in)
	if err != nil {
		return domain.Booking{}, err
	}
	s.logger.Info("booking created", zap.String("booking_id", b.ID), zap.String("service", string(b.ServiceType)))
	return b, nil
}

func (s *BookingService) List(ctx context.Context) ([]domain.Booking, error) {
	return s.api.ListBookings(ctx)
}

func (s *BookingService) Get(ctx context.Context, id string) (domain.Booking, error) {
	return s.api.GetBooking(ctx, id)
}

func (s *BookingService) ListByStatus(ctx context.Context, status domain.BookingStatus) ([]domain.Booking, error) {
	if !status.Valid() {
		return nil, &domain.ValidationError{Field: "status", Message: fmt.Sprintf("Unknown booking status %q", status)}
	}
	return s.api.ListBookingsByStatus(ctx, status)
}

// Cancel consulta el estado actual antes de borrar; solo las pendientes se
// pueden cancelar.
func (s *BookingService) Cancel(ctx context.Context, id string) error {
	b, err := s.api.GetBooking(ctx, id)
	if err != nil {
		return err
	}
	if !b.Status.Cancellable() {
		return fmt.Errorf("%w: status %s", ErrNotCancellable, b.Status)
	}
	res, err := s.api.CancelBooking(ctx, id)
	if err != nil {
		return err
	}
	if !res.Success {
		msg := res.Message
		if msg == "" {
			msg = "Failed to cancel booking"
		}
		return &domain.RejectedError{Message: msg}
	}
	s.logger.Info("booking cancelled", zap.String("booking_id", id))
	return nil
}

func (s *BookingService) UpdateStatus(ctx context.Context, id string, status domain.BookingStatus) (domain.Booking, error) {
	if !status.Valid() {
		return domain.Booking{}, &domain.ValidationError{Field: "status", Message: fmt.Sprintf("Unknown booking status %q", status)}
	}
	return s.api.UpdateBookingStatus(ctx, id, status)
}
