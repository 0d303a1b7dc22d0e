package devserver

import (
	"errors"
	"sort"
	"sync"
	"time"

	"carwash-client/internal/domain"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrBookingNotFound = errors.New("booking not found")
)

type otpRecord struct {
	hash      string
	expiresAt time.Time
}

type bookingRecord struct {
	owner   string
	booking domain.Booking
}

// MemoryStore guarda perfiles, reservas y OTP pendientes del backend local.
type MemoryStore struct {
	mu       sync.RWMutex
	otps     map[string]otpRecord
	profiles map[string]domain.Profile
	bookings map[string]bookingRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		otps:     make(map[string]otpRecord),
		profiles: make(map[string]domain.Profile),
		bookings: make(map[string]bookingRecord),
	}
}

func (s *MemoryStore) SaveOTP(phone, hash string, expiresAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.otps[phone] = otpRecord{hash: hash, expiresAt: expiresAt}
}

func (s *MemoryStore) OTP(phone string) (string, time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.otps[phone]
	return rec.hash, rec.expiresAt, ok
}

func (s *MemoryStore) DeleteOTP(phone string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.otps, phone)
}

func (s *MemoryStore) Profile(phone string) (domain.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[phone]
	if !ok {
		return domain.Profile{}, ErrProfileNotFound
	}
	return p, nil
}

func (s *MemoryStore) SaveProfile(p domain.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.PhoneNumber] = p
}

func (s *MemoryStore) SaveBooking(owner string, b domain.Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bookings[b.ID] = bookingRecord{owner: owner, booking: b}
}

// Booking solo devuelve reservas del dueño; una ajena cuenta como inexistente.
func (s *MemoryStore) Booking(owner, id string) (domain.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.bookings[id]
	if !ok || rec.owner != owner {
		return domain.Booking{}, ErrBookingNotFound
	}
	return rec.booking, nil
}

// Bookings lista las reservas del dueño, las mas recientes primero. Un
// status vacio no filtra.
func (s *MemoryStore) Bookings(owner string, status domain.BookingStatus) []domain.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Booking, 0)
	for _, rec := range s.bookings {
		if rec.owner != owner {
			continue
		}
		if status != "" && rec.booking.Status != status {
			continue
		}
		out = append(out, rec.booking)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (s *MemoryStore) UpdateBookingStatus(owner, id string, status domain.BookingStatus) (domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.bookings[id]
	if !ok || rec.owner != owner {
		return domain.Booking{}, ErrBookingNotFound
	}
	rec.booking.Status = status
	s.bookings[id] = rec
	return rec.booking, nil
}
