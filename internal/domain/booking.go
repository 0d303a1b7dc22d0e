package domain

import "time"

type BookingStatus string

const (
	BookingPending    BookingStatus = "PENDING"
	BookingConfirmed  BookingStatus = "CONFIRMED"
	BookingInProgress BookingStatus = "IN_PROGRESS"
	BookingCompleted  BookingStatus = "COMPLETED"
	BookingCancelled  BookingStatus = "CANCELLED"
)

// Valid indica si el estado pertenece al catálogo del servidor.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingInProgress, BookingCompleted, BookingCancelled:
		return true
	}
	return false
}

// Cancellable indica si el usuario puede cancelar una reserva en este estado.
func (s BookingStatus) Cancellable() bool {
	return s == BookingPending
}

type ServiceType string

const (
	ServiceBasicWash     ServiceType = "BASIC_WASH"
	ServicePremiumWash   ServiceType = "PREMIUM_WASH"
	ServiceInteriorClean ServiceType = "INTERIOR_CLEAN"
	ServiceFullService   ServiceType = "FULL_SERVICE"
)

// ServiceTypes lista los servicios en el orden en que se muestran.
var ServiceTypes = []ServiceType{
	ServiceBasicWash,
	ServicePremiumWash,
	ServiceInteriorClean,
	ServiceFullService,
}

// Booking es el registro de reserva tal como lo define el servidor.
type Booking struct {
	ID                  string        `json:"id"`
	ServiceType         ServiceType   `json:"serviceType"`
	Price               float64       `json:"price"`
	Status              BookingStatus `json:"status"`
	ScheduledDateTime   *time.Time    `json:"scheduledDateTime,omitempty"`
	AddressLine1        string        `json:"addressLine1"`
	AddressLine2        string        `json:"addressLine2,omitempty"`
	City                string        `json:"city"`
	State               string        `json:"state,omitempty"`
	PostalCode          string        `json:"postalCode,omitempty"`
	Latitude            *float64      `json:"latitude,omitempty"`
	Longitude           *float64      `json:"longitude,omitempty"`
	VehicleType         string        `json:"vehicleType,omitempty"`
	VehicleNumber       string        `json:"vehicleNumber,omitempty"`
	SpecialInstructions string        `json:"specialInstructions,omitempty"`
	CreatedAt           time.Time     `json:"createdAt"`
}

// BookingInput es el cuerpo de POST /bookings. UserName viaja como query param.
type BookingInput struct {
	UserName            string      `json:"-"`
	ServiceType         ServiceType `json:"serviceType"`
	Price               float64     `json:"price"`
	ScheduledDateTime   *time.Time  `json:"scheduledDateTime,omitempty"`
	AddressLine1        string      `json:"addressLine1"`
	AddressLine2        string      `json:"addressLine2,omitempty"`
	City                string      `json:"city"`
	State               string      `json:"state,omitempty"`
	PostalCode          string      `json:"postalCode,omitempty"`
	Latitude            *float64    `json:"latitude,omitempty"`
	Longitude           *float64    `json:"longitude,omitempty"`
	VehicleType         string      `json:"vehicleType,omitempty"`
	VehicleNumber       string      `json:"vehicleNumber,omitempty"`
	SpecialInstructions string      `json:"specialInstructions,omitempty"`
}
