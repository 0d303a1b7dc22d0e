package domain

import "strings"

// Address es la ubicación estructurada del usuario.
type Address struct {
	Line1      string   `json:"line1"`
	Line2      string   `json:"line2,omitempty"`
	City       string   `json:"city"`
	State      string   `json:"state,omitempty"`
	PostalCode string   `json:"postalCode,omitempty"`
	Latitude   *float64 `json:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude,omitempty"`
}

// HasCoordinates indica si el par lat/lon esta presente.
func (a Address) HasCoordinates() bool {
	return a.Latitude != nil && a.Longitude != nil
}

// Profile refleja el registro de usuario del servidor.
type Profile struct {
	Name             string  `json:"name"`
	PhoneNumber      string  `json:"phoneNumber"`
	Address          Address `json:"address"`
	ProfileCompleted bool    `json:"profileCompleted"`
}

// IsProfileComplete es el unico criterio de completitud del perfil.
// Un perfil sin nombre o sin el flag del servidor cuenta como ausente.
func IsProfileComplete(p *Profile) bool {
	if p == nil {
		return false
	}
	return strings.TrimSpace(p.Name) != "" && p.ProfileCompleted
}

// ProfileInput es el cuerpo de POST/PUT /users/profile.
type ProfileInput struct {
	Name        string  `json:"name"`
	PhoneNumber string  `json:"phoneNumber"`
	Address     Address `json:"address"`
}

// Float64 devuelve un puntero al valor dado.
func Float64(v float64) *float64 {
	return &v
}
