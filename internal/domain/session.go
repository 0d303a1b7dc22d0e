package domain

import "time"

type AuthState string

const (
	StateBootstrapping            AuthState = "bootstrapping"
	StateUnauthenticated          AuthState = "unauthenticated"
	StateAuthenticatedNoProfile   AuthState = "authenticated_no_profile"
	StateAuthenticatedWithProfile AuthState = "authenticated_with_profile"
)

// Session es la creencia local sobre el estado de autenticación.
// Token y Profile viven juntos: sin token nunca hay perfil.
type Session struct {
	Bootstrapping  bool       `json:"bootstrapping"`
	Token          string     `json:"-"`
	PhoneNumber    string     `json:"phoneNumber,omitempty"`
	Profile        *Profile   `json:"profile,omitempty"`
	TokenExpiresAt *time.Time `json:"tokenExpiresAt,omitempty"`
}

func (s Session) IsAuthenticated() bool {
	return s.Token != ""
}

func (s Session) HasProfile() bool {
	return s.IsAuthenticated() && s.Profile != nil
}

// State deriva el estado de la maquina a partir de los campos.
func (s Session) State() AuthState {
	switch {
	case s.Bootstrapping:
		return StateBootstrapping
	case !s.IsAuthenticated():
		return StateUnauthenticated
	case s.Profile == nil:
		return StateAuthenticatedNoProfile
	default:
		return StateAuthenticatedWithProfile
	}
}

// OtpChallenge es el intento de verificación en curso. No se persiste.
type OtpChallenge struct {
	PhoneNumber string
	SentAt      time.Time
}

// AuthResponse es la respuesta de POST /auth/verify-otp.
type AuthResponse struct {
	Token string `json:"token"`
	Phone string `json:"phone"`
}

// MessageResponse es el sobre comun de send-otp, resend-otp y delete.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
