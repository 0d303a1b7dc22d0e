package service

import "carwash-client/internal/domain"

// Route es el grafo de pantallas que corresponde a un estado de sesion.
type Route string

const (
	RouteSplash       Route = "splash"
	RouteAuth         Route = "auth"
	RouteProfileSetup Route = "profile_setup"
	RouteMain         Route = "main"
)

// SelectRoute deriva la navegacion solo del estado; ninguna pantalla navega
// por su cuenta tras login o alta de perfil.
func SelectRoute(s domain.Session) Route {
	switch s.State() {
	case domain.StateBootstrapping:
		return RouteSplash
	case domain.StateAuthenticatedWithProfile:
		return RouteMain
	case domain.StateAuthenticatedNoProfile:
		return RouteProfileSetup
	default:
		return RouteAuth
	}
}
