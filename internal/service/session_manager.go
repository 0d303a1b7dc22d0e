package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"carwash-client/internal/domain"
)

// SessionAPI es la parte del backend que necesita la maquina de sesion.
type SessionAPI interface {
	VerifyOTP(ctx context.Context, phone, code string) (domain.AuthResponse, error)
	FetchProfile(ctx context.Context) (domain.Profile, error)
}

// CredentialStore es el almacen best-effort de credenciales.
type CredentialStore interface {
	SaveToken(ctx context.Context, token string)
	Token(ctx context.Context) string
	ClearToken(ctx context.Context)
	SavePhone(ctx context.Context, phone string)
	Phone(ctx context.Context) string
	SaveUser(ctx context.Context, profile domain.Profile)
	ClearAll(ctx context.Context)
}

// LoginResult permite a la vista enrutar sin esperar otro ciclo de render.
type LoginResult struct {
	Success    bool
	HasProfile bool
	Message    string
}

// SessionManager es el unico escritor de domain.Session. Las operaciones
// se serializan con opMu; los lectores usan Snapshot y nunca bloquean
// durante una llamada de red.
type SessionManager struct {
	opMu    sync.Mutex
	pending []domain.Session

	mu      sync.RWMutex
	session domain.Session

	obsMu     sync.Mutex
	observers map[int]func(domain.Session)
	nextObsID int

	api    SessionAPI
	creds  CredentialStore
	logger *zap.Logger
	now    func() time.Time
}

func NewSessionManager(api SessionAPI, creds CredentialStore, logger *zap.Logger) *SessionManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionManager{
		session:   domain.Session{Bootstrapping: true},
		observers: make(map[int]func(domain.Session)),
		api:       api,
		creds:     creds,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Snapshot devuelve una copia del estado actual.
func (m *SessionManager) Snapshot() domain.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copySession(m.session)
}

func (m *SessionManager) State() domain.AuthState {
	return m.Snapshot().State()
}

// Subscribe registra un observador que recibe el estado tras cada transicion.
// El cancel devuelto debe llamarse cuando el observador deja de existir.
func (m *SessionManager) Subscribe(fn func(domain.Session)) (cancel func()) {
	m.obsMu.Lock()
	id := m.nextObsID
	m.nextObsID++
	m.observers[id] = fn
	m.obsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.obsMu.Lock()
			delete(m.observers, id)
			m.obsMu.Unlock()
		})
	}
}

// CheckAuthStatus clasifica el arranque a partir del almacen y del servidor.
// Siempre termina con Bootstrapping en false.
func (m *SessionManager) CheckAuthStatus(ctx context.Context) {
	defer m.begin()()

	next := domain.Session{}
	defer func() { m.set(next) }()

	token := m.creds.Token(ctx)
	if token == "" {
		m.logger.Info("no stored session")
		return
	}
	phone := m.creds.Phone(ctx)

	expiresAt, hasExpiry := TokenExpiry(token)
	if hasExpiry && !expiresAt.After(m.now()) {
		m.logger.Info("stored token expired", zap.Time("expires_at", expiresAt))
		m.creds.ClearToken(ctx)
		return
	}

	profile, err := m.fetchClassified(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			m.logger.Info("stored token rejected by server")
			return
		}
		m.logger.Warn("profile fetch failed during bootstrap, assuming no profile", zap.Error(err))
	}

	next = domain.Session{
		Token:       token,
		PhoneNumber: phone,
		Profile:     profile,
	}
	if hasExpiry {
		next.TokenExpiresAt = &expiresAt
	}
}

// Login verifica el OTP, persiste credenciales y clasifica el perfil. Ante un
// fallo de verificacion el estado previo queda intacto.
func (m *SessionManager) Login(ctx context.Context, phone, code string) LoginResult {
	defer m.begin()()

	res, err := m.api.VerifyOTP(ctx, phone, code)
	if err != nil {
		m.logger.Info("otp verification failed", zap.Error(err))
		return LoginResult{Success: false, Message: err.Error()}
	}

	m.creds.SaveToken(ctx, res.Token)
	m.creds.SavePhone(ctx, phone)

	next := domain.Session{Token: res.Token, PhoneNumber: phone}
	if exp, ok := TokenExpiry(res.Token); ok {
		next.TokenExpiresAt = &exp
	}

	profile, err := m.fetchClassified(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			m.set(domain.Session{})
			return LoginResult{Success: false, Message: err.Error()}
		}
		m.logger.Warn("profile fetch failed after login, assuming no profile", zap.Error(err))
	}
	next.Profile = profile
	m.set(next)

	m.logger.Info("login succeeded", zap.Bool("has_profile", profile != nil))
	return LoginResult{Success: true, HasProfile: profile != nil}
}

// Logout borra el almacen y resetea la sesion. No tiene camino de error.
func (m *SessionManager) Logout(ctx context.Context) {
	defer m.begin()()

	m.creds.ClearAll(ctx)
	m.set(domain.Session{})
	m.logger.Info("logged out")
}

// RefreshProfile vuelve a pedir el perfil y reclasifica. Los errores se
// propagan y el estado previo se conserva, salvo un 401 que cierra la sesion.
func (m *SessionManager) RefreshProfile(ctx context.Context) (bool, error) {
	defer m.begin()()

	current := m.Snapshot()
	if !current.IsAuthenticated() {
		return false, nil
	}

	profile, err := m.fetchClassified(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			m.set(domain.Session{})
		}
		return false, err
	}

	current.Profile = profile
	m.set(current)
	return profile != nil, nil
}

// fetchClassified es el unico sitio donde se decide la completitud del perfil.
// Un 404 significa "sin perfil" y no es un error.
func (m *SessionManager) fetchClassified(ctx context.Context) (*domain.Profile, error) {
	p, err := m.api.FetchProfile(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if !domain.IsProfileComplete(&p) {
		return nil, nil
	}
	m.creds.SaveUser(ctx, p)
	return &p, nil
}

// begin serializa una operacion. La funcion devuelta libera opMu y solo
// despues notifica los estados publicados, asi un observador puede invocar
// otra operacion sin bloquear la maquina.
func (m *SessionManager) begin() (end func()) {
	m.opMu.Lock()
	return func() {
		pending := m.pending
		m.pending = nil
		m.opMu.Unlock()
		for _, s := range pending {
			m.notify(s)
		}
	}
}

// set publica el nuevo estado. Solo se llama con opMu tomado.
func (m *SessionManager) set(s domain.Session) {
	if s.Token == "" {
		s = domain.Session{Bootstrapping: s.Bootstrapping}
	}
	m.mu.Lock()
	m.session = copySession(s)
	m.mu.Unlock()
	m.pending = append(m.pending, copySession(s))
}

func (m *SessionManager) notify(s domain.Session) {
	m.obsMu.Lock()
	observers := make([]func(domain.Session), 0, len(m.observers))
	for _, fn := range m.observers {
		observers = append(observers, fn)
	}
	m.obsMu.Unlock()
	for _, fn := range observers {
		fn(copySession(s))
	}
}

func copySession(s domain.Session) domain.Session {
	out := s
	if s.Profile != nil {
		p := *s.Profile
		if p.Address.Latitude != nil {
			p.Address.Latitude = domain.Float64(*p.Address.Latitude)
		}
		if p.Address.Longitude != nil {
			p.Address.Longitude = domain.Float64(*p.Address.Longitude)
		}
		out.Profile = &p
	}
	if s.TokenExpiresAt != nil {
		t := *s.TokenExpiresAt
		out.TokenExpiresAt = &t
	}
	return out
}
