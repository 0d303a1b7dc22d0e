package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"carwash-client/internal/domain"
)

type mockSessionAPI struct {
	verifyResp  domain.AuthResponse
	verifyErr   error
	profile     domain.Profile
	profileErr  error
	verifyCalls int
	fetchCalls  int
}

func (m *mockSessionAPI) VerifyOTP(_ context.Context, _, _ string) (domain.AuthResponse, error) {
	m.verifyCalls++
	if m.verifyErr != nil {
		return domain.AuthResponse{}, m.verifyErr
	}
	return m.verifyResp, nil
}

func (m *mockSessionAPI) FetchProfile(_ context.Context) (domain.Profile, error) {
	m.fetchCalls++
	if m.profileErr != nil {
		return domain.Profile{}, m.profileErr
	}
	return m.profile, nil
}

type mockCredentials struct {
	token string
	phone string
	user  *domain.Profile
}

func (m *mockCredentials) SaveToken(_ context.Context, token string) { m.token = token }
func (m *mockCredentials) Token(_ context.Context) string            { return m.token }
func (m *mockCredentials) ClearToken(_ context.Context)              { m.token = "" }
func (m *mockCredentials) SavePhone(_ context.Context, phone string) { m.phone = phone }
func (m *mockCredentials) Phone(_ context.Context) string            { return m.phone }
func (m *mockCredentials) SaveUser(_ context.Context, p domain.Profile) {
	m.user = &p
}
func (m *mockCredentials) ClearAll(_ context.Context) {
	m.token, m.phone, m.user = "", "", nil
}

func completeProfile() domain.Profile {
	return domain.Profile{
		Name:             "Asha Rao",
		PhoneNumber:      "9876543210",
		ProfileCompleted: true,
		Address: domain.Address{
			Line1:     "12 MG Road",
			City:      "Pune",
			Latitude:  domain.Float64(18.52),
			Longitude: domain.Float64(73.85),
		},
	}
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "9876543210",
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func TestSessionManager_StartsBootstrapping(t *testing.T) {
	m := NewSessionManager(&mockSessionAPI{}, &mockCredentials{}, zap.NewNop())
	if got := m.State(); got != domain.StateBootstrapping {
		t.Fatalf("expected bootstrapping, got %s", got)
	}
}

func TestCheckAuthStatus_Classification(t *testing.T) {
	tests := []struct {
		name       string
		token      string
		profile    domain.Profile
		profileErr error
		want       domain.AuthState
	}{
		{name: "no token", want: domain.StateUnauthenticated},
		{name: "complete profile", token: "abc", profile: completeProfile(), want: domain.StateAuthenticatedWithProfile},
		{name: "not found", token: "abc", profileErr: &domain.ServerError{Status: 404, Message: "User not found"}, want: domain.StateAuthenticatedNoProfile},
		{name: "empty name", token: "abc", profile: domain.Profile{Name: "  ", ProfileCompleted: true}, want: domain.StateAuthenticatedNoProfile},
		{name: "flag false", token: "abc", profile: domain.Profile{Name: "Asha"}, want: domain.StateAuthenticatedNoProfile},
		{name: "server error", token: "abc", profileErr: &domain.ServerError{Status: 500, Message: "boom"}, want: domain.StateAuthenticatedNoProfile},
		{name: "network error", token: "abc", profileErr: &domain.TransportError{Err: errors.New("dial")}, want: domain.StateAuthenticatedNoProfile},
		{name: "unauthorized", token: "abc", profileErr: &domain.ServerError{Status: 401, Message: "expired"}, want: domain.StateUnauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &mockSessionAPI{profile: tt.profile, profileErr: tt.profileErr}
			creds := &mockCredentials{token: tt.token, phone: "9876543210"}
			m := NewSessionManager(api, creds, zap.NewNop())

			m.CheckAuthStatus(context.Background())

			s := m.Snapshot()
			if s.Bootstrapping {
				t.Fatalf("bootstrapping must be false after check")
			}
			if got := s.State(); got != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
			if !s.IsAuthenticated() && s.Profile != nil {
				t.Fatalf("profile present without token")
			}
		})
	}
}

func TestCheckAuthStatus_NoTokenSkipsNetwork(t *testing.T) {
	api := &mockSessionAPI{}
	m := NewSessionManager(api, &mockCredentials{}, zap.NewNop())

	m.CheckAuthStatus(context.Background())

	if api.fetchCalls != 0 {
		t.Fatalf("expected no profile fetch, got %d", api.fetchCalls)
	}
}

func TestCheckAuthStatus_ExpiredJWTIsClearedLocally(t *testing.T) {
	api := &mockSessionAPI{profile: completeProfile()}
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	creds := &mockCredentials{token: signedToken(t, now.Add(-time.Minute)), phone: "9876543210"}
	m := NewSessionManager(api, creds, zap.NewNop())
	m.now = func() time.Time { return now }

	m.CheckAuthStatus(context.Background())

	if got := m.State(); got != domain.StateUnauthenticated {
		t.Fatalf("expected unauthenticated, got %s", got)
	}
	if creds.token != "" {
		t.Fatalf("expired token should be cleared")
	}
	if api.fetchCalls != 0 {
		t.Fatalf("expired token must not reach the server")
	}
}

func TestCheckAuthStatus_ValidJWTKeepsExpiry(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	exp := now.Add(time.Hour)
	creds := &mockCredentials{token: signedToken(t, exp)}
	m := NewSessionManager(&mockSessionAPI{profile: completeProfile()}, creds, zap.NewNop())
	m.now = func() time.Time { return now }

	m.CheckAuthStatus(context.Background())

	s := m.Snapshot()
	if s.State() != domain.StateAuthenticatedWithProfile {
		t.Fatalf("expected with profile, got %s", s.State())
	}
	if s.TokenExpiresAt == nil || !s.TokenExpiresAt.Equal(exp) {
		t.Fatalf("expected expiry %v, got %v", exp, s.TokenExpiresAt)
	}
}

func TestLogin_EndToEndNoProfile(t *testing.T) {
	api := &mockSessionAPI{
		verifyResp: domain.AuthResponse{Token: "abc"},
		profile:    domain.Profile{Name: "", ProfileCompleted: false},
	}
	creds := &mockCredentials{}
	m := NewSessionManager(api, creds, zap.NewNop())
	m.CheckAuthStatus(context.Background())

	res := m.Login(context.Background(), "9876543210", "123456")

	if !res.Success || res.HasProfile {
		t.Fatalf("expected success without profile, got %+v", res)
	}
	if got := m.State(); got != domain.StateAuthenticatedNoProfile {
		t.Fatalf("expected authenticated_no_profile, got %s", got)
	}
	if creds.token != "abc" || creds.phone != "9876543210" {
		t.Fatalf("credentials not persisted: %+v", creds)
	}
	if creds.user != nil {
		t.Fatalf("incomplete profile must not be cached")
	}
}

func TestLogin_WithCompleteProfileCachesUser(t *testing.T) {
	api := &mockSessionAPI{verifyResp: domain.AuthResponse{Token: "abc"}, profile: completeProfile()}
	creds := &mockCredentials{}
	m := NewSessionManager(api, creds, zap.NewNop())

	res := m.Login(context.Background(), "9876543210", "123456")

	if !res.Success || !res.HasProfile {
		t.Fatalf("expected success with profile, got %+v", res)
	}
	if m.State() != domain.StateAuthenticatedWithProfile {
		t.Fatalf("unexpected state %s", m.State())
	}
	if creds.user == nil || creds.user.Name != "Asha Rao" {
		t.Fatalf("complete profile should be cached")
	}
}

func TestLogin_VerifyFailureLeavesStateUntouched(t *testing.T) {
	api := &mockSessionAPI{verifyErr: &domain.AuthError{Message: "Invalid OTP"}}
	creds := &mockCredentials{}
	m := NewSessionManager(api, creds, zap.NewNop())
	m.CheckAuthStatus(context.Background())
	before := m.Snapshot()

	res := m.Login(context.Background(), "9876543210", "000000")

	if res.Success {
		t.Fatalf("expected failure")
	}
	if res.Message != "Invalid OTP" {
		t.Fatalf("unexpected message %q", res.Message)
	}
	if m.Snapshot().State() != before.State() {
		t.Fatalf("state changed on failed login")
	}
	if creds.token != "" {
		t.Fatalf("token must not be saved on failure")
	}
	if api.fetchCalls != 0 {
		t.Fatalf("profile must not be fetched on failure")
	}
}

func TestLogin_ProfileFetchErrorStillAuthenticates(t *testing.T) {
	api := &mockSessionAPI{
		verifyResp: domain.AuthResponse{Token: "abc"},
		profileErr: &domain.TransportError{Err: errors.New("timeout")},
	}
	m := NewSessionManager(api, &mockCredentials{}, zap.NewNop())

	res := m.Login(context.Background(), "9876543210", "123456")

	if !res.Success || res.HasProfile {
		t.Fatalf("unexpected result %+v", res)
	}
	if m.State() != domain.StateAuthenticatedNoProfile {
		t.Fatalf("unexpected state %s", m.State())
	}
}

func TestLogout_IsTotal(t *testing.T) {
	states := map[string]*mockCredentials{
		"unauthenticated": {},
		"no profile":      {token: "abc"},
		"with profile":    {token: "abc", phone: "9876543210"},
	}
	for name, creds := range states {
		t.Run(name, func(t *testing.T) {
			p := completeProfile()
			if name == "no profile" {
				p = domain.Profile{}
			}
			m := NewSessionManager(&mockSessionAPI{profile: p}, creds, zap.NewNop())
			m.CheckAuthStatus(context.Background())

			m.Logout(context.Background())

			s := m.Snapshot()
			if s.State() != domain.StateUnauthenticated {
				t.Fatalf("expected unauthenticated, got %s", s.State())
			}
			if s.Token != "" || s.PhoneNumber != "" || s.Profile != nil {
				t.Fatalf("session not reset: %+v", s)
			}
			if creds.token != "" || creds.phone != "" || creds.user != nil {
				t.Fatalf("store not cleared: %+v", creds)
			}
		})
	}
}

func TestRefreshProfile_Transitions(t *testing.T) {
	api := &mockSessionAPI{verifyResp: domain.AuthResponse{Token: "abc"}, profileErr: &domain.ServerError{Status: 404}}
	m := NewSessionManager(api, &mockCredentials{}, zap.NewNop())
	m.Login(context.Background(), "9876543210", "123456")
	if m.State() != domain.StateAuthenticatedNoProfile {
		t.Fatalf("setup: unexpected state %s", m.State())
	}

	api.profileErr = nil
	api.profile = completeProfile()
	ok, err := m.RefreshProfile(context.Background())
	if err != nil || !ok {
		t.Fatalf("expected refreshed profile, got ok=%v err=%v", ok, err)
	}
	if m.State() != domain.StateAuthenticatedWithProfile {
		t.Fatalf("expected with profile, got %s", m.State())
	}
}

func TestRefreshProfile_ErrorKeepsPriorState(t *testing.T) {
	api := &mockSessionAPI{verifyResp: domain.AuthResponse{Token: "abc"}, profile: completeProfile()}
	m := NewSessionManager(api, &mockCredentials{}, zap.NewNop())
	m.Login(context.Background(), "9876543210", "123456")

	api.profileErr = &domain.ServerError{Status: 500, Message: "boom"}
	ok, err := m.RefreshProfile(context.Background())

	if err == nil || ok {
		t.Fatalf("expected error, got ok=%v err=%v", ok, err)
	}
	if m.State() != domain.StateAuthenticatedWithProfile {
		t.Fatalf("state should be preserved, got %s", m.State())
	}
}

func TestRefreshProfile_UnauthorizedLogsOut(t *testing.T) {
	api := &mockSessionAPI{verifyResp: domain.AuthResponse{Token: "abc"}, profile: completeProfile()}
	m := NewSessionManager(api, &mockCredentials{}, zap.NewNop())
	m.Login(context.Background(), "9876543210", "123456")

	api.profileErr = &domain.ServerError{Status: 401, Message: "expired"}
	_, err := m.RefreshProfile(context.Background())

	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if m.State() != domain.StateUnauthenticated {
		t.Fatalf("expected unauthenticated, got %s", m.State())
	}
}

func TestRefreshProfile_UnauthenticatedIsNoop(t *testing.T) {
	api := &mockSessionAPI{}
	m := NewSessionManager(api, &mockCredentials{}, zap.NewNop())
	m.CheckAuthStatus(context.Background())

	ok, err := m.RefreshProfile(context.Background())

	if ok || err != nil {
		t.Fatalf("expected (false, nil), got (%v, %v)", ok, err)
	}
	if api.fetchCalls != 0 {
		t.Fatalf("no fetch expected")
	}
}

// La misma respuesta del servidor debe clasificar igual por los tres caminos.
func TestClassificationConsistency(t *testing.T) {
	profiles := []domain.Profile{
		completeProfile(),
		{Name: "", ProfileCompleted: false},
		{Name: "Asha", ProfileCompleted: false},
		{Name: "", ProfileCompleted: true},
	}
	for _, p := range profiles {
		viaCheck := NewSessionManager(&mockSessionAPI{profile: p}, &mockCredentials{token: "abc"}, zap.NewNop())
		viaCheck.CheckAuthStatus(context.Background())

		viaLogin := NewSessionManager(&mockSessionAPI{profile: p, verifyResp: domain.AuthResponse{Token: "abc"}}, &mockCredentials{}, zap.NewNop())
		res := viaLogin.Login(context.Background(), "9876543210", "123456")

		viaRefresh := NewSessionManager(&mockSessionAPI{profile: p}, &mockCredentials{token: "abc"}, zap.NewNop())
		viaRefresh.CheckAuthStatus(context.Background())
		refreshed, _ := viaRefresh.RefreshProfile(context.Background())

		want := domain.IsProfileComplete(&p)
		if viaCheck.Snapshot().HasProfile() != want || res.HasProfile != want ||
			viaLogin.Snapshot().HasProfile() != want || refreshed != want {
			t.Fatalf("inconsistent classification for %+v", p)
		}
	}
}

func TestSubscribe_NotifiesUntilCancelled(t *testing.T) {
	m := NewSessionManager(&mockSessionAPI{verifyResp: domain.AuthResponse{Token: "abc"}, profile: completeProfile()}, &mockCredentials{}, zap.NewNop())

	var seen []domain.AuthState
	cancel := m.Subscribe(func(s domain.Session) { seen = append(seen, s.State()) })

	m.CheckAuthStatus(context.Background())
	m.Login(context.Background(), "9876543210", "123456")
	cancel()
	cancel()
	m.Logout(context.Background())

	want := []domain.AuthState{domain.StateUnauthenticated, domain.StateAuthenticatedWithProfile}
	if len(seen) != len(want) {
		t.Fatalf("expected %v, got %v", want, seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, seen)
		}
	}
}

func TestSnapshot_IsIsolated(t *testing.T) {
	m := NewSessionManager(&mockSessionAPI{verifyResp: domain.AuthResponse{Token: "abc"}, profile: completeProfile()}, &mockCredentials{}, zap.NewNop())
	m.Login(context.Background(), "9876543210", "123456")

	s := m.Snapshot()
	s.Profile.Name = "changed"
	*s.Profile.Address.Latitude = 0

	again := m.Snapshot()
	if again.Profile.Name != "Asha Rao" || *again.Profile.Address.Latitude != 18.52 {
		t.Fatalf("snapshot mutation leaked into manager")
	}
}

func TestSubscribe_ObserverCanCallBackIntoManager(t *testing.T) {
	creds := &mockCredentials{token: "abc", phone: "9876543210"}
	m := NewSessionManager(&mockSessionAPI{profileErr: domain.ErrNotFound}, creds, zap.NewNop())

	var seen []domain.AuthState
	m.Subscribe(func(s domain.Session) {
		seen = append(seen, s.State())
		if s.State() == domain.StateAuthenticatedNoProfile {
			m.Logout(context.Background())
		}
	})

	done := make(chan struct{})
	go func() {
		m.CheckAuthStatus(context.Background())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("CheckAuthStatus blocked while an observer called Logout")
	}

	if m.State() != domain.StateUnauthenticated || creds.token != "" {
		t.Fatalf("observer logout not applied, state=%s", m.State())
	}
	want := []domain.AuthState{domain.StateAuthenticatedNoProfile, domain.StateUnauthenticated}
	if len(seen) != len(want) || seen[0] != want[0] || seen[1] != want[1] {
		t.Fatalf("expected %v, got %v", want, seen)
	}
}
