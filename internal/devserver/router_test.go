package devserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"carwash-client/internal/domain"
)

type testServer struct {
	router *gin.Engine
	tokens *TokenIssuer
	store  *MemoryStore
	sender *captureSender
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := NewMemoryStore()
	sender := &captureSender{}
	tokens := NewTokenIssuer("secret", time.Hour)
	otps := NewOTPService(zap.NewNop(), store, sender, allowAll{}, time.Minute)
	return &testServer{
		router: New(zap.NewNop(), tokens, otps, store),
		tokens: tokens,
		store:  store,
		sender: sender,
	}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) token(t *testing.T, phone string) string {
	t.Helper()
	tok, err := s.tokens.Issue(phone)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return tok
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestAuthEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/auth/send-otp", "", map[string]string{"phoneNumber": "9876543210"})
	if rec.Code != http.StatusOK {
		t.Fatalf("send-otp: expected 200, got %d", rec.Code)
	}
	if res := decode[domain.MessageResponse](t, rec); !res.Success {
		t.Fatalf("send-otp: expected success, got %+v", res)
	}

	rec = s.do(t, http.MethodPost, "/auth/verify-otp", "", map[string]string{"phoneNumber": "9876543210", "otp": "abc"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("verify bad otp: expected 400, got %d", rec.Code)
	}

	rec = s.do(t, http.MethodPost, "/auth/verify-otp", "", map[string]string{"phoneNumber": "9876543210", "otp": s.sender.code})
	if rec.Code != http.StatusOK {
		t.Fatalf("verify: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	auth := decode[domain.AuthResponse](t, rec)
	if auth.Token == "" || auth.Phone != "9876543210" {
		t.Fatalf("unexpected auth response %+v", auth)
	}
	if _, err := s.tokens.Parse(auth.Token); err != nil {
		t.Fatalf("issued token invalid: %v", err)
	}
}

func TestAuthEndpoints_Validation(t *testing.T) {
	s := newTestServer(t)

	if rec := s.do(t, http.MethodPost, "/auth/send-otp", "", map[string]string{}); rec.Code != http.StatusBadRequest {
		t.Fatalf("missing phone: expected 400, got %d", rec.Code)
	}
	if rec := s.do(t, http.MethodPost, "/auth/resend-otp", "", map[string]string{"phoneNumber": "12345"}); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad phone: expected 400, got %d", rec.Code)
	}
	rec := s.do(t, http.MethodPost, "/auth/verify-otp", "", map[string]string{"phoneNumber": "9876543210", "otp": "123456"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("verify without request: expected 400, got %d", rec.Code)
	}
	if res := decode[map[string]string](t, rec); res["message"] != "OTP not requested" {
		t.Fatalf("unexpected message %+v", res)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	paths := []struct{ method, path string }{
		{http.MethodGet, "/users/profile"},
		{http.MethodGet, "/bookings"},
		{http.MethodPatch, "/users/profile/location"},
	}
	for _, p := range paths {
		if rec := s.do(t, p.method, p.path, "", nil); rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401, got %d", p.method, p.path, rec.Code)
		}
		if rec := s.do(t, p.method, p.path, "garbage", nil); rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s with bad token: expected 401, got %d", p.method, p.path, rec.Code)
		}
	}
}

func TestProfileEndpoints(t *testing.T) {
	s := newTestServer(t)
	tok := s.token(t, "9876543210")

	rec := s.do(t, http.MethodGet, "/users/profile", tok, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing profile: expected 404, got %d", rec.Code)
	}

	in := domain.ProfileInput{
		Name: "Asha Rao",
		Address: domain.Address{
			Line1: "12 MG Road",
			City:  "Pune",
		},
	}
	rec = s.do(t, http.MethodPost, "/users/profile", tok, in)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", rec.Code)
	}
	if p := decode[domain.Profile](t, rec); p.ProfileCompleted {
		t.Fatalf("profile without coordinates must not be complete")
	}

	rec = s.do(t, http.MethodPatch, "/users/profile/location", tok, map[string]float64{"latitude": 18.52, "longitude": 73.85})
	if rec.Code != http.StatusOK {
		t.Fatalf("location: expected 200, got %d", rec.Code)
	}
	p := decode[domain.Profile](t, rec)
	if !p.ProfileCompleted || p.PhoneNumber != "9876543210" {
		t.Fatalf("unexpected profile %+v", p)
	}

	rec = s.do(t, http.MethodGet, "/users/profile", tok, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", rec.Code)
	}

	other := s.token(t, "9123456780")
	if rec := s.do(t, http.MethodPut, "/users/profile", other, in); rec.Code != http.StatusNotFound {
		t.Fatalf("update other user: expected 404, got %d", rec.Code)
	}
}

func TestBookingEndpoints(t *testing.T) {
	s := newTestServer(t)
	tok := s.token(t, "9876543210")

	in := domain.BookingInput{
		ServiceType:  domain.ServiceBasicWash,
		Price:        299,
		AddressLine1: "12 MG Road",
		City:         "Pune",
	}
	if rec := s.do(t, http.MethodPost, "/bookings", tok, in); rec.Code != http.StatusBadRequest {
		t.Fatalf("missing userName: expected 400, got %d", rec.Code)
	}

	rec := s.do(t, http.MethodPost, "/bookings?userName=Asha+Rao", tok, in)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	created := decode[domain.Booking](t, rec)
	if created.ID == "" || created.Status != domain.BookingPending {
		t.Fatalf("unexpected booking %+v", created)
	}

	list := decode[[]domain.Booking](t, s.do(t, http.MethodGet, "/bookings", tok, nil))
	if len(list) != 1 {
		t.Fatalf("expected one booking, got %d", len(list))
	}
	pending := decode[[]domain.Booking](t, s.do(t, http.MethodGet, "/bookings/status/PENDING", tok, nil))
	if len(pending) != 1 {
		t.Fatalf("expected one pending booking, got %d", len(pending))
	}
	if rec := s.do(t, http.MethodGet, "/bookings/status/DONE", tok, nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad status: expected 400, got %d", rec.Code)
	}

	other := s.token(t, "9123456780")
	if rec := s.do(t, http.MethodGet, "/bookings/"+created.ID, other, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("foreign booking: expected 404, got %d", rec.Code)
	}

	rec = s.do(t, http.MethodDelete, "/bookings/"+created.ID, tok, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("cancel: expected 200, got %d", rec.Code)
	}
	if res := decode[domain.MessageResponse](t, rec); !res.Success {
		t.Fatalf("cancel: expected success")
	}
	if rec := s.do(t, http.MethodDelete, "/bookings/"+created.ID, tok, nil); rec.Code != http.StatusConflict {
		t.Fatalf("second cancel: expected 409, got %d", rec.Code)
	}

	rec = s.do(t, http.MethodPatch, "/bookings/"+created.ID+"/status", tok, map[string]string{"status": "COMPLETED"})
	if rec.Code != http.StatusOK {
		t.Fatalf("update status: expected 200, got %d", rec.Code)
	}
	if b := decode[domain.Booking](t, rec); b.Status != domain.BookingCompleted {
		t.Fatalf("unexpected status %s", b.Status)
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/bookings", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "req-123" {
		t.Fatalf("expected echoed request id, got %q", got)
	}
}

func TestSendOTP_DisabledDeliveryIs503(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := NewMemoryStore()
	tokens := NewTokenIssuer("secret", time.Hour)
	otps := NewOTPService(zap.NewNop(), store, SenderFor(zap.NewNop(), true), allowAll{}, time.Minute)
	s := &testServer{router: New(zap.NewNop(), tokens, otps, store), tokens: tokens, store: store}

	rec := s.do(t, http.MethodPost, "/auth/send-otp", "", map[string]string{"phoneNumber": "9876543210"})
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if _, ok := SenderFor(nil, false).(*LogSender); !ok {
		t.Fatalf("enabled delivery should use the log sender")
	}
}
