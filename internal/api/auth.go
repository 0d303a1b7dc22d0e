package api

import (
	"context"
	"net/http"
	"strings"

	"carwash-client/internal/domain"
)

const (
	pathSendOTP   = "/auth/send-otp"
	pathVerifyOTP = "/auth/verify-otp"
	pathResendOTP = "/auth/resend-otp"
)

type phoneRequest struct {
	PhoneNumber string `json:"phoneNumber"`
}

type verifyRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	OTP         string `json:"otp"`
}

// SendOTP maneja POST /auth/send-otp.
func (c *Client) SendOTP(ctx context.Context, phone string) (domain.MessageResponse, error) {
	var out domain.MessageResponse
	if err := c.do(ctx, http.MethodPost, pathSendOTP, nil, phoneRequest{PhoneNumber: phone}, &out); err != nil {
		return domain.MessageResponse{}, err
	}
	return out, nil
}

// VerifyOTP canjea el codigo por un token. Un codigo incorrecto o expirado
// devuelve *domain.AuthError.
func (c *Client) VerifyOTP(ctx context.Context, phone, code string) (domain.AuthResponse, error) {
	var out domain.AuthResponse
	err := c.do(ctx, http.MethodPost, pathVerifyOTP, nil, verifyRequest{PhoneNumber: phone, OTP: code}, &out)
	if err != nil {
		if se, ok := isStatus(err, http.StatusBadRequest, http.StatusUnauthorized, http.StatusUnprocessableEntity); ok {
			return domain.AuthResponse{}, &domain.AuthError{Message: se.Message, Err: se}
		}
		return domain.AuthResponse{}, err
	}
	if strings.TrimSpace(out.Token) == "" {
		return domain.AuthResponse{}, &domain.AuthError{Message: "Login failed"}
	}
	return out, nil
}

// ResendOTP maneja POST /auth/resend-otp.
func (c *Client) ResendOTP(ctx context.Context, phone string) (domain.MessageResponse, error) {
	var out domain.MessageResponse
	if err := c.do(ctx, http.MethodPost, pathResendOTP, nil, phoneRequest{PhoneNumber: phone}, &out); err != nil {
		return domain.MessageResponse{}, err
	}
	return out, nil
}
