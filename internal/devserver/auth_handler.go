package devserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"carwash-client/internal/domain"
	"carwash-client/internal/service"
)

// AuthHandler atiende /auth/*.
type AuthHandler struct {
	logger *zap.Logger
	otps   *OTPService
	tokens *TokenIssuer
}

func NewAuthHandler(logger *zap.Logger, otps *OTPService, tokens *TokenIssuer) *AuthHandler {
	return &AuthHandler{logger: logger, otps: otps, tokens: tokens}
}

type phoneRequest struct {
	PhoneNumber string `json:"phoneNumber" binding:"required"`
}

// SendOTP maneja POST /auth/send-otp.
func (h *AuthHandler) SendOTP(c *gin.Context) {
	h.issue(c, "OTP sent successfully")
}

// ResendOTP maneja POST /auth/resend-otp.
func (h *AuthHandler) ResendOTP(c *gin.Context) {
	h.issue(c, "OTP resent successfully")
}

func (h *AuthHandler) issue(c *gin.Context, okMessage string) {
	var req phoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid otp request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"message": "Phone number is required"})
		return
	}

	if err := h.otps.Request(c.Request.Context(), req.PhoneNumber); err != nil {
		switch {
		case errors.Is(err, ErrInvalidPhone):
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid phone number"})
		case errors.Is(err, ErrRateLimited):
			c.JSON(http.StatusTooManyRequests, gin.H{"message": "Too many OTP requests. Please try again later."})
		case errors.Is(err, ErrSendFailure):
			c.JSON(http.StatusServiceUnavailable, domain.MessageResponse{Success: false, Message: "Failed to send OTP"})
		default:
			h.logger.Error("request otp failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not send otp"})
		}
		return
	}

	c.JSON(http.StatusOK, domain.MessageResponse{Success: true, Message: okMessage})
}

// VerifyOTP maneja POST /auth/verify-otp.
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req struct {
		PhoneNumber string `json:"phoneNumber" binding:"required"`
		OTP         string `json:"otp" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid otp verify request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"message": "Phone number and OTP are required"})
		return
	}

	if err := h.otps.Verify(c.Request.Context(), req.PhoneNumber, req.OTP); err != nil {
		switch {
		case errors.Is(err, ErrInvalidPhone):
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid phone number"})
		case errors.Is(err, ErrOTPNotRequested):
			c.JSON(http.StatusBadRequest, gin.H{"message": "OTP not requested"})
		case errors.Is(err, ErrOTPExpired):
			c.JSON(http.StatusBadRequest, gin.H{"message": "OTP expired"})
		case errors.Is(err, ErrOTPInvalid):
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid OTP"})
		default:
			h.logger.Error("verify otp failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not verify otp"})
		}
		return
	}

	phone := service.CleanPhoneNumber(req.PhoneNumber)
	token, err := h.tokens.Issue(phone)
	if err != nil {
		h.logger.Error("token issue failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
		return
	}
	c.JSON(http.StatusOK, domain.AuthResponse{Token: token, Phone: phone})
}
