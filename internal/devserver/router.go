package devserver

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter arma el router con la tabla de endpoints que consume el cliente.
func NewRouter(
	logger *zap.Logger,
	tokens *TokenIssuer,
	authH *AuthHandler,
	profileH *ProfileHandler,
	bookingH *BookingHandler,
) *gin.Engine {
	r := gin.New()
	r.Use(requestIDMiddleware(), zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	auth := r.Group("/auth")
	auth.POST("/send-otp", authH.SendOTP)
	auth.POST("/verify-otp", authH.VerifyOTP)
	auth.POST("/resend-otp", authH.ResendOTP)

	protected := r.Group("", BearerAuthMiddleware(tokens))

	users := protected.Group("/users/profile")
	users.GET("", profileH.GetProfile)
	users.POST("", profileH.CreateProfile)
	users.PUT("", profileH.UpdateProfile)
	users.PATCH("/location", profileH.UpdateLocation)

	bookings := protected.Group("/bookings")
	bookings.GET("", bookingH.ListBookings)
	bookings.POST("", bookingH.CreateBooking)
	bookings.GET("/status/:status", bookingH.ListByStatus)
	bookings.GET("/:id", bookingH.GetBooking)
	bookings.DELETE("/:id", bookingH.CancelBooking)
	bookings.PATCH("/:id/status", bookingH.UpdateStatus)

	return r
}

// New conecta handlers y router sobre un mismo almacen.
func New(logger *zap.Logger, tokens *TokenIssuer, otps *OTPService, store *MemoryStore) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return NewRouter(
		logger,
		tokens,
		NewAuthHandler(logger, otps, tokens),
		NewProfileHandler(logger, store),
		NewBookingHandler(logger, store),
	)
}
