package devserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"carwash-client/internal/domain"
)

// BookingHandler atiende /bookings.
type BookingHandler struct {
	logger *zap.Logger
	store  *MemoryStore
	now    func() time.Time
}

func NewBookingHandler(logger *zap.Logger, store *MemoryStore) *BookingHandler {
	return &BookingHandler{
		logger: logger,
		store:  store,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// ListBookings maneja GET /bookings.
func (h *BookingHandler) ListBookings(c *gin.Context) {
	claims, _ := GetAuthClaims(c)
	c.JSON(http.StatusOK, h.store.Bookings(claims.Phone, ""))
}

// ListByStatus maneja GET /bookings/status/:status.
func (h *BookingHandler) ListByStatus(c *gin.Context) {
	claims, _ := GetAuthClaims(c)
	status := domain.BookingStatus(strings.ToUpper(c.Param("status")))
	if !status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid booking status"})
		return
	}
	c.JSON(http.StatusOK, h.store.Bookings(claims.Phone, status))
}

// CreateBooking maneja POST /bookings?userName=...
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	claims, _ := GetAuthClaims(c)

	var req domain.BookingInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid booking request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid booking data"})
		return
	}
	userName := strings.TrimSpace(c.Query("userName"))
	if userName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "userName is required"})
		return
	}
	if !validServiceType(req.ServiceType) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid service type"})
		return
	}
	if strings.TrimSpace(req.AddressLine1) == "" || strings.TrimSpace(req.City) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Address is required"})
		return
	}

	b := domain.Booking{
		ID:                  uuid.NewString(),
		ServiceType:         req.ServiceType,
		Price:               req.Price,
		Status:              domain.BookingPending,
		ScheduledDateTime:   req.ScheduledDateTime,
		AddressLine1:        req.AddressLine1,
		AddressLine2:        req.AddressLine2,
		City:                req.City,
		State:               req.State,
		PostalCode:          req.PostalCode,
		Latitude:            req.Latitude,
		Longitude:           req.Longitude,
		VehicleType:         req.VehicleType,
		VehicleNumber:       req.VehicleNumber,
		SpecialInstructions: req.SpecialInstructions,
		CreatedAt:           h.now(),
	}
	h.store.SaveBooking(claims.Phone, b)
	h.logger.Info("booking created",
		zap.String("booking_id", b.ID),
		zap.String("user_name", userName),
		zap.String("service_type", string(b.ServiceType)),
	)
	c.JSON(http.StatusCreated, b)
}

// GetBooking maneja GET /bookings/:id.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	claims, _ := GetAuthClaims(c)
	b, err := h.store.Booking(claims.Phone, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Booking not found"})
		return
	}
	c.JSON(http.StatusOK, b)
}

// CancelBooking maneja DELETE /bookings/:id. La reserva queda CANCELLED.
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	claims, _ := GetAuthClaims(c)
	b, err := h.store.Booking(claims.Phone, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Booking not found"})
		return
	}
	if !b.Status.Cancellable() {
		c.JSON(http.StatusConflict, domain.MessageResponse{Success: false, Message: "Only pending bookings can be cancelled"})
		return
	}
	if _, err := h.store.UpdateBookingStatus(claims.Phone, b.ID, domain.BookingCancelled); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Booking not found"})
		return
	}
	c.JSON(http.StatusOK, domain.MessageResponse{Success: true, Message: "Booking cancelled"})
}

// UpdateStatus maneja PATCH /bookings/:id/status.
func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	claims, _ := GetAuthClaims(c)

	var req struct {
		Status domain.BookingStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || !req.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid booking status"})
		return
	}
	b, err := h.store.UpdateBookingStatus(claims.Phone, c.Param("id"), req.Status)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Booking not found"})
		return
	}
	c.JSON(http.StatusOK, b)
}

func validServiceType(st domain.ServiceType) bool {
	for _, known := range domain.ServiceTypes {
		if st == known {
			return true
		}
	}
	return false
}
