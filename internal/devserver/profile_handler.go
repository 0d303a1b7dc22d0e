package devserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"carwash-client/internal/domain"
)

// ProfileHandler atiende /users/profile.
type ProfileHandler struct {
	logger *zap.Logger
	store  *MemoryStore
}

func NewProfileHandler(logger *zap.Logger, store *MemoryStore) *ProfileHandler {
	return &ProfileHandler{logger: logger, store: store}
}

// GetProfile maneja GET /users/profile. Sin perfil responde 404.
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	claims, _ := GetAuthClaims(c)
	p, err := h.store.Profile(claims.Phone)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
			return
		}
		h.logger.Error("get profile failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load profile"})
		return
	}
	c.JSON(http.StatusOK, p)
}

// CreateProfile maneja POST /users/profile.
func (h *ProfileHandler) CreateProfile(c *gin.Context) {
	h.save(c, http.StatusCreated)
}

// UpdateProfile maneja PUT /users/profile. Reemplaza el perfil completo.
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	claims, _ := GetAuthClaims(c)
	if _, err := h.store.Profile(claims.Phone); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}
	h.save(c, http.StatusOK)
}

func (h *ProfileHandler) save(c *gin.Context, status int) {
	claims, _ := GetAuthClaims(c)

	var req domain.ProfileInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid profile request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid profile data"})
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Name is required"})
		return
	}

	p := domain.Profile{
		Name:        name,
		PhoneNumber: claims.Phone,
		Address:     req.Address,
	}
	p.ProfileCompleted = profileCompleted(p)
	h.store.SaveProfile(p)
	c.JSON(status, p)
}

// UpdateLocation maneja PATCH /users/profile/location.
func (h *ProfileHandler) UpdateLocation(c *gin.Context) {
	claims, _ := GetAuthClaims(c)

	var req struct {
		Latitude  *float64 `json:"latitude" binding:"required"`
		Longitude *float64 `json:"longitude" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Latitude and longitude are required"})
		return
	}

	p, err := h.store.Profile(claims.Phone)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}
	p.Address.Latitude = req.Latitude
	p.Address.Longitude = req.Longitude
	p.ProfileCompleted = profileCompleted(p)
	h.store.SaveProfile(p)
	c.JSON(http.StatusOK, p)
}

// profileCompleted es el criterio del servidor: nombre, direccion y
// coordenadas.
func profileCompleted(p domain.Profile) bool {
	return strings.TrimSpace(p.Name) != "" &&
		strings.TrimSpace(p.Address.Line1) != "" &&
		strings.TrimSpace(p.Address.City) != "" &&
		p.Address.HasCoordinates()
}
