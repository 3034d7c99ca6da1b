package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	profiledomain "github.com/pulsehub/pulsehub/internal/profile/domain"
)

func (s *Server) GetProfile(c *gin.Context) {
	profile, err := s.profileSvc.Get(c.Request.Context(), currentUserID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": profile})
}

type updateProfileRequest struct {
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
}

func (s *Server) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	profile, err := s.profileSvc.Update(c.Request.Context(), profiledomain.UpdateProfileRequest{
		UserID:      currentUserID(c),
		DisplayName: req.DisplayName,
		Email:       req.Email,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": profile})
}

type setPayoutKeyRequest struct {
	PayoutKey string `json:"payout_key"`
}

// SetPayoutKey stores the organizer's gateway sub-merchant key. Paid
// events and course sales refuse checkout until this is configured.
func (s *Server) SetPayoutKey(c *gin.Context) {
	var req setPayoutKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	profile, err := s.profileSvc.SetPayoutKey(c.Request.Context(), profiledomain.SetPayoutKeyRequest{
		UserID:    currentUserID(c),
		PayoutKey: req.PayoutKey,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": profile})
}

func isProfileValidationError(err error) bool {
	switch {
	case errors.Is(err, profiledomain.ErrInvalidUser),
		errors.Is(err, profiledomain.ErrInvalidEmail):
		return true
	default:
		return false
	}
}
