package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	paywalldomain "github.com/pulsehub/pulsehub/internal/paywall/domain"
	"github.com/pulsehub/pulsehub/internal/spacectx"
)

// GetPaywall looks a paywall up by the entity it prices, matching how
// the rest of the system addresses paywalls.
func (s *Server) GetPaywall(c *gin.Context) {
	paywall, err := s.paywallSvc.Get(c.Request.Context(), c.Query("entity_id"), c.Query("kind"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	// absent paywall means the entity is simply not priced
	c.JSON(http.StatusOK, gin.H{"data": paywall})
}

type upsertPaywallRequest struct {
	EntityID   string `json:"entity_id"`
	Kind       string `json:"kind"`
	PriceCents int64  `json:"price_cents"`
	Currency   string `json:"currency"`
}

func (s *Server) UpsertPaywall(c *gin.Context) {
	var req upsertPaywallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	spaceID, _ := spacectx.SpaceIDFromContext(c.Request.Context())
	paywall, err := s.paywallSvc.Upsert(c.Request.Context(), paywalldomain.UpsertPaywallRequest{
		SpaceID:    spaceID.String(),
		EntityID:   req.EntityID,
		Kind:       req.Kind,
		PriceCents: req.PriceCents,
		Currency:   req.Currency,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": paywall})
}

func (s *Server) DeletePaywall(c *gin.Context) {
	if err := s.paywallSvc.Delete(c.Request.Context(), c.Query("entity_id"), c.Query("kind")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}

func (s *Server) PurchaseCourse(c *gin.Context) {
	result, err := s.paywallSvc.InitiateCoursePurchase(c.Request.Context(), c.Param("id"), currentUserID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"purchase":     result.Purchase,
		"checkout_url": result.CheckoutURL,
	}})
}

func isPaywallValidationError(err error) bool {
	switch {
	case errors.Is(err, paywalldomain.ErrInvalidSpace),
		errors.Is(err, paywalldomain.ErrInvalidEntity),
		errors.Is(err, paywalldomain.ErrInvalidKind),
		errors.Is(err, paywalldomain.ErrInvalidPrice),
		errors.Is(err, paywalldomain.ErrInvalidUser),
		errors.Is(err, paywalldomain.ErrNotForSale),
		errors.Is(err, paywalldomain.ErrAlreadyEnrolled),
		errors.Is(err, paywalldomain.ErrPayoutNotConfigured):
		return true
	default:
		return false
	}
}
