package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	ticketdomain "github.com/pulsehub/pulsehub/internal/ticket/domain"
)

func (s *Server) RequestTicket(c *gin.Context) {
	result, err := s.ticketSvc.RequestTicket(c.Request.Context(), c.Param("id"), currentUserID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

func isTicketValidationError(err error) bool {
	switch {
	case errors.Is(err, ticketdomain.ErrInvalidEvent),
		errors.Is(err, ticketdomain.ErrInvalidUser),
		errors.Is(err, ticketdomain.ErrEventFull),
		errors.Is(err, ticketdomain.ErrPayoutNotConfigured):
		return true
	default:
		return false
	}
}
