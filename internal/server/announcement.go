package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	announcementdomain "github.com/pulsehub/pulsehub/internal/announcement/domain"
	"github.com/pulsehub/pulsehub/internal/spacectx"
)

type createAnnouncementRequest struct {
	Audience    string    `json:"audience"`
	Subject     string    `json:"subject"`
	Body        string    `json:"body"`
	ScheduledAt time.Time `json:"scheduled_at"`
}

func (s *Server) CreateAnnouncement(c *gin.Context) {
	var req createAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	spaceID, _ := spacectx.SpaceIDFromContext(c.Request.Context())
	announcement, err := s.announcementSvc.Create(c.Request.Context(), announcementdomain.CreateAnnouncementRequest{
		SpaceID:     spaceID.String(),
		EventID:     c.Param("id"),
		Audience:    req.Audience,
		Subject:     req.Subject,
		Body:        req.Body,
		ScheduledAt: req.ScheduledAt,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": announcement})
}

func (s *Server) ListAnnouncements(c *gin.Context) {
	announcements, err := s.announcementSvc.ListByEvent(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": announcements})
}

func (s *Server) DeleteAnnouncement(c *gin.Context) {
	if err := s.announcementSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}

func isAnnouncementValidationError(err error) bool {
	switch {
	case errors.Is(err, announcementdomain.ErrInvalidSpace),
		errors.Is(err, announcementdomain.ErrInvalidEvent),
		errors.Is(err, announcementdomain.ErrInvalidAudience),
		errors.Is(err, announcementdomain.ErrInvalidSubject),
		errors.Is(err, announcementdomain.ErrInvalidSchedule):
		return true
	default:
		return false
	}
}
