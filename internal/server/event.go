package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	eventdomain "github.com/pulsehub/pulsehub/internal/event/domain"
)

type createEventRequest struct {
	ChannelID    string     `json:"channel_id"`
	Title        string     `json:"title"`
	Type         string     `json:"type"`
	Location     string     `json:"location"`
	StartsAt     time.Time  `json:"starts_at"`
	EndsAt       *time.Time `json:"ends_at"`
	PriceCents   int64      `json:"price_cents"`
	Currency     string     `json:"currency"`
	MaxAttendees *int       `json:"max_attendees"`

	EmailReminders *bool `json:"email_reminders"`
	InAppReminders *bool `json:"in_app_reminders"`
}

func reminderSettings(email, inApp *bool) *eventdomain.EventSettings {
	if email == nil && inApp == nil {
		return nil
	}
	settings := eventdomain.DefaultSettings()
	if email != nil {
		settings.Reminders.EmailEnabled = *email
	}
	if inApp != nil {
		settings.Reminders.InAppEnabled = *inApp
	}
	return &settings
}

func (s *Server) CreateEvent(c *gin.Context) {
	var req createEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	event, err := s.eventSvc.Create(c.Request.Context(), eventdomain.CreateEventRequest{
		ChannelID:    req.ChannelID,
		OwnerID:      currentUserID(c),
		Title:        req.Title,
		Type:         req.Type,
		Location:     req.Location,
		StartsAt:     req.StartsAt,
		EndsAt:       req.EndsAt,
		PriceCents:   req.PriceCents,
		Currency:     req.Currency,
		MaxAttendees: req.MaxAttendees,
		Settings:     reminderSettings(req.EmailReminders, req.InAppReminders),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": event})
}

func (s *Server) GetEvent(c *gin.Context) {
	event, err := s.eventSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": event})
}

type updateEventRequest struct {
	Title        string     `json:"title"`
	Type         string     `json:"type"`
	Location     string     `json:"location"`
	StartsAt     *time.Time `json:"starts_at"`
	EndsAt       *time.Time `json:"ends_at"`
	PriceCents   *int64     `json:"price_cents"`
	MaxAttendees *int       `json:"max_attendees"`

	EmailReminders *bool `json:"email_reminders"`
	InAppReminders *bool `json:"in_app_reminders"`
}

func (s *Server) UpdateEvent(c *gin.Context) {
	var req updateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	event, err := s.eventSvc.Update(c.Request.Context(), eventdomain.UpdateEventRequest{
		ID:           c.Param("id"),
		Title:        req.Title,
		Type:         req.Type,
		Location:     req.Location,
		StartsAt:     req.StartsAt,
		EndsAt:       req.EndsAt,
		PriceCents:   req.PriceCents,
		MaxAttendees: req.MaxAttendees,
		Settings:     reminderSettings(req.EmailReminders, req.InAppReminders),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": event})
}

func (s *Server) DeleteEvent(c *gin.Context) {
	if err := s.eventSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}

func (s *Server) ListEvents(c *gin.Context) {
	events, err := s.eventSvc.List(c.Request.Context(), eventdomain.ListEventsRequest{
		From: queryTime(c, "from"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": events})
}

func isEventValidationError(err error) bool {
	switch {
	case errors.Is(err, eventdomain.ErrInvalidSpace),
		errors.Is(err, eventdomain.ErrInvalidChannel),
		errors.Is(err, eventdomain.ErrInvalidTitle),
		errors.Is(err, eventdomain.ErrInvalidType),
		errors.Is(err, eventdomain.ErrInvalidStart),
		errors.Is(err, eventdomain.ErrInvalidID):
		return true
	default:
		return false
	}
}
