package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	spacedomain "github.com/pulsehub/pulsehub/internal/space/domain"
)

type createSpaceRequest struct {
	Name string `json:"name"`
}

func (s *Server) CreateSpace(c *gin.Context) {
	var req createSpaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	space, err := s.spaceSvc.Create(c.Request.Context(), spacedomain.CreateSpaceRequest{
		Name:    req.Name,
		OwnerID: currentUserID(c),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": space})
}

func (s *Server) GetSpace(c *gin.Context) {
	idOrSlug := strings.TrimSpace(c.Param("idOrSlug"))

	req := spacedomain.GetSpaceRequest{Slug: idOrSlug}
	// numeric values are treated as ids, everything else as a slug
	if _, err := parseSnowflakeParam(idOrSlug); err == nil {
		req = spacedomain.GetSpaceRequest{ID: idOrSlug}
	}

	space, err := s.spaceSvc.Get(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": space})
}

type addMemberRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

func (s *Server) AddSpaceMember(c *gin.Context) {
	var req addMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	member, err := s.spaceSvc.AddMember(c.Request.Context(), spacedomain.AddMemberRequest{
		UserID: req.UserID,
		Role:   req.Role,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": member})
}

func (s *Server) RemoveSpaceMember(c *gin.Context) {
	if err := s.spaceSvc.RemoveMember(c.Request.Context(), c.Param("userId")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"removed": true}})
}

func (s *Server) ListSpaceMembers(c *gin.Context) {
	members, err := s.spaceSvc.ListMembers(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": members})
}

type createChannelRequest struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
}

func (s *Server) CreateChannel(c *gin.Context) {
	var req createChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	channel, err := s.spaceSvc.CreateChannel(c.Request.Context(), spacedomain.CreateChannelRequest{
		Kind: req.Kind,
		Name: req.Name,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": channel})
}

func (s *Server) ListChannels(c *gin.Context) {
	channels, err := s.spaceSvc.ListChannels(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": channels})
}

func isSpaceValidationError(err error) bool {
	switch {
	case errors.Is(err, spacedomain.ErrInvalidSpace),
		errors.Is(err, spacedomain.ErrInvalidName),
		errors.Is(err, spacedomain.ErrInvalidUser),
		errors.Is(err, spacedomain.ErrInvalidRole),
		errors.Is(err, spacedomain.ErrInvalidKind):
		return true
	default:
		return false
	}
}
