package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	coursedomain "github.com/pulsehub/pulsehub/internal/course/domain"
	"github.com/pulsehub/pulsehub/internal/spacectx"
)

type createCourseRequest struct {
	ChannelID string `json:"channel_id"`
	Title     string `json:"title"`
	Published bool   `json:"published"`
}

func (s *Server) CreateCourse(c *gin.Context) {
	var req createCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	spaceID, _ := spacectx.SpaceIDFromContext(c.Request.Context())
	course, err := s.courseSvc.Create(c.Request.Context(), coursedomain.CreateCourseRequest{
		SpaceID:   spaceID.String(),
		ChannelID: req.ChannelID,
		Title:     req.Title,
		Published: req.Published,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": course})
}

func (s *Server) GetCourse(c *gin.Context) {
	course, err := s.courseSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": course})
}

func (s *Server) ListCourses(c *gin.Context) {
	spaceID, _ := spacectx.SpaceIDFromContext(c.Request.Context())
	courses, err := s.courseSvc.List(c.Request.Context(), spaceID.String())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": courses})
}

// EnrollCourse enrolls the caller without payment. Paywalled courses
// go through PurchaseCourse, which grants the enrollment after the
// gateway confirms.
func (s *Server) EnrollCourse(c *gin.Context) {
	enrollment, err := s.courseSvc.Enroll(c.Request.Context(), c.Param("id"), currentUserID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": enrollment})
}

func (s *Server) ListMyEnrollments(c *gin.Context) {
	enrollments, err := s.courseSvc.ListEnrollments(c.Request.Context(), currentUserID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": enrollments})
}

func isCourseValidationError(err error) bool {
	switch {
	case errors.Is(err, coursedomain.ErrInvalidCourse),
		errors.Is(err, coursedomain.ErrInvalidSpace),
		errors.Is(err, coursedomain.ErrInvalidChannel),
		errors.Is(err, coursedomain.ErrInvalidTitle),
		errors.Is(err, coursedomain.ErrInvalidUser),
		errors.Is(err, coursedomain.ErrPaywalled):
		return true
	default:
		return false
	}
}
