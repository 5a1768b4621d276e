package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"campus/internal/attendance"
	"campus/internal/auth"
	"campus/internal/catalog"
	"campus/internal/enrollment"
)

// Handler exposes the student-facing enrollment and attendance routes.
type Handler struct {
	courses  catalog.Reader
	enrolls  *enrollment.Service
	checkins *attendance.Service
}

// New creates a handler.
func New(courses catalog.Reader, enrolls *enrollment.Service, checkins *attendance.Service) *Handler {
	return &Handler{courses: courses, enrolls: enrolls, checkins: checkins}
}

// Register mounts the routes on an authenticated group.
func (h *Handler) Register(g *gin.RouterGroup) {
	g.GET("/courses/available", h.ListAvailableCourses)
	g.POST("/courses/enroll", h.Enroll)
	g.POST("/courses/drop", h.Drop)
	g.GET("/courses/hours", h.RemainingHours)
	g.POST("/checkins", h.CheckIn)
	g.GET("/checkins", h.ListAttendance)
}

// errStatus maps domain errors to a status code and a stable kind the
// client can switch on.
func errStatus(err error) (int, string) {
	switch {
	case errors.Is(err, enrollment.ErrCourseUnavailable):
		return http.StatusNotFound, "course_unavailable"
	case errors.Is(err, enrollment.ErrAlreadyEnrolled):
		return http.StatusConflict, "already_enrolled"
	case errors.Is(err, enrollment.ErrCapacityExceeded):
		return http.StatusConflict, "capacity_exceeded"
	case errors.Is(err, enrollment.ErrNotEnrolled):
		return http.StatusNotFound, "not_enrolled"
	case errors.Is(err, attendance.ErrDuplicateCheckIn):
		return http.StatusConflict, "duplicate_checkin"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func abortWithError(c *gin.Context, err error) {
	status, kind := errStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg, "kind": kind})
}

// ListAvailableCourses returns courses open for enrollment.
func (h *Handler) ListAvailableCourses(c *gin.Context) {
	courses, err := h.courses.ListAvailable(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	if courses == nil {
		courses = []catalog.Course{}
	}
	c.JSON(http.StatusOK, gin.H{"courses": courses})
}

type courseRequest struct {
	CourseID string `json:"courseId" binding:"required"`
}

// Enroll admits the caller into a course.
func (h *Handler) Enroll(c *gin.Context) {
	var req courseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": "bad_request"})
		return
	}
	sel, err := h.enrolls.Enroll(c.Request.Context(), auth.UserID(c), req.CourseID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "selection": sel})
}

// Drop withdraws the caller from a course.
func (h *Handler) Drop(c *gin.Context) {
	var req courseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": "bad_request"})
		return
	}
	sel, err := h.enrolls.Drop(c.Request.Context(), auth.UserID(c), req.CourseID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "selection": sel})
}

// RemainingHours reports total vs remaining hours per enrolled course.
func (h *Handler) RemainingHours(c *gin.Context) {
	report, err := h.enrolls.RemainingHours(c.Request.Context(), auth.UserID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"courses": report})
}

type checkInRequest struct {
	CourseID   string `json:"courseId" binding:"required"`
	Date       string `json:"date"`
	Location   string `json:"location"`
	DeviceInfo string `json:"deviceInfo"`
}

// CheckIn records today's attendance for a course. An explicit date is
// accepted for backfill tooling; normal clients omit it.
func (h *Handler) CheckIn(c *gin.Context) {
	var req checkInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": "bad_request"})
		return
	}
	var day time.Time
	if req.Date != "" {
		parsed, err := time.Parse(attendance.DateLayout, req.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date: want YYYY-MM-DD", "kind": "bad_request"})
			return
		}
		day = parsed
	}
	rec, err := h.checkins.CheckIn(c.Request.Context(), auth.UserID(c), req.CourseID, day, req.Location, req.DeviceInfo)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "checked in", "checkin": rec})
}

// ListAttendance returns the caller's check-in history.
func (h *Handler) ListAttendance(c *gin.Context) {
	records, err := h.checkins.ListAttendance(
		c.Request.Context(),
		auth.UserID(c),
		c.Query("courseId"),
		c.Query("startDate"),
		c.Query("endDate"),
	)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": "bad_request"})
		return
	}
	if records == nil {
		records = []attendance.CheckIn{}
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}
