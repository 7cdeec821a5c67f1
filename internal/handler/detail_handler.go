package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-portal/internal/models"
	appErrors "github.com/noah-isme/campus-portal/pkg/errors"
	"github.com/noah-isme/campus-portal/pkg/response"
)

type detailService interface {
	Student(ctx context.Context, id int64) (*models.StudentDetail, error)
	Course(ctx context.Context, id int64) (*models.Course, error)
	University(ctx context.Context, id int64) (*models.University, error)
}

type enrollmentService interface {
	CoursesWithStudents(ctx context.Context) ([]models.CourseWithStudents, error)
}

// DetailHandler exposes single entity pages.
type DetailHandler struct {
	details     detailService
	enrollments enrollmentService
}

// NewDetailHandler constructs DetailHandler.
func NewDetailHandler(details detailService, enrollments enrollmentService) *DetailHandler {
	return &DetailHandler{details: details, enrollments: enrollments}
}

// Student godoc
// @Summary Student detail with university and courses
// @Tags Details
// @Produce json
// @Param id path int true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id} [get]
func (h *DetailHandler) Student(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	detail, err := h.details.Student(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail)
}

// Course godoc
// @Summary Course detail
// @Tags Details
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id} [get]
func (h *DetailHandler) Course(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	course, err := h.details.Course(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course)
}

// University godoc
// @Summary University detail
// @Tags Details
// @Produce json
// @Param id path int true "University ID"
// @Success 200 {object} response.Envelope
// @Router /universities/{id} [get]
func (h *DetailHandler) University(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	uni, err := h.details.University(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, uni)
}

// Enrollments godoc
// @Summary Courses with a simulated student roster
// @Tags Details
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /courses/enrollments [get]
func (h *DetailHandler) Enrollments(c *gin.Context) {
	courses, err := h.enrollments.CoursesWithStudents(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, map[string]interface{}{"simulated": true})
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid id"))
		return 0, false
	}
	return id, true
}
