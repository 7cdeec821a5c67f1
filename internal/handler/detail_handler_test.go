package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-portal/internal/models"
	appErrors "github.com/noah-isme/campus-portal/pkg/errors"
)

type detailServiceMock struct {
	lastID int64
	err    error
}

func (m *detailServiceMock) Student(_ context.Context, id int64) (*models.StudentDetail, error) {
	m.lastID = id
	if m.err != nil {
		return nil, m.err
	}
	return &models.StudentDetail{Student: models.Student{ID: id}, Courses: []models.Course{}}, nil
}

func (m *detailServiceMock) Course(_ context.Context, id int64) (*models.Course, error) {
	m.lastID = id
	return &models.Course{ID: id}, m.err
}

func (m *detailServiceMock) University(_ context.Context, id int64) (*models.University, error) {
	m.lastID = id
	return &models.University{ID: id}, m.err
}

type enrollmentServiceMock struct {
	err error
}

func (m *enrollmentServiceMock) CoursesWithStudents(context.Context) ([]models.CourseWithStudents, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []models.CourseWithStudents{{Course: models.Course{ID: 201}}}, nil
}

func TestDetailHandlerStudent(t *testing.T) {
	mockSvc := &detailServiceMock{}
	h := NewDetailHandler(mockSvc, &enrollmentServiceMock{})

	c, w := newTestContext(http.MethodGet, "/students/101", "")
	c.Params = gin.Params{{Key: "id", Value: "101"}}
	h.Student(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(101), mockSvc.lastID)
}

func TestDetailHandlerInvalidID(t *testing.T) {
	mockSvc := &detailServiceMock{}
	h := NewDetailHandler(mockSvc, &enrollmentServiceMock{})

	c, w := newTestContext(http.MethodGet, "/courses/x", "")
	c.Params = gin.Params{{Key: "id", Value: "x"}}
	h.Course(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, mockSvc.lastID)
}

func TestDetailHandlerNotFound(t *testing.T) {
	h := NewDetailHandler(&detailServiceMock{err: appErrors.ErrNotFound}, &enrollmentServiceMock{})

	c, w := newTestContext(http.MethodGet, "/universities/3", "")
	c.Params = gin.Params{{Key: "id", Value: "3"}}
	h.University(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDetailHandlerEnrollments(t *testing.T) {
	h := NewDetailHandler(&detailServiceMock{}, &enrollmentServiceMock{})
	c, w := newTestContext(http.MethodGet, "/courses/enrollments", "")
	h.Enrollments(c)

	require.Equal(t, http.StatusOK, w.Code)
	payload := decodeEnvelope(t, w)
	assert.Equal(t, true, payload["meta"].(map[string]interface{})["simulated"])

	h = NewDetailHandler(&detailServiceMock{}, &enrollmentServiceMock{err: appErrors.ErrSimulationDisabled})
	c, w = newTestContext(http.MethodGet, "/courses/enrollments", "")
	h.Enrollments(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
