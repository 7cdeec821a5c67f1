package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-portal/internal/models"
	"github.com/noah-isme/campus-portal/internal/resolver"
	appErrors "github.com/noah-isme/campus-portal/pkg/errors"
)

type detailGateway interface {
	GetStudentByID(ctx context.Context, id int64) (models.Student, bool, error)
	GetCourseByID(ctx context.Context, id int64) (models.Course, bool, error)
	GetUniversityByID(ctx context.Context, id int64) (models.University, bool, error)
	ListCourses(ctx context.Context) ([]models.Course, error)
}

// DetailService serves the single entity pages.
type DetailService struct {
	gateway  detailGateway
	resolver *resolver.Resolver
	logger   *zap.Logger
}

// NewDetailService constructs the detail service. A nil enrollments source falls back
// to the bundled sample table.
func NewDetailService(gateway detailGateway, enrollments resolver.EnrollmentSource, logger *zap.Logger) *DetailService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DetailService{
		gateway:  gateway,
		resolver: resolver.New(gateway, gateway, enrollments, nil, logger),
		logger:   logger,
	}
}

// Student returns the student with its university and enrolled courses.
func (s *DetailService) Student(ctx context.Context, id int64) (*models.StudentDetail, error) {
	student, found, err := s.gateway.GetStudentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, notFound(models.KindStudent, id)
	}

	detail := &models.StudentDetail{Student: student, Courses: []models.Course{}}
	uni, found, err := s.resolver.ResolveUniversity(ctx, student)
	if err != nil {
		s.logger.Warn("resolve university failed", zap.Int64("student_id", id), zap.Error(err))
	} else if found {
		detail.University = &uni
	}

	courses, err := s.resolver.ResolveCoursesForStudent(ctx, id)
	if err != nil {
		s.logger.Warn("resolve courses failed", zap.Int64("student_id", id), zap.Error(err))
	} else {
		detail.Courses = courses
	}
	return detail, nil
}

// Course returns one course.
func (s *DetailService) Course(ctx context.Context, id int64) (*models.Course, error) {
	course, found, err := s.gateway.GetCourseByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, notFound(models.KindCourse, id)
	}
	return &course, nil
}

// University returns one university.
func (s *DetailService) University(ctx context.Context, id int64) (*models.University, error) {
	uni, found, err := s.gateway.GetUniversityByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, notFound(models.KindUniversity, id)
	}
	return &uni, nil
}

func notFound(kind models.Kind, id int64) error {
	return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("%s %d not found", kind, id))
}
