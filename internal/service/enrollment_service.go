package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-portal/internal/models"
	"github.com/noah-isme/campus-portal/internal/resolver"
)

// EnrollmentService serves the randomized course roster view.
type EnrollmentService struct {
	simulator *resolver.Simulator
	logger    *zap.Logger
}

// NewEnrollmentService constructs the enrollment service.
func NewEnrollmentService(simulator *resolver.Simulator, logger *zap.Logger) *EnrollmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{simulator: simulator, logger: logger}
}

// CoursesWithStudents returns every course with a random set of students. The result is
// for display only and differs on every call.
func (s *EnrollmentService) CoursesWithStudents(ctx context.Context) ([]models.CourseWithStudents, error) {
	out, err := s.simulator.CoursesWithStudents(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("simulated enrollments", zap.Int("courses", len(out)))
	return out, nil
}
