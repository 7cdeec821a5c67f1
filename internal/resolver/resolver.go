// Package resolver follows cross-entity references: a student's university and the
// courses a student is enrolled in.
package resolver

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-portal/internal/models"
	"github.com/noah-isme/campus-portal/internal/store"
)

// UniversityLookup fetches a single university from the gateway.
type UniversityLookup interface {
	GetUniversityByID(ctx context.Context, id int64) (models.University, bool, error)
}

// CourseLister lists courses from the gateway.
type CourseLister interface {
	ListCourses(ctx context.Context) ([]models.Course, error)
}

// EnrollmentSource provides StudentCourse rows.
type EnrollmentSource interface {
	Enrollments(ctx context.Context) ([]models.StudentCourse, error)
}

// Resolver resolves relationships for one page session.
type Resolver struct {
	universities UniversityLookup
	courses      CourseLister
	enrollments  EnrollmentSource
	known        *store.Store[models.University]
	logger       *zap.Logger
}

// New constructs a Resolver. known may be nil; when it is Ready it is consulted before
// the gateway and used to detect stale embedded universities.
func New(universities UniversityLookup, courses CourseLister, enrollments EnrollmentSource, known *store.Store[models.University], logger *zap.Logger) *Resolver {
	if enrollments == nil {
		enrollments = SampleEnrollments()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{universities: universities, courses: courses, enrollments: enrollments, known: known, logger: logger}
}

// ResolveUniversity returns the student's embedded university when it is present and
// agrees with the session's university store, and looks it up otherwise.
func (r *Resolver) ResolveUniversity(ctx context.Context, s models.Student) (models.University, bool, error) {
	embedded := s.University
	if embedded.ID > 0 && embedded.Name != "" && !r.stale(embedded) {
		return embedded, true, nil
	}
	if embedded.ID <= 0 {
		return models.University{}, false, nil
	}
	return r.ResolveUniversityByID(ctx, embedded.ID)
}

// ResolveUniversityByID consults the session store and falls back to the gateway.
func (r *Resolver) ResolveUniversityByID(ctx context.Context, id int64) (models.University, bool, error) {
	if r.known != nil && r.known.State().Status == store.Ready {
		if u, ok := r.known.Get(id); ok {
			return u, true, nil
		}
	}
	return r.universities.GetUniversityByID(ctx, id)
}

func (r *Resolver) stale(u models.University) bool {
	if r.known == nil || r.known.State().Status != store.Ready {
		return false
	}
	current, ok := r.known.Get(u.ID)
	return !ok || current.Name != u.Name
}

// ResolveCoursesForStudent returns the courses the student is enrolled in, in course
// list order.
func (r *Resolver) ResolveCoursesForStudent(ctx context.Context, studentID int64) ([]models.Course, error) {
	rows, err := r.enrollments.Enrollments(ctx)
	if err != nil {
		return nil, err
	}
	enrolled := make(map[int64]struct{})
	for _, row := range rows {
		if row.StudentID == studentID {
			enrolled[row.CourseID] = struct{}{}
		}
	}
	if len(enrolled) == 0 {
		return []models.Course{}, nil
	}
	courses, err := r.courses.ListCourses(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Course, 0, len(enrolled))
	for _, c := range courses {
		if _, ok := enrolled[c.ID]; ok {
			out = append(out, c)
		}
	}
	r.logger.Debug("resolved student courses", zap.Int64("student_id", studentID), zap.Int("courses", len(out)))
	return out, nil
}

// StaticEnrollments is an in-memory, read-only EnrollmentSource.
type StaticEnrollments struct {
	mu   sync.RWMutex
	rows []models.StudentCourse
}

// NewStaticEnrollments copies rows into a new source.
func NewStaticEnrollments(rows []models.StudentCourse) *StaticEnrollments {
	return &StaticEnrollments{rows: append([]models.StudentCourse(nil), rows...)}
}

// Enrollments returns a copy of the rows.
func (s *StaticEnrollments) Enrollments(context.Context) ([]models.StudentCourse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.StudentCourse(nil), s.rows...), nil
}

// SampleEnrollments is the fallback enrollment table used when no backend provides one.
func SampleEnrollments() *StaticEnrollments {
	return NewStaticEnrollments([]models.StudentCourse{
		{StudentID: 101, CourseID: 201},
		{StudentID: 101, CourseID: 202},
		{StudentID: 102, CourseID: 201},
		{StudentID: 102, CourseID: 203},
		{StudentID: 103, CourseID: 202},
		{StudentID: 104, CourseID: 204},
		{StudentID: 105, CourseID: 202},
		{StudentID: 105, CourseID: 203},
	})
}
