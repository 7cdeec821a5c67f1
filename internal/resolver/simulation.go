package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/noah-isme/campus-portal/internal/gateway"
	"github.com/noah-isme/campus-portal/internal/models"
	appErrors "github.com/noah-isme/campus-portal/pkg/errors"
)

const enrollmentQuery = `{
  allCourses { id name description category schedule }
  allStudents { id name address university { id name } }
}`

// Querier runs GraphQL queries against the gateway.
type Querier interface {
	Query(ctx context.Context, req gateway.GraphQLRequest, dest interface{}) error
}

// Simulator assigns random students to every course for display. Its output is never
// written anywhere; each call produces a fresh, unrelated assignment.
type Simulator struct {
	enabled bool
	querier Querier

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulator constructs a Simulator. A nil rng is seeded from the clock.
func NewSimulator(enabled bool, querier Querier, rng *rand.Rand) *Simulator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Simulator{enabled: enabled, querier: querier, rng: rng}
}

// Enabled reports whether the simulation flag is on.
func (s *Simulator) Enabled() bool { return s != nil && s.enabled }

// CoursesWithStudents loads every course and student in one query and pairs them at random.
func (s *Simulator) CoursesWithStudents(ctx context.Context) ([]models.CourseWithStudents, error) {
	if !s.Enabled() {
		return nil, appErrors.ErrSimulationDisabled
	}
	var data struct {
		AllCourses  []graphCourse  `json:"allCourses"`
		AllStudents []graphStudent `json:"allStudents"`
	}
	if err := s.querier.Query(ctx, gateway.GraphQLRequest{Query: enrollmentQuery}, &data); err != nil {
		return nil, err
	}
	courses := make([]models.Course, 0, len(data.AllCourses))
	for _, c := range data.AllCourses {
		courses = append(courses, c.model())
	}
	students := make([]models.Student, 0, len(data.AllStudents))
	for _, st := range data.AllStudents {
		students = append(students, st.model())
	}
	return s.Assign(courses, students), nil
}

// Assign gives each course a uniformly sized random subset of students, drawn from its
// own shuffle. Inputs are not modified.
func (s *Simulator) Assign(courses []models.Course, students []models.Student) []models.CourseWithStudents {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.CourseWithStudents, 0, len(courses))
	for _, c := range courses {
		n := s.rng.Intn(len(students) + 1)
		shuffled := append([]models.Student(nil), students...)
		s.rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		picked := make([]models.Student, n)
		copy(picked, shuffled[:n])
		out = append(out, models.CourseWithStudents{Course: c, Students: picked})
	}
	return out
}

// graphID decodes the GraphQL ID scalar, which servers serialize as a string, and also
// accepts a bare number.
type graphID int64

func (id *graphID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*id = 0
		return nil
	}
	raw := string(b)
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("graphql id %s is not an integer", b)
	}
	*id = graphID(n)
	return nil
}

type graphUniversity struct {
	ID   graphID `json:"id"`
	Name string  `json:"name"`
}

type graphCourse struct {
	ID          graphID `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Schedule    string  `json:"schedule"`
}

func (c graphCourse) model() models.Course {
	return models.Course{ID: int64(c.ID), Name: c.Name, Description: c.Description, Category: c.Category, Schedule: c.Schedule}
}

type graphStudent struct {
	ID         graphID         `json:"id"`
	Name       string          `json:"name"`
	Address    string          `json:"address"`
	University graphUniversity `json:"university"`
}

func (st graphStudent) model() models.Student {
	return models.Student{
		ID:         int64(st.ID),
		Name:       st.Name,
		Address:    st.Address,
		University: models.University{ID: int64(st.University.ID), Name: st.University.Name},
	}
}
