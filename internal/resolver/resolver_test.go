package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-portal/internal/gateway"
	"github.com/noah-isme/campus-portal/internal/models"
	"github.com/noah-isme/campus-portal/internal/store"
	appErrors "github.com/noah-isme/campus-portal/pkg/errors"
)

type gatewayStub struct {
	universities map[int64]models.University
	courses      []models.Course
	lookups      int
	lists        int
	listErr      error
}

func (g *gatewayStub) GetUniversityByID(_ context.Context, id int64) (models.University, bool, error) {
	g.lookups++
	u, ok := g.universities[id]
	return u, ok, nil
}

func (g *gatewayStub) ListCourses(context.Context) ([]models.Course, error) {
	g.lists++
	return g.courses, g.listErr
}

var sampleCourses = []models.Course{
	{ID: 201, Name: "Software Development Engineering"},
	{ID: 202, Name: "Data Science Fundamentals"},
	{ID: 203, Name: "Intelligent Systems"},
	{ID: 204, Name: "Microservices Architecture"},
}

func readyUniversities(t *testing.T, unis ...models.University) *store.Store[models.University] {
	t.Helper()
	st := store.New[models.University](models.KindUniversity)
	require.NoError(t, st.Load(context.Background(), func(context.Context) ([]models.University, error) {
		return unis, nil
	}))
	return st
}

func TestResolveUniversityUsesEmbeddedSnapshot(t *testing.T) {
	gw := &gatewayStub{}
	r := New(gw, gw, nil, nil, nil)

	u, found, err := r.ResolveUniversity(context.Background(), models.Student{ID: 1, University: models.University{ID: 1, Name: "A"}})
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "A", u.Name)
	assert.Zero(t, gw.lookups)
}

func TestResolveUniversityReplacesStaleSnapshot(t *testing.T) {
	gw := &gatewayStub{}
	known := readyUniversities(t, models.University{ID: 1, Name: "Renamed"})
	r := New(gw, gw, nil, known, nil)

	u, found, err := r.ResolveUniversity(context.Background(), models.Student{University: models.University{ID: 1, Name: "Old"}})
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Renamed", u.Name)
	assert.Zero(t, gw.lookups)
}

func TestResolveUniversityFallsBackToGateway(t *testing.T) {
	gw := &gatewayStub{universities: map[int64]models.University{2: {ID: 2, Name: "University of Algiers 1"}}}
	r := New(gw, gw, nil, nil, nil)

	u, found, err := r.ResolveUniversity(context.Background(), models.Student{University: models.University{ID: 2}})
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "University of Algiers 1", u.Name)
	assert.Equal(t, 1, gw.lookups)

	_, found, err = r.ResolveUniversityByID(context.Background(), 3)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestResolveUniversityWithoutReference(t *testing.T) {
	gw := &gatewayStub{}
	r := New(gw, gw, nil, nil, nil)
	_, found, err := r.ResolveUniversity(context.Background(), models.Student{ID: 1})
	require.NoError(t, err)
	assert.False(t, found)
	assert.Zero(t, gw.lookups)
}

func TestResolveCoursesKeepsCourseOrder(t *testing.T) {
	gw := &gatewayStub{courses: sampleCourses}
	enrollments := NewStaticEnrollments([]models.StudentCourse{
		{StudentID: 1, CourseID: 204},
		{StudentID: 1, CourseID: 201},
		{StudentID: 2, CourseID: 202},
		{StudentID: 1, CourseID: 204},
	})
	r := New(gw, gw, enrollments, nil, nil)

	courses, err := r.ResolveCoursesForStudent(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Equal(t, int64(201), courses[0].ID)
	assert.Equal(t, int64(204), courses[1].ID)
}

func TestResolveCoursesSampleData(t *testing.T) {
	gw := &gatewayStub{courses: sampleCourses}
	r := New(gw, gw, nil, nil, nil)

	courses, err := r.ResolveCoursesForStudent(context.Background(), 105)
	require.NoError(t, err)
	ids := []int64{}
	for _, c := range courses {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []int64{202, 203}, ids)

	courses, err = r.ResolveCoursesForStudent(context.Background(), 999)
	require.NoError(t, err)
	assert.Empty(t, courses)
	assert.Equal(t, 1, gw.lists, "no enrollment means no course fetch")
}

func TestResolveCoursesPropagatesListError(t *testing.T) {
	gw := &gatewayStub{listErr: errors.New("down")}
	r := New(gw, gw, nil, nil, nil)
	_, err := r.ResolveCoursesForStudent(context.Background(), 101)
	assert.Error(t, err)
}

// querierStub answers every query with the data member of a canned GraphQL response.
type querierStub struct {
	data  string
	calls int
}

func (q *querierStub) Query(_ context.Context, _ gateway.GraphQLRequest, dest interface{}) error {
	q.calls++
	data := q.data
	if data == "" {
		data = sampleGraphData
	}
	return json.Unmarshal([]byte(data), dest)
}

const sampleGraphData = `{
  "allCourses": [
    {"id": 201, "name": "Software Development Engineering"},
    {"id": 202, "name": "Data Science Fundamentals"},
    {"id": 203, "name": "Intelligent Systems"},
    {"id": 204, "name": "Microservices Architecture"}
  ],
  "allStudents": [
    {"id": 101, "name": "Amina"},
    {"id": 102, "name": "Karim"},
    {"id": 103, "name": "Fatima"}
  ]
}`

func TestSimulatorDisabled(t *testing.T) {
	q := &querierStub{}
	sim := NewSimulator(false, q, nil)
	_, err := sim.CoursesWithStudents(context.Background())
	assert.ErrorIs(t, err, appErrors.ErrSimulationDisabled)
	assert.Zero(t, q.calls)
}

func TestSimulatorAssignsDistinctSubsets(t *testing.T) {
	q := &querierStub{}
	sim := NewSimulator(true, q, rand.New(rand.NewSource(7)))

	for i := 0; i < 20; i++ {
		out, err := sim.CoursesWithStudents(context.Background())
		require.NoError(t, err)
		require.Len(t, out, len(sampleCourses))
		for j, c := range out {
			assert.Equal(t, sampleCourses[j].ID, c.ID)
			assert.LessOrEqual(t, len(c.Students), 3)
			seen := map[int64]bool{}
			for _, s := range c.Students {
				assert.False(t, seen[s.ID], "student %d picked twice", s.ID)
				seen[s.ID] = true
			}
		}
	}
}

func TestSimulatorDoesNotTouchInputsOrEnrollments(t *testing.T) {
	enrollments := SampleEnrollments()
	before, _ := enrollments.Enrollments(context.Background())

	students := []models.Student{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}}
	original := append([]models.Student(nil), students...)
	sim := NewSimulator(true, &querierStub{}, rand.New(rand.NewSource(1)))
	_ = sim.Assign(sampleCourses, students)

	assert.Equal(t, original, students)
	after, _ := enrollments.Enrollments(context.Background())
	assert.Equal(t, before, after)
}

func TestSimulatorAcceptsGraphQLStringIDs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{
			"allCourses":[{"id":"1","name":"Algorithms","description":"","category":"CS","schedule":"Mon"}],
			"allStudents":[{"id":"5","name":"Amina","address":"Algiers","university":{"id":"2","name":"USTHB"}}]
		}}`))
	}))
	t.Cleanup(srv.Close)
	gw := gateway.New(gateway.Config{BaseURL: srv.URL, Timeout: time.Second}, srv.Client(), nil, nil)

	sim := NewSimulator(true, gw, rand.New(rand.NewSource(3)))
	out, err := sim.CoursesWithStudents(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, int64(1), out[0].ID)
	for _, st := range out[0].Students {
		assert.Equal(t, int64(5), st.ID)
		assert.Equal(t, models.University{ID: 2, Name: "USTHB"}, st.University)
	}
}

func TestSimulatorRejectsNonNumericIDs(t *testing.T) {
	q := &querierStub{data: `{"allCourses":[{"id":"abc"}],"allStudents":[]}`}
	_, err := NewSimulator(true, q, nil).CoursesWithStudents(context.Background())
	assert.Error(t, err)
}
