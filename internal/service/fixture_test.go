package service

import (
	"alcyxob/learnhub/internal/domain"
	"alcyxob/learnhub/internal/metrics"
	"alcyxob/learnhub/internal/repository"
	"alcyxob/learnhub/internal/repository/memory"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var samplePDF = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\ntrailer\n<<>>\n%%EOF\n")

type fixture struct {
	ctx     context.Context
	repos   repository.Repositories
	metrics *metrics.Metrics
	log     *zap.Logger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return &fixture{
		ctx:     context.Background(),
		repos:   memory.NewRepositories(memory.NewStore()),
		metrics: metrics.New(),
		log:     zap.NewNop(),
	}
}

func (f *fixture) user(t *testing.T, name string, role domain.Role) *domain.User {
	t.Helper()
	u := &domain.User{
		ExternalID: "ext_" + name,
		Name:       name,
		Email:      name + "@example.com",
		Role:       role,
	}
	id, err := f.repos.Users.Create(f.ctx, u)
	require.NoError(t, err)
	u.ID = id
	return u
}

// reload fetches the stored user so enrollment changes are visible.
func (f *fixture) reload(t *testing.T, u *domain.User) *domain.User {
	t.Helper()
	fresh, err := f.repos.Users.GetByID(f.ctx, u.ID)
	require.NoError(t, err)
	return fresh
}

func (f *fixture) course(t *testing.T, director *domain.User, code string) *domain.Course {
	t.Helper()
	c, err := NewCourseService(f.repos, f.metrics, f.log).CreateCourse(f.ctx, director, CreateCourseInput{
		CourseID: code,
		Title:    "Course " + code,
		Credits:  3,
	})
	require.NoError(t, err)
	return c
}

func (f *fixture) enroll(t *testing.T, student *domain.User, course *domain.Course) {
	t.Helper()
	_, err := NewCourseService(f.repos, f.metrics, f.log).Enroll(f.ctx, student, course.ID)
	require.NoError(t, err)
}

func (f *fixture) assignment(t *testing.T, director *domain.User, course *domain.Course, due time.Time) *domain.Assignment {
	t.Helper()
	a, err := NewAssignmentService(f.repos, nil, f.log).CreateAssignment(f.ctx, director, course.ID, AssignmentInput{
		Title:   "Essay",
		DueDate: due,
	})
	require.NoError(t, err)
	return a
}

func oid() primitive.ObjectID { return primitive.NewObjectID() }
