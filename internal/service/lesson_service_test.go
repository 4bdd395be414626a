package service

import (
	"alcyxob/learnhub/internal/domain"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLessonLifecycle(t *testing.T) {
	f := newFixture(t)
	svc := NewLessonService(f.repos, f.log)
	teacher := f.user(t, "teacher", domain.RoleTeacher)
	course := f.course(t, teacher, "CSC1010")

	lesson, err := svc.CreateLesson(f.ctx, teacher, course.ID, LessonInput{
		UnitCode:   "u1",
		Title:      "Variables",
		Objectives: []string{"declare", "assign"},
		Credits:    1,
	})
	require.NoError(t, err)
	assert.Equal(t, "U1", lesson.UnitCode)
	assert.Equal(t, domain.LessonDraft, lesson.Status)
	assert.Equal(t, teacher.ID, lesson.DesignerID)

	stored, err := f.repos.Courses.GetByID(f.ctx, course.ID)
	require.NoError(t, err)
	assert.Contains(t, stored.LessonIDs, lesson.ID)

	_, err = svc.CreateLesson(f.ctx, teacher, course.ID, LessonInput{UnitCode: "U1", Title: "Dup"})
	assert.ErrorIs(t, err, ErrLessonExists)

	updated, err := svc.UpdateLesson(f.ctx, teacher, lesson.ID, LessonInput{
		UnitCode: "U1",
		Title:    "Variables and types",
		Status:   domain.LessonActive,
		Credits:  2,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.LessonActive, updated.Status)

	list, err := svc.ListLessons(f.ctx, course.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Variables and types", list[0].Title)

	require.NoError(t, svc.DeleteLesson(f.ctx, teacher, lesson.ID))
	_, err = svc.GetLesson(f.ctx, lesson.ID)
	assert.ErrorIs(t, err, ErrLessonNotFound)
	stored, err = f.repos.Courses.GetByID(f.ctx, course.ID)
	require.NoError(t, err)
	assert.NotContains(t, stored.LessonIDs, lesson.ID)
}

func TestLesson_Permissions(t *testing.T) {
	f := newFixture(t)
	svc := NewLessonService(f.repos, f.log)
	teacher := f.user(t, "teacher", domain.RoleTeacher)
	other := f.user(t, "other", domain.RoleTeacher)
	admin := f.user(t, "admin", domain.RoleAdmin)
	course := f.course(t, teacher, "CSC1010")

	_, err := svc.CreateLesson(f.ctx, other, course.ID, LessonInput{UnitCode: "U1", Title: "x"})
	assert.ErrorIs(t, err, ErrNotDirector)

	_, err = svc.CreateLesson(f.ctx, admin, course.ID, LessonInput{UnitCode: "U1", Title: "x"})
	assert.NoError(t, err)

	_, err = svc.CreateLesson(f.ctx, teacher, course.ID, LessonInput{UnitCode: "U2", Title: "x", Credits: -1})
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = svc.CreateLesson(f.ctx, teacher, course.ID, LessonInput{UnitCode: "U2", Title: "x", Status: "published"})
	assert.Equal(t, KindValidation, KindOf(err))
}
