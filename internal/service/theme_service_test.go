package service

import (
	"alcyxob/learnhub/internal/domain"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThemes(t *testing.T) {
	f := newFixture(t)
	svc := NewThemeService(f.repos)
	student := f.user(t, "student", domain.RoleStudent)

	theme, err := svc.CreateTheme(f.ctx, "#1a2b3c", "ocean")
	require.NoError(t, err)
	assert.Equal(t, "#1A2B3C", theme.HexColor)

	_, err = svc.CreateTheme(f.ctx, "#1A2B3C", "again")
	assert.ErrorIs(t, err, ErrThemeExists)

	_, err = svc.CreateTheme(f.ctx, "blue", "")
	assert.Equal(t, KindValidation, KindOf(err))
	_, err = svc.CreateTheme(f.ctx, "#12345", "")
	assert.Equal(t, KindValidation, KindOf(err))

	list, err := svc.ListThemes(f.ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	updated, err := svc.SelectTheme(f.ctx, student, theme.ID)
	require.NoError(t, err)
	require.NotNil(t, updated.ThemeID)
	assert.Equal(t, theme.ID, *f.reload(t, student).ThemeID)

	_, err = svc.SelectTheme(f.ctx, student, oid())
	assert.ErrorIs(t, err, ErrThemeNotFound)

	require.NoError(t, svc.DeleteTheme(f.ctx, theme.ID))
	assert.ErrorIs(t, svc.DeleteTheme(f.ctx, theme.ID), ErrThemeNotFound)
}

func TestThemes_FormatsAcceptedByBinding(t *testing.T) {
	f := newFixture(t)
	svc := NewThemeService(f.repos)

	for _, c := range []string{"#abc", "#abcd", "#aabbcc", "#aabbccdd"} {
		theme, err := svc.CreateTheme(f.ctx, c, "")
		require.NoError(t, err, c)
		assert.Equal(t, strings.ToUpper(c), theme.HexColor)
	}
}

func TestThemes_DeleteClearsSelection(t *testing.T) {
	f := newFixture(t)
	svc := NewThemeService(f.repos)
	a := f.user(t, "a", domain.RoleStudent)
	b := f.user(t, "b", domain.RoleTeacher)
	c := f.user(t, "c", domain.RoleStudent)

	gone, err := svc.CreateTheme(f.ctx, "#112233", "")
	require.NoError(t, err)
	kept, err := svc.CreateTheme(f.ctx, "#445566", "")
	require.NoError(t, err)

	_, err = svc.SelectTheme(f.ctx, a, gone.ID)
	require.NoError(t, err)
	_, err = svc.SelectTheme(f.ctx, b, gone.ID)
	require.NoError(t, err)
	_, err = svc.SelectTheme(f.ctx, c, kept.ID)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTheme(f.ctx, gone.ID))

	assert.Nil(t, f.reload(t, a).ThemeID)
	assert.Nil(t, f.reload(t, b).ThemeID)
	require.NotNil(t, f.reload(t, c).ThemeID)
	assert.Equal(t, kept.ID, *f.reload(t, c).ThemeID)
}
