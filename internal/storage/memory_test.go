package storage

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorage(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()

	data := []byte("%PDF-1.4 body")
	require.NoError(t, s.Put(ctx, "submissions/a/b/c.pdf", "application/pdf", data))
	data[0] = 'X' // stored copy must not alias the caller's buffer

	rc, size, err := s.Open(ctx, "submissions/a/b/c.pdf")
	require.NoError(t, err)
	defer rc.Close()
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, int64(13), size)
	assert.Equal(t, "%PDF-1.4 body", string(got))

	require.NoError(t, s.Delete(ctx, "submissions/a/b/c.pdf"))
	_, _, err = s.Open(ctx, "submissions/a/b/c.pdf")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}
