package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newReply(content string) Reply {
	return Reply{ID: primitive.NewObjectID(), Content: content}
}

func TestDiscussion_AddReply(t *testing.T) {
	d := &Discussion{}
	c := Comment{ID: primitive.NewObjectID(), Content: "first"}
	d.AddComment(c)

	top := newReply("top")
	require.NoError(t, d.AddReply(c.ID, nil, top))

	nested := newReply("nested")
	require.NoError(t, d.AddReply(c.ID, &top.ID, nested))

	deeper := newReply("deeper")
	require.NoError(t, d.AddReply(c.ID, &nested.ID, deeper))

	got := d.Comments[0]
	require.Len(t, got.Replies, 1)
	require.Len(t, got.Replies[0].Replies, 1)
	assert.Equal(t, "nested", got.Replies[0].Replies[0].Content)
	require.Len(t, got.Replies[0].Replies[0].Replies, 1)
	assert.Equal(t, "deeper", got.Replies[0].Replies[0].Replies[0].Content)
	assert.Equal(t, 3, got.ReplyCount())
}

func TestDiscussion_AddReplyPrepends(t *testing.T) {
	d := &Discussion{}
	c := Comment{ID: primitive.NewObjectID()}
	d.AddComment(c)

	require.NoError(t, d.AddReply(c.ID, nil, newReply("a")))
	require.NoError(t, d.AddReply(c.ID, nil, newReply("b")))

	assert.Equal(t, "b", d.Comments[0].Replies[0].Content)
	assert.Equal(t, "a", d.Comments[0].Replies[1].Content)
}

func TestDiscussion_AddReplyUnknownParent(t *testing.T) {
	d := &Discussion{}
	c := Comment{ID: primitive.NewObjectID()}
	d.AddComment(c)
	require.NoError(t, d.AddReply(c.ID, nil, newReply("only")))

	missing := primitive.NewObjectID()
	err := d.AddReply(c.ID, &missing, newReply("orphan"))
	assert.ErrorIs(t, err, ErrParentReplyNotFound)
	require.Len(t, d.Comments[0].Replies, 1)
	assert.Empty(t, d.Comments[0].Replies[0].Replies)
}

func TestDiscussion_AddReplyUnknownComment(t *testing.T) {
	d := &Discussion{}
	err := d.AddReply(primitive.NewObjectID(), nil, newReply("x"))
	assert.ErrorIs(t, err, ErrCommentNotFound)
}

func TestComment_FindReplyDeepTree(t *testing.T) {
	c := &Comment{}
	// a chain deep enough that a recursive walk would be noticeable
	root := newReply("0")
	c.Replies = []Reply{root}
	cur := &c.Replies[0]
	var last primitive.ObjectID
	for i := 0; i < 5000; i++ {
		r := newReply("n")
		cur.Replies = []Reply{r}
		cur = &cur.Replies[0]
		last = r.ID
	}

	found := c.FindReply(last)
	require.NotNil(t, found)
	assert.Equal(t, last, found.ID)
	assert.Nil(t, c.FindReply(primitive.NewObjectID()))
}

func TestComment_FindReplySiblings(t *testing.T) {
	a, b := newReply("a"), newReply("b")
	b1 := newReply("b1")
	b.Replies = []Reply{b1}
	c := &Comment{Replies: []Reply{a, b}}

	found := c.FindReply(b1.ID)
	require.NotNil(t, found)
	found.Content = "edited"
	assert.Equal(t, "edited", c.Replies[1].Replies[0].Content)
}

func TestDiscussion_RemoveComment(t *testing.T) {
	d := &Discussion{}
	c1 := Comment{ID: primitive.NewObjectID()}
	c2 := Comment{ID: primitive.NewObjectID()}
	d.AddComment(c1)
	d.AddComment(c2)

	assert.True(t, d.RemoveComment(c1.ID))
	assert.False(t, d.RemoveComment(c1.ID))
	require.Len(t, d.Comments, 1)
	assert.Equal(t, c2.ID, d.Comments[0].ID)
}

func TestDiscussion_Kind(t *testing.T) {
	courseID := primitive.NewObjectID()
	assert.Equal(t, KindThread, (&Discussion{CourseID: &courseID}).Kind())
	assert.Equal(t, KindPost, (&Discussion{}).Kind())
}
