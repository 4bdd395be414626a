package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestReactions_ToggleTwiceRestores(t *testing.T) {
	r := NewReactions()
	other := primitive.NewObjectID()
	r.Toggle(ReactionLike, other)
	before := append([]primitive.ObjectID(nil), r[ReactionLike]...)

	user := primitive.NewObjectID()
	assert.True(t, r.Toggle(ReactionLike, user))
	assert.True(t, r.Has(ReactionLike, user))
	assert.Equal(t, 2, r.Count(ReactionLike))

	assert.False(t, r.Toggle(ReactionLike, user))
	assert.Equal(t, before, r[ReactionLike])
}

func TestReactions_BucketsAreIndependent(t *testing.T) {
	r := NewReactions()
	user := primitive.NewObjectID()
	r.Toggle(ReactionLike, user)
	r.Toggle(ReactionLove, user)

	assert.True(t, r.Has(ReactionLike, user))
	assert.True(t, r.Has(ReactionLove, user))
	assert.Equal(t, 0, r.Count(ReactionQuestion))
}

func TestReactions_RemoveDoesNotAlias(t *testing.T) {
	a, b, c := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
	r := Reactions{ReactionLike: {a, b, c}}
	orig := r[ReactionLike]

	r.Toggle(ReactionLike, a)

	assert.Equal(t, []primitive.ObjectID{b, c}, r[ReactionLike])
	assert.Equal(t, a, orig[0])
}

func TestReactionType_Valid(t *testing.T) {
	assert.True(t, ReactionInsightful.Valid())
	assert.False(t, ReactionType("angry").Valid())
}
