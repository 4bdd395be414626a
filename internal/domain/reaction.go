package domain

import "go.mongodb.org/mongo-driver/bson/primitive"

type ReactionType string

const (
	ReactionLike       ReactionType = "like"
	ReactionLove       ReactionType = "love"
	ReactionInsightful ReactionType = "insightful"
	ReactionQuestion   ReactionType = "question"
)

// ReactionTypes is the declared bucket set; toggles outside of it are rejected.
var ReactionTypes = []ReactionType{ReactionLike, ReactionLove, ReactionInsightful, ReactionQuestion}

func (t ReactionType) Valid() bool {
	for _, v := range ReactionTypes {
		if v == t {
			return true
		}
	}
	return false
}

// Reactions maps a reaction type to the set of users who reacted with it.
type Reactions map[ReactionType][]primitive.ObjectID

// NewReactions returns a map with every declared bucket present and empty.
func NewReactions() Reactions {
	r := make(Reactions, len(ReactionTypes))
	for _, t := range ReactionTypes {
		r[t] = []primitive.ObjectID{}
	}
	return r
}

// Toggle adds userID to the bucket when absent and removes it when present.
// It reports whether the user is in the bucket afterwards.
func (r Reactions) Toggle(t ReactionType, userID primitive.ObjectID) bool {
	bucket := r[t]
	for i, id := range bucket {
		if id == userID {
			r[t] = append(bucket[:i:i], bucket[i+1:]...)
			return false
		}
	}
	r[t] = append(bucket, userID)
	return true
}

// Count returns the number of users in a bucket.
func (r Reactions) Count(t ReactionType) int {
	return len(r[t])
}

// Has reports whether userID is in the bucket.
func (r Reactions) Has(t ReactionType, userID primitive.ObjectID) bool {
	return containsID(r[t], userID)
}
