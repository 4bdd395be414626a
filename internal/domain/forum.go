package domain

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrCommentNotFound     = errors.New("comment not found")
	ErrParentReplyNotFound = errors.New("parent reply not found")
)

// DiscussionKind distinguishes course threads from global posts. Both share a shape
// but live in separate collections.
type DiscussionKind string

const (
	KindThread DiscussionKind = "thread"
	KindPost   DiscussionKind = "post"
)

// Discussion is a forum thread (CourseID set) or a global forum post.
// Version increases on every write and guards concurrent mutation.
type Discussion struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	CourseID   *primitive.ObjectID `bson:"courseId,omitempty" json:"courseId,omitempty"`
	Title      string              `bson:"title" json:"title"`
	Content    string              `bson:"content" json:"content"`
	AuthorID   primitive.ObjectID  `bson:"authorId" json:"authorId"`
	AuthorName string              `bson:"authorName" json:"authorName"`
	Tags       []string            `bson:"tags,omitempty" json:"tags,omitempty"`
	Reactions  Reactions           `bson:"reactions" json:"reactions"`
	Comments   []Comment           `bson:"comments" json:"comments"`
	Version    int64               `bson:"version" json:"version"`
	CreatedAt  time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time           `bson:"updatedAt" json:"updatedAt"`
}

type Comment struct {
	ID         primitive.ObjectID `bson:"_id" json:"id"`
	AuthorID   primitive.ObjectID `bson:"authorId" json:"authorId"`
	AuthorName string             `bson:"authorName" json:"authorName"`
	Content    string             `bson:"content" json:"content"`
	Reactions  Reactions          `bson:"reactions" json:"reactions"`
	Replies    []Reply            `bson:"replies" json:"replies"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Reply may itself hold replies; the nesting depth is not bounded.
type Reply struct {
	ID         primitive.ObjectID `bson:"_id" json:"id"`
	AuthorID   primitive.ObjectID `bson:"authorId" json:"authorId"`
	AuthorName string             `bson:"authorName" json:"authorName"`
	Content    string             `bson:"content" json:"content"`
	Replies    []Reply            `bson:"replies,omitempty" json:"replies,omitempty"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}

// Kind reports which collection the discussion belongs to.
func (d *Discussion) Kind() DiscussionKind {
	if d.CourseID != nil {
		return KindThread
	}
	return KindPost
}

// FindComment returns a pointer into d.Comments, or nil.
func (d *Discussion) FindComment(id primitive.ObjectID) *Comment {
	for i := range d.Comments {
		if d.Comments[i].ID == id {
			return &d.Comments[i]
		}
	}
	return nil
}

// AddComment puts c at the head of the comment list.
func (d *Discussion) AddComment(c Comment) {
	d.Comments = append([]Comment{c}, d.Comments...)
}

// RemoveComment drops the comment with the given id and reports whether it existed.
func (d *Discussion) RemoveComment(id primitive.ObjectID) bool {
	for i := range d.Comments {
		if d.Comments[i].ID == id {
			d.Comments = append(d.Comments[:i], d.Comments[i+1:]...)
			return true
		}
	}
	return false
}

// AddReply prepends r to the comment's replies, or to the replies of the
// reply identified by parentID when it is non-nil. Nothing is modified on error.
func (d *Discussion) AddReply(commentID primitive.ObjectID, parentID *primitive.ObjectID, r Reply) error {
	c := d.FindComment(commentID)
	if c == nil {
		return ErrCommentNotFound
	}
	if parentID == nil {
		c.Replies = append([]Reply{r}, c.Replies...)
		return nil
	}
	parent := c.FindReply(*parentID)
	if parent == nil {
		return ErrParentReplyNotFound
	}
	parent.Replies = append([]Reply{r}, parent.Replies...)
	return nil
}

// FindReply searches the whole reply tree of c depth first, in display order,
// using an explicit stack. The returned pointer aliases the tree.
func (c *Comment) FindReply(id primitive.ObjectID) *Reply {
	stack := make([]*Reply, 0, len(c.Replies))
	for i := len(c.Replies) - 1; i >= 0; i-- {
		stack = append(stack, &c.Replies[i])
	}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n.ID == id {
			return n
		}
		for i := len(n.Replies) - 1; i >= 0; i-- {
			stack = append(stack, &n.Replies[i])
		}
	}
	return nil
}

// ReplyCount returns the number of replies at every depth.
func (c *Comment) ReplyCount() int {
	n := 0
	stack := make([][]Reply, 0, 1)
	stack = append(stack, c.Replies)
	for len(stack) > 0 {
		level := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n += len(level)
		for i := range level {
			if len(level[i].Replies) > 0 {
				stack = append(stack, level[i].Replies)
			}
		}
	}
	return n
}
