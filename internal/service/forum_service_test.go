package service

import (
	"alcyxob/learnhub/internal/domain"
	"alcyxob/learnhub/internal/repository"
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// racingRepo lets another writer win the first n Replace calls.
type racingRepo struct {
	repository.DiscussionRepository
	races int
}

func (r *racingRepo) Replace(ctx context.Context, d *domain.Discussion) error {
	if r.races > 0 {
		r.races--
		rival, err := r.DiscussionRepository.GetByID(ctx, d.ID)
		if err != nil {
			return err
		}
		rival.Tags = append(rival.Tags, "rival")
		if err := r.DiscussionRepository.Replace(ctx, rival); err != nil {
			return err
		}
	}
	return r.DiscussionRepository.Replace(ctx, d)
}

type forumSetup struct {
	*fixture
	svc     ForumService
	student *domain.User
	teacher *domain.User
	course  *domain.Course
}

func newForumSetup(t *testing.T) *forumSetup {
	f := newFixture(t)
	s := &forumSetup{fixture: f}
	s.teacher = f.user(t, "teacher", domain.RoleTeacher)
	s.student = f.user(t, "student", domain.RoleStudent)
	s.course = f.course(t, s.teacher, "CSC1010")
	s.svc = NewForumService(f.repos, 3, f.metrics, f.log)
	return s
}

func (s *forumSetup) thread(t *testing.T) *domain.Discussion {
	t.Helper()
	d, err := s.svc.CreateThread(s.ctx, s.student, s.course.ID, DiscussionInput{Title: "Help", Content: "Stuck on lab 1", Tags: []string{"Lab", "lab", " "}})
	require.NoError(t, err)
	return d
}

func TestForum_NestedReplies(t *testing.T) {
	s := newForumSetup(t)
	d := s.thread(t)
	assert.Equal(t, []string{"lab"}, d.Tags)

	d, err := s.svc.AddComment(s.ctx, domain.KindThread, s.student, d.ID, "Which part?")
	require.NoError(t, err)
	require.Len(t, d.Comments, 1)
	commentID := d.Comments[0].ID

	d, err = s.svc.AddReply(s.ctx, domain.KindThread, s.teacher, d.ID, commentID, nil, "Step 3")
	require.NoError(t, err)
	firstReply := d.Comments[0].Replies[0].ID

	d, err = s.svc.AddReply(s.ctx, domain.KindThread, s.student, d.ID, commentID, &firstReply, "Thanks")
	require.NoError(t, err)

	stored, err := s.svc.Get(s.ctx, domain.KindThread, d.ID)
	require.NoError(t, err)
	c := stored.Comments[0]
	require.Len(t, c.Replies, 1)
	assert.Equal(t, "Step 3", c.Replies[0].Content)
	require.Len(t, c.Replies[0].Replies, 1)
	assert.Equal(t, "Thanks", c.Replies[0].Replies[0].Content)
	assert.Equal(t, s.student.ID, c.Replies[0].Replies[0].AuthorID)
}

func TestForum_UnknownParentLeavesTreeUnchanged(t *testing.T) {
	s := newForumSetup(t)
	d := s.thread(t)
	d, err := s.svc.AddComment(s.ctx, domain.KindThread, s.student, d.ID, "c")
	require.NoError(t, err)
	commentID := d.Comments[0].ID
	d, err = s.svc.AddReply(s.ctx, domain.KindThread, s.student, d.ID, commentID, nil, "r")
	require.NoError(t, err)
	version := d.Version

	missing := primitive.NewObjectID()
	_, err = s.svc.AddReply(s.ctx, domain.KindThread, s.student, d.ID, commentID, &missing, "orphan")
	assert.ErrorIs(t, err, ErrParentNotFound)
	assert.Equal(t, KindNotFound, KindOf(err))

	_, err = s.svc.AddReply(s.ctx, domain.KindThread, s.student, d.ID, primitive.NewObjectID(), nil, "orphan")
	assert.ErrorIs(t, err, ErrCommentNotFound)

	stored, err := s.svc.Get(s.ctx, domain.KindThread, d.ID)
	require.NoError(t, err)
	assert.Equal(t, version, stored.Version)
	assert.Equal(t, 1, stored.Comments[0].ReplyCount())
}

func TestForum_ToggleReactionTwice(t *testing.T) {
	s := newForumSetup(t)
	d := s.thread(t)
	before := d.Reactions[domain.ReactionLike]

	in := ReactionInput{Type: domain.ReactionLike, Target: "thread"}
	d, err := s.svc.ToggleReaction(s.ctx, domain.KindThread, s.teacher, d.ID, in)
	require.NoError(t, err)
	assert.True(t, d.Reactions.Has(domain.ReactionLike, s.teacher.ID))

	d, err = s.svc.ToggleReaction(s.ctx, domain.KindThread, s.teacher, d.ID, in)
	require.NoError(t, err)
	assert.Equal(t, before, d.Reactions[domain.ReactionLike])

	d, err = s.svc.AddComment(s.ctx, domain.KindThread, s.student, d.ID, "c")
	require.NoError(t, err)
	onComment := ReactionInput{Type: domain.ReactionInsightful, Target: "comment", CommentID: d.Comments[0].ID}
	d, err = s.svc.ToggleReaction(s.ctx, domain.KindThread, s.teacher, d.ID, onComment)
	require.NoError(t, err)
	assert.Equal(t, 1, d.Comments[0].Reactions.Count(domain.ReactionInsightful))
	assert.Equal(t, 0, d.Reactions.Count(domain.ReactionInsightful))
}

func TestForum_ToggleReactionValidation(t *testing.T) {
	s := newForumSetup(t)
	d := s.thread(t)

	_, err := s.svc.ToggleReaction(s.ctx, domain.KindThread, s.student, d.ID, ReactionInput{Type: "angry"})
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = s.svc.ToggleReaction(s.ctx, domain.KindThread, s.student, d.ID, ReactionInput{Type: domain.ReactionLike, Target: "reply"})
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = s.svc.ToggleReaction(s.ctx, domain.KindThread, s.student, d.ID, ReactionInput{Type: domain.ReactionLike, Target: "comment"})
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = s.svc.ToggleReaction(s.ctx, domain.KindThread, s.student, d.ID, ReactionInput{Type: domain.ReactionLike, Target: "comment", CommentID: primitive.NewObjectID()})
	assert.ErrorIs(t, err, ErrCommentNotFound)
}

func TestForum_CommentOwnership(t *testing.T) {
	s := newForumSetup(t)
	other := s.user(t, "other", domain.RoleStudent)
	d := s.thread(t)
	d, err := s.svc.AddComment(s.ctx, domain.KindThread, s.student, d.ID, "original")
	require.NoError(t, err)
	commentID := d.Comments[0].ID

	_, err = s.svc.EditComment(s.ctx, domain.KindThread, other, d.ID, commentID, "hijack")
	assert.ErrorIs(t, err, ErrNotAuthor)

	d, err = s.svc.EditComment(s.ctx, domain.KindThread, s.student, d.ID, commentID, "edited")
	require.NoError(t, err)
	assert.Equal(t, "edited", d.Comments[0].Content)

	_, err = s.svc.DeleteComment(s.ctx, domain.KindThread, other, d.ID, commentID)
	assert.ErrorIs(t, err, ErrNotAuthor)

	outsider := s.user(t, "outsider", domain.RoleTeacher)
	admin := s.user(t, "admin", domain.RoleAdmin)
	for _, actor := range []*domain.User{outsider, s.teacher, admin} {
		_, err = s.svc.DeleteComment(s.ctx, domain.KindThread, actor, d.ID, commentID)
		assert.ErrorIs(t, err, ErrNotAuthor, actor.Name)
	}
	d, err = s.svc.Get(s.ctx, domain.KindThread, d.ID)
	require.NoError(t, err)
	require.Len(t, d.Comments, 1)

	d, err = s.svc.DeleteComment(s.ctx, domain.KindThread, s.student, d.ID, commentID)
	require.NoError(t, err)
	assert.Empty(t, d.Comments)
}

func TestForum_DeleteDiscussion(t *testing.T) {
	s := newForumSetup(t)
	other := s.user(t, "other", domain.RoleStudent)
	d := s.thread(t)

	assert.ErrorIs(t, s.svc.Delete(s.ctx, domain.KindThread, other, d.ID), ErrNotAuthor)
	require.NoError(t, s.svc.Delete(s.ctx, domain.KindThread, s.student, d.ID))
	_, err := s.svc.Get(s.ctx, domain.KindThread, d.ID)
	assert.ErrorIs(t, err, ErrDiscussionNotFound)
}

func TestForum_DeleteDiscussionModeration(t *testing.T) {
	s := newForumSetup(t)
	outsider := s.user(t, "outsider", domain.RoleTeacher)
	admin := s.user(t, "admin", domain.RoleAdmin)

	d := s.thread(t)
	assert.ErrorIs(t, s.svc.Delete(s.ctx, domain.KindThread, outsider, d.ID), ErrNotAuthor)
	require.NoError(t, s.svc.Delete(s.ctx, domain.KindThread, s.teacher, d.ID))

	post, err := s.svc.CreatePost(s.ctx, s.student, DiscussionInput{Title: "Hello", Content: "hi"})
	require.NoError(t, err)
	assert.ErrorIs(t, s.svc.Delete(s.ctx, domain.KindPost, s.teacher, post.ID), ErrNotAuthor)
	require.NoError(t, s.svc.Delete(s.ctx, domain.KindPost, admin, post.ID))
}

func TestForum_PostsAreSeparateFromThreads(t *testing.T) {
	s := newForumSetup(t)
	s.thread(t)
	post, err := s.svc.CreatePost(s.ctx, s.student, DiscussionInput{Title: "Hello", Content: "Anyone here?", Tags: []string{"Intro"}})
	require.NoError(t, err)
	assert.Nil(t, post.CourseID)

	posts, err := s.svc.List(s.ctx, domain.KindPost, repository.DiscussionFilter{Tag: "INTRO"})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, post.ID, posts[0].ID)

	courseID := s.course.ID
	threads, err := s.svc.List(s.ctx, domain.KindThread, repository.DiscussionFilter{CourseID: &courseID})
	require.NoError(t, err)
	assert.Len(t, threads, 1)

	_, err = s.svc.Get(s.ctx, domain.KindThread, post.ID)
	assert.ErrorIs(t, err, ErrDiscussionNotFound)

	_, err = s.svc.CreateThread(s.ctx, s.student, primitive.NewObjectID(), DiscussionInput{Title: "x", Content: "y"})
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestForum_RetriesOnVersionConflict(t *testing.T) {
	s := newForumSetup(t)
	racing := &racingRepo{DiscussionRepository: s.repos.Threads, races: 2}
	s.repos.Threads = racing
	svc := NewForumService(s.repos, 3, s.metrics, s.log)

	d, err := svc.CreateThread(s.ctx, s.student, s.course.ID, DiscussionInput{Title: "Help", Content: "x"})
	require.NoError(t, err)

	d, err = svc.AddComment(s.ctx, domain.KindThread, s.student, d.ID, "persisted")
	require.NoError(t, err)
	require.Len(t, d.Comments, 1)
	assert.Equal(t, []string{"rival", "rival"}, d.Tags)
	assert.Equal(t, 2.0, testutil.ToFloat64(s.metrics.ForumConflicts))
}

func TestForum_GivesUpAfterMaxAttempts(t *testing.T) {
	s := newForumSetup(t)
	racing := &racingRepo{DiscussionRepository: s.repos.Threads, races: 5}
	s.repos.Threads = racing
	svc := NewForumService(s.repos, 2, s.metrics, s.log)

	d, err := svc.CreateThread(s.ctx, s.student, s.course.ID, DiscussionInput{Title: "Help", Content: "x"})
	require.NoError(t, err)

	_, err = svc.AddComment(s.ctx, domain.KindThread, s.student, d.ID, "lost")
	assert.ErrorIs(t, err, ErrWriteConflict)
	assert.Equal(t, KindConflict, KindOf(err))

	stored, err := s.repos.Threads.GetByID(s.ctx, d.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Comments)
}
