package service

import (
	"alcyxob/learnhub/internal/domain"
	"alcyxob/learnhub/internal/metrics"
	"alcyxob/learnhub/internal/policy"
	"alcyxob/learnhub/internal/repository"
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Reaction targets.
const (
	TargetDiscussion = "thread"
	TargetComment    = "comment"
)

type DiscussionInput struct {
	Title   string
	Content string
	Tags    []string
}

type ReactionInput struct {
	Type      domain.ReactionType
	Target    string
	CommentID primitive.ObjectID
}

type ForumService interface {
	CreateThread(ctx context.Context, author *domain.User, courseID primitive.ObjectID, in DiscussionInput) (*domain.Discussion, error)
	CreatePost(ctx context.Context, author *domain.User, in DiscussionInput) (*domain.Discussion, error)
	List(ctx context.Context, kind domain.DiscussionKind, filter repository.DiscussionFilter) ([]domain.Discussion, error)
	Get(ctx context.Context, kind domain.DiscussionKind, id primitive.ObjectID) (*domain.Discussion, error)
	Delete(ctx context.Context, kind domain.DiscussionKind, actor *domain.User, id primitive.ObjectID) error

	AddComment(ctx context.Context, kind domain.DiscussionKind, actor *domain.User, id primitive.ObjectID, content string) (*domain.Discussion, error)
	// AddReply nests a reply under a comment, or under parentID anywhere in
	// that comment's reply tree when parentID is set.
	AddReply(ctx context.Context, kind domain.DiscussionKind, actor *domain.User, id, commentID primitive.ObjectID, parentID *primitive.ObjectID, content string) (*domain.Discussion, error)
	EditComment(ctx context.Context, kind domain.DiscussionKind, actor *domain.User, id, commentID primitive.ObjectID, content string) (*domain.Discussion, error)
	DeleteComment(ctx context.Context, kind domain.DiscussionKind, actor *domain.User, id, commentID primitive.ObjectID) (*domain.Discussion, error)
	ToggleReaction(ctx context.Context, kind domain.DiscussionKind, actor *domain.User, id primitive.ObjectID, in ReactionInput) (*domain.Discussion, error)
}

type forumService struct {
	threads     repository.DiscussionRepository
	posts       repository.DiscussionRepository
	courses     repository.CourseRepository
	maxAttempts int
	metrics     *metrics.Metrics
	log         *zap.Logger
}

func NewForumService(repos repository.Repositories, maxAttempts int, m *metrics.Metrics, log *zap.Logger) ForumService {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &forumService{
		threads:     repos.Threads,
		posts:       repos.Posts,
		courses:     repos.Courses,
		maxAttempts: maxAttempts,
		metrics:     m,
		log:         log.Named("forum"),
	}
}

func (s *forumService) repo(kind domain.DiscussionKind) repository.DiscussionRepository {
	if kind == domain.KindThread {
		return s.threads
	}
	return s.posts
}

func (in *DiscussionInput) normalize() error {
	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)
	if in.Title == "" || in.Content == "" {
		return validationf("title and content are required")
	}
	tags := make([]string, 0, len(in.Tags))
	seen := make(map[string]bool, len(in.Tags))
	for _, t := range in.Tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		tags = append(tags, t)
	}
	in.Tags = tags
	return nil
}

func (s *forumService) create(ctx context.Context, kind domain.DiscussionKind, author *domain.User, courseID *primitive.ObjectID, in DiscussionInput) (*domain.Discussion, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	d := &domain.Discussion{
		CourseID:   courseID,
		Title:      in.Title,
		Content:    in.Content,
		AuthorID:   author.ID,
		AuthorName: author.Name,
		Tags:       in.Tags,
		Reactions:  domain.NewReactions(),
		Comments:   []domain.Comment{},
	}
	id, err := s.repo(kind).Create(ctx, d)
	if err != nil {
		return nil, err
	}
	d.ID = id
	s.metrics.ForumWrites.WithLabelValues("create").Inc()
	return d, nil
}

func (s *forumService) CreateThread(ctx context.Context, author *domain.User, courseID primitive.ObjectID, in DiscussionInput) (*domain.Discussion, error) {
	if _, err := s.courses.GetByID(ctx, courseID); err != nil {
		return nil, notFound(err, ErrCourseNotFound)
	}
	return s.create(ctx, domain.KindThread, author, &courseID, in)
}

func (s *forumService) CreatePost(ctx context.Context, author *domain.User, in DiscussionInput) (*domain.Discussion, error) {
	return s.create(ctx, domain.KindPost, author, nil, in)
}

func (s *forumService) List(ctx context.Context, kind domain.DiscussionKind, filter repository.DiscussionFilter) ([]domain.Discussion, error) {
	filter.Tag = strings.ToLower(strings.TrimSpace(filter.Tag))
	return s.repo(kind).List(ctx, filter)
}

func (s *forumService) Get(ctx context.Context, kind domain.DiscussionKind, id primitive.ObjectID) (*domain.Discussion, error) {
	d, err := s.repo(kind).GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrDiscussionNotFound)
	}
	return d, nil
}

func (s *forumService) Delete(ctx context.Context, kind domain.DiscussionKind, actor *domain.User, id primitive.ObjectID) error {
	d, err := s.Get(ctx, kind, id)
	if err != nil {
		return err
	}
	if d.AuthorID != actor.ID {
		ok, err := s.canModerate(ctx, actor, d)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotAuthor
		}
	}
	if err := s.repo(kind).Delete(ctx, id); err != nil {
		return notFound(err, ErrDiscussionNotFound)
	}
	s.metrics.ForumWrites.WithLabelValues("delete").Inc()
	return nil
}

// canModerate reports whether actor may remove a discussion it did not write:
// admins anywhere, teachers on threads of courses they direct.
func (s *forumService) canModerate(ctx context.Context, actor *domain.User, d *domain.Discussion) (bool, error) {
	if policy.Allows(actor.Role, policy.ModerateForum) {
		return true, nil
	}
	if d.CourseID == nil || !actor.IsTeacher() {
		return false, nil
	}
	course, err := s.courses.GetByID(ctx, *d.CourseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return course.IsDirectedBy(actor.ID), nil
}

// mutate applies fn to a fresh copy of the discussion and writes it back only
// if nobody else wrote in between, retrying up to maxAttempts times.
func (s *forumService) mutate(ctx context.Context, kind domain.DiscussionKind, id primitive.ObjectID, op string, fn func(d *domain.Discussion) error) (*domain.Discussion, error) {
	repo := s.repo(kind)
	for attempt := 1; ; attempt++ {
		d, err := repo.GetByID(ctx, id)
		if err != nil {
			return nil, notFound(err, ErrDiscussionNotFound)
		}
		if err := fn(d); err != nil {
			return nil, err
		}

		err = repo.Replace(ctx, d)
		if err == nil {
			s.metrics.ForumWrites.WithLabelValues(op).Inc()
			return d, nil
		}
		if !errors.Is(err, repository.ErrVersionConflict) {
			return nil, notFound(err, ErrDiscussionNotFound)
		}
		s.metrics.ForumConflicts.Inc()
		if attempt >= s.maxAttempts {
			s.log.Warn("giving up on contended discussion",
				zap.String("id", id.Hex()), zap.String("op", op), zap.Int("attempts", attempt))
			return nil, ErrWriteConflict
		}
		s.log.Debug("version conflict, retrying", zap.String("id", id.Hex()), zap.Int("attempt", attempt))
	}
}

func requireContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", validationf("content is required")
	}
	return content, nil
}

func (s *forumService) AddComment(ctx context.Context, kind domain.DiscussionKind, actor *domain.User, id primitive.ObjectID, content string) (*domain.Discussion, error) {
	content, err := requireContent(content)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, kind, id, "comment", func(d *domain.Discussion) error {
		now := time.Now().UTC()
		d.AddComment(domain.Comment{
			ID:         primitive.NewObjectID(),
			AuthorID:   actor.ID,
			AuthorName: actor.Name,
			Content:    content,
			Reactions:  domain.NewReactions(),
			Replies:    []domain.Reply{},
			CreatedAt:  now,
			UpdatedAt:  now,
		})
		return nil
	})
}

func (s *forumService) AddReply(ctx context.Context, kind domain.DiscussionKind, actor *domain.User, id, commentID primitive.ObjectID, parentID *primitive.ObjectID, content string) (*domain.Discussion, error) {
	content, err := requireContent(content)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, kind, id, "reply", func(d *domain.Discussion) error {
		reply := domain.Reply{
			ID:         primitive.NewObjectID(),
			AuthorID:   actor.ID,
			AuthorName: actor.Name,
			Content:    content,
			CreatedAt:  time.Now().UTC(),
		}
		switch err := d.AddReply(commentID, parentID, reply); {
		case errors.Is(err, domain.ErrCommentNotFound):
			return ErrCommentNotFound
		case errors.Is(err, domain.ErrParentReplyNotFound):
			return ErrParentNotFound
		default:
			return err
		}
	})
}

func (s *forumService) EditComment(ctx context.Context, kind domain.DiscussionKind, actor *domain.User, id, commentID primitive.ObjectID, content string) (*domain.Discussion, error) {
	content, err := requireContent(content)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, kind, id, "edit", func(d *domain.Discussion) error {
		c := d.FindComment(commentID)
		if c == nil {
			return ErrCommentNotFound
		}
		if c.AuthorID != actor.ID {
			return ErrNotAuthor
		}
		c.Content = content
		c.UpdatedAt = time.Now().UTC()
		return nil
	})
}

func (s *forumService) DeleteComment(ctx context.Context, kind domain.DiscussionKind, actor *domain.User, id, commentID primitive.ObjectID) (*domain.Discussion, error) {
	return s.mutate(ctx, kind, id, "uncomment", func(d *domain.Discussion) error {
		c := d.FindComment(commentID)
		if c == nil {
			return ErrCommentNotFound
		}
		if c.AuthorID != actor.ID {
			return ErrNotAuthor
		}
		d.RemoveComment(commentID)
		return nil
	})
}

func (s *forumService) ToggleReaction(ctx context.Context, kind domain.DiscussionKind, actor *domain.User, id primitive.ObjectID, in ReactionInput) (*domain.Discussion, error) {
	if !in.Type.Valid() {
		return nil, validationf("unknown reaction type %q", in.Type)
	}
	target := strings.ToLower(strings.TrimSpace(in.Target))
	switch target {
	case "", TargetDiscussion, string(domain.KindPost):
		target = TargetDiscussion
	case TargetComment:
		if in.CommentID.IsZero() {
			return nil, validationf("commentId is required for comment reactions")
		}
	default:
		return nil, validationf("unknown reaction target %q", in.Target)
	}

	return s.mutate(ctx, kind, id, "react", func(d *domain.Discussion) error {
		reactions := &d.Reactions
		if target == TargetComment {
			c := d.FindComment(in.CommentID)
			if c == nil {
				return ErrCommentNotFound
			}
			reactions = &c.Reactions
		}
		if *reactions == nil {
			*reactions = domain.NewReactions()
		}
		reactions.Toggle(in.Type, actor.ID)
		return nil
	})
}
