package mongo

import (
	"alcyxob/learnhub/internal/domain"
	"alcyxob/learnhub/internal/repository"
	"context"
	"time"

	pkgerrors "github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	threadCollectionName = "forum_threads"
	postCollectionName   = "forum_posts"
)

// mongoDiscussionRepository stores forum threads or forum posts depending on
// the collection it is bound to.
type mongoDiscussionRepository struct {
	collection *mongo.Collection
}

func NewMongoDiscussionRepository(db *mongo.Database, collectionName string) repository.DiscussionRepository {
	return &mongoDiscussionRepository{collection: db.Collection(collectionName)}
}

func (r *mongoDiscussionRepository) Create(ctx context.Context, d *domain.Discussion) (primitive.ObjectID, error) {
	d.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	d.CreatedAt = now
	d.UpdatedAt = now
	d.Version = 1
	if d.Reactions == nil {
		d.Reactions = domain.NewReactions()
	}
	if d.Comments == nil {
		d.Comments = []domain.Comment{}
	}
	return insert(ctx, r.collection, d)
}

func (r *mongoDiscussionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Discussion, error) {
	var d domain.Discussion
	if err := findOne(ctx, r.collection, bson.M{"_id": id}, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// List returns discussions newest first.
func (r *mongoDiscussionRepository) List(ctx context.Context, f repository.DiscussionFilter) ([]domain.Discussion, error) {
	filter := bson.M{}
	if f.CourseID != nil {
		filter["courseId"] = *f.CourseID
	}
	if f.Tag != "" {
		filter["tags"] = f.Tag
	}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	list := []domain.Discussion{}
	if err := findAll(ctx, cursor, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// Replace is a compare-and-swap on the version field.
func (r *mongoDiscussionRepository) Replace(ctx context.Context, d *domain.Discussion) error {
	expected := d.Version
	next := *d
	next.Version = expected + 1
	next.UpdatedAt = time.Now().UTC()

	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": d.ID, "version": expected}, &next)
	if err != nil {
		return pkgerrors.Wrap(err, "replace discussion")
	}
	if result.MatchedCount == 0 {
		count, err := r.collection.CountDocuments(ctx, bson.M{"_id": d.ID})
		if err != nil {
			return pkgerrors.Wrap(err, "count discussion")
		}
		if count == 0 {
			return repository.ErrNotFound
		}
		return repository.ErrVersionConflict
	}
	*d = next
	return nil
}

func (r *mongoDiscussionRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteOne(ctx, r.collection, bson.M{"_id": id})
}

func EnsureDiscussionIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "courseId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "tags", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
