package mongo

import (
	"alcyxob/learnhub/internal/repository"
	"context"
	"errors"

	pkgerrors "github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// findOne decodes the single document matching filter into out.
func findOne(ctx context.Context, coll *mongo.Collection, filter interface{}, out interface{}) error {
	err := coll.FindOne(ctx, filter).Decode(out)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return repository.ErrNotFound
		}
		return pkgerrors.Wrapf(err, "find in %s", coll.Name())
	}
	return nil
}

// findAll decodes every document matched by the cursor into out (a pointer to a slice).
func findAll(ctx context.Context, cursor *mongo.Cursor, out interface{}) error {
	defer cursor.Close(ctx)
	if err := cursor.All(ctx, out); err != nil {
		return pkgerrors.Wrap(err, "decode cursor")
	}
	return cursor.Err()
}

// insert stores doc and converts a duplicate key failure into repository.ErrDuplicate.
func insert(ctx context.Context, coll *mongo.Collection, doc interface{}) (primitive.ObjectID, error) {
	result, err := coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, pkgerrors.Wrapf(err, "insert into %s", coll.Name())
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// updateOne applies update and reports ErrNotFound when nothing matched.
func updateOne(ctx context.Context, coll *mongo.Collection, filter, update interface{}) error {
	result, err := coll.UpdateOne(ctx, filter, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicate
		}
		return pkgerrors.Wrapf(err, "update in %s", coll.Name())
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func deleteOne(ctx context.Context, coll *mongo.Collection, filter interface{}) error {
	result, err := coll.DeleteOne(ctx, filter)
	if err != nil {
		return pkgerrors.Wrapf(err, "delete from %s", coll.Name())
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
