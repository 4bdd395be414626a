package mongo

import (
	"alcyxob/learnhub/internal/domain"
	"alcyxob/learnhub/internal/repository"
	"context"
	"errors"
	"time"

	pkgerrors "github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const userCollectionName = "users"

// mongoUserRepository implements the repository.UserRepository interface using MongoDB.
type mongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new instance of mongoUserRepository.
func NewMongoUserRepository(db *mongo.Database) repository.UserRepository {
	return &mongoUserRepository{
		collection: db.Collection(userCollectionName),
	}
}

// Create inserts a new user into the database.
func (r *mongoUserRepository) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	if user.Email == "" || user.ExternalID == "" || user.Role == "" {
		return primitive.NilObjectID, errors.New("user email, external id, and role are required")
	}

	user.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	return insert(ctx, r.collection, user)
}

func (r *mongoUserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	var user domain.User
	if err := findOne(ctx, r.collection, bson.M{"_id": id}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *mongoUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	if err := findOne(ctx, r.collection, bson.M{"email": email}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *mongoUserRepository) GetByExternalID(ctx context.Context, externalID string) (*domain.User, error) {
	var user domain.User
	if err := findOne(ctx, r.collection, bson.M{"externalId": externalID}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// List returns users sorted by name.
func (r *mongoUserRepository) List(ctx context.Context, f repository.UserFilter) ([]domain.User, error) {
	filter := bson.M{}
	if f.Role != "" {
		filter["role"] = f.Role
	}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	users := []domain.User{}
	if err := findAll(ctx, cursor, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *mongoUserRepository) UpdateProfile(ctx context.Context, id primitive.ObjectID, name, email string) error {
	update := bson.M{"$set": bson.M{"name": name, "email": email, "updatedAt": time.Now().UTC()}}
	return updateOne(ctx, r.collection, bson.M{"_id": id}, update)
}

func (r *mongoUserRepository) SetRole(ctx context.Context, id primitive.ObjectID, role domain.Role) error {
	update := bson.M{"$set": bson.M{"role": role, "updatedAt": time.Now().UTC()}}
	return updateOne(ctx, r.collection, bson.M{"_id": id}, update)
}

func (r *mongoUserRepository) SetTheme(ctx context.Context, id primitive.ObjectID, themeID primitive.ObjectID) error {
	update := bson.M{"$set": bson.M{"themeId": themeID, "updatedAt": time.Now().UTC()}}
	return updateOne(ctx, r.collection, bson.M{"_id": id}, update)
}

func (r *mongoUserRepository) ClearTheme(ctx context.Context, themeID primitive.ObjectID) (int64, error) {
	update := bson.M{
		"$unset": bson.M{"themeId": ""},
		"$set":   bson.M{"updatedAt": time.Now().UTC()},
	}
	res, err := r.collection.UpdateMany(ctx, bson.M{"themeId": themeID}, update)
	if err != nil {
		return 0, pkgerrors.Wrap(err, "clear theme")
	}
	return res.ModifiedCount, nil
}

// AddEnrolledCourse adds the course to the student's side of the enrollment.
func (r *mongoUserRepository) AddEnrolledCourse(ctx context.Context, userID, courseID primitive.ObjectID) error {
	filter := bson.M{"_id": userID, "role": domain.RoleStudent}
	update := bson.M{
		"$addToSet": bson.M{"enrolledCourseIds": courseID}, // $addToSet prevents duplicates
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
	}
	return updateOne(ctx, r.collection, filter, update)
}

func (r *mongoUserRepository) RemoveEnrolledCourse(ctx context.Context, userID, courseID primitive.ObjectID) error {
	update := bson.M{
		"$pull": bson.M{"enrolledCourseIds": courseID},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	return updateOne(ctx, r.collection, bson.M{"_id": userID}, update)
}

func (r *mongoUserRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteOne(ctx, r.collection, bson.M{"_id": id})
}

// EnsureUserIndexes creates necessary indexes for the users collection.
func EnsureUserIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "externalId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "role", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
