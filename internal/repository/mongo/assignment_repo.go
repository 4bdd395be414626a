package mongo

import (
	"alcyxob/learnhub/internal/domain"
	"alcyxob/learnhub/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const assignmentCollectionName = "assignments"

// mongoAssignmentRepository implements repository.AssignmentRepository
type mongoAssignmentRepository struct {
	collection *mongo.Collection
}

// NewMongoAssignmentRepository creates a new Assignment repository backed by MongoDB.
func NewMongoAssignmentRepository(db *mongo.Database) repository.AssignmentRepository {
	return &mongoAssignmentRepository{
		collection: db.Collection(assignmentCollectionName),
	}
}

// Create inserts a new assignment into the database.
func (r *mongoAssignmentRepository) Create(ctx context.Context, assignment *domain.Assignment) (primitive.ObjectID, error) {
	if assignment.CourseID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("assignment requires courseId")
	}

	assignment.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	assignment.CreatedAt = now
	assignment.UpdatedAt = now
	if assignment.Status == "" {
		assignment.Status = domain.AssignmentPublished
	}

	return insert(ctx, r.collection, assignment)
}

// GetByID retrieves an assignment by its ID.
func (r *mongoAssignmentRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Assignment, error) {
	var assignment domain.Assignment
	if err := findOne(ctx, r.collection, bson.M{"_id": id}, &assignment); err != nil {
		return nil, err
	}
	return &assignment, nil
}

// GetByCourseID retrieves all assignments of a course, earliest due first.
func (r *mongoAssignmentRepository) GetByCourseID(ctx context.Context, courseID primitive.ObjectID) ([]domain.Assignment, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "dueDate", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"courseId": courseID}, findOptions)
	if err != nil {
		return nil, err
	}
	assignments := []domain.Assignment{}
	if err := findAll(ctx, cursor, &assignments); err != nil {
		return nil, err
	}
	return assignments, nil
}

func (r *mongoAssignmentRepository) SetStatus(ctx context.Context, id primitive.ObjectID, status domain.AssignmentStatus) error {
	update := bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now().UTC()}}
	return updateOne(ctx, r.collection, bson.M{"_id": id}, update)
}

func (r *mongoAssignmentRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteOne(ctx, r.collection, bson.M{"_id": id})
}

// EnsureAssignmentIndexes creates necessary indexes for the assignments collection.
func EnsureAssignmentIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			// a course's assignments sorted by due date
			Keys:    bson.D{{Key: "courseId", Value: 1}, {Key: "dueDate", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
