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

const lessonCollectionName = "lessons"

type mongoLessonRepository struct {
	collection *mongo.Collection
}

// NewMongoLessonRepository creates a new Lesson repository backed by MongoDB.
func NewMongoLessonRepository(db *mongo.Database) repository.LessonRepository {
	return &mongoLessonRepository{
		collection: db.Collection(lessonCollectionName),
	}
}

func (r *mongoLessonRepository) Create(ctx context.Context, lesson *domain.Lesson) (primitive.ObjectID, error) {
	if lesson.CourseID == primitive.NilObjectID || lesson.UnitCode == "" {
		return primitive.NilObjectID, errors.New("lesson requires courseId and unitCode")
	}

	lesson.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	lesson.CreatedAt = now
	lesson.UpdatedAt = now
	if lesson.Status == "" {
		lesson.Status = domain.LessonDraft
	}

	return insert(ctx, r.collection, lesson)
}

func (r *mongoLessonRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Lesson, error) {
	var lesson domain.Lesson
	if err := findOne(ctx, r.collection, bson.M{"_id": id}, &lesson); err != nil {
		return nil, err
	}
	return &lesson, nil
}

// GetByCourseID returns the lessons of a course ordered by unit code.
func (r *mongoLessonRepository) GetByCourseID(ctx context.Context, courseID primitive.ObjectID) ([]domain.Lesson, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "unitCode", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"courseId": courseID}, findOptions)
	if err != nil {
		return nil, err
	}
	lessons := []domain.Lesson{}
	if err := findAll(ctx, cursor, &lessons); err != nil {
		return nil, err
	}
	return lessons, nil
}

// Update writes the editable fields of a lesson.
func (r *mongoLessonRepository) Update(ctx context.Context, lesson *domain.Lesson) error {
	if lesson.ID == primitive.NilObjectID {
		return errors.New("lesson ID is required for update")
	}
	lesson.UpdatedAt = time.Now().UTC()
	update := bson.M{"$set": bson.M{
		"unitCode":    lesson.UnitCode,
		"title":       lesson.Title,
		"description": lesson.Description,
		"objectives":  lesson.Objectives,
		"readingList": lesson.ReadingList,
		"status":      lesson.Status,
		"credits":     lesson.Credits,
		"updatedAt":   lesson.UpdatedAt,
	}}
	return updateOne(ctx, r.collection, bson.M{"_id": lesson.ID}, update)
}

func (r *mongoLessonRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteOne(ctx, r.collection, bson.M{"_id": id})
}

// EnsureLessonIndexes creates necessary indexes for the lessons collection.
func EnsureLessonIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "unitCode", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "courseId", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
