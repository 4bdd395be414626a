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

const submissionCollectionName = "submissions"

type mongoSubmissionRepository struct {
	collection *mongo.Collection
}

// NewMongoSubmissionRepository creates a new Submission repository backed by MongoDB.
func NewMongoSubmissionRepository(db *mongo.Database) repository.SubmissionRepository {
	return &mongoSubmissionRepository{
		collection: db.Collection(submissionCollectionName),
	}
}

// Upsert writes the submission for (student, assignment), creating it on first use.
// The unique index on the pair guarantees a single record.
func (r *mongoSubmissionRepository) Upsert(ctx context.Context, sub *domain.Submission) error {
	if sub.StudentID == primitive.NilObjectID || sub.AssignmentID == primitive.NilObjectID {
		return errors.New("submission requires studentId and assignmentId")
	}

	now := time.Now().UTC()
	filter := bson.M{"studentId": sub.StudentID, "assignmentId": sub.AssignmentID}
	update := bson.M{
		"$set": bson.M{
			"courseId":    sub.CourseID,
			"status":      sub.Status,
			"grade":       sub.Grade,
			"feedback":    sub.Feedback,
			"file":        sub.File,
			"fileKey":     sub.FileKey,
			"fileName":    sub.FileName,
			"fileType":    sub.FileType,
			"fileSize":    sub.FileSize,
			"submittedAt": sub.SubmittedAt,
			"gradedAt":    sub.GradedAt,
			"gradedBy":    sub.GradedBy,
			"updatedAt":   now,
		},
		"$setOnInsert": bson.M{"_id": primitive.NewObjectID(), "createdAt": now},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(sub)
	if mongo.IsDuplicateKeyError(err) {
		// two concurrent upserts raced on the unique index; the second one now matches
		err = r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(sub)
	}
	if err != nil {
		return pkgerrors.Wrap(err, "upsert submission")
	}
	return nil
}

// EnsurePending inserts a Pending record for every student lacking one.
func (r *mongoSubmissionRepository) EnsurePending(ctx context.Context, assignment *domain.Assignment, studentIDs []primitive.ObjectID) error {
	if len(studentIDs) == 0 {
		return nil
	}
	now := time.Now().UTC()
	models := make([]mongo.WriteModel, 0, len(studentIDs))
	for _, studentID := range studentIDs {
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"studentId": studentID, "assignmentId": assignment.ID}).
			SetUpdate(bson.M{"$setOnInsert": bson.M{
				"_id":       primitive.NewObjectID(),
				"courseId":  assignment.CourseID,
				"status":    domain.SubmissionPending,
				"grade":     domain.GradeNone,
				"createdAt": now,
				"updatedAt": now,
			}}).
			SetUpsert(true))
	}
	_, err := r.collection.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return pkgerrors.Wrap(err, "create pending submissions")
	}
	return nil
}

func (r *mongoSubmissionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Submission, error) {
	var sub domain.Submission
	if err := findOne(ctx, r.collection, bson.M{"_id": id}, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *mongoSubmissionRepository) GetByStudentAndAssignment(ctx context.Context, studentID, assignmentID primitive.ObjectID) (*domain.Submission, error) {
	var sub domain.Submission
	filter := bson.M{"studentId": studentID, "assignmentId": assignmentID}
	if err := findOne(ctx, r.collection, filter, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

// fileless keeps listings from pulling every inline PDF over the wire.
var fileless = options.Find().SetProjection(bson.M{"file": 0})

func (r *mongoSubmissionRepository) GetByAssignmentID(ctx context.Context, assignmentID primitive.ObjectID) ([]domain.Submission, error) {
	return r.find(ctx, bson.M{"assignmentId": assignmentID})
}

func (r *mongoSubmissionRepository) GetByStudentID(ctx context.Context, studentID primitive.ObjectID) ([]domain.Submission, error) {
	return r.find(ctx, bson.M{"studentId": studentID})
}

func (r *mongoSubmissionRepository) find(ctx context.Context, filter bson.M) ([]domain.Submission, error) {
	cursor, err := r.collection.Find(ctx, filter, fileless, options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	subs := []domain.Submission{}
	if err := findAll(ctx, cursor, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

// Update writes grading fields.
func (r *mongoSubmissionRepository) Update(ctx context.Context, sub *domain.Submission) error {
	if sub.ID == primitive.NilObjectID {
		return errors.New("submission ID is required for update")
	}
	sub.UpdatedAt = time.Now().UTC()
	update := bson.M{"$set": bson.M{
		"status":    sub.Status,
		"grade":     sub.Grade,
		"feedback":  sub.Feedback,
		"gradedAt":  sub.GradedAt,
		"gradedBy":  sub.GradedBy,
		"updatedAt": sub.UpdatedAt,
	}}
	return updateOne(ctx, r.collection, bson.M{"_id": sub.ID}, update)
}

func (r *mongoSubmissionRepository) DeleteByAssignmentID(ctx context.Context, assignmentID primitive.ObjectID) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"assignmentId": assignmentID})
	if err != nil {
		return 0, pkgerrors.Wrap(err, "delete submissions")
	}
	return result.DeletedCount, nil
}

// EnsureSubmissionIndexes creates necessary indexes for the submissions collection.
func EnsureSubmissionIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			// one submission per (student, assignment)
			Keys:    bson.D{{Key: "studentId", Value: 1}, {Key: "assignmentId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "assignmentId", Value: 1}},
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
