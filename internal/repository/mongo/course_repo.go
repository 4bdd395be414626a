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

const courseCollectionName = "courses"

type mongoCourseRepository struct {
	collection *mongo.Collection
}

// NewMongoCourseRepository creates a new Course repository backed by MongoDB.
func NewMongoCourseRepository(db *mongo.Database) repository.CourseRepository {
	return &mongoCourseRepository{
		collection: db.Collection(courseCollectionName),
	}
}

// Create inserts a new course. A clash on the course code yields repository.ErrDuplicate.
func (r *mongoCourseRepository) Create(ctx context.Context, course *domain.Course) (primitive.ObjectID, error) {
	if course.CourseID == "" || course.Title == "" {
		return primitive.NilObjectID, errors.New("course requires courseId and title")
	}

	course.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	course.CreatedAt = now
	course.UpdatedAt = now
	if course.Status == "" {
		course.Status = domain.CourseActive
	}
	// empty arrays rather than null so $addToSet/$pull always have a target
	if course.LessonIDs == nil {
		course.LessonIDs = []primitive.ObjectID{}
	}
	if course.AssignmentIDs == nil {
		course.AssignmentIDs = []primitive.ObjectID{}
	}
	if course.EnrolledStudentIDs == nil {
		course.EnrolledStudentIDs = []primitive.ObjectID{}
	}

	return insert(ctx, r.collection, course)
}

func (r *mongoCourseRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Course, error) {
	var course domain.Course
	if err := findOne(ctx, r.collection, bson.M{"_id": id}, &course); err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *mongoCourseRepository) GetByCode(ctx context.Context, code string) (*domain.Course, error) {
	var course domain.Course
	if err := findOne(ctx, r.collection, bson.M{"courseId": code}, &course); err != nil {
		return nil, err
	}
	return &course, nil
}

// List returns courses sorted by code.
func (r *mongoCourseRepository) List(ctx context.Context, f repository.CourseFilter) ([]domain.Course, error) {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.DirectorID != nil {
		filter["directorId"] = *f.DirectorID
	}
	if f.IDs != nil {
		filter["_id"] = bson.M{"$in": f.IDs}
	}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "courseId", Value: 1}}))
	if err != nil {
		return nil, err
	}
	courses := []domain.Course{}
	if err := findAll(ctx, cursor, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *mongoCourseRepository) SetStatus(ctx context.Context, id primitive.ObjectID, status domain.CourseStatus) error {
	return r.set(ctx, id, bson.M{"status": status})
}

func (r *mongoCourseRepository) SetDirector(ctx context.Context, id primitive.ObjectID, directorID primitive.ObjectID) error {
	return r.set(ctx, id, bson.M{"directorId": directorID})
}

// AddStudent pushes the student only when absent; the filter makes the check and
// the write a single atomic step.
func (r *mongoCourseRepository) AddStudent(ctx context.Context, courseID, studentID primitive.ObjectID) error {
	filter := bson.M{"_id": courseID, "enrolledStudentIds": bson.M{"$ne": studentID}}
	update := bson.M{
		"$push": bson.M{"enrolledStudentIds": studentID},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	err := updateOne(ctx, r.collection, filter, update)
	if errors.Is(err, repository.ErrNotFound) {
		// either the course is missing or the student is already there
		if _, getErr := r.GetByID(ctx, courseID); getErr != nil {
			return getErr
		}
		return repository.ErrDuplicate
	}
	return err
}

// RemoveStudent returns ErrNotFound when the student was not enrolled.
func (r *mongoCourseRepository) RemoveStudent(ctx context.Context, courseID, studentID primitive.ObjectID) error {
	filter := bson.M{"_id": courseID, "enrolledStudentIds": studentID}
	return r.pull(ctx, filter, "enrolledStudentIds", studentID)
}

func (r *mongoCourseRepository) AddLesson(ctx context.Context, courseID, lessonID primitive.ObjectID) error {
	return r.addToSet(ctx, courseID, "lessonIds", lessonID)
}

func (r *mongoCourseRepository) RemoveLesson(ctx context.Context, courseID, lessonID primitive.ObjectID) error {
	return r.pull(ctx, bson.M{"_id": courseID}, "lessonIds", lessonID)
}

func (r *mongoCourseRepository) AddAssignment(ctx context.Context, courseID, assignmentID primitive.ObjectID) error {
	return r.addToSet(ctx, courseID, "assignmentIds", assignmentID)
}

func (r *mongoCourseRepository) RemoveAssignment(ctx context.Context, courseID, assignmentID primitive.ObjectID) error {
	return r.pull(ctx, bson.M{"_id": courseID}, "assignmentIds", assignmentID)
}

func (r *mongoCourseRepository) set(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	fields["updatedAt"] = time.Now().UTC()
	return updateOne(ctx, r.collection, bson.M{"_id": id}, bson.M{"$set": fields})
}

func (r *mongoCourseRepository) addToSet(ctx context.Context, id primitive.ObjectID, field string, value primitive.ObjectID) error {
	update := bson.M{
		"$addToSet": bson.M{field: value},
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
	}
	return updateOne(ctx, r.collection, bson.M{"_id": id}, update)
}

func (r *mongoCourseRepository) pull(ctx context.Context, filter bson.M, field string, value primitive.ObjectID) error {
	update := bson.M{
		"$pull": bson.M{field: value},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	return updateOne(ctx, r.collection, filter, update)
}

// EnsureCourseIndexes creates necessary indexes for the courses collection.
func EnsureCourseIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "courseId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "directorId", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
