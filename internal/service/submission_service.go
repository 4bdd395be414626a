package service

import (
	"alcyxob/learnhub/internal/domain"
	"alcyxob/learnhub/internal/metrics"
	"alcyxob/learnhub/internal/repository"
	"alcyxob/learnhub/internal/storage"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const pdfContentType = "application/pdf"

var pdfMagic = []byte("%PDF-")

// Upload is a file received from a student.
type Upload struct {
	FileName    string
	ContentType string
	Data        []byte
}

// FileDownload streams a stored submission file. The caller closes Body.
type FileDownload struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.ReadCloser
}

type SubmissionService interface {
	// Submit creates or replaces the student's submission for the assignment.
	Submit(ctx context.Context, student *domain.User, assignmentID primitive.ObjectID, up Upload) (*domain.Submission, error)
	GetSubmission(ctx context.Context, actor *domain.User, id primitive.ObjectID) (*domain.Submission, error)
	Download(ctx context.Context, actor *domain.User, id primitive.ObjectID) (*FileDownload, error)
	MySubmissions(ctx context.Context, student *domain.User) ([]domain.Submission, error)
	AssignmentSubmissions(ctx context.Context, actor *domain.User, assignmentID primitive.ObjectID) ([]domain.Submission, error)
	Grade(ctx context.Context, actor *domain.User, id primitive.ObjectID, grade domain.Grade, feedback string) (*domain.Submission, error)
}

type submissionService struct {
	courses     repository.CourseRepository
	assignments repository.AssignmentRepository
	submissions repository.SubmissionRepository
	files       storage.FileStorage // nil keeps file bytes in the submission document
	maxBytes    int64
	metrics     *metrics.Metrics
	log         *zap.Logger
	now         func() time.Time
}

func NewSubmissionService(repos repository.Repositories, files storage.FileStorage, maxBytes int64, m *metrics.Metrics, log *zap.Logger) SubmissionService {
	return &submissionService{
		courses:     repos.Courses,
		assignments: repos.Assignments,
		submissions: repos.Submissions,
		files:       files,
		maxBytes:    maxBytes,
		metrics:     m,
		log:         log.Named("submissions"),
		now:         time.Now,
	}
}

// ObjectKey is where a submission file lives in object storage.
func ObjectKey(assignmentID, studentID primitive.ObjectID) string {
	return fmt.Sprintf("submissions/%s/%s/%s.pdf", assignmentID.Hex(), studentID.Hex(), uuid.NewString())
}

func (s *submissionService) validateUpload(up Upload) error {
	if len(up.Data) == 0 {
		return validationf("file is empty")
	}
	if s.maxBytes > 0 && int64(len(up.Data)) > s.maxBytes {
		return ErrFileTooLarge
	}
	mediaType, _, err := mime.ParseMediaType(up.ContentType)
	if err != nil || mediaType != pdfContentType {
		return ErrNotPDF
	}
	if !bytes.HasPrefix(up.Data, pdfMagic) {
		return ErrNotPDF
	}
	return nil
}

func (s *submissionService) Submit(ctx context.Context, student *domain.User, assignmentID primitive.ObjectID, up Upload) (*domain.Submission, error) {
	if !student.IsStudent() {
		return nil, forbiddenf("only students can submit")
	}
	if err := s.validateUpload(up); err != nil {
		return nil, err
	}
	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		return nil, notFound(err, ErrAssignmentNotFound)
	}
	if assignment.Status == domain.AssignmentClosed {
		return nil, validationf("assignment is closed")
	}
	course, err := s.courses.GetByID(ctx, assignment.CourseID)
	if err != nil {
		return nil, notFound(err, ErrCourseNotFound)
	}
	if !course.HasStudent(student.ID) {
		return nil, forbiddenf("you are not enrolled in this course")
	}

	var previousKey string
	existing, err := s.submissions.GetByStudentAndAssignment(ctx, student.ID, assignmentID)
	switch {
	case err == nil:
		previousKey = existing.FileKey
	case !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}

	now := s.now().UTC()
	status := domain.SubmissionSubmitted
	if assignment.IsPastDue(now) {
		status = domain.SubmissionOverdue
	}
	sub := &domain.Submission{
		StudentID:    student.ID,
		AssignmentID: assignmentID,
		CourseID:     assignment.CourseID,
		Status:       status,
		Grade:        domain.GradeNone,
		FileName:     filepath.Base(strings.TrimSpace(up.FileName)),
		FileType:     pdfContentType,
		FileSize:     int64(len(up.Data)),
		SubmittedAt:  &now,
	}
	if sub.FileName == "" || sub.FileName == "." {
		sub.FileName = "submission.pdf"
	}

	if s.files != nil {
		sub.FileKey = ObjectKey(assignmentID, student.ID)
		if err := s.files.Put(ctx, sub.FileKey, pdfContentType, up.Data); err != nil {
			return nil, err
		}
	} else {
		sub.File = up.Data
	}

	if err := s.submissions.Upsert(ctx, sub); err != nil {
		if sub.FileKey != "" {
			if delErr := s.files.Delete(ctx, sub.FileKey); delErr != nil {
				s.log.Warn("failed to clean up object", zap.String("key", sub.FileKey), zap.Error(delErr))
			}
		}
		return nil, err
	}
	if s.files != nil && previousKey != "" && previousKey != sub.FileKey {
		if err := s.files.Delete(ctx, previousKey); err != nil {
			s.log.Warn("failed to delete replaced object", zap.String("key", previousKey), zap.Error(err))
		}
	}

	s.metrics.Submissions.WithLabelValues(string(status)).Inc()
	s.log.Info("submission stored",
		zap.String("submissionId", sub.ID.Hex()),
		zap.String("assignmentId", assignmentID.Hex()),
		zap.String("status", string(status)),
		zap.Int64("size", sub.FileSize))
	return sub, nil
}

// authorize loads the submission and checks actor is its owner or manages its course.
func (s *submissionService) authorize(ctx context.Context, actor *domain.User, id primitive.ObjectID) (*domain.Submission, error) {
	sub, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrSubmissionNotFound)
	}
	if sub.StudentID == actor.ID {
		return sub, nil
	}
	if _, err := managedCourse(ctx, s.courses, actor, sub.CourseID); err != nil {
		if errors.Is(err, ErrNotDirector) {
			return nil, forbiddenf("you cannot access this submission")
		}
		return nil, err
	}
	return sub, nil
}

func (s *submissionService) GetSubmission(ctx context.Context, actor *domain.User, id primitive.ObjectID) (*domain.Submission, error) {
	return s.authorize(ctx, actor, id)
}

func (s *submissionService) Download(ctx context.Context, actor *domain.User, id primitive.ObjectID) (*FileDownload, error) {
	sub, err := s.authorize(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !sub.HasFile() {
		return nil, ErrNoFile
	}

	dl := &FileDownload{FileName: sub.FileName, ContentType: sub.FileType}
	if dl.ContentType == "" {
		dl.ContentType = pdfContentType
	}
	if len(sub.File) > 0 {
		dl.Size = int64(len(sub.File))
		dl.Body = io.NopCloser(bytes.NewReader(sub.File))
		return dl, nil
	}
	if s.files == nil {
		return nil, fmt.Errorf("submission %s references object %q but no object storage is configured", sub.ID.Hex(), sub.FileKey)
	}
	body, size, err := s.files.Open(ctx, sub.FileKey)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, ErrNoFile
		}
		return nil, err
	}
	dl.Body, dl.Size = body, size
	return dl, nil
}

func (s *submissionService) MySubmissions(ctx context.Context, student *domain.User) ([]domain.Submission, error) {
	return s.submissions.GetByStudentID(ctx, student.ID)
}

func (s *submissionService) AssignmentSubmissions(ctx context.Context, actor *domain.User, assignmentID primitive.ObjectID) ([]domain.Submission, error) {
	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		return nil, notFound(err, ErrAssignmentNotFound)
	}
	if _, err := managedCourse(ctx, s.courses, actor, assignment.CourseID); err != nil {
		return nil, err
	}
	return s.submissions.GetByAssignmentID(ctx, assignmentID)
}

func (s *submissionService) Grade(ctx context.Context, actor *domain.User, id primitive.ObjectID, grade domain.Grade, feedback string) (*domain.Submission, error) {
	grade = domain.Grade(strings.ToUpper(strings.TrimSpace(string(grade))))
	if grade != domain.GradePass && grade != domain.GradeFail {
		return nil, ErrInvalidGrade
	}
	sub, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrSubmissionNotFound)
	}
	if _, err := managedCourse(ctx, s.courses, actor, sub.CourseID); err != nil {
		return nil, err
	}
	if !sub.Status.Gradable() {
		return nil, ErrNotGradable
	}

	now := s.now().UTC()
	grader := actor.ID
	sub.Status = domain.SubmissionGraded
	sub.Grade = grade
	sub.Feedback = strings.TrimSpace(feedback)
	sub.GradedAt = &now
	sub.GradedBy = &grader
	if err := s.submissions.Update(ctx, sub); err != nil {
		return nil, notFound(err, ErrSubmissionNotFound)
	}

	s.metrics.Grades.WithLabelValues(string(grade)).Inc()
	s.log.Info("submission graded",
		zap.String("submissionId", id.Hex()),
		zap.String("grade", string(grade)),
		zap.String("by", actor.ID.Hex()))
	return sub, nil
}
