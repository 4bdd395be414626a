package service

import (
	"alcyxob/learnhub/internal/repository"
	"errors"
	"fmt"
)

// Kind classifies service failures; the HTTP layer maps each kind to a status.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
)

// Error is a failure the caller is expected to report to the client.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

// Message returns the client facing text of err. Internal errors are never exposed.
func Message(err error) string {
	var se *Error
	if errors.As(err, &se) && se.Kind != KindInternal {
		return se.Msg
	}
	return "internal server error"
}

func validationf(format string, args ...interface{}) error {
	return newError(KindValidation, fmt.Sprintf(format, args...))
}

func forbiddenf(format string, args ...interface{}) error {
	return newError(KindForbidden, fmt.Sprintf(format, args...))
}

// --- Error Definitions ---
var (
	ErrUserNotFound       = newError(KindNotFound, "user not found")
	ErrUserNotProvisioned = newError(KindUnauthorized, "user is not provisioned")
	ErrCourseNotFound     = newError(KindNotFound, "course not found")
	ErrCourseExists       = newError(KindConflict, "course with this code already exists")
	ErrCourseInactive     = newError(KindValidation, "course is not active")
	ErrAlreadyEnrolled    = newError(KindConflict, "student is already enrolled in this course")
	ErrNotEnrolled        = newError(KindNotFound, "student is not enrolled in this course")
	ErrLessonNotFound     = newError(KindNotFound, "lesson not found")
	ErrLessonExists       = newError(KindConflict, "lesson with this unit code already exists")
	ErrAssignmentNotFound = newError(KindNotFound, "assignment not found")
	ErrSubmissionNotFound = newError(KindNotFound, "submission not found")
	ErrNoFile             = newError(KindNotFound, "submission has no file")
	ErrNotGradable        = newError(KindValidation, "only submitted or overdue submissions can be graded")
	ErrInvalidGrade       = newError(KindValidation, "grade must be P or F")
	ErrNotPDF             = newError(KindValidation, "only PDF files are accepted")
	ErrFileTooLarge       = newError(KindValidation, "file exceeds the upload limit")
	ErrThemeNotFound      = newError(KindNotFound, "theme not found")
	ErrThemeExists        = newError(KindConflict, "theme with this color already exists")
	ErrDiscussionNotFound = newError(KindNotFound, "discussion not found")
	ErrCommentNotFound    = newError(KindNotFound, "comment not found")
	ErrParentNotFound     = newError(KindNotFound, "parent reply not found")
	ErrWriteConflict      = newError(KindConflict, "discussion was modified concurrently, try again")
	ErrNotDirector        = newError(KindForbidden, "only the course director or an admin can do this")
	ErrNotAuthor          = newError(KindForbidden, "only the author can do this")
)

// notFound maps repository.ErrNotFound to the given service error and leaves
// everything else untouched.
func notFound(err error, as *Error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return as
	}
	return err
}
