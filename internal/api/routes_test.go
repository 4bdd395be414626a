package api

import (
	"alcyxob/learnhub/internal/domain"
	"alcyxob/learnhub/internal/identity"
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPing(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(httptest.NewRequest(http.MethodGet, "/ping", nil), "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
}

func TestAuth_RejectsMissingAndInvalidTokens(t *testing.T) {
	s := newTestServer(t)

	code, resp := s.json(http.MethodGet, "/api/v1/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Error)

	code, _ = s.json(http.MethodGet, "/api/v1/me", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	forged, err := identity.NewIssuer("other-secret", testIssuer, time.Hour).Issue("user_x", domain.RoleAdmin)
	require.NoError(t, err)
	code, _ = s.json(http.MethodGet, "/api/v1/me", forged, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestAuth_UnknownSubjectIsUnauthorized(t *testing.T) {
	s := newTestServer(t)
	token, err := s.issuer.Issue("user_never_provisioned", domain.RoleStudent)
	require.NoError(t, err)

	code, _ := s.json(http.MethodGet, "/api/v1/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestMe(t *testing.T) {
	s := newTestServer(t)
	u, token := s.user("ada", domain.RoleStudent)

	code, resp := s.json(http.MethodGet, "/api/v1/me", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, resp.Success)

	var me UserResponse
	into(t, resp, &me)
	assert.Equal(t, u.ID.Hex(), me.ID)
	assert.Equal(t, domain.RoleStudent, me.Role)
}

func TestCapabilities_StudentCannotCreateCourse(t *testing.T) {
	s := newTestServer(t)
	_, token := s.user("sam", domain.RoleStudent)

	code, resp := s.json(http.MethodPost, "/api/v1/courses", token, courseBody("CSC1010"))
	assert.Equal(t, http.StatusForbidden, code)
	assert.False(t, resp.Success)
}

func TestCapabilities_TeacherCannotManageUsers(t *testing.T) {
	s := newTestServer(t)
	_, token := s.user("tom", domain.RoleTeacher)

	code, _ := s.json(http.MethodGet, "/api/v1/admin/users", token, nil)
	assert.Equal(t, http.StatusForbidden, code)
}

func TestCourse_ValidationErrors(t *testing.T) {
	s := newTestServer(t)
	_, token := s.user("tom", domain.RoleTeacher)

	code, _ := s.json(http.MethodPost, "/api/v1/courses", token, courseBody("bad code"))
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.json(http.MethodGet, "/api/v1/courses/not-an-id", token, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.json(http.MethodPost, "/api/v1/courses", token, courseBody("CSC1010"))
	require.Equal(t, http.StatusCreated, code)
	code, _ = s.json(http.MethodPost, "/api/v1/courses", token, courseBody("CSC1010"))
	assert.Equal(t, http.StatusConflict, code)
}

func courseBody(code string) map[string]interface{} {
	return map[string]interface{}{"courseId": code, "title": "Intro to Computing", "credits": 3}
}

// Course creation through grading, end to end over HTTP.
func TestCourseToGradeFlow(t *testing.T) {
	s := newTestServer(t)
	teacher, teacherToken := s.user("tom", domain.RoleTeacher)
	student, studentToken := s.user("sam", domain.RoleStudent)

	code, resp := s.json(http.MethodPost, "/api/v1/courses", teacherToken, courseBody("CSC1010"))
	require.Equal(t, http.StatusCreated, code, resp.Error)
	var course domain.Course
	into(t, resp, &course)
	assert.Equal(t, "CSC1010", course.CourseID)
	assert.Equal(t, 3, course.Credits)
	require.NotNil(t, course.DirectorID)
	assert.Equal(t, teacher.ID, *course.DirectorID)
	coursePath := "/api/v1/courses/" + course.ID.Hex()

	code, resp = s.json(http.MethodPost, coursePath+"/enrollment", studentToken, nil)
	require.Equal(t, http.StatusOK, code, resp.Error)
	code, resp = s.json(http.MethodPost, coursePath+"/enrollment", studentToken, nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.False(t, resp.Success)

	code, resp = s.json(http.MethodPost, coursePath+"/lessons", teacherToken, map[string]interface{}{
		"unitCode": "u1", "title": "Basics",
	})
	require.Equal(t, http.StatusCreated, code, resp.Error)
	var lesson domain.Lesson
	into(t, resp, &lesson)
	assert.Equal(t, "U1", lesson.UnitCode)

	code, resp = s.json(http.MethodPost, coursePath+"/assignments", teacherToken, map[string]interface{}{
		"title":   "Essay",
		"dueDate": time.Now().Add(72 * time.Hour).UTC().Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, code, resp.Error)
	var assignment domain.Assignment
	into(t, resp, &assignment)
	assignmentPath := "/api/v1/assignments/" + assignment.ID.Hex()

	code, resp = s.upload(assignmentPath+"/submission", studentToken, "notes.txt", "text/plain", []byte("hello"))
	assert.Equal(t, http.StatusBadRequest, code)

	code, resp = s.upload(assignmentPath+"/submission", studentToken, "essay.pdf", "application/pdf", samplePDF)
	require.Equal(t, http.StatusOK, code, resp.Error)
	var sub domain.Submission
	into(t, resp, &sub)
	assert.Equal(t, domain.SubmissionSubmitted, sub.Status)
	assert.Equal(t, domain.GradeNone, sub.Grade)
	assert.Equal(t, student.ID, sub.StudentID)
	submissionPath := "/api/v1/submissions/" + sub.ID.Hex()

	code, _ = s.json(http.MethodPost, submissionPath+"/grade", studentToken, map[string]string{"grade": "P"})
	assert.Equal(t, http.StatusForbidden, code)

	code, resp = s.json(http.MethodPost, submissionPath+"/grade", teacherToken, map[string]string{"grade": "X"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, resp = s.json(http.MethodPost, submissionPath+"/grade", teacherToken, map[string]string{
		"grade": "p", "feedback": "Good work",
	})
	require.Equal(t, http.StatusOK, code, resp.Error)
	into(t, resp, &sub)
	assert.Equal(t, domain.SubmissionGraded, sub.Status)
	assert.Equal(t, domain.GradePass, sub.Grade)
	assert.Equal(t, "Good work", sub.Feedback)

	req := httptest.NewRequest(http.MethodGet, submissionPath+"/file", nil)
	rec := s.do(req, teacherToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "essay.pdf")
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, samplePDF, body)

	code, resp = s.json(http.MethodGet, "/api/v1/submissions/mine", studentToken, nil)
	require.Equal(t, http.StatusOK, code)
	var mine []domain.Submission
	into(t, resp, &mine)
	require.Len(t, mine, 1)
	assert.Equal(t, domain.GradePass, mine[0].Grade)
}

func TestSubmission_NotEnrolled(t *testing.T) {
	s := newTestServer(t)
	_, teacherToken := s.user("tom", domain.RoleTeacher)
	_, outsiderToken := s.user("olly", domain.RoleStudent)

	_, resp := s.json(http.MethodPost, "/api/v1/courses", teacherToken, courseBody("CSC2020"))
	var course domain.Course
	into(t, resp, &course)
	_, resp = s.json(http.MethodPost, "/api/v1/courses/"+course.ID.Hex()+"/assignments", teacherToken, map[string]interface{}{
		"title": "Quiz", "dueDate": time.Now().Add(time.Hour).UTC().Format(time.RFC3339),
	})
	var assignment domain.Assignment
	into(t, resp, &assignment)

	code, _ := s.upload("/api/v1/assignments/"+assignment.ID.Hex()+"/submission", outsiderToken, "q.pdf", "application/pdf", samplePDF)
	assert.Equal(t, http.StatusForbidden, code)
}

// A thread with a comment, a reply and a reply to that reply.
func TestForumNestedReplies(t *testing.T) {
	s := newTestServer(t)
	_, teacherToken := s.user("tom", domain.RoleTeacher)
	_, studentToken := s.user("sam", domain.RoleStudent)

	_, resp := s.json(http.MethodPost, "/api/v1/courses", teacherToken, courseBody("CSC3030"))
	var course domain.Course
	into(t, resp, &course)

	code, resp := s.json(http.MethodPost, "/api/v1/courses/"+course.ID.Hex()+"/threads", studentToken, map[string]interface{}{
		"title": "Help", "content": "Stuck on question 2", "tags": []string{"Q2", "q2"},
	})
	require.Equal(t, http.StatusCreated, code, resp.Error)
	var thread domain.Discussion
	into(t, resp, &thread)
	assert.Equal(t, []string{"q2"}, thread.Tags)
	threadPath := "/api/v1/threads/" + thread.ID.Hex()

	code, resp = s.json(http.MethodPost, threadPath+"/comments", teacherToken, map[string]string{"content": "Which part?"})
	require.Equal(t, http.StatusCreated, code, resp.Error)
	into(t, resp, &thread)
	require.Len(t, thread.Comments, 1)
	commentID := thread.Comments[0].ID.Hex()

	code, resp = s.json(http.MethodPost, threadPath+"/comments/"+commentID+"/replies", studentToken, map[string]string{"content": "Part b"})
	require.Equal(t, http.StatusCreated, code, resp.Error)
	into(t, resp, &thread)
	require.Len(t, thread.Comments[0].Replies, 1)
	replyID := thread.Comments[0].Replies[0].ID.Hex()

	code, resp = s.json(http.MethodPost, threadPath+"/comments/"+commentID+"/replies", teacherToken, map[string]string{
		"content": "Check lecture 3", "parentReplyId": replyID,
	})
	require.Equal(t, http.StatusCreated, code, resp.Error)
	into(t, resp, &thread)
	require.Len(t, thread.Comments[0].Replies, 1)
	require.Len(t, thread.Comments[0].Replies[0].Replies, 1)
	assert.Equal(t, "Check lecture 3", thread.Comments[0].Replies[0].Replies[0].Content)

	code, _ = s.json(http.MethodPost, threadPath+"/comments/"+commentID+"/replies", teacherToken, map[string]string{
		"content": "lost", "parentReplyId": course.ID.Hex(),
	})
	assert.Equal(t, http.StatusNotFound, code)

	code, resp = s.json(http.MethodPost, threadPath+"/reactions", studentToken, map[string]string{"type": "like"})
	require.Equal(t, http.StatusOK, code, resp.Error)
	into(t, resp, &thread)
	assert.Equal(t, 1, thread.Reactions.Count(domain.ReactionLike))

	code, _ = s.json(http.MethodPost, threadPath+"/reactions", studentToken, map[string]string{"type": "shrug"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.json(http.MethodGet, "/api/v1/posts/"+thread.ID.Hex(), studentToken, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestIdentityWebhook(t *testing.T) {
	s := newTestServer(t)
	body := []byte(`{"type":"user.created","data":{"id":"user_new","first_name":"Grace","last_name":"Hopper",` +
		`"email_addresses":[{"email_address":"Grace@Example.com"}],"public_metadata":{"role":"teacher"}}}`)

	post := func(sig string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/identity", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		if sig != "" {
			req.Header.Set(identity.SignatureHeader, sig)
		}
		return s.do(req, "")
	}

	assert.Equal(t, http.StatusUnauthorized, post("").Code)
	assert.Equal(t, http.StatusUnauthorized, post(identity.Sign("wrong", body)).Code)

	rec := post(identity.Sign(testWebhookSecret, body))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var out struct {
		Data struct {
			Outcome string `json:"outcome"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "created", out.Data.Outcome)

	rec = post(identity.Sign(testWebhookSecret, body))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "duplicate", out.Data.Outcome)

	token, err := s.issuer.Issue("user_new", domain.RoleTeacher)
	require.NoError(t, err)
	code, resp := s.json(http.MethodGet, "/api/v1/me", token, nil)
	require.Equal(t, http.StatusOK, code)
	var me UserResponse
	into(t, resp, &me)
	assert.Equal(t, "Grace Hopper", me.Name)
	assert.Equal(t, "grace@example.com", me.Email)
	assert.Equal(t, domain.RoleTeacher, me.Role)
}

func TestAdminChangeRole(t *testing.T) {
	s := newTestServer(t)
	admin, adminToken := s.user("root", domain.RoleAdmin)
	student, _ := s.user("sam", domain.RoleStudent)

	code, resp := s.json(http.MethodPut, "/api/v1/admin/users/"+student.ID.Hex()+"/role", adminToken, map[string]string{"role": "teacher"})
	require.Equal(t, http.StatusOK, code, resp.Error)
	var updated UserResponse
	into(t, resp, &updated)
	assert.Equal(t, domain.RoleTeacher, updated.Role)

	code, _ = s.json(http.MethodPut, "/api/v1/admin/users/"+admin.ID.Hex()+"/role", adminToken, map[string]string{"role": "student"})
	assert.Equal(t, http.StatusForbidden, code)
}

func TestThemes(t *testing.T) {
	s := newTestServer(t)
	_, adminToken := s.user("root", domain.RoleAdmin)
	_, studentToken := s.user("sam", domain.RoleStudent)

	code, _ := s.json(http.MethodPost, "/api/v1/themes", studentToken, map[string]string{"hexColor": "#336699"})
	assert.Equal(t, http.StatusForbidden, code)

	code, resp := s.json(http.MethodPost, "/api/v1/themes", adminToken, map[string]string{"hexColor": "#336699"})
	require.Equal(t, http.StatusCreated, code, resp.Error)
	var theme domain.Theme
	into(t, resp, &theme)

	code, resp = s.json(http.MethodPut, "/api/v1/me/theme", studentToken, map[string]string{"themeId": theme.ID.Hex()})
	require.Equal(t, http.StatusOK, code, resp.Error)
	var me UserResponse
	into(t, resp, &me)
	require.NotNil(t, me.ThemeID)
	assert.Equal(t, theme.ID.Hex(), *me.ThemeID)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.do(httptest.NewRequest(http.MethodGet, "/ping", nil), "")

	rec := s.do(httptest.NewRequest(http.MethodGet, "/metrics", nil), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "learnhub_http_requests_total"))
}

func TestForum_OnlyAuthorDeletesComment(t *testing.T) {
	s := newTestServer(t)
	_, directorToken := s.user("tom", domain.RoleTeacher)
	_, otherTeacherToken := s.user("tess", domain.RoleTeacher)
	_, studentToken := s.user("sam", domain.RoleStudent)

	_, resp := s.json(http.MethodPost, "/api/v1/courses", directorToken, courseBody("CSC4040"))
	var course domain.Course
	into(t, resp, &course)

	_, resp = s.json(http.MethodPost, "/api/v1/courses/"+course.ID.Hex()+"/threads", studentToken, map[string]string{
		"title": "Help", "content": "Lab 2",
	})
	var thread domain.Discussion
	into(t, resp, &thread)
	threadPath := "/api/v1/threads/" + thread.ID.Hex()

	_, resp = s.json(http.MethodPost, threadPath+"/comments", studentToken, map[string]string{"content": "mine"})
	into(t, resp, &thread)
	commentPath := threadPath + "/comments/" + thread.Comments[0].ID.Hex()

	code, _ := s.json(http.MethodDelete, commentPath, otherTeacherToken, nil)
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = s.json(http.MethodDelete, commentPath, directorToken, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, resp = s.json(http.MethodGet, threadPath, studentToken, nil)
	require.Equal(t, http.StatusOK, code)
	into(t, resp, &thread)
	assert.Len(t, thread.Comments, 1)

	code, resp = s.json(http.MethodDelete, commentPath, studentToken, nil)
	require.Equal(t, http.StatusOK, code, resp.Error)
	into(t, resp, &thread)
	assert.Empty(t, thread.Comments)
}
