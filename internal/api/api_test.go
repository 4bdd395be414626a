package api

import (
	"alcyxob/learnhub/internal/domain"
	"alcyxob/learnhub/internal/identity"
	"alcyxob/learnhub/internal/metrics"
	"alcyxob/learnhub/internal/repository"
	"alcyxob/learnhub/internal/repository/memory"
	"alcyxob/learnhub/internal/service"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testTokenSecret   = "test-token-secret"
	testIssuer        = "test-idp"
	testWebhookSecret = "test-webhook-secret"
)

var samplePDF = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\ntrailer\n<<>>\n%%EOF\n")

type testServer struct {
	t      *testing.T
	router *gin.Engine
	repos  repository.Repositories
	issuer *identity.Issuer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := zap.NewNop()
	m := metrics.New()
	repos := memory.NewRepositories(memory.NewStore())
	verifier, err := identity.NewVerifier(testTokenSecret, testIssuer)
	require.NoError(t, err)

	svc := Services{
		Users:       service.NewUserService(repos, m, log),
		Courses:     service.NewCourseService(repos, m, log),
		Lessons:     service.NewLessonService(repos, log),
		Assignments: service.NewAssignmentService(repos, nil, log),
		Submissions: service.NewSubmissionService(repos, nil, 10<<20, m, log),
		Themes:      service.NewThemeService(repos),
		Forum:       service.NewForumService(repos, 3, m, log),
	}
	router := gin.New()
	SetupRoutes(router, svc, Options{
		Verifier:       verifier,
		WebhookSecret:  testWebhookSecret,
		MaxUploadBytes: 10 << 20,
		Metrics:        m,
		MetricsPath:    "/metrics",
		Logger:         log,
	})
	return &testServer{
		t:      t,
		router: router,
		repos:  repos,
		issuer: identity.NewIssuer(testTokenSecret, testIssuer, time.Hour),
	}
}

// user stores a local user and returns a session token for it.
func (s *testServer) user(name string, role domain.Role) (*domain.User, string) {
	s.t.Helper()
	u := &domain.User{ExternalID: "user_" + name, Name: name, Email: name + "@example.com", Role: role}
	id, err := s.repos.Users.Create(context.Background(), u)
	require.NoError(s.t, err)
	u.ID = id
	token, err := s.issuer.Issue(u.ExternalID, role)
	require.NoError(s.t, err)
	return u, token
}

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

func (s *testServer) do(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) json(method, path, token string, body interface{}) (int, apiResponse) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := s.do(req, token)
	return rec.Code, decode(s.t, rec.Body)
}

func (s *testServer) upload(path, token, fileName, contentType string, data []byte) (int, apiResponse) {
	s.t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+fileName+`"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(s.t, err)
	_, err = part.Write(data)
	require.NoError(s.t, err)
	require.NoError(s.t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := s.do(req, token)
	return rec.Code, decode(s.t, rec.Body)
}

func decode(t *testing.T, body io.Reader) apiResponse {
	t.Helper()
	var resp apiResponse
	raw, err := io.ReadAll(body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &resp), string(raw))
	}
	return resp
}

func into(t *testing.T, resp apiResponse, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(resp.Data, v), string(resp.Data))
}
