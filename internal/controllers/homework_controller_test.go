package controllers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hagwonhq/academy_backend_v1/internal/homework"
	"github.com/hagwonhq/academy_backend_v1/internal/models"
)

// stubHomeworkRepo backs the submission handler tests without Postgres.
type stubHomeworkRepo struct {
	student     *models.User
	submissions map[string]*models.HomeworkSubmission
}

func (s *stubHomeworkRepo) StudentByID(_ context.Context, id string) (*models.User, error) {
	if s.student != nil && s.student.ID == id {
		cp := *s.student
		return &cp, nil
	}
	return nil, nil
}

func (s *stubHomeworkRepo) CreateAssignment(context.Context, *models.HomeworkAssignment, []models.HomeworkAssignmentTarget) error {
	return nil
}
func (s *stubHomeworkRepo) AssignmentByID(context.Context, string) (*models.HomeworkAssignment, error) {
	return nil, nil
}
func (s *stubHomeworkRepo) SaveAssignment(context.Context, *models.HomeworkAssignment) error {
	return nil
}
func (s *stubHomeworkRepo) ActiveAssignmentsFor(context.Context, string, string, time.Time) ([]models.HomeworkAssignment, error) {
	return nil, nil
}
func (s *stubHomeworkRepo) TargetFor(context.Context, string, string) (*models.HomeworkAssignmentTarget, error) {
	return nil, nil
}
func (s *stubHomeworkRepo) EnsureTarget(context.Context, string, string) (*models.HomeworkAssignmentTarget, error) {
	return nil, nil
}
func (s *stubHomeworkRepo) SaveTarget(context.Context, *models.HomeworkAssignmentTarget) error {
	return nil
}
func (s *stubHomeworkRepo) SubmittedTargets(context.Context, string) ([]models.HomeworkAssignmentTarget, error) {
	return nil, nil
}

func (s *stubHomeworkRepo) CreateSubmission(_ context.Context, sub *models.HomeworkSubmission, _ []models.HomeworkImage) error {
	sub.ID = "sub-1"
	if s.submissions == nil {
		s.submissions = map[string]*models.HomeworkSubmission{}
	}
	s.submissions[sub.ID] = sub
	return nil
}

func (s *stubHomeworkRepo) SubmissionByID(_ context.Context, id string) (*models.HomeworkSubmission, error) {
	if sub, ok := s.submissions[id]; ok {
		cp := *sub
		return &cp, nil
	}
	return nil, nil
}

func (s *stubHomeworkRepo) SaveSubmission(_ context.Context, sub *models.HomeworkSubmission) error {
	s.submissions[sub.ID] = sub
	return nil
}

func (s *stubHomeworkRepo) ImagesBySubmission(context.Context, string) ([]models.HomeworkImage, error) {
	return nil, nil
}

func newSubmitRouter(repo homework.Repository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	ctrl := &HomeworkController{
		Service: homework.NewService(repo, nil, nil, zerolog.Nop()),
	}
	r := gin.New()
	r.POST("/api/v1/homework/submissions", func(c *gin.Context) {
		c.Set("user", models.User{ID: "s1", Role: "student", AcademyID: "a1", Active: true})
		c.Next()
	}, ctrl.Submit)
	return r
}

func postSubmission(t *testing.T, r *gin.Engine, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/homework/submissions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func TestSubmitEndpointAcksPending(t *testing.T) {
	repo := &stubHomeworkRepo{
		student: &models.User{ID: "s1", Role: "student", AcademyID: "a1", Active: true},
	}
	r := newSubmitRouter(repo)

	img := base64.StdEncoding.EncodeToString([]byte("page-one"))
	body, err := json.Marshal(gin.H{"images": []string{img}})
	require.NoError(t, err)

	w, resp := postSubmission(t, r, string(body))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "sub-1", resp["id"])
	assert.Equal(t, models.SubmissionPending, resp["status"])
}

func TestSubmitEndpointRejectsOversizedImage(t *testing.T) {
	repo := &stubHomeworkRepo{
		student: &models.User{ID: "s1", Role: "student", AcademyID: "a1", Active: true},
	}
	r := newSubmitRouter(repo)

	big := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte("x"), homework.MaxImageBytes+1))
	body, err := json.Marshal(gin.H{"images": []string{big}})
	require.NoError(t, err)

	w, resp := postSubmission(t, r, string(body))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, resp["success"])
	assert.Equal(t, "image_too_large", resp["error"])
}

func TestSubmitEndpointRejectsBadBase64(t *testing.T) {
	repo := &stubHomeworkRepo{
		student: &models.User{ID: "s1", Role: "student", AcademyID: "a1", Active: true},
	}
	r := newSubmitRouter(repo)

	w, resp := postSubmission(t, r, `{"images":["not-base64!!"]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_request", resp["error"])
}
