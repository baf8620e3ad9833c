package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hagwonhq/academy_backend_v1/internal/attendance"
	"github.com/hagwonhq/academy_backend_v1/internal/models"
	"github.com/hagwonhq/academy_backend_v1/internal/ws"
)

// stubAttendanceRepo backs the check-in handler tests without Postgres.
type stubAttendanceRepo struct {
	code    *models.AttendanceCode
	records []*models.AttendanceRecord
}

func (s *stubAttendanceRepo) CreateCode(context.Context, *models.AttendanceCode) error { return nil }
func (s *stubAttendanceRepo) SaveCode(context.Context, *models.AttendanceCode) error   { return nil }

func (s *stubAttendanceRepo) CodeByValue(_ context.Context, value string) (*models.AttendanceCode, error) {
	if s.code != nil && s.code.Code == value {
		cp := *s.code
		return &cp, nil
	}
	return nil, nil
}

func (s *stubAttendanceRepo) CodeByStudent(context.Context, string) (*models.AttendanceCode, error) {
	return nil, nil
}
func (s *stubAttendanceRepo) DeactivateCodes(context.Context, string) error { return nil }

func (s *stubAttendanceRepo) CreateRecord(_ context.Context, rec *models.AttendanceRecord) error {
	for _, r := range s.records {
		if r.StudentID == rec.StudentID && r.ClassID == rec.ClassID && r.CheckInDay == rec.CheckInDay {
			return attendance.ErrDuplicate
		}
	}
	rec.ID = "rec-1"
	s.records = append(s.records, rec)
	return nil
}

func (s *stubAttendanceRepo) RecordForDay(_ context.Context, studentID, classID, day string) (*models.AttendanceRecord, error) {
	for _, r := range s.records {
		if r.StudentID == studentID && r.ClassID == classID && r.CheckInDay == day {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *stubAttendanceRepo) ScheduleFor(context.Context, string, time.Weekday) (*models.ClassSchedule, error) {
	return nil, nil
}
func (s *stubAttendanceRepo) AcademyTimezone(context.Context, string) (string, error) {
	return "", nil
}
func (s *stubAttendanceRepo) StudentExists(context.Context, string) (bool, error) { return true, nil }

func newCheckInRouter(repo attendance.Repository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	registry := attendance.NewRegistry(repo)
	svc := attendance.NewService(repo, registry)
	ctrl := &AttendanceController{
		Registry: registry,
		Service:  svc,
		Feed:     ws.NewFeedHub(),
	}
	r := gin.New()
	r.POST("/api/v1/attendance/checkin", ctrl.CheckIn)
	return r
}

func postCheckIn(t *testing.T, r *gin.Engine, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/attendance/checkin", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func TestCheckInEndpointSuccess(t *testing.T) {
	repo := &stubAttendanceRepo{
		code: &models.AttendanceCode{
			ID: "code-1", StudentID: "s1", AcademyID: "a1", Code: "123456", IsActive: true,
		},
	}
	r := newCheckInRouter(repo)

	w, resp := postCheckIn(t, r, `{"code":"123456"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, resp["success"])
	assert.NotEmpty(t, resp["status"])
	assert.NotEmpty(t, resp["id"])
}

func TestCheckInEndpointErrorKinds(t *testing.T) {
	now := time.Now().Add(-time.Hour)
	cases := []struct {
		name       string
		code       *models.AttendanceCode
		body       string
		wantStatus int
		wantKind   string
	}{
		{
			name:       "unknown code",
			code:       nil,
			body:       `{"code":"999999"}`,
			wantStatus: http.StatusNotFound,
			wantKind:   "invalid_code",
		},
		{
			name:       "inactive code",
			code:       &models.AttendanceCode{StudentID: "s1", AcademyID: "a1", Code: "123456", IsActive: false},
			body:       `{"code":"123456"}`,
			wantStatus: http.StatusNotFound,
			wantKind:   "code_inactive",
		},
		{
			name:       "expired code",
			code:       &models.AttendanceCode{StudentID: "s1", AcademyID: "a1", Code: "123456", IsActive: true, ExpiresAt: &now},
			body:       `{"code":"123456"}`,
			wantStatus: http.StatusNotFound,
			wantKind:   "code_expired",
		},
		{
			name:       "missing body field",
			code:       nil,
			body:       `{}`,
			wantStatus: http.StatusBadRequest,
			wantKind:   "invalid_request",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newCheckInRouter(&stubAttendanceRepo{code: tc.code})
			w, resp := postCheckIn(t, r, tc.body)
			assert.Equal(t, tc.wantStatus, w.Code)
			assert.Equal(t, false, resp["success"])
			assert.Equal(t, tc.wantKind, resp["error"])
		})
	}
}

func TestCheckInEndpointDuplicate(t *testing.T) {
	repo := &stubAttendanceRepo{
		code: &models.AttendanceCode{
			ID: "code-1", StudentID: "s1", AcademyID: "a1", Code: "123456", IsActive: true,
		},
	}
	r := newCheckInRouter(repo)

	w, _ := postCheckIn(t, r, `{"code":"123456"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w, resp := postCheckIn(t, r, `{"code":"123456"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "already_checked_in", resp["error"])
}
