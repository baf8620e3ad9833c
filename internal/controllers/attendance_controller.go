package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/hagwonhq/academy_backend_v1/internal/attendance"
	"github.com/hagwonhq/academy_backend_v1/internal/metrics"
	"github.com/hagwonhq/academy_backend_v1/internal/models"
	"github.com/hagwonhq/academy_backend_v1/internal/ws"
)

type AttendanceController struct {
	DB       *gorm.DB
	Registry *attendance.Registry
	Service  *attendance.Service
	Feed     *ws.FeedHub
}

type checkInRequest struct {
	Code string `json:"code" binding:"required"`
}

// CheckIn redeems an attendance code. Public endpoint (kiosk/mobile entry
// screen), guarded by rate limiting rather than auth.
func (ac *AttendanceController) CheckIn(c *gin.Context) {
	var req checkInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	rec, err := ac.Service.CheckIn(c.Request.Context(), strings.TrimSpace(req.Code))
	if err != nil {
		status, kind := checkInError(err)
		metrics.CheckIns.WithLabelValues(kind).Inc()
		fail(c, status, kind, err.Error())
		return
	}

	metrics.CheckIns.WithLabelValues(strings.ToLower(rec.Status)).Inc()
	ac.Feed.Broadcast(ws.CheckInEvent{
		RecordID:    rec.ID,
		StudentID:   rec.StudentID,
		AcademyID:   rec.AcademyID,
		ClassID:     rec.ClassID,
		Status:      rec.Status,
		CheckInTime: rec.CheckInTime,
	})
	ok(c, http.StatusOK, gin.H{
		"id":            rec.ID,
		"status":        rec.Status,
		"check_in_time": rec.CheckInTime,
	})
}

func checkInError(err error) (int, string) {
	switch {
	case errors.Is(err, attendance.ErrCodeNotFound):
		return http.StatusNotFound, "invalid_code"
	case errors.Is(err, attendance.ErrCodeInactive):
		return http.StatusNotFound, "code_inactive"
	case errors.Is(err, attendance.ErrCodeExpired):
		return http.StatusNotFound, "code_expired"
	case errors.Is(err, attendance.ErrAlreadyCheckedIn):
		return http.StatusBadRequest, "already_checked_in"
	default:
		return http.StatusInternalServerError, "storage_unavailable"
	}
}

type issueCodeRequest struct {
	StudentID     string `json:"student_id" binding:"required"`
	ClassID       string `json:"class_id"`
	ExpiresInDays int    `json:"expires_in_days"`
}

// IssueCode mints a new active code for a student, retiring any previous one.
func (ac *AttendanceController) IssueCode(c *gin.Context) {
	uVal, _ := c.Get("user")
	user := uVal.(models.User)

	var req issueCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	in := attendance.IssueInput{
		StudentID: strings.TrimSpace(req.StudentID),
		AcademyID: user.AcademyID,
		ClassID:   strings.TrimSpace(req.ClassID),
	}
	if req.ExpiresInDays > 0 {
		exp := time.Now().UTC().AddDate(0, 0, req.ExpiresInDays)
		in.ExpiresAt = &exp
	}

	code, err := ac.Registry.Issue(c.Request.Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, attendance.ErrStudentNotFound):
			fail(c, http.StatusNotFound, "student_not_found", err.Error())
		case errors.Is(err, attendance.ErrCodeExhausted):
			fail(c, http.StatusServiceUnavailable, "code_exhausted", err.Error())
		default:
			fail(c, http.StatusInternalServerError, "storage_unavailable", err.Error())
		}
		return
	}

	ok(c, http.StatusCreated, gin.H{
		"id":         code.ID,
		"student_id": code.StudentID,
		"class_id":   code.ClassID,
		"code":       code.Code,
		"expires_at": code.ExpiresAt,
		"created_at": code.CreatedAt,
	})
}

// ReactivateCode flips a retired code back on in place, keeping the value
// stable across terms.
func (ac *AttendanceController) ReactivateCode(c *gin.Context) {
	studentID := strings.TrimSpace(c.Param("student_id"))
	if studentID == "" {
		fail(c, http.StatusBadRequest, "invalid_request", "invalid student_id")
		return
	}
	code, err := ac.Registry.Reactivate(c.Request.Context(), studentID)
	if err != nil {
		if errors.Is(err, attendance.ErrCodeNotFound) {
			fail(c, http.StatusNotFound, "invalid_code", "student has no code to reactivate")
			return
		}
		fail(c, http.StatusInternalServerError, "storage_unavailable", err.Error())
		return
	}
	ok(c, http.StatusOK, gin.H{
		"id":         code.ID,
		"student_id": code.StudentID,
		"code":       code.Code,
		"is_active":  code.IsActive,
	})
}

// DeactivateCode retires a student's active code without deleting it.
func (ac *AttendanceController) DeactivateCode(c *gin.Context) {
	studentID := strings.TrimSpace(c.Param("student_id"))
	if studentID == "" {
		fail(c, http.StatusBadRequest, "invalid_request", "invalid student_id")
		return
	}
	if err := ac.Registry.Deactivate(c.Request.Context(), studentID); err != nil {
		if errors.Is(err, attendance.ErrCodeNotFound) {
			fail(c, http.StatusNotFound, "invalid_code", "student has no code")
			return
		}
		fail(c, http.StatusInternalServerError, "storage_unavailable", err.Error())
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "deactivated"})
}

// ListCodes lists codes for the caller's academy with pagination/sort.
func (ac *AttendanceController) ListCodes(c *gin.Context) {
	uVal, _ := c.Get("user")
	user := uVal.(models.User)

	limit, page := pageParams(c)
	sortBy := strings.ToLower(c.DefaultQuery("sort_by", "created_at"))
	sortDir := strings.ToUpper(c.DefaultQuery("sort_dir", "DESC"))
	if sortDir != "ASC" && sortDir != "DESC" {
		sortDir = "DESC"
	}
	allowedSorts := map[string]string{
		"created_at": "created_at",
		"code":       "code",
		"student_id": "student_id",
	}
	sortCol, okCol := allowedSorts[sortBy]
	if !okCol {
		sortCol = "created_at"
	}

	base := ac.DB.Model(&models.AttendanceCode{}).Where("academy_id = ?", user.AcademyID)
	switch strings.ToLower(c.DefaultQuery("active", "all")) {
	case "true", "1":
		base = base.Where("is_active = ?", true)
	case "false", "0":
		base = base.Where("is_active = ?", false)
	}
	if sid := strings.TrimSpace(c.Query("student_id")); sid != "" {
		base = base.Where("student_id = ?", sid)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		fail(c, http.StatusInternalServerError, "storage_unavailable", err.Error())
		return
	}
	var items []models.AttendanceCode
	if err := base.Order(sortCol + " " + sortDir).
		Offset((page - 1) * limit).Limit(limit).
		Find(&items).Error; err != nil {
		fail(c, http.StatusInternalServerError, "storage_unavailable", err.Error())
		return
	}

	out := make([]gin.H, 0, len(items))
	for _, code := range items {
		out = append(out, gin.H{
			"id":         code.ID,
			"student_id": code.StudentID,
			"class_id":   code.ClassID,
			"code":       code.Code,
			"is_active":  code.IsActive,
			"expires_at": code.ExpiresAt,
			"created_at": code.CreatedAt,
		})
	}
	ok(c, http.StatusOK, gin.H{
		"data": out,
		"meta": gin.H{"total": total, "limit": limit, "page": page},
	})
}

// ListRecords lists attendance records for the caller's academy, filtered
// by day and class.
func (ac *AttendanceController) ListRecords(c *gin.Context) {
	uVal, _ := c.Get("user")
	user := uVal.(models.User)

	limit, page := pageParams(c)
	base := ac.DB.Model(&models.AttendanceRecord{}).Where("academy_id = ?", user.AcademyID)
	if day := strings.TrimSpace(c.Query("day")); day != "" {
		base = base.Where("check_in_day = ?", day)
	}
	if classID := strings.TrimSpace(c.Query("class_id")); classID != "" {
		base = base.Where("class_id = ?", classID)
	}
	if sid := strings.TrimSpace(c.Query("student_id")); sid != "" {
		base = base.Where("student_id = ?", sid)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		fail(c, http.StatusInternalServerError, "storage_unavailable", err.Error())
		return
	}
	var items []models.AttendanceRecord
	if err := base.Order("check_in_time DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&items).Error; err != nil {
		fail(c, http.StatusInternalServerError, "storage_unavailable", err.Error())
		return
	}
	ok(c, http.StatusOK, gin.H{
		"data": items,
		"meta": gin.H{"total": total, "limit": limit, "page": page},
	})
}

func pageParams(c *gin.Context) (limit, page int) {
	limit = 20
	page = 1
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if v := c.Query("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			page = n
		}
	}
	return limit, page
}
