package controllers

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/hagwonhq/academy_backend_v1/internal/grader"
	"github.com/hagwonhq/academy_backend_v1/internal/homework"
	"github.com/hagwonhq/academy_backend_v1/internal/metrics"
	"github.com/hagwonhq/academy_backend_v1/internal/models"
)

type HomeworkController struct {
	DB             *gorm.DB
	Service        *homework.Service
	CallbackSecret string
}

type submitRequest struct {
	AssignmentID string   `json:"assignment_id"`
	Images       []string `json:"images" binding:"required"`
}

// Submit accepts a homework submission with base64-encoded images (data URI
// prefixes allowed), stores it as pending and enqueues grading. The student
// gets an ack before any score exists.
func (hc *HomeworkController) Submit(c *gin.Context) {
	uVal, _ := c.Get("user")
	user := uVal.(models.User)

	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	images := make([][]byte, 0, len(req.Images))
	for i, enc := range req.Images {
		raw, err := decodeImage(enc)
		if err != nil {
			fail(c, http.StatusBadRequest, "invalid_request", "image "+strconv.Itoa(i)+" is not valid base64")
			return
		}
		images = append(images, raw)
	}

	sub, err := hc.Service.Submit(c.Request.Context(), homework.SubmitInput{
		StudentID:    user.ID,
		AssignmentID: strings.TrimSpace(req.AssignmentID),
		Images:       images,
	})
	if err != nil {
		hc.submitError(c, err)
		return
	}

	metrics.Submissions.Inc()
	ok(c, http.StatusOK, gin.H{
		"id":           sub.ID,
		"status":       sub.Status,
		"submitted_at": sub.SubmittedAt,
	})
}

func (hc *HomeworkController) submitError(c *gin.Context, err error) {
	var tooLarge *homework.ImageTooLargeError
	switch {
	case errors.Is(err, homework.ErrNoImages):
		fail(c, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.As(err, &tooLarge):
		fail(c, http.StatusBadRequest, "image_too_large", err.Error())
	case errors.Is(err, homework.ErrStudentNotFound):
		fail(c, http.StatusNotFound, "student_not_found", err.Error())
	case errors.Is(err, homework.ErrAssignmentNotFound):
		fail(c, http.StatusNotFound, "assignment_not_found", err.Error())
	case errors.Is(err, homework.ErrAssignmentClosed):
		fail(c, http.StatusBadRequest, "assignment_not_found", err.Error())
	case errors.Is(err, homework.ErrNotTargeted):
		fail(c, http.StatusForbidden, "assignment_not_found", err.Error())
	default:
		fail(c, http.StatusInternalServerError, "storage_unavailable", err.Error())
	}
}

func decodeImage(enc string) ([]byte, error) {
	if idx := strings.Index(enc, ";base64,"); idx >= 0 {
		enc = enc[idx+len(";base64,"):]
	}
	return base64.StdEncoding.DecodeString(strings.TrimSpace(enc))
}

// GetSubmission returns submission status and scores. Students may only read
// their own.
func (hc *HomeworkController) GetSubmission(c *gin.Context) {
	uVal, _ := c.Get("user")
	user := uVal.(models.User)

	sub, err := hc.Service.Submission(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, homework.ErrSubmissionNotFound) {
			fail(c, http.StatusNotFound, "submission_not_found", err.Error())
			return
		}
		fail(c, http.StatusInternalServerError, "storage_unavailable", err.Error())
		return
	}
	if user.Role == "student" && sub.StudentID != user.ID {
		fail(c, http.StatusNotFound, "submission_not_found", "submission not found")
		return
	}

	ok(c, http.StatusOK, gin.H{
		"id":            sub.ID,
		"student_id":    sub.StudentID,
		"assignment_id": sub.AssignmentID,
		"status":        sub.Status,
		"completeness":  sub.Completeness,
		"accuracy":      sub.Accuracy,
		"effort":        sub.Effort,
		"overall_score": sub.OverallScore,
		"feedback":      sub.Feedback,
		"submitted_at":  sub.SubmittedAt,
	})
}

// AssignmentFeed returns the caller's owed assignments split into today and
// upcoming plus their submitted targets with scores.
func (hc *HomeworkController) AssignmentFeed(c *gin.Context) {
	uVal, _ := c.Get("user")
	user := uVal.(models.User)

	feed, err := hc.Service.AssignmentFeed(c.Request.Context(), user.ID, user.AcademyID, time.Now().UTC())
	if err != nil {
		fail(c, http.StatusInternalServerError, "storage_unavailable", err.Error())
		return
	}

	submitted := make([]gin.H, 0, len(feed.Submitted))
	for _, t := range feed.Submitted {
		submitted = append(submitted, gin.H{
			"assignment_id": t.AssignmentID,
			"title":         t.Assignment.Title,
			"due_date":      t.Assignment.DueDate,
			"score":         t.Score,
			"submission_id": t.SubmissionID,
		})
	}
	ok(c, http.StatusOK, gin.H{
		"today":     assignmentList(feed.Today),
		"upcoming":  assignmentList(feed.Upcoming),
		"submitted": submitted,
	})
}

func assignmentList(items []models.HomeworkAssignment) []gin.H {
	out := make([]gin.H, 0, len(items))
	for _, a := range items {
		out = append(out, gin.H{
			"id":          a.ID,
			"title":       a.Title,
			"description": a.Description,
			"due_date":    a.DueDate,
			"target_type": a.TargetType,
		})
	}
	return out
}

type createAssignmentRequest struct {
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description"`
	DueDate     time.Time `json:"due_date" binding:"required"`
	TargetType  string    `json:"target_type"`
	StudentIDs  []string  `json:"student_ids"`
}

// CreateAssignment creates an assignment owned by the calling teacher.
func (hc *HomeworkController) CreateAssignment(c *gin.Context) {
	uVal, _ := c.Get("user")
	user := uVal.(models.User)

	var req createAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	targetType := req.TargetType
	if targetType == "" {
		targetType = models.TargetTypeAll
	}
	if targetType != models.TargetTypeAll && targetType != models.TargetTypeSpecific {
		fail(c, http.StatusBadRequest, "invalid_request", "target_type must be 'all' or 'specific'")
		return
	}
	if targetType == models.TargetTypeSpecific && len(req.StudentIDs) == 0 {
		fail(c, http.StatusBadRequest, "invalid_request", "specific targeting requires student_ids")
		return
	}

	a, err := hc.Service.CreateAssignment(c.Request.Context(), homework.CreateAssignmentInput{
		TeacherID:   user.ID,
		AcademyID:   user.AcademyID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		DueDate:     req.DueDate,
		TargetType:  targetType,
		StudentIDs:  req.StudentIDs,
	})
	if err != nil {
		fail(c, http.StatusInternalServerError, "storage_unavailable", err.Error())
		return
	}
	ok(c, http.StatusCreated, gin.H{
		"id":          a.ID,
		"title":       a.Title,
		"due_date":    a.DueDate,
		"target_type": a.TargetType,
		"status":      a.Status,
	})
}

// CloseAssignment marks an assignment closed so it drops out of owed feeds.
func (hc *HomeworkController) CloseAssignment(c *gin.Context) {
	a, err := hc.Service.CloseAssignment(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, homework.ErrAssignmentNotFound) {
			fail(c, http.StatusNotFound, "assignment_not_found", err.Error())
			return
		}
		fail(c, http.StatusInternalServerError, "storage_unavailable", err.Error())
		return
	}
	ok(c, http.StatusOK, gin.H{"id": a.ID, "status": a.Status})
}

// ListSubmissions lists submissions for staff, filtered by student or status.
func (hc *HomeworkController) ListSubmissions(c *gin.Context) {
	uVal, _ := c.Get("user")
	user := uVal.(models.User)

	limit, page := pageParams(c)
	base := hc.DB.Model(&models.HomeworkSubmission{}).Where("academy_id = ?", user.AcademyID)
	if sid := strings.TrimSpace(c.Query("student_id")); sid != "" {
		base = base.Where("student_id = ?", sid)
	}
	if status := strings.TrimSpace(c.Query("status")); status != "" {
		base = base.Where("status = ?", status)
	}
	if aid := strings.TrimSpace(c.Query("assignment_id")); aid != "" {
		base = base.Where("assignment_id = ?", aid)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		fail(c, http.StatusInternalServerError, "storage_unavailable", err.Error())
		return
	}
	var items []models.HomeworkSubmission
	if err := base.Order("submitted_at DESC").
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

type gradingCallbackRequest struct {
	SubmissionID string         `json:"submission_id" binding:"required"`
	Success      *bool          `json:"success"`
	Result       grader.Payload `json:"result"`
}

// GradingCallback lets an out-of-process grader push results back. The
// payload goes through the same validation as the pull path; a rejected
// payload marks the submission failed rather than writing zeros.
func (hc *HomeworkController) GradingCallback(c *gin.Context) {
	if hc.CallbackSecret != "" && c.GetHeader("X-Callback-Secret") != hc.CallbackSecret {
		fail(c, http.StatusUnauthorized, "unauthorized", "bad callback secret")
		return
	}

	var req gradingCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	if req.Success != nil && !*req.Success {
		if err := hc.Service.MarkGradingFailed(c.Request.Context(), req.SubmissionID); err != nil {
			hc.callbackError(c, err)
			return
		}
		metrics.Gradings.WithLabelValues("failed").Inc()
		ok(c, http.StatusOK, gin.H{"status": models.SubmissionFailed})
		return
	}

	res, err := req.Result.Validate()
	if err != nil {
		if ferr := hc.Service.MarkGradingFailed(c.Request.Context(), req.SubmissionID); ferr != nil {
			hc.callbackError(c, ferr)
			return
		}
		metrics.Gradings.WithLabelValues("rejected").Inc()
		fail(c, http.StatusBadRequest, "grading_failed", err.Error())
		return
	}

	sub, err := hc.Service.ApplyGrade(c.Request.Context(), req.SubmissionID, *res)
	if err != nil {
		hc.callbackError(c, err)
		return
	}
	metrics.Gradings.WithLabelValues("graded").Inc()
	ok(c, http.StatusOK, gin.H{"id": sub.ID, "status": sub.Status, "overall_score": sub.OverallScore})
}

func (hc *HomeworkController) callbackError(c *gin.Context, err error) {
	if errors.Is(err, homework.ErrSubmissionNotFound) {
		fail(c, http.StatusNotFound, "submission_not_found", err.Error())
		return
	}
	fail(c, http.StatusInternalServerError, "storage_unavailable", err.Error())
}
