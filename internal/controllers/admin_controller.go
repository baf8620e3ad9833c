package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/hagwonhq/academy_backend_v1/internal/attendance"
	"github.com/hagwonhq/academy_backend_v1/internal/models"
	"github.com/hagwonhq/academy_backend_v1/internal/utils"
)

type AdminController struct {
	DB       *gorm.DB
	Registry *attendance.Registry
}

type createUserRequest struct {
	FullName  string `json:"full_name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6"`
	Phone     string `json:"phone"`
	Role      string `json:"role"`
	AcademyID string `json:"academy_id"`
	Active    *bool  `json:"active"`
}

// CreateUser registers a user in the caller's academy. New students get an
// attendance code issued in the same request so they can check in on day one.
func (a *AdminController) CreateUser(c *gin.Context) {
	uVal, _ := c.Get("user")
	caller := uVal.(models.User)

	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	role := req.Role
	if role == "" {
		role = "student"
	}
	if !IsValidRole(role) {
		fail(c, http.StatusBadRequest, "invalid_request", "invalid role")
		return
	}

	academyID := caller.AcademyID
	if caller.Role == "admin" && req.AcademyID != "" {
		academyID = req.AcademyID
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	pw, err := utils.HashPassword(req.Password)
	if err != nil {
		fail(c, http.StatusInternalServerError, "storage_unavailable", "failed to hash password")
		return
	}

	user := models.User{
		FullName:  req.FullName,
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:     strings.TrimSpace(req.Phone),
		Password:  pw,
		Role:      role,
		AcademyID: academyID,
		Active:    active,
	}
	if err := a.DB.Create(&user).Error; err != nil {
		fail(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	resp := gin.H{
		"id":         user.ID,
		"email":      user.Email,
		"full_name":  user.FullName,
		"role":       user.Role,
		"academy_id": user.AcademyID,
	}
	if role == "student" && active {
		code, err := a.Registry.Issue(c.Request.Context(), attendance.IssueInput{
			StudentID: user.ID,
			AcademyID: academyID,
		})
		if err == nil {
			resp["attendance_code"] = code.Code
		}
	}
	ok(c, http.StatusCreated, resp)
}

// ListUsers lists users in the caller's academy with pagination, sort and
// filters.
func (a *AdminController) ListUsers(c *gin.Context) {
	uVal, _ := c.Get("user")
	caller := uVal.(models.User)

	limit, page := pageParams(c)
	sortBy := strings.ToLower(c.DefaultQuery("sort_by", "created_at"))
	sortDir := strings.ToUpper(c.DefaultQuery("sort_dir", "DESC"))
	if sortDir != "ASC" && sortDir != "DESC" {
		sortDir = "DESC"
	}
	allowedSorts := map[string]string{
		"created_at": "created_at",
		"full_name":  "full_name",
		"email":      "email",
		"role":       "role",
		"active":     "active",
	}
	sortCol, okCol := allowedSorts[sortBy]
	if !okCol {
		sortCol = "created_at"
	}
	order := fmt.Sprintf("%s %s", sortCol, sortDir)

	qText := strings.TrimSpace(c.Query("q"))
	role := strings.TrimSpace(strings.ToLower(c.Query("role")))
	activeStr := strings.TrimSpace(strings.ToLower(c.Query("active")))

	buildQuery := func() (*gorm.DB, error) {
		q := a.DB.Model(&models.User{})
		if caller.Role != "admin" || c.Query("academy_id") == "" {
			q = q.Where("academy_id = ?", caller.AcademyID)
		} else {
			q = q.Where("academy_id = ?", c.Query("academy_id"))
		}
		if qText != "" {
			like := "%" + qText + "%"
			q = q.Where("full_name ILIKE ? OR email ILIKE ?", like, like)
		}
		if role != "" {
			if !IsValidRole(role) {
				return nil, fmt.Errorf("invalid role")
			}
			q = q.Where("role = ?", role)
		}
		switch activeStr {
		case "":
		case "true", "1":
			q = q.Where("active = ?", true)
		case "false", "0":
			q = q.Where("active = ?", false)
		default:
			return nil, fmt.Errorf("invalid active value")
		}
		return q, nil
	}

	countQ, err := buildQuery()
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	var total int64
	if err := countQ.Count(&total).Error; err != nil {
		fail(c, http.StatusInternalServerError, "storage_unavailable", err.Error())
		return
	}

	listQ, _ := buildQuery()
	var users []models.User
	if err := listQ.Order(order).Offset((page - 1) * limit).Limit(limit).Find(&users).Error; err != nil {
		fail(c, http.StatusInternalServerError, "storage_unavailable", err.Error())
		return
	}

	out := make([]gin.H, 0, len(users))
	for _, u := range users {
		out = append(out, gin.H{
			"id":         u.ID,
			"full_name":  u.FullName,
			"email":      u.Email,
			"phone":      u.Phone,
			"role":       u.Role,
			"academy_id": u.AcademyID,
			"active":     u.Active,
			"created_at": u.CreatedAt,
			"updated_at": u.UpdatedAt,
		})
	}
	ok(c, http.StatusOK, gin.H{
		"data": out,
		"meta": gin.H{
			"total":    total,
			"limit":    limit,
			"page":     page,
			"sort_by":  sortCol,
			"sort_dir": sortDir,
		},
	})
}

func (a *AdminController) GetUser(c *gin.Context) {
	var u models.User
	if err := a.DB.Where("id = ?", c.Param("user_id")).First(&u).Error; err != nil {
		fail(c, http.StatusNotFound, "user_not_found", "user not found")
		return
	}
	ok(c, http.StatusOK, gin.H{
		"id":         u.ID,
		"full_name":  u.FullName,
		"email":      u.Email,
		"phone":      u.Phone,
		"role":       u.Role,
		"academy_id": u.AcademyID,
		"active":     u.Active,
		"created_at": u.CreatedAt,
		"updated_at": u.UpdatedAt,
	})
}

type updateUserRequest struct {
	FullName *string `json:"full_name"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
	Active   *bool   `json:"active"`
}

func (a *AdminController) UpdateUser(c *gin.Context) {
	var u models.User
	if err := a.DB.Where("id = ?", c.Param("user_id")).First(&u).Error; err != nil {
		fail(c, http.StatusNotFound, "user_not_found", "user not found")
		return
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	if req.FullName != nil {
		u.FullName = *req.FullName
	}
	if req.Email != nil {
		u.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Phone != nil {
		u.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Role != nil {
		if !IsValidRole(*req.Role) {
			fail(c, http.StatusBadRequest, "invalid_request", "invalid role")
			return
		}
		u.Role = *req.Role
	}
	if req.Active != nil {
		u.Active = *req.Active
	}
	if req.Password != nil && strings.TrimSpace(*req.Password) != "" {
		pw, err := utils.HashPassword(strings.TrimSpace(*req.Password))
		if err != nil {
			fail(c, http.StatusInternalServerError, "storage_unavailable", "failed to hash password")
			return
		}
		u.Password = pw
	}

	if err := a.DB.Save(&u).Error; err != nil {
		fail(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	// Deactivating a student retires their code so it stops scanning at the
	// door immediately.
	if req.Active != nil && !*req.Active && u.Role == "student" {
		if err := a.Registry.Deactivate(c.Request.Context(), u.ID); err != nil && !errors.Is(err, attendance.ErrCodeNotFound) {
			fail(c, http.StatusInternalServerError, "storage_unavailable", err.Error())
			return
		}
	}
	ok(c, http.StatusOK, gin.H{"message": "updated"})
}

func (a *AdminController) DeleteUser(c *gin.Context) {
	userID := strings.TrimSpace(c.Param("user_id"))
	if userID == "" {
		fail(c, http.StatusBadRequest, "invalid_request", "invalid user_id")
		return
	}
	err := a.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("student_id = ?", userID).Delete(&models.AttendanceCode{}).Error; err != nil {
			return err
		}
		if err := tx.Where("student_id = ?", userID).Delete(&models.ClassStudent{}).Error; err != nil {
			return err
		}
		if err := tx.Where("student_id = ?", userID).Delete(&models.HomeworkAssignmentTarget{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id_ref = ?", userID).Delete(&models.RefreshToken{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id = ?", userID).Delete(&models.User{}).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "deleted"})
}
