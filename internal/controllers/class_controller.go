package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/hagwonhq/academy_backend_v1/internal/models"
)

type ClassController struct {
	DB *gorm.DB
}

type createClassRequest struct {
	Name   string `json:"name" binding:"required"`
	Active *bool  `json:"active"`
}

func (cc *ClassController) CreateClass(c *gin.Context) {
	uVal, _ := c.Get("user")
	user := uVal.(models.User)

	var req createClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}

	class := models.Class{
		AcademyID: user.AcademyID,
		Name:      strings.TrimSpace(req.Name),
		Active:    active,
	}
	if err := cc.DB.Create(&class).Error; err != nil {
		fail(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	ok(c, http.StatusCreated, gin.H{"id": class.ID, "name": class.Name, "active": class.Active})
}

func (cc *ClassController) ListClasses(c *gin.Context) {
	uVal, _ := c.Get("user")
	user := uVal.(models.User)

	limit, page := pageParams(c)
	base := cc.DB.Model(&models.Class{}).Where("academy_id = ?", user.AcademyID)
	if qText := strings.TrimSpace(c.Query("q")); qText != "" {
		base = base.Where("name ILIKE ?", "%"+qText+"%")
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		fail(c, http.StatusInternalServerError, "storage_unavailable", err.Error())
		return
	}
	var items []models.Class
	if err := base.Order("created_at DESC").
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

type updateClassRequest struct {
	Name   *string `json:"name"`
	Active *bool   `json:"active"`
}

func (cc *ClassController) UpdateClass(c *gin.Context) {
	var class models.Class
	if err := cc.DB.Where("id = ?", c.Param("class_id")).First(&class).Error; err != nil {
		fail(c, http.StatusNotFound, "class_not_found", "class not found")
		return
	}

	var req updateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if req.Name != nil {
		class.Name = strings.TrimSpace(*req.Name)
	}
	if req.Active != nil {
		class.Active = *req.Active
	}
	if err := cc.DB.Save(&class).Error; err != nil {
		fail(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "updated"})
}

type scheduleEntry struct {
	Weekday   int    `json:"weekday" binding:"min=0,max=6"`
	StartTime string `json:"start_time" binding:"required"`
}

type setScheduleRequest struct {
	Entries []scheduleEntry `json:"entries" binding:"required"`
}

// SetSchedule replaces the class schedule with the given per-weekday start
// times. Start times are zero-padded "HH:MM".
func (cc *ClassController) SetSchedule(c *gin.Context) {
	classID := c.Param("class_id")
	var class models.Class
	if err := cc.DB.Where("id = ?", classID).First(&class).Error; err != nil {
		fail(c, http.StatusNotFound, "class_not_found", "class not found")
		return
	}

	var req setScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	for _, e := range req.Entries {
		if !validStartTime(e.StartTime) {
			fail(c, http.StatusBadRequest, "invalid_request", "start_time must be zero-padded HH:MM, got "+e.StartTime)
			return
		}
	}

	err := cc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("class_id = ?", classID).Delete(&models.ClassSchedule{}).Error; err != nil {
			return err
		}
		for _, e := range req.Entries {
			sched := models.ClassSchedule{
				ClassID:   classID,
				Weekday:   e.Weekday,
				StartTime: e.StartTime,
			}
			if err := tx.Create(&sched).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "schedule updated", "entries": len(req.Entries)})
}

func validStartTime(v string) bool {
	if len(v) != 5 || v[2] != ':' {
		return false
	}
	for i, ch := range v {
		if i == 2 {
			continue
		}
		if ch < '0' || ch > '9' {
			return false
		}
	}
	return v >= "00:00" && v <= "23:59" && v[3] < '6'
}

type enrollRequest struct {
	StudentID string `json:"student_id" binding:"required"`
}

func (cc *ClassController) EnrollStudent(c *gin.Context) {
	classID := c.Param("class_id")
	var class models.Class
	if err := cc.DB.Where("id = ?", classID).First(&class).Error; err != nil {
		fail(c, http.StatusNotFound, "class_not_found", "class not found")
		return
	}

	var req enrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	var student models.User
	if err := cc.DB.Where("id = ? AND role = ?", req.StudentID, "student").First(&student).Error; err != nil {
		fail(c, http.StatusNotFound, "student_not_found", "student not found")
		return
	}

	enrollment := models.ClassStudent{ClassID: classID, StudentID: student.ID}
	if err := cc.DB.Where("class_id = ? AND student_id = ?", classID, student.ID).
		FirstOrCreate(&enrollment).Error; err != nil {
		fail(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "enrolled"})
}

func (cc *ClassController) UnenrollStudent(c *gin.Context) {
	classID := c.Param("class_id")
	studentID := c.Param("student_id")
	if err := cc.DB.Where("class_id = ? AND student_id = ?", classID, studentID).
		Delete(&models.ClassStudent{}).Error; err != nil {
		fail(c, http.StatusInternalServerError, "storage_unavailable", err.Error())
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "unenrolled"})
}

// Roster lists the students enrolled in a class.
func (cc *ClassController) Roster(c *gin.Context) {
	classID := c.Param("class_id")
	var class models.Class
	if err := cc.DB.Where("id = ?", classID).First(&class).Error; err != nil {
		fail(c, http.StatusNotFound, "class_not_found", "class not found")
		return
	}

	var students []models.User
	sub := cc.DB.Table("class_students").Select("student_id").Where("class_id = ?", classID)
	if err := cc.DB.Where("id IN (?)", sub).Order("full_name ASC").Find(&students).Error; err != nil {
		fail(c, http.StatusInternalServerError, "storage_unavailable", err.Error())
		return
	}

	out := make([]gin.H, 0, len(students))
	for _, s := range students {
		out = append(out, gin.H{
			"id":        s.ID,
			"full_name": s.FullName,
			"email":     s.Email,
			"active":    s.Active,
		})
	}
	ok(c, http.StatusOK, gin.H{"class_id": classID, "students": out})
}
