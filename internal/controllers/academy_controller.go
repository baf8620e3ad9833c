package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/hagwonhq/academy_backend_v1/internal/models"
)

type AcademyController struct {
	DB *gorm.DB
}

type createAcademyRequest struct {
	Name     string `json:"name" binding:"required"`
	Timezone string `json:"timezone"`
	Active   *bool  `json:"active"`
}

type updateAcademyRequest struct {
	Name     *string `json:"name"`
	Timezone *string `json:"timezone"`
	Active   *bool   `json:"active"`
}

func (ac *AcademyController) CreateAcademy(c *gin.Context) {
	var req createAcademyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	tz := strings.TrimSpace(req.Timezone)
	if tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			fail(c, http.StatusBadRequest, "invalid_request", "invalid timezone: "+tz)
			return
		}
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}

	academy := models.Academy{
		Name:     strings.TrimSpace(req.Name),
		Timezone: tz,
		Active:   active,
	}
	if err := ac.DB.Create(&academy).Error; err != nil {
		fail(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	ok(c, http.StatusCreated, gin.H{
		"id":       academy.ID,
		"name":     academy.Name,
		"timezone": academy.Timezone,
		"active":   academy.Active,
	})
}

func (ac *AcademyController) ListAcademies(c *gin.Context) {
	limit, page := pageParams(c)
	base := ac.DB.Model(&models.Academy{})
	if qText := strings.TrimSpace(c.Query("q")); qText != "" {
		base = base.Where("name ILIKE ?", "%"+qText+"%")
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		fail(c, http.StatusInternalServerError, "storage_unavailable", err.Error())
		return
	}
	var items []models.Academy
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

func (ac *AcademyController) GetAcademy(c *gin.Context) {
	var academy models.Academy
	if err := ac.DB.Where("id = ?", c.Param("academy_id")).First(&academy).Error; err != nil {
		fail(c, http.StatusNotFound, "academy_not_found", "academy not found")
		return
	}
	ok(c, http.StatusOK, gin.H{
		"id":         academy.ID,
		"name":       academy.Name,
		"timezone":   academy.Timezone,
		"active":     academy.Active,
		"created_at": academy.CreatedAt,
		"updated_at": academy.UpdatedAt,
	})
}

func (ac *AcademyController) UpdateAcademy(c *gin.Context) {
	var academy models.Academy
	if err := ac.DB.Where("id = ?", c.Param("academy_id")).First(&academy).Error; err != nil {
		fail(c, http.StatusNotFound, "academy_not_found", "academy not found")
		return
	}

	var req updateAcademyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if req.Name != nil {
		academy.Name = strings.TrimSpace(*req.Name)
	}
	if req.Timezone != nil {
		tz := strings.TrimSpace(*req.Timezone)
		if tz != "" {
			if _, err := time.LoadLocation(tz); err != nil {
				fail(c, http.StatusBadRequest, "invalid_request", "invalid timezone: "+tz)
				return
			}
		}
		academy.Timezone = tz
	}
	if req.Active != nil {
		academy.Active = *req.Active
	}

	if err := ac.DB.Save(&academy).Error; err != nil {
		fail(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "updated"})
}
