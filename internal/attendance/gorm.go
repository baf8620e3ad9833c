package attendance

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/hagwonhq/academy_backend_v1/internal/models"
)

// GormRepository is the Postgres-backed Repository.
type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// retryOnce re-runs a write a single time on transient storage errors.
// Unique violations and cancelled contexts are never retried.
func retryOnce(ctx context.Context, fn func() error) error {
	err := fn()
	if err == nil || isUniqueViolation(err) || ctx.Err() != nil {
		return err
	}
	return fn()
}

func (r *GormRepository) CreateCode(ctx context.Context, code *models.AttendanceCode) error {
	err := retryOnce(ctx, func() error {
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&models.AttendanceCode{}).
				Where("student_id = ? AND is_active = ?", code.StudentID, true).
				Update("is_active", false).Error; err != nil {
				return err
			}
			return tx.Create(code).Error
		})
	})
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *GormRepository) SaveCode(ctx context.Context, code *models.AttendanceCode) error {
	return retryOnce(ctx, func() error {
		return r.db.WithContext(ctx).Save(code).Error
	})
}

func (r *GormRepository) CodeByValue(ctx context.Context, value string) (*models.AttendanceCode, error) {
	var code models.AttendanceCode
	err := r.db.WithContext(ctx).Where("code = ?", value).First(&code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &code, nil
}

func (r *GormRepository) CodeByStudent(ctx context.Context, studentID string) (*models.AttendanceCode, error) {
	var code models.AttendanceCode
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		First(&code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &code, nil
}

func (r *GormRepository) DeactivateCodes(ctx context.Context, studentID string) error {
	return r.db.WithContext(ctx).
		Model(&models.AttendanceCode{}).
		Where("student_id = ? AND is_active = ?", studentID, true).
		Update("is_active", false).Error
}

func (r *GormRepository) CreateRecord(ctx context.Context, rec *models.AttendanceRecord) error {
	err := retryOnce(ctx, func() error {
		return r.db.WithContext(ctx).Create(rec).Error
	})
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *GormRepository) RecordForDay(ctx context.Context, studentID, classID, day string) (*models.AttendanceRecord, error) {
	var rec models.AttendanceRecord
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND class_id = ? AND check_in_day = ?", studentID, classID, day).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *GormRepository) ScheduleFor(ctx context.Context, classID string, weekday time.Weekday) (*models.ClassSchedule, error) {
	var sched models.ClassSchedule
	err := r.db.WithContext(ctx).
		Where("class_id = ? AND weekday = ?", classID, int(weekday)).
		First(&sched).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sched, nil
}

func (r *GormRepository) AcademyTimezone(ctx context.Context, academyID string) (string, error) {
	var academy models.Academy
	err := r.db.WithContext(ctx).Select("timezone").Where("id = ?", academyID).First(&academy).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return academy.Timezone, nil
}

func (r *GormRepository) StudentExists(ctx context.Context, studentID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND role = ? AND active = ?", studentID, "student", true).
		Count(&count).Error
	return count > 0, err
}
