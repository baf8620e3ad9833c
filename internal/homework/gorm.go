package homework

import (
	"context"
	"errors"
	"time"

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

func (r *GormRepository) StudentByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("id = ? AND role = ? AND active = ?", id, "student", true).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormRepository) CreateAssignment(ctx context.Context, a *models.HomeworkAssignment, targets []models.HomeworkAssignmentTarget) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(a).Error; err != nil {
			return err
		}
		for i := range targets {
			targets[i].AssignmentID = a.ID
			if err := tx.Create(&targets[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *GormRepository) AssignmentByID(ctx context.Context, id string) (*models.HomeworkAssignment, error) {
	var a models.HomeworkAssignment
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *GormRepository) SaveAssignment(ctx context.Context, a *models.HomeworkAssignment) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *GormRepository) ActiveAssignmentsFor(ctx context.Context, studentID, academyID string, asOf time.Time) ([]models.HomeworkAssignment, error) {
	var out []models.HomeworkAssignment
	err := r.db.WithContext(ctx).
		Where("academy_id = ? AND status = ? AND due_date >= ?", academyID, models.AssignmentActive, asOf).
		Where("target_type = ? OR id IN (SELECT assignment_id FROM homework_assignment_targets WHERE student_id = ?)",
			models.TargetTypeAll, studentID).
		Where("id NOT IN (SELECT assignment_id FROM homework_assignment_targets WHERE student_id = ? AND status = ?)",
			studentID, models.TargetSubmitted).
		Order("due_date ASC, created_at DESC").
		Find(&out).Error
	return out, err
}

func (r *GormRepository) TargetFor(ctx context.Context, assignmentID, studentID string) (*models.HomeworkAssignmentTarget, error) {
	var t models.HomeworkAssignmentTarget
	err := r.db.WithContext(ctx).
		Where("assignment_id = ? AND student_id = ?", assignmentID, studentID).
		First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *GormRepository) EnsureTarget(ctx context.Context, assignmentID, studentID string) (*models.HomeworkAssignmentTarget, error) {
	t := models.HomeworkAssignmentTarget{
		AssignmentID: assignmentID,
		StudentID:    studentID,
		Status:       models.TargetPending,
	}
	err := r.db.WithContext(ctx).
		Where("assignment_id = ? AND student_id = ?", assignmentID, studentID).
		FirstOrCreate(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *GormRepository) SaveTarget(ctx context.Context, t *models.HomeworkAssignmentTarget) error {
	return r.db.WithContext(ctx).Save(t).Error
}

func (r *GormRepository) SubmittedTargets(ctx context.Context, studentID string) ([]models.HomeworkAssignmentTarget, error) {
	var out []models.HomeworkAssignmentTarget
	err := r.db.WithContext(ctx).
		Preload("Assignment").
		Where("student_id = ? AND status = ?", studentID, models.TargetSubmitted).
		Order("updated_at DESC").
		Find(&out).Error
	return out, err
}

func (r *GormRepository) CreateSubmission(ctx context.Context, sub *models.HomeworkSubmission, images []models.HomeworkImage) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(sub).Error; err != nil {
			return err
		}
		for i := range images {
			images[i].SubmissionID = sub.ID
			if err := tx.Create(&images[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *GormRepository) SubmissionByID(ctx context.Context, id string) (*models.HomeworkSubmission, error) {
	var sub models.HomeworkSubmission
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *GormRepository) SaveSubmission(ctx context.Context, sub *models.HomeworkSubmission) error {
	return r.db.WithContext(ctx).Save(sub).Error
}

func (r *GormRepository) ImagesBySubmission(ctx context.Context, submissionID string) ([]models.HomeworkImage, error) {
	var out []models.HomeworkImage
	err := r.db.WithContext(ctx).
		Where("submission_id = ?", submissionID).
		Order("position ASC").
		Find(&out).Error
	return out, err
}
