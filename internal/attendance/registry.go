package attendance

import (
	"context"
	"errors"
	"time"

	"github.com/hagwonhq/academy_backend_v1/internal/models"
	"github.com/hagwonhq/academy_backend_v1/internal/utils"
)

// maxCodeAttempts bounds the collision retry loop. At a 10^6 keyspace
// exhausting this is vanishingly rare, but it is handled, not assumed away.
const maxCodeAttempts = 20

// Registry owns the attendance-code lifecycle: minting, reactivation and
// redemption-time lookup.
type Registry struct {
	repo Repository
}

func NewRegistry(repo Repository) *Registry {
	return &Registry{repo: repo}
}

type IssueInput struct {
	StudentID string
	AcademyID string
	ClassID   string
	ExpiresAt *time.Time
}

// Issue mints a new active code for a student. The repository retires the
// previously active code and inserts the new one in a single transaction, so
// at most one code per student is redeemable and a failed mint leaves the
// old code working. Collisions with existing code values re-roll locally.
func (r *Registry) Issue(ctx context.Context, in IssueInput) (*models.AttendanceCode, error) {
	if in.StudentID == "" {
		return nil, ErrStudentNotFound
	}
	if ok, err := r.repo.StudentExists(ctx, in.StudentID); err != nil {
		return nil, err
	} else if !ok {
		return nil, ErrStudentNotFound
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		value, err := utils.GenerateCode(utils.CodeLength)
		if err != nil {
			return nil, err
		}
		code := &models.AttendanceCode{
			StudentID: in.StudentID,
			AcademyID: in.AcademyID,
			ClassID:   in.ClassID,
			Code:      value,
			IsActive:  true,
			ExpiresAt: in.ExpiresAt,
		}
		err = r.repo.CreateCode(ctx, code)
		if errors.Is(err, ErrDuplicate) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return code, nil
	}
	return nil, ErrCodeExhausted
}

// Reactivate flips the student's retired code back on in place instead of
// minting a new one, keeping the code value stable across terms.
func (r *Registry) Reactivate(ctx context.Context, studentID string) (*models.AttendanceCode, error) {
	code, err := r.repo.CodeByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if code == nil {
		return nil, ErrCodeNotFound
	}
	if code.IsActive {
		return code, nil
	}
	code.IsActive = true
	if err := r.repo.SaveCode(ctx, code); err != nil {
		return nil, err
	}
	return code, nil
}

// Deactivate retires the student's active code without deleting it.
func (r *Registry) Deactivate(ctx context.Context, studentID string) error {
	code, err := r.repo.CodeByStudent(ctx, studentID)
	if err != nil {
		return err
	}
	if code == nil {
		return ErrCodeNotFound
	}
	return r.repo.DeactivateCodes(ctx, studentID)
}

// Lookup resolves a redeemed code value, distinguishing not-found, inactive
// and expired so the check-in processor can report precisely.
func (r *Registry) Lookup(ctx context.Context, value string, now time.Time) (*models.AttendanceCode, error) {
	code, err := r.repo.CodeByValue(ctx, value)
	if err != nil {
		return nil, err
	}
	if code == nil {
		return nil, ErrCodeNotFound
	}
	if !code.IsActive {
		return nil, ErrCodeInactive
	}
	if code.ExpiresAt != nil && now.After(*code.ExpiresAt) {
		return nil, ErrCodeExpired
	}
	return code, nil
}
