package homework

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hagwonhq/academy_backend_v1/internal/models"
)

var errSaveTarget = errors.New("save target failed")

type fakeRepo struct {
	mu          sync.Mutex
	students    map[string]*models.User
	assignments map[string]*models.HomeworkAssignment
	targets     []*models.HomeworkAssignmentTarget
	submissions map[string]*models.HomeworkSubmission
	images      map[string][]models.HomeworkImage

	// fault injection
	failSaveTargetOnce bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		students:    map[string]*models.User{},
		assignments: map[string]*models.HomeworkAssignment{},
		submissions: map[string]*models.HomeworkSubmission{},
		images:      map[string][]models.HomeworkImage{},
	}
}

func (f *fakeRepo) StudentByID(_ context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.students[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeRepo) CreateAssignment(_ context.Context, a *models.HomeworkAssignment, targets []models.HomeworkAssignmentTarget) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	f.assignments[a.ID] = a
	for i := range targets {
		t := targets[i]
		t.ID = uuid.NewString()
		t.AssignmentID = a.ID
		f.targets = append(f.targets, &t)
	}
	return nil
}

func (f *fakeRepo) AssignmentByID(_ context.Context, id string) (*models.HomeworkAssignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a, ok := f.assignments[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeRepo) SaveAssignment(_ context.Context, a *models.HomeworkAssignment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.assignments[a.ID] = a
	return nil
}

func (f *fakeRepo) ActiveAssignmentsFor(_ context.Context, studentID, academyID string, asOf time.Time) ([]models.HomeworkAssignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.HomeworkAssignment
	for _, a := range f.assignments {
		if a.Status != models.AssignmentActive || a.AcademyID != academyID {
			continue
		}
		if a.DueDate.Before(asOf) {
			continue
		}
		if a.TargetType == models.TargetTypeSpecific && !f.hasTargetLocked(a.ID, studentID) {
			continue
		}
		if f.targetSubmittedLocked(a.ID, studentID) {
			continue
		}
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DueDate.Equal(out[j].DueDate) {
			return out[i].DueDate.Before(out[j].DueDate)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (f *fakeRepo) hasTargetLocked(assignmentID, studentID string) bool {
	for _, t := range f.targets {
		if t.AssignmentID == assignmentID && t.StudentID == studentID {
			return true
		}
	}
	return false
}

func (f *fakeRepo) targetSubmittedLocked(assignmentID, studentID string) bool {
	for _, t := range f.targets {
		if t.AssignmentID == assignmentID && t.StudentID == studentID {
			return t.Status == models.TargetSubmitted
		}
	}
	return false
}

func (f *fakeRepo) TargetFor(_ context.Context, assignmentID, studentID string) (*models.HomeworkAssignmentTarget, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.targets {
		if t.AssignmentID == assignmentID && t.StudentID == studentID {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) EnsureTarget(_ context.Context, assignmentID, studentID string) (*models.HomeworkAssignmentTarget, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.targets {
		if t.AssignmentID == assignmentID && t.StudentID == studentID {
			cp := *t
			return &cp, nil
		}
	}
	t := &models.HomeworkAssignmentTarget{
		ID:           uuid.NewString(),
		AssignmentID: assignmentID,
		StudentID:    studentID,
		Status:       models.TargetPending,
	}
	f.targets = append(f.targets, t)
	cp := *t
	return &cp, nil
}

func (f *fakeRepo) SaveTarget(_ context.Context, t *models.HomeworkAssignmentTarget) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSaveTargetOnce {
		f.failSaveTargetOnce = false
		return errSaveTarget
	}
	for i, existing := range f.targets {
		if existing.ID == t.ID {
			cp := *t
			f.targets[i] = &cp
			return nil
		}
	}
	cp := *t
	f.targets = append(f.targets, &cp)
	return nil
}

func (f *fakeRepo) SubmittedTargets(_ context.Context, studentID string) ([]models.HomeworkAssignmentTarget, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.HomeworkAssignmentTarget
	for _, t := range f.targets {
		if t.StudentID == studentID && t.Status == models.TargetSubmitted {
			cp := *t
			if a, ok := f.assignments[t.AssignmentID]; ok {
				cp.Assignment = *a
			}
			out = append(out, cp)
		}
	}
	return out, nil
}

func (f *fakeRepo) CreateSubmission(_ context.Context, sub *models.HomeworkSubmission, images []models.HomeworkImage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	f.submissions[sub.ID] = sub
	for i := range images {
		img := images[i]
		img.ID = uuid.NewString()
		img.SubmissionID = sub.ID
		f.images[sub.ID] = append(f.images[sub.ID], img)
	}
	return nil
}

func (f *fakeRepo) SubmissionByID(_ context.Context, id string) (*models.HomeworkSubmission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.submissions[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeRepo) SaveSubmission(_ context.Context, sub *models.HomeworkSubmission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *sub
	f.submissions[sub.ID] = &cp
	return nil
}

func (f *fakeRepo) ImagesBySubmission(_ context.Context, submissionID string) ([]models.HomeworkImage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.images[submissionID], nil
}
