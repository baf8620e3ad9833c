package attendance

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hagwonhq/academy_backend_v1/internal/models"
)

// fakeRepo is an in-memory Repository honoring the same contracts as the
// Postgres one: (nil, nil) on missing rows, ErrDuplicate on unique hits.
type fakeRepo struct {
	mu        sync.Mutex
	codes     []*models.AttendanceCode
	records   []*models.AttendanceRecord
	schedules map[string]map[time.Weekday]string
	timezones map[string]string
	students  map[string]bool

	// fault injection
	dupCodeOnce  bool
	dupCodeAll   bool
	dupRecord    bool
	codeAttempts int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		schedules: map[string]map[time.Weekday]string{},
		timezones: map[string]string{},
		students:  map[string]bool{},
	}
}

func (f *fakeRepo) addSchedule(classID string, wd time.Weekday, start string) {
	if f.schedules[classID] == nil {
		f.schedules[classID] = map[time.Weekday]string{}
	}
	f.schedules[classID][wd] = start
}

// CreateCode retires the student's active codes only once the insert is
// known to succeed, mirroring the transactional contract.
func (f *fakeRepo) CreateCode(_ context.Context, code *models.AttendanceCode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.codeAttempts++
	if f.dupCodeAll {
		return ErrDuplicate
	}
	if f.dupCodeOnce {
		f.dupCodeOnce = false
		return ErrDuplicate
	}
	for _, c := range f.codes {
		if c.Code == code.Code {
			return ErrDuplicate
		}
	}
	for _, c := range f.codes {
		if c.StudentID == code.StudentID {
			c.IsActive = false
		}
	}
	code.ID = uuid.NewString()
	code.CreatedAt = time.Now()
	f.codes = append(f.codes, code)
	return nil
}

func (f *fakeRepo) SaveCode(_ context.Context, code *models.AttendanceCode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, c := range f.codes {
		if c.ID == code.ID {
			f.codes[i] = code
			return nil
		}
	}
	return nil
}

func (f *fakeRepo) CodeByValue(_ context.Context, value string) (*models.AttendanceCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.codes {
		if c.Code == value {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) CodeByStudent(_ context.Context, studentID string) (*models.AttendanceCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.codes) - 1; i >= 0; i-- {
		if f.codes[i].StudentID == studentID {
			cp := *f.codes[i]
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) DeactivateCodes(_ context.Context, studentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.codes {
		if c.StudentID == studentID {
			c.IsActive = false
		}
	}
	return nil
}

func (f *fakeRepo) CreateRecord(_ context.Context, rec *models.AttendanceRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.dupRecord {
		return ErrDuplicate
	}
	for _, r := range f.records {
		if r.StudentID == rec.StudentID && r.ClassID == rec.ClassID && r.CheckInDay == rec.CheckInDay {
			return ErrDuplicate
		}
	}
	rec.ID = uuid.NewString()
	f.records = append(f.records, rec)
	return nil
}

func (f *fakeRepo) RecordForDay(_ context.Context, studentID, classID, day string) (*models.AttendanceRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.records {
		if r.StudentID == studentID && r.ClassID == classID && r.CheckInDay == day {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) ScheduleFor(_ context.Context, classID string, weekday time.Weekday) (*models.ClassSchedule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok := f.schedules[classID]; ok {
		if start, ok := m[weekday]; ok {
			return &models.ClassSchedule{ClassID: classID, Weekday: int(weekday), StartTime: start}, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) AcademyTimezone(_ context.Context, academyID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.timezones[academyID], nil
}

func (f *fakeRepo) StudentExists(_ context.Context, studentID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.students[studentID], nil
}
