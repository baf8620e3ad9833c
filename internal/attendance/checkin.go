package attendance

import (
	"context"
	"time"

	"github.com/hagwonhq/academy_backend_v1/internal/models"
)

// FallbackCutoff is the on-time boundary applied when no class schedule
// resolves for the check-in weekday. It is a deliberate, documented default,
// not a silent one: check-ins strictly after 09:00 local count as LATE.
const FallbackCutoff = "09:00"

// Service is the check-in processor: it redeems a code, classifies the
// check-in as on-time or late against the class schedule, and writes exactly
// one record per student/class/day.
type Service struct {
	repo     Repository
	registry *Registry
	now      func() time.Time
}

func NewService(repo Repository, registry *Registry) *Service {
	return &Service{repo: repo, registry: registry, now: time.Now}
}

// CheckIn redeems a code value and returns the created record. The
// pre-insert existence check keeps the common duplicate path cheap; the
// composite unique index on (student, class, day) is what actually closes
// the race, mapping a concurrent double-insert to ErrAlreadyCheckedIn.
func (s *Service) CheckIn(ctx context.Context, value string) (*models.AttendanceRecord, error) {
	now := s.now().UTC()
	code, err := s.registry.Lookup(ctx, value, now)
	if err != nil {
		return nil, err
	}

	loc := s.academyLocation(ctx, code.AcademyID)
	localNow := now.In(loc)
	day := localNow.Format("2006-01-02")

	existing, err := s.repo.RecordForDay(ctx, code.StudentID, code.ClassID, day)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyCheckedIn
	}

	rec := &models.AttendanceRecord{
		StudentID:   code.StudentID,
		ClassID:     code.ClassID,
		AcademyID:   code.AcademyID,
		Code:        code.Code,
		CheckInDay:  day,
		CheckInTime: now,
		Status:      s.classify(ctx, code.ClassID, localNow),
	}
	if err := s.repo.CreateRecord(ctx, rec); err != nil {
		if err == ErrDuplicate {
			return nil, ErrAlreadyCheckedIn
		}
		return nil, err
	}
	return rec, nil
}

// classify compares the local wall clock to the class start time for the
// current weekday. Zero-padded "HH:MM" strings compare correctly as text:
// strictly later than the cutoff means LATE, the cutoff minute itself is
// still PRESENT.
func (s *Service) classify(ctx context.Context, classID string, localNow time.Time) string {
	cutoff := FallbackCutoff
	if classID != "" {
		if sched, err := s.repo.ScheduleFor(ctx, classID, localNow.Weekday()); err == nil && sched != nil && sched.StartTime != "" {
			cutoff = sched.StartTime
		}
	}
	if localNow.Format("15:04") > cutoff {
		return models.AttendanceLate
	}
	return models.AttendancePresent
}

func (s *Service) academyLocation(ctx context.Context, academyID string) *time.Location {
	tz, err := s.repo.AcademyTimezone(ctx, academyID)
	if err != nil || tz == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.UTC
	}
	return loc
}
