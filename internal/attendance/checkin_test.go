package attendance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hagwonhq/academy_backend_v1/internal/models"
)

// 2026-03-02 is a Monday.
func mondayAt(hour, min int) time.Time {
	return time.Date(2026, 3, 2, hour, min, 0, 0, time.UTC)
}

func newCheckInFixture(t *testing.T, classID string) (*fakeRepo, *Service) {
	t.Helper()
	repo := newFakeRepo()
	repo.students["s1"] = true
	repo.codes = append(repo.codes, &models.AttendanceCode{
		ID:        "code-1",
		StudentID: "s1",
		AcademyID: "a1",
		ClassID:   classID,
		Code:      "123456",
		IsActive:  true,
	})
	svc := NewService(repo, NewRegistry(repo))
	return repo, svc
}

func TestCheckInOnTime(t *testing.T) {
	repo, svc := newCheckInFixture(t, "c1")
	repo.addSchedule("c1", time.Monday, "10:00")
	svc.now = func() time.Time { return mondayAt(8, 30) }

	rec, err := svc.CheckIn(context.Background(), "123456")
	require.NoError(t, err)
	assert.Equal(t, models.AttendancePresent, rec.Status)
	assert.Equal(t, "2026-03-02", rec.CheckInDay)
	assert.Equal(t, "s1", rec.StudentID)
	assert.Equal(t, "c1", rec.ClassID)
}

func TestCheckInLateBoundary(t *testing.T) {
	cases := []struct {
		name string
		at   time.Time
		want string
	}{
		{"minute before start", mondayAt(8, 59), models.AttendancePresent},
		{"exactly at start", mondayAt(9, 0), models.AttendancePresent},
		{"minute after start", mondayAt(9, 1), models.AttendanceLate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo, svc := newCheckInFixture(t, "c1")
			repo.addSchedule("c1", time.Monday, "09:00")
			svc.now = func() time.Time { return tc.at }

			rec, err := svc.CheckIn(context.Background(), "123456")
			require.NoError(t, err)
			assert.Equal(t, tc.want, rec.Status)
		})
	}
}

func TestCheckInFallbackCutoff(t *testing.T) {
	// No class, no schedule: the documented 09:00 default applies.
	_, svc := newCheckInFixture(t, "")
	svc.now = func() time.Time { return mondayAt(9, 1) }

	rec, err := svc.CheckIn(context.Background(), "123456")
	require.NoError(t, err)
	assert.Equal(t, models.AttendanceLate, rec.Status)
}

func TestCheckInUsesAcademyTimezone(t *testing.T) {
	repo, svc := newCheckInFixture(t, "")
	repo.timezones["a1"] = "Asia/Seoul"
	// 23:30 UTC Monday is 08:30 Tuesday in Seoul: next local day, on time.
	svc.now = func() time.Time { return mondayAt(23, 30) }

	rec, err := svc.CheckIn(context.Background(), "123456")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-03", rec.CheckInDay)
	assert.Equal(t, models.AttendancePresent, rec.Status)
}

func TestCheckInDuplicateSameDay(t *testing.T) {
	_, svc := newCheckInFixture(t, "c1")
	svc.now = func() time.Time { return mondayAt(8, 0) }
	ctx := context.Background()

	_, err := svc.CheckIn(ctx, "123456")
	require.NoError(t, err)

	_, err = svc.CheckIn(ctx, "123456")
	assert.ErrorIs(t, err, ErrAlreadyCheckedIn)
}

func TestCheckInRaceFailsClosed(t *testing.T) {
	// RecordForDay sees nothing, but the insert hits the unique index: the
	// losing writer of a concurrent pair must get ErrAlreadyCheckedIn.
	repo, svc := newCheckInFixture(t, "c1")
	repo.dupRecord = true
	svc.now = func() time.Time { return mondayAt(8, 0) }

	_, err := svc.CheckIn(context.Background(), "123456")
	assert.ErrorIs(t, err, ErrAlreadyCheckedIn)
}

func TestCheckInNextDayAllowed(t *testing.T) {
	_, svc := newCheckInFixture(t, "c1")
	svc.now = func() time.Time { return mondayAt(8, 0) }
	ctx := context.Background()

	_, err := svc.CheckIn(ctx, "123456")
	require.NoError(t, err)

	svc.now = func() time.Time { return mondayAt(8, 0).AddDate(0, 0, 1) }
	rec, err := svc.CheckIn(ctx, "123456")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-03", rec.CheckInDay)
}

func TestCheckInCodeFailures(t *testing.T) {
	repo, svc := newCheckInFixture(t, "c1")
	svc.now = func() time.Time { return mondayAt(8, 0) }
	ctx := context.Background()

	_, err := svc.CheckIn(ctx, "999999")
	assert.ErrorIs(t, err, ErrCodeNotFound)

	repo.codes[0].IsActive = false
	_, err = svc.CheckIn(ctx, "123456")
	assert.ErrorIs(t, err, ErrCodeInactive)

	repo.codes[0].IsActive = true
	exp := mondayAt(7, 0)
	repo.codes[0].ExpiresAt = &exp
	_, err = svc.CheckIn(ctx, "123456")
	assert.ErrorIs(t, err, ErrCodeExpired)
}
