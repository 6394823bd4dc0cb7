package workhours

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func TestDerive(t *testing.T) {
	tests := []struct {
		name                         string
		entry                        Entry
		rate                         float64
		scheduled, actual, ot, payed float64
	}{
		{
			name:      "overtime beyond schedule",
			entry:     Entry{WorkDate: day("2024-03-04"), ScheduledStart: "09:00", ScheduledEnd: "17:00", ActualStart: "08:30", ActualEnd: "18:00"},
			rate:      30,
			scheduled: 8, actual: 9.5, ot: 1.5, payed: 285,
		},
		{
			name:      "short shift has no overtime",
			entry:     Entry{WorkDate: day("2024-03-04"), ScheduledStart: "09:00", ScheduledEnd: "17:00", ActualStart: "09:00", ActualEnd: "13:15"},
			rate:      40,
			scheduled: 8, actual: 4.25, ot: 0, payed: 170,
		},
		{
			name:      "actual falls back to schedule",
			entry:     Entry{WorkDate: day("2024-03-04"), ScheduledStart: "07:00", ScheduledEnd: "15:30"},
			rate:      25.5,
			scheduled: 8.5, actual: 8.5, ot: 0, payed: 216.75,
		},
		{
			name:      "schedule falls back to actual",
			entry:     Entry{WorkDate: day("2024-03-04"), ActualStart: "10:00", ActualEnd: "12:00"},
			rate:      20,
			scheduled: 2, actual: 2, ot: 0, payed: 40,
		},
		{
			name:      "pay uses the exact interval",
			entry:     Entry{WorkDate: day("2024-03-04"), ActualStart: "07:00", ActualEnd: "07:20"},
			rate:      30,
			scheduled: 0.33, actual: 0.33, ot: 0, payed: 10,
		},
		{
			name:      "end before start clamps to zero",
			entry:     Entry{WorkDate: day("2024-03-04"), ScheduledStart: "22:00", ScheduledEnd: "06:00", ActualStart: "22:00", ActualEnd: "06:00"},
			rate:      50,
			scheduled: 0, actual: 0, ot: 0, payed: 0,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := tc.entry
			require.NoError(t, Derive(&e, tc.rate))
			assert.Equal(t, tc.scheduled, e.ScheduledHours)
			assert.Equal(t, tc.actual, e.ActualHours)
			assert.Equal(t, tc.ot, e.OvertimeHours)
			assert.Equal(t, tc.payed, e.PayableAmount)
			assert.Equal(t, tc.rate, e.HourlyRate)
		})
	}
}

func TestDeriveRejectsBadClock(t *testing.T) {
	e := Entry{WorkDate: day("2024-03-04"), ScheduledStart: "9am", ScheduledEnd: "17:00"}
	assert.Error(t, Derive(&e, 10))
}

func TestApply(t *testing.T) {
	negative := -2.0
	tests := []struct {
		name string
		in   Input
		err  error
	}{
		{"valid", Input{ProjectID: "p1", WorkDate: day("2024-03-04"), ScheduledStart: "09:00", ScheduledEnd: "17:00"}, nil},
		{"no project", Input{WorkDate: day("2024-03-04"), ScheduledStart: "09:00", ScheduledEnd: "17:00"}, ErrProjectRequired},
		{"no date", Input{ProjectID: "p1", ScheduledStart: "09:00", ScheduledEnd: "17:00"}, ErrDateRequired},
		{"bad category", Input{ProjectID: "p1", WorkDate: day("2024-03-04"), ScheduledStart: "09:00", ScheduledEnd: "17:00", Category: "sick"}, ErrInvalidCategory},
		{"negative rate", Input{ProjectID: "p1", WorkDate: day("2024-03-04"), ScheduledStart: "09:00", ScheduledEnd: "17:00", HourlyRate: &negative}, ErrNegativeRate},
		{"no times", Input{ProjectID: "p1", WorkDate: day("2024-03-04"), ActualStart: "09:00"}, ErrNoTimes},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var e Entry
			err := Apply(&e, tc.in)
			if tc.err == nil {
				require.NoError(t, err)
				assert.Equal(t, CategoryRegular, e.Category)
				return
			}
			assert.ErrorIs(t, err, tc.err)
		})
	}
}
