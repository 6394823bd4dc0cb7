package workhours

import (
	"slices"
	"strings"

	"workforce/internal/domain/timecalc"
)

// Derive recomputes the hour and pay columns of e at rate. A missing pair
// of clock times takes the hours of the other pair, so an entry with only
// one pair carries no overtime. Hour columns are stored to two decimals but
// pay is computed from the exact interval.
func Derive(e *Entry, rate float64) error {
	hasScheduled := e.ScheduledStart != "" && e.ScheduledEnd != ""
	hasActual := e.ActualStart != "" && e.ActualEnd != ""
	scheduled, err := timecalc.ClockHours(e.WorkDate, e.ScheduledStart, e.ScheduledEnd)
	if err != nil {
		return err
	}
	actual, err := timecalc.ClockHours(e.WorkDate, e.ActualStart, e.ActualEnd)
	if err != nil {
		return err
	}
	if !hasActual {
		actual = scheduled
	}
	if !hasScheduled {
		scheduled = actual
	}
	e.HourlyRate = rate
	e.ScheduledHours = timecalc.Round2(scheduled)
	e.ActualHours = timecalc.Round2(actual)
	e.OvertimeHours = timecalc.Round2(timecalc.Overtime(actual, scheduled))
	e.PayableAmount = timecalc.Payable(actual, rate)
	return nil
}

// Apply copies in onto e and validates what a caller controls.
func Apply(e *Entry, in Input) error {
	e.ProfileID = in.ProfileID
	e.ClientID = strings.TrimSpace(in.ClientID)
	e.ProjectID = strings.TrimSpace(in.ProjectID)
	e.RosterID = strings.TrimSpace(in.RosterID)
	e.WorkDate = in.WorkDate
	e.ScheduledStart = strings.TrimSpace(in.ScheduledStart)
	e.ScheduledEnd = strings.TrimSpace(in.ScheduledEnd)
	e.ActualStart = strings.TrimSpace(in.ActualStart)
	e.ActualEnd = strings.TrimSpace(in.ActualEnd)
	e.Category = strings.TrimSpace(in.Category)
	e.Notes = strings.TrimSpace(in.Notes)
	if e.Category == "" {
		e.Category = CategoryRegular
	}

	switch {
	case e.ProjectID == "":
		return ErrProjectRequired
	case e.WorkDate.IsZero():
		return ErrDateRequired
	case !slices.Contains(Categories, e.Category):
		return ErrInvalidCategory
	case in.HourlyRate != nil && *in.HourlyRate < 0:
		return ErrNegativeRate
	case (e.ScheduledStart == "" || e.ScheduledEnd == "") && (e.ActualStart == "" || e.ActualEnd == ""):
		return ErrNoTimes
	}
	return nil
}

// ToHourEntry adapts e for the aggregate reductions.
func ToHourEntry(e Entry) timecalc.HourEntry {
	return timecalc.HourEntry{
		ProfileID:     e.ProfileID,
		ProjectID:     e.ProjectID,
		ClientID:      e.ClientID,
		Category:      e.Category,
		Date:          e.WorkDate,
		ActualHours:   e.ActualHours,
		OvertimeHours: e.OvertimeHours,
		PayableAmount: e.PayableAmount,
	}
}
