// Package timecalc holds the arithmetic behind working hours, pay and balances.
// Every function is pure.
package timecalc

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

var ErrInvalidClock = errors.New("invalid clock time")

const dateLayout = "2006-01-02"

// HoursBetween is end minus start in hours, never negative.
func HoursBetween(start, end time.Time) float64 {
	if start.IsZero() || end.IsZero() || !end.After(start) {
		return 0
	}
	return end.Sub(start).Hours()
}

// ParseClock parses HH:MM or HH:MM:SS and returns the offset from midnight.
func ParseClock(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute + time.Duration(t.Second())*time.Second, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
}

// ClockHours returns the hours between two clock times on date. An end at or
// before the start yields zero; shifts do not wrap past midnight.
func ClockHours(date time.Time, startClock, endClock string) (float64, error) {
	if strings.TrimSpace(startClock) == "" || strings.TrimSpace(endClock) == "" {
		return 0, nil
	}
	start, err := ParseClock(startClock)
	if err != nil {
		return 0, err
	}
	end, err := ParseClock(endClock)
	if err != nil {
		return 0, err
	}
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	return HoursBetween(day.Add(start), day.Add(end)), nil
}

func Overtime(actual, scheduled float64) float64 {
	return math.Max(0, actual-scheduled)
}

func Payable(actualHours, hourlyRate float64) float64 {
	return Round2(actualHours * hourlyRate)
}

// NetPay may be negative when deductions exceed gross.
func NetPay(gross, deductions float64) float64 {
	return Round2(gross - deductions)
}

// Round2 rounds half away from zero to cents.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Round(v*100) / 100
}

// EffectiveRate is gross divided by hours, or zero without hours.
func EffectiveRate(gross, hours float64) float64 {
	if hours <= 0 {
		return 0
	}
	return Round2(gross / hours)
}

type HourEntry struct {
	ProfileID     string
	ProjectID     string
	ClientID      string
	Category      string
	Date          time.Time
	ActualHours   float64
	OvertimeHours float64
	PayableAmount float64
}

type Total struct {
	Key           string  `json:"key"`
	Entries       int     `json:"entries"`
	ActualHours   float64 `json:"actualHours"`
	OvertimeHours float64 `json:"overtimeHours"`
	PayableAmount float64 `json:"payableAmount"`
}

func (t *Total) add(e HourEntry) {
	t.Entries++
	t.ActualHours += e.ActualHours
	t.OvertimeHours += e.OvertimeHours
	t.PayableAmount += e.PayableAmount
}

func (t Total) rounded() Total {
	t.ActualHours = Round2(t.ActualHours)
	t.OvertimeHours = Round2(t.OvertimeHours)
	t.PayableAmount = Round2(t.PayableAmount)
	return t
}

func SumHoursBy(entries []HourEntry, key func(HourEntry) string) map[string]Total {
	out := make(map[string]Total)
	for _, e := range entries {
		k := key(e)
		t := out[k]
		t.Key = k
		t.add(e)
		out[k] = t
	}
	for k, t := range out {
		out[k] = t.rounded()
	}
	return out
}

func SumHours(entries []HourEntry) Total {
	var t Total
	for _, e := range entries {
		t.add(e)
	}
	return t.rounded()
}

func ByProfile(e HourEntry) string  { return e.ProfileID }
func ByProject(e HourEntry) string  { return e.ProjectID }
func ByClient(e HourEntry) string   { return e.ClientID }
func ByCategory(e HourEntry) string { return e.Category }
func ByDay(e HourEntry) string      { return e.Date.Format(dateLayout) }

// KeyFunc resolves a grouping name to its key function.
func KeyFunc(groupBy string) (func(HourEntry) string, bool) {
	switch groupBy {
	case "profile":
		return ByProfile, true
	case "project":
		return ByProject, true
	case "client":
		return ByClient, true
	case "category":
		return ByCategory, true
	case "day":
		return ByDay, true
	}
	return nil, false
}

const (
	MovementDeposit    = "deposit"
	MovementWithdrawal = "withdrawal"
)

type Movement struct {
	Kind   string
	Amount float64
}

func Balance(opening float64, movements []Movement) float64 {
	deposits, withdrawals := Flows(movements)
	return Round2(opening + deposits - withdrawals)
}

// Flows returns total deposits and withdrawals, ignoring unknown kinds.
func Flows(movements []Movement) (deposits, withdrawals float64) {
	for _, m := range movements {
		switch m.Kind {
		case MovementDeposit:
			deposits += m.Amount
		case MovementWithdrawal:
			withdrawals += m.Amount
		}
	}
	return Round2(deposits), Round2(withdrawals)
}

// DayCount is len(Days(start, end)) without building the slice. It is zero
// when end falls before start.
func DayCount(start, end time.Time) int {
	first := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	last := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	if last.Before(first) {
		return 0
	}
	return int((last.Unix()-first.Unix())/86400) + 1
}

// Days lists each calendar day from start to end inclusive.
func Days(start, end time.Time) []time.Time {
	first := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	last := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	var out []time.Time
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out
}
