package reports

import (
	"encoding/csv"
	"io"
	"sort"
	"strconv"
	"time"

	"workforce/internal/domain/timecalc"
)

const defaultGroupBy = "profile"

func label(line HoursLine, groupBy string) string {
	switch groupBy {
	case "profile":
		return line.ProfileName
	case "project":
		return line.ProjectName
	case "client":
		return line.ClientName
	}
	return ""
}

// BuildHoursReport groups lines by the requested key, ordered by key.
func BuildHoursReport(lines []HoursLine, filter HoursFilter) (HoursReport, error) {
	groupBy := filter.GroupBy
	if groupBy == "" {
		groupBy = defaultGroupBy
	}
	keyFn, ok := timecalc.KeyFunc(groupBy)
	if !ok {
		return HoursReport{}, ErrInvalidGroupBy
	}

	entries := make([]timecalc.HourEntry, 0, len(lines))
	labels := make(map[string]string)
	for _, l := range lines {
		entries = append(entries, l.HourEntry)
		labels[keyFn(l.HourEntry)] = label(l, groupBy)
	}

	grouped := timecalc.SumHoursBy(entries, keyFn)
	rows := make([]HoursRow, 0, len(grouped))
	for key, t := range grouped {
		lbl := labels[key]
		if lbl == "" {
			lbl = key
		}
		rows = append(rows, HoursRow{
			Key:           key,
			Label:         lbl,
			Entries:       t.Entries,
			ActualHours:   t.ActualHours,
			OvertimeHours: t.OvertimeHours,
			PayableAmount: t.PayableAmount,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Label != rows[j].Label {
			return rows[i].Label < rows[j].Label
		}
		return rows[i].Key < rows[j].Key
	})

	return HoursReport{
		GroupBy: groupBy,
		From:    formatDate(filter.From),
		To:      formatDate(filter.To),
		Rows:    rows,
		Total:   timecalc.SumHours(entries),
	}, nil
}

// SummarizePayroll folds per-status totals into an overall summary.
func SummarizePayroll(byStatus []StatusTotal, from, to time.Time) PayrollSummary {
	s := PayrollSummary{From: formatDate(from), To: formatDate(to), ByStatus: byStatus}
	for _, st := range byStatus {
		s.Records += st.Records
		s.GrossPay += st.GrossPay
		s.Deductions += st.Deductions
		s.NetPay += st.NetPay
	}
	s.GrossPay = timecalc.Round2(s.GrossPay)
	s.Deductions = timecalc.Round2(s.Deductions)
	s.NetPay = timecalc.Round2(s.NetPay)
	if s.ByStatus == nil {
		s.ByStatus = []StatusTotal{}
	}
	return s
}

func BuildAdminDashboard(c AdminCounts, bankBalance float64) AdminDashboard {
	return AdminDashboard{
		ActiveProfiles:   c.ActiveProfiles,
		ActiveClients:    c.ActiveClients,
		ActiveProjects:   c.ActiveProjects,
		PendingHours:     c.PendingHours,
		PendingPayroll:   c.PendingPayroll,
		TotalBankBalance: timecalc.Round2(bankBalance),
	}
}

func BuildEmployeeDashboard(c EmployeeCounts, hours []timecalc.HourEntry, start, end time.Time) EmployeeDashboard {
	return EmployeeDashboard{
		PeriodStart:     formatDate(start),
		PeriodEnd:       formatDate(end),
		Hours:           timecalc.SumHours(hours),
		PendingEntries:  c.PendingEntries,
		UpcomingRosters: c.UpcomingRosters,
		LastNetPay:      c.LastNetPay,
	}
}

// MonthBounds returns the first and last day of t's calendar month.
func MonthBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, -1)
}

var csvHeader = []string{"key", "label", "entries", "actual_hours", "overtime_hours", "payable_amount"}

// WriteHoursCSV writes one row per group followed by a total row.
func WriteHoursCSV(w io.Writer, report HoursReport) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range report.Rows {
		if err := cw.Write(csvRow(r.Key, r.Label, r.Entries, r.ActualHours, r.OvertimeHours, r.PayableAmount)); err != nil {
			return err
		}
	}
	t := report.Total
	if err := cw.Write(csvRow("total", "", t.Entries, t.ActualHours, t.OvertimeHours, t.PayableAmount)); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

func csvRow(key, label string, entries int, actual, overtime, payable float64) []string {
	return []string{
		key,
		label,
		strconv.Itoa(entries),
		strconv.FormatFloat(actual, 'f', 2, 64),
		strconv.FormatFloat(overtime, 'f', 2, 64),
		strconv.FormatFloat(payable, 'f', 2, 64),
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.DateOnly)
}
