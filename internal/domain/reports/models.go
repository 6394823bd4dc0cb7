package reports

import (
	"time"

	"workforce/internal/domain/timecalc"
)

type HoursFilter struct {
	From      time.Time
	To        time.Time
	Status    string
	ProfileID string
	ProjectID string
	ClientID  string
	GroupBy   string
}

// HoursLine is one working-hour entry with display names for each grouping.
type HoursLine struct {
	timecalc.HourEntry
	ProfileName string
	ProjectName string
	ClientName  string
}

type HoursRow struct {
	Key           string  `json:"key"`
	Label         string  `json:"label"`
	Entries       int     `json:"entries"`
	ActualHours   float64 `json:"actualHours"`
	OvertimeHours float64 `json:"overtimeHours"`
	PayableAmount float64 `json:"payableAmount"`
}

type HoursReport struct {
	GroupBy string         `json:"groupBy"`
	From    string         `json:"from,omitempty"`
	To      string         `json:"to,omitempty"`
	Rows    []HoursRow     `json:"rows"`
	Total   timecalc.Total `json:"total"`
}

type StatusTotal struct {
	Status     string  `json:"status"`
	Records    int     `json:"records"`
	GrossPay   float64 `json:"grossPay"`
	Deductions float64 `json:"deductions"`
	NetPay     float64 `json:"netPay"`
}

type PayrollSummary struct {
	From       string        `json:"from,omitempty"`
	To         string        `json:"to,omitempty"`
	Records    int           `json:"records"`
	GrossPay   float64       `json:"grossPay"`
	Deductions float64       `json:"deductions"`
	NetPay     float64       `json:"netPay"`
	ByStatus   []StatusTotal `json:"byStatus"`
}

type AdminCounts struct {
	ActiveProfiles int
	ActiveClients  int
	ActiveProjects int
	PendingHours   int
	PendingPayroll int
}

type AdminDashboard struct {
	ActiveProfiles   int     `json:"activeProfiles"`
	ActiveClients    int     `json:"activeClients"`
	ActiveProjects   int     `json:"activeProjects"`
	PendingHours     int     `json:"pendingHours"`
	PendingPayroll   int     `json:"pendingPayroll"`
	TotalBankBalance float64 `json:"totalBankBalance"`
}

type EmployeeCounts struct {
	PendingEntries  int
	UpcomingRosters int
	LastNetPay      *float64
}

type EmployeeDashboard struct {
	PeriodStart     string         `json:"periodStart"`
	PeriodEnd       string         `json:"periodEnd"`
	Hours           timecalc.Total `json:"hours"`
	PendingEntries  int            `json:"pendingEntries"`
	UpcomingRosters int            `json:"upcomingRosters"`
	LastNetPay      *float64       `json:"lastNetPay"`
}
