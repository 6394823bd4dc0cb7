package payroll

import "time"

type Record struct {
	ID                string     `json:"id"`
	ProfileID         string     `json:"profileId"`
	ProfileName       string     `json:"profileName,omitempty"`
	PeriodStart       time.Time  `json:"periodStart"`
	PeriodEnd         time.Time  `json:"periodEnd"`
	TotalHours        float64    `json:"totalHours"`
	OvertimeHours     float64    `json:"overtimeHours"`
	HourlyRate        float64    `json:"hourlyRate"`
	GrossPay          float64    `json:"grossPay"`
	Deductions        float64    `json:"deductions"`
	NetPay            float64    `json:"netPay"`
	Status            string     `json:"status"`
	PaymentDate       *time.Time `json:"paymentDate,omitempty"`
	BankAccountID     string     `json:"bankAccountId,omitempty"`
	BankTransactionID string     `json:"bankTransactionId,omitempty"`
	PayslipKey        string     `json:"-"`
	NegativeNet       bool       `json:"negativeNet,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

type Filter struct {
	ProfileID string
	Status    string
	From      time.Time
	To        time.Time
}

// HoursLine is one approved working-hour entry as payroll sees it.
type HoursLine struct {
	ActualHours   float64
	OvertimeHours float64
	PayableAmount float64
}

type Computation struct {
	Entries       int     `json:"entries"`
	TotalHours    float64 `json:"totalHours"`
	OvertimeHours float64 `json:"overtimeHours"`
	HourlyRate    float64 `json:"hourlyRate"`
	GrossPay      float64 `json:"grossPay"`
	Deductions    float64 `json:"deductions"`
	NetPay        float64 `json:"netPay"`
}

type GenerateRequest struct {
	PeriodStart time.Time
	PeriodEnd   time.Time
	ProfileID   string
}

type GenerateResult struct {
	PeriodStart string            `json:"periodStart"`
	PeriodEnd   string            `json:"periodEnd"`
	Created     int               `json:"created"`
	Updated     int               `json:"updated"`
	Skipped     map[string]string `json:"skipped"`
}

type PayRequest struct {
	BankAccountID string
	PaymentDate   time.Time
	Reference     string
}

// Payment is what the store needs to settle a record.
type Payment struct {
	PayrollID     string
	ProfileID     string
	BankAccountID string
	Amount        float64
	PaymentDate   time.Time
	Reference     string
	ActorID       string
	Description   string
}

type PayslipData struct {
	Record
	Email       string
	Designation string
	BankName    string
}
