package profiles

import "time"

// Profile is both the employee record and the login identity.
type Profile struct {
	ID             string     `json:"id"`
	Email          string     `json:"email"`
	FullName       string     `json:"fullName"`
	Role           string     `json:"role"`
	EmploymentType string     `json:"employmentType"`
	HourlyRate     float64    `json:"hourlyRate"`
	Phone          string     `json:"phone"`
	Address        string     `json:"address"`
	Designation    string     `json:"designation"`
	BankName       string     `json:"bankName,omitempty"`
	BankAccount    string     `json:"bankAccount,omitempty"`
	BankBSB        string     `json:"bankBsb,omitempty"`
	Status         string     `json:"status"`
	MFAEnabled     bool       `json:"mfaEnabled"`
	LastLogin      *time.Time `json:"lastLogin,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

type Filter struct {
	Status string
	Role   string
	Search string
}

// Update carries the fields a caller may change; nil leaves a field as is.
type Update struct {
	FullName       *string  `json:"fullName"`
	Role           *string  `json:"role"`
	EmploymentType *string  `json:"employmentType"`
	HourlyRate     *float64 `json:"hourlyRate"`
	Phone          *string  `json:"phone"`
	Address        *string  `json:"address"`
	Designation    *string  `json:"designation"`
	BankName       *string  `json:"bankName"`
	BankAccount    *string  `json:"bankAccount"`
	BankBSB        *string  `json:"bankBsb"`
	Status         *string  `json:"status"`
}
