package profiles

import (
	"slices"
	"strings"

	"workforce/internal/domain/auth"
)

// FilterSensitive strips banking details unless the caller is an admin or
// reading their own profile.
func FilterSensitive(p *Profile, user auth.UserContext) {
	if p == nil || user.IsAdmin() || user.UserID == p.ID {
		return
	}
	p.BankName = ""
	p.BankAccount = ""
	p.BankBSB = ""
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func ValidEmploymentType(value string) bool {
	return slices.Contains(EmploymentTypes, value)
}

func ValidStatus(value string) bool {
	return slices.Contains(Statuses, value)
}

// Apply copies the set fields of u onto p and validates the result.
func Apply(p *Profile, u Update) error {
	if u.FullName != nil {
		p.FullName = strings.TrimSpace(*u.FullName)
	}
	if u.Role != nil {
		p.Role = strings.TrimSpace(*u.Role)
	}
	if u.EmploymentType != nil {
		p.EmploymentType = strings.TrimSpace(*u.EmploymentType)
	}
	if u.HourlyRate != nil {
		p.HourlyRate = *u.HourlyRate
	}
	if u.Phone != nil {
		p.Phone = strings.TrimSpace(*u.Phone)
	}
	if u.Address != nil {
		p.Address = strings.TrimSpace(*u.Address)
	}
	if u.Designation != nil {
		p.Designation = strings.TrimSpace(*u.Designation)
	}
	if u.BankName != nil {
		p.BankName = strings.TrimSpace(*u.BankName)
	}
	if u.BankAccount != nil {
		p.BankAccount = strings.TrimSpace(*u.BankAccount)
	}
	if u.BankBSB != nil {
		p.BankBSB = strings.TrimSpace(*u.BankBSB)
	}
	if u.Status != nil {
		p.Status = strings.TrimSpace(*u.Status)
	}
	return Validate(*p)
}

func Validate(p Profile) error {
	if !auth.KnownRole(p.Role) {
		return ErrInvalidRole
	}
	if !ValidEmploymentType(p.EmploymentType) {
		return ErrInvalidEmploymentType
	}
	if !ValidStatus(p.Status) {
		return ErrInvalidStatus
	}
	if p.HourlyRate < 0 {
		return ErrNegativeRate
	}
	return nil
}
