package profiles

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"workforce/internal/domain/auth"
)

func sampleProfile() Profile {
	return Profile{
		ID:             "p1",
		Email:          "sam@example.com",
		FullName:       "Sam Lee",
		Role:           auth.RoleEmployee,
		EmploymentType: EmploymentCasual,
		HourlyRate:     32.5,
		BankName:       "Westpac",
		BankAccount:    "12345678",
		BankBSB:        "032-000",
		Status:         StatusActive,
	}
}

func TestFilterSensitive(t *testing.T) {
	tests := []struct {
		name     string
		user     auth.UserContext
		stripped bool
	}{
		{"admin sees all", auth.UserContext{UserID: "a1", RoleName: auth.RoleAdmin}, false},
		{"self sees own", auth.UserContext{UserID: "p1", RoleName: auth.RoleEmployee}, false},
		{"manager reading other", auth.UserContext{UserID: "m1", RoleName: auth.RoleManager}, true},
		{"accountant reading other", auth.UserContext{UserID: "c1", RoleName: auth.RoleAccountant}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := sampleProfile()
			FilterSensitive(&p, tc.user)
			if tc.stripped {
				assert.Empty(t, p.BankAccount)
				assert.Empty(t, p.BankName)
				assert.Empty(t, p.BankBSB)
			} else {
				assert.Equal(t, "12345678", p.BankAccount)
			}
			assert.Equal(t, 32.5, p.HourlyRate)
		})
	}
}

func TestApply(t *testing.T) {
	p := sampleProfile()
	name := "  Sam Q. Lee "
	rate := 40.0
	assert.NoError(t, Apply(&p, Update{FullName: &name, HourlyRate: &rate}))
	assert.Equal(t, "Sam Q. Lee", p.FullName)
	assert.Equal(t, 40.0, p.HourlyRate)

	bad := "seasonal"
	assert.ErrorIs(t, Apply(&p, Update{EmploymentType: &bad}), ErrInvalidEmploymentType)

	p = sampleProfile()
	negative := -1.0
	assert.ErrorIs(t, Apply(&p, Update{HourlyRate: &negative}), ErrNegativeRate)

	p = sampleProfile()
	role := "owner"
	assert.ErrorIs(t, Apply(&p, Update{Role: &role}), ErrInvalidRole)
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "sam@example.com", NormalizeEmail("  Sam@Example.COM "))
}
