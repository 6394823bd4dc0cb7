package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowed(t *testing.T) {
	tests := []struct {
		role, perm string
		want       bool
	}{
		{RoleAdmin, PermPermissionsManage, true},
		{RoleManager, PermHoursApprove, true},
		{RoleManager, PermBankingWrite, false},
		{RoleAccountant, PermPayrollPay, true},
		{RoleEmployee, PermHoursWrite, true},
		{RoleEmployee, PermPayrollPay, false},
		{"", PermHoursRead, false},
		{"contractor", PermHoursRead, false},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, Allowed(tc.role, tc.perm, DefaultRolePermissions), "%s/%s", tc.role, tc.perm)
	}
}

func TestDefaultRolePermissionsAreKnown(t *testing.T) {
	for role, perms := range DefaultRolePermissions {
		require.True(t, KnownRole(role), role)
		for _, p := range perms {
			require.True(t, KnownPermission(p), "%s: %s", role, p)
		}
	}
	assert.ElementsMatch(t, AllPermissions, DefaultRolePermissions[RoleAdmin])
}

func TestNormalizePermissions(t *testing.T) {
	got, err := NormalizePermissions(RoleEmployee, []string{PermPayrollRead, PermHoursRead, PermHoursRead})
	require.NoError(t, err)
	assert.Equal(t, []string{PermHoursRead, PermPayrollRead}, got)

	_, err = NormalizePermissions("owner", nil)
	assert.ErrorIs(t, err, ErrUnknownRole)

	_, err = NormalizePermissions(RoleManager, []string{"hours.delete"})
	assert.ErrorIs(t, err, ErrUnknownPermission)

	_, err = NormalizePermissions(RoleAdmin, []string{PermHoursRead})
	assert.ErrorIs(t, err, ErrAdminLockout)
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		wantErr  bool
	}{
		{"Stronger123", false},
		{"S1hort", true},
		{"longpassword1", true},
		{"LONGPASSWORD1", true},
		{"LongPassword", true},
	}
	for _, tc := range tests {
		err := ValidatePassword(tc.password)
		if tc.wantErr {
			assert.ErrorIs(t, err, ErrWeakPassword, tc.password)
		} else {
			assert.NoError(t, err, tc.password)
		}
	}
}

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("secret", Claims{UserID: "u1", Email: "a@example.com", RoleName: RoleManager, SessionID: "s1"}, time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken("secret", token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, RoleManager, claims.RoleName)
	assert.Equal(t, "s1", claims.SessionID)

	_, err = ParseToken("other-secret", token)
	assert.Error(t, err)

	expired, err := GenerateToken("secret", Claims{UserID: "u1"}, -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken("secret", expired)
	assert.Error(t, err)
}

func TestHashToken(t *testing.T) {
	assert.Equal(t, HashToken("abc"), HashToken("abc"))
	assert.NotEqual(t, HashToken("abc"), HashToken("abd"))
	assert.Len(t, HashToken("abc"), 64)
}
