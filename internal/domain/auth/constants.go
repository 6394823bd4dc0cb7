package auth

const (
	RoleAdmin      = "admin"
	RoleManager    = "manager"
	RoleAccountant = "accountant"
	RoleEmployee   = "employee"
)

var Roles = []string{RoleAdmin, RoleManager, RoleAccountant, RoleEmployee}

const (
	PermProfilesRead      = "profiles.read"
	PermProfilesWrite     = "profiles.write"
	PermClientsRead       = "clients.read"
	PermClientsWrite      = "clients.write"
	PermProjectsRead      = "projects.read"
	PermProjectsWrite     = "projects.write"
	PermHoursRead         = "hours.read"
	PermHoursWrite        = "hours.write"
	PermHoursApprove      = "hours.approve"
	PermRostersRead       = "rosters.read"
	PermRostersWrite      = "rosters.write"
	PermPayrollRead       = "payroll.read"
	PermPayrollWrite      = "payroll.write"
	PermPayrollPay        = "payroll.pay"
	PermBankingRead       = "banking.read"
	PermBankingWrite      = "banking.write"
	PermReportsRead       = "reports.read"
	PermPermissionsManage = "permissions.manage"
	PermAuditRead         = "audit.read"
)

var AllPermissions = []string{
	PermProfilesRead,
	PermProfilesWrite,
	PermClientsRead,
	PermClientsWrite,
	PermProjectsRead,
	PermProjectsWrite,
	PermHoursRead,
	PermHoursWrite,
	PermHoursApprove,
	PermRostersRead,
	PermRostersWrite,
	PermPayrollRead,
	PermPayrollWrite,
	PermPayrollPay,
	PermBankingRead,
	PermBankingWrite,
	PermReportsRead,
	PermPermissionsManage,
	PermAuditRead,
}

// DefaultRolePermissions seeds role_permissions on first start.
var DefaultRolePermissions = map[string][]string{
	RoleAdmin: AllPermissions,
	RoleManager: {
		PermProfilesRead,
		PermProfilesWrite,
		PermClientsRead,
		PermClientsWrite,
		PermProjectsRead,
		PermProjectsWrite,
		PermHoursRead,
		PermHoursWrite,
		PermHoursApprove,
		PermRostersRead,
		PermRostersWrite,
		PermPayrollRead,
		PermBankingRead,
		PermReportsRead,
	},
	RoleAccountant: {
		PermProfilesRead,
		PermClientsRead,
		PermProjectsRead,
		PermHoursRead,
		PermPayrollRead,
		PermPayrollWrite,
		PermPayrollPay,
		PermBankingRead,
		PermBankingWrite,
		PermReportsRead,
	},
	RoleEmployee: {
		PermHoursRead,
		PermHoursWrite,
		PermRostersRead,
		PermPayrollRead,
	},
}

const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)
