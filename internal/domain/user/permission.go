package user

type Permission string

const (
	PermissionDashboardView Permission = "dashboard.view"

	// Attendance
	PermissionAttendanceScan   Permission = "attendance.scan"
	PermissionAttendanceView   Permission = "attendance.view"
	PermissionAttendanceManage Permission = "attendance.manage"

	// Employees
	PermissionEmployeeView   Permission = "employee.view"
	PermissionEmployeeManage Permission = "employee.manage"

	// Payroll
	PermissionAdvanceManage Permission = "advance.manage"
	PermissionReportView    Permission = "report.view"

	// Administration
	PermissionUserManage     Permission = "user.manage"
	PermissionSettingsManage Permission = "settings.manage"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleAdmin: {
		PermissionDashboardView,
		PermissionAttendanceScan,
		PermissionAttendanceView,
		PermissionAttendanceManage,
		PermissionEmployeeView,
		PermissionEmployeeManage,
		PermissionAdvanceManage,
		PermissionReportView,
		PermissionUserManage,
		PermissionSettingsManage,
	},
	RoleUser: {
		PermissionDashboardView,
		PermissionAttendanceScan,
		PermissionAttendanceView,
		PermissionEmployeeView,
	},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}

	return false
}
