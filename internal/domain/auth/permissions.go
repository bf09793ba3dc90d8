package auth

const (
	RoleEmployee = "employee"
	RoleManager  = "manager"
	RoleAdmin    = "admin"
)

const (
	PermEmployeesRead  = "core.employees.read"
	PermEmployeesWrite = "core.employees.write"
	PermCatalogRead    = "catalog.read"
	PermCatalogWrite   = "catalog.write"
	PermTravelRead     = "travel.read"
	PermTravelWrite    = "travel.write"
	PermTravelApprove  = "travel.approve"
	PermCalcRun        = "calc.run"
	PermCacheManage    = "calc.cache.manage"
	PermAuditRead      = "audit.read"
	PermUsersManage    = "admin.users"
)

var DefaultPermissions = []string{
	PermEmployeesRead,
	PermEmployeesWrite,
	PermCatalogRead,
	PermCatalogWrite,
	PermTravelRead,
	PermTravelWrite,
	PermTravelApprove,
	PermCalcRun,
	PermCacheManage,
	PermAuditRead,
	PermUsersManage,
}

var RolePermissions = map[string][]string{
	RoleEmployee: {
		PermEmployeesRead,
		PermCatalogRead,
		PermTravelRead,
		PermTravelWrite,
		PermCalcRun,
	},
	RoleManager: {
		PermEmployeesRead,
		PermCatalogRead,
		PermTravelRead,
		PermTravelWrite,
		PermTravelApprove,
		PermCalcRun,
		PermAuditRead,
	},
	RoleAdmin: {
		PermEmployeesRead,
		PermEmployeesWrite,
		PermCatalogRead,
		PermCatalogWrite,
		PermTravelRead,
		PermTravelWrite,
		PermTravelApprove,
		PermCalcRun,
		PermCacheManage,
		PermAuditRead,
		PermUsersManage,
	},
}
