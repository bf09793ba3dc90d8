package auth

import "testing"

func TestRolePermissionsAreSubsetOfDefaults(t *testing.T) {
	known := map[string]bool{}
	for _, perm := range DefaultPermissions {
		known[perm] = true
	}
	for role, perms := range RolePermissions {
		for _, perm := range perms {
			if !known[perm] {
				t.Fatalf("role %s references unknown permission %s", role, perm)
			}
		}
	}
}

func TestEmployeeCannotManageCacheOrApprove(t *testing.T) {
	for _, perm := range RolePermissions[RoleEmployee] {
		if perm == PermCacheManage || perm == PermTravelApprove || perm == PermUsersManage {
			t.Fatalf("employee role must not carry %s", perm)
		}
	}
}

func TestAdminCarriesAllPermissions(t *testing.T) {
	admin := map[string]bool{}
	for _, perm := range RolePermissions[RoleAdmin] {
		admin[perm] = true
	}
	for _, perm := range DefaultPermissions {
		if !admin[perm] {
			t.Fatalf("admin role is missing %s", perm)
		}
	}
}
