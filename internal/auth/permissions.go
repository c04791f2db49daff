package auth

import "sidesa/internal/models"

// Capability names checked by protected routes.
const (
	CapLogRead      = "log.read"
	CapLogWrite     = "log.write"
	CapUsersManage  = "users.manage"
	CapContentWrite = "content.write"
	CapUploadsWrite = "uploads.write"
)

// capabilities is the whole authorization policy. Unknown roles and unknown
// capabilities deny; there are no per-user overrides.
var capabilities = map[string]map[string]bool{
	CapLogRead:      {models.RoleSuperAdmin: true},
	CapLogWrite:     {models.RoleSuperAdmin: true, models.RoleAdmin: true},
	CapUsersManage:  {models.RoleSuperAdmin: true},
	CapContentWrite: {models.RoleSuperAdmin: true, models.RoleAdmin: true},
	CapUploadsWrite: {models.RoleSuperAdmin: true, models.RoleAdmin: true},
}

func HasPermission(role, capability string) bool {
	return capabilities[capability][role]
}
