package auth

import "context"

// PermissionAuthorizer is injected wherever an authorization decision is
// needed so tests can substitute fake identities instead of reading a global.
type PermissionAuthorizer interface {
	HasPermission(ctx context.Context, userPermissions []string, permission string) (bool, error)
	CanValidateTindakan(ctx context.Context, userPermissions []string) (bool, error)
	CanManageLocations(ctx context.Context, userPermissions []string) (bool, error)
	CanManageTolerance(ctx context.Context, userPermissions []string) (bool, error)
	IsAdmin(ctx context.Context, userPermissions []string) (bool, error)
}

type DefaultPermissionChecker struct{}

func NewPermissionChecker() *DefaultPermissionChecker {
	return &DefaultPermissionChecker{}
}

func (c *DefaultPermissionChecker) HasPermission(ctx context.Context, userPermissions []string, permission string) (bool, error) {
	return c.hasAny(userPermissions, []string{permission, PermAdmin}), nil
}

func (c *DefaultPermissionChecker) CanValidateTindakan(ctx context.Context, userPermissions []string) (bool, error) {
	return c.hasAny(userPermissions, []string{PermValidasiTindakan, PermAdmin}), nil
}

func (c *DefaultPermissionChecker) CanManageLocations(ctx context.Context, userPermissions []string) (bool, error) {
	return c.hasAny(userPermissions, []string{PermKelolaLokasi, PermAdmin}), nil
}

func (c *DefaultPermissionChecker) CanManageTolerance(ctx context.Context, userPermissions []string) (bool, error) {
	return c.hasAny(userPermissions, []string{PermKelolaToleransi, PermAdmin}), nil
}

func (c *DefaultPermissionChecker) IsAdmin(ctx context.Context, userPermissions []string) (bool, error) {
	return c.hasAny(userPermissions, []string{PermAdmin}), nil
}

func (c *DefaultPermissionChecker) hasAny(userPermissions []string, requiredPermissions []string) bool {
	for _, userPerm := range userPermissions {
		for _, requiredPerm := range requiredPermissions {
			if userPerm == requiredPerm {
				return true
			}
		}
	}
	return false
}
