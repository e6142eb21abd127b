package rbac

import "errors"

var (
	ErrInvalidRole             = errors.New("rbac.invalid_role")
	ErrInsufficientPermissions = errors.New("rbac.insufficient_permissions")
	ErrRoleNotInContext        = errors.New("rbac.role_not_in_context")
	ErrCircularInheritance     = errors.New("rbac.circular_inheritance")
)
