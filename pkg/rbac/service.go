package rbac

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Authorizer maps roles to permissions.
type Authorizer interface {
	// Can checks if a role has the permission, directly or inherited.
	Can(roleName, permission string) error

	// CanFromContext checks the role stored in ctx by WithRole.
	CanFromContext(ctx context.Context, permission string) error

	// VerifyRole returns ErrInvalidRole for unknown roles.
	VerifyRole(role string) error
}

// RoleSource provides role definitions.
type RoleSource interface {
	Load(ctx context.Context) (map[string]Role, error)
}

type authorizer struct {
	// resolved permissions per role, read-only after construction
	rolePermissions map[string][]string
}

// NewAuthorizer loads roles from source and resolves inheritance up front.
func NewAuthorizer(ctx context.Context, source RoleSource) (Authorizer, error) {
	if source == nil {
		panic("rbac: role source is required")
	}

	roles, err := source.Load(ctx)
	if err != nil {
		return nil, err
	}

	rolePermissions := make(map[string][]string, len(roles))
	for name := range roles {
		perms, err := resolve(name, roles, nil)
		if err != nil {
			return nil, err
		}
		slices.Sort(perms)
		rolePermissions[name] = slices.Compact(perms)
	}

	return &authorizer{rolePermissions: rolePermissions}, nil
}

func (a *authorizer) Can(roleName, permission string) error {
	permissions, exists := a.rolePermissions[roleName]
	if !exists {
		return ErrInvalidRole
	}
	if !matchAny(permissions, permission) {
		return ErrInsufficientPermissions
	}
	return nil
}

func (a *authorizer) CanFromContext(ctx context.Context, permission string) error {
	role, ok := RoleFromContext(ctx)
	if !ok {
		return errors.Join(ErrRoleNotInContext, ErrInsufficientPermissions)
	}
	return a.Can(role, permission)
}

func (a *authorizer) VerifyRole(role string) error {
	if _, exists := a.rolePermissions[role]; !exists {
		return ErrInvalidRole
	}
	return nil
}

// resolve collects direct and inherited permissions, failing on cycles and
// chains longer than MaxInheritanceDepth.
func resolve(name string, roles map[string]Role, path []string) ([]string, error) {
	if slices.Contains(path, name) {
		return nil, errors.Join(ErrCircularInheritance,
			fmt.Errorf("circular inheritance detected: %s -> %s", strings.Join(path, " -> "), name))
	}
	if len(path) > MaxInheritanceDepth {
		return nil, errors.Join(ErrCircularInheritance,
			fmt.Errorf("inheritance depth exceeds maximum allowed depth of %d", MaxInheritanceDepth))
	}

	role, ok := roles[name]
	if !ok {
		return nil, errors.Join(ErrInvalidRole, fmt.Errorf("unknown role %q", name))
	}

	out := slices.Clone(role.Permissions)
	for _, parent := range role.Inherits {
		inherited, err := resolve(parent, roles, append(path, name))
		if err != nil {
			return nil, err
		}
		out = append(out, inherited...)
	}
	return out, nil
}

func matchAny(granted []string, permission string) bool {
	for _, g := range granted {
		if g == "*" || g == permission {
			return true
		}
		if prefix, ok := strings.CutSuffix(g, ".*"); ok && strings.HasPrefix(permission, prefix+".") {
			return true
		}
	}
	return false
}
