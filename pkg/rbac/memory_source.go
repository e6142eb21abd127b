package rbac

import (
	"context"
	"slices"
)

type inMemRoleSource struct {
	roles map[string]Role
}

// NewInMemRoleSource returns a RoleSource over a copy of roles.
func NewInMemRoleSource(roles map[string]Role) RoleSource {
	rolesCopy := make(map[string]Role, len(roles))
	for k, v := range roles {
		rolesCopy[k] = Role{
			Permissions: slices.Clone(v.Permissions),
			Inherits:    slices.Clone(v.Inherits),
		}
	}
	return &inMemRoleSource{roles: rolesCopy}
}

func (s *inMemRoleSource) Load(_ context.Context) (map[string]Role, error) {
	return s.roles, nil
}
