package rbac

// Roles known to the service. The identity provider puts one of these into
// the token's role claim.
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// Permissions checked by the domain services.
const (
	PermSubscriptionManage = "subscription.manage"
	PermTestimonialWrite   = "testimonial.write"
	PermPlansWrite         = "plans.write"
	PermStatsRead          = "stats.read"
)

// MaxInheritanceDepth bounds role inheritance chains.
const MaxInheritanceDepth = 10

// Role is a set of permissions with optional inheritance. A permission ending
// in ".*" grants every permission under that prefix, "*" grants everything.
type Role struct {
	Permissions []string
	Inherits    []string
}

// Can checks direct permissions only.
func (r *Role) Can(permission string) bool {
	return matchAny(r.Permissions, permission)
}

// DefaultRoles returns the catering role table. Customers manage their own
// subscription and testimonials; administrators manage the catalog and read
// aggregates but never act on individual subscriptions.
func DefaultRoles() map[string]Role {
	return map[string]Role{
		RoleCustomer: {
			Permissions: []string{"subscription.*", PermTestimonialWrite},
		},
		RoleAdmin: {
			Permissions: []string{"plans.*", "stats.*"},
		},
	}
}
