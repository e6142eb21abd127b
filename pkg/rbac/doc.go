// Package rbac implements role based authorization for the catering service.
//
// Two roles exist: customers manage their own subscription and testimonials,
// administrators manage the plan catalog and read aggregate statistics.
// Permissions are dotted strings; "plans.*" grants every permission under
// "plans.". Role inheritance is resolved once when the Authorizer is built.
//
//	authz, err := rbac.NewAuthorizer(ctx, rbac.NewInMemRoleSource(rbac.DefaultRoles()))
//	ctx = rbac.WithRole(ctx, rbac.RoleAdmin)
//	err = authz.CanFromContext(ctx, rbac.PermStatsRead) // nil
package rbac
