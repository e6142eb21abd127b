// Package identity verifies bearer tokens issued by the external identity
// provider and carries the resulting caller through the request context.
//
// The service never authenticates users itself. A token's subject is the
// customer id and its role claim is one of the rbac roles. Middleware
// attaches the identity when a token is present; RequireRole guards routes
// that need a particular role.
package identity
