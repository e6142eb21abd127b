// Package catering mounts the meal subscription HTTP API.
//
// Public routes list plans, price a schedule and show featured
// testimonials. Customer routes (role "customer") manage the caller's own
// subscription and testimonials; the customer id always comes from the
// bearer token, never from the request. Admin routes (role "admin") add
// plans and read aggregate statistics.
//
// Every response uses the handler package's JSON envelope and error
// messages are localised from the Accept-Language header.
package catering
