// Package metrics exposes Prometheus collectors for HTTP traffic, the
// subscription lifecycle and the retention job. *Metrics implements
// subscription.Observer and is passed to the service with
// subscription.WithObserver.
package metrics
