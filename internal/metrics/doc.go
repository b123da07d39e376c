// Package metrics defines the Prometheus collectors for the
// transformation pipeline and the HTTP layer wrapping it, registered
// via promauto at package init.
package metrics
