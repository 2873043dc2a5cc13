// Package descriptor defines the customer descriptor consumed by provisioning
// and the format validation applied before any side effect occurs.
package descriptor
