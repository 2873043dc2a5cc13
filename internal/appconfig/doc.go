// Package appconfig persists the per-repository application configuration
// artifact read back by CI triggers.
package appconfig
