// Package cli constructs the forge command-line interface, wiring the Cobra
// command hierarchy, configuration loader, and structured logging primitives.
package cli
