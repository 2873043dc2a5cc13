// Package ci models the reusable CI entry point: the normalized trigger
// parameter set, the per-platform job plan derived from it, and the lynx
// bundle download each job performs. Orchestration of the jobs themselves
// stays with the CI system.
package ci
