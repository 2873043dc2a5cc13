// Package githubcli adapts the GitHub CLI (gh) to the repository operations
// required by provisioning.
package githubcli
