// Package gitrepo wraps the git CLI with the repository-level operations used
// by provisioning: clone, stage, commit, push, and working tree inspection.
// It also provides structured parsing and formatting of git remote URLs.
package gitrepo
