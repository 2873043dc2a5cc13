// Package provision creates customer repositories from the app template:
// it provisions the remote repository, renders the scaffold and template
// store with customer values, persists the app configuration artifact, and
// pushes the initial commit.
package provision
