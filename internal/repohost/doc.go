// Package repohost abstracts remote repository management behind a capability
// interface so the provisioner can be exercised without network access.
//
// Two implementations exist: CLIHost shells out to the GitHub CLI through
// execshell, while APIHost speaks to the GitHub REST API with an OAuth2 token.
package repohost
