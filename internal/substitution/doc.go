// Package substitution implements the token substitution engine used to turn
// the neutral LynxJS scaffold into a customer application.
//
// Two token vocabularies coexist: the legacy vocabulary renames an already
// instantiated scaffold in place, while the placeholder vocabulary renders
// __TOKEN__ markers from template store files. Both are expressed as ordered
// Rulesets so new token sets can be added without touching the traversal code.
package substitution
