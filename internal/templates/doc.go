// Package templates renders placeholder templates from the template store into
// a provisioned repository tree.
package templates
