// Package setup personalizes an already instantiated template tree in place:
// legacy token rewrite across names and contents, configuration artifact
// write, and an optional git commit of the result.
package setup
