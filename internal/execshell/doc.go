// Package execshell provides structured helpers for invoking external tools.
//
// It wraps os/exec with logging via ShellExecutor, exposes OSCommandRunner for
// default process execution, and defines abstractions used throughout forge to
// run git, gh, Gradle, fastlane, and curl in a testable manner.
package execshell
