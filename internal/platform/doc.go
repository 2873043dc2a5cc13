// Package platform wraps the per-platform build toolchains: Gradle for
// Android and fastlane for iOS. Builders run the toolchain, locate the
// produced artifact, and copy it into the requested output directory; a
// missing artifact after a successful toolchain run is a warning, not a
// failure.
package platform
