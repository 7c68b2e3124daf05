// Package lyrebird holds metadata shared across the lyrebird CLI.
package lyrebird

// Version is the current lyrebird release. Overridden via ldflags on
// tagged release builds.
var Version = "0.4.0"
