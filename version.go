package marquee

// Version is the release version of the module. Overridden at build time
// via -ldflags for tagged builds.
var Version = "0.3.0"
