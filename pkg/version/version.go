package version

// Current defines the application version.
// Release builds overwrite it via -ldflags.
var Current = "dev"

const AppName = "CostLens"
