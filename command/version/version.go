package version

// set via -ldflags "-X loom/command/version.version=..."
var version = "0.1.0-dev"

func VersionNumber() string {
	return version
}
