package cmd

// AppName is the binary and default application name.
const AppName = "backend-integration"

var version = "dev" // Set at build time using -ldflags

// Version returns the version of the running application.
func Version() string {
	return version
}
