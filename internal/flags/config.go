package flags

import (
	"os"
	"strings"

	"github.com/spf13/pflag"
)

const (
	// Env vars
	EnvVarEnvFile          = "BACKEND_INTEGRATION_ENV_FILE"
	EnvVarDependenciesFile = "BACKEND_INTEGRATION_DEPENDENCIES_FILE"
	EnvVarLogPath          = "BACKEND_INTEGRATION_LOG_PATH"
	EnvVarLogLevel         = "BACKEND_INTEGRATION_LOG_LEVEL"

	// Defaults
	DefaultEnvFile          = ".env"
	DefaultDependenciesFile = ""
	DefaultLogPath          = ""
	DefaultLogLevel         = "info"

	// Flag names
	FlagNameEnvFile          = "env-file"
	FlagNameDependenciesFile = "dependencies-file"
	FlagNameLogPath          = "log-path"
	FlagNameLogLevel         = "log-level"
)

var (
	EnvFile          string
	DependenciesFile string
	LogPath          string
	LogLevel         string
)

// InitFlags registers the global flags on fs, seeding their defaults from the environment.
func InitFlags(fs *pflag.FlagSet) {
	initConfigFiles(fs)
	initLogger(fs)
}

func initConfigFiles(fs *pflag.FlagSet) {
	if EnvFile == "" {
		EnvFile = fromEnvOrDefault(EnvVarEnvFile, DefaultEnvFile)
	}
	fs.StringVar(&EnvFile, FlagNameEnvFile, EnvFile, "path to a dotenv file loaded before reading configuration")

	if DependenciesFile == "" {
		DependenciesFile = fromEnvOrDefault(EnvVarDependenciesFile, DefaultDependenciesFile)
	}
	fs.StringVar(
		&DependenciesFile,
		FlagNameDependenciesFile,
		DependenciesFile,
		"path to a TOML or YAML file declaring additional downstream services to probe",
	)
}

func initLogger(fs *pflag.FlagSet) {
	if LogPath == "" {
		LogPath = fromEnvOrDefault(EnvVarLogPath, DefaultLogPath)
	}
	fs.StringVar(&LogPath, FlagNameLogPath, LogPath, "path to generated log file (defaults to stderr)")

	if LogLevel == "" {
		LogLevel = strings.ToLower(fromEnvOrDefault(EnvVarLogLevel, DefaultLogLevel))
	}
	fs.StringVar(&LogLevel, FlagNameLogLevel, LogLevel, "log level (trace, debug, info, warn, error, off)")
}

func fromEnvOrDefault(key string, def string) string {
	if env := strings.TrimSpace(os.Getenv(key)); env != "" {
		return env
	}
	return def
}
