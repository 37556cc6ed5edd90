package conventions

import "path/filepath"

const (
	// DefaultDataDir is the default runcap data directory name (relative to home).
	DefaultDataDir = ".runcap"
	// DBFile is the filename of the run history database.
	DBFile = "runcap.db"
	// ConfigFile is the filename of the optional tool configuration.
	ConfigFile = "config.yaml"
	// LockFileSuffix is appended to the database path to form the
	// cross-process lock file.
	LockFileSuffix = ".lock"

	// DefaultDockerImage is the image used by the Docker engine when the
	// command does not name one.
	DefaultDockerImage = "alpine:3.22"
)

// DBPath returns the full path of the run history database.
func DBPath(dataDir string) string {
	return filepath.Join(dataDir, DBFile)
}

// ConfigPath returns the full path of the tool configuration file.
func ConfigPath(dataDir string) string {
	return filepath.Join(dataDir, ConfigFile)
}
