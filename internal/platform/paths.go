// Package platform resolves where gantt keeps its config, .env, and logs on each OS.
package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// DefaultAppName names the per-user directories when no app name is given.
const DefaultAppName = "gantt"

// ErrEmptyBaseDir and ErrEmptyAppName report unusable inputs to PathsFor.
var (
	ErrEmptyBaseDir = errors.New("empty base dir")
	ErrEmptyAppName = errors.New("empty app name")
)

// Paths lists the per-user locations for one app name.
type Paths struct {
	ConfigPath string
	EnvPath    string
	DataDir    string
	LogDir     string
}

// Options selects the app directory. DevMode appends "-dev" so a development
// build never touches the installed one's files.
type Options struct {
	AppName string
	DevMode bool
}

// dirName returns the directory name for opts.
func (o Options) dirName() string {
	name := strings.TrimSpace(o.AppName)
	if name == "" {
		name = DefaultAppName
	}
	if o.DevMode {
		name += "-dev"
	}
	return name
}

// baseOverrides names the environment variables that replace the config and
// data base directories on each OS. Darwin has none: os.UserConfigDir already
// points at Application Support.
var baseOverrides = map[string][2]string{
	"linux":   {"XDG_CONFIG_HOME", "XDG_DATA_HOME"},
	"windows": {"APPDATA", "LOCALAPPDATA"},
}

// DefaultPaths resolves paths for the default app name.
func DefaultPaths() (Paths, error) {
	return DefaultPathsWithOptions(Options{})
}

// DefaultPathsWithOptions resolves paths for the running OS and user.
func DefaultPathsWithOptions(opts Options) (Paths, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return Paths{}, fmt.Errorf("user config dir: %w", err)
	}
	dataDir := configDir
	switch runtime.GOOS {
	case "linux":
		home, err := os.UserHomeDir()
		if err != nil {
			return Paths{}, fmt.Errorf("user home dir: %w", err)
		}
		dataDir = filepath.Join(home, ".local", "share")
	case "windows":
		if v := strings.TrimSpace(os.Getenv("LOCALAPPDATA")); v != "" {
			dataDir = v
		}
	}

	env := make(map[string]string)
	for _, vars := range baseOverrides {
		for _, name := range vars {
			env[name] = os.Getenv(name)
		}
	}
	return PathsFor(runtime.GOOS, env, configDir, dataDir, opts.dirName())
}

// PathsFor derives paths for goos from explicit base directories and environment.
func PathsFor(goos string, env map[string]string, userConfigDir, userDataDir, appName string) (Paths, error) {
	if userConfigDir == "" || userDataDir == "" {
		return Paths{}, ErrEmptyBaseDir
	}
	appName = strings.TrimSpace(appName)
	if appName == "" {
		return Paths{}, ErrEmptyAppName
	}

	configBase, dataBase := userConfigDir, userDataDir
	if vars, ok := baseOverrides[goos]; ok {
		if v := env[vars[0]]; v != "" {
			configBase = v
		}
		if v := env[vars[1]]; v != "" {
			dataBase = v
		}
	}

	configDir := filepath.Join(configBase, appName)
	dataDir := filepath.Join(dataBase, appName)
	return Paths{
		ConfigPath: filepath.Join(configDir, "config.toml"),
		EnvPath:    filepath.Join(configDir, ".env"),
		DataDir:    dataDir,
		LogDir:     filepath.Join(dataDir, "log"),
	}, nil
}
