// Package paths resolves the directories lumina-project works with: the
// engine checkout, its templates and tools, and the XDG config and state
// directories of the tool itself.
package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/lumina-project/pkg/errors"
)

// Environment variable names
const (
	// EnvEngineDir points at the engine checkout
	EnvEngineDir = "LUMINA_DIR"

	// EnvConfigDir overrides the XDG config directory
	EnvConfigDir = "LUMINA_PROJECT_CONFIG_DIR"

	// EnvStateHome is the XDG state base directory
	EnvStateHome = "XDG_STATE_HOME"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// Default directories and files
const (
	// AppDirName is the directory name used under XDG base directories
	AppDirName = "lumina-project"

	// ConfigFileName is the user configuration file inside ConfigDir
	ConfigFileName = "config.toml"

	// LocalConfigFile is the per-directory configuration file
	LocalConfigFile = ".lumina-project.toml"

	// DefaultTemplatesDir is the templates root relative to the engine dir
	DefaultTemplatesDir = "Templates/Projects"

	// DefaultToolsDir is the tools directory relative to the engine dir
	DefaultToolsDir = "Tools"

	// LogFileName is the name of the log file
	LogFileName = "lumina-project.log"
)

// Paths provides the resolved directories of one invocation.
type Paths interface {
	EngineDir() string
	TemplatesRoot() string
	ToolsDir() string
	ConfigDir() string
	ConfigFile() string
	StateDir() string
	LogFilePath() string
}

type paths struct {
	engineDir     string
	templatesRoot string
	toolsDir      string
	configDir     string
	stateDir      string
}

// New resolves paths for an engine checkout. An empty engineDir falls back to
// LUMINA_DIR. templatesRoot and toolsDir may be empty (defaults) or relative
// to the engine dir.
func New(engineDir, templatesRoot, toolsDir string) (Paths, error) {
	if engineDir == "" {
		engineDir = os.Getenv(EnvEngineDir)
	}
	if engineDir == "" {
		return nil, errors.Newf(errors.ErrInvalidInput,
			"engine directory is not set, export %s or set engine_dir in the configuration", EnvEngineDir)
	}

	abs, err := filepath.Abs(ExpandHome(engineDir))
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInvalidInput, "invalid engine directory %s", engineDir)
	}

	p := &paths{
		engineDir:     abs,
		templatesRoot: underEngine(abs, templatesRoot, DefaultTemplatesDir),
		toolsDir:      underEngine(abs, toolsDir, DefaultToolsDir),
		configDir:     ConfigDir(),
		stateDir:      StateDir(),
	}
	return p, nil
}

func underEngine(engineDir, path, fallback string) string {
	if path == "" {
		path = fallback
	}
	path = ExpandHome(path)
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(engineDir, filepath.FromSlash(path))
}

// CheckEngineDir verifies that the engine directory exists and is a
// directory.
func CheckEngineDir(p Paths) error {
	info, err := os.Stat(p.EngineDir())
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Wrapf(err, errors.ErrInvalidInput, "engine directory %s does not exist", p.EngineDir()).
				WithDetail("path", p.EngineDir())
		}
		return errors.Wrap(err, errors.ErrIOFailure, "cannot access engine directory").
			WithDetail("path", p.EngineDir())
	}
	if !info.IsDir() {
		return errors.Newf(errors.ErrInvalidInput, "engine directory %s is not a directory", p.EngineDir()).
			WithDetail("path", p.EngineDir())
	}
	return nil
}

// ConfigDir returns the configuration directory, honouring
// LUMINA_PROJECT_CONFIG_DIR.
func ConfigDir() string {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return ExpandHome(dir)
	}
	return filepath.Join(xdg.ConfigHome, AppDirName)
}

// StateDir returns the state directory. XDG_STATE_HOME is read on every call
// so tests can redirect it.
func StateDir() string {
	if dir := os.Getenv(EnvStateHome); dir != "" {
		return filepath.Join(dir, AppDirName)
	}
	return filepath.Join(xdg.StateHome, AppDirName)
}

// ExpandHome expands a leading ~ to the home directory
func ExpandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to HOME env var
		homeDir = os.Getenv(EnvHome)
		if homeDir == "" {
			return path
		}
	}

	if len(path) == 1 {
		return homeDir
	}
	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(homeDir, path[2:])
	}
	// ~user is not expanded
	return path
}

func (p *paths) EngineDir() string     { return p.engineDir }
func (p *paths) TemplatesRoot() string { return p.templatesRoot }
func (p *paths) ToolsDir() string      { return p.toolsDir }
func (p *paths) ConfigDir() string     { return p.configDir }
func (p *paths) StateDir() string      { return p.stateDir }

// ConfigFile returns the user configuration file path
func (p *paths) ConfigFile() string {
	return filepath.Join(p.configDir, ConfigFileName)
}

// LogFilePath returns the log file path
func (p *paths) LogFilePath() string {
	return filepath.Join(p.stateDir, LogFileName)
}
