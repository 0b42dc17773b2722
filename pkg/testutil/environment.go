package testutil

import (
	"path/filepath"
	"testing"

	"github.com/arthur-debert/lumina-project/pkg/filesystem"
	"github.com/arthur-debert/lumina-project/pkg/paths"
	"github.com/arthur-debert/lumina-project/pkg/types"
)

// EnvType defines the type of test environment
type EnvType int

const (
	EnvMemoryOnly EnvType = iota // Pure in-memory, no real filesystem
	EnvIsolated                  // Real filesystem in temp directory
)

// Environment is an engine checkout for tests: a templates root, a tools
// directory and a work directory projects are created in.
type Environment struct {
	Root          string
	EngineDir     string
	TemplatesRoot string
	ToolsDir      string
	WorkDir       string

	FS   types.FS
	Type EnvType

	t testing.TB
}

// NewEnvironment creates an engine checkout. An isolated environment lives
// under t.TempDir() and points LUMINA_DIR, the config directory and the
// state directory at it, so commands under test never see the user's files.
func NewEnvironment(t testing.TB, envType EnvType) *Environment {
	t.Helper()

	e := &Environment{Type: envType, t: t}
	switch envType {
	case EnvIsolated:
		e.Root = t.TempDir()
		e.FS = filesystem.NewOS()
	default:
		e.Root = "/test"
		e.FS = NewTestFS()
	}

	e.EngineDir = filepath.Join(e.Root, "engine")
	e.TemplatesRoot = filepath.Join(e.EngineDir, filepath.FromSlash(paths.DefaultTemplatesDir))
	e.ToolsDir = filepath.Join(e.EngineDir, paths.DefaultToolsDir)
	e.WorkDir = filepath.Join(e.Root, "work")
	WriteTree(t, e.FS, e.TemplatesRoot, nil)
	WriteTree(t, e.FS, e.WorkDir, nil)

	if envType == EnvIsolated {
		t.Setenv(paths.EnvEngineDir, e.EngineDir)
		t.Setenv(paths.EnvConfigDir, filepath.Join(e.Root, "config"))
		t.Setenv(paths.EnvStateHome, filepath.Join(e.Root, "state"))
	}
	return e
}

// AddTemplate writes a template directory and returns its path.
func (e *Environment) AddTemplate(name string, files map[string]string) string {
	e.t.Helper()
	dir := filepath.Join(e.TemplatesRoot, name)
	WriteTree(e.t, e.FS, dir, files)
	return dir
}

// AddTools fills the engine's tools directory.
func (e *Environment) AddTools(files map[string]string) {
	e.t.Helper()
	WriteTree(e.t, e.FS, e.ToolsDir, files)
}

// Project returns the path of a project created in the work directory.
func (e *Environment) Project(name string) string {
	return filepath.Join(e.WorkDir, name)
}

// ReadProject returns the tree of a project created in the work directory.
func (e *Environment) ReadProject(name string) map[string]string {
	e.t.Helper()
	return ReadTree(e.t, e.FS, e.Project(name))
}
