// Test Type: Unit Test
// Description: Tests for layered configuration loading

package config_test

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/arthur-debert/lumina-project/pkg/config"
	"github.com/arthur-debert/lumina-project/pkg/errors"
	"github.com/arthur-debert/lumina-project/pkg/logging"
	"github.com/arthur-debert/lumina-project/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate keeps the developer's own config and environment out of the test.
func isolate(t *testing.T) (userFile, workDir string) {
	t.Helper()
	t.Setenv("LUMINA_DIR", "")
	t.Setenv("LUMINA_PROJECT_CONFIG_DIR", t.TempDir())
	return filepath.Join(t.TempDir(), "config.toml"), t.TempDir()
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoadDefaults(t *testing.T) {
	userFile, workDir := isolate(t)

	cfg, err := config.Load(config.LoadOptions{UserFile: userFile, WorkDir: workDir})
	require.NoError(t, err)

	assert.Equal(t, "", cfg.EngineDir)
	assert.Equal(t, "Templates/Projects", cfg.Templates.Root)
	assert.Equal(t, "template.json", cfg.Templates.MetadataFile)
	assert.Empty(t, cfg.Templates.Ignore)
	assert.Contains(t, cfg.Classify.TextExtensions, ".lproject")
	assert.False(t, cfg.Instantiate.Atomic)
	assert.True(t, cfg.Hooks.Enabled)
	assert.True(t, cfg.Hooks.Tools.Enabled)
	assert.Equal(t, "Tools", cfg.Hooks.Tools.Source)
	assert.Equal(t, 2*time.Minute, cfg.Hooks.Tools.Timeout)
	assert.Equal(t, "GenerateProject.py", cfg.Hooks.Generate.Entrypoint)
	assert.Equal(t, "python3", cfg.Hooks.Generate.Interpreter)
	assert.Equal(t, 60*time.Second, cfg.Hooks.Generate.Timeout)
	assert.Equal(t, "auto", cfg.Output.Format)
	assert.Empty(t, cfg.ExtraTokens())
}

func TestLoadLayerPrecedence(t *testing.T) {
	userFile, workDir := isolate(t)

	writeFile(t, userFile, `
engine_dir = "/from/user"

[hooks.generate]
interpreter = "python"
timeout = "10s"

[tokens]
COMPANY = "Acme"
`)
	writeFile(t, filepath.Join(workDir, ".lumina-project.toml"), `
[hooks.generate]
timeout = "20s"

[output]
tree = true
`)
	t.Setenv("LUMINA_PROJECT_HOOKS__GENERATE__TIMEOUT", "30s")
	t.Setenv("LUMINA_PROJECT_INSTANTIATE__ATOMIC", "true")
	t.Setenv("LUMINA_DIR", "/from/env")

	cfg, err := config.Load(config.LoadOptions{
		UserFile:  userFile,
		WorkDir:   workDir,
		Overrides: map[string]interface{}{"output.format": "json"},
	})
	require.NoError(t, err)

	assert.Equal(t, "/from/env", cfg.EngineDir)
	assert.Equal(t, "python", cfg.Hooks.Generate.Interpreter)
	assert.Equal(t, 30*time.Second, cfg.Hooks.Generate.Timeout)
	assert.True(t, cfg.Instantiate.Atomic)
	assert.True(t, cfg.Output.Tree)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, []types.Token{{Name: "COMPANY", Value: "Acme"}}, cfg.ExtraTokens())
}

func TestLoadEnvironmentLists(t *testing.T) {
	userFile, workDir := isolate(t)
	t.Setenv("LUMINA_PROJECT_CLASSIFY__TEXT_EXTENSIONS", ".h,.cpp")
	t.Setenv("LUMINA_PROJECT_ENGINE_DIR", "/engine")

	cfg, err := config.Load(config.LoadOptions{UserFile: userFile, WorkDir: workDir})
	require.NoError(t, err)
	assert.Equal(t, []string{".h", ".cpp"}, cfg.Classify.TextExtensions)
	assert.Equal(t, "/engine", cfg.EngineDir)
}

func TestLoadEnvironmentTokensKeepCase(t *testing.T) {
	userFile, workDir := isolate(t)
	t.Setenv("LUMINA_PROJECT_TOKENS__COMPANY", "Acme")
	t.Setenv("LUMINA_PROJECT_TOKENS__Engine_Version", "5")
	t.Setenv("LUMINA_PROJECT_HOOKS__GENERATE__INTERPRETER", "python")

	cfg, err := config.Load(config.LoadOptions{UserFile: userFile, WorkDir: workDir})
	require.NoError(t, err)
	assert.Equal(t, []types.Token{
		{Name: "COMPANY", Value: "Acme"},
		{Name: "Engine_Version", Value: "5"},
	}, cfg.ExtraTokens())
	assert.Equal(t, "python", cfg.Hooks.Generate.Interpreter)
}

func TestLoadLogsConfigFile(t *testing.T) {
	userFile, workDir := isolate(t)
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	t.Setenv("NO_COLOR", "1")
	writeFile(t, userFile, "[output]\ntree = true\n")

	var buf bytes.Buffer
	logging.SetupLoggerWithOutput(2, &buf)
	t.Cleanup(func() { logging.SetupLoggerWithOutput(0, io.Discard) })

	_, err := config.Load(config.LoadOptions{UserFile: userFile, WorkDir: workDir})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Loaded config file")
	assert.Contains(t, buf.String(), userFile)
}

func TestLoadIgnoresUnrelatedEnvironment(t *testing.T) {
	userFile, workDir := isolate(t)
	t.Setenv("LUMINA_PROJECT_NAME", "Foo")

	cfg, err := config.Load(config.LoadOptions{UserFile: userFile, WorkDir: workDir})
	require.NoError(t, err)

	out, err := cfg.TOML()
	require.NoError(t, err)
	assert.NotContains(t, string(out), "Foo")
}

func TestLoadRejectsInvalid(t *testing.T) {
	userFile, workDir := isolate(t)

	_, err := config.Load(config.LoadOptions{
		UserFile:  userFile,
		WorkDir:   workDir,
		Overrides: map[string]interface{}{"output.format": "yaml"},
	})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigParse))

	writeFile(t, userFile, "this is = not [toml")
	_, err = config.Load(config.LoadOptions{UserFile: userFile, WorkDir: workDir})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigParse))
	assert.Equal(t, userFile, errors.Path(err))
}

func TestConfigPaths(t *testing.T) {
	userFile, workDir := isolate(t)
	engine := t.TempDir()

	cfg, err := config.Load(config.LoadOptions{
		UserFile:  userFile,
		WorkDir:   workDir,
		Overrides: map[string]interface{}{"engine_dir": engine},
	})
	require.NoError(t, err)

	p, err := cfg.Paths()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(engine, "Templates", "Projects"), p.TemplatesRoot())
	assert.Equal(t, filepath.Join(engine, "Tools"), p.ToolsDir())
}

func TestConfigWrite(t *testing.T) {
	userFile, workDir := isolate(t)
	cfg, err := config.Load(config.LoadOptions{
		UserFile:  userFile,
		WorkDir:   workDir,
		Overrides: map[string]interface{}{"hooks.generate.interpreter": "py"},
	})
	require.NoError(t, err)

	target := filepath.Join(t.TempDir(), "nested", "config.toml")
	require.NoError(t, cfg.Write(target))

	// The written file loads back to the same configuration.
	again, err := config.Load(config.LoadOptions{UserFile: target, WorkDir: workDir})
	require.NoError(t, err)
	assert.Equal(t, "py", again.Hooks.Generate.Interpreter)
	assert.Equal(t, cfg.Hooks.Generate.Timeout, again.Hooks.Generate.Timeout)
	assert.Equal(t, cfg.Classify.TextExtensions, again.Classify.TextExtensions)

	err = cfg.Write(target)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrDestinationExists))
}

func TestDefaultsContent(t *testing.T) {
	assert.Contains(t, config.DefaultsContent(), "[hooks.generate]")
}
