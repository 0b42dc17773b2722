// Test Type: Unit Test
// Description: Tests for the Tools directory copy hook

package hooks_test

import (
	"context"
	"testing"
	"time"

	"github.com/arthur-debert/lumina-project/pkg/errors"
	"github.com/arthur-debert/lumina-project/pkg/hooks"
	"github.com/arthur-debert/lumina-project/pkg/testutil"
	"github.com/arthur-debert/lumina-project/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func toolsEnv(t *testing.T) hooks.Env {
	t.Helper()
	fs := testutil.NewTestFS()
	testutil.WriteTree(t, fs, "/engine/Tools", map[string]string{
		"premake5":       "\x7fELF binary",
		"scripts/gen.py": "print('$PROJECT_NAME')",
	})
	require.NoError(t, fs.Chmod("/engine/Tools/premake5", 0755))
	require.NoError(t, fs.MkdirAll("/work/Foo", 0755))
	return hooks.Env{ProjectName: "Foo", ProjectDir: "/work/Foo", EngineDir: "/engine", FS: fs}
}

func TestToolsHookCopies(t *testing.T) {
	env := toolsEnv(t)

	report := hooks.NewToolsHook(false).Run(context.Background(), env)
	assert.Equal(t, types.HookSucceeded, report.Status)
	assert.False(t, report.IsWarning())

	assert.Equal(t, map[string]string{
		"premake5":       "\x7fELF binary",
		"scripts/":       "",
		"scripts/gen.py": "print('$PROJECT_NAME')",
	}, testutil.ReadTree(t, env.FS, "/work/Foo/Tools"))

	info, err := env.FS.Stat("/work/Foo/Tools/premake5")
	require.NoError(t, err)
	assert.Equal(t, 0755, int(info.Mode().Perm()))
}

func TestToolsHookMissingSourceIsSkipped(t *testing.T) {
	env := toolsEnv(t)
	env.EngineDir = "/elsewhere"

	report := hooks.NewToolsHook(false).Run(context.Background(), env)
	assert.Equal(t, types.HookSkipped, report.Status)
	assert.False(t, report.IsWarning())

	report = hooks.NewToolsHook(false).Run(context.Background(), hooks.Env{ProjectDir: "/work/Foo", FS: env.FS})
	assert.Equal(t, types.HookSkipped, report.Status)
}

func TestToolsHookKeepsExistingTarget(t *testing.T) {
	env := toolsEnv(t)
	testutil.WriteTree(t, env.FS, "/work/Foo/Tools", map[string]string{"local.txt": "mine"})

	report := hooks.NewToolsHook(false).Run(context.Background(), env)
	assert.Equal(t, types.HookSkipped, report.Status)
	assert.True(t, report.IsWarning())
	assert.True(t, errors.IsErrorCode(report.Err, errors.ErrDestinationExists))
	assert.Equal(t, map[string]string{"local.txt": "mine"}, testutil.ReadTree(t, env.FS, "/work/Foo/Tools"))
}

func TestToolsHookOverwrite(t *testing.T) {
	env := toolsEnv(t)
	testutil.WriteTree(t, env.FS, "/work/Foo/Tools", map[string]string{"local.txt": "mine"})

	report := hooks.NewToolsHook(true).Run(context.Background(), env)
	assert.Equal(t, types.HookSucceeded, report.Status)

	tree := testutil.ReadTree(t, env.FS, "/work/Foo/Tools")
	assert.NotContains(t, tree, "local.txt")
	assert.Contains(t, tree, "premake5")
}

func TestToolsHookCustomTargetAndTimeout(t *testing.T) {
	env := toolsEnv(t)
	hook := &hooks.CopyDirHook{Source: "/engine/Tools", Target: "Vendor/Tools", Timeout: time.Minute}

	report := hook.Run(context.Background(), env)
	require.Equal(t, types.HookSucceeded, report.Status)
	assert.Contains(t, testutil.ReadTree(t, env.FS, "/work/Foo/Vendor/Tools"), "premake5")
}

func TestToolsHookCancelled(t *testing.T) {
	env := toolsEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report := hooks.NewToolsHook(false).Run(ctx, env)
	assert.Equal(t, types.HookFailed, report.Status)
	assert.True(t, report.IsWarning())
}
