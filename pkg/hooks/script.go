package hooks

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/arthur-debert/lumina-project/pkg/errors"
	"github.com/arthur-debert/lumina-project/pkg/logging"
	"github.com/arthur-debert/lumina-project/pkg/types"
)

// Defaults for the generate hook.
const (
	DefaultEntrypoint  = "GenerateProject.py"
	DefaultInterpreter = "python3"
	DefaultTimeout     = 60 * time.Second
)

// waitDelay bounds how long output pipes are drained after the process is
// killed.
const waitDelay = 2 * time.Second

// Environment variables passed to scripts.
const (
	EnvProjectName = "LUMINA_PROJECT_NAME"
	EnvProjectDir  = "LUMINA_PROJECT_DIR"
	EnvEngineDir   = "LUMINA_DIR"
)

// ScriptHook runs a script shipped inside the generated project.
type ScriptHook struct {
	// Entrypoint is the script path relative to the project root.
	Entrypoint string

	// Interpreter runs the entrypoint. Empty executes the entrypoint itself.
	Interpreter string

	// Timeout bounds the run; the process is killed when it expires. Zero
	// means DefaultTimeout.
	Timeout time.Duration

	// Output, when set, also receives the script's stdout and stderr as they
	// are produced.
	Output io.Writer
}

// NewScriptHook returns the generate hook with default settings.
func NewScriptHook() *ScriptHook {
	return &ScriptHook{
		Entrypoint:  DefaultEntrypoint,
		Interpreter: DefaultInterpreter,
		Timeout:     DefaultTimeout,
	}
}

// Name implements Hook.
func (h *ScriptHook) Name() string {
	return "generate"
}

// Run implements Hook.
func (h *ScriptHook) Run(ctx context.Context, env Env) types.HookReport {
	logger := logging.GetLogger("hooks.script")
	report := types.HookReport{Hook: h.Name()}

	entrypoint := h.Entrypoint
	if entrypoint == "" {
		entrypoint = DefaultEntrypoint
	}
	script := filepath.Join(env.ProjectDir, entrypoint)
	if info, err := os.Stat(script); err != nil || info.IsDir() {
		report.Status = types.HookSkipped
		report.Message = fmt.Sprintf("no %s in project, skipping", entrypoint)
		return report
	}

	var name string
	var args []string
	if h.Interpreter != "" {
		name, args = h.Interpreter, []string{script}
	} else {
		name = script
	}
	report.Command = append([]string{name}, args...)

	timeout := h.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, name, args...)
	cmd.Dir = env.ProjectDir
	cmd.WaitDelay = waitDelay
	cmd.Env = append(os.Environ(),
		EnvProjectName+"="+env.ProjectName,
		EnvProjectDir+"="+env.ProjectDir,
	)
	if env.EngineDir != "" {
		cmd.Env = append(cmd.Env, EnvEngineDir+"="+env.EngineDir)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout, cmd.Stderr = &stdout, &stderr
	if h.Output != nil {
		cmd.Stdout = io.MultiWriter(&stdout, h.Output)
		cmd.Stderr = io.MultiWriter(&stderr, h.Output)
	}

	logger.Info().Strs("command", report.Command).Str("dir", cmd.Dir).Msg("Executing post-generation script")

	start := time.Now()
	err := cmd.Run()
	report.Duration = time.Since(start)
	report.Stdout = stdout.String()
	report.Stderr = stderr.String()
	if cmd.ProcessState != nil {
		report.ExitCode = cmd.ProcessState.ExitCode()
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		report.Status = types.HookSucceeded
		report.Message = fmt.Sprintf("%s completed", entrypoint)
	case stderrors.Is(runCtx.Err(), context.DeadlineExceeded):
		report.Status = types.HookTimedOut
		report.Message = fmt.Sprintf("%s did not finish within %s and was killed", entrypoint, timeout)
		report.Err = errors.Wrap(err, errors.ErrHookTimeout, report.Message).
			WithDetail("path", script)
	case ctx.Err() != nil:
		report.Status = types.HookFailed
		report.Message = fmt.Sprintf("%s was cancelled", entrypoint)
		report.Err = errors.Wrap(ctx.Err(), errors.ErrCancelled, report.Message).
			WithDetail("path", script)
	case stderrors.As(err, &exitErr):
		report.Status = types.HookNonZeroExit
		report.Message = fmt.Sprintf("%s exited with status %d", entrypoint, report.ExitCode)
		if msg := strings.TrimSpace(report.Stderr); msg != "" {
			report.Message += ": " + msg
		}
		report.Err = errors.Wrap(err, errors.ErrHookNonZeroExit, report.Message).
			WithDetail("path", script).
			WithDetail("exit_code", report.ExitCode)
	default:
		report.Status = types.HookFailed
		report.Message = fmt.Sprintf("cannot run %s: %v", entrypoint, err)
		report.Err = errors.Wrap(err, errors.ErrHookFailed, report.Message).
			WithDetail("path", script)
	}
	return report
}
