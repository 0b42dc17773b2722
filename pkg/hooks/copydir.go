package hooks

import (
	"context"
	stderrors "errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/arthur-debert/lumina-project/pkg/errors"
	"github.com/arthur-debert/lumina-project/pkg/filesystem"
	"github.com/arthur-debert/lumina-project/pkg/logging"
	"github.com/arthur-debert/lumina-project/pkg/types"
)

// DefaultToolsDir is the engine directory copied into every project.
const DefaultToolsDir = "Tools"

// CopyDirHook copies a directory verbatim into the project. Contents are not
// substituted.
type CopyDirHook struct {
	// Source is the directory to copy. Empty means <engine dir>/Tools.
	Source string

	// Target is the destination relative to the project root. Empty means
	// Tools.
	Target string

	// Overwrite replaces an existing target. Without it an existing target
	// is left alone and the hook reports a warning.
	Overwrite bool

	// Timeout bounds the copy. Zero means no limit beyond the caller's
	// context.
	Timeout time.Duration
}

// NewToolsHook returns the hook copying <engine dir>/Tools into the project.
func NewToolsHook(overwrite bool) *CopyDirHook {
	return &CopyDirHook{Overwrite: overwrite}
}

// Name implements Hook.
func (h *CopyDirHook) Name() string {
	return "tools"
}

// Run implements Hook.
func (h *CopyDirHook) Run(ctx context.Context, env Env) (report types.HookReport) {
	logger := logging.GetLogger("hooks.copydir")
	report = types.HookReport{Hook: h.Name()}
	if env.FS == nil {
		env.FS = filesystem.NewOS()
	}
	start := time.Now()
	defer func() { report.Duration = time.Since(start) }()

	source := h.Source
	if source == "" {
		if env.EngineDir == "" {
			report.Status = types.HookSkipped
			report.Message = "no engine directory configured, skipping tools copy"
			return report
		}
		source = filepath.Join(env.EngineDir, DefaultToolsDir)
	}
	target := h.Target
	if target == "" {
		target = DefaultToolsDir
	}
	target = filepath.Join(env.ProjectDir, target)
	report.Command = []string{"copy", source, target}

	info, err := env.FS.Stat(source)
	if err != nil || !info.IsDir() {
		report.Status = types.HookSkipped
		report.Message = fmt.Sprintf("%s not found, skipping", source)
		return report
	}

	if _, err := env.FS.Lstat(target); err == nil {
		if !h.Overwrite {
			report.Status = types.HookSkipped
			report.Message = fmt.Sprintf("%s already exists, not overwriting", target)
			report.Err = errors.New(errors.ErrDestinationExists, report.Message).
				WithDetail("path", target)
			return report
		}
		logger.Debug().Str("target", target).Msg("Removing existing target before copy")
		if err := env.FS.RemoveAll(target); err != nil {
			report.Status = types.HookFailed
			report.Message = fmt.Sprintf("cannot remove %s: %v", target, err)
			report.Err = errors.Wrap(err, errors.ErrHookFailed, report.Message).
				WithDetail("path", target)
			return report
		}
	}

	if h.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.Timeout)
		defer cancel()
	}

	files, err := copyTree(ctx, env.FS, source, target)
	switch {
	case err == nil:
		report.Status = types.HookSucceeded
		report.Message = fmt.Sprintf("copied %d files from %s", files, source)
	case stderrors.Is(err, context.DeadlineExceeded):
		report.Status = types.HookTimedOut
		report.Message = fmt.Sprintf("copying %s did not finish in time", source)
		report.Err = errors.Wrap(err, errors.ErrHookTimeout, report.Message).
			WithDetail("path", source)
	default:
		report.Status = types.HookFailed
		report.Message = fmt.Sprintf("cannot copy %s: %v", source, err)
		report.Err = errors.Wrap(err, errors.ErrHookFailed, report.Message).
			WithDetail("path", source)
	}
	return report
}

// copyTree copies src to dst, keeping file modes, and returns the number of
// files written.
func copyTree(ctx context.Context, fsys types.FS, src, dst string) (int, error) {
	info, err := fsys.Stat(src)
	if err != nil {
		return 0, err
	}
	if err := fsys.MkdirAll(dst, info.Mode().Perm()|0700); err != nil {
		return 0, fmt.Errorf("create %s: %w", dst, err)
	}

	entries, err := fsys.ReadDir(src)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", src, err)
	}

	files := 0
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return files, err
		}
		from := filepath.Join(src, entry.Name())
		to := filepath.Join(dst, entry.Name())

		info, err := fsys.Stat(from)
		if err != nil {
			return files, fmt.Errorf("stat %s: %w", from, err)
		}
		if info.IsDir() {
			n, err := copyTree(ctx, fsys, from, to)
			files += n
			if err != nil {
				return files, err
			}
			continue
		}

		data, err := fsys.ReadFile(from)
		if err != nil {
			return files, fmt.Errorf("read %s: %w", from, err)
		}
		if err := fsys.WriteFile(to, data, info.Mode().Perm()); err != nil {
			return files, fmt.Errorf("write %s: %w", to, err)
		}
		if err := fsys.Chmod(to, info.Mode().Perm()); err != nil {
			return files, fmt.Errorf("chmod %s: %w", to, err)
		}
		files++
	}
	return files, nil
}

