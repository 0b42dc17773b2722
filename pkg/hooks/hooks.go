package hooks

import (
	"context"

	"github.com/arthur-debert/lumina-project/pkg/errors"
	"github.com/arthur-debert/lumina-project/pkg/logging"
	"github.com/arthur-debert/lumina-project/pkg/types"
	"github.com/rs/zerolog"
)

// Env is what a hook knows about the project it runs against.
type Env struct {
	ProjectName string
	ProjectDir  string
	EngineDir   string

	// FS is used by hooks that only touch files. Process hooks always work
	// on the real filesystem.
	FS types.FS
}

// Hook is a post-generation step.
type Hook interface {
	Name() string
	Run(ctx context.Context, env Env) types.HookReport
}

// Runner executes hooks sequentially.
type Runner struct {
	logger  zerolog.Logger
	onEvent types.EventHandler
}

// NewRunner creates a runner. onEvent may be nil.
func NewRunner(onEvent types.EventHandler) *Runner {
	return &Runner{
		logger:  logging.GetLogger("hooks"),
		onEvent: onEvent,
	}
}

// Run executes every hook once, in order, and returns their reports.
func (r *Runner) Run(ctx context.Context, env Env, hooks ...Hook) []types.HookReport {
	reports := make([]types.HookReport, 0, len(hooks))
	for _, h := range hooks {
		r.logger.Debug().Str("hook", h.Name()).Str("project", env.ProjectDir).Msg("Running hook")

		report := h.Run(ctx, env)
		if report.Hook == "" {
			report.Hook = h.Name()
		}
		r.log(report)
		if r.onEvent != nil {
			r.onEvent(reportEvent(report))
		}
		reports = append(reports, report)
	}
	return reports
}

func (r *Runner) log(report types.HookReport) {
	var ev *zerolog.Event
	if report.IsWarning() {
		ev = r.logger.Warn()
	} else {
		ev = r.logger.Info()
	}
	ev.Str("hook", report.Hook).
		Str("status", string(report.Status)).
		Int("exit_code", report.ExitCode).
		Dur("duration", report.Duration)
	if report.Err != nil {
		ev = ev.Err(report.Err)
	}
	if report.Stderr != "" {
		ev = ev.Str("stderr", report.Stderr)
	}
	ev.Msg(report.Message)
}

// reportEvent turns a report into the event that goes into the run's log.
func reportEvent(report types.HookReport) types.Event {
	e := types.Event{
		Kind:    types.EventHook,
		Outcome: types.OutcomeInfo,
		Source:  report.Hook,
		Message: report.Message,
	}
	if report.IsWarning() {
		e.Outcome = types.OutcomeWarning
	}
	if report.Err != nil {
		e.Code = string(errors.GetErrorCode(report.Err))
	}
	return e
}
