package instantiate

import (
	"context"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/arthur-debert/lumina-project/pkg/classify"
	"github.com/arthur-debert/lumina-project/pkg/errors"
	"github.com/arthur-debert/lumina-project/pkg/logging"
	"github.com/arthur-debert/lumina-project/pkg/tokens"
	"github.com/arthur-debert/lumina-project/pkg/types"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultMetadataFile is skipped at the template root.
const DefaultMetadataFile = "template.json"

// Options control a single instantiation.
type Options struct {
	// MetadataFile is skipped when found at the template root. Files of the
	// same name deeper in the tree are copied.
	MetadataFile string

	// Exclude holds doublestar patterns matched against slash-separated paths
	// relative to the template root. A matching directory is skipped with
	// everything below it.
	Exclude []string

	// Stage builds the tree in a sibling staging directory and renames it
	// into place on success.
	Stage bool

	// OnEvent, when set, receives every event as it is recorded.
	OnEvent types.EventHandler
}

// Result summarizes an instantiation.
type Result struct {
	Destination string        `json:"destination"`
	Directories int           `json:"directories"`
	TextFiles   int           `json:"text_files"`
	BinaryFiles int           `json:"binary_files"`
	Fallbacks   int           `json:"fallbacks"`
	Excluded    int           `json:"excluded"`
	Events      []types.Event `json:"events"`
}

// Warnings returns the events that record recoverable problems.
func (r *Result) Warnings() []types.Event {
	var out []types.Event
	for _, e := range r.Events {
		if e.IsWarning() {
			out = append(out, e)
		}
	}
	return out
}

// Instantiator copies template trees.
type Instantiator struct {
	fs         types.FS
	classifier *classify.Classifier
}

// New creates an Instantiator. A nil classifier means classify.Default().
func New(fsys types.FS, classifier *classify.Classifier) *Instantiator {
	if classifier == nil {
		classifier = classify.Default()
	}
	return &Instantiator{fs: fsys, classifier: classifier}
}

// run carries the state of one Instantiate call.
type run struct {
	*Instantiator
	ctx      context.Context
	table    *tokens.Table
	opts     Options
	result   *Result
	logger   zerolog.Logger
	workRoot string
}

// Instantiate copies the tree at templateRoot to destination, applying table
// to every path segment and to the content of text files.
//
// The returned Result is non-nil whenever the destination was claimed, also
// on error, so callers can report what was written before the failure.
func (in *Instantiator) Instantiate(ctx context.Context, templateRoot, destination string, table *tokens.Table, opts Options) (*Result, error) {
	logger := logging.GetLogger("instantiate").With().
		Str("template", templateRoot).
		Str("destination", destination).
		Logger()
	done := logging.LogOperationStart(logger, "instantiate")
	defer done()

	if opts.MetadataFile == "" {
		opts.MetadataFile = DefaultMetadataFile
	}
	for _, pattern := range opts.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, errors.Newf(errors.ErrInvalidInput, "invalid exclude pattern %q", pattern).
				WithDetail("pattern", pattern)
		}
	}

	info, err := in.fs.Stat(templateRoot)
	if err != nil || !info.IsDir() {
		notFound := errors.Newf(errors.ErrTemplateNotFound, "template directory %s not found", templateRoot).
			WithDetail("path", templateRoot)
		notFound.Wrapped = err
		return nil, notFound
	}

	if err := in.checkAbsent(destination); err != nil {
		return nil, err
	}

	parent := filepath.Dir(destination)
	if err := in.fs.MkdirAll(parent, 0755); err != nil {
		return nil, errors.Wrap(err, errors.ErrIOFailure, "cannot create destination parent").
			WithDetail("path", parent)
	}

	workRoot := destination
	if opts.Stage {
		workRoot = filepath.Join(parent, "."+filepath.Base(destination)+".staging-"+uuid.NewString())
	}

	if err := in.fs.Mkdir(workRoot, dirMode(info.Mode())); err != nil {
		if os.IsExist(err) {
			return nil, errors.Wrap(err, errors.ErrDestinationExists, "destination already exists").
				WithDetail("path", destination)
		}
		return nil, errors.Wrap(err, errors.ErrIOFailure, "cannot create destination").
			WithDetail("path", workRoot)
	}

	r := &run{
		Instantiator: in,
		ctx:          ctx,
		table:        table,
		opts:         opts,
		result:       &Result{Destination: destination},
		logger:       logger,
		workRoot:     workRoot,
	}
	r.result.Directories++
	r.emit(types.Event{Kind: types.EventDirectory, Outcome: types.OutcomeCreated, Source: ".", Target: destination})

	if err := r.walk(templateRoot, workRoot, "", []fs.FileInfo{info}); err != nil {
		if opts.Stage {
			r.discardStaging()
		}
		return r.result, err
	}

	if opts.Stage {
		if err := r.commit(destination); err != nil {
			r.discardStaging()
			return r.result, err
		}
	}

	logger.Info().
		Int("directories", r.result.Directories).
		Int("text", r.result.TextFiles).
		Int("binary", r.result.BinaryFiles).
		Int("fallbacks", r.result.Fallbacks).
		Msg("Template instantiated")
	return r.result, nil
}

func (in *Instantiator) checkAbsent(destination string) error {
	_, err := in.fs.Lstat(destination)
	if err == nil {
		return errors.New(errors.ErrDestinationExists, "destination already exists").
			WithDetail("path", destination)
	}
	if !os.IsNotExist(err) {
		return errors.Wrap(err, errors.ErrIOFailure, "cannot access destination").
			WithDetail("path", destination)
	}
	return nil
}

func (r *run) commit(destination string) error {
	if err := r.checkAbsent(destination); err != nil {
		return err
	}
	if err := r.fs.Rename(r.workRoot, destination); err != nil {
		if os.IsExist(err) {
			return errors.Wrap(err, errors.ErrDestinationExists, "destination appeared while staging").
				WithDetail("path", destination)
		}
		return errors.Wrap(err, errors.ErrIOFailure, "cannot move staged project into place").
			WithDetail("path", destination)
	}
	r.logger.Debug().Str("staging", r.workRoot).Msg("Staged project moved into place")
	return nil
}

func (r *run) discardStaging() {
	if err := r.fs.RemoveAll(r.workRoot); err != nil {
		r.logger.Warn().Err(err).Str("staging", r.workRoot).Msg("Cannot remove staging directory")
	}
}

func (r *run) emit(e types.Event) {
	e.Seq = len(r.result.Events) + 1
	r.result.Events = append(r.result.Events, e)
	if r.opts.OnEvent != nil {
		r.opts.OnEvent(e)
	}
}

// target maps a path under the working root to the path it will have under
// the destination.
func (r *run) target(workPath string) string {
	rel, err := filepath.Rel(r.workRoot, workPath)
	if err != nil {
		return workPath
	}
	return filepath.Join(r.result.Destination, rel)
}

func (r *run) excluded(rel string) bool {
	return excluded(rel, r.opts)
}

func excluded(rel string, opts Options) bool {
	if path.Dir(rel) == "." && path.Base(rel) == opts.MetadataFile {
		return true
	}
	for _, pattern := range opts.Exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// walk copies srcDir into dstDir. ancestors holds the directories on the
// path from the template root down to srcDir.
func (r *run) walk(srcDir, dstDir, rel string, ancestors []fs.FileInfo) error {
	entries, err := r.fs.ReadDir(srcDir)
	if err != nil {
		return errors.Wrap(err, errors.ErrIOFailure, "cannot read template directory").
			WithDetail("path", srcDir)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		if err := r.ctx.Err(); err != nil {
			return errors.Wrap(err, errors.ErrCancelled, "instantiation cancelled")
		}

		name := entry.Name()
		childRel := path.Join(rel, name)
		src := filepath.Join(srcDir, name)

		if r.excluded(childRel) {
			r.result.Excluded++
			r.emit(types.Event{Kind: types.EventSkipped, Outcome: types.OutcomeExcluded, Source: childRel})
			continue
		}

		targetName, err := r.table.SubstituteSegment(name)
		if err != nil {
			return errors.Wrapf(err, errors.ErrInvalidInput, "cannot rewrite %s", childRel).
				WithDetail("path", childRel)
		}
		dst := filepath.Join(dstDir, targetName)

		// Stat follows symlinks: a linked file or directory is materialized.
		info, err := r.fs.Stat(src)
		if err != nil {
			return errors.Wrap(err, errors.ErrIOFailure, "cannot stat template entry").
				WithDetail("path", src)
		}

		if info.IsDir() {
			if revisits(ancestors, info) {
				return errors.Newf(errors.ErrIOFailure, "%s links back to a directory containing it", childRel).
					WithDetail("path", src)
			}
			if err := r.fs.Mkdir(dst, dirMode(info.Mode())); err != nil {
				return errors.Wrap(err, errors.ErrIOFailure, "cannot create directory").
					WithDetail("path", r.target(dst))
			}
			r.result.Directories++
			r.emit(types.Event{Kind: types.EventDirectory, Outcome: types.OutcomeCreated, Source: childRel, Target: r.target(dst)})
			if err := r.walk(src, dst, childRel, append(ancestors, info)); err != nil {
				return err
			}
			continue
		}

		if err := r.file(src, dst, childRel, info.Mode()); err != nil {
			return err
		}
	}
	return nil
}

func (r *run) file(src, dst, rel string, mode fs.FileMode) error {
	// Two template entries rewriting to the same name must not silently
	// replace one another.
	if _, err := r.fs.Lstat(dst); err == nil {
		return errors.Newf(errors.ErrIOFailure, "%s rewrites to an already written path", rel).
			WithDetail("path", r.target(dst))
	}

	data, err := r.fs.ReadFile(src)
	if err != nil {
		return errors.Wrap(err, errors.ErrIOFailure, "cannot read template file").
			WithDetail("path", src)
	}

	event := types.Event{Source: rel, Target: r.target(dst)}
	out := data

	if r.classifier.Classify(rel) == classify.Text {
		text, enc, decodeErr := classify.Decode(data)
		if decodeErr == nil {
			out, err = classify.Encode(r.table.Substitute(text), enc)
			if err != nil {
				return errors.Wrap(err, errors.ErrIOFailure, "cannot encode file").
					WithDetail("path", r.target(dst))
			}
			event.Kind, event.Outcome = types.EventText, types.OutcomeWritten
		} else {
			event.Kind, event.Outcome = types.EventWarning, types.OutcomeFallback
			event.Code = string(errors.ErrDecodeFailure)
			event.Message = "copied verbatim: " + decodeErr.Error()
			r.logger.Warn().Str("path", rel).Err(decodeErr).Msg("Text file does not decode, copying verbatim")
		}
	} else {
		event.Kind, event.Outcome = types.EventBinary, types.OutcomeCopied
	}

	if err := r.fs.WriteFile(dst, out, mode.Perm()); err != nil {
		return errors.Wrap(err, errors.ErrIOFailure, "cannot write file").
			WithDetail("path", r.target(dst))
	}
	// WriteFile is subject to the umask.
	if err := r.fs.Chmod(dst, mode.Perm()); err != nil {
		return errors.Wrap(err, errors.ErrIOFailure, "cannot set file mode").
			WithDetail("path", r.target(dst))
	}

	switch event.Outcome {
	case types.OutcomeWritten:
		r.result.TextFiles++
	case types.OutcomeFallback:
		r.result.Fallbacks++
	default:
		r.result.BinaryFiles++
	}
	r.logger.Debug().Str("source", rel).Str("outcome", string(event.Outcome)).Msg("File instantiated")
	r.emit(event)
	return nil
}

// Count returns the number of events instantiating templateRoot with opts
// will record, hooks aside. It lets callers report progress as a percentage.
func (in *Instantiator) Count(templateRoot string, opts Options) (int, error) {
	if opts.MetadataFile == "" {
		opts.MetadataFile = DefaultMetadataFile
	}
	root, err := in.fs.Stat(templateRoot)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrTemplateNotFound, "template directory not found").
			WithDetail("path", templateRoot)
	}
	var count func(dir, rel string, ancestors []fs.FileInfo) (int, error)
	count = func(dir, rel string, ancestors []fs.FileInfo) (int, error) {
		entries, err := in.fs.ReadDir(dir)
		if err != nil {
			return 0, errors.Wrap(err, errors.ErrIOFailure, "cannot read template directory").
				WithDetail("path", dir)
		}
		n := 0
		for _, entry := range entries {
			childRel := path.Join(rel, entry.Name())
			n++
			if excluded(childRel, opts) {
				continue
			}
			src := filepath.Join(dir, entry.Name())
			info, err := in.fs.Stat(src)
			if err != nil || !info.IsDir() {
				continue
			}
			if revisits(ancestors, info) {
				return 0, errors.Newf(errors.ErrIOFailure, "%s links back to a directory containing it", childRel).
					WithDetail("path", src)
			}
			sub, err := count(src, childRel, append(ancestors, info))
			if err != nil {
				return 0, err
			}
			n += sub
		}
		return n, nil
	}
	n, err := count(templateRoot, "", []fs.FileInfo{root})
	if err != nil {
		return 0, err
	}
	return n + 1, nil
}

// revisits reports whether dir is one of ancestors, as happens when a
// symlink points back up the tree.
func revisits(ancestors []fs.FileInfo, dir fs.FileInfo) bool {
	for _, a := range ancestors {
		if os.SameFile(a, dir) {
			return true
		}
	}
	return false
}

// dirMode keeps the source permissions but always lets the owner fill the
// directory.
func dirMode(mode fs.FileMode) fs.FileMode {
	return mode.Perm() | 0700
}
