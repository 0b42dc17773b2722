package templates

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/arthur-debert/lumina-project/pkg/errors"
	"github.com/arthur-debert/lumina-project/pkg/logging"
	"github.com/arthur-debert/lumina-project/pkg/types"
	"github.com/bmatcuk/doublestar/v4"
)

// Options tune a Registry.
type Options struct {
	// MetadataFile is the per-template metadata file name.
	MetadataFile string

	// Ignore lists doublestar patterns matched against directory names under
	// the root; matching directories are not templates.
	Ignore []string
}

// Registry discovers templates under a root directory. The listing is read
// once and cached for the registry's lifetime.
type Registry struct {
	fs           types.FS
	root         string
	metadataFile string
	ignore       []string

	mu     sync.Mutex
	names  []string
	listed bool
}

// NewRegistry creates a registry over root.
func NewRegistry(fsys types.FS, root string, opts Options) *Registry {
	metadataFile := opts.MetadataFile
	if metadataFile == "" {
		metadataFile = DefaultMetadataFile
	}
	return &Registry{
		fs:           fsys,
		root:         root,
		metadataFile: metadataFile,
		ignore:       opts.Ignore,
	}
}

// Root returns the templates root.
func (r *Registry) Root() string {
	return r.root
}

// MetadataFile returns the metadata file name templates are read with.
func (r *Registry) MetadataFile() string {
	return r.metadataFile
}

// List returns the names of all templates, sorted. An existing root without
// templates yields an empty slice.
func (r *Registry) List() ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.listed {
		return cloneNames(r.names), nil
	}

	names, err := r.scan()
	if err != nil {
		return nil, err
	}
	r.names = names
	r.listed = true
	return cloneNames(names), nil
}

// cloneNames copies names so callers cannot mutate the cache. The copy is
// never nil.
func cloneNames(names []string) []string {
	out := make([]string, len(names))
	copy(out, names)
	return out
}

func (r *Registry) scan() ([]string, error) {
	logger := logging.GetLogger("templates.registry")
	logger.Trace().Str("root", r.root).Msg("Scanning templates root")

	info, err := r.fs.Stat(r.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(err, errors.ErrNotFound, "templates root does not exist").
				WithDetail("path", r.root)
		}
		return nil, errors.Wrap(err, errors.ErrIOFailure, "cannot access templates root").
			WithDetail("path", r.root)
	}
	if !info.IsDir() {
		return nil, errors.New(errors.ErrNotFound, "templates root is not a directory").
			WithDetail("path", r.root)
	}

	entries, err := r.fs.ReadDir(r.root)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrIOFailure, "cannot read templates root").
			WithDetail("path", r.root)
	}

	names := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if !r.isDir(entry) {
			continue
		}
		if r.ignored(name) {
			logger.Trace().Str("name", name).Msg("Skipping ignored template directory")
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	logger.Debug().Int("count", len(names)).Msg("Found templates")
	return names, nil
}

// isDir follows symlinks so a linked template directory still counts.
func (r *Registry) isDir(entry fs.DirEntry) bool {
	if entry.IsDir() {
		return true
	}
	if entry.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := r.fs.Stat(filepath.Join(r.root, entry.Name()))
	return err == nil && info.IsDir()
}

func (r *Registry) ignored(name string) bool {
	for _, pattern := range r.ignore {
		if ok, _ := doublestar.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

// Resolve returns the root directory of the named template.
func (r *Registry) Resolve(name string) (string, error) {
	name = strings.TrimRight(name, `/\`)
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) || r.ignored(name) {
		return "", errors.Newf(errors.ErrTemplateNotFound, "template %q not found", name).
			WithDetail("template", name)
	}

	path := filepath.Join(r.root, name)
	info, err := r.fs.Stat(path)
	if err != nil || !info.IsDir() {
		notFound := errors.Newf(errors.ErrTemplateNotFound, "template %q not found", name).
			WithDetail("template", name).
			WithDetail("path", path)
		if err != nil && !os.IsNotExist(err) {
			notFound.Wrapped = err
		}
		return "", notFound
	}
	return path, nil
}

// Describe resolves name and reads its metadata.
func (r *Registry) Describe(name string) (types.Template, error) {
	path, err := r.Resolve(name)
	if err != nil {
		return types.Template{}, err
	}
	return ReadMetadata(r.fs, path, r.metadataFile), nil
}

// Templates returns a descriptor for every listed template.
func (r *Registry) Templates() ([]types.Template, error) {
	names, err := r.List()
	if err != nil {
		return nil, err
	}
	out := make([]types.Template, 0, len(names))
	for _, name := range names {
		out = append(out, ReadMetadata(r.fs, filepath.Join(r.root, name), r.metadataFile))
	}
	return out, nil
}

// Readme returns the content of the template's README.md, or "" when it has
// none.
func (r *Registry) Readme(name string) (string, error) {
	path, err := r.Resolve(name)
	if err != nil {
		return "", err
	}
	data, err := r.fs.ReadFile(filepath.Join(path, "README.md"))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", errors.Wrap(err, errors.ErrIOFailure, "cannot read template readme").
			WithDetail("path", filepath.Join(path, "README.md"))
	}
	return string(data), nil
}
