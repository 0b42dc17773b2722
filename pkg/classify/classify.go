// Package classify decides whether a template file is text, and therefore
// subject to token substitution, or binary and copied verbatim.
package classify

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/lumina-project/pkg/logging"
)

// Kind is the classification of a file.
type Kind int

const (
	Binary Kind = iota
	Text
)

func (k Kind) String() string {
	if k == Text {
		return "text"
	}
	return "binary"
}

// DefaultTextExtensions is the allow-list used when configuration does not
// provide one.
var DefaultTextExtensions = []string{
	".h", ".hpp", ".hh", ".inl", ".c", ".cc", ".cpp", ".cxx",
	".py", ".lua", ".json", ".md", ".txt", ".ini", ".cfg", ".toml",
	".yaml", ".yml", ".xml", ".cmake", ".bat", ".cmd", ".sh", ".ps1",
	".gitignore", ".gitattributes", ".editorconfig", ".lproject",
}

// Classifier maps file extensions to a Kind. Anything not on its allow-list
// is Binary.
type Classifier struct {
	text map[string]bool
}

// New creates a classifier treating the given extensions as text. A missing
// leading dot is added and matching ignores case.
func New(extensions []string) *Classifier {
	c := &Classifier{text: make(map[string]bool, len(extensions))}
	for _, ext := range extensions {
		ext = normalizeExtension(ext)
		if ext == "" {
			continue
		}
		c.text[ext] = true
	}

	logger := logging.GetLogger("classify")
	logger.Trace().
		Int("extensions", len(c.text)).
		Msg("created classifier")
	return c
}

// Default returns a classifier over DefaultTextExtensions.
func Default() *Classifier {
	return New(DefaultTextExtensions)
}

func normalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" || ext == "." {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// Classify returns the Kind of path, judged on its extension only.
func (c *Classifier) Classify(path string) Kind {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != "" && c.text[ext] {
		return Text
	}
	return Binary
}

// Extensions returns the text extensions, sorted.
func (c *Classifier) Extensions() []string {
	out := make([]string, 0, len(c.text))
	for ext := range c.text {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}
