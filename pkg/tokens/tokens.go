package tokens

import (
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/arthur-debert/lumina-project/pkg/errors"
	"github.com/arthur-debert/lumina-project/pkg/types"
	"github.com/iancoleman/strcase"
)

// Standard token names bound by ProjectTable.
const (
	ProjectName      = "PROJECT_NAME"
	ProjectNameUpper = "PROJECT_NAME_UPPER"
	ProjectNameLower = "PROJECT_NAME_LOWER"
	ProjectNameSnake = "PROJECT_NAME_SNAKE"
	ProjectNameKebab = "PROJECT_NAME_KEBAB"
)

var validName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Table is an ordered set of token bindings. The zero value is an empty
// table ready for use.
type Table struct {
	bindings []types.Token
	index    map[string]int
	replacer *strings.Replacer
}

// New builds a table from bindings in declaration order.
func New(bindings ...types.Token) (*Table, error) {
	t := &Table{}
	for _, b := range bindings {
		if err := t.Add(b.Name, b.Value); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// ProjectTable returns the standard table for a project name: the name as
// given plus upper, lower, snake and kebab case variants.
func ProjectTable(name string) *Table {
	t := &Table{}
	// Names are constants and unique, Add cannot fail here.
	_ = t.Add(ProjectName, name)
	_ = t.Add(ProjectNameUpper, strings.ToUpper(name))
	_ = t.Add(ProjectNameLower, strings.ToLower(name))
	_ = t.Add(ProjectNameSnake, strcase.ToSnake(name))
	_ = t.Add(ProjectNameKebab, strcase.ToKebab(name))
	return t
}

// Add appends a binding. Names must be identifiers and unique within the table.
func (t *Table) Add(name, value string) error {
	if !validName.MatchString(name) {
		return errors.Newf(errors.ErrInvalidInput, "invalid token name %q", name).
			WithDetail("token", name)
	}
	if _, exists := t.index[name]; exists {
		return errors.Newf(errors.ErrInvalidInput, "token %q bound twice", name).
			WithDetail("token", name)
	}
	if t.index == nil {
		t.index = make(map[string]int)
	}
	t.index[name] = len(t.bindings)
	t.bindings = append(t.bindings, types.Token{Name: name, Value: value})
	t.replacer = t.buildReplacer()
	return nil
}

// Value returns the value bound to name.
func (t *Table) Value(name string) (string, bool) {
	i, ok := t.index[name]
	if !ok {
		return "", false
	}
	return t.bindings[i].Value, true
}

// Len returns the number of bindings.
func (t *Table) Len() int {
	return len(t.bindings)
}

// Bindings returns a copy of the bindings in declaration order.
func (t *Table) Bindings() []types.Token {
	out := make([]types.Token, len(t.bindings))
	copy(out, t.bindings)
	return out
}

type spelling struct {
	text  string
	value string
	order int
}

// spellings lists every recognised spelling in resolution order.
func (t *Table) spellings() []spelling {
	out := make([]spelling, 0, 2*len(t.bindings))
	for i, b := range t.bindings {
		out = append(out,
			spelling{text: "${" + b.Name + "}", value: b.Value, order: 2 * i},
			spelling{text: "$" + b.Name, value: b.Value, order: 2*i + 1},
		)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if len(out[i].text) != len(out[j].text) {
			return len(out[i].text) > len(out[j].text)
		}
		return out[i].order < out[j].order
	})
	return out
}

// Spellings returns the recognised token spellings in resolution order.
func (t *Table) Spellings() []string {
	sp := t.spellings()
	out := make([]string, len(sp))
	for i, s := range sp {
		out[i] = s.text
	}
	return out
}

// buildReplacer is called on every Add so that Substitute never mutates the
// table and is safe for concurrent use.
func (t *Table) buildReplacer() *strings.Replacer {
	sp := t.spellings()
	oldnew := make([]string, 0, 2*len(sp))
	for _, s := range sp {
		oldnew = append(oldnew, s.text, s.value)
	}
	return strings.NewReplacer(oldnew...)
}

// Substitute replaces every token spelling in input with its bound value.
func (t *Table) Substitute(input string) string {
	if t == nil || len(t.bindings) == 0 {
		return input
	}
	return t.replacer.Replace(input)
}

// Substitute applies table to input. It is the package-level form of
// Table.Substitute.
func Substitute(table *Table, input string) string {
	return table.Substitute(input)
}

// Contains reports whether s holds any recognised token spelling.
func (t *Table) Contains(s string) bool {
	if t == nil {
		return false
	}
	for _, b := range t.bindings {
		if strings.Contains(s, "$"+b.Name) || strings.Contains(s, "${"+b.Name+"}") {
			return true
		}
	}
	return false
}

// SubstituteSegment rewrites a single path segment. The result must still be
// a single, non-empty segment.
func (t *Table) SubstituteSegment(segment string) (string, error) {
	out := t.Substitute(segment)
	if out == "" || out == "." || out == ".." || strings.ContainsAny(out, `/\`) {
		return "", errors.Newf(errors.ErrInvalidInput,
			"path segment %q substitutes to invalid name %q", segment, out).
			WithDetail("path", segment)
	}
	return out, nil
}

// SubstitutePath rewrites every segment of a relative path.
func (t *Table) SubstitutePath(rel string) (string, error) {
	if rel == "" || rel == "." {
		return rel, nil
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	for i, part := range parts {
		out, err := t.SubstituteSegment(part)
		if err != nil {
			return "", errors.Wrapf(err, errors.ErrInvalidInput, "cannot rewrite %s", rel).
				WithDetail("path", rel)
		}
		parts[i] = out
	}
	return filepath.Join(parts...), nil
}

// ParseAssignment parses a KEY=VALUE token binding as given on the command line.
func ParseAssignment(s string) (types.Token, error) {
	name, value, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || !validName.MatchString(name) {
		return types.Token{}, errors.Newf(errors.ErrInvalidInput,
			"invalid token assignment %q, expected NAME=VALUE", s)
	}
	return types.Token{Name: name, Value: value}, nil
}

// SanitizeName turns user input into a project name: surrounding space is
// trimmed and inner spaces become underscores.
func SanitizeName(name string) string {
	return strings.ReplaceAll(strings.TrimSpace(name), " ", "_")
}
