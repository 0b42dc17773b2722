package display

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/lumina-project/pkg/types"
	"github.com/ddddddO/gtree"
)

// Tree renders the entries events created under destination as a tree
// rooted at label. Events are expected in walk order, parents first.
func Tree(label, destination string, events []types.Event) (string, error) {
	root := gtree.NewRoot(label)
	dirs := map[string]*gtree.Node{".": root}

	for _, e := range events {
		if e.Target == "" {
			continue
		}
		switch e.Kind {
		case types.EventDirectory, types.EventText, types.EventBinary, types.EventWarning:
		default:
			continue
		}
		rel, err := filepath.Rel(destination, e.Target)
		if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
			continue
		}
		rel = filepath.ToSlash(rel)

		parent, ok := dirs[dirOf(rel)]
		if !ok {
			continue
		}
		node := parent.Add(baseOf(rel))
		if e.Kind == types.EventDirectory {
			dirs[rel] = node
		}
	}

	var buf bytes.Buffer
	if err := gtree.OutputProgrammably(&buf, root); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func dirOf(rel string) string {
	if i := strings.LastIndex(rel, "/"); i >= 0 {
		return rel[:i]
	}
	return "."
}

func baseOf(rel string) string {
	return rel[strings.LastIndex(rel, "/")+1:]
}
