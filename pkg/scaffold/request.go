package scaffold

import (
	"path/filepath"

	"github.com/arthur-debert/lumina-project/pkg/errors"
	"github.com/arthur-debert/lumina-project/pkg/tokens"
	"github.com/arthur-debert/lumina-project/pkg/types"
)

// DefaultTemplate is used when no template is named.
const DefaultTemplate = "Blank"

// NewRequest builds a request from user input. The name is sanitized, the
// project is placed in parentDir (the current directory when empty) and
// assignments are KEY=VALUE token bindings.
func NewRequest(name, template, parentDir string, assignments []string) (types.Request, error) {
	name = tokens.SanitizeName(name)
	if name == "" {
		return types.Request{}, errors.New(errors.ErrInvalidInput, "project name is empty")
	}
	if template == "" {
		template = DefaultTemplate
	}
	if parentDir == "" {
		parentDir = "."
	}

	req := types.Request{
		ProjectName: name,
		Template:    template,
		Destination: filepath.Join(parentDir, name),
	}
	for _, a := range assignments {
		tok, err := tokens.ParseAssignment(a)
		if err != nil {
			return types.Request{}, err
		}
		req.Tokens = append(req.Tokens, tok)
	}
	return req, nil
}
