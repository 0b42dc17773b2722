package types

// Token is one binding of a token table.
type Token struct {
	Name  string `json:"name" validate:"required"`
	Value string `json:"value"`
}

// Request is a Generation Request: which template to instantiate, where, and
// with which tokens. It is built once by the presentation layer and consumed
// by the scaffold pipeline.
type Request struct {
	// ProjectName is the sanitized project name the standard tokens derive from.
	ProjectName string `json:"project_name" validate:"required,excludesall=/\\"`

	// Template is the template identity (directory name under the templates root).
	Template string `json:"template" validate:"required,excludesall=/\\"`

	// Destination is the project root to create. It must not exist.
	Destination string `json:"destination" validate:"required"`

	// Tokens are extra bindings appended after the standard project tokens.
	Tokens []Token `json:"tokens,omitempty" validate:"dive"`
}
