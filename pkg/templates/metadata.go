package templates

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/arthur-debert/lumina-project/pkg/errors"
	"github.com/arthur-debert/lumina-project/pkg/logging"
	"github.com/arthur-debert/lumina-project/pkg/types"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/muhammadmuzzammil1998/jsonc"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// DefaultMetadataFile is the metadata file looked up at a template root.
const DefaultMetadataFile = "template.json"

// NoDescription is used when a template has no usable description.
const NoDescription = "No description available"

//go:embed schema/template.schema.json
var schemaBytes []byte

var (
	compileOnce    sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

type metadataFile struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Exclude     []string `json:"exclude"`
}

func getSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaBytes))
		if err != nil {
			compileErr = fmt.Errorf("unmarshaling schema JSON: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource("template.schema.json", doc); err != nil {
			compileErr = fmt.Errorf("adding schema resource: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile("template.schema.json")
	})
	return compiledSchema, compileErr
}

// ParseMetadata decodes and validates metadata file content. Comments are
// allowed.
func ParseMetadata(data []byte) (types.Template, error) {
	clean := jsonc.ToJSON(data)

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(clean))
	if err != nil {
		return types.Template{}, errors.Wrap(err, errors.ErrConfigParse, "metadata is not valid JSON")
	}
	schema, err := getSchema()
	if err != nil {
		return types.Template{}, errors.Wrap(err, errors.ErrInternal, "cannot load metadata schema")
	}
	if err := schema.Validate(inst); err != nil {
		return types.Template{}, errors.Wrap(err, errors.ErrConfigParse, "metadata does not match schema")
	}

	var meta metadataFile
	if err := json.Unmarshal(clean, &meta); err != nil {
		return types.Template{}, errors.Wrap(err, errors.ErrConfigParse, "cannot decode metadata")
	}
	for _, pattern := range meta.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return types.Template{}, errors.Newf(errors.ErrConfigParse, "invalid exclude pattern %q", pattern).
				WithDetail("pattern", pattern)
		}
	}

	return types.Template{
		Title:       meta.Name,
		Description: meta.Description,
		Exclude:     meta.Exclude,
	}, nil
}

// ReadMetadata returns the descriptor of the template at templateRoot. The
// metadata file is optional; when it is absent or malformed the descriptor
// falls back to the directory name and NoDescription.
func ReadMetadata(fsys types.FS, templateRoot, file string) types.Template {
	logger := logging.GetLogger("templates.metadata")
	if file == "" {
		file = DefaultMetadataFile
	}

	name := filepath.Base(templateRoot)
	fallback := types.Template{Name: name, Path: templateRoot, Title: name, Description: NoDescription}

	path := filepath.Join(templateRoot, file)
	data, err := fsys.ReadFile(path)
	if err != nil {
		logger.Debug().Str("path", path).Err(err).Msg("No template metadata")
		return fallback
	}

	tmpl, err := ParseMetadata(data)
	if err != nil {
		logger.Warn().Str("path", path).Err(err).Msg("Ignoring malformed template metadata")
		return fallback
	}

	tmpl.Name = name
	tmpl.Path = templateRoot
	if tmpl.Title == "" {
		tmpl.Title = name
	}
	if tmpl.Description == "" {
		tmpl.Description = NoDescription
	}
	return tmpl
}
