package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/arthur-debert/lumina-project/pkg/errors"
	"github.com/arthur-debert/lumina-project/pkg/logging"
	"github.com/arthur-debert/lumina-project/pkg/paths"
	"github.com/arthur-debert/lumina-project/pkg/types"
	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	gotoml "github.com/pelletier/go-toml/v2"
)

//go:embed embedded/defaults.toml
var defaultConfig []byte

// EnvPrefix prefixes every configuration environment variable.
const EnvPrefix = "LUMINA_PROJECT_"

// tokensKey is the table whose keys are token names.
const tokensKey = "tokens"

// Config is the effective configuration.
type Config struct {
	EngineDir   string            `koanf:"engine_dir"`
	Templates   Templates         `koanf:"templates"`
	Classify    Classify          `koanf:"classify"`
	Instantiate Instantiate       `koanf:"instantiate"`
	Hooks       Hooks             `koanf:"hooks"`
	Output      Output            `koanf:"output"`
	Tokens      map[string]string `koanf:"tokens"`

	raw map[string]interface{}
}

type Templates struct {
	Root         string   `koanf:"root"`
	MetadataFile string   `koanf:"metadata_file" validate:"required,excludesall=/\\"`
	Ignore       []string `koanf:"ignore"`
}

type Classify struct {
	TextExtensions []string `koanf:"text_extensions"`
}

type Instantiate struct {
	Atomic bool `koanf:"atomic"`
}

type Hooks struct {
	Enabled  bool         `koanf:"enabled"`
	Tools    ToolsHook    `koanf:"tools"`
	Generate GenerateHook `koanf:"generate"`
}

type ToolsHook struct {
	Enabled   bool          `koanf:"enabled"`
	Source    string        `koanf:"source"`
	Overwrite bool          `koanf:"overwrite"`
	Timeout   time.Duration `koanf:"timeout" validate:"gte=0"`
}

type GenerateHook struct {
	Enabled     bool          `koanf:"enabled"`
	Entrypoint  string        `koanf:"entrypoint" validate:"required"`
	Interpreter string        `koanf:"interpreter"`
	Timeout     time.Duration `koanf:"timeout" validate:"gte=0"`
}

type Output struct {
	Format string `koanf:"format" validate:"oneof=auto term text json"`
	Tree   bool   `koanf:"tree"`
}

// LoadOptions select the optional layers.
type LoadOptions struct {
	// UserFile replaces the XDG user config file. Missing files are skipped.
	UserFile string

	// WorkDir is searched for .lumina-project.toml. Empty means the current
	// directory.
	WorkDir string

	// Overrides are applied last; keys use "." between sections.
	Overrides map[string]interface{}
}

// Load builds the effective configuration.
func Load(opts LoadOptions) (*Config, error) {
	logger := logging.GetLogger("config")
	k := koanf.New(".")

	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to load defaults")
	}

	userFile := opts.UserFile
	if userFile == "" {
		userFile = filepath.Join(paths.ConfigDir(), paths.ConfigFileName)
	}
	workDir := opts.WorkDir
	if workDir == "" {
		workDir = "."
	}
	for _, path := range []string{userFile, filepath.Join(workDir, paths.LocalConfigFile)} {
		if err := loadFile(k, path); err != nil {
			return nil, err
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey(k)), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment")
	}

	if dir := os.Getenv(paths.EnvEngineDir); dir != "" {
		if err := k.Set("engine_dir", dir); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to apply "+paths.EnvEngineDir)
		}
	}

	if len(opts.Overrides) > 0 {
		if err := k.Load(confmap.Provider(opts.Overrides, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to apply overrides")
		}
	}

	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal configuration")
	}
	cfg.raw = k.Raw()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Debug().
		Str("engine_dir", cfg.EngineDir).
		Str("templates_root", cfg.Templates.Root).
		Msg("Configuration loaded")
	return &cfg, nil
}

func loadFile(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
		return errors.Wrapf(err, errors.ErrConfigParse, "failed to load config from %s", path).
			WithDetail("path", path)
	}
	logger := logging.GetLogger("config")
	logger.Debug().Str("path", path).Msg("Loaded config file")
	return nil
}

// envKey maps LUMINA_PROJECT_HOOKS__GENERATE__TIMEOUT to
// hooks.generate.timeout. Single underscores stay part of the key. Token
// names keep their case: LUMINA_PROJECT_TOKENS__COMPANY binds COMPANY.
// Variables outside the known top-level keys, such as the
// LUMINA_PROJECT_NAME handed to hook scripts, are ignored.
func envKey(k *koanf.Koanf) func(string) string {
	return func(s string) string {
		top, rest, nested := strings.Cut(strings.TrimPrefix(s, EnvPrefix), "__")
		top = strings.ToLower(top)
		if !k.Exists(top) {
			return ""
		}
		if !nested {
			return top
		}
		if top == tokensKey {
			return top + "." + rest
		}
		return top + "." + strings.ReplaceAll(strings.ToLower(rest), "__", ".")
	}
}

// Validate checks value constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(err, errors.ErrConfigParse, "invalid configuration")
	}
	return nil
}

// Paths resolves the configured directories.
func (c *Config) Paths() (paths.Paths, error) {
	return paths.New(c.EngineDir, c.Templates.Root, c.Hooks.Tools.Source)
}

// ExtraTokens returns the [tokens] table as bindings, sorted by name.
func (c *Config) ExtraTokens() []types.Token {
	names := make([]string, 0, len(c.Tokens))
	for name := range c.Tokens {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]types.Token, 0, len(names))
	for _, name := range names {
		out = append(out, types.Token{Name: name, Value: c.Tokens[name]})
	}
	return out
}

// TOML renders the effective configuration.
func (c *Config) TOML() ([]byte, error) {
	data, err := gotoml.Marshal(c.raw)
	if err != nil {
		return nil, fmt.Errorf("marshal configuration: %w", err)
	}
	return data, nil
}

// Write stores the effective configuration at path. An existing file is
// never replaced.
func (c *Config) Write(path string) error {
	if _, err := os.Stat(path); err == nil {
		return errors.New(errors.ErrDestinationExists, "config file already exists").
			WithDetail("path", path)
	}
	data, err := c.TOML()
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "cannot render configuration")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, errors.ErrIOFailure, "cannot create config directory").
			WithDetail("path", filepath.Dir(path))
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(err, errors.ErrIOFailure, "cannot write config file").
			WithDetail("path", path)
	}
	return nil
}

// DefaultsContent returns the embedded default configuration.
func DefaultsContent() string {
	return string(defaultConfig)
}
