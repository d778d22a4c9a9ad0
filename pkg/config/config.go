package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ErrInvalid marks configuration problems (bad file, bad values). The CLI
// maps it to exitcode.ConfigError.
var ErrInvalid = errors.New("invalid configuration")

// EnvPrefix is the prefix for environment overrides, e.g. MMDGUARD_FAIL_FAST.
const EnvPrefix = "MMDGUARD"

// ProjectFiles are the config file names looked up in the root directory, in order.
var ProjectFiles = []string{".mmdguard.yaml", ".mmdguard.yml", "mmdguard.yaml"}

// Extraction modes.
const (
	ExtractorRegex      = "regex"
	ExtractorCommonMark = "commonmark"
)

// Report formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Config holds all configuration for a validation run
type Config struct {
	Target       string         `mapstructure:"target"`
	Extractor    string         `mapstructure:"extractor"`
	Exclude      []string       `mapstructure:"exclude"`
	Gitignore    bool           `mapstructure:"gitignore"`
	FailFast     bool           `mapstructure:"fail_fast"`
	KeepScratch  bool           `mapstructure:"keep_scratch"`
	VerifyOutput bool           `mapstructure:"verify_output"`
	ScratchDir   string         `mapstructure:"scratch_dir"`
	Format       string         `mapstructure:"format"`
	Renderer     RendererConfig `mapstructure:"renderer"`

	// File is the config file that was loaded, empty when none was found.
	File string `mapstructure:"-"`
}

// RendererConfig holds renderer overrides
type RendererConfig struct {
	// Command replaces the local/npx probe when set.
	Command string `mapstructure:"command"`
	// Args is the fixed prefix used with Command.
	Args []string `mapstructure:"args"`
	// ExtraArgs are appended to every invocation before -i/-o.
	ExtraArgs []string `mapstructure:"extra_args"`
	// Timeout bounds each renderer run; 0 disables it.
	Timeout time.Duration `mapstructure:"timeout"`
}

var defaultConfig = Config{
	Target:    "docs",
	Extractor: ExtractorRegex,
	Exclude:   []string{},
	Format:    FormatText,
	Renderer: RendererConfig{
		Args:      []string{},
		ExtraArgs: []string{},
		Timeout:   2 * time.Minute,
	},
}

// Default returns a copy of the built-in defaults.
func Default() Config {
	c := defaultConfig
	c.Exclude = []string{}
	c.Renderer.Args = []string{}
	c.Renderer.ExtraArgs = []string{}
	return c
}

// LoadOptions controls where configuration is read from.
type LoadOptions struct {
	// Root is searched for ProjectFiles; defaults to the working directory.
	Root string
	// File is an explicit config file; it must exist when set.
	File string
	// Flags are bound per FlagKeys; only flags the user changed override.
	Flags *pflag.FlagSet
}

// FlagKeys maps CLI flag names to configuration keys.
var FlagKeys = map[string]string{
	"extractor":     "extractor",
	"exclude":       "exclude",
	"gitignore":     "gitignore",
	"fail-fast":     "fail_fast",
	"keep-scratch":  "keep_scratch",
	"verify-output": "verify_output",
	"scratch-dir":   "scratch_dir",
	"format":        "format",
	"renderer":      "renderer.command",
	"timeout":       "renderer.timeout",
}

// Load resolves configuration: defaults, then the config file, then
// MMDGUARD_* environment variables, then changed flags.
func Load(opts LoadOptions) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// MMDGUARD_RENDERER is the short form of MMDGUARD_RENDERER_COMMAND.
	if err := v.BindEnv("renderer.command", EnvPrefix+"_RENDERER_COMMAND", EnvPrefix+"_RENDERER"); err != nil {
		return nil, fmt.Errorf("bind renderer env: %w", err)
	}

	file, err := findConfigFile(opts)
	if err != nil {
		return nil, err
	}
	if file != "" {
		data, err := os.ReadFile(file) // #nosec G304 -- user-selected config file
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", ErrInvalid, file, err)
		}
		if err := ValidateDocument(data); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalid, file, err)
		}
		v.SetConfigType("yaml")
		if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("%w: parse %s: %v", ErrInvalid, file, err)
		}
	}

	if opts.Flags != nil {
		for name, key := range FlagKeys {
			if f := opts.Flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: error unmarshaling config: %v", ErrInvalid, err)
	}
	cfg.File = file

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("target", defaultConfig.Target)
	v.SetDefault("extractor", defaultConfig.Extractor)
	v.SetDefault("exclude", []string{})
	v.SetDefault("gitignore", defaultConfig.Gitignore)
	v.SetDefault("fail_fast", defaultConfig.FailFast)
	v.SetDefault("keep_scratch", defaultConfig.KeepScratch)
	v.SetDefault("verify_output", defaultConfig.VerifyOutput)
	v.SetDefault("scratch_dir", defaultConfig.ScratchDir)
	v.SetDefault("format", defaultConfig.Format)
	v.SetDefault("renderer.command", defaultConfig.Renderer.Command)
	v.SetDefault("renderer.args", []string{})
	v.SetDefault("renderer.extra_args", []string{})
	v.SetDefault("renderer.timeout", defaultConfig.Renderer.Timeout)
}

func findConfigFile(opts LoadOptions) (string, error) {
	if opts.File != "" {
		if _, err := os.Stat(opts.File); err != nil {
			return "", fmt.Errorf("%w: config file %s: %v", ErrInvalid, opts.File, err)
		}
		return opts.File, nil
	}

	root := opts.Root
	if root == "" {
		root = "."
	}
	for _, name := range ProjectFiles {
		candidate := filepath.Join(root, name)
		if st, err := os.Stat(candidate); err == nil && st.Mode().IsRegular() {
			return candidate, nil
		}
	}
	return "", nil
}

// Validate checks values that the schema cannot see (flags and env).
func (c *Config) Validate() error {
	switch c.Extractor {
	case ExtractorRegex, ExtractorCommonMark:
	default:
		return fmt.Errorf("%w: unknown extractor %q (want %s or %s)", ErrInvalid, c.Extractor, ExtractorRegex, ExtractorCommonMark)
	}
	switch c.Format {
	case FormatText, FormatJSON, FormatYAML:
	default:
		return fmt.Errorf("%w: unknown format %q (want text, json or yaml)", ErrInvalid, c.Format)
	}
	if c.Renderer.Timeout < 0 {
		return fmt.Errorf("%w: renderer timeout must not be negative", ErrInvalid)
	}
	if c.Target == "" {
		return fmt.Errorf("%w: target must not be empty", ErrInvalid)
	}
	return nil
}
