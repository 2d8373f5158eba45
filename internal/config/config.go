package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"
)

// ErrMalformedConfig wraps every problem with the user's configuration file.
// Load still returns a usable default Config alongside it.
var ErrMalformedConfig = errors.New("malformed configuration")

// Load reads the configuration for the project at root. configPath, when
// non-empty, overrides the default <root>/.zwischen.yml location.
//
// A missing file is not an error. A file that cannot be read or parsed yields
// the built-in defaults together with an error wrapping ErrMalformedConfig;
// callers warn and carry on with the returned Config.
func Load(root, configPath string) (*Config, error) {
	path := configPath
	if path == "" {
		path = filepath.Join(root, DefaultConfigFile)
	}

	override, err := readOverride(path)
	if err != nil {
		cfg, buildErr := build(Defaults())
		if buildErr != nil {
			return nil, buildErr
		}
		return cfg, fmt.Errorf("%w: %s: %v", ErrMalformedConfig, path, err)
	}

	cfg, err := build(Merge(Defaults(), override))
	if err != nil {
		fallback, buildErr := build(Defaults())
		if buildErr != nil {
			return nil, buildErr
		}
		return fallback, fmt.Errorf("%w: %s: %v", ErrMalformedConfig, path, err)
	}
	if override != nil {
		cfg.path = path
	}
	return cfg, nil
}

// readOverride returns the user tree at path, or nil when there is no file.
func readOverride(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, err
	}
	if tree == nil {
		tree = map[string]any{}
	}
	return tree, nil
}

// build turns a merged tree into a typed Config. ZWISCHEN_* environment
// variables override individual leaves (ZWISCHEN_BLOCKING_SEVERITY=critical).
func build(tree map[string]any) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("ZWISCHEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// viper rewrites the keys of the map it is given, so hand it a copy.
	if err := v.MergeConfigMap(cloneMap(tree)); err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}

	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		scannerToggleHook,
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, fmt.Errorf("parsing settings: %w", err)
	}

	if cfg.Scanners == nil {
		cfg.Scanners = map[string]ScannerConfig{}
	}
	// "semgrep: ~" in YAML means "keep the defaults", not "disabled".
	if scanners, ok := asMap(tree["scanners"]); ok {
		for name, raw := range scanners {
			if raw == nil {
				sc := cfg.Scanners[name]
				sc.Enabled = true
				cfg.Scanners[name] = sc
			}
		}
	}

	cfg.tree = cloneMap(tree)
	return &cfg, nil
}

var scannerConfigType = reflect.TypeOf(ScannerConfig{})

// scannerToggleHook accepts "gitleaks: true" as shorthand for
// "gitleaks: {enabled: true}".
func scannerToggleHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to != scannerConfigType {
		return data, nil
	}
	if b, ok := data.(bool); ok {
		return map[string]any{"enabled": b}, nil
	}
	return data, nil
}

// Tree returns a copy of the merged settings tree.
func (c *Config) Tree() map[string]any {
	return cloneMap(c.tree)
}

// Path returns the configuration file that was merged over the defaults,
// or "" when only the defaults are in effect.
func (c *Config) Path() string {
	return c.path
}

// ScannerEnabled reports whether the named scanner should run. Scanners that
// are not mentioned anywhere default to enabled.
func (c *Config) ScannerEnabled(name string) bool {
	sc, ok := c.Scanners[name]
	if !ok {
		return true
	}
	return sc.Enabled
}

// SemgrepRuleset returns the rule-set identifier passed to semgrep.
func (c *Config) SemgrepRuleset() string {
	if sc, ok := c.Scanners["semgrep"]; ok && strings.TrimSpace(sc.Config) != "" {
		return sc.Config
	}
	return DefaultSemgrepRuleset
}

// BinDir returns ~/.zwischen/bin, where downloaded scanner binaries live.
func BinDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, DefaultBinDir), nil
}

// ConfigPath returns the effective config file path for root.
func ConfigPath(root, override string) string {
	if override != "" {
		return override
	}
	return filepath.Join(root, DefaultConfigFile)
}

// WriteExample creates a commented config file at path. It never overwrites
// an existing file and reports false in that case.
func WriteExample(path string, opts ExampleOptions) (bool, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return false, nil
		}
		return false, fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.WriteString(RenderExample(opts)); err != nil {
		return false, fmt.Errorf("writing %s: %w", path, err)
	}
	return true, nil
}
