package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/arthur-debert/dtsync/pkg/errors"
	"github.com/arthur-debert/dtsync/pkg/paths"
	"github.com/arthur-debert/dtsync/pkg/types"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes environment overrides. Keys are separated by a double
// underscore: DTSYNC_GLOBAL__METHOD=Copy sets global.method.
const EnvPrefix = "DTSYNC_"

// Load reads the configuration at path (the default config file when path
// is empty), layered over the embedded defaults and environment overrides.
// Paths are expanded but the result is not validated.
func Load(path string) (*Config, error) {
	return LoadWith(path, nil)
}

// LoadWith is Load plus a final layer of dotted-key overrides
// ("global.method": "Copy"), used for command-line flags.
func LoadWith(path string, overrides map[string]interface{}) (*Config, error) {
	if path == "" {
		path = paths.DefaultConfigFile()
	}
	path = paths.ExpandHome(path)

	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "cannot read configuration %s", path)
	}

	k, err := baseKoanf()
	if err != nil {
		return nil, err
	}
	if err := k.Load(file.Provider(path), parserFor(path)); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to load configuration from %s", path)
	}
	return finish(k, overrides)
}

// LoadBytes parses configuration content directly. format is "toml" or
// "yaml".
func LoadBytes(data []byte, format string) (*Config, error) {
	k, err := baseKoanf()
	if err != nil {
		return nil, err
	}
	if err := k.Load(&rawBytesProvider{bytes: data}, parserFor("config."+format)); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to parse configuration")
	}
	return finish(k, nil)
}

func baseKoanf() (*koanf.Koanf, error) {
	k := koanf.New(".")
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to load defaults")
	}
	return k, nil
}

func finish(k *koanf.Koanf, overrides map[string]interface{}) (*Config, error) {
	err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load env vars")
	}
	if len(overrides) > 0 {
		if err := k.Load(confmap.Provider(overrides, "."), nil); err != nil {
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
				renameRuleHookFunc(),
				mapstructure.TextUnmarshallerHookFunc(),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal configuration")
	}

	if err := expandPaths(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey maps DTSYNC_GLOBAL__ALLOW_OVERWRITE to global.allow_overwrite.
// Variables without a double underscore (DTSYNC_HOSTNAME, ...) are not
// configuration keys and are skipped.
func envKey(s string) string {
	key := strings.TrimPrefix(s, EnvPrefix)
	if !strings.Contains(key, "__") {
		return ""
	}
	return strings.ReplaceAll(strings.ToLower(key), "__", ".")
}

func parserFor(path string) koanf.Parser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser()
	default:
		return toml.Parser()
	}
}

// renameRuleHookFunc accepts rename rules written as two-element arrays
// (["^dot-", "."]) besides the table form.
func renameRuleHookFunc() mapstructure.DecodeHookFunc {
	ruleType := reflect.TypeOf(types.RenameRule{})
	return func(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
		if t != ruleType {
			return data, nil
		}
		pair, ok := data.([]interface{})
		if !ok {
			return data, nil
		}
		if len(pair) != 2 {
			return nil, fmt.Errorf("rename rule must be [pattern, substitution], got %d elements", len(pair))
		}
		pattern, ok1 := pair[0].(string)
		substitution, ok2 := pair[1].(string)
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("rename rule elements must be strings")
		}
		return types.RenameRule{Pattern: pattern, Substitution: substitution}, nil
	}
}

// expandPaths applies ~ and $VAR expansion to staging, basedir and target.
// Relative paths resolve against the working directory.
func expandPaths(cfg *Config) error {
	var cerr errors.ConfigError

	staging := cfg.Global.Staging
	if staging == "" {
		staging = paths.DefaultStagingRoot()
	}
	expanded, err := paths.Expand(staging)
	if err != nil {
		cerr.Add("", "staging", "%v", err)
	}
	cfg.Global.Staging = expanded

	for i := range cfg.Groups {
		g := &cfg.Groups[i]
		label := g.Name
		if label == "" {
			label = fmt.Sprintf("#%d", i+1)
		}
		if g.Basedir != "" {
			if g.Basedir, err = paths.Expand(g.Basedir); err != nil {
				cerr.Add(label, "basedir", "%v", err)
			}
		}
		if g.Target != "" {
			if g.Target, err = paths.Expand(g.Target); err != nil {
				cerr.Add(label, "target", "%v", err)
			}
		}
	}

	return cerr.ErrOrNil()
}
