// Package config merges generator settings from flags, the environment and
// an optional TOML file.
//
// Precedence, highest first: explicitly set flags, WEBNNGEN_* environment
// variables, the config file, flag defaults, built-in defaults.
package config

import (
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// DefaultFile is read from the working directory when no --config is given.
const DefaultFile = "webnngen.toml"

// EnvPrefix prefixes every environment variable: WEBNNGEN_TEMPLATE_DIR etc.
const EnvPrefix = "WEBNNGEN"

// Keys shared by the config file, the environment and the flags.
const (
	KeyIDL         = "idl"
	KeyTargets     = "targets"
	KeyTemplateDir = "template-dir"
	KeyOutputDir   = "output-dir"
	KeyDepfile     = "depfile"
	KeyGoPackage   = "go-package"
)

// Config is the merged generator configuration.
type Config struct {
	IDL         string   `mapstructure:"idl"`
	Targets     []string `mapstructure:"targets"`
	TemplateDir string   `mapstructure:"template-dir"`
	OutputDir   string   `mapstructure:"output-dir"`
	Depfile     string   `mapstructure:"depfile"`
	GoPackage   string   `mapstructure:"go-package"`

	// File is the config file that was read, if any.
	File string `mapstructure:"-"`
}

// SetDefaults registers every key so the environment can supply any of them.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyIDL, "")
	v.SetDefault(KeyTargets, "")
	v.SetDefault(KeyTemplateDir, "")
	v.SetDefault(KeyOutputDir, ".")
	v.SetDefault(KeyDepfile, "")
	v.SetDefault(KeyGoPackage, "webnn")
}

// Load merges the sources. path names an explicit config file and must
// exist; when empty, DefaultFile is read if present. flags may be nil;
// only flags the user set override the file and the environment.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	SetDefaults(v)

	file := path
	if file == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			file = DefaultFile
		}
	}
	if file != "" {
		v.SetConfigFile(file)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "reading config file %s", file)
		}
	}

	if flags != nil {
		for _, key := range []string{KeyIDL, KeyTargets, KeyTemplateDir, KeyOutputDir, KeyDepfile, KeyGoPackage} {
			if f := flags.Lookup(key); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, errors.Wrapf(err, "binding flag --%s", key)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decoding configuration")
	}
	cfg.Targets = cleanList(cfg.Targets)
	cfg.File = file
	return &cfg, nil
}

func cleanList(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Require reports every missing setting a generation run needs.
func (c *Config) Require() error {
	var missing []string
	if c.IDL == "" {
		missing = append(missing, "--"+KeyIDL)
	}
	if len(c.Targets) == 0 {
		missing = append(missing, "--"+KeyTargets)
	}
	if c.TemplateDir == "" {
		missing = append(missing, "--"+KeyTemplateDir)
	}
	if len(missing) == 0 {
		return nil
	}
	err := errors.Newf("missing required settings: %s", strings.Join(missing, ", "))
	return errors.WithHint(err, "set them as flags, as "+EnvPrefix+"_* environment variables, or in "+DefaultFile)
}
