// Package config resolves run settings from flags, G4RNA_CONVERT_* environment
// variables and an optional g4rna-convert.yaml file, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nconklindev/g4rna-convert/internal/logger"
	"github.com/nconklindev/g4rna-convert/internal/marker"

	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	EnvPrefix = "G4RNA_CONVERT"
	FileName  = "g4rna-convert"

	KeyFiles           = "files"
	KeyMarker          = "marker"
	KeyMarkerSuffix    = "marker-suffix"
	KeyBatchMarkerName = "batch-marker-name"
	KeyXLSX            = "xlsx"
	KeyLogLevel        = "log-level"
	KeyInteractive     = "interactive"
)

type Config struct {
	Files           []string
	Marker          marker.Strategy
	MarkerSuffix    string
	BatchMarkerName string
	XLSX            bool
	LogLevel        logger.LogLevel
	Interactive     bool

	// ConfigFile is the file that was read, empty when none was found.
	ConfigFile string
}

// SetDefaults registers the defaults on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyMarker, string(marker.PerFile))
	v.SetDefault(KeyMarkerSuffix, marker.DefaultSuffix)
	v.SetDefault(KeyBatchMarkerName, marker.DefaultBatchName)
	v.SetDefault(KeyXLSX, false)
	v.SetDefault(KeyLogLevel, string(logger.WarnLevel))
	v.SetDefault(KeyInteractive, false)
}

// Load binds flags and environment onto v, reads the config file from fs
// and returns the validated configuration.
func Load(v *viper.Viper, fs afero.Fs, flags *pflag.FlagSet, configFile string) (*Config, error) {
	SetDefaults(v)
	if fs != nil {
		v.SetFs(fs)
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, err
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	cfg := &Config{}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		cfg.ConfigFile = v.ConfigFileUsed()
	}

	cfg.Files = v.GetStringSlice(KeyFiles)
	cfg.Marker = marker.Strategy(v.GetString(KeyMarker))
	cfg.MarkerSuffix = v.GetString(KeyMarkerSuffix)
	cfg.BatchMarkerName = v.GetString(KeyBatchMarkerName)
	cfg.XLSX = v.GetBool(KeyXLSX)
	cfg.LogLevel = logger.LogLevel(v.GetString(KeyLogLevel))
	cfg.Interactive = v.GetBool(KeyInteractive)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if _, err := marker.ParseStrategy(string(c.Marker)); err != nil {
		return err
	}
	if _, err := logger.ParseLevel(string(c.LogLevel)); err != nil {
		return err
	}
	if strings.ContainsAny(c.BatchMarkerName, `/\`) {
		return fmt.Errorf("batch marker name %q must not contain a path separator", c.BatchMarkerName)
	}
	return nil
}
