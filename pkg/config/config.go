// Package config loads vocabmark settings from YAML and the environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is tried when no configuration file is named.
const DefaultPath = "./vocabmark.yaml"

type Config struct {
	Log        LogConfig        `yaml:"log"`
	Widget     WidgetConfig     `yaml:"widget"`
	Card       CardConfig       `yaml:"card"`
	Speech     SpeechConfig     `yaml:"speech"`
	Storage    StorageConfig    `yaml:"storage"`
	Dictionary DictionaryConfig `yaml:"dictionary"`
	Fetch      FetchConfig      `yaml:"fetch"`
	Batch      BatchConfig      `yaml:"batch"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"VOCABMARK_LOG_LEVEL" env-default:"info"`
	File  string `yaml:"file"  env:"VOCABMARK_LOG_FILE"`
}

type WidgetConfig struct {
	Variant     string `yaml:"variant"      env:"VOCABMARK_VARIANT"      env-default:"enhanced"`
	ColorPolicy string `yaml:"color_policy" env:"VOCABMARK_COLOR_POLICY" env-default:"hash"`
	Seed        uint64 `yaml:"seed"         env:"VOCABMARK_SEED"`
}

type CardConfig struct {
	Width       float64 `yaml:"width"        env:"VOCABMARK_CARD_WIDTH"        env-default:"580"`
	MaxHeight   float64 `yaml:"max_height"   env:"VOCABMARK_CARD_MAX_HEIGHT"   env-default:"500"`
	HeightRatio float64 `yaml:"height_ratio" env:"VOCABMARK_CARD_HEIGHT_RATIO" env-default:"0.85"`
	Spacing     float64 `yaml:"spacing"      env:"VOCABMARK_CARD_SPACING"      env-default:"10"`
	Margin      float64 `yaml:"margin"       env:"VOCABMARK_CARD_MARGIN"       env-default:"10"`
}

type SpeechConfig struct {
	// Command is the synthesis command line; empty disables speech.
	Command []string `yaml:"command" env:"VOCABMARK_SPEECH_COMMAND" env-separator:" " env-default:"espeak-ng -v {lang} -s {wpm} {text}"`
	Lang    string   `yaml:"lang"    env:"VOCABMARK_SPEECH_LANG"    env-default:"en-US"`
	Rate    float64  `yaml:"rate"    env:"VOCABMARK_SPEECH_RATE"    env-default:"0.9"`
}

type StorageConfig struct {
	Path string `yaml:"path" env:"VOCABMARK_DB" env-default:"vocabmark.db"`
}

type DictionaryConfig struct {
	Enabled      bool   `yaml:"enabled"       env:"VOCABMARK_DICT_ENABLED"`
	Path         string `yaml:"path"          env:"VOCABMARK_DICT_PATH"          env-default:"jmdict-eng-common.json"`
	AutoDownload bool   `yaml:"auto_download" env:"VOCABMARK_DICT_AUTO_DOWNLOAD" env-default:"true"`
	MaxGlosses   int    `yaml:"max_glosses"   env:"VOCABMARK_DICT_MAX_GLOSSES"   env-default:"3"`
}

type FetchConfig struct {
	Timeout     time.Duration `yaml:"timeout"       env:"VOCABMARK_FETCH_TIMEOUT"  env-default:"30s"`
	MaxBodySize int64         `yaml:"max_body_size" env:"VOCABMARK_FETCH_MAX_BODY" env-default:"10485760"`
	Readable    bool          `yaml:"readable"      env:"VOCABMARK_FETCH_READABLE"`
}

type BatchConfig struct {
	Workers int `yaml:"workers" env:"VOCABMARK_WORKERS" env-default:"4"`
}

// Load reads configuration from a YAML file and environment variables.
// Priority: ENV > YAML > defaults (via env-default tags).
// An explicitly named file must exist; otherwise DefaultPath is used when
// present and ENV + defaults when not.
func Load(path string) (*Config, error) {
	var cfg Config

	explicitPath := path != ""
	if !explicitPath {
		path = DefaultPath
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if explicitPath {
		return nil, fmt.Errorf("config: file %s: %w", path, err)
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config: read env: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	var errs []error
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level: unknown level %q", c.Log.Level))
	}
	switch c.Widget.Variant {
	case "enhanced", "complete":
	default:
		errs = append(errs, fmt.Errorf("widget.variant: must be enhanced or complete, got %q", c.Widget.Variant))
	}
	switch c.Widget.ColorPolicy {
	case "hash", "random":
	default:
		errs = append(errs, fmt.Errorf("widget.color_policy: must be hash or random, got %q", c.Widget.ColorPolicy))
	}
	if c.Card.Width <= 0 || c.Card.MaxHeight <= 0 {
		errs = append(errs, errors.New("card: width and max_height must be positive"))
	}
	if c.Card.HeightRatio <= 0 || c.Card.HeightRatio > 1 {
		errs = append(errs, fmt.Errorf("card.height_ratio: must be in (0, 1], got %v", c.Card.HeightRatio))
	}
	if c.Card.Spacing < 0 || c.Card.Margin < 0 {
		errs = append(errs, errors.New("card: spacing and margin must not be negative"))
	}
	if c.Speech.Rate <= 0 {
		errs = append(errs, fmt.Errorf("speech.rate: must be positive, got %v", c.Speech.Rate))
	}
	if c.Storage.Path == "" {
		errs = append(errs, errors.New("storage.path: required"))
	}
	if c.Fetch.Timeout <= 0 || c.Fetch.MaxBodySize <= 0 {
		errs = append(errs, errors.New("fetch: timeout and max_body_size must be positive"))
	}
	if c.Batch.Workers < 1 {
		errs = append(errs, fmt.Errorf("batch.workers: must be at least 1, got %d", c.Batch.Workers))
	}
	return errors.Join(errs...)
}

// Dump writes cfg as YAML.
func Dump(w io.Writer, cfg *Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	return enc.Close()
}
