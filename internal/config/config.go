// Package config resolves batch settings from built-in defaults, a named
// profile, an optional TOML file, the environment and command-line flags.
//
// Each source yields an Overrides value in which only the settings it
// actually names are non-nil. Resolve applies them in order, so later
// layers win. The profile is picked first (the last layer naming one wins)
// and provides the base budget that the explicit settings then adjust.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/AnyUserName/b64jpeg/internal/encoder"
	"github.com/AnyUserName/b64jpeg/internal/profile"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// EnvPrefix prefixes every environment variable the CLI reads.
const EnvPrefix = "B64JPEG_"

// Config is the fully resolved batch configuration.
type Config struct {
	Profile   string
	Recurse   bool
	DataURI   bool
	CSVMap    bool
	Budget    encoder.Budget
	LogLevel  string
	LogFormat string
}

// Overrides is one configuration layer. Nil fields are left untouched.
type Overrides struct {
	Profile      *string `toml:"profile"`
	Recurse      *bool   `toml:"recurse"`
	DataURI      *bool   `toml:"data_uri"`
	CapChars     *int    `toml:"cap_chars"`
	CSVMap       *bool   `toml:"csv_map"`
	MaxPx        *int    `toml:"max_px"`
	QualityFloor *int    `toml:"quality_floor"`
	LogLevel     *string `toml:"log_level"`
	LogFormat    *string `toml:"log_format"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	p, _ := profile.Get(profile.DefaultName)
	return Config{
		Profile:   p.Name,
		Budget:    p.Budget,
		LogLevel:  "info",
		LogFormat: "console",
	}
}

// Resolve applies layers on top of Default.
func Resolve(layers ...Overrides) (Config, error) {
	cfg := Default()

	for _, l := range layers {
		if l.Profile != nil {
			cfg.Profile = *l.Profile
		}
	}
	p, ok := profile.Get(cfg.Profile)
	if !ok {
		return cfg, fmt.Errorf("unknown profile %q (available: %s)", cfg.Profile, strings.Join(profile.Names(), ", "))
	}
	cfg.Budget = p.Budget

	for _, l := range layers {
		setBool(&cfg.Recurse, l.Recurse)
		setBool(&cfg.DataURI, l.DataURI)
		setBool(&cfg.CSVMap, l.CSVMap)
		setInt(&cfg.Budget.CapChars, l.CapChars)
		setInt(&cfg.Budget.MaxPx, l.MaxPx)
		setInt(&cfg.Budget.QualityFloor, l.QualityFloor)
		setString(&cfg.LogLevel, l.LogLevel)
		setString(&cfg.LogFormat, l.LogFormat)
	}

	if err := cfg.Budget.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadFile reads a TOML layer. A missing file is an error; callers decide
// whether a file was requested at all.
func LoadFile(path string) (Overrides, error) {
	var o Overrides
	data, err := os.ReadFile(path)
	if err != nil {
		return o, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &o); err != nil {
		return o, fmt.Errorf("parse config %s: %w", path, err)
	}
	return o, nil
}

// LoadDotEnv reads KEY=VALUE pairs from path without touching the process
// environment. A missing file yields an empty map.
func LoadDotEnv(path string) (map[string]string, error) {
	vals, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return vals, nil
}

// EnvLookup returns a lookup that prefers the real environment and falls
// back to dotenv values.
func EnvLookup(dotenv map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
}

// FromEnv builds a layer from B64JPEG_* variables.
func FromEnv(lookup func(string) (string, bool)) (Overrides, error) {
	var o Overrides
	var errs []error

	str := func(name string) *string {
		if v, ok := lookup(EnvPrefix + name); ok && strings.TrimSpace(v) != "" {
			v = strings.TrimSpace(v)
			return &v
		}
		return nil
	}
	boolean := func(name string) *bool {
		s := str(name)
		if s == nil {
			return nil
		}
		b, err := strconv.ParseBool(*s)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
			return nil
		}
		return &b
	}
	integer := func(name string) *int {
		s := str(name)
		if s == nil {
			return nil
		}
		n, err := strconv.Atoi(*s)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
			return nil
		}
		return &n
	}

	o.Profile = str("PROFILE")
	o.Recurse = boolean("RECURSE")
	o.DataURI = boolean("DATA_URI")
	o.CapChars = integer("CAP_CHARS")
	o.CSVMap = boolean("CSV_MAP")
	o.MaxPx = integer("MAX_PX")
	o.QualityFloor = integer("QUALITY_FLOOR")
	o.LogLevel = str("LOG_LEVEL")
	o.LogFormat = str("LOG_FORMAT")

	return o, errors.Join(errs...)
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
