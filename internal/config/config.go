// ABOUTME: Player and server configuration
// ABOUTME: Defaults, YAML file loading, .env and PCMSCOPE_* environment overrides
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "PCMSCOPE_"

// Port scan range used when Port is 0
const (
	PortRangeStart = 8000
	PortRangeEnd   = 8100
)

// MaxWaveformWidth bounds any requested waveform width
const MaxWaveformWidth = 16384

// Config holds runtime settings shared by the terminal player and the server
type Config struct {
	DataDir         string        `yaml:"data_dir"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Backend         string        `yaml:"backend"`
	Volume          int           `yaml:"volume"`
	WaveformWidth   int           `yaml:"waveform_width"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
	Name            string        `yaml:"name"`
	Discovery       bool          `yaml:"discovery"`
	LogFile         string        `yaml:"log_file"`
	StrictDecode    bool          `yaml:"strict_decode"`
}

// Default returns the built-in configuration
func Default() Config {
	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "pcmscope"
	}

	return Config{
		DataDir:         "data",
		Port:            0,
		Backend:         "oto",
		Volume:          100,
		WaveformWidth:   800,
		RefreshInterval: 100 * time.Millisecond,
		Name:            hostname + "-pcmscope",
		Discovery:       true,
		LogFile:         "pcmscope.log",
	}
}

// Load reads the YAML file at path over the defaults.
// An empty path returns the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return Config{}, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes YAML from r over the defaults. Unknown keys are errors.
func LoadFromReader(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("config: decode yaml: %w", err)
	}
	return cfg, nil
}

// LoadDotEnv loads environment variables from .env files.
// With no paths, ".env" is used; a missing default file is not an error.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		if _, err := os.Stat(".env"); err != nil {
			return nil
		}
		paths = []string{".env"}
	}
	if err := godotenv.Load(paths...); err != nil {
		return fmt.Errorf("config: load env: %w", err)
	}
	return nil
}

// ApplyEnv overrides cfg fields from PCMSCOPE_* environment variables
func ApplyEnv(cfg *Config) {
	cfg.DataDir = GetEnv(EnvPrefix+"DATA_DIR", cfg.DataDir)
	cfg.Host = GetEnv(EnvPrefix+"HOST", cfg.Host)
	cfg.Port = GetEnvInt(EnvPrefix+"PORT", cfg.Port)
	cfg.Backend = GetEnv(EnvPrefix+"BACKEND", cfg.Backend)
	cfg.Volume = GetEnvInt(EnvPrefix+"VOLUME", cfg.Volume)
	cfg.WaveformWidth = GetEnvInt(EnvPrefix+"WAVEFORM_WIDTH", cfg.WaveformWidth)
	cfg.RefreshInterval = GetEnvDuration(EnvPrefix+"REFRESH_INTERVAL", cfg.RefreshInterval)
	cfg.Name = GetEnv(EnvPrefix+"NAME", cfg.Name)
	cfg.Discovery = GetEnvBool(EnvPrefix+"DISCOVERY", cfg.Discovery)
	cfg.LogFile = GetEnv(EnvPrefix+"LOG_FILE", cfg.LogFile)
	cfg.StrictDecode = GetEnvBool(EnvPrefix+"STRICT_DECODE", cfg.StrictDecode)
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg Config) error {
	var errs []error

	if strings.TrimSpace(cfg.DataDir) == "" {
		errs = append(errs, errors.New("data_dir must not be empty"))
	}
	if cfg.Port < 0 || cfg.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d is out of range 0-65535", cfg.Port))
	}
	switch cfg.Backend {
	case "oto", "portaudio", "null":
	default:
		errs = append(errs, fmt.Errorf("backend %q is invalid; valid values: oto, portaudio, null", cfg.Backend))
	}
	if cfg.Volume < 0 || cfg.Volume > 100 {
		errs = append(errs, fmt.Errorf("volume %d is out of range 0-100", cfg.Volume))
	}
	if cfg.WaveformWidth <= 0 || cfg.WaveformWidth > MaxWaveformWidth {
		errs = append(errs, fmt.Errorf("waveform_width %d is out of range 1-%d", cfg.WaveformWidth, MaxWaveformWidth))
	}
	if cfg.RefreshInterval <= 0 {
		errs = append(errs, fmt.Errorf("refresh_interval %s must be positive", cfg.RefreshInterval))
	}

	return errors.Join(errs...)
}

// GetEnv returns the value of the environment variable named by key, or fallback
// if the variable is unset or empty.
func GetEnv(key, fallback string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return fallback
}

// GetEnvInt returns the integer value of the environment variable named by key,
// or fallback if the variable is unset, empty, or not a valid integer.
func GetEnvInt(key string, fallback int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return fallback
}

// GetEnvBool returns the boolean value of the environment variable named by key,
// or fallback if the variable is unset, empty, or not a valid boolean.
func GetEnvBool(key string, fallback bool) bool {
	if s := os.Getenv(key); s != "" {
		if b, err := strconv.ParseBool(s); err == nil {
			return b
		}
	}
	return fallback
}

// GetEnvDuration returns the duration value of the environment variable named by key,
// or fallback if the variable is unset, empty, or not a valid duration.
func GetEnvDuration(key string, fallback time.Duration) time.Duration {
	if s := os.Getenv(key); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			return d
		}
	}
	return fallback
}
