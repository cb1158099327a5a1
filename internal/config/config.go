package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type API struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type UI struct {
	StatePath          string        `yaml:"state_file"`
	LogPath            string        `yaml:"log_file"`
	DefaultTheme       string        `yaml:"default_theme"`
	ThemeRerenderDelay time.Duration `yaml:"theme_rerender_delay"`
}

type Server struct {
	Addr string `yaml:"addr"`
}

type Database struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

type Config struct {
	API      API      `yaml:"api"`
	UI       UI       `yaml:"ui"`
	Server   Server   `yaml:"server"`
	Database Database `yaml:"database"`
	Verbose  bool     `yaml:"verbose"`
}

func Default() Config {
	return Config{
		API: API{
			BaseURL: "http://localhost:5000",
			Timeout: 10 * time.Second,
		},
		UI: UI{
			StatePath:          ".pmboard_state.json",
			LogPath:            "pmboard.log",
			DefaultTheme:       "blue",
			ThemeRerenderDelay: 100 * time.Millisecond,
		},
		Server: Server{
			Addr: ":5000",
		},
		Database: Database{
			Driver: "sqlite3",
			DSN:    "pmboard.db",
		},
	}
}

// Load layers an optional YAML file and then the environment over Default.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) != "" {
		var err error
		cfg, err = LoadFile(path, cfg)
		if err != nil {
			return Config{}, err
		}
	}
	return FromEnv(cfg), nil
}

// LoadFile decodes the YAML file at path over base. Keys absent from the
// file keep their base value.
func LoadFile(path string, base Config) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := base
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config %s: %w", path, err)
	}
	return cfg, nil
}

func FromEnv(base Config) Config {
	cfg := base
	if v, ok := getEnvString("PMBOARD_API_URL"); ok {
		cfg.API.BaseURL = strings.TrimRight(v, "/")
	}
	if v, ok := getEnvDuration("PMBOARD_REQUEST_TIMEOUT"); ok && v > 0 {
		cfg.API.Timeout = v
	}
	if v, ok := getEnvString("PMBOARD_STATE_FILE"); ok {
		cfg.UI.StatePath = v
	}
	if v, ok := getEnvString("PMBOARD_LOG_FILE"); ok {
		cfg.UI.LogPath = v
	}
	if v, ok := getEnvString("PMBOARD_DEFAULT_THEME"); ok {
		cfg.UI.DefaultTheme = v
	}
	if v, ok := getEnvDuration("PMBOARD_THEME_RERENDER_DELAY"); ok && v >= 0 {
		cfg.UI.ThemeRerenderDelay = v
	}
	if v, ok := getEnvString("PMBOARD_ADDR"); ok {
		cfg.Server.Addr = v
	}
	if v, ok := getEnvString("PMBOARD_DB_DRIVER"); ok {
		cfg.Database.Driver = v
	}
	if v, ok := getEnvString("PMBOARD_DB_DSN"); ok {
		cfg.Database.DSN = v
	}
	if v, ok := getEnvBool("PMBOARD_VERBOSE"); ok {
		cfg.Verbose = v
	}
	return cfg
}

func getEnvString(name string) (string, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return "", false
	}
	return raw, true
}

// getEnvDuration accepts Go durations ("250ms") or bare milliseconds ("250").
func getEnvDuration(name string) (time.Duration, bool) {
	raw, ok := getEnvString(name)
	if !ok {
		return 0, false
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d, true
	}
	ms, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return time.Duration(ms) * time.Millisecond, true
}

func getEnvBool(name string) (bool, bool) {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return false, false
	}
	switch raw {
	case "1", "true", "yes", "y", "on":
		return true, true
	case "0", "false", "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}
