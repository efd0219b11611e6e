package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"agenda/internal/reminder"
	"agenda/internal/storage"
)

const (
	DefaultConfigFileName = "config.toml"
	AppDirName            = "agenda"
	EnvConfigPath         = "AGENDA_CONFIG"
)

type Keymap struct {
	Quit     string `toml:"quit"`
	Back     string `toml:"back"`
	Up       string `toml:"up"`
	Down     string `toml:"down"`
	Add      string `toml:"add"`
	Edit     string `toml:"edit"`
	Delete   string `toml:"delete"`
	Detail   string `toml:"detail"`
	Filter   string `toml:"filter"`
	Confirm  string `toml:"confirm"`
	Cancel   string `toml:"cancel"`
	NextDay  string `toml:"next_day"`
	PrevDay  string `toml:"prev_day"`
	Today    string `toml:"today"`
	Register string `toml:"register"`
	Logout   string `toml:"logout"`
}

type Reminder struct {
	Interval string `toml:"interval"`
}

type Config struct {
	DataDir  string   `toml:"data_dir"`
	Backend  string   `toml:"backend"`
	DBPath   string   `toml:"db_path"`
	LogLevel string   `toml:"log_level"`
	LogFile  string   `toml:"log_file"`
	Reminder Reminder `toml:"reminder"`
	Keys     Keymap   `toml:"keys"`
}

// ResolveConfigPath returns $AGENDA_CONFIG when set, otherwise config.toml in
// the user's config directory. It falls back to the working directory when no
// config directory is known.
func ResolveConfigPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return DefaultConfigFileName
	}
	return filepath.Join(dir, AppDirName, DefaultConfigFileName)
}

// LoadOrCreate reads the config at path. A missing file is created with the
// defaults. Keys left out of the file keep their default values.
func LoadOrCreate(path string) (Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	fillDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the values a typo could break.
func (c Config) Validate() error {
	known := false
	for _, b := range storage.Backends() {
		if c.Backend == b {
			known = true
		}
	}
	if !known {
		return fmt.Errorf("unknown backend %q (want one of %s)", c.Backend, strings.Join(storage.Backends(), ", "))
	}
	if _, err := c.ReminderInterval(); err != nil {
		return err
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ReminderInterval parses reminder.interval.
func (c Config) ReminderInterval() (time.Duration, error) {
	if c.Reminder.Interval == "" {
		return reminder.DefaultInterval, nil
	}
	d, err := time.ParseDuration(c.Reminder.Interval)
	if err != nil {
		return 0, fmt.Errorf("reminder interval: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("reminder interval must be positive, got %s", d)
	}
	return d, nil
}

// StoreOptions maps the config onto storage options.
func (c Config) StoreOptions(logger *slog.Logger) storage.Options {
	return storage.Options{
		Backend: c.Backend,
		DataDir: expandHome(c.DataDir),
		DBPath:  expandHome(c.DBPath),
		Logger:  logger,
	}
}

// ParseLevel maps a log_level value onto a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log level: %w", err)
	}
	return level, nil
}

func write(path string, cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}

func fillDefaults(cfg *Config) {
	def := Default()
	if cfg.DataDir == "" {
		cfg.DataDir = def.DataDir
	}
	if cfg.Backend == "" {
		cfg.Backend = def.Backend
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = def.LogLevel
	}
	if cfg.Reminder.Interval == "" {
		cfg.Reminder.Interval = def.Reminder.Interval
	}
	k, d := &cfg.Keys, def.Keys
	for _, pair := range []struct {
		dst *string
		def string
	}{
		{&k.Quit, d.Quit}, {&k.Back, d.Back}, {&k.Up, d.Up}, {&k.Down, d.Down},
		{&k.Add, d.Add}, {&k.Edit, d.Edit}, {&k.Delete, d.Delete}, {&k.Detail, d.Detail},
		{&k.Filter, d.Filter}, {&k.Confirm, d.Confirm}, {&k.Cancel, d.Cancel},
		{&k.NextDay, d.NextDay}, {&k.PrevDay, d.PrevDay}, {&k.Today, d.Today},
		{&k.Register, d.Register}, {&k.Logout, d.Logout},
	} {
		if *pair.dst == "" {
			*pair.dst = pair.def
		}
	}
}

// Default is the configuration written on first launch.
func Default() Config {
	return Config{
		DataDir:  "data",
		Backend:  storage.BackendJSON,
		LogLevel: "info",
		Reminder: Reminder{Interval: reminder.DefaultInterval.String()},
		Keys: Keymap{
			Quit:     "q",
			Back:     "esc",
			Up:       "k",
			Down:     "j",
			Add:      "a",
			Edit:     "e",
			Delete:   "d",
			Detail:   "enter",
			Filter:   "/",
			Confirm:  "enter",
			Cancel:   "esc",
			NextDay:  "l",
			PrevDay:  "h",
			Today:    "t",
			Register: "ctrl+r",
			Logout:   "ctrl+l",
		},
	}
}
