// Package config loads fluidtasks settings from config.yaml and FLUIDTASKS_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/sandeepkv93/fluidtasks/internal/model"
)

const (
	AppName   = "fluidtasks"
	EnvPrefix = "FLUIDTASKS_"
)

type Config struct {
	ServerURL               string
	RequestTimeout          time.Duration
	ReminderInterval        time.Duration
	ToastDuration           time.Duration
	FeedbackToastDuration   time.Duration
	CompletionToastDuration time.Duration
	AchievementDuration     time.Duration
	Sound                   bool
	VictoryVolume           float64
	DesktopNotifications    string
	StatePath               string
	LogFile                 string
	LogLevel                string
	SchedulerBuffer         int
	ServeAddr               string

	// File is the config file that was read, empty when defaults were used.
	File string
}

func Default() Config {
	stateDir := StateDir()
	return Config{
		ServerURL:               "http://127.0.0.1:8000",
		RequestTimeout:          10 * time.Second,
		ReminderInterval:        60 * time.Second,
		ToastDuration:           8 * time.Second,
		FeedbackToastDuration:   3 * time.Second,
		CompletionToastDuration: 1500 * time.Millisecond,
		AchievementDuration:     4 * time.Second,
		Sound:                   true,
		VictoryVolume:           0.5,
		DesktopNotifications:    "default",
		StatePath:               filepath.Join(stateDir, AppName+".db"),
		LogFile:                 filepath.Join(stateDir, AppName+".log"),
		LogLevel:                "info",
		SchedulerBuffer:         64,
		ServeAddr:               "127.0.0.1:8000",
	}
}

// Dir is where config.yaml is looked up when no explicit file is given.
func Dir() string {
	if base, err := os.UserConfigDir(); err == nil {
		return filepath.Join(base, AppName)
	}
	return filepath.Join(".", "."+AppName)
}

// StateDir holds the local database and log file.
func StateDir() string {
	if xdg := strings.TrimSpace(os.Getenv("XDG_STATE_HOME")); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "state", AppName)
	}
	return filepath.Join(".", "."+AppName)
}

// Load reads path (or config.yaml under Dir when path is empty), then applies
// environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(Dir())
	}

	v.SetDefault("server_url", cfg.ServerURL)
	v.SetDefault("request_timeout", cfg.RequestTimeout)
	v.SetDefault("reminder_interval", cfg.ReminderInterval)
	v.SetDefault("toast_duration", cfg.ToastDuration)
	v.SetDefault("feedback_toast_duration", cfg.FeedbackToastDuration)
	v.SetDefault("completion_toast_duration", cfg.CompletionToastDuration)
	v.SetDefault("achievement_duration", cfg.AchievementDuration)
	v.SetDefault("sound", cfg.Sound)
	v.SetDefault("victory_volume", cfg.VictoryVolume)
	v.SetDefault("desktop_notifications", cfg.DesktopNotifications)
	v.SetDefault("state_path", cfg.StatePath)
	v.SetDefault("log_file", cfg.LogFile)
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("scheduler_buffer", cfg.SchedulerBuffer)
	v.SetDefault("serve_addr", cfg.ServeAddr)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
	} else {
		cfg.File = v.ConfigFileUsed()
	}

	cfg.ServerURL = v.GetString("server_url")
	cfg.RequestTimeout = v.GetDuration("request_timeout")
	cfg.ReminderInterval = v.GetDuration("reminder_interval")
	cfg.ToastDuration = v.GetDuration("toast_duration")
	cfg.FeedbackToastDuration = v.GetDuration("feedback_toast_duration")
	cfg.CompletionToastDuration = v.GetDuration("completion_toast_duration")
	cfg.AchievementDuration = v.GetDuration("achievement_duration")
	cfg.Sound = v.GetBool("sound")
	cfg.VictoryVolume = v.GetFloat64("victory_volume")
	cfg.DesktopNotifications = v.GetString("desktop_notifications")
	cfg.StatePath = expandHome(v.GetString("state_path"))
	cfg.LogFile = expandHome(v.GetString("log_file"))
	cfg.LogLevel = v.GetString("log_level")
	cfg.SchedulerBuffer = v.GetInt("scheduler_buffer")
	cfg.ServeAddr = v.GetString("serve_addr")

	cfg = FromEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	u, err := url.Parse(c.ServerURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: server_url %q must be an absolute URL", model.ErrValidation, c.ServerURL)
	}
	durations := map[string]time.Duration{
		"request_timeout":           c.RequestTimeout,
		"reminder_interval":         c.ReminderInterval,
		"toast_duration":            c.ToastDuration,
		"feedback_toast_duration":   c.FeedbackToastDuration,
		"completion_toast_duration": c.CompletionToastDuration,
		"achievement_duration":      c.AchievementDuration,
	}
	for key, d := range durations {
		if d <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %s", model.ErrValidation, key, d)
		}
	}
	if c.VictoryVolume < 0 || c.VictoryVolume > 1 {
		return fmt.Errorf("%w: victory_volume must be within [0,1], got %v", model.ErrValidation, c.VictoryVolume)
	}
	switch strings.ToLower(c.DesktopNotifications) {
	case "default", "granted", "denied":
	default:
		return fmt.Errorf("%w: desktop_notifications must be default, granted or denied, got %q", model.ErrValidation, c.DesktopNotifications)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.SchedulerBuffer <= 0 {
		return fmt.Errorf("%w: scheduler_buffer must be positive", model.ErrValidation)
	}
	return nil
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
