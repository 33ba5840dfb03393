package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// FromEnv applies FLUIDTASKS_* overrides on top of base. Unparseable values
// are ignored.
func FromEnv(base Config) Config {
	cfg := base
	if v, ok := getEnvString(EnvPrefix + "SERVER_URL"); ok {
		cfg.ServerURL = v
	}
	if v, ok := getEnvDuration(EnvPrefix + "REQUEST_TIMEOUT"); ok && v > 0 {
		cfg.RequestTimeout = v
	}
	if v, ok := getEnvDuration(EnvPrefix + "REMINDER_INTERVAL"); ok && v > 0 {
		cfg.ReminderInterval = v
	}
	if v, ok := getEnvDuration(EnvPrefix + "TOAST_DURATION"); ok && v > 0 {
		cfg.ToastDuration = v
	}
	if v, ok := getEnvDuration(EnvPrefix + "FEEDBACK_TOAST_DURATION"); ok && v > 0 {
		cfg.FeedbackToastDuration = v
	}
	if v, ok := getEnvDuration(EnvPrefix + "COMPLETION_TOAST_DURATION"); ok && v > 0 {
		cfg.CompletionToastDuration = v
	}
	if v, ok := getEnvDuration(EnvPrefix + "ACHIEVEMENT_DURATION"); ok && v > 0 {
		cfg.AchievementDuration = v
	}
	if v, ok := getEnvBool(EnvPrefix + "SOUND"); ok {
		cfg.Sound = v
	}
	if v, ok := getEnvFloat(EnvPrefix + "VICTORY_VOLUME"); ok {
		cfg.VictoryVolume = v
	}
	if v, ok := getEnvBool(EnvPrefix + "DESKTOP_NOTIFICATIONS"); ok {
		cfg.DesktopNotifications = "denied"
		if v {
			cfg.DesktopNotifications = "granted"
		}
	} else if v, ok := getEnvString(EnvPrefix + "DESKTOP_NOTIFICATIONS"); ok {
		cfg.DesktopNotifications = strings.ToLower(v)
	}
	if v, ok := getEnvString(EnvPrefix + "STATE_PATH"); ok {
		cfg.StatePath = expandHome(v)
	}
	if v, ok := getEnvString(EnvPrefix + "LOG_FILE"); ok {
		cfg.LogFile = expandHome(v)
	}
	if v, ok := getEnvString(EnvPrefix + "LOG_LEVEL"); ok {
		cfg.LogLevel = v
	}
	if v, ok := getEnvInt(EnvPrefix + "SCHEDULER_BUFFER"); ok && v > 0 {
		cfg.SchedulerBuffer = v
	}
	if v, ok := getEnvString(EnvPrefix + "SERVE_ADDR"); ok {
		cfg.ServeAddr = v
	}
	return cfg
}

func getEnvString(name string) (string, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	return raw, raw != ""
}

func getEnvInt(name string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func getEnvFloat(name string) (float64, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// getEnvDuration accepts Go durations ("90s") or a bare number of seconds.
func getEnvDuration(name string) (time.Duration, bool) {
	return parseDuration(os.Getenv(name))
}

func parseDuration(raw string) (time.Duration, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d, true
	}
	if secs, err := strconv.ParseFloat(raw, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), true
	}
	return 0, false
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
