package config

import (
	"github.com/sandeepkv93/fluidtasks/internal/notify"
)

// NotifyConfig maps the presentation settings onto the dispatcher.
func (c Config) NotifyConfig() notify.Config {
	out := notify.DefaultConfig()
	out.ReminderDuration = c.ToastDuration
	out.FeedbackDuration = c.FeedbackToastDuration
	out.CompletionDuration = c.CompletionToastDuration
	out.AchievementDuration = c.AchievementDuration
	out.Sound = c.Sound
	out.VictoryVolume = c.VictoryVolume
	return out
}

// Permission falls back to default for values Validate would reject.
func (c Config) Permission() notify.Permission {
	p, err := notify.ParsePermission(c.DesktopNotifications)
	if err != nil {
		return notify.PermissionDefault
	}
	return p
}

type fileView struct {
	ServerURL               string  `yaml:"server_url"`
	RequestTimeout          string  `yaml:"request_timeout"`
	ReminderInterval        string  `yaml:"reminder_interval"`
	ToastDuration           string  `yaml:"toast_duration"`
	FeedbackToastDuration   string  `yaml:"feedback_toast_duration"`
	CompletionToastDuration string  `yaml:"completion_toast_duration"`
	AchievementDuration     string  `yaml:"achievement_duration"`
	Sound                   bool    `yaml:"sound"`
	VictoryVolume           float64 `yaml:"victory_volume"`
	DesktopNotifications    string  `yaml:"desktop_notifications"`
	StatePath               string  `yaml:"state_path"`
	LogFile                 string  `yaml:"log_file"`
	LogLevel                string  `yaml:"log_level"`
	SchedulerBuffer         int     `yaml:"scheduler_buffer"`
	ServeAddr               string  `yaml:"serve_addr"`
}

// MarshalYAML renders the config with the same keys config.yaml accepts.
func (c Config) MarshalYAML() (any, error) {
	return fileView{
		ServerURL:               c.ServerURL,
		RequestTimeout:          c.RequestTimeout.String(),
		ReminderInterval:        c.ReminderInterval.String(),
		ToastDuration:           c.ToastDuration.String(),
		FeedbackToastDuration:   c.FeedbackToastDuration.String(),
		CompletionToastDuration: c.CompletionToastDuration.String(),
		AchievementDuration:     c.AchievementDuration.String(),
		Sound:                   c.Sound,
		VictoryVolume:           c.VictoryVolume,
		DesktopNotifications:    c.DesktopNotifications,
		StatePath:               c.StatePath,
		LogFile:                 c.LogFile,
		LogLevel:                c.LogLevel,
		SchedulerBuffer:         c.SchedulerBuffer,
		ServeAddr:               c.ServeAddr,
	}, nil
}
