package domain

import "time"

// DefaultDownloadTimeout bounds a single client download request.
const DefaultDownloadTimeout = 30 * time.Second

// Config represents the application configuration
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Client       ClientConfig       `mapstructure:"client"`
	Download     DownloadConfig     `mapstructure:"download"`
	Storage      StorageConfig      `mapstructure:"storage"`
	Notification NotificationConfig `mapstructure:"notification"`
	Logging      LoggingConfig      `mapstructure:"logging"`
}

// ServerConfig contains backend listener configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// ClientConfig contains settings for the format lister and file downloader
type ClientConfig struct {
	BackendURL      string        `mapstructure:"backend_url"`
	DownloadTimeout time.Duration `mapstructure:"download_timeout"`
	OutputDir       string        `mapstructure:"output_dir"`
}

// DownloadConfig contains backend yt-dlp configuration
type DownloadConfig struct {
	WorkDir           string   `mapstructure:"work_dir"`
	LogsDir           string   `mapstructure:"logs_dir"`
	YTDLPBinary       string   `mapstructure:"ytdlp_binary"`
	FFmpegPaths       []string `mapstructure:"ffmpeg_paths"`
	MergeOutputFormat string   `mapstructure:"merge_output_format"`
	RatePerMinute     int      `mapstructure:"rate_per_minute"`
	RateBurst         int      `mapstructure:"rate_burst"`
}

// StorageConfig contains download history persistence configuration
type StorageConfig struct {
	DatabasePath string `mapstructure:"database_path"`
}

// NotificationConfig contains notification-related configuration
type NotificationConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Method  string `mapstructure:"method"` // osascript, notify-send
}

// LoggingConfig contains logging-related configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, or file path
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 5000,
		},
		Client: ClientConfig{
			BackendURL:      "http://localhost:5000",
			DownloadTimeout: DefaultDownloadTimeout,
			OutputDir:       ".",
		},
		Download: DownloadConfig{
			WorkDir:     "$HOME/.ytfetch/work",
			LogsDir:     "$HOME/.ytfetch/logs",
			YTDLPBinary: "yt-dlp",
			FFmpegPaths: []string{
				`C:\Program Files\ffmpeg\bin\ffmpeg.exe`,
				"/usr/bin/ffmpeg",
				"/usr/local/bin/ffmpeg",
			},
			MergeOutputFormat: "mp4",
			RatePerMinute:     30,
			RateBurst:         5,
		},
		Storage: StorageConfig{
			DatabasePath: "$HOME/.ytfetch/history.db",
		},
		Notification: NotificationConfig{
			Enabled: false,
			Method:  "notify-send",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			OutputPath: "stdout",
		},
	}
}
