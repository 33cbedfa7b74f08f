package app

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/yourusername/ytfetch-go/internal/domain"
)

// LoadConfig loads configuration from file and environment
func LoadConfig(configPath string) (*domain.Config, error) {
	// Start with default config
	config := domain.DefaultConfig()

	// Set up viper
	v := viper.New()
	v.SetConfigType("yaml")

	// If config path is provided, use it
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Look for config in standard locations
		v.SetConfigName("config")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.ytfetch")
		v.AddConfigPath("/etc/ytfetch")
	}

	// Read environment variables
	v.SetEnvPrefix("YTFETCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvKeys(v)

	// Try to read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, use defaults
	}

	// Unmarshal into config struct
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Expand environment variables in paths
	config = expandPaths(config)

	// Validate config
	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// bindEnvKeys registers every key so AutomaticEnv overrides apply on Unmarshal
// even when no config file mentions them.
func bindEnvKeys(v *viper.Viper) {
	for _, key := range []string{
		"server.host", "server.port",
		"client.backend_url", "client.download_timeout", "client.output_dir",
		"download.work_dir", "download.logs_dir", "download.ytdlp_binary",
		"download.merge_output_format", "download.rate_per_minute", "download.rate_burst",
		"storage.database_path",
		"notification.enabled", "notification.method",
		"logging.level", "logging.format", "logging.output_path",
	} {
		v.BindEnv(key)
	}
}

// expandPaths expands environment variables in path configurations
func expandPaths(config *domain.Config) *domain.Config {
	config.Client.OutputDir = expandPath(config.Client.OutputDir)
	config.Download.WorkDir = expandPath(config.Download.WorkDir)
	config.Download.LogsDir = expandPath(config.Download.LogsDir)
	config.Storage.DatabasePath = expandPath(config.Storage.DatabasePath)

	if config.Logging.OutputPath != "stdout" && config.Logging.OutputPath != "stderr" {
		config.Logging.OutputPath = expandPath(config.Logging.OutputPath)
	}

	return config
}

// expandPath expands environment variables and ~ in paths
func expandPath(path string) string {
	// Expand home directory
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	}

	// Replace $HOME before ExpandEnv so an unset HOME falls back to UserHomeDir
	if strings.Contains(path, "$HOME") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = strings.ReplaceAll(path, "$HOME", home)
		}
	}

	return os.ExpandEnv(path)
}

// validateConfig validates the configuration
func validateConfig(config *domain.Config) error {
	if config.Server.Port < 1 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	backend, err := url.Parse(config.Client.BackendURL)
	if err != nil || backend.Scheme == "" || backend.Host == "" {
		return fmt.Errorf("invalid backend url: %q", config.Client.BackendURL)
	}

	if config.Client.DownloadTimeout <= 0 {
		return fmt.Errorf("download timeout must be positive")
	}

	if config.Download.WorkDir == "" {
		return fmt.Errorf("download work directory not configured")
	}

	if config.Download.YTDLPBinary == "" {
		return fmt.Errorf("yt-dlp binary not configured")
	}

	if config.Download.RatePerMinute < 0 {
		return fmt.Errorf("rate per minute cannot be negative")
	}

	if config.Download.RatePerMinute > 0 && config.Download.RateBurst < 1 {
		return fmt.Errorf("rate burst must be at least 1")
	}

	if config.Storage.DatabasePath == "" {
		return fmt.Errorf("database path not configured")
	}

	if config.Logging.Level == "" {
		config.Logging.Level = "info"
	}

	return nil
}

// SaveConfig saves configuration to file
func SaveConfig(config *domain.Config, path string) error {
	v := viper.New()
	v.SetConfigType("yaml")

	// Keys mirror the mapstructure tags so LoadConfig reads the file back
	v.Set("server.host", config.Server.Host)
	v.Set("server.port", config.Server.Port)
	v.Set("client.backend_url", config.Client.BackendURL)
	v.Set("client.download_timeout", config.Client.DownloadTimeout.String())
	v.Set("client.output_dir", config.Client.OutputDir)
	v.Set("download.work_dir", config.Download.WorkDir)
	v.Set("download.logs_dir", config.Download.LogsDir)
	v.Set("download.ytdlp_binary", config.Download.YTDLPBinary)
	v.Set("download.ffmpeg_paths", config.Download.FFmpegPaths)
	v.Set("download.merge_output_format", config.Download.MergeOutputFormat)
	v.Set("download.rate_per_minute", config.Download.RatePerMinute)
	v.Set("download.rate_burst", config.Download.RateBurst)
	v.Set("storage.database_path", config.Storage.DatabasePath)
	v.Set("notification.enabled", config.Notification.Enabled)
	v.Set("notification.method", config.Notification.Method)
	v.Set("logging.level", config.Logging.Level)
	v.Set("logging.format", config.Logging.Format)
	v.Set("logging.output_path", config.Logging.OutputPath)

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Write config file
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
