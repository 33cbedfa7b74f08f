package infrastructure

import (
	"fmt"
	"io"
	"os/exec"
	"strings"

	"go.uber.org/zap"

	"github.com/yourusername/ytfetch-go/internal/domain"
)

// NotificationService surfaces flow outcomes to the user: always on the
// console writer, and as a desktop notification when enabled.
type NotificationService struct {
	config *domain.NotificationConfig
	out    io.Writer
	logger *zap.Logger
	run    func(name string, args ...string) error
}

// NewNotificationService creates a new notification service
func NewNotificationService(config *domain.NotificationConfig, out io.Writer, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		config: config,
		out:    out,
		logger: logger,
		run: func(name string, args ...string) error {
			return exec.Command(name, args...).Run()
		},
	}
}

// Alert reports a failed outcome. Successful outcomes are ignored.
func (n *NotificationService) Alert(outcome domain.Outcome) {
	if outcome.OK() {
		return
	}
	if n.out != nil {
		fmt.Fprintf(n.out, "%s: %s\n", outcome.Title(), outcome.Message)
	}
	n.Send(outcome.Title(), outcome.Message)
}

// NotifyDownloadSaved sends a notification once a file has been saved
func (n *NotificationService) NotifyDownloadSaved(path string) {
	n.Send("Download Completed", fmt.Sprintf("Saved %s", truncateString(path, 60)))
}

// Send sends a desktop notification
func (n *NotificationService) Send(title, message string) error {
	if !n.config.Enabled {
		n.logger.Debug("Notifications disabled, skipping",
			zap.String("title", title),
			zap.String("message", message))
		return nil
	}

	var err error
	switch n.config.Method {
	case "osascript":
		script := fmt.Sprintf(`display notification "%s" with title "%s"`, escapeAppleScript(message), escapeAppleScript(title))
		err = n.run("osascript", "-e", script)
	case "notify-send":
		err = n.run("notify-send", title, message)
	default:
		n.logger.Warn("Unknown notification method", zap.String("method", n.config.Method))
		return nil
	}

	if err != nil {
		n.logger.Error("Failed to send notification",
			zap.String("method", n.config.Method),
			zap.Error(err))
		return err
	}

	n.logger.Debug("Notification sent",
		zap.String("title", title),
		zap.String("message", message))
	return nil
}

func escapeAppleScript(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}

// truncateString truncates a string to maxLen runes
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
