package logger

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMultiLogger_WritesPerCategory(t *testing.T) {
	dir := t.TempDir()
	ml, err := NewMultiLogger(MultiLoggerConfig{Level: "info", LogsDir: dir})
	require.NoError(t, err)

	ml.LogDownloadEvent("download_completed", zap.String("format_id", "18"))
	ml.Access().Info("HTTP request", zap.Int("status", 200))
	ml.LogAppError("Panic recovered", zap.String("path", "/api/download"))
	require.NoError(t, ml.Close())

	reader := NewLogReader(dir)

	downloads, err := reader.ReadLogs(CategoryDownload, time.Now(), 0)
	require.NoError(t, err)
	require.Len(t, downloads, 1)
	assert.Equal(t, "download_completed", downloads[0].Message)
	assert.Equal(t, "info", downloads[0].Level)
	assert.Equal(t, "18", downloads[0].Fields["format_id"])
	assert.NotEmpty(t, downloads[0].Timestamp)

	access, err := reader.ReadLogs(CategoryAccess, time.Now(), 0)
	require.NoError(t, err)
	require.Len(t, access, 1)
	assert.Equal(t, float64(200), access[0].Fields["status"])

	errs, err := reader.ReadLogs(CategoryError, time.Now(), 0)
	require.NoError(t, err)
	require.Len(t, errs, 1)
	assert.Equal(t, "error", errs[0].Level)
}

func TestMultiLogger_ErrorCategoryDropsInfo(t *testing.T) {
	dir := t.TempDir()
	ml, err := NewMultiLogger(MultiLoggerConfig{Level: "debug", LogsDir: dir})
	require.NoError(t, err)

	ml.Error().Info("not an error")
	require.NoError(t, ml.Close())

	entries, err := NewLogReader(dir).ReadLogs(CategoryError, time.Now(), 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestNewMultiLogger_RequiresDir(t *testing.T) {
	_, err := NewMultiLogger(MultiLoggerConfig{Level: "info"})
	assert.Error(t, err)
}

func TestLogReader_LimitAndPlainLines(t *testing.T) {
	dir := t.TempDir()
	reader := NewLogReader(dir)
	path := reader.GetLogPath(CategoryDownload, time.Now())
	content := "first plain line\n\n" +
		`{"level":"info","ts":"2024-01-01T00:00:00Z","msg":"second"}` + "\n" +
		`{"level":"warn","ts":"2024-01-01T00:00:01Z","msg":"third"}` + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	all, err := reader.ReadLogs(CategoryDownload, time.Now(), 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "first plain line", all[0].Message)

	last, err := reader.ReadLogs(CategoryDownload, time.Now(), 2)
	require.NoError(t, err)
	require.Len(t, last, 2)
	assert.Equal(t, "second", last[0].Message)
	assert.Equal(t, "warn", last[1].Level)
}

func TestLogReader_MissingFile(t *testing.T) {
	entries, err := NewLogReader(t.TempDir()).ReadLogs(CategoryAccess, time.Now(), 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestValidCategory(t *testing.T) {
	assert.True(t, ValidCategory(CategoryAccess))
	assert.True(t, ValidCategory(CategoryDownload))
	assert.True(t, ValidCategory(CategoryError))
	assert.False(t, ValidCategory("queue"))
}
