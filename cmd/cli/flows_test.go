package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/ytfetch-go/internal/client"
	"github.com/yourusername/ytfetch-go/internal/domain"
)

func testMenu() *client.FormatMenu {
	menu := client.NewFormatMenu()
	menu.Replace([]domain.Format{
		{FormatID: "18", Resolution: "640x360", Ext: "mp4"},
		{FormatID: "22", Resolution: "1280x720", Ext: "mp4"},
		{FormatID: "137+140", Resolution: "1920x1080", Ext: "mp4", RequiresFFmpeg: true},
	})
	return menu
}

func TestChooseFormat(t *testing.T) {
	tests := []struct {
		name     string
		formatID string
		index    int
		input    string
		want     string
		wantErr  bool
	}{
		{name: "by id", formatID: "22", index: -1, want: "22"},
		{name: "unknown id", formatID: "999", index: -1, wantErr: true},
		{name: "by index", index: 2, want: "137+140"},
		{name: "index out of range", index: 3, wantErr: true},
		{name: "prompt default", index: -1, input: "\n", want: "18"},
		{name: "prompt eof", index: -1, input: "", want: "18"},
		{name: "prompt number", index: -1, input: "1\n", want: "22"},
		{name: "prompt id", index: -1, input: "137+140\n", want: "137+140"},
		{name: "prompt garbage", index: -1, input: "best\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			menu := testMenu()
			var out bytes.Buffer

			err := chooseFormat(menu, tt.formatID, tt.index, strings.NewReader(tt.input), &out)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, menu.Selected())
		})
	}
}

func TestChooseFormat_PromptShowsMenu(t *testing.T) {
	var out bytes.Buffer

	require.NoError(t, chooseFormat(testMenu(), "", -1, strings.NewReader("0\n"), &out))

	assert.Contains(t, out.String(), "1920x1080 (MP4) - Needs FFmpeg")
	assert.Contains(t, out.String(), "Format [0-2, default 0]: ")
}

func TestChooseFormat_EmptyMenu(t *testing.T) {
	err := chooseFormat(client.NewFormatMenu(), "18", -1, strings.NewReader(""), &bytes.Buffer{})
	assert.Error(t, err)
}

func TestPrintMenu(t *testing.T) {
	var out bytes.Buffer
	printMenu(&out, testMenu())

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[1], "0"))
	assert.Contains(t, lines[1], "640x360 (MP4) - Direct download")

	out.Reset()
	printMenu(&out, client.NewFormatMenu())
	assert.Equal(t, "No formats available\n", out.String())
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "512 B", formatSize(512))
	assert.Equal(t, "1.0 KiB", formatSize(1024))
	assert.Equal(t, "1.5 MiB", formatSize(1536*1024))
}

func TestFormatFields(t *testing.T) {
	assert.Equal(t, "", formatFields(nil))
	assert.Equal(t, " a=1 b=x", formatFields(map[string]interface{}{"b": "x", "a": 1}))
}

func TestHistoryDetail(t *testing.T) {
	done := domain.NewDownload("https://example.com/v", "18")
	done.MarkCompleted("video.mp4", 1)
	assert.Equal(t, "video.mp4", historyDetail(done))

	failed := domain.NewDownload("https://example.com/v", "18")
	failed.MarkFailed(errors.New("ERROR: boom"))
	assert.Equal(t, "ERROR: boom", historyDetail(failed))
}

func TestArgOrEmpty(t *testing.T) {
	assert.Equal(t, "", argOrEmpty(nil))
	assert.Equal(t, "https://example.com", argOrEmpty([]string{"  https://example.com "}))
}
