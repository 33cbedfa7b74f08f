package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yourusername/ytfetch-go/internal/client"
)

var formatsCmd = &cobra.Command{
	Use:   "formats [url]",
	Short: "List the formats a video can be downloaded in",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		menu := client.NewFormatMenu()
		lookupFormats(ctx, argOrEmpty(args), menu)
		printMenu(os.Stdout, menu)
	},
}

var downloadCmd = &cobra.Command{
	Use:   "download [url]",
	Short: "Download a video in the given format",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		formatID, _ := cmd.Flags().GetString("format")
		applyOutputFlags(cmd)
		downloadFormat(ctx, argOrEmpty(args), formatID)
	},
}

var getCmd = &cobra.Command{
	Use:   "get [url]",
	Short: "Look up formats, pick one and download it",
	Long: `Look up the formats of a video, pick one and download it.
Without --format or --index the format is chosen interactively.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		videoURL := argOrEmpty(args)
		formatID, _ := cmd.Flags().GetString("format")
		index, _ := cmd.Flags().GetInt("index")
		applyOutputFlags(cmd)

		menu := client.NewFormatMenu()
		lookupFormats(ctx, videoURL, menu)

		if err := chooseFormat(menu, formatID, index, os.Stdin, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		downloadFormat(ctx, videoURL, menu.Selected())
	},
}

func init() {
	downloadCmd.Flags().StringP("format", "f", "", "Format id from 'ytfetch formats'")
	getCmd.Flags().StringP("format", "f", "", "Format id to download")
	getCmd.Flags().IntP("index", "i", -1, "Menu position to download (0-based)")
	for _, cmd := range []*cobra.Command{downloadCmd, getCmd} {
		cmd.Flags().StringP("output", "o", "", "Directory to save into (default from config)")
		cmd.Flags().Duration("timeout", 0, "Give up if the backend has not answered within this long (default 30s)")
	}
}

// applyOutputFlags rebuilds the client when --output or --timeout override the config
func applyOutputFlags(cmd *cobra.Command) {
	changed := false
	if dir, _ := cmd.Flags().GetString("output"); dir != "" {
		config.Client.OutputDir = dir
		changed = true
	}
	if timeout, _ := cmd.Flags().GetDuration("timeout"); timeout > 0 {
		config.Client.DownloadTimeout = timeout
		changed = true
	}
	if changed {
		backend = client.NewClient(&config.Client, log)
	}
}

// lookupFormats runs the format lookup flow and fills menu, exiting on failure
func lookupFormats(ctx context.Context, videoURL string, menu *client.FormatMenu) {
	if videoURL != "" {
		ensureServer()
	}
	result := backend.FetchFormats(ctx, videoURL)
	if !result.OK() {
		fail(result.Outcome)
	}
	menu.Replace(result.Formats)
}

// downloadFormat runs the download flow, exiting on failure
func downloadFormat(ctx context.Context, videoURL, formatID string) {
	if videoURL != "" && formatID != "" {
		ensureServer()
	}
	result := backend.Download(ctx, videoURL, formatID)
	if !result.OK() {
		fail(result.Outcome)
	}
	fmt.Printf("Saved %s (%s)\n", result.Path, formatSize(result.Size))
	notifier.NotifyDownloadSaved(result.Path)
}

// printMenu writes the menu as a numbered table
func printMenu(out io.Writer, menu *client.FormatMenu) {
	options := menu.Options()
	if len(options) == 0 {
		fmt.Fprintln(out, "No formats available")
		return
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tFORMAT\tDESCRIPTION")
	for i, opt := range options {
		fmt.Fprintf(w, "%d\t%s\t%s\n", i, opt.Value, opt.Label)
	}
	w.Flush()
}

// chooseFormat selects a menu entry by id, by index, or by asking on in.
// An empty answer keeps the first format.
func chooseFormat(menu *client.FormatMenu, formatID string, index int, in io.Reader, out io.Writer) error {
	switch {
	case menu.Len() == 0:
		return fmt.Errorf("no formats available")
	case formatID != "":
		return menu.Select(formatID)
	case index >= 0:
		return menu.SelectIndex(index)
	}

	printMenu(out, menu)
	fmt.Fprintf(out, "Format [0-%d, default 0]: ", menu.Len()-1)

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return err
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return menu.SelectIndex(0)
	}
	if i, err := strconv.Atoi(line); err == nil {
		return menu.SelectIndex(i)
	}
	return menu.Select(line)
}

func argOrEmpty(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return strings.TrimSpace(args[0])
}

// formatSize renders a byte count for humans
func formatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
